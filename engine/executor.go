package engine

// ============================================================================
// EXECUTOR — Match → Series → Domains
// ============================================================================
// Entry point: Execute(records, token, opts...)
//
// Pipeline:
//   1. Match records whose stored partition equals the token
//   2. Build one ordered series per region
//   3. Derive axis domains
//   4. Return Result (chart, or an explicit no-data status)
//
// Every step is local and synchronous. "Nothing to draw" is a status on the
// result, never an error.
// ============================================================================

// Execute runs the figure pipeline for one partition token.
func Execute(records []Record, token Token, opts ...Option) *Result {
	cfg := applyOptions(opts)

	matched := Match(records, token)
	cfg.Logger.Printf("🔧 Fusion: token %s matched %d of %d records", token, len(matched), len(records))

	if len(matched) == 0 {
		return NewStatusResult(StatusNoMatch, token)
	}

	series := BuildSeries(matched)
	if len(series) == 0 {
		res := NewStatusResult(StatusNoValidPoints, token)
		res.Matched = len(matched)
		return res
	}
	cfg.Logger.Printf("📈 Fusion: %d series, %d points", len(series), PointCount(series))

	domains, ok := deriveDomains(series, cfg)
	if !ok {
		res := NewStatusResult(StatusInsufficient, token)
		res.Matched = len(matched)
		return res
	}

	return &Result{
		Status:  StatusOK,
		Token:   token,
		Matched: len(matched),
		Series:  series,
		Domains: &domains,
	}
}
