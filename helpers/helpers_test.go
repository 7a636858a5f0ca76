package helpers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/fusion/engine"
)

const fixtureJSON = `[
  {"PartGroups": [["SA2","SA1"],["SA3"]], "Region": "Europe", "Year": 1990, "Diversity": 0.41},
  {"PartGroups": [["SA2","SA1"],["SA3"]], "Region": "Europe", "Year": 1991, "Diversity": NaN},
  {"PartGroups": [["SA1"],["SA2"],["SA3"]], "Region": "NorthAmerica", "Year": "1992", "Diversity": null}
]`

// ============================================================================
// FIXTURE TESTS
// ============================================================================

func TestParseFixture(t *testing.T) {
	records, err := ParseFixture([]byte(fixtureJSON))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, engine.Tag{{"SA2", "SA1"}, {"SA3"}}, records[0].Partition)
	assert.Equal(t, "Europe", records[0].Region)
	assert.Equal(t, engine.Field("1990"), records[0].Year)
	assert.Equal(t, engine.Field("0.41"), records[0].Value)

	assert.Equal(t, engine.Field(""), records[1].Value, "NaN reads as null")
	assert.Equal(t, engine.Field("1992"), records[2].Year)
	assert.Equal(t, engine.Field(""), records[2].Value)
}

func TestParseFixtureDropsNaNPoints(t *testing.T) {
	records, err := ParseFixture([]byte(fixtureJSON))
	require.NoError(t, err)

	tok, err := engine.ParseToken("SA3|SA1+SA2")
	require.NoError(t, err)
	series := engine.BuildSeries(engine.Match(records, tok))
	require.Len(t, series, 1)
	assert.Len(t, series[0].Points, 1)
}

func TestParseFixtureKeepsNaNInsideStrings(t *testing.T) {
	records, err := ParseFixture([]byte(`[{"PartGroups": [["SA1"]], "Region": "a, NaN, b", "Year": 1990, "Diversity": NaN}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a, NaN, b", records[0].Region)
	assert.Equal(t, engine.Field(""), records[0].Value)
}

func TestSanitizeNonFinite(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`[NaN,NaN]`, `[null,null]`},
		{`{"a": NaN}`, `{"a": null}`},
		{`{"a": -Infinity, "b": 1}`, `{"a": null, "b": 1}`},
		{`{"NaN": "NaN"}`, `{"NaN": "NaN"}`},
		{`{"Region": "a, NaN, b", "Diversity": NaN}`, `{"Region": "a, NaN, b", "Diversity": null}`},
		{`["say \"NaN\", ok", Infinity]`, `["say \"NaN\", ok", null]`},
		{`[NaN,-Infinity,Infinity]`, `[null,null,null]`},
		{`[1, 2]`, `[1, 2]`},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, string(sanitizeNonFinite([]byte(tc.in))))
		})
	}
}

func TestParseFixtureRejectsGarbage(t *testing.T) {
	_, err := ParseFixture([]byte(`{"PartGroups":`))
	require.Error(t, err)
}

// ============================================================================
// CSV TESTS
// ============================================================================

const fixtureCSV = `Part Groups,Region,Year,Diversity
SA1+SA2|SA3,Europe,1990,0.41
SA3|SA2+SA1,Europe,1991,
,Europe,1992,0.5
SA1|+,Europe,1993,0.5
SA1|SA2|SA3,NorthAmerica,1990,0.3
`

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV([]byte(fixtureCSV))
	require.NoError(t, err)
	require.Len(t, records, 3, "blank and malformed partition rows skipped")

	assert.Equal(t, engine.Tag{{"SA3"}, {"SA1", "SA2"}}, records[0].Partition)
	assert.Equal(t, engine.Field(""), records[1].Value)
	assert.Equal(t, "NorthAmerica", records[2].Region)
}

func TestParseCSVMissingColumn(t *testing.T) {
	_, err := ParseCSV([]byte("PartGroups,Region,Year\nSA1,Europe,1990\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")

	_, err = ParseCSV(nil)
	require.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	records, err := ParseFixture([]byte(fixtureJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), "PartGroups,Region,Year,Diversity\n"))

	back, err := ParseCSV(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, back, len(records))
	for i := range records {
		assert.True(t, engine.Normalize(records[i].Partition).Equal(engine.Normalize(back[i].Partition)))
		assert.Equal(t, records[i].Year, back[i].Year)
		assert.Equal(t, records[i].Value, back[i].Value)
	}
}

func TestDecodeSniffsFormat(t *testing.T) {
	fromJSON, err := Decode([]byte(fixtureJSON), FormatAuto)
	require.NoError(t, err)
	assert.Len(t, fromJSON, 3)

	fromCSV, err := Decode([]byte(fixtureCSV), FormatAuto)
	require.NoError(t, err)
	assert.Len(t, fromCSV, 3)

	_, err = Decode([]byte(fixtureCSV), Format("xml"))
	require.Error(t, err)
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromName("data/fig4_structured.json"))
	assert.Equal(t, FormatCSV, FormatFromName("https://host/fig4.CSV?token=1"))
	assert.Equal(t, FormatAuto, FormatFromName("s3://bucket/fig4"))
}

// ============================================================================
// SOURCE TESTS
// ============================================================================

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fig4.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o644))

	records, err := LoadRecords(context.Background(), FileSource{Path: path}, FormatAuto)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = LoadRecords(context.Background(), FileSource{Path: path + ".missing"}, FormatAuto)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestBytesSource(t *testing.T) {
	src := BytesSource{Name: "inline.csv", Data: []byte(fixtureCSV)}
	records, err := LoadRecords(context.Background(), src, FormatAuto)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fig4.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, fixtureJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := HTTPSource{URL: srv.URL + "/fig4.json", Client: srv.Client()}
	records, err := LoadRecords(context.Background(), src, FormatAuto)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = HTTPSource{URL: srv.URL + "/missing.json"}.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSourceHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, fixtureJSON)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HTTPSource{URL: srv.URL}.Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string]string
	calls   int
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3Source(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"figures/fig4/data.csv": fixtureCSV}}
	src := S3Source{Client: fake, Bucket: "figures", Key: "fig4/data.csv"}
	assert.Equal(t, "s3://figures/fig4/data.csv", src.String())

	records, err := LoadRecords(context.Background(), src, FormatAuto)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 1, fake.calls)

	_, err = S3Source{Client: fake, Bucket: "figures", Key: "nope"}.Fetch(context.Background())
	require.Error(t, err)
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	src, err := OpenSource(ctx, "data/fig4.json")
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "data/fig4.json"}, src)

	src, err = OpenSource(ctx, "file:///tmp/fig4.json")
	require.NoError(t, err)
	assert.Equal(t, FileSource{Path: "/tmp/fig4.json"}, src)

	src, err = OpenSource(ctx, "https://example.org/fig4.json")
	require.NoError(t, err)
	assert.Equal(t, HTTPSource{URL: "https://example.org/fig4.json"}, src)

	_, err = OpenSource(ctx, "ftp://example.org/fig4.json")
	require.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = OpenSource(ctx, "s3://bucket-only")
	require.ErrorIs(t, err, ErrUnsupportedSource)
}
