package schema

import "github.com/spektr-org/fusion/engine"

// Default returns the brain-science diversity catalog: six MeSH-based topic
// domains, three fusion presets and three regions.
func Default() *Catalog {
	return &Catalog{
		Name:        "Brain-science topic diversity",
		Description: "Blau-evenness diversity of brain-science research by region, 1980-2020.",
		Topics: []Topic{
			{Code: "SA1", Name: "Psychiatry & Psychology"},
			{Code: "SA2", Name: "Anatomy & Organisms"},
			{Code: "SA3", Name: "Phenomena & Processes"},
			{Code: "SA4", Name: "Health"},
			{Code: "SA5", Name: "Techniques & Equipment"},
			{Code: "SA6", Name: "Technology & Information Science"},
		},
		Presets: []Preset{
			{
				ID:     "broad",
				Label:  "Broad Fusion",
				Groups: []engine.Group{{"SA1"}, {"SA2"}, {"SA3"}, {"SA4"}, {"SA5"}, {"SA6"}},
				Text:   "Broad Fusion keeps all six domains separate, serving as a baseline of pure specialization.",
			},
			{
				ID:     "neighbor",
				Label:  "Neighboring Fusion",
				Groups: []engine.Group{{"SA1", "SA2", "SA3", "SA4"}},
				Text: "Neighboring Fusion merges the four life-science domains (Psychiatry & Psychology, " +
					"Anatomy & Organisms, Phenomena & Processes, and Health) to emulate structure-function " +
					"integration at the heart of modern neuroscience.",
			},
			{
				ID:     "distant",
				Label:  "Distant Fusion",
				Groups: []engine.Group{{"SA1", "SA2", "SA3", "SA4"}, {"SA5", "SA6"}},
				Text: "Distant Fusion further combines those four life-science domains with the two " +
					"technology-oriented domains (Techniques & Equipment and Technology & Information Science) " +
					"to illustrate deep cross-disciplinary convergence under mega-project funding.",
			},
		},
		InitialPreset: "broad",
		Regions: []Region{
			{Key: "NorthAmerica", Label: "North America", Color: "#1f77b4"},
			{Key: "Europe", Label: "Europe", Color: "#ff7f0e"},
			{Key: "Australasia", Label: "Australasia", Color: "#2ca02c"},
		},
		GroupColors: append([]string(nil), defaultGroupColors...),
		Metric:      Metric{Key: "Diversity", Label: "Diversity", Format: "%.2f"},
		Abstract: "The Diversity chart visualizes how the topical diversity of brain-science research has " +
			"evolved from 1980 through 2020 across six MeSH-based domains (Psychiatry & Psychology, " +
			"Anatomy & Organisms, Phenomena & Processes, Health, Techniques & Equipment, and Technology & " +
			"Information Science) in three regions (North America, Europe, and Australasia). Using a " +
			"Blau-evenness index, the chart shows how major funding programs such as the U.S. BRAIN " +
			"Initiative and the Human Brain Project have shifted the balance between focused expertise " +
			"and cross-domain integration.\n\n" +
			"To experiment with your own topic mixes, select any combination of the six domain buttons " +
			"and click Create Combination. The chart will immediately update to show how your bespoke " +
			"fusion scheme affects regional diversity trajectories. Press Clear to reset all selections " +
			"and start a new exploration.",
	}
}
