package evaluate

import (
	"strings"

	"greenroom/pkg/schema"
)

type clichePhrase struct {
	text         string
	explanation  string
	alternatives []string
}

// clichePhrases is the static detection table. Matching is lowercase
// substring, so entries stay lowercase.
var clichePhrases = map[schema.ClicheType][]clichePhrase{
	schema.ClicheDialogue: {
		{
			text:        "we need to talk",
			explanation: "telegraphs conflict instead of playing it",
			alternatives: []string{
				"open mid-argument",
				"let the conflict surface through an unrelated task",
			},
		},
		{
			text:        "it's not what it looks like",
			explanation: "stock denial that stalls the scene",
			alternatives: []string{
				"have the character own what it looks like",
			},
		},
		{
			text:        "i can explain",
			explanation: "stock plea that delays the actual explanation",
		},
	},
	schema.ClichePlot: {
		{
			text:        "it was all a dream",
			explanation: "dream reveals erase the stakes the audience invested in",
			alternatives: []string{
				"keep the events real and pay their cost",
			},
		},
		{
			text:        "love at first sight",
			explanation: "instant romance skips the work of earning the pairing",
		},
		{
			text:        "little did they know",
			explanation: "narrator foreshadowing that deflates tension",
		},
	},
	schema.ClicheTransition: {
		{
			text:        "meanwhile, back at",
			explanation: "dated cutaway phrasing",
			alternatives: []string{
				"cut on a matching action or sound",
			},
		},
		{
			text:        "suddenly,",
			explanation: "announcing surprise instead of staging it",
		},
		{
			text:        "in the nick of time",
			explanation: "rescue timing named instead of dramatized",
		},
	},
}

// DetectCliches scans content against the static phrase table.
func DetectCliches(content string) []schema.Cliche {
	lower := strings.ToLower(content)
	var found []schema.Cliche
	for _, typ := range []schema.ClicheType{schema.ClicheDialogue, schema.ClichePlot, schema.ClicheTransition} {
		for _, phrase := range clichePhrases[typ] {
			if strings.Contains(lower, phrase.text) {
				found = append(found, schema.Cliche{
					Type:         typ,
					Text:         phrase.text,
					Explanation:  phrase.explanation,
					Alternatives: phrase.alternatives,
				})
			}
		}
	}
	return found
}
