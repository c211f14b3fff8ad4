// Package assessment holds the causality and indicator scoring rules.
// Everything here is a pure function so scores can be recomputed at any
// time without touching stored data.
package assessment

// Causality is a WHO-UMC style causality category.
type Causality string

const (
	Certain        Causality = "certain"
	Probable       Causality = "probable"
	Possible       Causality = "possible"
	Unlikely       Causality = "unlikely"
	Unclassified   Causality = "unclassified"
	Unclassifiable Causality = "unclassifiable"
)

// Answer values for drug-reaction evidence fields.
const (
	AnswerYes            = "yes"
	AnswerNo             = "no"
	AnswerNotStopped     = "not_stopped"
	AnswerNotRechallenge = "not_rechallenged"
	AnswerNoInformation  = "no_information"
)

// Indicator types with distinct rubrics.
const (
	IndicatorBinary        = "binary"
	IndicatorMain          = "main"
	IndicatorSupplementary = "supplementary"
	IndicatorGraded        = "graded"
)

var rubric = map[string]map[string]int{
	IndicatorBinary: {
		"yes": 10,
		"no":  0,
	},
	IndicatorMain: {
		"yes": 2,
		"no":  0,
	},
	IndicatorSupplementary: {
		"yes": 1,
		"no":  0,
	},
	IndicatorGraded: {
		"none":    0,
		"partial": 5,
		"full":    10,
	},
}

// ScoreIndicator maps an indicator answer to its point value. Unknown
// (type, answer) pairs score 0: no evidence, no credit.
func ScoreIndicator(indicatorType, answer string) int {
	return rubric[indicatorType][answer]
}

// DrugEvidence carries the two per-drug fields that feed the causality
// suggestion.
type DrugEvidence struct {
	ImprovedAfterStopping      string `json:"reaction_improved_after_stopping"`
	ReoccurredAfterRechallenge string `json:"reaction_reoccurred_after_rechallenge"`
}

// SuggestCausality derives a causality label from per-drug dechallenge
// and rechallenge evidence. Positive rechallenge on top of positive
// dechallenge is the strongest signal; a negative dechallenge argues
// against the drug. When every field is no_information the evidence
// cannot support any label and the result is unclassified.
func SuggestCausality(drugs []DrugEvidence) Causality {
	if len(drugs) == 0 {
		return Unclassified
	}

	allUnknown := true
	var dechallengeYes, dechallengeNo, rechallengeYes bool
	for _, d := range drugs {
		if d.ImprovedAfterStopping != AnswerNoInformation && d.ImprovedAfterStopping != "" {
			allUnknown = false
		}
		if d.ReoccurredAfterRechallenge != AnswerNoInformation && d.ReoccurredAfterRechallenge != "" {
			allUnknown = false
		}
		if d.ImprovedAfterStopping == AnswerYes {
			dechallengeYes = true
		}
		if d.ImprovedAfterStopping == AnswerNo {
			dechallengeNo = true
		}
		if d.ReoccurredAfterRechallenge == AnswerYes {
			rechallengeYes = true
		}
	}

	switch {
	case allUnknown:
		return Unclassified
	case rechallengeYes && dechallengeYes:
		return Certain
	case dechallengeYes:
		return Probable
	case dechallengeNo:
		return Unlikely
	default:
		return Possible
	}
}

// NaranjoLevel buckets a Naranjo questionnaire total into a causality
// category.
func NaranjoLevel(total int) Causality {
	switch {
	case total >= 9:
		return Certain
	case total >= 5:
		return Probable
	case total >= 1:
		return Possible
	default:
		return Unlikely
	}
}
