package assessment

import "testing"

func TestScoreIndicator(t *testing.T) {
	tests := []struct {
		indicatorType string
		answer        string
		want          int
	}{
		{IndicatorBinary, "yes", 10},
		{IndicatorBinary, "no", 0},
		{IndicatorMain, "yes", 2},
		{IndicatorMain, "no", 0},
		{IndicatorSupplementary, "yes", 1},
		{IndicatorGraded, "none", 0},
		{IndicatorGraded, "partial", 5},
		{IndicatorGraded, "full", 10},
		{IndicatorBinary, "maybe", 0},
		{"unknown-type", "yes", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := ScoreIndicator(tt.indicatorType, tt.answer); got != tt.want {
			t.Errorf("ScoreIndicator(%q, %q) = %d, want %d", tt.indicatorType, tt.answer, got, tt.want)
		}
	}
}

func TestScoreIndicator_Idempotent(t *testing.T) {
	first := ScoreIndicator(IndicatorBinary, "yes")
	for i := 0; i < 5; i++ {
		if got := ScoreIndicator(IndicatorBinary, "yes"); got != first {
			t.Fatalf("score changed between calls: %d != %d", got, first)
		}
	}
}

func TestSuggestCausality(t *testing.T) {
	tests := []struct {
		name  string
		drugs []DrugEvidence
		want  Causality
	}{
		{
			"no drugs",
			nil,
			Unclassified,
		},
		{
			"all no information",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerNoInformation, ReoccurredAfterRechallenge: AnswerNoInformation},
				{ImprovedAfterStopping: AnswerNoInformation, ReoccurredAfterRechallenge: AnswerNoInformation},
			},
			Unclassified,
		},
		{
			"positive rechallenge and dechallenge",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerYes, ReoccurredAfterRechallenge: AnswerYes},
			},
			Certain,
		},
		{
			"positive dechallenge only",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerYes, ReoccurredAfterRechallenge: AnswerNotRechallenge},
			},
			Probable,
		},
		{
			"negative dechallenge",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerNo, ReoccurredAfterRechallenge: AnswerNoInformation},
			},
			Unlikely,
		},
		{
			"not stopped, no rechallenge info",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerNotStopped, ReoccurredAfterRechallenge: AnswerNoInformation},
			},
			Possible,
		},
		{
			"rechallenge positive across drugs still needs dechallenge",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerNotStopped, ReoccurredAfterRechallenge: AnswerYes},
			},
			Possible,
		},
		{
			"evidence combined across drugs",
			[]DrugEvidence{
				{ImprovedAfterStopping: AnswerYes, ReoccurredAfterRechallenge: AnswerNoInformation},
				{ImprovedAfterStopping: AnswerNoInformation, ReoccurredAfterRechallenge: AnswerYes},
			},
			Certain,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestCausality(tt.drugs); got != tt.want {
				t.Errorf("SuggestCausality() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNaranjoLevel(t *testing.T) {
	tests := []struct {
		total int
		want  Causality
	}{
		{13, Certain},
		{9, Certain},
		{8, Probable},
		{5, Probable},
		{4, Possible},
		{1, Possible},
		{0, Unlikely},
		{-2, Unlikely},
	}
	for _, tt := range tests {
		if got := NaranjoLevel(tt.total); got != tt.want {
			t.Errorf("NaranjoLevel(%d) = %s, want %s", tt.total, got, tt.want)
		}
	}
}
