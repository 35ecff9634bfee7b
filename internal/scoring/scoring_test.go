package scoring_test

import (
	"testing"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/scoring"
)

func draftWith(answers ...domain.AnswerRecord) domain.DraftState {
	draft := domain.NewDraftState()
	for _, a := range answers {
		draft.Answers[a.Question] = a
	}
	return draft
}

func TestDetermineStrategySumsByAxis(t *testing.T) {
	draft := draftWith(
		domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: 2},
		domain.AnswerRecord{Question: "Q2", Axis: domain.AxisMilitary, Offset: 1},
		domain.AnswerRecord{Question: "Q3", Axis: domain.AxisCivilian, Offset: -2},
	)
	res, err := scoring.DetermineStrategy(draft)
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	if res.MilitaryScore != 3 || res.CivilianScore != -2 {
		t.Fatalf("expected scores 3/-2, got %d/%d", res.MilitaryScore, res.CivilianScore)
	}
	if res.Strategy != domain.StrategySeparation {
		t.Fatalf("expected Separation, got %s", res.Strategy)
	}
}

func TestClassifyQuadrants(t *testing.T) {
	cases := []struct {
		military, civilian int
		want               domain.Strategy
	}{
		{1, 1, domain.StrategyIntegration},
		{1, 0, domain.StrategySeparation},
		{1, -3, domain.StrategySeparation},
		{0, 1, domain.StrategyAssimilation},
		{-2, 4, domain.StrategyAssimilation},
		{0, 0, domain.StrategyMarginalization},
		{-1, -1, domain.StrategyMarginalization},
	}
	for _, tc := range cases {
		if got := scoring.Classify(tc.military, tc.civilian); got != tc.want {
			t.Fatalf("Classify(%d, %d)=%s, want %s", tc.military, tc.civilian, got, tc.want)
		}
	}
}

// A zero military sum with a positive civilian sum must classify as
// Assimilation, never Integration.
func TestZeroIsNotHigh(t *testing.T) {
	draft := draftWith(
		domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: 2},
		domain.AnswerRecord{Question: "Q2", Axis: domain.AxisMilitary, Offset: -2},
		domain.AnswerRecord{Question: "Q3", Axis: domain.AxisCivilian, Offset: 2},
		domain.AnswerRecord{Question: "Q4", Axis: domain.AxisCivilian, Offset: 2},
		domain.AnswerRecord{Question: "Q5", Axis: domain.AxisCivilian, Offset: 1},
	)
	res, err := scoring.DetermineStrategy(draft)
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	if res.MilitaryScore != 0 || res.CivilianScore != 5 {
		t.Fatalf("expected scores 0/5, got %d/%d", res.MilitaryScore, res.CivilianScore)
	}
	if res.Strategy != domain.StrategyAssimilation {
		t.Fatalf("expected Assimilation for zero military score, got %s", res.Strategy)
	}
}

func TestAllNeutralIsMarginalization(t *testing.T) {
	draft := draftWith(
		domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: 0},
		domain.AnswerRecord{Question: "Q2", Axis: domain.AxisCivilian, Offset: 0},
	)
	res, err := scoring.DetermineStrategy(draft)
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	if res.MilitaryScore != 0 || res.CivilianScore != 0 {
		t.Fatalf("expected zero scores, got %d/%d", res.MilitaryScore, res.CivilianScore)
	}
	if res.Strategy != domain.StrategyMarginalization {
		t.Fatalf("expected Marginalization, got %s", res.Strategy)
	}
}

func TestDetermineStrategyIsIdempotent(t *testing.T) {
	draft := draftWith(
		domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: -1},
		domain.AnswerRecord{Question: "Q2", Axis: domain.AxisCivilian, Offset: 2},
	)
	first, err := scoring.DetermineStrategy(draft)
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	second, err := scoring.DetermineStrategy(draft)
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestDetermineStrategyRejectsOutOfRange(t *testing.T) {
	draft := draftWith(domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: 7})
	if _, err := scoring.DetermineStrategy(draft); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for offset 7, got %v", err)
	}

	draft = draftWith(domain.AnswerRecord{Question: "Q1", Axis: "Z", Offset: 1})
	if _, err := scoring.DetermineStrategy(draft); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for axis Z, got %v", err)
	}
}

func TestEmptyDraftScoresZero(t *testing.T) {
	res, err := scoring.DetermineStrategy(domain.NewDraftState())
	if err != nil {
		t.Fatalf("determine: %v", err)
	}
	if res.MilitaryScore != 0 || res.CivilianScore != 0 || res.Strategy != domain.StrategyMarginalization {
		t.Fatalf("expected zero Marginalization result, got %+v", res)
	}
}
