package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

var testQuestions = []types.Question{
	{ID: "q_comment", Type: types.QuestionText, Text: "comments", Order: 6},
	{ID: "q1", Type: types.QuestionYesNo, Text: "educated?", Order: 1},
	{ID: "q16", Type: types.QuestionYesNo, Text: "needs re-education?", Order: 2},
	{ID: "q17", Type: types.QuestionYesNo, Text: "phone follow-up?", Order: 3},
	{ID: "q_food", Type: types.QuestionLikert, Text: "food", Order: 4},
	{ID: "q_nps", Type: types.QuestionNPS, Text: "recommend?", Order: 5},
}

func record(id string, answers map[string]interface{}) types.Feedback {
	return types.Feedback{
		ID:          id,
		Status:      types.StatusFinal,
		PatientInfo: types.PatientInfo{Name: "patient " + id},
		Answers:     answers,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCalculate_Empty(t *testing.T) {
	a := Calculate(nil, testQuestions, DefaultPolicy())
	if a.TotalCount != 0 || a.UrgentFollowUps != 0 || a.NPSScore != 0 || a.AverageSatisfaction != 0 {
		t.Errorf("empty input should produce zero aggregates: %+v", a)
	}
	if a.CategoryData == nil || a.YesNoStats == nil || a.TextComments == nil || a.UrgentList == nil {
		t.Error("slices should be empty, not nil, so they encode as []")
	}
}

func TestCalculate_Aggregates(t *testing.T) {
	records := []types.Feedback{
		record("a", map[string]interface{}{"q1": true, "q_food": 5.0, "q_nps": 10.0, "q_comment": "  great  "}),
		record("b", map[string]interface{}{"q1": true, "q_food": int32(4), "q_nps": int64(9)}),
		record("c", map[string]interface{}{"q1": false, "q_food": "3", "q_nps": 7.0, "q_comment": "   "}),
		record("d", map[string]interface{}{"q_food": 2.0, "q_nps": 3.0}),
	}

	a := Calculate(records, testQuestions, DefaultPolicy())

	if a.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", a.TotalCount)
	}
	// (5+4+3+2)/4 = 3.5
	if a.AverageSatisfaction != 3.5 {
		t.Errorf("AverageSatisfaction = %v, want 3.5", a.AverageSatisfaction)
	}
	// 2 promoters, 1 passive, 1 detractor -> 50 - 25 = 25
	if a.NPSScore != 25 {
		t.Errorf("NPSScore = %d, want 25", a.NPSScore)
	}
	if a.NPSBreakdown != (types.NPSBreakdown{Promoters: 2, Passives: 1, Detractors: 1}) {
		t.Errorf("unexpected breakdown %+v", a.NPSBreakdown)
	}
	if len(a.CategoryData) != 1 || a.CategoryData[0].Value != 3.5 || a.CategoryData[0].Count != 4 {
		t.Errorf("unexpected category data %+v", a.CategoryData)
	}
	if len(a.YesNoStats) != 1 {
		t.Fatalf("want one yes/no stat, got %+v", a.YesNoStats)
	}
	yn := a.YesNoStats[0]
	if yn.YesCount != 2 || yn.NoCount != 1 || yn.YesPercent != 67 || yn.NoPercent != 33 {
		t.Errorf("unexpected yes/no stat %+v", yn)
	}
	if len(a.TextComments) != 1 || len(a.TextComments[0].Comments) != 1 || a.TextComments[0].Comments[0].Comment != "great" {
		t.Errorf("unexpected text comments %+v", a.TextComments)
	}
	if a.TextComments[0].Comments[0].PatientName != "patient a" {
		t.Errorf("comment should link back to the patient")
	}

	// c answered q1 "no"; d has likert 2 and nps 3
	if a.UrgentFollowUps != 2 || a.UrgentList[0].ID != "c" || a.UrgentList[1].ID != "d" {
		t.Errorf("unexpected urgent list %+v", a.UrgentList)
	}
}

func TestCalculate_Bounds(t *testing.T) {
	cases := [][]float64{
		{0, 0, 0},
		{10, 10},
		{9, 0, 6, 7, 8},
		{5},
	}
	for _, scores := range cases {
		var records []types.Feedback
		for _, s := range scores {
			records = append(records, record("x", map[string]interface{}{"q_nps": s, "q_food": 1 + s/2.5}))
		}
		a := Calculate(records, testQuestions, DefaultPolicy())
		if a.NPSScore < -100 || a.NPSScore > 100 {
			t.Errorf("NPS %d out of range for %v", a.NPSScore, scores)
		}
		b := a.NPSBreakdown
		total := b.Promoters + b.Passives + b.Detractors
		want := NPS(b)
		if total > 0 && want != a.NPSScore {
			t.Errorf("NPS %d should equal promoters%% - detractors%% (%d)", a.NPSScore, want)
		}
		if a.AverageSatisfaction < 0 || a.AverageSatisfaction > 5 {
			t.Errorf("average %v out of range", a.AverageSatisfaction)
		}
	}
}

func TestCalculate_IgnoresOutOfRangeAnswers(t *testing.T) {
	records := []types.Feedback{
		record("a", map[string]interface{}{"q_food": 9.0, "q_nps": 11.0}),
	}
	a := Calculate(records, testQuestions, DefaultPolicy())
	if len(a.CategoryData) != 0 || a.NPSBreakdown.Promoters != 0 {
		t.Errorf("out of range answers should be ignored: %+v", a)
	}
}

func TestCalculate_IgnoresNonFiniteAnswers(t *testing.T) {
	records := []types.Feedback{
		record("a", map[string]interface{}{"q_food": 4.0, "q_nps": 9.0}),
		record("b", map[string]interface{}{"q_food": "NaN", "q_nps": "Inf"}),
		record("c", map[string]interface{}{"q_food": math.NaN(), "q_nps": math.Inf(-1)}),
	}
	a := Calculate(records, testQuestions, DefaultPolicy())
	if a.AverageSatisfaction != 4 {
		t.Errorf("average = %v, want 4", a.AverageSatisfaction)
	}
	if len(a.CategoryData) != 1 || a.CategoryData[0].Count != 1 {
		t.Errorf("category data = %+v", a.CategoryData)
	}
	if a.NPSBreakdown.Promoters+a.NPSBreakdown.Passives+a.NPSBreakdown.Detractors != 1 {
		t.Errorf("nps breakdown = %+v", a.NPSBreakdown)
	}
	if _, err := json.Marshal(a); err != nil {
		t.Errorf("analytics must encode: %v", err)
	}
}

func TestPolicy_Triggers(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name    string
		answers map[string]interface{}
		want    []string
	}{
		{"all good", map[string]interface{}{"q1": true, "q16": false, "q17": false, "q_food": 4.0, "q_nps": 8.0}, nil},
		{"negative yes/no", map[string]interface{}{"q1": false}, []string{"q1"}},
		{"inverted yes/no", map[string]interface{}{"q16": true}, []string{"q16"}},
		{"ignored yes/no", map[string]interface{}{"q17": false}, nil},
		{"low likert", map[string]interface{}{"q_food": 2.0}, []string{"q_food"}},
		{"low nps", map[string]interface{}{"q_nps": 4.0}, []string{"q_nps"}},
		{"threshold nps", map[string]interface{}{"q_nps": 5.0}, nil},
		{"string bool", map[string]interface{}{"q1": "false"}, []string{"q1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := record("x", tt.answers)
			got := p.Triggers(&f, SortQuestions(testQuestions))
			if len(got) != len(tt.want) {
				t.Fatalf("Triggers() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Triggers() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
