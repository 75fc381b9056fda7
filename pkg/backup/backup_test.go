package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

var testQuestions = []types.Question{
	{ID: "q1", Type: types.QuestionYesNo, Order: 1},
	{ID: "q_cleaning", Type: types.QuestionLikert, Order: 2},
	{ID: "q_nps", Type: types.QuestionNPS, Order: 3},
	{ID: "q_comment", Type: types.QuestionText, Order: 4},
}

func TestFullBackup(t *testing.T) {
	now := time.Date(2024, 3, 25, 22, 0, 0, 0, time.UTC)
	if got := FullFileName(now); got != "Full_Backup_2024-03-25.json" {
		t.Errorf("FullFileName() = %s", got)
	}

	b := NewFull(types.Settings{BrandName: "x"}, nil, now)
	if b.Feedback == nil || b.Settings == nil || b.Validate() != nil {
		t.Fatalf("unexpected backup %+v", b)
	}

	var empty Full
	if err := json.Unmarshal([]byte(`{"timestamp":"2024-03-25T00:00:00Z"}`), &empty); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(empty.Validate(), ErrEmptyBackup) {
		t.Error("a payload without settings and feedback should be rejected")
	}

	var onlyFeedback Full
	if err := json.Unmarshal([]byte(`{"feedback":[]}`), &onlyFeedback); err != nil {
		t.Fatal(err)
	}
	if onlyFeedback.Validate() != nil {
		t.Error("an empty feedback list is still a valid restore")
	}
}

func TestExcelRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 20, 8, 30, 0, 0, time.UTC)
	records := []types.Feedback{
		{
			ID:          "a1",
			TrackingID:  1000,
			Source:      types.SourceStaff,
			Status:      types.StatusFinal,
			Ward:        "ICU",
			PatientInfo: types.PatientInfo{Name: "سارا", NationalID: "0012345678", BirthDate: "1370/05/10"},
			ClinicalInfo: types.ClinicalInfo{
				HasSurgery: true,
				Surgeon:    "Dr. K",
			},
			Answers: map[string]interface{}{
				"q1":         false,
				"q_cleaning": 4.0,
				"q_nps":      9,
				"q_comment":  "خوب بود",
				"q_extra":    "7",
			},
			AudioFiles: types.AudioFiles{"q_comment": {"/uploads/x.webm"}},
			CreatedAt:  created,
		},
		{
			ID:         "a2",
			TrackingID: 1001,
			Source:     types.SourcePublic,
			Status:     types.StatusDraft,
			Answers:    map[string]interface{}{"q1": true},
		},
	}

	var buf bytes.Buffer
	if err := WriteExcel(&buf, records, testQuestions); err != nil {
		t.Fatal(err)
	}

	got, err := ReadExcel(&buf, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	a := got[0]
	if a.ID != "a1" || a.TrackingID != 1000 || a.Ward != "ICU" || a.PatientInfo.Name != "سارا" {
		t.Errorf("fields not restored: %+v", a)
	}
	if !a.ClinicalInfo.HasSurgery || a.ClinicalInfo.Surgeon != "Dr. K" {
		t.Errorf("clinical info not restored: %+v", a.ClinicalInfo)
	}
	if !a.CreatedAt.Equal(created) {
		t.Errorf("createdAt = %v", a.CreatedAt)
	}
	if a.Answers["q1"] != false || a.Answers["q_cleaning"] != 4 || a.Answers["q_nps"] != 9 {
		t.Errorf("typed answers not restored: %#v", a.Answers)
	}
	if a.Answers["q_comment"] != "خوب بود" || a.Answers["q_extra"] != 7 {
		t.Errorf("text answers not restored: %#v", a.Answers)
	}
	if len(a.AudioFiles) != 0 {
		t.Error("audio references are not part of the Excel backup")
	}

	b := got[1]
	if b.Answers["q1"] != true || len(b.Answers) != 1 || !b.CreatedAt.IsZero() {
		t.Errorf("unexpected second record %+v", b)
	}
}

func TestAnswerColumns(t *testing.T) {
	records := []types.Feedback{
		{Answers: map[string]interface{}{"zz": 1, "q_nps": 10, "aa": 2}},
		{Answers: map[string]interface{}{"q1": true}},
	}
	got := answerColumns(records, testQuestions)
	want := []string{"q1", "q_nps", "aa", "zz"}
	if len(got) != len(want) {
		t.Fatalf("answerColumns() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("answerColumns() = %v, want %v", got, want)
		}
	}
}

func TestTypedAnswer(t *testing.T) {
	tests := []struct {
		raw, qtype string
		want       interface{}
		ok         bool
	}{
		{"TRUE", types.QuestionYesNo, true, true},
		{"maybe", types.QuestionYesNo, false, false},
		{"3", types.QuestionLikert, 3, true},
		{"7.5", types.QuestionNPS, 7.5, true},
		{"x", types.QuestionNPS, nil, false},
		{"NaN", types.QuestionLikert, nil, false},
		{"+Inf", types.QuestionNPS, nil, false},
		{"NaN", "", "NaN", true},
		{"12", types.QuestionText, "12", true},
		{"false", "", false, true},
		{"8", "", 8, true},
		{"hello", "", "hello", true},
	}
	for _, tt := range tests {
		got, ok := typedAnswer(tt.raw, tt.qtype)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("typedAnswer(%q, %q) = %#v, %v; want %#v, %v", tt.raw, tt.qtype, got, ok, tt.want, tt.ok)
		}
	}
}
