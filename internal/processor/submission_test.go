package processor

import (
	"context"
	"sync"
	"testing"

	"github.com/valentinpelus/survey-crm/pkg/analytics"
	"github.com/valentinpelus/survey-crm/pkg/notify"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

var questions = []types.Question{
	{ID: "q1", Text: "educated?", Type: types.QuestionYesNo, Order: 1},
	{ID: "q16", Text: "needs re-education?", Type: types.QuestionYesNo, Order: 2},
	{ID: "q_food", Text: "food", Type: types.QuestionLikert, Order: 3},
	{ID: "q_nps", Text: "recommend?", Type: types.QuestionNPS, Order: 4},
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) Name() string { return "recording" }

func TestBuildEvent(t *testing.T) {
	f := types.Feedback{
		ID:                "f1",
		TrackingID:        1005,
		Ward:              "CCU",
		RegistrarUsername: "kand",
		PatientInfo:       types.PatientInfo{Name: "Ali", NationalID: "123"},
		Answers:           map[string]interface{}{"q1": true, "q16": true, "q_food": 2, "q_nps": 9},
	}

	e, ok := BuildEvent(f, questions, analytics.DefaultPolicy())
	if !ok {
		t.Fatal("expected an urgent event")
	}
	if len(e.Triggers) != 2 || e.Triggers[0].QuestionID != "q16" || e.Triggers[1].QuestionID != "q_food" {
		t.Errorf("unexpected triggers %+v", e.Triggers)
	}
	if e.Triggers[0].Question != "needs re-education?" || e.Registrar != "kand" {
		t.Errorf("unexpected event %+v", e)
	}

	f.Answers = map[string]interface{}{"q1": true, "q_nps": 10}
	if _, ok := BuildEvent(f, questions, analytics.DefaultPolicy()); ok {
		t.Error("a satisfied patient should not produce an event")
	}
}

func TestProcessSaved(t *testing.T) {
	n := &recordingNotifier{}
	p := NewSubmissionProcessor(analytics.DefaultPolicy(), n)

	urgent := types.Feedback{ID: "u", Status: types.StatusFinal, Answers: map[string]interface{}{"q_nps": 2}}
	draft := types.Feedback{ID: "d", Status: types.StatusDraft, Answers: map[string]interface{}{"q_nps": 2}}
	calm := types.Feedback{ID: "c", Status: types.StatusFinal, Answers: map[string]interface{}{"q_nps": 10}}

	if p.ProcessSaved(draft, true, questions) != nil {
		t.Error("drafts are never notified")
	}
	if p.ProcessSaved(calm, true, questions) != nil {
		t.Error("non-urgent submissions are never notified")
	}
	if e := p.ProcessSaved(urgent, false, questions); e == nil || e.FeedbackID != "u" {
		t.Fatalf("expected an event, got %+v", e)
	}
	p.Wait()

	if len(n.events) != 1 || n.events[0].FeedbackID != "u" {
		t.Errorf("notifier got %+v", n.events)
	}
}

func TestProcessSaved_NoNotifier(t *testing.T) {
	p := NewSubmissionProcessor(analytics.DefaultPolicy(), nil)
	urgent := types.Feedback{Status: types.StatusFinal, Answers: map[string]interface{}{"q1": false}}
	if p.ProcessSaved(urgent, true, questions) == nil {
		t.Error("the event is still returned without sinks")
	}
	p.Wait()
}
