package processor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/pkg/analytics"
	"github.com/valentinpelus/survey-crm/pkg/metrics"
	"github.com/valentinpelus/survey-crm/pkg/notify"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

const notifyTimeout = 30 * time.Second

// SubmissionProcessor reacts to saved feedback: final submissions that are urgent under the
// policy are sent to the configured notification sinks in the background.
type SubmissionProcessor struct {
	policy   analytics.Policy
	notifier notify.Notifier
	wg       sync.WaitGroup
}

// NewSubmissionProcessor creates a new processor. A nil notifier disables notifications.
func NewSubmissionProcessor(policy analytics.Policy, notifier notify.Notifier) *SubmissionProcessor {
	return &SubmissionProcessor{
		policy:   policy,
		notifier: notifier,
	}
}

// Policy returns the urgency policy
func (p *SubmissionProcessor) Policy() analytics.Policy {
	return p.policy
}

// ProcessSaved records the save and, for urgent final submissions, starts the notification.
// It returns the event when one was dispatched.
func (p *SubmissionProcessor) ProcessSaved(f types.Feedback, created bool, questions []types.Question) *notify.Event {
	metrics.FeedbackSaved.WithLabelValues(f.Status, boolLabel(created)).Inc()

	if !f.IsFinal() {
		return nil
	}
	event, ok := BuildEvent(f, questions, p.policy)
	if !ok {
		return nil
	}

	log.Warn().
		Int64("trackingId", f.TrackingID).
		Str("ward", f.Ward).
		Int("triggers", len(event.Triggers)).
		Msg("Submission needs urgent follow-up")

	if p.notifier == nil {
		return &event
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := p.notifier.Notify(ctx, event); err != nil {
			log.Error().Err(err).Int64("trackingId", event.TrackingID).Msg("Failed to deliver urgent notification")
		}
	}()
	return &event
}

// Wait blocks until every dispatched notification finished
func (p *SubmissionProcessor) Wait() {
	p.wg.Wait()
}

// BuildEvent converts an urgent submission into a notification event
func BuildEvent(f types.Feedback, questions []types.Question, policy analytics.Policy) (notify.Event, bool) {
	ids := policy.Triggers(&f, questions)
	if len(ids) == 0 {
		return notify.Event{}, false
	}

	texts := make(map[string]string, len(questions))
	for _, q := range questions {
		texts[q.ID] = q.Text
	}

	triggers := make([]notify.Trigger, 0, len(ids))
	for _, id := range ids {
		triggers = append(triggers, notify.Trigger{
			QuestionID: id,
			Question:   texts[id],
			Answer:     f.Answers[id],
		})
	}

	registrar := f.RegistrarName
	if registrar == "" {
		registrar = f.RegistrarUsername
	}

	return notify.Event{
		FeedbackID:  f.ID,
		TrackingID:  f.TrackingID,
		PatientName: f.PatientInfo.Name,
		NationalID:  f.PatientInfo.NationalID,
		Mobile:      f.PatientInfo.Mobile,
		Ward:        f.Ward,
		Source:      f.Source,
		Registrar:   registrar,
		Triggers:    triggers,
		CreatedAt:   f.CreatedAt,
	}, true
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
