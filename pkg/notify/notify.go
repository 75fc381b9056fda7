package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/pkg/metrics"
)

// Trigger is one answer that made a submission urgent
type Trigger struct {
	QuestionID string      `json:"questionId"`
	Question   string      `json:"question"`
	Answer     interface{} `json:"answer"`
}

// Event describes a final submission that needs urgent follow-up
type Event struct {
	FeedbackID  string    `json:"feedbackId"`
	TrackingID  int64     `json:"trackingId"`
	PatientName string    `json:"patientName"`
	NationalID  string    `json:"nationalId,omitempty"`
	Mobile      string    `json:"mobile,omitempty"`
	Ward        string    `json:"ward,omitempty"`
	Source      string    `json:"source"`
	Registrar   string    `json:"registrar,omitempty"`
	Triggers    []Trigger `json:"triggers"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notifier delivers urgent follow-up events to one sink
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Name() string
}

// Multi fans an event out to every sink. A failing sink does not stop the others.
type Multi []Notifier

// Notify sends the event to every sink and joins their errors
func (m Multi) Notify(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, e); err != nil {
			metrics.UrgentNotifications.WithLabelValues(n.Name(), "failure").Inc()
			log.Error().Err(err).Str("sink", n.Name()).Int64("trackingId", e.TrackingID).Msg("Urgent notification failed")
			errs = append(errs, err)
			continue
		}
		metrics.UrgentNotifications.WithLabelValues(n.Name(), "success").Inc()
		log.Info().Str("sink", n.Name()).Int64("trackingId", e.TrackingID).Msg("Urgent notification sent")
	}
	return errors.Join(errs...)
}

// Name returns the sink names
func (m Multi) Name() string {
	name := "multi("
	for i, n := range m {
		if i > 0 {
			name += ","
		}
		name += n.Name()
	}
	return name + ")"
}
