package analytics

import "github.com/valentinpelus/survey-crm/pkg/types"

// Policy decides which answers flag a record for urgent follow-up
type Policy struct {
	// LikertBelow flags Likert answers strictly below this value
	LikertBelow float64
	// NPSBelow flags NPS answers strictly below this value
	NPSBelow float64
	// InvertedYesNo lists yes/no questions where "yes" is the negative answer
	InvertedYesNo map[string]bool
	// IgnoredYesNo lists yes/no questions that never trigger follow-up
	IgnoredYesNo map[string]bool
}

// DefaultPolicy matches the default question set: q16 asks whether the patient needs
// re-education, q17 only records consent to a phone call.
func DefaultPolicy() Policy {
	return Policy{
		LikertBelow:   3,
		NPSBelow:      5,
		InvertedYesNo: map[string]bool{"q16": true},
		IgnoredYesNo:  map[string]bool{"q17": true},
	}
}

// Triggers returns the ids of the questions whose answers make the record urgent,
// in question order. An empty result means the record needs no follow-up.
func (p Policy) Triggers(f *types.Feedback, questions []types.Question) []string {
	var triggered []string
	for _, q := range questions {
		v, ok := f.Answers[q.ID]
		if !ok || v == nil {
			continue
		}
		switch q.Type {
		case types.QuestionYesNo:
			if p.IgnoredYesNo[q.ID] {
				continue
			}
			yes, ok := answerBool(v)
			if !ok {
				continue
			}
			if yes == p.InvertedYesNo[q.ID] {
				triggered = append(triggered, q.ID)
			}
		case types.QuestionLikert:
			if n, ok := likertValue(v); ok && n < p.LikertBelow {
				triggered = append(triggered, q.ID)
			}
		case types.QuestionNPS:
			if n, ok := npsValue(v); ok && n < p.NPSBelow {
				triggered = append(triggered, q.ID)
			}
		}
	}
	return triggered
}

// IsUrgent reports whether the record needs urgent follow-up
func (p Policy) IsUrgent(f *types.Feedback, questions []types.Question) bool {
	return len(p.Triggers(f, questions)) > 0
}
