package analytics

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// Calculate aggregates an already filtered set of final records. It is a pure one-pass
// reduction; callers recompute it whenever their filter changes.
func Calculate(records []types.Feedback, questions []types.Question, policy Policy) types.Analytics {
	ordered := SortQuestions(questions)

	likert := lo.Filter(ordered, func(q types.Question, _ int) bool { return q.Type == types.QuestionLikert })
	yesNo := lo.Filter(ordered, func(q types.Question, _ int) bool { return q.Type == types.QuestionYesNo })
	text := lo.Filter(ordered, func(q types.Question, _ int) bool { return q.Type == types.QuestionText })
	nps := lo.Filter(ordered, func(q types.Question, _ int) bool { return q.Type == types.QuestionNPS })

	likertSum := make(map[string]float64, len(likert))
	likertCount := make(map[string]int, len(likert))
	yesCount := make(map[string]int, len(yesNo))
	noCount := make(map[string]int, len(yesNo))
	comments := make(map[string][]types.Comment, len(text))

	var (
		totalLikert float64
		likertN     int
		breakdown   types.NPSBreakdown
		urgent      = []types.Feedback{}
	)

	for i := range records {
		rec := &records[i]

		for _, q := range likert {
			if n, ok := likertValue(rec.Answers[q.ID]); ok {
				likertSum[q.ID] += n
				likertCount[q.ID]++
				totalLikert += n
				likertN++
			}
		}

		for _, q := range yesNo {
			if yes, ok := answerBool(rec.Answers[q.ID]); ok {
				if yes {
					yesCount[q.ID]++
				} else {
					noCount[q.ID]++
				}
			}
		}

		// one score per record: the first answered NPS question
		for _, q := range nps {
			if n, ok := npsValue(rec.Answers[q.ID]); ok {
				switch {
				case n >= 9:
					breakdown.Promoters++
				case n <= 6:
					breakdown.Detractors++
				default:
					breakdown.Passives++
				}
				break
			}
		}

		for _, q := range text {
			if s, ok := answerText(rec.Answers[q.ID]); ok {
				comments[q.ID] = append(comments[q.ID], types.Comment{
					ID:          rec.ID,
					Comment:     s,
					PatientName: rec.PatientInfo.Name,
					Date:        rec.CreatedAt,
				})
			}
		}

		if policy.IsUrgent(rec, ordered) {
			urgent = append(urgent, *rec)
		}
	}

	result := types.Analytics{
		TotalCount:      len(records),
		UrgentFollowUps: len(urgent),
		NPSBreakdown:    breakdown,
		NPSScore:        NPS(breakdown),
		CategoryData:    []types.CategoryStat{},
		YesNoStats:      []types.YesNoStat{},
		TextComments:    []types.TextComments{},
		UrgentList:      urgent,
	}
	if likertN > 0 {
		result.AverageSatisfaction = round1(totalLikert / float64(likertN))
	}

	for _, q := range likert {
		if n := likertCount[q.ID]; n > 0 {
			result.CategoryData = append(result.CategoryData, types.CategoryStat{
				ID:    q.ID,
				Name:  q.Text,
				Value: round1(likertSum[q.ID] / float64(n)),
				Count: n,
			})
		}
	}

	for _, q := range yesNo {
		yes, no := yesCount[q.ID], noCount[q.ID]
		if yes+no == 0 {
			continue
		}
		yesPct := int(math.Round(float64(yes) / float64(yes+no) * 100))
		result.YesNoStats = append(result.YesNoStats, types.YesNoStat{
			ID:         q.ID,
			Text:       q.Text,
			YesCount:   yes,
			NoCount:    no,
			YesPercent: yesPct,
			NoPercent:  100 - yesPct,
		})
	}

	for _, q := range text {
		list := comments[q.ID]
		if len(list) == 0 {
			continue
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
		result.TextComments = append(result.TextComments, types.TextComments{ID: q.ID, Text: q.Text, Comments: list})
	}

	return result
}

// NPS returns percent promoters minus percent detractors, rounded, in [-100, 100]
func NPS(b types.NPSBreakdown) int {
	total := b.Promoters + b.Passives + b.Detractors
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(b.Promoters-b.Detractors) / float64(total) * 100))
}

// SortQuestions returns the questions ordered by their display order
func SortQuestions(questions []types.Question) []types.Question {
	ordered := append([]types.Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	return ordered
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
