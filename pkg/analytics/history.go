package analytics

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// Group is the visit history of one patient
type Group struct {
	Key     string           `json:"key"`
	Records []types.Feedback `json:"records"`
}

// GroupByNationalID partitions records into visit histories. Records without a national id
// form their own single-record group keyed by the feedback id, so every record lands in
// exactly one group. Groups keep first-seen order; records inside a group are newest first.
func GroupByNationalID(records []types.Feedback) []Group {
	keyOf := func(f types.Feedback) string {
		if id := strings.TrimSpace(f.PatientInfo.NationalID); id != "" {
			return id
		}
		return "feedback:" + f.ID
	}

	grouped := lo.GroupBy(records, keyOf)
	keys := lo.Uniq(lo.Map(records, func(f types.Feedback, _ int) string { return keyOf(f) }))

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		recs := grouped[k]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
		groups = append(groups, Group{Key: k, Records: recs})
	}
	return groups
}

// DuplicateNationalIDs returns the national ids that appear on more than one record
func DuplicateNationalIDs(records []types.Feedback) map[string]bool {
	counts := lo.CountValuesBy(records, func(f types.Feedback) string {
		return strings.TrimSpace(f.PatientInfo.NationalID)
	})
	dupes := make(map[string]bool)
	for id, n := range counts {
		if id != "" && n > 1 {
			dupes[id] = true
		}
	}
	return dupes
}
