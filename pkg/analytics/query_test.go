package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

// 1403/01/06
var now = time.Date(2024, 3, 25, 12, 0, 0, 0, tehran)

func dated(id string, created time.Time, mutate func(*types.Feedback)) types.Feedback {
	f := types.Feedback{
		ID:        id,
		Status:    types.StatusFinal,
		Source:    types.SourceStaff,
		CreatedAt: created,
		Answers:   map[string]interface{}{},
	}
	if mutate != nil {
		mutate(&f)
	}
	return f
}

func ids(records []types.Feedback) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func sameIDs(t *testing.T, got []types.Feedback, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestJalali(t *testing.T) {
	if d := JalaliOf(time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC), tehran); d != (JalaliDate{1403, 1, 1}) {
		t.Errorf("2024-03-20 should be 1403/01/01, got %s", d)
	}
	if d := JalaliOf(time.Date(2024, 3, 19, 12, 0, 0, 0, time.UTC), tehran); d != (JalaliDate{1402, 12, 29}) {
		t.Errorf("2024-03-19 should be 1402/12/29, got %s", d)
	}
	if d, err := ParseJalali("۱۴۰۳/۰۱/۰۶"); err != nil || d != (JalaliDate{1403, 1, 6}) {
		t.Errorf("persian digits not parsed: %v %v", d, err)
	}
	if _, err := ParseJalali("1403/13/01"); err == nil {
		t.Error("month 13 should be rejected")
	}
	if n := StayDays("1402/12/29", "1403/01/01"); n != 1 {
		t.Errorf("StayDays across new year = %d, want 1", n)
	}
	if n := StayDays("1403/01/06", "1403/01/01"); n != 0 {
		t.Errorf("StayDays should never be negative, got %d", n)
	}
	if n := StayDays("1403/01/01", ""); n != -1 {
		t.Errorf("StayDays without discharge = %d, want -1", n)
	}
	if n := AgeYears("1370/05/10", now, tehran); n != 32 {
		t.Errorf("AgeYears = %d, want 32", n)
	}
}

func TestFilter_TimeRanges(t *testing.T) {
	records := []types.Feedback{
		dated("today", time.Date(2024, 3, 25, 9, 0, 0, 0, tehran), nil),
		dated("nowruz", time.Date(2024, 3, 20, 9, 0, 0, 0, tehran), nil),
		dated("week-edge", time.Date(2024, 3, 19, 9, 0, 0, 0, tehran), nil),
		dated("eight-days", time.Date(2024, 3, 18, 9, 0, 0, 0, tehran), nil),
		dated("old", time.Date(2024, 3, 5, 9, 0, 0, 0, tehran), nil),
	}

	sameIDs(t, Filter(records, Query{Range: RangeToday}, now, tehran), "today")
	sameIDs(t, Filter(records, Query{Range: RangeWeekly}, now, tehran), "today", "nowruz", "week-edge")
	sameIDs(t, Filter(records, Query{Range: RangeMonthly}, now, tehran), "today", "nowruz")
	sameIDs(t, Filter(records, Query{Range: RangeAll}, now, tehran), "today", "nowruz", "week-edge", "eight-days", "old")

	custom := Query{Range: RangeCustom, From: JalaliDate{1402, 12, 1}, To: JalaliDate{1402, 12, 29}}
	sameIDs(t, Filter(records, custom, now, tehran), "week-edge", "eight-days", "old")

	future := []types.Feedback{dated("future", time.Date(2024, 3, 27, 9, 0, 0, 0, tehran), nil)}
	sameIDs(t, Filter(future, Query{Range: RangeWeekly}, now, tehran))
}

func TestFilter_SourceAndSearch(t *testing.T) {
	created := time.Date(2024, 3, 25, 9, 0, 0, 0, tehran)
	records := []types.Feedback{
		dated("p", created, func(f *types.Feedback) { f.Source = types.SourcePublic; f.PatientInfo.Name = "Sara" }),
		dated("s1", created, func(f *types.Feedback) { f.RegistrarUsername = "farid"; f.Ward = "ICU" }),
		dated("s2", created, func(f *types.Feedback) { f.RegistrarUsername = "sec"; f.TrackingID = 1042 }),
	}

	sameIDs(t, Filter(records, Query{Source: "public"}, now, tehran), "p")
	sameIDs(t, Filter(records, Query{Source: "staff"}, now, tehran), "s1", "s2")
	sameIDs(t, Filter(records, Query{Source: "user-farid"}, now, tehran), "s1")
	sameIDs(t, Filter(records, Query{Search: "sara"}, now, tehran), "p")
	sameIDs(t, Filter(records, Query{Search: "icu"}, now, tehran), "s1")
	sameIDs(t, Filter(records, Query{Search: "104"}, now, tehran), "s2")
}

func TestSort(t *testing.T) {
	base := time.Date(2024, 3, 25, 9, 0, 0, 0, tehran)
	records := []types.Feedback{
		dated("b", base.Add(time.Hour), func(f *types.Feedback) {
			f.TrackingID = 1002
			f.PatientInfo.BirthDate = "1380/01/01"
			f.PatientInfo.AdmissionDate = "1403/01/01"
			f.DischargeInfo.Date = "1403/01/05"
		}),
		dated("a", base, func(f *types.Feedback) {
			f.TrackingID = 1001
			f.PatientInfo.BirthDate = "1360/01/01"
		}),
		dated("c", base.Add(2*time.Hour), func(f *types.Feedback) {
			f.TrackingID = 1010
			f.PatientInfo.BirthDate = "1399/01/01"
			f.PatientInfo.AdmissionDate = "1403/01/01"
			f.DischargeInfo.Date = "1403/01/02"
		}),
	}

	if err := Sort(records, "", false, now, tehran); err != nil {
		t.Fatal(err)
	}
	sameIDs(t, records, "c", "b", "a")

	if err := Sort(records, "trackingId", false, now, tehran); err != nil {
		t.Fatal(err)
	}
	sameIDs(t, records, "a", "b", "c")

	if err := Sort(records, "age", true, now, tehran); err != nil {
		t.Fatal(err)
	}
	sameIDs(t, records, "a", "b", "c")

	if err := Sort(records, "duration", false, now, tehran); err != nil {
		t.Fatal(err)
	}
	sameIDs(t, records, "a", "c", "b")

	if err := Sort(records, "patientInfo.bogus", false, now, tehran); !errors.Is(err, ErrUnknownSortKey) {
		t.Errorf("expected ErrUnknownSortKey, got %v", err)
	}
}

func TestRun_PaginationAndUrgentView(t *testing.T) {
	var records []types.Feedback
	for i := 0; i < 23; i++ {
		created := now.Add(-time.Duration(i) * time.Minute)
		records = append(records, dated(string(rune('a'+i)), created, func(f *types.Feedback) {
			f.PatientInfo.NationalID = "0012345678"
			if i%5 == 0 {
				f.Answers["q1"] = false
			}
		}))
	}
	records = append(records, dated("draft", now, func(f *types.Feedback) { f.Status = types.StatusDraft }))

	d, err := Run(records, testQuestions, DefaultPolicy(), Query{Page: 3}, now, tehran)
	if err != nil {
		t.Fatal(err)
	}
	if d.Total != 23 || d.TotalPages != 3 || len(d.Items) != 3 || d.PageSize != DefaultPageSize {
		t.Errorf("unexpected page: total=%d pages=%d items=%d", d.Total, d.TotalPages, len(d.Items))
	}
	if !d.Items[0].Duplicate {
		t.Error("shared national id should be flagged as duplicate")
	}

	d, err = Run(records, testQuestions, DefaultPolicy(), Query{View: ViewUrgent}, now, tehran)
	if err != nil {
		t.Fatal(err)
	}
	if d.Total != 5 || d.Analytics.UrgentFollowUps != 5 {
		t.Errorf("urgent view should list 5 records, got %d", d.Total)
	}
}

func TestGroupByNationalID(t *testing.T) {
	base := time.Date(2024, 3, 25, 9, 0, 0, 0, tehran)
	records := []types.Feedback{
		dated("1", base, func(f *types.Feedback) { f.PatientInfo.NationalID = "A" }),
		dated("2", base, nil),
		dated("3", base.Add(time.Hour), func(f *types.Feedback) { f.PatientInfo.NationalID = "A" }),
		dated("4", base, func(f *types.Feedback) { f.PatientInfo.NationalID = "B" }),
		dated("5", base, nil),
	}

	groups := GroupByNationalID(records)
	if len(groups) != 4 {
		t.Fatalf("want 4 groups, got %d", len(groups))
	}

	seen := map[string]int{}
	for _, g := range groups {
		for _, r := range g.Records {
			seen[r.ID]++
		}
	}
	if len(seen) != len(records) {
		t.Errorf("union of groups should equal the input, got %v", seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("record %s appears in %d groups", id, n)
		}
	}

	sameIDs(t, groups[0].Records, "3", "1")

	dupes := DuplicateNationalIDs(records)
	if !dupes["A"] || dupes["B"] || dupes[""] {
		t.Errorf("unexpected duplicates %v", dupes)
	}
}
