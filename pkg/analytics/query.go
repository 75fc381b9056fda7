package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// TimeRange selects the Jalali date window of a dashboard query
type TimeRange string

const (
	RangeToday   TimeRange = "today"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
	RangeCustom  TimeRange = "custom"
	RangeAll     TimeRange = "all"
)

// Views of the dashboard table
const (
	ViewDefault = "default"
	ViewUrgent  = "urgent"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ErrUnknownSortKey is returned for sort keys that do not name a sortable field
var ErrUnknownSortKey = errors.New("unknown sort key")

// Query describes one dashboard request
type Query struct {
	Range    TimeRange
	From     JalaliDate // inclusive, custom range only
	To       JalaliDate // inclusive, custom range only
	Source   string     // "all", "public", "staff" or "user-<username>"
	Search   string
	SortKey  string
	SortDesc bool
	View     string
	Page     int
	PageSize int
}

// Row is one table row: the record plus computed columns
type Row struct {
	types.Feedback
	Duplicate bool `json:"duplicate"`
	AgeYears  int  `json:"ageYears"`
	StayDays  int  `json:"stayDays"`
}

// Dashboard is the response to a dashboard query
type Dashboard struct {
	Analytics  types.Analytics `json:"analytics"`
	Items      []Row           `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// Run filters, aggregates, sorts and paginates records the way the admin dashboard does.
// Only final records are considered.
func Run(records []types.Feedback, questions []types.Question, policy Policy, q Query, now time.Time, loc *time.Location) (Dashboard, error) {
	final := lo.Filter(records, func(f types.Feedback, _ int) bool { return f.IsFinal() })
	filtered := Filter(final, q, now, loc)
	result := Calculate(filtered, questions, policy)

	source := filtered
	if q.View == ViewUrgent {
		source = result.UrgentList
	}
	sorted := append([]types.Feedback(nil), source...)
	if err := Sort(sorted, q.SortKey, q.SortDesc, now, loc); err != nil {
		return Dashboard{}, err
	}

	dupes := DuplicateNationalIDs(final)
	page, size := normalizePage(q.Page, q.PageSize)
	start := (page - 1) * size
	end := start + size
	if start > len(sorted) {
		start = len(sorted)
	}
	if end > len(sorted) {
		end = len(sorted)
	}

	items := make([]Row, 0, end-start)
	for _, f := range sorted[start:end] {
		items = append(items, Row{
			Feedback:  f,
			Duplicate: dupes[strings.TrimSpace(f.PatientInfo.NationalID)],
			AgeYears:  AgeYears(f.PatientInfo.BirthDate, now, loc),
			StayDays:  StayDays(f.PatientInfo.AdmissionDate, f.DischargeInfo.Date),
		})
	}

	return Dashboard{
		Analytics:  result,
		Items:      items,
		Total:      len(sorted),
		Page:       page,
		PageSize:   size,
		TotalPages: (len(sorted) + size - 1) / size,
	}, nil
}

// Filter applies the time range, source and search filters
func Filter(records []types.Feedback, q Query, now time.Time, loc *time.Location) []types.Feedback {
	today := JalaliOf(now, loc)
	term := strings.ToLower(strings.TrimSpace(q.Search))

	return lo.Filter(records, func(f types.Feedback, _ int) bool {
		return inRange(f, q, today, loc) && matchesSource(f, q.Source) && matchesSearch(f, term)
	})
}

func inRange(f types.Feedback, q Query, today JalaliDate, loc *time.Location) bool {
	d := JalaliOf(f.CreatedAt, loc)
	switch q.Range {
	case RangeToday:
		return d == today
	case RangeWeekly:
		ago := today.AbsoluteDays() - d.AbsoluteDays()
		return ago >= 0 && ago < 7
	case RangeMonthly:
		return d.Year == today.Year && d.Month == today.Month
	case RangeCustom:
		n := d.Number()
		return n >= q.From.Number() && n <= q.To.Number()
	}
	return true
}

func matchesSource(f types.Feedback, source string) bool {
	switch {
	case source == "" || strings.EqualFold(source, "all"):
		return true
	case source == types.SourcePublic:
		return f.Source == types.SourcePublic
	case source == types.SourceStaff:
		return f.Source == types.SourceStaff
	case strings.HasPrefix(source, "user-"):
		return f.RegistrarUsername == strings.TrimPrefix(source, "user-")
	}
	return true
}

func matchesSearch(f types.Feedback, term string) bool {
	if term == "" {
		return true
	}
	fields := []string{
		f.PatientInfo.Name,
		f.PatientInfo.Mobile,
		f.PatientInfo.NationalID,
		f.Ward,
	}
	if f.TrackingID != 0 {
		fields = append(fields, strconv.FormatInt(f.TrackingID, 10))
	}
	return lo.SomeBy(fields, func(s string) bool {
		return strings.Contains(strings.ToLower(s), term)
	})
}

// Sort orders records in place by a dotted field path or by the computed keys "age" and
// "duration". An empty key sorts by creation time, newest first.
func Sort(records []types.Feedback, key string, desc bool, now time.Time, loc *time.Location) error {
	if key == "" {
		sort.SliceStable(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
		return nil
	}

	values := make([]sortValue, len(records))
	for i := range records {
		v, err := valueOf(&records[i], key, now, loc)
		if err != nil {
			return err
		}
		values[i] = v
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := values[idx[a]].compare(values[idx[b]])
		if desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]types.Feedback, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
	return nil
}

type sortValue struct {
	num   float64
	str   string
	isNum bool
}

func (v sortValue) compare(o sortValue) int {
	if v.isNum && o.isNum {
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	}
	return strings.Compare(v.str, o.str)
}

func num(n float64) sortValue { return sortValue{num: n, isNum: true, str: strconv.FormatFloat(n, 'f', -1, 64)} }
func str(s string) sortValue  { return sortValue{str: s} }

func flag(b bool) sortValue {
	if b {
		return num(1)
	}
	return num(0)
}

func valueOf(f *types.Feedback, key string, now time.Time, loc *time.Location) (sortValue, error) {
	switch key {
	case "age":
		return num(float64(AgeYears(f.PatientInfo.BirthDate, now, loc))), nil
	case "duration":
		return num(float64(StayDays(f.PatientInfo.AdmissionDate, f.DischargeInfo.Date))), nil
	case "id":
		return str(f.ID), nil
	case "trackingId":
		return num(float64(f.TrackingID)), nil
	case "source":
		return str(f.Source), nil
	case "status":
		return str(f.Status), nil
	case "ward":
		return str(f.Ward), nil
	case "surveyType":
		return str(f.SurveyType), nil
	case "registrarName":
		return str(f.RegistrarName), nil
	case "registrarUsername":
		return str(f.RegistrarUsername), nil
	case "createdAt":
		return num(float64(f.CreatedAt.UnixNano())), nil
	case "lastModified":
		return num(float64(f.LastModified.UnixNano())), nil
	case "patientInfo.name":
		return str(f.PatientInfo.Name), nil
	case "patientInfo.nationalId":
		return str(f.PatientInfo.NationalID), nil
	case "patientInfo.gender":
		return str(f.PatientInfo.Gender), nil
	case "patientInfo.birthDate":
		return str(f.PatientInfo.BirthDate), nil
	case "patientInfo.mobile":
		return str(f.PatientInfo.Mobile), nil
	case "patientInfo.address":
		return str(f.PatientInfo.Address), nil
	case "patientInfo.admissionDate":
		return str(f.PatientInfo.AdmissionDate), nil
	case "insuranceInfo.type":
		return str(f.InsuranceInfo.Type), nil
	case "insuranceInfo.name":
		return str(f.InsuranceInfo.Name), nil
	case "clinicalInfo.reason":
		return str(f.ClinicalInfo.Reason), nil
	case "clinicalInfo.doctor":
		return str(f.ClinicalInfo.Doctor), nil
	case "clinicalInfo.hasSurgery":
		return flag(f.ClinicalInfo.HasSurgery), nil
	case "clinicalInfo.surgeon":
		return str(f.ClinicalInfo.Surgeon), nil
	case "clinicalInfo.surgeryType":
		return str(f.ClinicalInfo.SurgeryType), nil
	case "dischargeInfo.isDischarged":
		return flag(f.DischargeInfo.IsDischarged), nil
	case "dischargeInfo.date":
		return str(f.DischargeInfo.Date), nil
	case "dischargeInfo.type":
		return str(f.DischargeInfo.Type), nil
	case "dischargeInfo.doctor":
		return str(f.DischargeInfo.Doctor), nil
	}

	if qid, ok := strings.CutPrefix(key, "answers."); ok {
		v := f.Answers[qid]
		if n, ok := answerNumber(v); ok {
			return num(n), nil
		}
		if b, ok := v.(bool); ok {
			return flag(b), nil
		}
		s, _ := v.(string)
		return str(s), nil
	}

	return sortValue{}, fmt.Errorf("%w: %s", ErrUnknownSortKey, key)
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}
