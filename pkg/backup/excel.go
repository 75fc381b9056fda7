package backup

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

const (
	// ExcelFileName is the attachment name of the Excel backup
	ExcelFileName = "CRM_Backup_Full.xlsx"
	// ExcelSheetName is the single sheet holding one row per feedback
	ExcelSheetName = "گزارش کامل"

	answerPrefix = "answers."
)

// ErrNoRows is returned when the workbook holds no header row
var ErrNoRows = errors.New("excel file has no rows")

type column struct {
	name string
	get  func(f *types.Feedback) interface{}
	set  func(f *types.Feedback, v string)
}

func text(get func(f *types.Feedback) *string) column {
	return column{
		get: func(f *types.Feedback) interface{} { return *get(f) },
		set: func(f *types.Feedback, v string) { *get(f) = v },
	}
}

func boolean(get func(f *types.Feedback) *bool) column {
	return column{
		get: func(f *types.Feedback) interface{} { return *get(f) },
		set: func(f *types.Feedback, v string) { *get(f), _ = parseBool(v) },
	}
}

func timestamp(get func(f *types.Feedback) *time.Time) column {
	return column{
		get: func(f *types.Feedback) interface{} {
			if t := *get(f); !t.IsZero() {
				return t.UTC().Format(time.RFC3339)
			}
			return ""
		},
		set: func(f *types.Feedback, v string) {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
				*get(f) = t
			}
		},
	}
}

func named(name string, c column) column {
	c.name = name
	return c
}

// columns lists the fixed part of the flattened layout, in sheet order
var columns = []column{
	named("id", text(func(f *types.Feedback) *string { return &f.ID })),
	{
		name: "trackingId",
		get:  func(f *types.Feedback) interface{} { return f.TrackingID },
		set: func(f *types.Feedback, v string) {
			if n, ok := parseNumber(v); ok {
				f.TrackingID = int64(n)
			}
		},
	},
	named("source", text(func(f *types.Feedback) *string { return &f.Source })),
	named("surveyType", text(func(f *types.Feedback) *string { return &f.SurveyType })),
	named("registrarName", text(func(f *types.Feedback) *string { return &f.RegistrarName })),
	named("registrarUsername", text(func(f *types.Feedback) *string { return &f.RegistrarUsername })),
	named("status", text(func(f *types.Feedback) *string { return &f.Status })),
	named("ward", text(func(f *types.Feedback) *string { return &f.Ward })),
	named("patientInfo.name", text(func(f *types.Feedback) *string { return &f.PatientInfo.Name })),
	named("patientInfo.nationalId", text(func(f *types.Feedback) *string { return &f.PatientInfo.NationalID })),
	named("patientInfo.gender", text(func(f *types.Feedback) *string { return &f.PatientInfo.Gender })),
	named("patientInfo.birthDate", text(func(f *types.Feedback) *string { return &f.PatientInfo.BirthDate })),
	named("patientInfo.mobile", text(func(f *types.Feedback) *string { return &f.PatientInfo.Mobile })),
	named("patientInfo.address", text(func(f *types.Feedback) *string { return &f.PatientInfo.Address })),
	named("patientInfo.admissionDate", text(func(f *types.Feedback) *string { return &f.PatientInfo.AdmissionDate })),
	named("insuranceInfo.type", text(func(f *types.Feedback) *string { return &f.InsuranceInfo.Type })),
	named("insuranceInfo.name", text(func(f *types.Feedback) *string { return &f.InsuranceInfo.Name })),
	named("clinicalInfo.reason", text(func(f *types.Feedback) *string { return &f.ClinicalInfo.Reason })),
	named("clinicalInfo.doctor", text(func(f *types.Feedback) *string { return &f.ClinicalInfo.Doctor })),
	named("clinicalInfo.hasSurgery", boolean(func(f *types.Feedback) *bool { return &f.ClinicalInfo.HasSurgery })),
	named("clinicalInfo.surgeon", text(func(f *types.Feedback) *string { return &f.ClinicalInfo.Surgeon })),
	named("clinicalInfo.surgeryType", text(func(f *types.Feedback) *string { return &f.ClinicalInfo.SurgeryType })),
	named("dischargeInfo.isDischarged", boolean(func(f *types.Feedback) *bool { return &f.DischargeInfo.IsDischarged })),
	named("dischargeInfo.date", text(func(f *types.Feedback) *string { return &f.DischargeInfo.Date })),
	named("dischargeInfo.type", text(func(f *types.Feedback) *string { return &f.DischargeInfo.Type })),
	named("dischargeInfo.doctor", text(func(f *types.Feedback) *string { return &f.DischargeInfo.Doctor })),
	named("createdAt", timestamp(func(f *types.Feedback) *time.Time { return &f.CreatedAt })),
	named("lastModified", timestamp(func(f *types.Feedback) *time.Time { return &f.LastModified })),
}

// WriteExcel writes one flattened row per feedback. Audio references are omitted.
func WriteExcel(w io.Writer, records []types.Feedback, questions []types.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExcelSheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	rtl := true
	if err := f.SetSheetView(ExcelSheetName, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("failed to set sheet view: %w", err)
	}

	answerIDs := answerColumns(records, questions)

	header := make([]interface{}, 0, len(columns)+len(answerIDs))
	for _, c := range columns {
		header = append(header, c.name)
	}
	for _, id := range answerIDs {
		header = append(header, answerPrefix+id)
	}
	if err := f.SetSheetRow(ExcelSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range records {
		row := make([]interface{}, 0, len(header))
		for _, c := range columns {
			row = append(row, c.get(&records[i]))
		}
		for _, id := range answerIDs {
			v, ok := records[i].Answers[id]
			if !ok {
				v = nil
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ExcelSheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadExcel parses the first sheet of a workbook back into feedback records.
// Answers are typed by their question type; unknown question ids are inferred from the cell text.
func ReadExcel(r io.Reader, questions []types.Question) ([]types.Feedback, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	byName := make(map[string]column, len(columns))
	for _, c := range columns {
		byName[c.name] = c
	}
	qtypes := make(map[string]string, len(questions))
	for _, q := range questions {
		qtypes[q.ID] = q.Type
	}

	header := rows[0]
	records := make([]types.Feedback, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		fb := types.Feedback{Answers: map[string]interface{}{}}
		for i, name := range header {
			if i >= len(row) || row[i] == "" {
				continue
			}
			name = strings.TrimSpace(name)
			if qid, ok := strings.CutPrefix(name, answerPrefix); ok {
				if v, ok := typedAnswer(row[i], qtypes[qid]); ok {
					fb.Answers[qid] = v
				}
				continue
			}
			if c, ok := byName[name]; ok {
				c.set(&fb, row[i])
			}
		}
		records = append(records, fb)
	}
	return records, nil
}

// answerColumns orders answer ids by question order, then any unknown ids alphabetically
func answerColumns(records []types.Feedback, questions []types.Question) []string {
	seen := map[string]bool{}
	for _, r := range records {
		for id := range r.Answers {
			seen[id] = true
		}
	}

	qs := make([]types.Question, len(questions))
	copy(qs, questions)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })

	ids := make([]string, 0, len(seen))
	for _, q := range qs {
		if seen[q.ID] {
			ids = append(ids, q.ID)
			delete(seen, q.ID)
		}
	}
	rest := make([]string, 0, len(seen))
	for id := range seen {
		rest = append(rest, id)
	}
	sort.Strings(rest)
	return append(ids, rest...)
}

func typedAnswer(raw, qtype string) (interface{}, bool) {
	raw = strings.TrimSpace(raw)
	switch qtype {
	case types.QuestionYesNo:
		return parseBool(raw)
	case types.QuestionLikert, types.QuestionNPS:
		if n, ok := parseNumber(raw); ok {
			return intOrFloat(n), true
		}
		return nil, false
	case types.QuestionText:
		return raw, true
	}
	if b, ok := parseBool(raw); ok {
		return b, true
	}
	if n, ok := parseNumber(raw); ok {
		return intOrFloat(n), true
	}
	return raw, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func intOrFloat(n float64) interface{} {
	if n == float64(int64(n)) {
		return int(n)
	}
	return n
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
