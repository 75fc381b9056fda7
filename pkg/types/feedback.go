package types

import "time"

// Feedback sources
const (
	SourcePublic = "public"
	SourceStaff  = "staff"
)

// Feedback lifecycle states
const (
	StatusDraft = "draft"
	StatusFinal = "final"
)

// AddressAudioKey is the audioFiles key used for the recorded patient address
const AddressAudioKey = "address"

// Feedback is one survey submission, draft or final
type Feedback struct {
	ID                string                 `json:"id" bson:"id"`
	TrackingID        int64                  `json:"trackingId" bson:"trackingId"`
	Source            string                 `json:"source" bson:"source"`
	SurveyType        string                 `json:"surveyType,omitempty" bson:"surveyType,omitempty"`
	RegistrarName     string                 `json:"registrarName,omitempty" bson:"registrarName,omitempty"`
	RegistrarUsername string                 `json:"registrarUsername,omitempty" bson:"registrarUsername,omitempty"`
	Status            string                 `json:"status" bson:"status"`
	Ward              string                 `json:"ward" bson:"ward"`
	PatientInfo       PatientInfo            `json:"patientInfo" bson:"patientInfo"`
	InsuranceInfo     InsuranceInfo          `json:"insuranceInfo" bson:"insuranceInfo"`
	ClinicalInfo      ClinicalInfo           `json:"clinicalInfo" bson:"clinicalInfo"`
	DischargeInfo     DischargeInfo          `json:"dischargeInfo" bson:"dischargeInfo"`
	Answers           map[string]interface{} `json:"answers" bson:"answers"`
	AudioFiles        AudioFiles             `json:"audioFiles,omitempty" bson:"audioFiles,omitempty"`
	CreatedAt         time.Time              `json:"createdAt" bson:"createdAt"`
	LastModified      time.Time              `json:"lastModified,omitempty" bson:"lastModified,omitempty"`
}

// PatientInfo holds patient identity and demographics. Dates are Jalali yyyy/mm/dd strings.
type PatientInfo struct {
	Name          string `json:"name" bson:"name"`
	NationalID    string `json:"nationalId" bson:"nationalId"`
	Gender        string `json:"gender" bson:"gender"`
	BirthDate     string `json:"birthDate" bson:"birthDate"`
	Mobile        string `json:"mobile" bson:"mobile"`
	Address       string `json:"address" bson:"address"`
	AdmissionDate string `json:"admissionDate" bson:"admissionDate"`
}

// InsuranceInfo classifies the patient's insurance
type InsuranceInfo struct {
	Type string `json:"type" bson:"type"`
	Name string `json:"name" bson:"name"`
}

// ClinicalInfo holds admission reason and surgery details
type ClinicalInfo struct {
	Reason      string `json:"reason" bson:"reason"`
	Doctor      string `json:"doctor" bson:"doctor"`
	HasSurgery  bool   `json:"hasSurgery" bson:"hasSurgery"`
	Surgeon     string `json:"surgeon" bson:"surgeon"`
	SurgeryType string `json:"surgeryType" bson:"surgeryType"`
}

// DischargeInfo holds discharge details
type DischargeInfo struct {
	IsDischarged bool   `json:"isDischarged" bson:"isDischarged"`
	Date         string `json:"date" bson:"date"`
	Type         string `json:"type" bson:"type"`
	Doctor       string `json:"doctor" bson:"doctor"`
}

// IsFinal reports whether the submission was completed
func (f *Feedback) IsFinal() bool {
	return f.Status == StatusFinal
}
