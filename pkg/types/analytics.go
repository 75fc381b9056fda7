package types

import "time"

// Analytics is the aggregate produced by the analytics engine for a filtered record set
type Analytics struct {
	TotalCount          int            `json:"totalCount"`
	UrgentFollowUps     int            `json:"urgentFollowUps"`
	AverageSatisfaction float64        `json:"averageSatisfaction"`
	NPSScore            int            `json:"npsScore"`
	NPSBreakdown        NPSBreakdown   `json:"npsBreakdown"`
	CategoryData        []CategoryStat `json:"categoryData"`
	YesNoStats          []YesNoStat    `json:"yesNoStats"`
	TextComments        []TextComments `json:"textComments"`
	UrgentList          []Feedback     `json:"urgentList"`
}

// NPSBreakdown counts respondents per NPS band
type NPSBreakdown struct {
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
}

// CategoryStat is the average of one Likert question
type CategoryStat struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// YesNoStat summarizes one yes/no question
type YesNoStat struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	YesCount   int    `json:"yesCount"`
	NoCount    int    `json:"noCount"`
	YesPercent int    `json:"yesPercent"`
	NoPercent  int    `json:"noPercent"`
}

// TextComments collects the free-text answers of one question
type TextComments struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Comments []Comment `json:"comments"`
}

// Comment is one free-text answer linked back to its feedback record
type Comment struct {
	ID          string    `json:"id"`
	Comment     string    `json:"comment"`
	PatientName string    `json:"patientName"`
	Date        time.Time `json:"date"`
}
