package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// JalaliDate is a Persian solar calendar date
type JalaliDate struct {
	Year  int
	Month int
	Day   int
}

// ParseJalali parses "yyyy/mm/dd" (also accepts "-" separators and Persian digits)
func ParseJalali(s string) (JalaliDate, error) {
	s = strings.TrimSpace(toLatinDigits(s))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return JalaliDate{}, fmt.Errorf("invalid jalali date %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return JalaliDate{}, fmt.Errorf("invalid jalali date %q: %w", s, err)
		}
		nums[i] = n
	}
	d := JalaliDate{Year: nums[0], Month: nums[1], Day: nums[2]}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return JalaliDate{}, fmt.Errorf("invalid jalali date %q", s)
	}
	return d, nil
}

// JalaliOf converts an instant to its Jalali calendar date in loc
func JalaliOf(t time.Time, loc *time.Location) JalaliDate {
	pt := ptime.New(t.In(loc))
	return JalaliDate{Year: pt.Year(), Month: int(pt.Month()), Day: pt.Day()}
}

// Number packs the date as yyyymmdd, which orders like the calendar
func (d JalaliDate) Number() int {
	return d.Year*10000 + d.Month*100 + d.Day
}

// AbsoluteDays returns the day count since the Unix epoch of the date
func (d JalaliDate) AbsoluteDays() int {
	pt := ptime.Date(d.Year, ptime.Month(d.Month), d.Day, 12, 0, 0, 0, time.UTC)
	return int(pt.Time().Unix() / 86400)
}

func (d JalaliDate) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// StayDays returns the days between admission and discharge, never negative.
// It returns -1 when either date is missing or malformed.
func StayDays(admission, discharge string) int {
	if admission == "" || discharge == "" {
		return -1
	}
	a, err := ParseJalali(admission)
	if err != nil {
		return -1
	}
	d, err := ParseJalali(discharge)
	if err != nil {
		return -1
	}
	if days := d.AbsoluteDays() - a.AbsoluteDays(); days > 0 {
		return days
	}
	return 0
}

// AgeYears returns completed years since a Jalali birth date, or -1 when unknown
func AgeYears(birthDate string, now time.Time, loc *time.Location) int {
	if birthDate == "" {
		return -1
	}
	b, err := ParseJalali(birthDate)
	if err != nil {
		return -1
	}
	today := JalaliOf(now, loc)
	years := today.Year - b.Year
	if today.Month < b.Month || (today.Month == b.Month && today.Day < b.Day) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}

var persianDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

func toLatinDigits(s string) string {
	return persianDigits.Replace(s)
}
