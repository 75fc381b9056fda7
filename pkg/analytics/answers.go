package analytics

import (
	"math"
	"strconv"
	"strings"
)

// answerNumber decodes a finite numeric answer. Values arrive as float64 from JSON, int32/int64
// from BSON and occasionally as numeric strings from spreadsheet restores.
func answerNumber(v interface{}) (float64, bool) {
	n, ok := rawNumber(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func rawNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// answerBool decodes a yes/no answer
func answerBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}

// answerText decodes a free-text answer, ignoring blanks
func answerText(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func likertValue(v interface{}) (float64, bool) {
	n, ok := answerNumber(v)
	if !ok || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

func npsValue(v interface{}) (float64, bool) {
	n, ok := answerNumber(v)
	if !ok || n < 0 || n > 10 {
		return 0, false
	}
	return n, true
}
