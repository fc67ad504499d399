package model

import (
	"strconv"
	"strings"
)

// DurationUnknown marks a video whose runtime has not been resolved yet.
// It is never written to the duration cache or the store.
const DurationUnknown = "??:??"

// Resolved reports whether label carries an actual duration.
func Resolved(label string) bool {
	return label != "" && label != DurationUnknown
}

// NormalizeDuration turns raw oracle output into a displayable label. A
// bare integer is seconds-only and becomes "0:SS". Colon-delimited input
// ("M:SS", "H:MM:SS") passes through trimmed. Anything else is rejected.
func NormalizeDuration(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if isDigits(raw) {
		if len(raw) < 2 {
			raw = "0" + raw
		}
		return "0:" + raw, true
	}
	if !strings.Contains(raw, ":") {
		return "", false
	}
	for _, part := range strings.Split(raw, ":") {
		if !isDigits(part) {
			return "", false
		}
	}
	return raw, true
}

// ShortFromLabel classifies a resolved duration as short-form: at most 60
// seconds, so minutes is zero or the label is exactly one minute. The 1:00
// boundary counts as short. Labels with an hour field are never short.
func ShortFromLabel(label string) bool {
	parts := strings.Split(label, ":")
	if len(parts) != 2 {
		return false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	s, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	return m == 0 || (m == 1 && s == 0)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
