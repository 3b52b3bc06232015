package utils

import (
	"fmt"
	"strconv"
)

// FormatVND renders an amount with thousand separators, e.g. 1500000 -> "1,500,000 VND".
func FormatVND(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	out := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	if neg {
		out = "-" + out
	}
	return out + " VND"
}

// FormatPercent renders an annual rate like 12.5 -> "12.5%".
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%g%%", rate)
}
