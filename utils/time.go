package utils

import "time"

var vietnamLocation *time.Location

func init() {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	vietnamLocation = loc
}

// VietnamTime returns the current time in the platform timezone (UTC+7).
func VietnamTime() time.Time {
	return time.Now().In(vietnamLocation)
}

// VietnamToday returns today's date in the platform timezone, truncated to midnight.
func VietnamToday() time.Time {
	now := VietnamTime()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, vietnamLocation)
}

func VietnamLocation() *time.Location {
	return vietnamLocation
}
