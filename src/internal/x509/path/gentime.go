// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import (
	"fmt"
	"time"
)

// UTCTime is a calendar time in UTC with explicit fields, matching the
// structured form certificates encode their validity in. It is the
// point-in-time path verification is evaluated at.
type UTCTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// NewUTCTime converts a [time.Time] to its UTC calendar fields.
func NewUTCTime(t time.Time) UTCTime {
	t = t.UTC()
	return UTCTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// Time converts the calendar fields back to a [time.Time] in UTC.
func (u UTCTime) Time() time.Time {
	return time.Date(u.Year, time.Month(u.Month), u.Day, u.Hour, u.Minute, u.Second, 0, time.UTC)
}

// IsZero reports whether all fields are zero.
func (u UTCTime) IsZero() bool { return u == UTCTime{} }

// String formats the time as "YYYY-MM-DD HH:MM:SS UTC".
func (u UTCTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d UTC",
		u.Year, u.Month, u.Day, u.Hour, u.Minute, u.Second)
}
