// Package chrono is the clock everything time dependent goes through.
package chrono

import "time"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in Location().
	Now() time.Time
	Location() *time.Location
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct {
	location *time.Location
}

// NewStandardTime loads the named IANA zone, e.g. "Europe/Oslo".
func NewStandardTime(zone string) (StandardTime, error) {
	location, err := time.LoadLocation(zone)
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardTime) Location() *time.Location {
	return s.location
}

// FixedTime always returns the same instant, used by tests and dry runs
// that need reproducible output.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}

func (f FixedTime) Location() *time.Location {
	return f.At.Location()
}

// Timestamp formats t as ISO-8601 with its offset, truncated to the second.
func Timestamp(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}
