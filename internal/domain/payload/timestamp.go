package payload

import (
	"fmt"
	"strconv"
	"time"
)

// LocalDateTimeLayout is an ISO-8601 local date-time without zone offset.
// Trailing zeros of the fraction are dropped, and so is the fraction itself
// when it is zero.
const LocalDateTimeLayout = "2006-01-02T15:04:05.999999999"

// LocalDateTime is a wall-clock time rendered without a zone offset.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime converts t to the host's local zone.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.Local()}
}

// String formats the value with LocalDateTimeLayout.
func (t LocalDateTime) String() string {
	return t.Format(LocalDateTimeLayout)
}

// MarshalJSON renders the value as a JSON string.
func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON accepts the string produced by MarshalJSON.
func (t *LocalDateTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("local date-time must be a JSON string: %w", err)
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseLocalDateTime parses s in the host's local zone.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	parsed, err := time.ParseInLocation(LocalDateTimeLayout, s, time.Local)
	if err != nil {
		return LocalDateTime{}, fmt.Errorf("invalid local date-time %q: %w", s, err)
	}
	return LocalDateTime{Time: parsed}, nil
}
