package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// Date is a calendar date without a time component ("YYYY-MM-DD" on the wire).
type Date struct {
	t time.Time
}

// NewDate truncates t to its calendar day, keeping the location.
func NewDate(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// NewDateFromString parses a "YYYY-MM-DD" string in the given location.
func NewDateFromString(s string, loc *time.Location) (Date, error) {
	t, err := time.ParseInLocation(DateFormat, s, loc)
	if err != nil {
		return Date{}, fmt.Errorf("types: invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Time returns the start of the day.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String formats the date as "YYYY-MM-DD".
func (d Date) String() string {
	return d.t.Format(DateFormat)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Dates are parsed in UTC;
// callers needing a specific zone should use NewDateFromString.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := NewDateFromString(s, time.UTC)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t, nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Date", src)
	}
}
