package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// legacyDateLayout is the dd/mm/yyyy form entered by older clients.
const legacyDateLayout = "02/01/2006"

// Date is a calendar day without time of day. The zero value means unset.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads a yyyy-mm-dd or dd/mm/yyyy date. An empty string yields
// the unset date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range []string{dateLayout, legacyDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// IsSet reports whether a due date has been chosen.
func (d Date) IsSet() bool {
	return !d.IsZero()
}

func (d Date) String() string {
	if !d.IsSet() {
		return ""
	}
	return d.Format(dateLayout)
}

// MarshalJSON writes "" for an unset date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date string, an empty string, null or the
// numeric 0 older documents use for "no due date".
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		if n != 0 {
			return fmt.Errorf("invalid date %s", data)
		}
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
