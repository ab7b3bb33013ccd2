package entity

import (
	"strings"
	"time"
)

// Dependent is a record that only exists in relation to its owning user.
// F is the (partial) field set accepted from callers.
type Dependent[F any] interface {
	Owner() string
	SetOwner(userID string)
	Apply(fields F)
	// Missing lists required json fields that are still empty.
	Missing() []string
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func missingString(out []string, field, v string) []string {
	if strings.TrimSpace(v) == "" {
		return append(out, field)
	}
	return out
}
