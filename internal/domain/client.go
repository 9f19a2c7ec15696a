package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the textual birth date format (DD.MM.YYYY)
const DateLayout = "02.01.2006"

// Client is a full client record
type Client struct {
	ID          ID
	Surname     string
	Firstname   string
	FathersName string
	BirthDate   *time.Time
	PhoneNumber string
	Passport    string
	Email       string
	Balance     *float64
}

// ShortInfo is the projection used by paged listings
type ShortInfo struct {
	ID          ID
	Surname     string
	Firstname   string
	FathersName string
	BirthDate   *time.Time
	Email       string
}

// Short returns the short projection of the client
func (c Client) Short() ShortInfo {
	return ShortInfo{
		ID:          c.ID,
		Surname:     c.Surname,
		Firstname:   c.Firstname,
		FathersName: c.FathersName,
		BirthDate:   c.BirthDate,
		Email:       c.Email,
	}
}

// Clone returns a copy that shares no pointers with c
func (c Client) Clone() Client {
	out := c
	if c.BirthDate != nil {
		d := *c.BirthDate
		out.BirthDate = &d
	}
	if c.Balance != nil {
		b := *c.Balance
		out.Balance = &b
	}
	return out
}

// FullName joins surname, firstname and fathers name
func (c Client) FullName() string {
	parts := []string{c.Surname, c.Firstname}
	if c.FathersName != "" {
		parts = append(parts, c.FathersName)
	}
	return strings.Join(parts, " ")
}

func (c Client) String() string {
	s := fmt.Sprintf("%s %s %s", c.ID, c.Surname, c.Firstname)
	if c.BirthDate != nil {
		s += ", " + c.BirthDate.Format(DateLayout)
	}
	return s
}

// ParseBirthDate parses a DD.MM.YYYY date. An empty string yields nil.
func ParseBirthDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid birth date %q, expected DD.MM.YYYY", s)
	}
	return &t, nil
}

// FormatBirthDate formats d as DD.MM.YYYY, or "" when nil
func FormatBirthDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// Date returns a pointer to midnight UTC of the given day
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
