package filter

import (
	"fmt"
	"strings"

	"clientrepo/internal/domain"
)

// Filter narrows a client list. Implementations must not modify the input.
type Filter interface {
	Apply(clients []domain.Client) []domain.Client
	String() string
}

// NumberRange keeps clients whose numeric field lies in [Min, Max].
// A nil bound is open. A client with no value only passes when both bounds are nil.
type NumberRange struct {
	Field string
	Value func(domain.Client) *float64
	Min   *float64
	Max   *float64
}

// Apply implements Filter
func (f NumberRange) Apply(clients []domain.Client) []domain.Client {
	if f.Min == nil && f.Max == nil {
		return keep(clients, func(domain.Client) bool { return true })
	}
	return keep(clients, func(c domain.Client) bool {
		v := f.Value(c)
		if v == nil {
			return false
		}
		if f.Min != nil && *v < *f.Min {
			return false
		}
		if f.Max != nil && *v > *f.Max {
			return false
		}
		return true
	})
}

func (f NumberRange) String() string {
	return fmt.Sprintf("%s in [%s, %s]", f.Field, bound(f.Min), bound(f.Max))
}

// Presence keeps clients whose text field is set (Present) or unset (!Present)
type Presence struct {
	Field   string
	Value   func(domain.Client) string
	Present bool
}

// Apply implements Filter
func (f Presence) Apply(clients []domain.Client) []domain.Client {
	return keep(clients, func(c domain.Client) bool {
		return (f.Value(c) != "") == f.Present
	})
}

func (f Presence) String() string {
	if f.Present {
		return f.Field + " present"
	}
	return f.Field + " absent"
}

// TextPrefix keeps clients whose text field starts with Prefix, ignoring case
type TextPrefix struct {
	Field  string
	Value  func(domain.Client) string
	Prefix string
}

// Apply implements Filter
func (f TextPrefix) Apply(clients []domain.Client) []domain.Client {
	prefix := strings.ToLower(f.Prefix)
	return keep(clients, func(c domain.Client) bool {
		return strings.HasPrefix(strings.ToLower(f.Value(c)), prefix)
	})
}

func (f TextPrefix) String() string {
	return fmt.Sprintf("%s starts with %q", f.Field, f.Prefix)
}

// BalanceRange filters by balance, bounds inclusive
func BalanceRange(lo, hi *float64) NumberRange {
	return NumberRange{Field: "balance", Value: balanceOf, Min: lo, Max: hi}
}

// EmailPresence filters by whether an email is set
func EmailPresence(present bool) Presence {
	return Presence{Field: "email", Value: emailOf, Present: present}
}

// SurnamePrefix filters by case-insensitive surname prefix
func SurnamePrefix(prefix string) TextPrefix {
	return TextPrefix{Field: "surname", Value: surnameOf, Prefix: prefix}
}

func balanceOf(c domain.Client) *float64 { return c.Balance }
func emailOf(c domain.Client) string     { return c.Email }
func surnameOf(c domain.Client) string   { return c.Surname }

func keep(clients []domain.Client, pred func(domain.Client) bool) []domain.Client {
	out := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func bound(v *float64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprintf("%g", *v)
}
