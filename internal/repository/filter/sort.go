package filter

import (
	"cmp"
	"sort"
	"strings"

	"clientrepo/internal/domain"
)

// SortKey orders a client list by one field
type SortKey struct {
	Field   string
	Reverse bool
	compare func(a, b domain.Client) int
}

// Apply returns a stably sorted copy of clients
func (k SortKey) Apply(clients []domain.Client) []domain.Client {
	out := make([]domain.Client, len(clients))
	copy(out, clients)
	sort.SliceStable(out, func(i, j int) bool {
		c := k.compare(out[i], out[j])
		if k.Reverse {
			return c > 0
		}
		return c < 0
	})
	return out
}

func (k SortKey) String() string {
	if k.Reverse {
		return k.Field + " desc"
	}
	return k.Field + " asc"
}

// ByText sorts by a text field; an empty value sorts as ""
func ByText(field string, value func(domain.Client) string, reverse bool) SortKey {
	return SortKey{
		Field:   field,
		Reverse: reverse,
		compare: func(a, b domain.Client) int { return strings.Compare(value(a), value(b)) },
	}
}

// ByNumber sorts by a numeric field; an absent value sorts as 0
func ByNumber(field string, value func(domain.Client) *float64, reverse bool) SortKey {
	num := func(c domain.Client) float64 {
		if v := value(c); v != nil {
			return *v
		}
		return 0
	}
	return SortKey{
		Field:   field,
		Reverse: reverse,
		compare: func(a, b domain.Client) int { return cmp.Compare(num(a), num(b)) },
	}
}

// BySurname sorts by surname
func BySurname(reverse bool) SortKey {
	return ByText("surname", surnameOf, reverse)
}

// ByEmail sorts by email
func ByEmail(reverse bool) SortKey {
	return ByText("email", emailOf, reverse)
}

// ByBalance sorts by balance
func ByBalance(reverse bool) SortKey {
	return ByNumber("balance", balanceOf, reverse)
}
