package filter

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names understood by FromQuery
const (
	ParamSurname    = "surname"
	ParamMinBalance = "min_balance"
	ParamMaxBalance = "max_balance"
	ParamHasEmail   = "has_email"
	ParamSort       = "sort"
	ParamOrder      = "order"
)

// Criteria is the parsed form of the filter and sort parameters
type Criteria struct {
	Filters []Filter
	Sort    *SortKey
}

// IsEmpty reports whether no filter or sort was requested
func (c Criteria) IsEmpty() bool {
	return len(c.Filters) == 0 && c.Sort == nil
}

// Apply installs the criteria on d
func (c Criteria) Apply(d *Decorator) *Decorator {
	for _, f := range c.Filters {
		d.AddFilter(f)
	}
	if c.Sort != nil {
		d.SetSort(*c.Sort)
	}
	return d
}

// ParseQuery reads filter and sort criteria from URL query values
func ParseQuery(values url.Values) (Criteria, error) {
	var crit Criteria

	if prefix := strings.TrimSpace(values.Get(ParamSurname)); prefix != "" {
		crit.Filters = append(crit.Filters, SurnamePrefix(prefix))
	}

	lo, err := parseFloatParam(values, ParamMinBalance)
	if err != nil {
		return Criteria{}, err
	}
	hi, err := parseFloatParam(values, ParamMaxBalance)
	if err != nil {
		return Criteria{}, err
	}
	if lo != nil || hi != nil {
		if lo != nil && hi != nil && *lo > *hi {
			return Criteria{}, fmt.Errorf("%s must not exceed %s", ParamMinBalance, ParamMaxBalance)
		}
		crit.Filters = append(crit.Filters, BalanceRange(lo, hi))
	}

	if raw := values.Get(ParamHasEmail); raw != "" {
		present, err := strconv.ParseBool(raw)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s: %q", ParamHasEmail, raw)
		}
		crit.Filters = append(crit.Filters, EmailPresence(present))
	}

	reverse := false
	switch strings.ToLower(values.Get(ParamOrder)) {
	case "", "asc":
	case "desc":
		reverse = true
	default:
		return Criteria{}, fmt.Errorf("invalid %s: %q", ParamOrder, values.Get(ParamOrder))
	}

	switch field := strings.ToLower(values.Get(ParamSort)); field {
	case "":
	case "surname":
		k := BySurname(reverse)
		crit.Sort = &k
	case "email":
		k := ByEmail(reverse)
		crit.Sort = &k
	case "balance":
		k := ByBalance(reverse)
		crit.Sort = &k
	default:
		return Criteria{}, fmt.Errorf("invalid %s: %q", ParamSort, field)
	}

	return crit, nil
}

func parseFloatParam(values url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}
