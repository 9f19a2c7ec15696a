package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"clientrepo/internal/domain"
)

// sqlDateLayout is how birth dates cross the driver boundary
const sqlDateLayout = "2006-01-02"

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull maps "" to NULL
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToFloatPtr safely converts sql.NullFloat64 to *float64
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		v := nf.Float64
		return &v
	}
	return nil
}

// floatPtrToNull safely converts *float64 to sql.NullFloat64
func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// datePtrToNull renders a birth date as YYYY-MM-DD text
func datePtrToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(sqlDateLayout), Valid: true}
}

// nullDate scans a DATE column. Drivers hand it over as time.Time (pgx),
// or as text (sqlite), so both are accepted.
type nullDate struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner
func (d *nullDate) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		d.Valid = true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", value)
	}
}

func (d *nullDate) parse(s string) error {
	if len(s) > len(sqlDateLayout) {
		s = s[:len(sqlDateLayout)]
	}
	t, err := time.Parse(sqlDateLayout, s)
	if err != nil {
		return fmt.Errorf("cannot parse date %q: %w", s, err)
	}
	d.Time, d.Valid = t, true
	return nil
}

func (d nullDate) ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

// ============================================================================
// Client Row Scanner
// ============================================================================

// clientColumns is the SELECT column list for client queries
const clientColumns = `id, surname, firstname, fathers_name, birth_date, phone_number, pasport, email, balance`

// clientRow holds all columns from a client query for scanning
type clientRow struct {
	ID          int64
	Surname     string
	Firstname   string
	FathersName sql.NullString
	BirthDate   nullDate
	PhoneNumber sql.NullString
	Passport    sql.NullString
	Email       sql.NullString
	Balance     sql.NullFloat64
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match clientColumns order exactly
func (r *clientRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Surname,
		&r.Firstname,
		&r.FathersName,
		&r.BirthDate,
		&r.PhoneNumber,
		&r.Passport,
		&r.Email,
		&r.Balance,
	}
}

// toDomain converts the scanned row to a domain.Client
func (r *clientRow) toDomain() domain.Client {
	return domain.Client{
		ID:          domain.IntID(r.ID),
		Surname:     r.Surname,
		Firstname:   r.Firstname,
		FathersName: nullToString(r.FathersName),
		BirthDate:   r.BirthDate.ptr(),
		PhoneNumber: nullToString(r.PhoneNumber),
		Passport:    nullToString(r.Passport),
		Email:       nullToString(r.Email),
		Balance:     nullToFloatPtr(r.Balance),
	}
}

// clientWriteArgs prepares the writable columns in INSERT/UPDATE order:
// surname, firstname, fathers_name, birth_date, phone_number, pasport, email, balance
func clientWriteArgs(c domain.Client) []any {
	return []any{
		c.Surname,
		c.Firstname,
		stringToNull(c.FathersName),
		datePtrToNull(c.BirthDate),
		stringToNull(c.PhoneNumber),
		stringToNull(c.Passport),
		stringToNull(c.Email),
		floatPtrToNull(c.Balance),
	}
}
