package codec

import (
	"fmt"
	"io"

	"clientrepo/internal/domain"
)

// Codec reads and writes a whole client collection in one file format
type Codec interface {
	Decode(r io.Reader) ([]domain.Client, error)
	Encode(clients []domain.Client, w io.Writer) error
	Format() string
}

// ForFormat returns the codec registered for a format name
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
}

// record is the on-disk shape of one client. Absent values are written as null.
type record struct {
	ID          domain.ID `json:"id" yaml:"id"`
	Surname     string    `json:"surname" yaml:"surname"`
	Firstname   string    `json:"firstname" yaml:"firstname"`
	FathersName *string   `json:"fathers_name" yaml:"fathers_name"`
	BirthDate   *string   `json:"birth_date" yaml:"birth_date"`
	PhoneNumber *string   `json:"phone_number" yaml:"phone_number"`
	Passport    *string   `json:"pasport" yaml:"pasport"`
	Email       *string   `json:"email" yaml:"email"`
	Balance     *float64  `json:"balance" yaml:"balance"`
}

func toRecord(c domain.Client) record {
	rec := record{
		ID:          c.ID,
		Surname:     c.Surname,
		Firstname:   c.Firstname,
		FathersName: optional(c.FathersName),
		PhoneNumber: optional(c.PhoneNumber),
		Passport:    optional(c.Passport),
		Email:       optional(c.Email),
		Balance:     c.Balance,
	}
	if c.BirthDate != nil {
		s := c.BirthDate.Format(domain.DateLayout)
		rec.BirthDate = &s
	}
	return rec
}

func (r record) toDomain() (domain.Client, error) {
	c := domain.Client{
		ID:          r.ID,
		Surname:     r.Surname,
		Firstname:   r.Firstname,
		FathersName: deref(r.FathersName),
		PhoneNumber: deref(r.PhoneNumber),
		Passport:    deref(r.Passport),
		Email:       deref(r.Email),
		Balance:     r.Balance,
	}
	if r.BirthDate != nil {
		d, err := domain.ParseBirthDate(*r.BirthDate)
		if err != nil {
			return domain.Client{}, fmt.Errorf("client %s: %w", r.ID, err)
		}
		c.BirthDate = d
	}
	return c, nil
}

func toRecords(clients []domain.Client) []record {
	out := make([]record, 0, len(clients))
	for _, c := range clients {
		out = append(out, toRecord(c))
	}
	return out
}

func fromRecords(records []record) ([]domain.Client, error) {
	out := make([]domain.Client, 0, len(records))
	for _, r := range records {
		c, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
