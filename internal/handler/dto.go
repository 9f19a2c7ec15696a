package handler

import (
	"time"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository/observable"
)

// ClientDTO is the wire form of a full client record
type ClientDTO struct {
	ID          domain.ID `json:"id"`
	Surname     string    `json:"surname"`
	Firstname   string    `json:"firstname"`
	FathersName string    `json:"fathers_name,omitempty"`
	BirthDate   *string   `json:"birth_date"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Passport    string    `json:"passport,omitempty"`
	Email       string    `json:"email,omitempty"`
	Balance     *float64  `json:"balance"`
}

// ShortDTO is the wire form of a listing row
type ShortDTO struct {
	ID          domain.ID `json:"id"`
	Surname     string    `json:"surname"`
	Firstname   string    `json:"firstname"`
	FathersName string    `json:"fathers_name,omitempty"`
	BirthDate   *string   `json:"birth_date"`
	Email       string    `json:"email,omitempty"`
}

// ClientRequest is the body of create and replace requests. Any id in the
// body is ignored.
type ClientRequest struct {
	Surname     string   `json:"surname"`
	Firstname   string   `json:"firstname"`
	FathersName string   `json:"fathers_name"`
	BirthDate   string   `json:"birth_date"`
	PhoneNumber string   `json:"phone_number"`
	Passport    string   `json:"passport"`
	Email       string   `json:"email"`
	Balance     *float64 `json:"balance"`
}

// ToClient converts and validates the request
func (req ClientRequest) ToClient() (domain.Client, error) {
	c := domain.Client{
		Surname:     req.Surname,
		Firstname:   req.Firstname,
		FathersName: req.FathersName,
		PhoneNumber: req.PhoneNumber,
		Passport:    req.Passport,
		Email:       req.Email,
		Balance:     req.Balance,
	}

	if req.BirthDate != "" {
		d, err := domain.ParseBirthDate(req.BirthDate)
		if err != nil {
			return domain.Client{}, &domain.ValidationError{Fields: []domain.FieldError{
				{Field: "birth_date", Message: "expected DD.MM.YYYY"},
			}}
		}
		c.BirthDate = d
	}

	if err := domain.Validate(c); err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := domain.FormatBirthDate(d)
	return &s
}

// ClientView converts a client to its wire form
func ClientView(c domain.Client) ClientDTO {
	return ClientDTO{
		ID:          c.ID,
		Surname:     c.Surname,
		Firstname:   c.Firstname,
		FathersName: c.FathersName,
		BirthDate:   formatDate(c.BirthDate),
		PhoneNumber: c.PhoneNumber,
		Passport:    c.Passport,
		Email:       c.Email,
		Balance:     c.Balance,
	}
}

// ShortView converts a listing row to its wire form
func ShortView(s domain.ShortInfo) ShortDTO {
	return ShortDTO{
		ID:          s.ID,
		Surname:     s.Surname,
		Firstname:   s.Firstname,
		FathersName: s.FathersName,
		BirthDate:   formatDate(s.BirthDate),
		Email:       s.Email,
	}
}

func toShortDTOs(infos []domain.ShortInfo) []ShortDTO {
	out := make([]ShortDTO, 0, len(infos))
	for _, s := range infos {
		out = append(out, ShortView(s))
	}
	return out
}

// EventMessage is the SSE form of a repository event
type EventMessage struct {
	Type    observable.EventType `json:"type"`
	Payload any                  `json:"payload,omitempty"`
}

// EventView converts a repository event into its wire form. Full reads
// are reduced to a count so a large load does not flood SSE clients.
func EventView(ev observable.Event) any {
	msg := EventMessage{Type: ev.Type}

	switch ev.Type {
	case observable.EventClientsLoaded:
		msg.Payload = map[string]int{"count": len(ev.Clients())}
	case observable.EventClientLoaded, observable.EventClientAdded, observable.EventClientUpdated:
		if c := ev.Client(); c != nil {
			msg.Payload = ClientView(*c)
		}
	case observable.EventClientDeleted:
		msg.Payload = map[string]domain.ID{"id": ev.ID()}
	}
	return msg
}
