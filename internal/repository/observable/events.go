package observable

import (
	"context"

	"clientrepo/internal/domain"
)

// EventType defines the type of event
type EventType string

const (
	EventClientsLoaded EventType = "clients_loaded"
	EventClientLoaded  EventType = "client_loaded"
	EventClientAdded   EventType = "client_added"
	EventClientUpdated EventType = "client_updated"
	EventClientDeleted EventType = "client_deleted"
)

// Event represents an operation that completed on the repository.
//
// Payload by type:
//   - clients_loaded: []domain.Client
//   - client_loaded:  *domain.Client, nil when the id was absent
//   - client_added:   *domain.Client as stored
//   - client_updated: *domain.Client reloaded after the replace
//   - client_deleted: domain.ID
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Clients returns the payload of a clients_loaded event
func (e Event) Clients() []domain.Client {
	clients, _ := e.Payload.([]domain.Client)
	return clients
}

// Client returns the payload of a single-client event, or nil
func (e Event) Client() *domain.Client {
	c, _ := e.Payload.(*domain.Client)
	return c
}

// ID returns the payload of a client_deleted event
func (e Event) ID() domain.ID {
	id, _ := e.Payload.(domain.ID)
	return id
}

// detached returns ev with a payload that shares no memory with the original
func (e Event) detached() Event {
	switch p := e.Payload.(type) {
	case []domain.Client:
		out := make([]domain.Client, len(p))
		for i, c := range p {
			out[i] = c.Clone()
		}
		e.Payload = out
	case *domain.Client:
		if p != nil {
			c := p.Clone()
			e.Payload = &c
		}
	}
	return e
}

// Observer receives repository events
type Observer interface {
	Update(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, ev Event)

// Update calls f
func (f ObserverFunc) Update(ctx context.Context, ev Event) {
	f(ctx, ev)
}
