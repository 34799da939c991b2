package store

import "github.com/desertthunder/shelf/internal/models"

// EventKind identifies what changed in the store.
type EventKind int

const (
	// SearchToggled fires when the search overlay opens or closes. [Event.Open] holds the new state.
	SearchToggled EventKind = iota
	// OpenSearch fires after the overlay opens and carries the pending query.
	OpenSearch
	// SessionChanged fires after login or logout. [Event.Session] holds the new session.
	SessionChanged
)

func (k EventKind) String() string {
	switch k {
	case SearchToggled:
		return "search-toggled"
	case OpenSearch:
		return "open-search"
	case SessionChanged:
		return "session-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers.
type Event struct {
	Kind    EventKind
	Open    bool
	Query   string
	Session models.Session
}

// Handler receives events synchronously on the goroutine that caused them.
type Handler func(Event)

// Reloader discards in-memory state and starts over from durable storage.
type Reloader interface {
	Reload()
}

// ReloadFunc adapts a function to [Reloader].
type ReloadFunc func()

func (f ReloadFunc) Reload() { f() }
