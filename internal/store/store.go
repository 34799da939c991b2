package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
)

// SessionStore is the view of the [Store] that view models depend on.
type SessionStore interface {
	Session() models.Session
	User() *models.UserProfile
	IsAuthenticated() bool
	SetSession(token string, user *models.UserProfile) error
	Logout() error

	ShowSearch() bool
	SearchQuery() string
	SetSearchQuery(q string)
	ToggleSearch(open bool)

	Subscribe(fn Handler) (unsubscribe func())
}

type subscriber struct {
	id int
	fn Handler
}

// Store is the process-wide client state.
type Store struct {
	storage  repositories.Storage
	reloader Reloader
	logger   *log.Logger

	mu          sync.RWMutex
	session     models.Session
	showSearch  bool
	searchQuery string

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

// New creates a store hydrated from storage. A nil reloader makes [Store.Logout] stop after clearing state.
func New(storage repositories.Storage, reloader Reloader, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Store{storage: storage, reloader: reloader, logger: logger}
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// hydrate loads the persisted session. A corrupt user record is dropped with a warning.
func (s *Store) hydrate() error {
	token, _, err := s.storage.Get(repositories.KeyToken)
	if err != nil {
		return fmt.Errorf("%w: failed to read token: %v", shared.ErrStorage, err)
	}

	var user *models.UserProfile
	raw, ok, err := s.storage.Get(repositories.KeyUser)
	if err != nil {
		return fmt.Errorf("%w: failed to read user: %v", shared.ErrStorage, err)
	}
	if ok && raw != "" && raw != "null" {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			s.logger.Warn("ignoring unreadable user record", "error", err)
		} else {
			user = &profile
		}
	}

	if token == "" && user != nil {
		s.logger.Warn("ignoring user record without a token")
		user = nil
	}
	s.session = models.NewSession(token, user)
	return nil
}

// Session returns a snapshot of the current session.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) User() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.User
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

// SetSession persists token and user and publishes [SessionChanged].
// When the user cannot be written the token is removed again, leaving the previous session in place.
func (s *Store) SetSession(token string, user *models.UserProfile) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidInput)
	}

	var data []byte
	if user != nil {
		var err error
		if data, err = json.Marshal(user); err != nil {
			return fmt.Errorf("%w: failed to encode user: %v", shared.ErrStorage, err)
		}
	}

	if err := s.storage.Set(repositories.KeyToken, token); err != nil {
		return fmt.Errorf("%w: failed to save token: %v", shared.ErrStorage, err)
	}

	var userErr error
	if data != nil {
		userErr = s.storage.Set(repositories.KeyUser, string(data))
	} else {
		userErr = s.storage.Remove(repositories.KeyUser)
	}
	if userErr != nil {
		if err := s.storage.Remove(repositories.KeyToken); err != nil {
			s.logger.Error("failed to roll back token", "error", err)
		}
		return fmt.Errorf("%w: failed to save user: %v", shared.ErrStorage, userErr)
	}

	s.mu.Lock()
	s.session = models.NewSession(token, user)
	session := s.session
	s.mu.Unlock()

	s.logger.Debug("session updated", "authenticated", session.IsAuthenticated)
	s.publish(Event{Kind: SessionChanged, Session: session})
	return nil
}

// Logout clears the persisted session, closes search and reloads.
// Once the token is gone the session is reset even if the user record could not be removed;
// that error is still returned.
func (s *Store) Logout() error {
	if err := s.storage.Remove(repositories.KeyToken); err != nil {
		return fmt.Errorf("%w: failed to remove token: %v", shared.ErrStorage, err)
	}
	var userErr error
	if err := s.storage.Remove(repositories.KeyUser); err != nil {
		s.logger.Warn("failed to remove user record", "error", err)
		userErr = fmt.Errorf("%w: failed to remove user: %v", shared.ErrStorage, err)
	}

	s.mu.Lock()
	s.session = models.NewSession("", nil)
	wasOpen := s.showSearch
	s.showSearch = false
	s.searchQuery = ""
	s.mu.Unlock()

	if wasOpen {
		s.publish(Event{Kind: SearchToggled, Open: false})
	}
	s.publish(Event{Kind: SessionChanged, Session: models.NewSession("", nil)})

	s.logger.Info("logged out")
	if s.reloader != nil {
		s.reloader.Reload()
	}
	return userErr
}

func (s *Store) ShowSearch() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showSearch
}

func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSearchQuery stores q as-is.
func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.searchQuery = q
	s.mu.Unlock()
}

// ToggleSearch moves the overlay to the requested state. Requesting the current state does nothing.
//
// Opening publishes [SearchToggled] followed by [OpenSearch] with the pending query.
func (s *Store) ToggleSearch(open bool) {
	s.mu.Lock()
	if s.showSearch == open {
		s.mu.Unlock()
		return
	}
	s.showSearch = open
	query := s.searchQuery
	s.mu.Unlock()

	s.publish(Event{Kind: SearchToggled, Open: open})
	if open {
		s.publish(Event{Kind: OpenSearch, Open: true, Query: query})
	}
}

// Subscribe registers fn and returns a function that removes it. Calling the returned function twice is harmless.
func (s *Store) Subscribe(fn Handler) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// publish calls subscribers outside every lock so handlers may call back into the store.
func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.subMu.Unlock()

	s.logger.Debug("store event", "kind", ev.Kind, "open", ev.Open, "query", ev.Query)
	for _, sub := range subs {
		sub.fn(ev)
	}
}

var _ SessionStore = (*Store)(nil)
