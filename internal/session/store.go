// Package session owns the authenticated session: the token pair, the
// cached user snapshot and the logged-in flag. The store is explicitly
// injected into whatever needs it (the api client takes it as a
// TokenSource) — there is no ambient global session.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/tripwiser/internal/api"
	"github.com/mmynk/tripwiser/internal/models"
)

// Persisted key names. All are written together on login and removed
// together on logout; there is no schema versioning.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyLoggedIn     = "logged_in"
	keyDeviceID     = "device_id"
	keyUserID       = "user_id"
	keyFirstName    = "first_name"
	keyLastName     = "last_name"
	keyEmail        = "email"
	keyPhone        = "phone"
	keyUserType     = "user_type"
)

// Persistence is the local key-value state behind the store. Implementations
// must make Clear atomic: either every key is gone or none is.
type Persistence interface {
	// Save writes the given pairs, overwriting existing keys.
	Save(pairs map[string]string) error

	// Load returns all stored pairs.
	Load() (map[string]string, error)

	// Clear removes every stored pair in one atomic step.
	Clear() error

	// Close releases any resources held by the persistence.
	Close() error
}

// Ensure Store satisfies what the api client wants from it.
var (
	_ api.TokenSource      = (*Store)(nil)
	_ api.TokenInvalidator = (*Store)(nil)
)

// Store holds the session in memory, mirrored to Persistence. Reads are
// cheap and concurrent; writes (login/logout) replace the whole record under
// the write lock so no partial state is ever observable.
type Store struct {
	mu       sync.RWMutex
	sess     models.Session
	invalid  bool // set when the backend rejected the token
	deviceID string

	persist Persistence
	logger  *slog.Logger
}

// New creates a Store backed by the given persistence, restoring any
// previously saved session. A device ID is generated on first run and kept
// for the lifetime of the persistence.
func New(p Persistence) (*Store, error) {
	s := &Store{persist: p, logger: slog.Default()}

	pairs, err := p.Load()
	if err != nil {
		return nil, fmt.Errorf("load persisted session: %w", err)
	}

	s.deviceID = pairs[keyDeviceID]
	if s.deviceID == "" {
		s.deviceID = uuid.New().String()
		if err := p.Save(map[string]string{keyDeviceID: s.deviceID}); err != nil {
			return nil, fmt.Errorf("save device id: %w", err)
		}
	}

	if pairs[keyAccessToken] != "" {
		s.sess = models.Session{
			AccessToken:  pairs[keyAccessToken],
			RefreshToken: pairs[keyRefreshToken],
			LoggedIn:     pairs[keyLoggedIn] == "true",
		}
		if pairs[keyUserID] != "" {
			s.sess.User = &models.User{
				UserID:    pairs[keyUserID],
				FirstName: pairs[keyFirstName],
				LastName:  pairs[keyLastName],
				Email:     pairs[keyEmail],
				Phone:     pairs[keyPhone],
				UserType:  pairs[keyUserType],
			}
		}
		s.logger.Debug("restored session", "logged_in", s.sess.LoggedIn)
	}

	return s, nil
}

// Login stores the token pair and user snapshot from a successful
// login/verify/signup and marks the session authenticated.
func (s *Store) Login(sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.LoggedIn = true
	pairs := map[string]string{
		keyAccessToken:  sess.AccessToken,
		keyRefreshToken: sess.RefreshToken,
		keyLoggedIn:     "true",
	}
	if sess.User != nil {
		addUserPairs(pairs, *sess.User)
	}
	if err := s.persist.Save(pairs); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.sess = sess
	s.invalid = false
	s.logger.Info("session established", "user_id", userID(sess.User))
	return nil
}

// SaveUserData overwrites the cached user snapshot. No partial merge:
// fields absent on u become unset.
func (s *Store) SaveUserData(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs := map[string]string{}
	addUserPairs(pairs, u)
	if err := s.persist.Save(pairs); err != nil {
		return fmt.Errorf("persist user data: %w", err)
	}
	s.sess.User = &u
	return nil
}

// AuthToken returns the current access token, "" when there is none. Read
// by every outbound Repository call.
func (s *Store) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.AccessToken
}

// IsLoggedIn reports whether the session is authenticated: a token must be
// present AND the logged-in flag set AND the token not known-invalid.
// Either half missing means logged out, even if the other is set.
func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.AccessToken == "" || !s.sess.LoggedIn {
		return false
	}
	if s.invalid {
		return false
	}
	return !tokenExpired(s.sess.AccessToken)
}

// MarkInvalid records that the backend rejected the current token (401).
// The token itself is kept so callers can inspect it; IsLoggedIn turns
// false until the next Login.
func (s *Store) MarkInvalid() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.invalid {
		s.invalid = true
		s.logger.Warn("access token rejected by backend")
	}
}

// CurrentUser returns a copy of the cached user snapshot, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess.User == nil {
		return nil
	}
	u := *s.sess.User
	return &u
}

// DeviceID returns the stable per-install identifier.
func (s *Store) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

// Logout clears all session and user state, memory and persistence alike.
// Held under the write lock so no reader ever sees a half-cleared session.
// The device ID survives.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	if err := s.persist.Save(map[string]string{keyDeviceID: s.deviceID}); err != nil {
		return fmt.Errorf("restore device id: %w", err)
	}

	s.sess = models.Session{}
	s.invalid = false
	s.logger.Info("session cleared")
	return nil
}

func addUserPairs(pairs map[string]string, u models.User) {
	pairs[keyUserID] = u.UserID
	pairs[keyFirstName] = u.FirstName
	pairs[keyLastName] = u.LastName
	pairs[keyEmail] = u.Email
	pairs[keyPhone] = u.Phone
	pairs[keyUserType] = u.UserType
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.UserID
}
