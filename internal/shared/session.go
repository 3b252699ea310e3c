package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager orchestrates cookie based sessions backed by Redis.
// Sessions are ephemeral (browser-session cookie) by default; a session
// marked persistent survives browser restarts with an extended lifetime.
type SessionManager struct {
	client      *redis.Client
	cookieName  string
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	secret      []byte
}

// Session holds per-request session data.
type Session struct {
	ID         string
	values     map[string]string
	userID     string
	flashes    []FlashMessage
	persistent bool
	isNew      bool
	dirty      bool
	destroyed  bool
}

type sessionPayload struct {
	Values     map[string]string `json:"values"`
	UserID     string            `json:"user_id"`
	Flashes    []FlashMessage    `json:"flashes"`
	Persistent bool              `json:"persistent"`
}

// NewSessionManager constructs a SessionManager. rememberTTL is the lifetime
// applied to sessions marked persistent ("remember me" logins).
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl, rememberTTL time.Duration, secure bool) *SessionManager {
	if rememberTTL < ttl {
		rememberTTL = ttl
	}
	return &SessionManager{
		client:      client,
		cookieName:  cookieName,
		ttl:         ttl,
		rememberTTL: rememberTTL,
		secure:      secure,
		secret:      []byte(secret),
	}
}

// Load loads the session referenced by the request cookie, or creates a new one.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	data, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Stale cookie; start over under the same ID.
			sess := sm.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return &Session{
		ID:         cookie.Value,
		values:     stored.Values,
		userID:     stored.UserID,
		flashes:    stored.Flashes,
		persistent: stored.Persistent,
	}, nil
}

// Commit persists the session and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty || sess.isNew {
		if err := sm.store(ctx, sess); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		cookie := &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		}
		// Ephemeral sessions get a browser-session cookie: no Expires.
		if sess.persistent {
			cookie.Expires = time.Now().Add(sm.rememberTTL)
		}
		http.SetCookie(w, cookie)
	}

	return nil
}

func (sm *SessionManager) store(ctx context.Context, sess *Session) error {
	payload := sessionPayload{
		Values:     sess.values,
		UserID:     sess.userID,
		Flashes:    sess.flashes,
		Persistent: sess.persistent,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.lifetime(sess)).Err()
}

// Destroy marks the session for deletion on the next commit.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL returns the session lifetime that applies to the given session.
func (sm *SessionManager) TTL(sess *Session) time.Duration {
	return sm.lifetime(sess)
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) lifetime(sess *Session) time.Duration {
	if sess != nil && sess.persistent {
		return sm.rememberTTL
	}
	return sm.ttl
}

// Session helpers

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if s.values == nil {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// SetUser associates the session with a user ID.
func (s *Session) SetUser(id string) {
	s.userID = id
	s.dirty = true
}

// User returns the current user ID, empty when unauthenticated.
func (s *Session) User() string {
	return s.userID
}

// Remember marks the session persistent across browser restarts.
func (s *Session) Remember() {
	s.persistent = true
	s.dirty = true
}

// IsPersistent reports whether the session outlives the browser session.
func (s *Session) IsPersistent() bool {
	return s.persistent
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:     sm.generateSessionID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
