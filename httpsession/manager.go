// Package httpsession keeps per-visitor state for HTTP handlers in a
// sessioncache.Cache. A cookie carries the session ID; the state itself lives
// in the backend with a sliding idle timeout.
package httpsession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/sessioncache"
	"github.com/unkn0wn-root/sessioncache/codec"
)

const (
	defaultCookieName  = ".session"
	defaultIdleTimeout = 20 * time.Minute
)

type Options struct {
	CookieName  string        // default ".session"
	IdleTimeout time.Duration // sliding expiration; default 20m
	Path        string        // cookie path; default "/"
	Domain      string
	Secure      bool
	SameSite    http.SameSite // default Lax

	Codec  codec.Codec[Values] // default msgpack
	Logger sessioncache.Logger // if nil, NopLogger is used
	NewID  func() string       // default uuid.NewString
}

type Manager struct {
	store *sessioncache.Typed[Values]
	opts  Options
	log   sessioncache.Logger
}

func NewManager(cache sessioncache.Cache, opts Options) (*Manager, error) {
	if cache == nil {
		return nil, errors.New("httpsession: cache is required")
	}
	if opts.IdleTimeout < 0 {
		return nil, errors.New("httpsession: idle timeout must not be negative")
	}
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	if opts.Codec == nil {
		opts.Codec = codec.Msgpack[Values]{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	m := &Manager{
		store: sessioncache.NewTyped(cache, opts.Codec),
		opts:  opts,
		log:   opts.Logger,
	}
	if m.log == nil {
		m.log = sessioncache.NopLogger{}
	}
	return m, nil
}

// Load returns the session named by the request cookie, or a new empty
// session when there is no cookie or the stored session is gone. Client
// supplied IDs are never reused for new sessions.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		v, ok, err := m.store.Get(ctx, c.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			return newSession(c.Value, v, false), nil
		}
	}
	return newSession(m.opts.NewID(), nil, true), nil
}

// Start loads the session and, for a new one, issues the cookie on w.
func (m *Manager) Start(w http.ResponseWriter, r *http.Request) (*Session, error) {
	s, err := m.Load(r.Context(), r)
	if err != nil {
		return nil, err
	}
	if s.IsNew() {
		http.SetCookie(w, m.cookie(s.ID()))
	}
	return s, nil
}

// Commit persists s: modified sessions are written with the idle timeout,
// untouched ones only have their window extended, and abandoned ones are
// removed. New sessions that were never written are not stored.
func (m *Manager) Commit(ctx context.Context, s *Session) error {
	v, dirty, abandoned := s.snapshot()
	switch {
	case abandoned:
		return m.store.Remove(ctx, s.ID())
	case dirty:
		if err := m.store.Set(ctx, s.ID(), v, &sessioncache.EntryOptions{SlidingExpiration: m.opts.IdleTimeout}); err != nil {
			return err
		}
		s.committed()
		return nil
	case s.IsNew():
		return nil
	default:
		return m.store.Refresh(ctx, s.ID())
	}
}

// Middleware attaches the session to the request context and commits it after
// next returns. A backend failure while loading answers 503.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Start(w, r)
		if err != nil {
			m.log.Error("session load failed", sessioncache.Fields{"err": err})
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
		if err := m.Commit(r.Context(), s); err != nil {
			m.log.Error("session commit failed", sessioncache.Fields{"err": err})
		}
	})
}

func (m *Manager) cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     m.opts.Path,
		Domain:   m.opts.Domain,
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: m.opts.SameSite,
	}
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
