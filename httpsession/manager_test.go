package httpsession

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/unkn0wn-root/sessioncache"
	"github.com/unkn0wn-root/sessioncache/provider/bigcache"
)

func newManager(t *testing.T, opts Options) (*Manager, sessioncache.Cache) {
	t.Helper()
	conn := sessioncache.NewConnection(bigcache.Dial(bigcache.Config{LifeWindow: time.Hour}), nil)
	t.Cleanup(func() { _ = conn.Close(context.Background()) })
	cache, err := sessioncache.New(sessioncache.Options{Namespace: "http", Conn: conn})
	if err != nil {
		t.Fatalf("New cache: %v", err)
	}
	m, err := NewManager(cache, opts)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, cache
}

func counter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := FromContext(r.Context())
		n, _ := s.GetInt("visits")
		n++
		s.SetInt("visits", n)
		_, _ = w.Write([]byte(strconv.Itoa(int(n))))
	})
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultCookieName {
			return c
		}
	}
	return nil
}

func TestMiddlewareKeepsStateAcrossRequests(t *testing.T) {
	m, _ := newManager(t, Options{})
	h := m.Middleware(counter())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != "1" {
		t.Fatalf("first visit body=%q", rec.Body.String())
	}
	c := sessionCookie(t, rec)
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", c)
	}

	for want := 2; want <= 3; want++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Body.String() != strconv.Itoa(want) {
			t.Fatalf("visit %d body=%q", want, rec.Body.String())
		}
		if sessionCookie(t, rec) != nil {
			t.Fatalf("existing session should not reissue the cookie")
		}
	}
}

func TestUnknownCookieGetsFreshID(t *testing.T) {
	m, _ := newManager(t, Options{NewID: func() string { return "fresh" }})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "attacker-chosen"})
	s, err := m.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !s.IsNew() || s.ID() != "fresh" {
		t.Fatalf("expected a fresh session, got id=%q new=%v", s.ID(), s.IsNew())
	}
}

func TestCommitSkipsUntouchedNewSessions(t *testing.T) {
	ctx := context.Background()
	m, cache := newManager(t, Options{NewID: func() string { return "idle" }})

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if err := m.Commit(ctx, s); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "idle"); ok {
		t.Fatalf("untouched new session should not be stored")
	}
}

func TestAbandonRemovesSession(t *testing.T) {
	ctx := context.Background()
	m, cache := newManager(t, Options{NewID: func() string { return "gone" }})

	s, _ := m.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	s.SetString("user", "ada")
	if err := m.Commit(ctx, s); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "gone"); !ok {
		t.Fatalf("session not stored")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "gone"})
	s2, err := m.Load(ctx, req)
	if err != nil || s2.IsNew() {
		t.Fatalf("Load existing: new=%v err=%v", s2.IsNew(), err)
	}
	if v, _ := s2.GetString("user"); v != "ada" {
		t.Fatalf("user=%q", v)
	}
	s2.Abandon()
	if err := m.Commit(ctx, s2); err != nil {
		t.Fatalf("Commit abandon: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "gone"); ok {
		t.Fatalf("abandoned session still stored")
	}
}

func TestSessionValues(t *testing.T) {
	s := newSession("id", nil, true)
	s.SetString("b", "2")
	s.SetInt("a", -7)
	if got := s.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("keys=%v", got)
	}
	if n, ok := s.GetInt("a"); !ok || n != -7 {
		t.Fatalf("GetInt=%d ok=%v", n, ok)
	}
	if _, ok := s.GetInt("b"); ok {
		t.Fatalf("GetInt on a 1-byte value should fail")
	}
	s.Delete("a")
	s.Clear()
	if len(s.Keys()) != 0 {
		t.Fatalf("expected empty session")
	}
}

type failingCache struct{ sessioncache.Cache }

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func TestMiddlewareAnswers503OnLoadFailure(t *testing.T) {
	m, err := NewManager(failingCache{}, Options{})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "x"})
	rec := httptest.NewRecorder()
	m.Middleware(counter()).ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
