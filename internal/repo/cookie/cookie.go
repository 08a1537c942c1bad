package cookie

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

// ErrDecode marks a cookie whose value is no longer valid JSON. The
// caller treats it as absent and clears the mirror.
var ErrDecode = errors.New("cookie decode failed")

// Mirror is the cookie side of the session mirror. The edge guard runs
// before any other code and can only see cookies, so the full record is
// carried here as URL-escaped JSON. The max-age is fixed, independent
// of the record's own expiry.
type Mirror struct {
	name   string
	maxAge time.Duration
	secure bool
}

func NewMirror(name string, maxAge time.Duration, secure bool) *Mirror {
	if name == "" {
		name = "userCred"
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Mirror{name: name, maxAge: maxAge, secure: secure}
}

func (m *Mirror) Write(w http.ResponseWriter, rec model.SessionRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    url.QueryEscape(string(payload)),
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the mirrored record, nil when the cookie is absent, or
// ErrDecode when the value no longer parses.
func (m *Mirror) Read(r *http.Request) (*model.SessionRecord, error) {
	c, err := r.Cookie(m.name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session cookie: %w", err)
	}

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil, ErrDecode
	}

	var rec model.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, ErrDecode
	}

	return &rec, nil
}

// Clear expires the cookie. Clearing an absent cookie is a no-op for
// the browser, so this is idempotent.
func (m *Mirror) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Name exposes the configured cookie name for request matching.
func (m *Mirror) Name() string { return m.name }
