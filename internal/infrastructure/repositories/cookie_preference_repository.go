package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	domainrepos "luastyle/internal/domain/repositories"
)

const PreferenceCookieName = "luastyle"

// CookiePreferenceRepository keeps preferences in a signed cookie. It is
// bound to a single request and response.
type CookiePreferenceRepository struct {
	store sessions.Store
	w     http.ResponseWriter
	r     *http.Request
}

func NewCookiePreferenceRepository(store sessions.Store, w http.ResponseWriter, r *http.Request) domainrepos.PreferenceRepository {
	return &CookiePreferenceRepository{
		store: store,
		w:     w,
		r:     r,
	}
}

// NewCookieStore returns a store whose cookies last a year and are not readable from scripts.
func NewCookieStore(secret []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (p *CookiePreferenceRepository) Load(ctx context.Context, key string) (string, error) {
	session, err := p.store.Get(p.r, PreferenceCookieName)
	if err != nil {
		// 改ざん・鍵の変更などで復号できないCookieは未設定として扱う
		slog.Debug("ignoring unreadable preference cookie", "error", err)
		return "", nil
	}

	value, _ := session.Values[key].(string)
	return value, nil
}

func (p *CookiePreferenceRepository) Save(ctx context.Context, key, value string) error {
	session, err := p.store.Get(p.r, PreferenceCookieName)
	if err != nil {
		slog.Debug("replacing unreadable preference cookie", "error", err)
	}

	session.Values[key] = value
	if err := session.Save(p.r, p.w); err != nil {
		return fmt.Errorf("failed to save preference cookie: %w", err)
	}
	return nil
}
