package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/careerhub/careerhub/internal/config"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Context keys set by RequireSession.
const (
	ContextKeySession = "session"
	ContextKeyUserID  = "userID"
)

// ErrInvalidCookie indicates a missing, malformed or tampered cookie.
var ErrInvalidCookie = errors.New("session: invalid cookie")

// Manager binds a Store to signed cookies.
type Manager struct {
	store      Store
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// NewManager builds a Manager. An empty secret is replaced by a random one,
// which invalidates cookies across restarts.
func NewManager(store Store, cfg config.SessionConfig) *Manager {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, errRand := rand.Read(secret); errRand != nil {
			panic(errRand)
		}
		log.Warn("session: no secret configured, using an ephemeral one")
	}
	name := strings.TrimSpace(cfg.CookieName)
	if name == "" {
		name = "careerhub_session"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		store:      store,
		secret:     secret,
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}
}

// Start creates a session for the user and sets its cookie.
func (m *Manager) Start(c *gin.Context, userID uint64, email, name, upstreamToken string) (*Session, error) {
	now := m.now().UTC()
	sess := &Session{
		ID:            NewID(),
		UserID:        userID,
		Email:         email,
		Name:          name,
		UpstreamToken: upstreamToken,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
	}
	if errCreate := m.store.Create(c.Request.Context(), sess); errCreate != nil {
		return nil, errCreate
	}
	m.setCookie(c, m.sign(sess.ID), int(m.ttl.Seconds()))
	return sess, nil
}

// Load resolves the session referenced by the request cookie.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, errCookie := r.Cookie(m.cookieName)
	if errCookie != nil {
		return nil, ErrInvalidCookie
	}
	id, ok := m.verify(cookie.Value)
	if !ok {
		return nil, ErrInvalidCookie
	}
	return m.store.Get(ctx, id)
}

// End deletes the current session, if any, and clears the cookie.
func (m *Manager) End(c *gin.Context) error {
	defer m.setCookie(c, "", -1)
	cookie, errCookie := c.Request.Cookie(m.cookieName)
	if errCookie != nil {
		return nil
	}
	id, ok := m.verify(cookie.Value)
	if !ok {
		return nil
	}
	return m.store.Delete(c.Request.Context(), id)
}

// RequireSession aborts with 401 unless the request carries a live session.
func (m *Manager) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, errLoad := m.Load(c.Request.Context(), c.Request)
		if errLoad != nil {
			if !errors.Is(errLoad, ErrInvalidCookie) && !errors.Is(errLoad, ErrNotFound) {
				log.WithError(errLoad).Warn("session: load failed")
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set(ContextKeySession, sess)
		c.Set(ContextKeyUserID, sess.UserID)
		c.Next()
	}
}

// FromContext returns the session stored by RequireSession.
func FromContext(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(ContextKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*Session)
	return sess, ok && sess != nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", "", m.secure, true)
}

// sign returns "<id>.<base64url(hmac)>".
func (m *Manager) sign(id string) string {
	return id + "." + base64.RawURLEncoding.EncodeToString(m.mac(id))
}

func (m *Manager) verify(value string) (string, bool) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 || idx == len(value)-1 {
		return "", false
	}
	id, encoded := value[:idx], value[idx+1:]
	sig, errDecode := base64.RawURLEncoding.DecodeString(encoded)
	if errDecode != nil {
		return "", false
	}
	if !hmac.Equal(sig, m.mac(id)) {
		return "", false
	}
	return id, true
}

func (m *Manager) mac(id string) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(id))
	return h.Sum(nil)
}
