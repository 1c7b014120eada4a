// Package auth provides session management and the request identity context.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "mall:session:"
	defaultMaxAge    = 7 * 24 * time.Hour
)

// RedisStore is a sessions.Store that keeps session values in Redis. Only the
// signed and encrypted session id travels in the cookie.
//
// Values are gob-encoded under "<prefix><id>" with a TTL equal to MaxAge.
type RedisStore struct {
	client    *redis.Client
	codecs    []securecookie.Codec
	options   *sessions.Options
	keyPrefix string
}

// StoreOption customizes a RedisStore.
type StoreOption func(*RedisStore)

// WithMaxAge overrides the 7 day session lifetime.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *RedisStore) { s.options.MaxAge = int(d.Seconds()) }
}

// WithKeyPrefix overrides the Redis key prefix.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// NewSessionStore creates a Redis-backed session store. secureCookie should be
// true whenever the API is served over HTTPS.
//
//	store := auth.NewSessionStore(
//	    app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey),
//	    []byte(cfg.SessionEncryptionKey),
//	    cfg.Environment == config.EnvProduction,
//	)
func NewSessionStore(client *redis.Client, authKey, encryptionKey []byte, secureCookie bool, opts ...StoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		codecs:    securecookie.CodecsFromPairs(authKey, encryptionKey),
		keyPrefix: defaultKeyPrefix,
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(defaultMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached session for the request, loading it on first use.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New decodes the session id from the cookie and loads its values. Missing,
// tampered or expired state yields a fresh session without error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	values, err := s.load(r.Context(), id)
	if err != nil {
		return session, nil
	}
	session.ID = id
	session.Values = values
	session.IsNew = false
	return session, nil
}

// Save writes the session values to Redis and sets the cookie. A negative
// MaxAge deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), s.keyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = newSessionID()
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.store(r.Context(), session.ID, session.Values, ttl); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func newSessionID() string {
	return strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
}

func (s *RedisStore) store(ctx context.Context, id string, values map[interface{}]interface{}, ttl time.Duration) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+id, buf.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

var errSessionGone = errors.New("session expired or unknown")

func (s *RedisStore) load(ctx context.Context, id string) (map[interface{}]interface{}, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errSessionGone
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	values := make(map[interface{}]interface{})
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}
	return values, nil
}
