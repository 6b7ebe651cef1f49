// Package session manages the authenticated user of an application on top of
// a REST envelope client and a persisted key-value store.
//
// The current user is whatever is cached under the user key in the store.
// There is no separate session object and no expiry: callers refresh it
// explicitly with Fetch.
package session

import (
	"context"
	"encoding/json"

	"github.com/kbukum/restkit/httpclient/rest"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/storage"
)

// Defaults for the session resource and the cache key.
const (
	DefaultPath    = "/sessions"
	DefaultUserKey = "app-user"
)

// State is whether a user is cached.
type State int

const (
	// StateAbsent means no user is cached.
	StateAbsent State = iota
	// StatePresent means a user is cached.
	StatePresent
)

// String returns the state name.
func (s State) String() string {
	if s == StatePresent {
		return "present"
	}
	return "absent"
}

// Service manages the current user of type U.
type Service[U any] struct {
	rest    *rest.Client
	store   *storage.Store
	path    string
	userKey string
	log     *logger.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	path    string
	userKey string
	log     *logger.Logger
}

// WithPath sets the session resource path.
func WithPath(p string) Option {
	return func(o *options) { o.path = p }
}

// WithUserKey sets the store key the current user is cached under.
func WithUserKey(k string) Option {
	return func(o *options) { o.userKey = k }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a session service over rc and store.
func New[U any](rc *rest.Client, store *storage.Store, opts ...Option) *Service[U] {
	o := options{path: DefaultPath, userKey: DefaultUserKey}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service[U]{
		rest:    rc,
		store:   store,
		path:    o.path,
		userKey: o.userKey,
		log:     logger.OrNop(o.log).WithComponent("session"),
	}
}

// Current returns the cached user, or nil. It never touches the network.
func (s *Service[U]) Current() *U {
	u, ok := storage.Get[U](s.store, s.userKey)
	if !ok {
		return nil
	}
	return &u
}

// Status reports whether a user is cached.
func (s *Service[U]) Status() State {
	if s.store.Has(s.userKey) {
		return StatePresent
	}
	return StateAbsent
}

// Fetch asks the server for the current session user. The result is not
// cached; callers decide whether to keep it.
func (s *Service[U]) Fetch(ctx context.Context) (*U, error) {
	env, err := rest.Get[U](ctx, s.rest, s.path, nil)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Login posts credentials to the session resource. A returned user is
// cached and returned. An envelope without data (for instance a 401) yields
// nil and leaves the cache untouched.
func (s *Service[U]) Login(ctx context.Context, credentials any) (*U, error) {
	env, err := rest.Post[U](ctx, s.rest, s.path, credentials, nil)
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		s.log.WithContext(ctx).Info("login returned no user", map[string]interface{}{
			logger.FieldStatus: env.Status,
		})
		return nil, nil
	}

	if err := s.store.Set(ctx, s.userKey, env.Data); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Debug("user logged in", map[string]interface{}{logger.FieldStatus: env.Status})
	return env.Data, nil
}

// Logout deletes the server-side session and then clears the entire store,
// not just the user key, whether or not the delete succeeded. The delete's
// error, if any, is returned after the store is cleared.
func (s *Service[U]) Logout(ctx context.Context) error {
	_, err := rest.Delete[json.RawMessage](ctx, s.rest, s.path, nil)
	s.store.Clear(ctx)

	if err != nil {
		s.log.WithContext(ctx).Warn("server-side logout failed, local state cleared", map[string]interface{}{
			logger.FieldError: err,
		})
		return err
	}
	s.log.WithContext(ctx).Debug("user logged out")
	return nil
}

// Refresh is a placeholder for a token refresh policy. It returns nil.
func (s *Service[U]) Refresh(context.Context) (*U, error) {
	return nil, nil
}
