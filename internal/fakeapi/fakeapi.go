// Package fakeapi implements the session resource contract with gin so the
// client stack can be exercised end to end in tests and local runs.
//
//	GET    /sessions  current user, or an empty 200 envelope
//	POST   /sessions  log in with {"username", "password"}; sets a session cookie
//	DELETE /sessions  invalidate the session
//
// Every response is a JSON envelope {"status", "data", "errors"} whose status
// is mirrored in the transport status code.
package fakeapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/restkit/logger"
)

// CookieName is the session cookie set on login.
const CookieName = "sid"

// User is the session user returned by the API.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Account is a user together with its password.
type Account struct {
	User
	Password string
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type envelope struct {
	Status int      `json:"status"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

type failure struct {
	status   int
	messages []string
}

// Server is an in-memory session API.
type Server struct {
	engine *gin.Engine
	log    *logger.Logger

	mu       sync.Mutex
	accounts map[string]Account
	sessions map[string]User
	failures map[string]failure
	calls    map[string]int
}

// New creates a server that accepts the given accounts.
func New(log *logger.Logger, accounts ...Account) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		log:      logger.OrNop(log).WithComponent("fakeapi"),
		accounts: make(map[string]Account, len(accounts)),
		sessions: make(map[string]User),
		failures: make(map[string]failure),
		calls:    make(map[string]int),
	}
	for _, a := range accounts {
		s.accounts[a.Username] = a
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), s.injectFailures())
	s.engine.GET("/sessions", s.current)
	s.engine.POST("/sessions", s.login)
	s.engine.DELETE("/sessions", s.logout)
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Fail makes every request with the given method answer with an envelope of
// status and messages. A status of 0 clears the failure.
func (s *Server) Fail(method string, status int, messages ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, method)
		return
	}
	s.failures[method] = failure{status: status, messages: messages}
}

// Calls returns how many requests were received for method.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func respond(c *gin.Context, status int, data any, messages ...string) {
	c.JSON(status, envelope{Status: status, Data: data, Errors: messages})
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls[c.Request.Method]++
		f, ok := s.failures[c.Request.Method]
		s.mu.Unlock()

		if ok {
			respond(c, f.status, nil, f.messages...)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request served", logger.MergeWithDuration(map[string]interface{}{
			logger.FieldMethod:    c.Request.Method,
			"path":                c.Request.URL.Path,
			logger.FieldStatus:    c.Writer.Status(),
			logger.FieldRequestID: c.GetHeader("X-Request-ID"),
		}, time.Since(start)))
	}
}

func (s *Server) sessionUser(c *gin.Context) (string, User, bool) {
	sid, err := c.Cookie(CookieName)
	if err != nil {
		return "", User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.sessions[sid]
	return sid, u, ok
}

func (s *Server) current(c *gin.Context) {
	if _, u, ok := s.sessionUser(c); ok {
		respond(c, http.StatusOK, u)
		return
	}
	respond(c, http.StatusOK, nil)
}

func (s *Server) login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respond(c, http.StatusBadRequest, nil, "username and password are required")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[creds.Username]
	if !ok || acct.Password != creds.Password {
		s.mu.Unlock()
		respond(c, http.StatusUnauthorized, nil, "invalid credentials")
		return
	}
	sid := uuid.NewString()
	s.sessions[sid] = acct.User
	s.mu.Unlock()

	c.SetCookie(CookieName, sid, 0, "/", "", false, true)
	respond(c, http.StatusCreated, acct.User)
}

func (s *Server) logout(c *gin.Context) {
	if sid, _, ok := s.sessionUser(c); ok {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
	respond(c, http.StatusOK, nil)
}
