package httpclient

import (
	"context"
	"encoding/base64"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
	// AuthCustom uses a custom request rewrite.
	AuthCustom
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string
	// Apply returns the authenticated copy of a request (AuthCustom).
	Apply func(Request) Request
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates a custom auth config with a request rewrite function.
func CustomAuth(fn func(Request) Request) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// Auth returns middleware that authenticates every request with a.
// A nil config passes requests through untouched.
func Auth(a *AuthConfig) Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		return next(ctx, a.apply(req))
	}
}

// apply returns the authenticated copy of req.
func (a *AuthConfig) apply(req Request) Request {
	if a == nil {
		return req
	}
	switch a.Type {
	case AuthBearer:
		return req.WithHeader("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return req.WithHeader("Authorization", "Basic "+cred)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = "X-API-Key"
		}
		if a.In == "query" {
			return req.WithURL(AppendQuery(req.URL, Params{name: a.Key}))
		}
		return req.WithHeader(name, a.Key)
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(req.Clone())
		}
	}
	return req
}
