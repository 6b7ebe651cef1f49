package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/httpclient"
)

type testUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hc, err := httpclient.New(httpclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(hc), srv
}

func writeEnvelope(w http.ResponseWriter, transportStatus int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(transportStatus)
	_, _ = io.WriteString(w, body)
}

func TestGet(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/users/1" {
			t.Errorf("expected /users/1, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept: application/json, got %s", got)
		}
		writeEnvelope(w, http.StatusOK, `{"status":200,"data":{"name":"Alice","email":"alice@example.com"}}`)
	})

	env, err := Get[testUser](context.Background(), c, "/users/1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Status != 200 || !env.OK() {
		t.Errorf("expected status 200, got %d", env.Status)
	}
	if env.Data == nil || env.Data.Name != "Alice" {
		t.Errorf("expected Alice, got %+v", env.Data)
	}
	if env.Errors == nil || len(env.Errors) != 0 {
		t.Errorf("expected empty errors slice, got %#v", env.Errors)
	}
}

func TestGet_WithQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "limit=10&page=2" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		writeEnvelope(w, http.StatusOK, `{"status":200,"data":[]}`)
	})

	if _, err := Get[[]testUser](context.Background(), c, "/users", httpclient.Params{"page": 2, "limit": 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPost(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}
		var user testUser
		_ = json.NewDecoder(r.Body).Decode(&user)
		user.Email = "bob@example.com"
		data, _ := json.Marshal(user)
		writeEnvelope(w, http.StatusCreated, `{"status":201,"data":`+string(data)+`}`)
	})

	env, err := Post[testUser](context.Background(), c, "/users", testUser{Name: "Bob"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Status != 201 {
		t.Errorf("expected 201, got %d", env.Status)
	}
	if env.Data.Name != "Bob" || env.Data.Email != "bob@example.com" {
		t.Errorf("unexpected data: %+v", env.Data)
	}
}

func TestPost_NilBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("expected empty body, got %q", body)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q, want JSON even without body", ct)
		}
		writeEnvelope(w, http.StatusOK, `{"status":204}`)
	})

	env, err := Post[testUser](context.Background(), c, "/ping", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Data != nil {
		t.Errorf("expected no data, got %+v", env.Data)
	}
}

func TestPutPatchDelete(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, `{"status":200,"data":{"name":"`+r.Method+`"}}`)
	})
	ctx := context.Background()

	put, err := Put[testUser](ctx, c, "/users/1", testUser{Name: "x"}, nil)
	if err != nil || put.Data.Name != http.MethodPut {
		t.Errorf("Put = %+v, %v", put, err)
	}
	patch, err := Patch[testUser](ctx, c, "/users/1", map[string]string{"name": "x"}, nil)
	if err != nil || patch.Data.Name != http.MethodPatch {
		t.Errorf("Patch = %+v, %v", patch, err)
	}
	del, err := Delete[testUser](ctx, c, "/users/1", nil)
	if err != nil || del.Data.Name != http.MethodDelete {
		t.Errorf("Delete = %+v, %v", del, err)
	}
}

func TestWithHeaders(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Trace"); got != "abc" {
			t.Errorf("X-Trace = %q", got)
		}
		writeEnvelope(w, http.StatusOK, `{"status":200}`)
	})
	if _, err := Get[testUser](context.Background(), c, "/", nil, WithHeaders(map[string]string{"X-Trace": "abc"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithHeaders_ReplacesAnyCase(t *testing.T) {
	req := httpclient.Request{Headers: map[string]string{
		"Accept":       MediaTypeJSON,
		"Content-Type": MediaTypeJSON,
	}}
	WithHeaders(map[string]string{"accept": "application/problem+json"})(&req)

	if len(req.Headers) != 2 {
		t.Fatalf("headers = %v, want 2 entries", req.Headers)
	}
	if got := req.Headers["accept"]; got != "application/problem+json" {
		t.Errorf("accept = %q", got)
	}
	if _, ok := req.Headers["Accept"]; ok {
		t.Error("original Accept should be replaced")
	}
}

// send issues method against path, with a JSON body for POST.
func send(ctx context.Context, c *Client, method, path string) (*Envelope[testUser], error) {
	if method == http.MethodPost {
		return Post[testUser](ctx, c, path, testUser{Name: "Ada"}, nil)
	}
	return Get[testUser](ctx, c, path, nil)
}

func TestNotFoundEnvelopeResolves(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, `{"status":404,"errors":["not found"]}`)
			})

			env, err := send(context.Background(), c, method, "/users/9")
			if err != nil {
				t.Fatalf("4xx envelopes are results, got error: %v", err)
			}
			if env.Status != 404 || env.OK() {
				t.Errorf("status = %d", env.Status)
			}
			if len(env.Errors) != 1 || env.Errors[0] != "not found" {
				t.Errorf("errors = %v", env.Errors)
			}
		})
	}
}

func TestServerFailureRejects(t *testing.T) {
	tests := []struct {
		method string
		body   string
	}{
		{http.MethodGet, `{"status":500,"errors":["boom"]}`},
		{http.MethodPost, `{"status":500,"errors":["boom"]}`},
		{http.MethodGet, `{"status":503,"data":"oops","errors":["boom"]}`},
		{http.MethodPost, `{"status":500,"data":[1,2],"errors":["boom"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.body, func(t *testing.T) {
			c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, tt.body)
			})

			_, err := send(context.Background(), c, tt.method, "/users")
			if err == nil {
				t.Fatal("expected error for status >= 500 envelope")
			}
			if !IsServerFailure(err) {
				t.Fatalf("expected SERVER_FAILURE, got %v", err)
			}
			msg := err.Error()
			for _, want := range []string{tt.method, srv.URL + "/users", "boom", "50"} {
				if !strings.Contains(msg, want) {
					t.Errorf("error %q should contain %q", msg, want)
				}
			}

			se, ok := AsServerError(err)
			if !ok {
				t.Fatal("AsServerError should match")
			}
			if se.Method != tt.method || se.URL != srv.URL+"/users" || se.Status < 500 {
				t.Errorf("unexpected server error view: %+v", se)
			}
			if len(se.Errors) != 1 || se.Errors[0] != "boom" {
				t.Errorf("Errors = %v", se.Errors)
			}
		})
	}
}

func TestTransportStatusIgnored(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, `{"status":200,"data":{"name":"ok"}}`)
	})

	env, err := Get[testUser](context.Background(), c, "/", nil)
	if err != nil {
		t.Fatalf("transport status must not decide the outcome: %v", err)
	}
	if env.Data.Name != "ok" {
		t.Errorf("unexpected data: %+v", env.Data)
	}
}

func TestProtocolViolations(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantMsg     string
	}{
		{"html content type", "text/html", `<html></html>`, `expected "application/json", got "text/html"`},
		{"missing content type", "", `{"status":200}`, `got "undefined"`},
		{"malformed json", "application/json", `{"status":`, "malformed JSON"},
		{"missing status", "application/json", `{"data":{}}`, "status"},
		{"non numeric status", "application/json", `{"status":"ok"}`, "malformed JSON"},
		{"array body", "application/json", `[1,2]`, "malformed JSON"},
		{"wrong data type", "application/json", `{"status":200,"data":"text"}`, "data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				} else {
					w.Header()["Content-Type"] = nil
				}
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := Get[testUser](context.Background(), c, "/", nil)
			if !IsProtocolViolation(err) {
				t.Fatalf("expected PROTOCOL_VIOLATION, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	hc, err := httpclient.New(httpclient.Config{BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Get[testUser](context.Background(), New(hc), "/", nil)
	if !errors.Is(err, errors.ErrCodeTransportFailed) {
		t.Errorf("expected TRANSPORT_FAILED, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("transport failures should be retryable")
	}
}

func TestMiddlewareAppliesToRestCalls(t *testing.T) {
	hc, err := httpclient.New(httpclient.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hc.Use(httpclient.Mock(func(req httpclient.Request) (*httpclient.Response, error) {
		if accept, _ := req.Header("Accept"); accept != "application/json" {
			t.Errorf("Accept = %q", accept)
		}
		return httpclient.JSONResponse(http.StatusOK, `{"status":200,"data":{"name":"mocked"}}`), nil
	}))

	env, err := Get[testUser](context.Background(), New(hc), "http://example.test/u", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Data.Name != "mocked" {
		t.Errorf("unexpected data: %+v", env.Data)
	}
}
