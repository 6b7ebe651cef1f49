package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

func recorder(events *[]string, name string) Middleware {
	return func(ctx context.Context, req Request, next Handler) (*Response, error) {
		*events = append(*events, "in:"+name)
		res, err := next(ctx, req)
		*events = append(*events, "out:"+name)
		return res, err
	}
}

func okTerminal(events *[]string) Handler {
	return func(_ context.Context, req Request) (*Response, error) {
		*events = append(*events, "transport")
		return &Response{Request: req, StatusCode: http.StatusOK, URL: req.URL}, nil
	}
}

func TestCompose_Order(t *testing.T) {
	var events []string
	h := Compose(okTerminal(&events),
		recorder(&events, "m1"),
		recorder(&events, "m2"),
		recorder(&events, "m3"),
	)

	if _, err := h(context.Background(), Request{Method: http.MethodGet, URL: "/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"in:m1", "in:m2", "in:m3", "transport", "out:m3", "out:m2", "out:m1"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestCompose_NoMiddleware(t *testing.T) {
	var events []string
	h := Compose(okTerminal(&events))
	res, err := h(context.Background(), Request{Method: http.MethodGet, URL: "/x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.URL != "/x" {
		t.Errorf("URL = %q, want /x", res.URL)
	}
	if len(events) != 1 {
		t.Errorf("events = %v", events)
	}
}

func TestCompose_RequestRewriteReachesTransport(t *testing.T) {
	var seen Request
	terminal := func(_ context.Context, req Request) (*Response, error) {
		seen = req
		return &Response{Request: req, StatusCode: http.StatusOK}, nil
	}
	original := Request{Method: http.MethodGet, URL: "/a"}

	h := Compose(terminal,
		func(ctx context.Context, req Request, next Handler) (*Response, error) {
			return next(ctx, req.WithHeader("X-One", "1"))
		},
		func(ctx context.Context, req Request, next Handler) (*Response, error) {
			if v, _ := req.Header("X-One"); v != "1" {
				t.Errorf("inner middleware did not see outer rewrite")
			}
			return next(ctx, req.WithURL("/b"))
		},
	)

	if _, err := h(context.Background(), original); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.URL != "/b" {
		t.Errorf("transport URL = %q, want /b", seen.URL)
	}
	if v, _ := seen.Header("x-one"); v != "1" {
		t.Errorf("transport X-One = %q, want 1", v)
	}
	if original.Headers != nil || original.URL != "/a" {
		t.Errorf("original request was mutated: %+v", original)
	}
}

func TestCompose_ResponsePostProcessing(t *testing.T) {
	var events []string
	h := Compose(okTerminal(&events),
		func(ctx context.Context, req Request, next Handler) (*Response, error) {
			res, err := next(ctx, req)
			if err != nil {
				return nil, err
			}
			res.StatusCode = http.StatusAccepted
			return res, nil
		},
	)
	res, err := h(context.Background(), Request{Method: http.MethodGet, URL: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusAccepted {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusAccepted)
	}
}

func TestCompose_ShortCircuit(t *testing.T) {
	var events []string
	h := Compose(okTerminal(&events),
		recorder(&events, "outer"),
		func(_ context.Context, req Request, _ Handler) (*Response, error) {
			events = append(events, "cache")
			return &Response{Request: req, StatusCode: http.StatusNotModified}, nil
		},
		recorder(&events, "inner"),
	)

	res, err := h(context.Background(), Request{Method: http.MethodGet, URL: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != http.StatusNotModified {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
	want := []string{"in:outer", "cache", "out:outer"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestCompose_ErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("boom")
	var events []string
	h := Compose(func(context.Context, Request) (*Response, error) {
		return nil, boom
	}, recorder(&events, "m1"))

	_, err := h(context.Background(), Request{Method: http.MethodGet, URL: "/"})
	if err != boom {
		t.Errorf("err = %v, want boom", err)
	}
	want := []string{"in:m1", "out:m1"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRequest_Clone(t *testing.T) {
	r := Request{Method: http.MethodPost, URL: "/", Headers: map[string]string{"A": "1"}, Body: []byte("x")}
	c := r.Clone()
	c.Headers["A"] = "2"
	c.Body[0] = 'y'
	if r.Headers["A"] != "1" || string(r.Body) != "x" {
		t.Errorf("clone shares state with original: %+v", r)
	}
}

func TestRequest_HeaderCaseInsensitive(t *testing.T) {
	r := Request{Headers: map[string]string{"Content-Type": "text/plain"}}
	if v, ok := r.Header("content-type"); !ok || v != "text/plain" {
		t.Errorf("Header = %q, %v", v, ok)
	}
	if _, ok := r.Header("accept"); ok {
		t.Error("expected missing header")
	}
}

func TestResponse_Value(t *testing.T) {
	tests := []struct {
		name string
		ct   string
		body string
		want any
	}{
		{"json object", "application/json", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"json empty", "application/json", ``, nil},
		{"vendor json", "application/vnd.api+json", `[1]`, []any{float64(1)}},
		{"text", "text/plain", `hello`, "hello"},
		{"no content type", "", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Response{Headers: map[string]string{}, Body: []byte(tt.body)}
			if tt.ct != "" {
				res.Headers["content-type"] = tt.ct
			}
			got, err := res.Value()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Value() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
