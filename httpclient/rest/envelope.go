package rest

import (
	"encoding/json"
	"strings"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/httpclient"
)

// MediaTypeJSON is the media type every envelope response must declare.
const MediaTypeJSON = "application/json"

// ServerErrorThreshold is the lowest envelope status treated as a failure.
const ServerErrorThreshold = 500

// Envelope is the application-level response wrapper. Status is the
// application status and is independent of the transport status code.
type Envelope[T any] struct {
	Status int      `json:"status"`
	Data   *T       `json:"data,omitempty"`
	Errors []string `json:"errors"`
}

// OK reports whether the envelope status is 2xx.
func (e *Envelope[T]) OK() bool {
	return e.Status >= 200 && e.Status < 300
}

type wireEnvelope struct {
	Status *int            `json:"status"`
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

// Decode interprets res as an Envelope[T].
//
// The response must declare a content type beginning with application/json
// and carry a JSON object with a numeric status. Envelopes with a status
// below 500 are returned as results, including 4xx. A status of 500 or more
// becomes a SERVER_FAILURE error naming the request method, URL and the
// envelope's error messages. The transport status code is never consulted.
func Decode[T any](res *httpclient.Response) (*Envelope[T], error) {
	ct := res.ContentType()
	if !strings.HasPrefix(ct, MediaTypeJSON) {
		return nil, errors.ContentTypeMismatch(MediaTypeJSON, ct)
	}

	var wire wireEnvelope
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, errors.Protocol("malformed JSON envelope").WithCause(err)
	}
	if wire.Status == nil {
		return nil, errors.Protocol(`envelope has no numeric "status" field`)
	}

	env := &Envelope[T]{Status: *wire.Status, Errors: wire.Errors}
	if env.Errors == nil {
		env.Errors = []string{}
	}
	if env.Status >= ServerErrorThreshold {
		return nil, errors.ServerFailure(res.Request.Method, res.Request.URL, env.Status, env.Errors)
	}
	if len(wire.Data) > 0 && string(wire.Data) != "null" {
		var data T
		if err := json.Unmarshal(wire.Data, &data); err != nil {
			return nil, errors.Protocol(`envelope "data" does not match the expected type`).WithCause(err)
		}
		env.Data = &data
	}
	return env, nil
}
