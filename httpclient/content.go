package httpclient

import (
	"encoding/json"
	"fmt"
)

// Content types set by the built-in encoders.
const (
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Content is an encoded request payload together with its content type.
// The verb methods of Client copy ContentType into the Content-Type header.
type Content struct {
	ContentType string
	Body        []byte
}

// JSONContent encodes v as JSON. A nil v produces no body but keeps the
// JSON content type.
func JSONContent(v any) (*Content, error) {
	c := &Content{ContentType: ContentTypeJSON}
	if v == nil {
		return c, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode json body: %w", err)
	}
	c.Body = data
	return c, nil
}

// FormContent encodes params as an application/x-www-form-urlencoded body
// using the same rules as query strings.
func FormContent(params Params) *Content {
	return &Content{
		ContentType: ContentTypeForm,
		Body:        []byte(params.Encode()),
	}
}
