package httpclient

import (
	"bytes"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
)

// MultipartBody describes a multipart/form-data payload.
type MultipartBody struct {
	// Fields are simple key-value form fields, written in key order.
	Fields map[string]string
	// Files are file upload fields, written in slice order.
	Files []FileField
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "avatar").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type. Empty means application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader is read to completion when Data is nil.
	Reader io.Reader
}

// MultipartContent encodes m as multipart/form-data. The returned content
// type carries the generated boundary.
func MultipartContent(m MultipartBody) (*Content, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, err
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return nil, err
		}

		switch {
		case f.Data != nil:
			_, err = part.Write(f.Data)
		case f.Reader != nil:
			_, err = io.Copy(part, f.Reader)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return &Content{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

// escapeQuotes backslash-escapes quotes and backslashes in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
