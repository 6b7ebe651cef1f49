package httpclient

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// Params are query or form parameters. Nil values are omitted.
type Params map[string]any

// Encode serializes p as key=value pairs joined by "&". Keys are sorted;
// keys and values are percent-encoded the way encodeURIComponent does,
// so a space becomes %20 rather than "+".
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(p)) {
		v := p[k]
		if v == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeComponent(stringify(v)))
	}
	return b.String()
}

// AppendQuery appends the encoded params to rawURL, using "&" when the URL
// already carries a query string and "?" otherwise. The URL is returned
// unchanged when there is nothing to append.
func AppendQuery(rawURL string, params Params) string {
	qs := params.Encode()
	if qs == "" {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + qs
	}
	return rawURL + "?" + qs
}

func escapeComponent(s string) string {
	// QueryEscape encodes a literal "+" as %2B, so every "+" left is a space.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
