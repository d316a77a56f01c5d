package postgrest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/textproto"
	nurl "net/url"
	"sort"
	"strings"
)

// APIPath is the path prefix of the REST endpoint on a hosted project.
const APIPath = "/rest/v1/"

var (
	ErrMethodNotAllowed = errors.New("only GET and HEAD requests are allowed")
	ErrEmptyRequest     = errors.New("empty request")
)

// Request is a decoded request text.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
}

// ParseRequest decodes the request text form:
//
//	[METHOD] path[?query]
//	[Header: value]...
//
// Method defaults to GET. A leading "/rest/v1/" in the path is dropped.
func ParseRequest(text string) (*Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyRequest
	}

	first, rest, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)

	method := http.MethodGet
	target := first
	if m, t, ok := strings.Cut(first, " "); ok && isMethod(m) {
		method = m
		target = strings.TrimSpace(t)
	}
	if method != http.MethodGet && method != http.MethodHead {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotAllowed, method)
	}

	target = strings.TrimPrefix(target, "/")
	target = strings.TrimPrefix(target, strings.TrimPrefix(APIPath, "/"))
	path, rawQuery, _ := strings.Cut(target, "?")
	if path == "" {
		return nil, errors.New("request has no table or view")
	}
	if _, err := nurl.ParseQuery(rawQuery); err != nil {
		return nil, fmt.Errorf("url.ParseQuery: %w", err)
	}

	header := make(http.Header)
	if rest = strings.TrimSpace(rest); rest != "" {
		tp := textproto.NewReader(bufio.NewReader(strings.NewReader(rest + "\r\n\r\n")))
		mime, err := tp.ReadMIMEHeader()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid header lines: %w", err)
		}
		header = http.Header(mime)
	}

	return &Request{
		Method:   method,
		Path:     path,
		RawQuery: rawQuery,
		Header:   header,
	}, nil
}

func isMethod(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// URL resolves the request against the base url. apiPath is the mount
// point of the endpoint, APIPath on hosted projects.
func (r *Request) URL(base *nurl.URL, apiPath string) *nurl.URL {
	if !strings.HasSuffix(apiPath, "/") {
		apiPath += "/"
	}
	if !strings.HasPrefix(apiPath, "/") {
		apiPath = "/" + apiPath
	}

	u := *base
	u.User = nil
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPath + r.Path
	u.RawPath = ""
	u.RawQuery = r.RawQuery
	return &u
}

func (r *Request) String() string {
	var b strings.Builder
	b.WriteString(r.Method)
	b.WriteString(" ")
	b.WriteString(r.Path)
	if r.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(r.RawQuery)
	}

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			b.WriteString("\n")
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
		}
	}
	return b.String()
}
