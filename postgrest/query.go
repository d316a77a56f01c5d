package postgrest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// CountMode selects how the server computes the total of matching rows.
type CountMode string

const (
	CountNone      CountMode = ""
	CountExact     CountMode = "exact"
	CountPlanned   CountMode = "planned"
	CountEstimated CountMode = "estimated"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

type SelectOption func(*Query)

// WithCount asks the server for the total of matching rows.
func WithCount(mode CountMode) SelectOption {
	return func(q *Query) {
		q.count = mode
	}
}

// WithHead turns the request into a HEAD request: no rows are returned.
func WithHead() SelectOption {
	return func(q *Query) {
		q.head = true
	}
}

type param struct {
	key   string
	value string
}

// Query builds a read request for a single table.
// Parameters keep the order in which they were added.
type Query struct {
	table   string
	columns string
	count   CountMode
	head    bool

	filters []param
	order   []string
	offset  int
	limit   int
}

func From(table string) *Query {
	return &Query{
		table:   table,
		columns: "*",
		limit:   -1,
	}
}

// Select sets the column list. Whitespace outside of double quotes is removed.
func (q *Query) Select(columns string, opts ...SelectOption) *Query {
	q.columns = cleanColumns(columns)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Eq filters rows where column equals value.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, param{key: column, value: "eq." + fmt.Sprint(value)})
	return q
}

// In filters rows where column is one of values.
func (q *Query) In(column string, values ...any) *Query {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		s := fmt.Sprint(v)
		if strings.ContainsAny(s, ",()\" ") {
			s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
		quoted = append(quoted, s)
	}
	q.filters = append(q.filters, param{key: column, value: "in.(" + strings.Join(quoted, ",") + ")"})
	return q
}

func (q *Query) Order(column string, dir Direction) *Query {
	q.order = append(q.order, column+"."+dir.String())
	return q
}

// Range limits the result to rows from..to, both inclusive and zero based.
func (q *Query) Range(from, to int) *Query {
	q.offset = from
	q.limit = to - from + 1
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Table() string {
	return q.table
}

func (q *Query) Method() string {
	if q.head {
		return http.MethodHead
	}
	return http.MethodGet
}

func (q *Query) params() []param {
	params := []param{{key: "select", value: q.columns}}
	params = append(params, q.filters...)
	if len(q.order) > 0 {
		params = append(params, param{key: "order", value: strings.Join(q.order, ",")})
	}
	if q.offset > 0 {
		params = append(params, param{key: "offset", value: strconv.Itoa(q.offset)})
	}
	if q.limit >= 0 {
		params = append(params, param{key: "limit", value: strconv.Itoa(q.limit)})
	}
	return params
}

// RawQuery returns the encoded query string.
func (q *Query) RawQuery() string {
	var parts []string
	for _, p := range q.params() {
		parts = append(parts, escape(p.key)+"="+escape(p.value))
	}
	return strings.Join(parts, "&")
}

func (q *Query) Header() http.Header {
	h := make(http.Header)
	if q.count != CountNone {
		h.Set("Prefer", "count="+string(q.count))
	}
	return h
}

// Request returns the request described by the query.
func (q *Query) Request() *Request {
	return &Request{
		Method:   q.Method(),
		Path:     q.table,
		RawQuery: q.RawQuery(),
		Header:   q.Header(),
	}
}

// String encodes the query in request text form, e.g.:
//
//	HEAD nexus_modelos?select=count&status=eq.Ativo
//	Prefer: count=exact
func (q *Query) String() string {
	return q.Request().String()
}

func cleanColumns(columns string) string {
	var b strings.Builder
	quoted := false
	for _, c := range columns {
		if c == '"' {
			quoted = !quoted
		}
		if !quoted && (c == ' ' || c == '\t' || c == '\n' || c == '\r') {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

const hexDigits = "0123456789ABCDEF"

// escape percent-encodes s, leaving the operator syntax readable.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.~*(),:!", c) >= 0
}
