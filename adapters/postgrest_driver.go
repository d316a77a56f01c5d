package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"sort"
	"strings"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/core/builders"
	"github.com/nexus-automation/nexusprobe/postgrest"
)

var (
	_ core.Driver       = (*postgrestDriver)(nil)
	_ core.ColumnLister = (*postgrestDriver)(nil)
)

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

type postgrestDriver struct {
	client  *http.Client
	base    *nurl.URL
	key     string
	schema  string
	apiPath string
}

func (d *postgrestDriver) newRequest(ctx context.Context, req *postgrest.Request) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(d.base, d.apiPath).String(), nil)
	if err != nil {
		return nil, err
	}

	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("apikey", d.key)
	httpReq.Header.Set("Authorization", "Bearer "+d.key)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if d.schema != "public" && httpReq.Header.Get("Accept-Profile") == "" {
		httpReq.Header.Set("Accept-Profile", d.schema)
	}

	return httpReq, nil
}

// do sends the request and turns non 2xx responses into *postgrest.Error.
func (d *postgrestDriver) do(ctx context.Context, req *postgrest.Request) (*http.Response, error) {
	httpReq, err := d.newRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, postgrest.DecodeError(resp.StatusCode, body)
	}

	return resp, nil
}

func (d *postgrestDriver) Query(ctx context.Context, query string) (core.ResultStream, error) {
	req, err := postgrest.ParseRequest(query)
	if err != nil {
		return nil, err
	}

	resp, err := d.do(ctx, req)
	if err != nil {
		return nil, err
	}

	meta := &core.Meta{SchemaType: core.SchemaLess}
	meta.Total, meta.TotalKnown, err = postgrest.ParseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	if req.Method == http.MethodHead {
		resp.Body.Close()
		next, hasNext := builders.NextNil()
		return builders.NewResultStreamBuilder().
			WithNextFunc(next, hasNext).
			WithHeader(core.Header{"Results"}).
			WithMeta(meta).
			Build(), nil
	}

	next, hasNext := builders.NextYield(func(yield func(...any)) error {
		return decodeRecords(resp.Body, func(rec any) { yield(rec) })
	})

	return builders.NewResultStreamBuilder().
		WithNextFunc(next, hasNext).
		WithHeader(core.Header{"Results"}).
		WithCloseFunc(func() {
			_ = resp.Body.Close()
		}).
		WithMeta(meta).
		Build(), nil
}

// decodeRecords streams elements of a json array to fn. A body that holds a
// single object yields that object.
func decodeRecords(body io.Reader, fn func(any)) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid response body: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok || delim != '[' {
		if delim != '{' {
			return fmt.Errorf("unexpected response body start: %v", tok)
		}
		obj, err := decodeObjectRest(dec)
		if err != nil {
			return err
		}
		fn(obj)
		return nil
	}

	for dec.More() {
		var rec any
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("invalid record: %w", err)
		}
		fn(normalize(rec))
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("invalid response body end: %w", err)
	}
	return nil
}

// decodeObjectRest decodes the remainder of an object whose opening brace
// was already consumed.
func decodeObjectRest(dec *json.Decoder) (map[string]any, error) {
	obj := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key: %v", tok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		obj[key] = normalize(val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// normalize turns json.Number values into int64 where possible and float64
// otherwise.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

// openAPIDocument is the subset of the endpoint's OpenAPI description we use.
type openAPIDocument struct {
	Definitions map[string]struct {
		Properties map[string]struct {
			Format string `json:"format"`
			Type   string `json:"type"`
		} `json:"properties"`
	} `json:"definitions"`
	Paths map[string]map[string]json.RawMessage `json:"paths"`
}

func (d *postgrestDriver) openAPI() (*openAPIDocument, error) {
	req := &postgrest.Request{
		Method: http.MethodGet,
		Header: http.Header{"Accept": {"application/openapi+json"}},
	}

	resp, err := d.do(context.Background(), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc openAPIDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return &doc, nil
}

// Structure lists exposed relations. Relations which accept no writes are
// reported as views.
func (d *postgrestDriver) Structure() ([]*core.Structure, error) {
	doc, err := d.openAPI()
	if err != nil {
		return nil, err
	}

	var children []*core.Structure
	for path, ops := range doc.Paths {
		name := strings.TrimPrefix(path, "/")
		if name == "" || strings.HasPrefix(name, "rpc/") {
			continue
		}

		typ := core.StructureTypeView
		for _, method := range []string{"post", "patch", "delete"} {
			if _, ok := ops[method]; ok {
				typ = core.StructureTypeTable
				break
			}
		}

		children = append(children, &core.Structure{
			Name:   name,
			Schema: d.schema,
			Type:   typ,
		})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	if len(children) < 1 {
		return nil, nil
	}

	return []*core.Structure{
		{
			Name:     d.schema,
			Schema:   d.schema,
			Type:     core.StructureTypeNone,
			Children: children,
		},
	}, nil
}

func (d *postgrestDriver) Columns(opts *core.TableOptions) ([]*core.Column, error) {
	doc, err := d.openAPI()
	if err != nil {
		return nil, err
	}

	def, ok := doc.Definitions[opts.Table]
	if !ok {
		return nil, fmt.Errorf("unknown table: %s", opts.Table)
	}

	var columns []*core.Column
	for name, prop := range def.Properties {
		typ := prop.Format
		if typ == "" {
			typ = prop.Type
		}
		columns = append(columns, &core.Column{Name: name, Type: typ})
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })

	return columns, nil
}

func (d *postgrestDriver) Close() {
	d.client.CloseIdleConnections()
}
