package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	nurl "net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/postgrest"
)

const testKey = "service-role-key"

// setupPostgRESTTestDriver starts a server with handler and connects a driver to it.
func setupPostgRESTTestDriver(t *testing.T, handler http.HandlerFunc) *postgrestDriver {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != testKey || r.Header.Get("Authorization") != "Bearer "+testKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	u, err := nurl.Parse(srv.URL)
	require.NoError(t, err)
	u.User = nurl.UserPassword("service", testKey)

	driver, err := (&PostgREST{Client: srv.Client()}).Connect(u.String())
	require.NoError(t, err)
	t.Cleanup(driver.Close)

	return driver.(*postgrestDriver)
}

func TestPostgREST_Connect(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "key as password", url: "https://service:k@abc.supabase.co"},
		{name: "key as user", url: "https://k@abc.supabase.co"},
		{name: "no key", url: "https://abc.supabase.co", wantErr: true},
		{name: "no host", url: "https://service:k@", wantErr: true},
		{name: "wrong scheme", url: "postgres://service:k@abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := new(PostgREST).Connect(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "k", d.(*postgrestDriver).key)
		})
	}
}

func TestPostgREST_ConnectAPIPath(t *testing.T) {
	r := require.New(t)

	d, err := new(PostgREST).Connect("http://service:k@localhost:3000?api_path=/&schema=api")
	r.NoError(err)

	driver := d.(*postgrestDriver)
	r.Equal("/", driver.apiPath)
	r.Equal("api", driver.schema)
	r.Equal("http://localhost:3000", driver.base.String())

	d, err = new(PostgREST).Connect("https://service:k@abc.supabase.co")
	r.NoError(err)
	r.Equal("/rest/v1/", d.(*postgrestDriver).apiPath)
}

func Test_postgrestDriver_QueryRows(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/nexus_modelos", r.URL.Path)
		assert.Equal(t, "eq.Ativo", r.URL.Query().Get("status"))
		assert.Equal(t, "data.desc", r.URL.Query().Get("order"))

		w.Header().Set("Content-Range", "0-1/2")
		_, _ = w.Write([]byte(`[
			{"id": 1, "status": "Ativo", "unidade": {"id": 10, "nome": "Centro"}, "consultor": null},
			{"id": 2, "status": "Ativo", "valor": 12.5, "unidade": {"id": 11}, "consultor": {"nome": "Ana"}}
		]`))
	})

	query := postgrest.From("nexus_modelos").
		Select("*, unidade:nexus_unidades!inner(*), consultor:nexus_participantes(*)").
		Eq("status", "Ativo").
		Order("data", postgrest.Descending).
		Range(0, 11)

	rows, err := driver.Query(context.Background(), query.String())
	r.NoError(err)

	r.Equal(&core.Meta{SchemaType: core.SchemaLess, Total: 2, TotalKnown: true}, rows.Meta())

	got := drain(t, rows)
	r.Len(got, 2)
	r.Equal(map[string]any{
		"id":        int64(1),
		"status":    "Ativo",
		"unidade":   map[string]any{"id": int64(10), "nome": "Centro"},
		"consultor": nil,
	}, got[0][0])
	r.Equal(12.5, got[1][0].(map[string]any)["valor"])
}

func Test_postgrestDriver_QueryCount(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))

		w.Header().Set("Content-Range", "*/5")
		w.WriteHeader(http.StatusOK)
	})

	query := postgrest.From("nexus_modelos").
		Select("count", postgrest.WithCount(postgrest.CountExact), postgrest.WithHead()).
		Eq("status", "Ativo")

	rows, err := driver.Query(context.Background(), query.String())
	r.NoError(err)

	r.Equal(5, rows.Meta().Total)
	r.True(rows.Meta().TotalKnown)
	r.Empty(drain(t, rows))
}

func Test_postgrestDriver_QueryError(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"PGRST200","details":null,"hint":"Try changing 'nexus_unidade'","message":"Could not find a relationship"}`))
	})

	_, err := driver.Query(context.Background(), "nexus_modelos?select=*,unidade:nexus_unidade!inner(*)")
	r.Error(err)

	var pgErr *postgrest.Error
	r.ErrorAs(err, &pgErr)
	r.Equal("PGRST200", pgErr.Code)
	r.Equal(http.StatusBadRequest, pgErr.Status)
	r.Equal("Try changing 'nexus_unidade'", pgErr.Hint)
}

func Test_postgrestDriver_QueryRejectsWrites(t *testing.T) {
	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := driver.Query(context.Background(), "PATCH nexus_modelos?id=eq.1")
	assert.ErrorIs(t, err, postgrest.ErrMethodNotAllowed)
}

func Test_postgrestDriver_QueryMalformedBody(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1}, {"id": `))
	})

	rows, err := driver.Query(context.Background(), "t")
	r.NoError(err)
	defer rows.Close()

	var lastErr error
	count := 0
	for rows.HasNext() {
		_, err := rows.Next()
		if err != nil {
			lastErr = err
			break
		}
		count++
	}
	r.Equal(1, count)
	r.Error(lastErr)
}

const testOpenAPI = `{
	"swagger": "2.0",
	"paths": {
		"/": {"get": {}},
		"/nexus_modelos": {"get": {}, "post": {}, "patch": {}, "delete": {}},
		"/nexus_resumo": {"get": {}},
		"/rpc/refresh": {"post": {}}
	},
	"definitions": {
		"nexus_modelos": {
			"properties": {
				"id": {"format": "bigint", "type": "integer"},
				"status": {"format": "text", "type": "string"},
				"unidade": {"format": "bigint", "type": "integer"}
			}
		}
	}
}`

func Test_postgrestDriver_Structure(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/", r.URL.Path)
		assert.Equal(t, "application/openapi+json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(testOpenAPI))
	})

	structure, err := driver.Structure()
	r.NoError(err)

	r.Len(structure, 1)
	r.Equal("public", structure[0].Name)
	r.Equal([]*core.Structure{
		{Name: "nexus_modelos", Schema: "public", Type: core.StructureTypeTable},
		{Name: "nexus_resumo", Schema: "public", Type: core.StructureTypeView},
	}, structure[0].Children)
}

func Test_postgrestDriver_Columns(t *testing.T) {
	r := require.New(t)

	driver := setupPostgRESTTestDriver(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testOpenAPI))
	})

	cols, err := driver.Columns(&core.TableOptions{Table: "nexus_modelos"})
	r.NoError(err)
	r.Equal([]*core.Column{
		{Name: "id", Type: "bigint"},
		{Name: "status", Type: "text"},
		{Name: "unidade", Type: "bigint"},
	}, cols)

	_, err = driver.Columns(&core.TableOptions{Table: "missing"})
	r.Error(err)
}

func Test_postgrestDriver_UnauthorizedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid API key"})
	}))
	defer srv.Close()

	u, _ := nurl.Parse(srv.URL)
	u.User = nurl.UserPassword("service", "wrong")

	driver, err := new(PostgREST).Connect(u.String())
	require.NoError(t, err)

	_, err = driver.Query(context.Background(), "nexus_modelos")
	var pgErr *postgrest.Error
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, http.StatusUnauthorized, pgErr.Status)
	assert.Equal(t, "Invalid API key", pgErr.Message)
}

func TestPostgREST_CancelDuringBodyRead(t *testing.T) {
	r := require.New(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Range", "0-1/2")
		_, _ = w.Write([]byte(`[{"id": 1},`))
		w.(http.Flusher).Flush()

		// the second record never arrives
		select {
		case <-req.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	u, err := nurl.Parse(srv.URL)
	r.NoError(err)
	u.User = nurl.UserPassword("service", testKey)

	conn, err := core.NewConnection(&core.ConnectionParams{Type: "postgrest", URL: u.String()}, &PostgREST{Client: srv.Client()})
	r.NoError(err)
	defer conn.Close()

	retrieving := make(chan struct{}, 1)
	call := conn.Execute("nexus_modelos", func(state core.CallState, _ *core.Call) {
		if state == core.CallStateRetrieving {
			retrieving <- struct{}{}
		}
	})

	select {
	case <-retrieving:
	case <-time.After(5 * time.Second):
		t.Fatal("call never started retrieving")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = call.Wait(ctx)
	r.ErrorIs(err, context.DeadlineExceeded)
	r.Less(time.Since(start), 2*time.Second)
	r.Equal(core.CallStateCanceled, call.GetState())
}
