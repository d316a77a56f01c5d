package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/postgrest"
)

// Runner executes the diagnostic sequence count, data and, when the data
// probe came back empty or failed, fallback. Steps run strictly one after
// another on a single connection.
type Runner struct {
	conn *core.Connection
	cfg  Config
	log  core.Logger
	out  io.Writer
}

func NewRunner(conn *core.Connection, cfg Config, logger core.Logger, out io.Writer) *Runner {
	return &Runner{
		conn: conn,
		cfg:  cfg,
		log:  logger,
		out:  out,
	}
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Run attempts all steps. Query errors are recorded in the report and never
// stop the sequence. The returned error is non nil only if ctx was canceled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	report := new(Report)
	r.printf("--- DEBUGGING PAGE QUERY (%s, status=%s) ---\n", r.cfg.Table, r.cfg.Status)

	r.printf("\n[1] Testing COUNT query...\n")
	report.Count = r.count(ctx)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	r.printf("\n[2] Testing DATA query...\n")
	report.Data = r.data(ctx, report)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if len(report.Data.Records) > 0 {
		return report, nil
	}

	r.printf("\n[3] Testing Simplified Data query (No joins)...\n")
	fallback := r.fallback(ctx)
	report.Fallback = &fallback
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if r.cfg.CheckRefs && len(fallback.Records) > 0 {
		r.printf("\n[4] Checking unit references...\n")
		refs := r.references(ctx)
		report.References = &refs
		if err := ctx.Err(); err != nil {
			return report, err
		}
	}

	return report, nil
}

func (r *Runner) count(ctx context.Context) CountResult {
	result, err := r.execute(ctx, CountQuery(r.cfg))
	if err != nil {
		r.log.Errorf("Count Error: %s", describeError(err))
		r.printf("Count Result: unknown\n")
		return CountResult{Err: err}
	}

	meta := result.Meta()
	if !meta.TotalKnown {
		r.log.Warn("count query succeeded but the server reported no total")
		r.printf("Count Result: unknown\n")
		return CountResult{}
	}

	r.printf("Count Result: %d\n", meta.Total)
	return CountResult{Total: meta.Total, Known: true}
}

func (r *Runner) data(ctx context.Context, report *Report) DataResult {
	records, err := r.fetch(ctx, DataQuery(r.cfg))
	if err != nil {
		r.log.Errorf("Data Query FAILED: %s", describeError(err))
		r.printf("Data Query FAILED.\n")
		return DataResult{Err: err}
	}

	r.printf("Data Query Success. Returned %d rows.\n", len(records))
	if len(records) > 0 {
		r.printf("Sample Row 0: %s\n", indentJSON(records[0]))
		return DataResult{Records: records}
	}

	if report.Count.Known && report.Count.Total > 0 {
		warning := fmt.Sprintf("Returned 0 rows despite Count being %d", report.Count.Total)
		report.Warnings = append(report.Warnings, warning)
		r.log.Warn(warning)
	}
	return DataResult{Records: records}
}

func (r *Runner) fallback(ctx context.Context) DataResult {
	records, err := r.fetch(ctx, FallbackQuery(r.cfg))
	if err != nil {
		r.log.Errorf("Simple Check FAILED: %s", describeError(err))
		r.printf("Simple Check: 0 rows found without joins.\n")
		return DataResult{Err: err}
	}

	r.printf("Simple Check: %d rows found without joins.\n", len(records))
	if len(records) > 0 {
		sample := records[0]
		r.printf("Sample Simple: %s\n", indentJSON(sample))
		r.printf("Check FKs -> Unidade: %s, Consultor: %s\n",
			field(sample, r.cfg.UnitRef),
			field(sample, r.cfg.ConsultantRef),
		)
	}
	return DataResult{Records: records}
}

func (r *Runner) references(ctx context.Context) ReferenceResult {
	records, err := r.fetch(ctx, SampleRefsQuery(r.cfg))
	if err != nil {
		r.log.Errorf("Reference sample FAILED: %s", describeError(err))
		return ReferenceResult{Err: err}
	}

	var ids []string
	seen := make(map[string]bool)
	for _, rec := range records {
		v, ok := rec[r.cfg.UnitRef]
		if !ok || v == nil {
			continue
		}
		id := fmt.Sprint(v)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		r.printf("No unit IDs to check.\n")
		return ReferenceResult{}
	}

	units, err := r.fetch(ctx, UnitLookupQuery(r.cfg, ids))
	if err != nil {
		r.log.Errorf("Unit lookup FAILED: %s", describeError(err))
		return ReferenceResult{Checked: ids, Err: err}
	}

	found := make(map[string]bool)
	for _, u := range units {
		found[fmt.Sprint(u["id"])] = true
	}

	res := ReferenceResult{Checked: ids}
	for _, id := range ids {
		if found[id] {
			res.Found = append(res.Found, id)
		} else {
			res.Missing = append(res.Missing, id)
		}
	}

	r.printf("Found %d matches out of %d checked.\n", len(res.Found), len(ids))
	if len(res.Missing) > 0 {
		warning := fmt.Sprintf("Missing %s ids: %v", r.cfg.UnitTable, res.Missing)
		r.log.Warn(warning)
	}
	r.printf("Missing: %v\n", res.Missing)
	return res
}

// execute runs the query and waits until all of its rows are cached.
func (r *Runner) execute(ctx context.Context, q *postgrest.Query) (*core.Result, error) {
	call := r.conn.Execute(q.String(), func(state core.CallState, c *core.Call) {
		r.log.Debugf("call %s: %s", c.GetID(), state)
	})
	r.log.Debugf("call %s started at %s on %s (%s): %s",
		call.GetID(), call.GetTimestamp().Format(time.RFC3339Nano),
		r.conn.GetName(), r.conn.GetType(), call.GetQuery())

	if err := call.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	r.log.Debugf("call %s finished in %s", call.GetID(), call.GetTimeTaken())

	return call.GetResult()
}

func (r *Runner) fetch(ctx context.Context, q *postgrest.Query) ([]map[string]any, error) {
	result, err := r.execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return Records(result)
}

// Records converts all rows of a result to attribute maps. Schemaless rows
// hold a single record, schemaful rows are zipped with the header.
func Records(result *core.Result) ([]map[string]any, error) {
	rows, err := result.Rows(0, -1)
	if err != nil {
		return nil, err
	}

	header := result.Header()
	schemaless := result.Meta().SchemaType == core.SchemaLess

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if schemaless {
			if len(row) != 1 {
				return nil, fmt.Errorf("unexpected row width: %d", len(row))
			}
			rec, ok := row[0].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected record type: %T", row[0])
			}
			records = append(records, rec)
			continue
		}

		rec := make(map[string]any, len(row))
		for i, val := range row {
			if i < len(header) {
				rec[header[i]] = val
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// describeError renders a server error object as json so every field is
// visible, anything else by its message.
func describeError(err error) string {
	var pgErr *postgrest.Error
	if errors.As(err, &pgErr) {
		b, mErr := json.Marshal(pgErr)
		if mErr == nil {
			return string(b)
		}
	}
	return err.Error()
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func field(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok {
		return "undefined"
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}
