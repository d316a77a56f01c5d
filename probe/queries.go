package probe

import (
	"fmt"

	"github.com/nexus-automation/nexusprobe/postgrest"
)

// CountQuery counts matching models which have a unit. No rows are returned.
func CountQuery(cfg Config) *postgrest.Query {
	return postgrest.From(cfg.Table).
		Select(fmt.Sprintf("id, %s:%s!inner(id)", cfg.UnitAlias, cfg.UnitTable),
			postgrest.WithCount(postgrest.CountExact),
			postgrest.WithHead(),
		).
		Eq("status", cfg.Status)
}

// DataQuery fetches the first page of models with unit and participant embedded.
// The unit join is inner, so models without a resolvable unit are dropped.
func DataQuery(cfg Config) *postgrest.Query {
	return postgrest.From(cfg.Table).
		Select(fmt.Sprintf("*, %s:%s!inner(*), %s:%s(*)",
			cfg.UnitAlias, cfg.UnitTable,
			cfg.ParticipantAlias, cfg.ParticipantTable,
		)).
		Eq("status", cfg.Status).
		Order(cfg.OrderColumn, postgrest.Descending).
		Range(0, cfg.PageSize-1)
}

// FallbackQuery fetches models without any joins.
func FallbackQuery(cfg Config) *postgrest.Query {
	return postgrest.From(cfg.Table).
		Select("*").
		Eq("status", cfg.Status).
		Limit(cfg.FallbackLimit)
}

// SampleRefsQuery fetches the unit references of a sample of models.
func SampleRefsQuery(cfg Config) *postgrest.Query {
	return postgrest.From(cfg.Table).
		Select("id, "+cfg.UnitRef).
		Eq("status", cfg.Status).
		Limit(cfg.RefSampleSize)
}

// UnitLookupQuery fetches the units with the given ids.
func UnitLookupQuery(cfg Config, ids []string) *postgrest.Query {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return postgrest.From(cfg.UnitTable).
		Select("id").
		In("id", values...)
}
