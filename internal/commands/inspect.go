package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/postgrest"
	"github.com/nexus-automation/nexusprobe/probe"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table>",
		Short: "Show the columns and one record of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args[0])
		},
	}
}

func (a *app) runInspect(cmd *cobra.Command, tableName string) error {
	logger, err := a.setupLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	conn, err := a.connect(logger, defaultType, "")
	if err != nil {
		return err
	}
	defer conn.Close()

	// column lookup and sample query run side by side
	var (
		columns    []*core.Column
		columnsErr error
		records    []map[string]any
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		columns, columnsErr = conn.GetColumns(&core.TableOptions{Table: tableName, Schema: "public"})
		return nil
	})
	g.Go(func() error {
		query := postgrest.From(tableName).Select("*").Limit(1)
		call := conn.Execute(query.String(), nil)
		if err := call.Wait(ctx); err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		result, err := call.GetResult()
		if err != nil {
			return err
		}
		records, err = probe.Records(result)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	switch {
	case columnsErr == nil:
		t := table.NewWriter()
		t.SetOutputMirror(a.env.Stdout)
		t.SetTitle(tableName)
		t.AppendHeader(table.Row{"Column", "Type"})
		for _, col := range columns {
			t.AppendRow(table.Row{col.Name, col.Type})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
	case errors.Is(columnsErr, core.ErrColumnsNotSupported):
	default:
		logger.Warnf("could not describe %s: %s", tableName, columnsErr)
	}

	if len(records) == 0 {
		fmt.Fprintf(a.env.Stdout, "%s has no rows.\n", tableName)
		return nil
	}

	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(a.env.Stdout, "Keys: %v\n", keys)

	b, err := json.MarshalIndent(records[0], "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.env.Stdout, "Record: %s\n", b)
	return nil
}
