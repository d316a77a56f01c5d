package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexus-automation/nexusprobe/core"
	"github.com/nexus-automation/nexusprobe/output"
)

type queryOptions struct {
	typ    string
	url    string
	format string
	from   int
	to     int
	output string
}

func newQueryCmd(a *app) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <request>",
		Short: "Run a single read request and print its rows",
		Long: `Run a single read request and print its rows.

For the rest adapters the request is written like an http request:

  nexusprobe query 'HEAD nexus_modelos?select=id&status=eq.Ativo
  Prefer: count=exact'

With --type postgres and --url the request is plain SQL, executed in a
read only transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.typ, "type", defaultType, "adapter type")
	cmd.Flags().StringVar(&opts.url, "url", "", "connection url, defaults to the project of the credentials")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format ("+strings.Join(output.FormatNames(), ", ")+")")
	cmd.Flags().IntVar(&opts.from, "from", 0, "first row")
	cmd.Flags().IntVar(&opts.to, "to", -1, "row after the last one, negative values count from the end")
	cmd.Flags().StringVar(&opts.output, "output", "", "write rows to this file instead of stdout")

	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, query string, opts *queryOptions) error {
	formatter, err := output.Formatter(opts.format)
	if err != nil {
		return err
	}

	logger, err := a.setupLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	conn, err := a.connect(logger, opts.typ, opts.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	call := conn.Execute(query, func(state core.CallState, c *core.Call) {
		logger.Debugf("call %s: %s", c.GetID(), state)
	})
	if err := call.Wait(cmd.Context()); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	result, err := call.GetResult()
	if err != nil {
		return err
	}

	meta := result.Meta()
	if meta.TotalKnown {
		logger.Infof("%d rows returned, %d matching in total (%s)", result.Len(), meta.Total, call.GetTimeTaken())
	} else {
		logger.Infof("%d rows returned (%s)", result.Len(), call.GetTimeTaken())
	}

	var w output.Writer = output.NewStream(a.env.Stdout, formatter)
	if opts.output != "" {
		w = output.NewFile(opts.output, formatter, logger)
	}
	return w.Write(result, opts.from, opts.to)
}
