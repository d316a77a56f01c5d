package commands

import (
	"github.com/spf13/cobra"

	"github.com/nexus-automation/nexusprobe/probe"
)

func newProbeCmd(a *app) *cobra.Command {
	cfg := probe.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Run the count, data and fallback queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runProbe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.Table, "table", cfg.Table, "table under test")
	cmd.Flags().StringVar(&cfg.Status, "status", cfg.Status, "value of the status filter")
	cmd.Flags().IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "rows requested by the data query")
	cmd.Flags().IntVar(&cfg.FallbackLimit, "fallback-limit", cfg.FallbackLimit, "rows requested by the fallback query")
	cmd.Flags().BoolVar(&cfg.CheckRefs, "check-refs", cfg.CheckRefs, "look up unit references when the fallback finds rows")

	return cmd
}

func (a *app) runProbe(cmd *cobra.Command, cfg probe.Config) error {
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

	runner := probe.NewRunner(conn, cfg, logger, a.env.Stdout)
	report, err := runner.Run(cmd.Context())
	if report != nil {
		if sErr := probe.WriteSummary(a.env.Stdout, report); sErr != nil {
			logger.Errorf("failed to write summary: %s", sErr)
		}
	}
	return err
}
