package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexus-automation/nexusprobe/core"
)

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables and views exposed by the REST endpoint",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runTables()
		},
	}
}

func (a *app) runTables() error {
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

	structure, err := conn.GetStructure()
	if err != nil {
		return err
	}

	a.printStructure(structure, 0)
	return nil
}

func (a *app) printStructure(structure []*core.Structure, depth int) {
	for _, s := range structure {
		name := s.Name
		if s.Type != core.StructureTypeNone {
			name = fmt.Sprintf("%s (%s)", s.Name, s.Type)
		}
		fmt.Fprintf(a.env.Stdout, "%*s%s\n", depth*2, "", name)
		a.printStructure(s.Children, depth+1)
	}
}
