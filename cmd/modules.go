package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/techdispatch/app/plugins"
)

func newModulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the module types accepted in the configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, k := range plugins.Available() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", k.Section, strings.Join(k.Types, ", "))
			}
		},
	}
}
