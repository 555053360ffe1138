package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/techdispatch/core/batch"
)

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a batch without simulating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := batch.Load(file)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			techs, jobs, ok, msgs := b.Check()
			if ok {
				fmt.Fprintf(w, "Validation passed: %d technician(s), %d job(s)\n", len(techs), len(jobs))
				return nil
			}
			fmt.Fprintln(w, "VALIDATION ERRORS FOUND:")
			for _, m := range msgs {
				fmt.Fprintln(w, "  "+m)
			}
			return errFailed
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
