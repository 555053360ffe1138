package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/techdispatch/config"
)

// errFailed marks a command that already reported its failure on stdout.
var errFailed = errors.New("run did not succeed")

type rootOptions struct {
	cfgPath string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "techdispatch",
		Short:         "Technician dispatch preview service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", "config.yaml", "configuration file")
	root.AddCommand(
		newServeCmd(opts),
		newSimulateCmd(opts),
		newValidateCmd(),
		newModulesCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errFailed) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadConfig reads the configuration. The default path may be absent; an
// explicitly requested one may not.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		if _, err := os.Stat(o.cfgPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s not found", o.cfgPath)
		}
	}
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
