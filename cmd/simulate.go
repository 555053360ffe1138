package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/techdispatch/app"
	"github.com/kilianp07/techdispatch/core/batch"
	"github.com/kilianp07/techdispatch/core/planner"
	"github.com/kilianp07/techdispatch/infra/logger"
	"github.com/kilianp07/techdispatch/pkg/export"
)

type simulateOptions struct {
	file      string
	asJSON    bool
	maxHours  float64
	csvPath   string
	chartPath string
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	o := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a batch of technicians and jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-hours") {
				cfg.Simulation.MaxHours = o.maxHours
				if err := cfg.Simulation.Validate(); err != nil {
					return err
				}
			}
			b, err := batch.Load(o.file)
			if err != nil {
				return err
			}
			svc, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.New("main").Errorf("service close: %v", err)
				}
			}()

			out := svc.Planner.Plan(context.Background(), b)
			if err := o.write(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Success {
				return errFailed
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "batch file (.yaml, .yml or .json)")
	f.BoolVar(&o.asJSON, "json", false, "print the full result as JSON")
	f.Float64Var(&o.maxHours, "max-hours", 0, "override simulation.max_hours")
	f.StringVar(&o.csvPath, "csv", "", "write the assignment timeline as CSV")
	f.StringVar(&o.chartPath, "chart", "", "write an HTML chart of technician load")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (o *simulateOptions) write(w io.Writer, out planner.Outcome) error {
	if o.asJSON {
		if err := export.WriteJSON(w, out); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, out.Output); err != nil {
		return err
	}
	if o.csvPath != "" {
		if err := writeFile(o.csvPath, func(f io.Writer) error { return export.WriteCSV(f, out.Summary.Timeline) }); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	if o.chartPath != "" {
		if err := writeFile(o.chartPath, func(f io.Writer) error { return export.WriteLoadChart(f, out.Summary.Technicians) }); err != nil {
			return fmt.Errorf("chart: %w", err)
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
