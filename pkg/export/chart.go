package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/techdispatch/core/report"
)

// WriteLoadChart renders an HTML bar chart of booked hours per technician.
func WriteLoadChart(w io.Writer, loads []report.TechnicianLoad) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Technician load"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Technician"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Booked hours"}),
	)

	xAxis := make([]string, 0, len(loads))
	booked := make([]opts.BarData, 0, len(loads))
	jobs := make([]opts.BarData, 0, len(loads))
	for _, l := range loads {
		xAxis = append(xAxis, "Tech "+strconv.Itoa(l.TechnicianID))
		booked = append(booked, opts.BarData{Value: l.BookedHours})
		jobs = append(jobs, opts.BarData{Value: len(l.Jobs)})
	}
	bar.SetXAxis(xAxis).
		AddSeries("Booked hours", booked).
		AddSeries("Jobs", jobs)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
