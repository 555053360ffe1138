package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kilianp07/techdispatch/core/model"
	"github.com/kilianp07/techdispatch/core/simulation"
)

const rule = "================================================================================"

// Render writes the console report for a run.
func Render(w io.Writer, res simulation.Result, s Summary) error {
	p := &printer{w: w}
	p.line(rule)
	p.line("TECHNICIAN DISPATCH PREVIEW (run %s)", res.RunID)
	p.line(rule)

	if len(res.Errors) > 0 {
		p.line("\nVALIDATION ERRORS FOUND:\n")
		for _, e := range res.Errors {
			p.line("  %s", e)
		}
	}

	switch res.State {
	case simulation.StateAborted:
		p.line("\nValidation failed. Simulation not started.")
		return p.err
	case simulation.StateFailed:
		if res.Err != nil {
			p.line("\nSIMULATION ERROR (%s): %s", res.Err.Category, res.Err.Message)
		}
		return p.err
	}

	p.line("\nValidation passed\n")
	for _, a := range res.Assignments {
		mark := "met"
		if !a.SLAMet {
			mark = "VIOLATED"
		}
		p.line("Hour %g: Tech %d starts Job %d (%s, %gh, response %gh/%gh %s)",
			a.StartHour, a.TechnicianID, a.JobID, strings.ToUpper(string(a.Priority)),
			a.EndHour-a.StartHour, a.Response, a.SLAWindow, mark)
	}

	switch res.State {
	case simulation.StateComplete:
		p.line("\nAll jobs assigned at hour %g.", res.FinalHour)
	case simulation.StateStalled:
		p.line("\nNo technicians available for remaining jobs:")
		for _, j := range res.Stuck {
			p.line("   - Job %d (%s) requires %v", j.JobID, j.Priority, j.RequiredSkills)
		}
	case simulation.StateTruncated:
		p.line("\nReached max simulation hours at hour %g. %d job(s) left unassigned.", res.FinalHour, len(res.Stuck))
	}

	p.section("FINAL ASSIGNMENT TIMELINE")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range s.Timeline {
		if !e.Assigned {
			p.tab(tw, "Job %d\t%s\tUNASSIGNED\n", e.JobID, strings.ToUpper(string(e.Priority)))
			continue
		}
		status := "SLA MET"
		if !e.SLAMet {
			status = "SLA VIOLATED"
		}
		p.tab(tw, "Job %d\t%s\tTech %d\tHours %g-%g\tResponse %gh/%gh\t%s\n",
			e.JobID, strings.ToUpper(string(e.Priority)), e.TechnicianID, e.StartHour, e.EndHour, e.Response, e.SLAWindow, status)
	}
	p.flush(tw)

	p.section("SLA AND PRIORITY METRICS")
	p.line("\nTotal Jobs: %d (%d assigned)", s.TotalJobs, s.AssignedJobs)
	for _, ps := range s.Priorities {
		if ps.Total == 0 {
			continue
		}
		p.line("  - %-9s %d/%d assigned, %d violation(s), SLA %gh", ps.Priority+":", ps.Assigned, ps.Total, ps.Violations, ps.SLAWindow)
		if ps.Assigned > 0 {
			p.line("      response avg %.1fh, min %gh, max %gh", ps.AvgResponse, ps.MinResponse, ps.MaxResponse)
		}
	}
	p.line("\nSLA Violations: %d job(s)", len(s.Violations))
	for _, v := range s.Violations {
		p.line("  - Job %d (%s): response %gh exceeded SLA by %gh (SLA: %gh)", v.JobID, v.Priority, v.Response, v.Overage, v.SLAWindow)
	}

	p.section("TECH AVAILABILITY SUMMARY")
	for _, t := range s.Technicians {
		jobs := "None"
		if len(t.Jobs) > 0 {
			refs := make([]string, len(t.Jobs))
			for i, j := range t.Jobs {
				refs[i] = fmt.Sprintf("%d(%s)", j.ID, initial(j.Priority))
			}
			jobs = strings.Join(refs, ", ")
		}
		p.line("Tech %d: Free at hour %g | Jobs: %s | Total hours: %gh", t.TechnicianID, t.FreeAtHour, jobs, t.BookedHours)
	}
	return p.err
}

// printer remembers the first write error so Render can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) section(title string) {
	p.line("\n%s\n%s\n%s", rule, title, rule)
}

func (p *printer) tab(tw *tabwriter.Writer, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(tw, format, args...)
}

func (p *printer) flush(tw *tabwriter.Writer) {
	if p.err != nil {
		return
	}
	p.err = tw.Flush()
}

func initial(p model.Priority) string {
	if p == "" {
		return "?"
	}
	return strings.ToUpper(string(p)[:1])
}
