package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/techdispatch/core/report"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var timelineHeader = []string{
	"job_id", "priority", "assigned", "technician_id",
	"start_hour", "end_hour", "response_hours", "sla_window_hours", "sla_met",
}

// WriteCSV writes the assignment timeline to w in CSV format. Unassigned
// jobs keep empty technician and hour columns.
func WriteCSV(w io.Writer, timeline []report.TimelineEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(timelineHeader); err != nil {
		return err
	}
	for _, e := range timeline {
		rec := []string{
			strconv.Itoa(e.JobID),
			string(e.Priority),
			strconv.FormatBool(e.Assigned),
			"", "", "", "",
			formatFloat(e.SLAWindow),
			"",
		}
		if e.Assigned {
			rec[3] = strconv.Itoa(e.TechnicianID)
			rec[4] = formatFloat(e.StartHour)
			rec[5] = formatFloat(e.EndHour)
			rec[6] = formatFloat(e.Response)
			rec[8] = strconv.FormatBool(e.SLAMet)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
