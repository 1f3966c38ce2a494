package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
	"github.com/donaldgifford/deal-notifier/internal/engine"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printResult(w io.Writer, res *engine.Result) error {
	tw := newTabWriter(w)
	writeResult(tw, res)
	return tw.finish()
}

func writeResult(tw *tabWriter, res *engine.Result) {
	outcome := string(res.Outcome)
	if outcome == "" {
		outcome = "-"
	}
	tw.writef("Run ID:\t%s\n", res.RunID)
	tw.writef("Outcome:\t%s\n", outcome)
	tw.writef("Fetched:\t%d\n", res.Fetched)
	tw.writef("New:\t%d\n", len(res.NewIDs))
	if len(res.NewIDs) > 0 {
		tw.writef("New IDs:\t%s\n", engine.JoinIDs(res.NewIDs))
	}
	tw.writef("Previously sent:\t%d\n", res.PreviouslySent)
	tw.writef("Notified:\t%v\n", res.Notified)
	tw.writef("Duration:\t%s\n", res.Duration.Round(time.Millisecond))
}

func printState(w io.Writer, st *handlers.StateBody) error {
	tw := newTabWriter(w)
	tw.writef("Reported:\t%d\n", st.Count)
	tw.writef("Last batch:\t%d\n", st.LastBatchCount)
	if len(st.IDs) > 0 {
		tw.writef("IDs:\t%s\n", engine.JoinIDs(st.IDs))
	}
	return tw.finish()
}

func printLastRun(w io.Writer, last *handlers.LastRunBody) error {
	tw := newTabWriter(w)
	tw.writef("Trigger:\t%s\n", last.Trigger)
	tw.writef("Finished:\t%s\n", last.FinishedAt.Local().Format(timeLayout))
	if last.Error != "" {
		tw.writef("Error:\t%s (%s)\n", truncate(last.Error, 80), last.ErrorKind)
	}
	if last.Result != nil {
		writeResult(tw, last.Result)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
