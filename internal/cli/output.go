package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/task-sync/internal/engine"
	"github.com/BuzzLyutic/task-sync/internal/model"
)

// reportedError marks an error whose message is already on stderr.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// writeErr prints the engine's error slot, falling back to err itself.
func writeErr(cmd *cobra.Command, e *engine.Engine, err error) error {
	msg := ""
	if e != nil {
		msg = e.State.Err()
	}
	if msg == "" && errors.Is(err, engine.ErrTaskNotFound) {
		msg = engine.MsgTaskNotFound
	}
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return &reportedError{err: err}
}

func writeTasks(cmd *cobra.Command, app *App, tasks []model.Task) error {
	if app.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), app.Pretty, tasks)
	}
	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks found")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, checkbox(t.IsCompleted), t.Priority, model.FormatDueDate(t.DueDate), t.Title)
	}
	return tw.Flush()
}

func writeTask(cmd *cobra.Command, app *App, t model.Task) error {
	if app.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), app.Pretty, t)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s  %s\n", checkbox(t.IsCompleted), t.Title, t.ID)
	if t.Description != "" {
		fmt.Fprintf(out, "    %s\n", t.Description)
	}
	fmt.Fprintf(out, "    Priority: %s  Due: %s  Created: %s\n", t.Priority, model.FormatDueDate(t.DueDate), model.FormatCreatedAt(t.CreatedAt))
	return nil
}

// writeJSON uses the same {"data": ...} envelope as the API.
func writeJSON(w io.Writer, pretty bool, v any) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(map[string]any{"data": v})
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
