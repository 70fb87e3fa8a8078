package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/task-sync/internal/engine"
	"github.com/BuzzLyutic/task-sync/internal/model"
)

func newListCmd(app *App) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			if err := e.Query.Load(cmd.Context(), model.TaskFilter{Status: model.Status(status)}); err != nil {
				return writeErr(cmd, e, err)
			}
			return writeTasks(cmd, app, e.Query.CurrentTasks())
		},
	}
	cmd.Flags().StringVar(&status, "status", string(model.StatusAll), "Status filter (all|pending|completed)")
	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search tasks by title or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			q := strings.Join(args, " ")
			if err := e.Query.Load(cmd.Context(), model.TaskFilter{Query: q}); err != nil {
				return writeErr(cmd, e, err)
			}
			return writeTasks(cmd, app, e.Query.CurrentTasks())
		},
	}
}

// formFlags are shared by add and edit.
type formFlags struct {
	description string
	due         string
	priority    string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "Task description")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date as YYYY-MM-DD (empty clears it on edit)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (Low|Medium|High)")
}

// apply copies the flags the user actually passed onto form.
func (f *formFlags) apply(cmd *cobra.Command, form *engine.Form) {
	if cmd.Flags().Changed("description") {
		form.Description = f.description
	}
	if cmd.Flags().Changed("due") {
		form.DueDate = f.due
	}
	if cmd.Flags().Changed("priority") {
		form.Priority = model.Priority(f.priority)
	}
}

func newAddCmd(app *App) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			form := e.Edit.Form()
			form.Title = strings.Join(args, " ")
			flags.apply(cmd, &form)

			task, err := e.Edit.Submit(cmd.Context(), form)
			if err != nil {
				return writeErr(cmd, e, err)
			}
			return writeTask(cmd, app, task)
		},
	}
	flags.register(cmd)
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var (
		flags formFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; only the flags given are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			task, err := lookup(cmd, e, args[0])
			if err != nil {
				return writeErr(cmd, e, err)
			}

			e.Edit.OpenFor(task)
			form := e.Edit.Form()
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			flags.apply(cmd, &form)

			updated, err := e.Edit.Submit(cmd.Context(), form)
			if err != nil {
				return writeErr(cmd, e, err)
			}
			return writeTask(cmd, app, updated)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	flags.register(cmd)
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			// Текущее значение isCompleted берется из свежей коллекции.
			if _, err := lookup(cmd, e, args[0]); err != nil {
				return writeErr(cmd, e, err)
			}
			task, err := e.Mutations.ToggleComplete(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, e, err)
			}
			return writeTask(cmd, app, task)
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := app.open(cmd.Context())
			defer e.Close()

			if err := e.Mutations.Remove(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, e, err)
			}
			if app.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), app.Pretty, nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// lookup loads the full collection and returns the task with id.
func lookup(cmd *cobra.Command, e *engine.Engine, id string) (model.Task, error) {
	if err := e.Query.Load(cmd.Context(), model.TaskFilter{Status: model.StatusAll}); err != nil {
		return model.Task{}, err
	}
	task, ok := e.State.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("task %s: %w", id, engine.ErrTaskNotFound)
	}
	return task, nil
}
