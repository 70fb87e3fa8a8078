package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-sync/internal/client"
	"github.com/BuzzLyutic/task-sync/internal/model"
)

// MutationGateway performs one remote write per call and splices the server's
// answer into the collection. Nothing is applied before the server confirms.
type MutationGateway struct {
	state  *State
	api    client.TaskAPI
	logger *zap.Logger
}

func NewMutationGateway(state *State, api client.TaskAPI, logger *zap.Logger) *MutationGateway {
	return &MutationGateway{
		state:  state,
		api:    api,
		logger: logger,
	}
}

// Create appends the created task to the collection. idempKey may be empty.
func (g *MutationGateway) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	g.state.setError("")

	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return model.Task{}, g.fail("create", "", err)
	}

	task, err := g.api.Create(ctx, in, idempKey)
	if err != nil {
		return model.Task{}, g.fail("create", "", err)
	}

	g.state.appendTask(task)
	g.logger.Info("task created", zap.String("task_id", task.ID))
	return task, nil
}

// Update replaces the entry with the server's representation, keeping its
// position.
func (g *MutationGateway) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	g.state.setError("")

	if err := validatePatch(patch); err != nil {
		return model.Task{}, g.fail("update", id, err)
	}

	task, err := g.api.Update(ctx, id, patch)
	if err != nil {
		return model.Task{}, g.fail("update", id, err)
	}

	g.state.replaceTask(id, task)
	return task, nil
}

// ToggleComplete flips the completion flag of the entry as it is in the
// collection right now.
func (g *MutationGateway) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	g.state.setError("")

	cur, ok := g.state.Task(id)
	if !ok {
		return model.Task{}, g.fail("toggle", id, ErrTaskNotFound)
	}

	task, err := g.api.SetCompleted(ctx, id, !cur.IsCompleted)
	if err != nil {
		return model.Task{}, g.fail("toggle", id, err)
	}

	g.state.replaceTask(id, task)
	return task, nil
}

// Remove drops the entry once the remote delete succeeded.
func (g *MutationGateway) Remove(ctx context.Context, id string) error {
	g.state.setError("")

	if err := g.api.Delete(ctx, id); err != nil {
		return g.fail("remove", id, err)
	}

	g.state.removeTask(id)
	g.logger.Info("task removed", zap.String("task_id", id))
	return nil
}

func (g *MutationGateway) fail(op, id string, err error) error {
	g.state.setError(messageFor(err, MsgMutationFailed))
	g.logger.Warn("mutation failed",
		zap.String("op", op),
		zap.String("task_id", id),
		zap.Error(err),
	)
	return err
}

func validateInput(in model.TaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "Title is required.")
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return invalid("priority", "Priority must be Low, Medium or High.")
	}
	return nil
}

func validatePatch(p model.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title", "Title is required.")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", "Priority must be Low, Medium or High.")
	}
	return nil
}
