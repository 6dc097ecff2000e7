package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"todo-api/internal/domain"
	"todo-api/internal/repository"
)

// TaskService aplica las reglas de las tareas de un usuario. ownerID siempre
// viene de la sesion validada, nunca del cuerpo del request.
type TaskService struct {
	logger *zap.Logger
	tasks  repository.TaskRepository
	now    func() time.Time
}

func NewTaskService(logger *zap.Logger, tasks repository.TaskRepository) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		logger: logger,
		tasks:  tasks,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
	DueDate     string
}

// TaskPatchInput usa punteros: nil significa que el campo no se envio.
// DueDate vacio borra la fecha.
type TaskPatchInput struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	DueDate     *string
	Completed   *bool
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrSessionInvalid
	}
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID string, input TaskInput) (domain.Task, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.Task{}, ErrSessionInvalid
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Task{}, validationError("title is required")
	}
	priority := domain.Priority(input.Priority)
	if !priority.Valid() {
		return domain.Task{}, validationError("priority must be one of low, medium, high")
	}
	category := domain.Category(input.Category)
	if !category.Valid() {
		return domain.Task{}, validationError("category must be one of home, personal, work")
	}
	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return domain.Task{}, err
	}

	task := domain.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: input.Description,
		Priority:    priority,
		Category:    category,
		DueDate:     dueDate,
		Completed:   false,
		CreatedAt:   s.now(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, err
	}
	s.logger.Debug("task created", zap.String("task_id", task.ID), zap.String("owner_id", ownerID))
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, ownerID, id string, input TaskPatchInput) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrSessionInvalid
	}
	patch, err := input.toPatch()
	if err != nil {
		return err
	}
	if !isTaskID(id) {
		return ErrTaskNotFound
	}
	if err := s.tasks.Update(ctx, ownerID, id, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrSessionInvalid
	}
	if !isTaskID(id) {
		return ErrTaskNotFound
	}
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (in TaskPatchInput) toPatch() (domain.TaskPatch, error) {
	var patch domain.TaskPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.TaskPatch{}, validationError("title must not be empty")
		}
		patch.Title = &title
	}
	if in.Description != nil {
		desc := *in.Description
		patch.Description = &desc
	}
	if in.Priority != nil {
		priority := domain.Priority(*in.Priority)
		if !priority.Valid() {
			return domain.TaskPatch{}, validationError("priority must be one of low, medium, high")
		}
		patch.Priority = &priority
	}
	if in.Category != nil {
		category := domain.Category(*in.Category)
		if !category.Valid() {
			return domain.TaskPatch{}, validationError("category must be one of home, personal, work")
		}
		patch.Category = &category
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
	}
	if in.Completed != nil {
		completed := *in.Completed
		patch.Completed = &completed
	}
	if patch.Empty() {
		return domain.TaskPatch{}, ErrEmptyPatch
	}
	return patch, nil
}

// parseDueDate acepta YYYY-MM-DD o RFC 3339; vacio significa sin fecha.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, validationError("dueDate must be YYYY-MM-DD or RFC 3339")
	}
	t = t.UTC()
	return &t, nil
}

func isTaskID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
