package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo-api/internal/service"
)

// TodoHandler expone el CRUD de tareas del usuario de la sesion.
type TodoHandler struct {
	logger *zap.Logger
	tasks  *service.TaskService
}

func NewTodoHandler(logger *zap.Logger, tasks *service.TaskService) *TodoHandler {
	return &TodoHandler{
		logger: logger,
		tasks:  tasks,
	}
}

// List maneja GET /api/todos.
func (h *TodoHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context(), OwnerID(c))
	if err != nil {
		respondError(c, h.logger, "list todos", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Create maneja POST /api/todos.
func (h *TodoHandler) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Priority    string `json:"priority" binding:"required,oneof=low medium high"`
		Category    string `json:"category" binding:"required,oneof=home personal work"`
		DueDate     string `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "create todo", err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), OwnerID(c), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, h.logger, "create todo", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": task.ID})
}

// Update maneja PUT /api/todos/:id con cualquier subconjunto de campos.
func (h *TodoHandler) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Priority    *string `json:"priority"`
		Category    *string `json:"category"`
		DueDate     *string `json:"dueDate"`
		Completed   *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, h.logger, "update todo", err)
		return
	}

	err := h.tasks.Update(c.Request.Context(), OwnerID(c), c.Param("id"), service.TaskPatchInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	})
	if err != nil {
		respondError(c, h.logger, "update todo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "todo updated successfully"})
}

// Delete maneja DELETE /api/todos/:id.
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), OwnerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete todo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "todo deleted successfully"})
}
