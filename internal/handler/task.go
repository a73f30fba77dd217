package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-management/internal/middleware"
	"github.com/iliyamo/task-management/internal/model"
	"github.com/iliyamo/task-management/internal/queue"
	"github.com/iliyamo/task-management/internal/repository"
	queue_publisher "github.com/iliyamo/task-management/internal/service"
)

// TaskHandler bundles the dependencies for task endpoints. All routes sit
// behind the access guard; the creator of a task is always taken from the
// authenticated principal, never from the body.
type TaskHandler struct {
	Tasks *repository.TaskRepo
	Users *repository.UserRepo
}

func NewTaskHandler(tasks *repository.TaskRepo, users *repository.UserRepo) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Users: users}
}

// ----- DTOs -----

type createTaskReq struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Status       string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate      string `json:"due_date" validate:"required"`
	AssignedToID string `json:"assigned_to_id" validate:"omitempty,uuid4"`
}

type updateTaskReq struct {
	Title        *string `json:"title" validate:"omitempty,min=1"`
	Description  *string `json:"description" validate:"omitempty,min=1"`
	Status       *string `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority     *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate      *string `json:"due_date"`
	AssignedToID *string `json:"assigned_to_id" validate:"omitempty,uuid4"`
}

type assignTaskReq struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
}

type taskResp struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssignedToID *string    `json:"assigned_to_id,omitempty"`
	CreatedByID  string     `json:"created_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func taskResponse(t model.Task) taskResp {
	return taskResp{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		AssignedToID: t.AssignedToID,
		CreatedByID:  t.CreatedByID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// parseDueDate accepts RFC 3339 timestamps or bare dates.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}

// Create handles POST /v1/tasks. When the task is created already assigned,
// a task.assigned event is published; publish failures never fail the
// request.
func (h *TaskHandler) Create(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid due_date"})
	}

	t := model.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     &due,
		CreatedByID: p.ID,
	}
	if req.AssignedToID != "" {
		t.AssignedToID = &req.AssignedToID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if t.AssignedToID != nil {
		if _, err := h.Users.GetByID(ctx, *t.AssignedToID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	if err := h.Tasks.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}

	if t.AssignedToID != nil {
		_ = queue_publisher.PublishTaskAssigned(ctx, assignedEvent(t, p.ID))
	}

	return c.JSON(http.StatusCreated, taskResponse(t))
}

// List handles GET /v1/tasks with filtering and pagination. The response is
// {"tasks": [...], "total": n} where total counts all matches, not just the
// returned page.
func (h *TaskHandler) List(c echo.Context) error {
	q := repository.TaskQuery{
		Status:       c.QueryParam("status"),
		Priority:     c.QueryParam("priority"),
		AssignedToID: c.QueryParam("assigned_to_id"),
		Page:         1,
		PageSize:     10,
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.PageSize = n
		}
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, total, err := h.Tasks.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": out, "total": total})
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, taskResponse(t))
}

// Update handles PATCH /v1/tasks/:id. Only the provided fields change.
// Setting a new assignee here publishes the same task.assigned event as the
// assign endpoint.
func (h *TaskHandler) Update(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid due_date"})
		}
		t.DueDate = &due
	}
	newAssignee := false
	if req.AssignedToID != nil {
		if _, err := h.Users.GetByID(ctx, *req.AssignedToID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		newAssignee = t.AssignedToID == nil || *t.AssignedToID != *req.AssignedToID
		t.AssignedToID = req.AssignedToID
	}

	if err := h.Tasks.Update(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if newAssignee {
		_ = queue_publisher.PublishTaskAssigned(ctx, assignedEvent(t, p.ID))
	}
	return c.JSON(http.StatusOK, taskResponse(t))
}

// Delete handles DELETE /v1/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tasks.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Assign handles POST /v1/tasks/:id/assign. Both the task and the target
// user must exist; on success a task.assigned event is published.
func (h *TaskHandler) Assign(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req assignTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if err := h.Tasks.Assign(ctx, t.ID, req.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign failed"})
	}
	t.AssignedToID = &req.UserID

	_ = queue_publisher.PublishTaskAssigned(ctx, assignedEvent(t, p.ID))

	return c.JSON(http.StatusOK, taskResponse(t))
}

func assignedEvent(t model.Task, byUserID string) queue.TaskAssignedEvent {
	ev := queue.TaskAssignedEvent{
		TaskID:     t.ID,
		Title:      t.Title,
		Priority:   t.Priority,
		AssignedBy: byUserID,
		AssignedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if t.AssignedToID != nil {
		ev.AssignedToID = *t.AssignedToID
	}
	if t.DueDate != nil {
		ev.DueDate = t.DueDate.UTC().Format(time.RFC3339)
	}
	return ev
}
