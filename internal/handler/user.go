package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-management/internal/auth"
	"github.com/iliyamo/task-management/internal/model"
	"github.com/iliyamo/task-management/internal/repository"
)

// UserHandler bundles the dependencies for user management endpoints.
// Registration hashes the password here, at the edge, so the repository
// layer only ever sees the hash.
type UserHandler struct {
	Users  *repository.UserRepo
	Tasks  *repository.TaskRepo
	Hasher auth.PasswordHasher
}

func NewUserHandler(users *repository.UserRepo, tasks *repository.TaskRepo, hasher auth.PasswordHasher) *UserHandler {
	return &UserHandler{Users: users, Tasks: tasks, Hasher: hasher}
}

// ----- DTOs -----

type addressDTO struct {
	AddressLine1    string `json:"address_line1" validate:"required"`
	AddressLine2    string `json:"address_line2,omitempty"`
	City            string `json:"city" validate:"required"`
	StateOrProvince string `json:"state_or_province" validate:"required"`
	PostalCode      string `json:"postal_code" validate:"required"`
	Country         string `json:"country" validate:"required"`
}

type createUserReq struct {
	Name        string     `json:"name" validate:"required"`
	Email       string     `json:"email" validate:"required,email"`
	PhoneNumber string     `json:"phone_number" validate:"required"`
	Address     addressDTO `json:"address" validate:"required"`
	Role        string     `json:"role" validate:"omitempty,oneof=admin user"`
	Password    string     `json:"password" validate:"required,min=8"`
}

type updateUserReq struct {
	Name        *string     `json:"name" validate:"omitempty,min=1"`
	Email       *string     `json:"email" validate:"omitempty,email"`
	PhoneNumber *string     `json:"phone_number" validate:"omitempty,min=1"`
	Address     *addressDTO `json:"address"`
	Role        *string     `json:"role" validate:"omitempty,oneof=admin user"`
	Password    *string     `json:"password" validate:"omitempty,min=8"`
}

// userResp is the public user shape. The password hash never appears here.
type userResp struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	PhoneNumber string        `json:"phone_number"`
	Address     model.Address `json:"address"`
	Role        string        `json:"role"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func userResponse(u model.User) userResp {
	return userResp{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toAddress(a addressDTO) model.Address {
	return model.Address{
		AddressLine1:    a.AddressLine1,
		AddressLine2:    a.AddressLine2,
		City:            a.City,
		StateOrProvince: a.StateOrProvince,
		PostalCode:      a.PostalCode,
		Country:         a.Country,
	}
}

// Create handles POST /v1/users: user registration. The role may be supplied
// in the body ("admin" or "user") and defaults to "user" when omitted.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Address:      toAddress(req.Address),
		Role:         req.Role,
		PasswordHash: hash,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, userResponse(u))
}

// List handles GET /v1/users (admin only).
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, userResponse(u))
}

// Update handles PATCH /v1/users/:id. Only the provided fields change; a
// new password is re-hashed before it is stored.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		u.Address = toAddress(*req.Address)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := h.Hasher.Hash(*req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		u.PasswordHash = hash
	}

	if err := h.Users.Update(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, userResponse(u))
}

// Delete handles DELETE /v1/users/:id (admin only).
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTasks handles GET /v1/users/:id/tasks and returns the tasks assigned
// to that user, newest first.
func (h *UserHandler) ListTasks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := c.Param("id")
	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	tasks, err := h.Tasks.ListByAssignee(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]taskResp, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": out})
}
