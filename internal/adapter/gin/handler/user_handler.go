package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dynamo-user-service/internal/usecase/user"
	pkgerrors "dynamo-user-service/pkg/errors"
	"dynamo-user-service/pkg/logger"
)

// UserIDParam is the path parameter carrying the user identifier.
const UserIDParam = "userID"

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required"`
	EmailAddress string `json:"email_address" binding:"required"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Omitted fields keep their stored value.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	EmailAddress *string `json:"email_address"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	EmailAddress string `json:"email_address"`
}

// ErrorResponse represents a client error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body returned for internal failures
type MessageResponse struct {
	Message string `json:"message"`
}

// GetUser handles GET /:userID
func (h *UserHandler) GetUser(c *gin.Context) {
	id := c.Param(UserIDParam)

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "get user failed", id, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// CreateUser handles POST /
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid create user request", "", err)
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:         req.Name,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.handleError(c, "create user failed", "", err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(resp))
}

// UpdateUser handles PUT /:userID
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param(UserIDParam)

	var req UpdateUserRequest
	// An empty body is an empty patch.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, "invalid update user request", id, err)
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:           id,
		Name:         req.Name,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.handleError(c, "update user failed", id, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp))
}

// DeleteUser handles DELETE /:userID
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param(UserIDParam)

	if err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id}); err != nil {
		h.handleError(c, "delete user failed", id, err)
		return
	}

	c.Status(http.StatusOK)
}

// ListUsers handles GET /
func (h *UserHandler) ListUsers(c *gin.Context) {
	resp, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.handleError(c, "list users failed", "", err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toResponse(&resp.Users[i])
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) badRequest(c *gin.Context, msg, id string, err error) {
	logger.WithContext(c.Request.Context(), h.log).Warn(msg, zap.String("id", id), zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// handleError maps usecase errors to responses. Only validation errors expose detail.
func (h *UserHandler) handleError(c *gin.Context, msg, id string, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var validationErr *pkgerrors.ValidationError
	switch {
	case pkgerrors.IsNotFound(err):
		log.Info(msg, zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{})
	case errors.As(err, &validationErr):
		h.badRequest(c, msg, id, validationErr)
	default:
		log.Error(msg, zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Message: pkgerrors.InternalServerErrorMessage,
		})
	}
}

func toResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		EmailAddress: u.EmailAddress,
	}
}
