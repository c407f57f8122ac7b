package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"authbot/internal/middleware"
	"authbot/internal/models"
)

type UserGetter interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

type UserHandler struct {
	users UserGetter
}

func NewUserHandler(users UserGetter) *UserHandler {
	return &UserHandler{users: users}
}

// @Summary      Текущий пользователь
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u) // PasswordHash помечен json:"-"
}
