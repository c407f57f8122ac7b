package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authbot/internal/models"
	"authbot/internal/services"
	"authbot/internal/utils"
)

type AuthHandler struct {
	userService services.UserService
	botUsername string
	log         *zap.Logger
}

func NewAuthHandler(userService services.UserService, botUsername string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, botUsername: botUsername, log: log}
}

func (h *AuthHandler) codeBody(code *models.LinkingCode) gin.H {
	return gin.H{
		"code":          code.Code,
		"expires_at":    code.ExpiresAt,
		"telegram_link": utils.DeepLink(h.botUsername, code.Code),
	}
}

// @Summary      Регистрация
// @Description  Создаёт аккаунт и выдаёт одноразовый код привязки Telegram
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Данные регистрации"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, code, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.log.Warn("[auth][register] failed", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Пользователь " + user.Name + " успешно зарегистрирован!",
		"user":     user.Summary(),
		"telegram": h.codeBody(code),
	})
}

// @Summary      Вход в систему
// @Description  Проверяет пароль, возвращает access-токен и новый код привязки Telegram
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Вход успешен! Привет, " + res.User.Name + "!",
		"user":         res.User.Summary(),
		"access_token": res.AccessToken,
		"telegram":     h.codeBody(res.Code),
	})
}
