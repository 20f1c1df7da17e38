package auth

import (
	"net/http"

	"adbond/internal/middleware"
	"adbond/internal/pkg/apperr"
	"adbond/internal/pkg/response"
	"adbond/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/change-password", h.ChangePassword)
		authGroup.GET("/me", h.GetMe)
	}
}

// Login авторизует пользователя по email и паролю.
// @Summary		Войти в систему
// @Description	Проверяет учётные данные и возвращает JWT токен. Флаг password_reset_required означает, что пользователь вошёл с временным паролем.
// @Tags		Аутентификация
// @Param		request	body	LoginRequest	true	"Email и пароль"
// @Success		200	{object}	map[string]interface{}	"JWT токен и данные пользователя"
// @Failure		401	{object}	map[string]interface{}	"Неверный email или пароль"
// @Failure		403	{object}	map[string]interface{}	"Временный пароль истёк"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		Token:                 result.AccessToken,
		User:                  toUserPublic(result.User),
		PasswordResetRequired: result.User.PasswordResetRequired,
	})
}

// ChangePassword меняет пароль текущего пользователя.
// @Summary		Сменить пароль
// @Description	Заменяет текущий (в том числе временный) пароль. Новый пароль не короче 8 символов.
// @Tags		Аутентификация
// @Security	BearerAuth
// @Param		request	body	ChangePasswordRequest	true	"Текущий и новый пароль"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Ошибка валидации"
// @Failure		401	{object}	map[string]interface{}	"Неверный текущий пароль"
// @Failure		403	{object}	map[string]interface{}	"Временный пароль истёк"
// @Router		/auth/change-password [POST]
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bind(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), middleware.UserID(c), req); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed"})
}

// GetMe возвращает профиль текущего пользователя.
// @Summary		Текущий пользователь
// @Tags		Аутентификация
// @Security	BearerAuth
// @Success		200	{object}	UserPublic
// @Failure		401	{object}	map[string]interface{}
// @Router		/auth/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.GetCurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUserPublic(user))
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if details := validator.Validate(req); len(details) > 0 {
		response.FromError(c, apperr.Validation("Validation failed", apperr.WithDetails(details...)))
		return false
	}
	return true
}
