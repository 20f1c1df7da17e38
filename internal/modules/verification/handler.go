package verification

import (
	"net/http"

	"adbond/internal/domain"
	"adbond/internal/middleware"
	"adbond/internal/pkg/apperr"
	"adbond/internal/pkg/response"
	"adbond/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects admin to already carry JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.PUT("/entities/:id/verification", h.Decide)
	admin.PUT("/entities/admin/bulk-verification", h.DecideBulk)
	admin.POST("/entities/:id/reissue-credentials", h.ReissueCredentials)
}

// Decide меняет статус верификации компании.
// @Summary		Решение по верификации
// @Description	Одобряет, отклоняет, откладывает или возвращает заявку в pending. Первое одобрение создаёт пользователя и отправляет welcome-письмо с временным паролем, первое отклонение отправляет письмо с причиной. Результат побочных эффектов возвращается в side_effects.
// @Tags		Admin - Верификация
// @Security	BearerAuth
// @Param		id		path	string			true	"ID компании"
// @Param		request	body	DecideRequest	true	"Новый статус и заметки администратора"
// @Success		200	{object}	DecideResponse
// @Failure		400	{object}	map[string]interface{}	"Неверный статус или переход"
// @Failure		404	{object}	map[string]interface{}	"Компания не найдена"
// @Router		/entities/{id}/verification [PUT]
func (h *Handler) Decide(c *gin.Context) {
	var req DecideRequest
	if !bind(c, &req) {
		return
	}

	d, err := h.service.Decide(
		c.Request.Context(),
		c.Param("id"),
		domain.VerificationStatus(req.VerificationStatus),
		middleware.UserID(c),
		req.AdminNotes,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, DecideResponse{Entity: d.Entity, SideEffects: d.SideEffects()})
}

// DecideBulk применяет одно решение к нескольким компаниям.
// @Summary		Массовая верификация
// @Description	Обрабатывает до 100 компаний. Ошибка по одной компании не прерывает пакет, результат по каждой возвращается в account_creation_results.
// @Tags		Admin - Верификация
// @Security	BearerAuth
// @Param		request	body	BulkDecideRequest	true	"ID компаний, статус и заметки"
// @Success		200	{object}	BulkDecision
// @Failure		400	{object}	map[string]interface{}	"Ошибка валидации"
// @Router		/entities/admin/bulk-verification [PUT]
func (h *Handler) DecideBulk(c *gin.Context) {
	var req BulkDecideRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.service.DecideBulk(
		c.Request.Context(),
		req.EntityIDs,
		domain.VerificationStatus(req.VerificationStatus),
		middleware.UserID(c),
		req.AdminNotes,
	)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ReissueCredentials повторно выдаёт временный пароль.
// @Summary		Повторная выдача временного пароля
// @Description	Для одобренной компании, пользователь которой ещё не сменил временный пароль, генерирует новый пароль с новым сроком действия и отправляет welcome-письмо.
// @Tags		Admin - Верификация
// @Security	BearerAuth
// @Param		id	path	string	true	"ID компании"
// @Success		200	{object}	DecideResponse
// @Failure		400	{object}	map[string]interface{}	"Компания не одобрена"
// @Failure		404	{object}	map[string]interface{}	"Компания не найдена"
// @Failure		400	{object}	map[string]interface{}	"Пароль уже сменён"
// @Router		/entities/{id}/reissue-credentials [POST]
func (h *Handler) ReissueCredentials(c *gin.Context) {
	d, err := h.service.ReissueCredentials(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, DecideResponse{Entity: d.Entity, SideEffects: d.SideEffects()})
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
