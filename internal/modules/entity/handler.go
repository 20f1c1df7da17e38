package entity

import (
	"net/http"
	"strconv"

	"adbond/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(api *gin.RouterGroup) {
	api.POST("/entities/register", h.Register)
}

// RegisterAdminRoutes expects admin to already carry JWTAuth and AdminOnly.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/entities/admin/pending-verification", h.ListPending)
	admin.GET("/entities/:id", h.Get)
	admin.PUT("/entities/:id", h.Update)
	admin.DELETE("/entities/:id", h.Delete)
}

// Register регистрирует новую компанию (рекламодатель, аффилиат или сеть).
// @Summary		Зарегистрировать компанию
// @Description	Создаёт заявку со статусом pending и уведомляет администратора. Метаданные зависят от entity_type, все отсутствующие обязательные поля возвращаются в details.
// @Tags		Компании
// @Param		request	body	RegisterRequest	true	"Данные компании"
// @Success		201	{object}	domain.Entity	"Заявка создана"
// @Failure		400	{object}	map[string]interface{}	"Ошибка валидации или email уже зарегистрирован"
// @Router		/entities/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, e)
}

// Get возвращает компанию по ID.
// @Summary		Получить компанию
// @Tags		Admin - Компании
// @Security	BearerAuth
// @Param		id	path	string	true	"ID компании"
// @Success		200	{object}	domain.Entity
// @Failure		404	{object}	map[string]interface{}	"Компания не найдена"
// @Router		/entities/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// Update обновляет профиль компании.
// @Summary		Обновить профиль компании
// @Description	Меняет только поля профиля. Тип, статус верификации и рейтинг здесь не редактируются.
// @Tags		Admin - Компании
// @Security	BearerAuth
// @Param		id		path	string			true	"ID компании"
// @Param		request	body	UpdateRequest	true	"Поля профиля"
// @Success		200	{object}	domain.Entity
// @Failure		400	{object}	map[string]interface{}	"Ошибка валидации"
// @Failure		404	{object}	map[string]interface{}	"Компания не найдена"
// @Router		/entities/{id} [PUT]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

// Delete удаляет компанию вместе со связанным пользователем.
// @Summary		Удалить компанию
// @Tags		Admin - Компании
// @Security	BearerAuth
// @Param		id	path	string	true	"ID компании"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}	"Есть зависимые записи"
// @Failure		404	{object}	map[string]interface{}	"Компания не найдена"
// @Router		/entities/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Entity deleted"})
}

// ListPending возвращает заявки, ожидающие верификации.
// @Summary		Список заявок на верификацию
// @Tags		Admin - Компании
// @Security	BearerAuth
// @Param		page	query	int	false	"Номер страницы (по умолчанию 1)"	default(1)
// @Param		limit	query	int	false	"Количество записей (по умолчанию 20, максимум 100)"	default(20)
// @Success		200	{object}	PendingList
// @Router		/entities/admin/pending-verification [GET]
func (h *Handler) ListPending(c *gin.Context) {
	page := parseIntDefault(c.Query("page"), 1)
	limit := parseIntDefault(c.Query("limit"), 20)

	list, err := h.service.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func parseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
