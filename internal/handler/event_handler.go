package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charity-events/internal/model"
	"charity-events/internal/service"
	apperrors "charity-events/pkg/app_errors"
	"charity-events/pkg/logger"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api")
	{
		router.GET("events", h.List)
		router.GET("events/search", h.Search)
		router.GET("events/:id", h.GetByID)
		router.GET("categories", h.ListCategories)
	}
}

type EventURI struct {
	ID int `uri:"id" binding:"required,min=1"`
}

// SearchEventsQuery is the raw query of /api/events/search; every field is optional.
type SearchEventsQuery struct {
	Date     string `form:"date"`
	Location string `form:"location"`
	Category string `form:"category"`
}

// Params validates the query into repository search parameters.
func (q SearchEventsQuery) Params() (model.SearchParams, error) {
	var params model.SearchParams
	if d := strings.TrimSpace(q.Date); d != "" {
		day, err := model.ParseDay(d)
		if err != nil {
			return params, apperrors.ErrInvalidDate
		}
		params.Date = &day
	}
	params.Location = strings.TrimSpace(q.Location)
	if c := strings.TrimSpace(q.Category); c != "" {
		id, err := strconv.Atoi(c)
		if err != nil || id <= 0 {
			return params, apperrors.ErrInvalidCategory
		}
		params.CategoryID = &id
	}
	return params, nil
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	respondList(c, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	var uri EventURI
	if err := BindUri(c, &uri); err != nil {
		return
	}
	event, err := h.service.GetByID(c, uri.ID)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	respondOK(c, event)
}

func (h *EventHandler) Search(c *gin.Context) {
	var query SearchEventsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}
	params, err := query.Params()
	if err != nil {
		h.handleError(c, err, "Search")
		return
	}
	events, err := h.service.Search(c, params)
	if err != nil {
		h.handleError(c, err, "Search")
		return
	}
	respondList(c, events)
}

func (h *EventHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c)
	if err != nil {
		h.handleError(c, err, "ListCategories")
		return
	}
	respondList(c, categories)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		respondError(c, http.StatusNotFound, "Event not found")
	case errors.Is(err, apperrors.ErrInvalidDate):
		log.Warn("Invalid date")
		respondError(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	case errors.Is(err, apperrors.ErrInvalidCategory):
		log.Warn("Invalid category")
		respondError(c, http.StatusBadRequest, "Invalid category")
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		respondError(c, http.StatusBadRequest, "Invalid input")
	default:
		log.Error("Unexpected error")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
