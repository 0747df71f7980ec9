package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tiendacafe/subscribers-api/internal/application"
	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
	"github.com/tiendacafe/subscribers-api/pkg/response"
	"github.com/tiendacafe/subscribers-api/pkg/validation"
)

// SubscriberService is the application surface the handler needs.
type SubscriberService interface {
	List(ctx context.Context) ([]entity.Subscriber, error)
	Get(ctx context.Context, id string) (*entity.Subscriber, error)
	Create(ctx context.Context, name, email string) (*entity.Subscriber, error)
	Update(ctx context.Context, id, name, email string) (*entity.Subscriber, error)
	Delete(ctx context.Context, id string) (*entity.Subscriber, error)
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// SubscriberHandler translates HTTP verbs into service calls. It holds no
// business logic beyond presence validation; it is also the only place
// service failures become status codes.
type SubscriberHandler struct {
	Svc    SubscriberService
	Logger *logrus.Logger
}

func NewSubscriberHandler(svc SubscriberService, logger *logrus.Logger) *SubscriberHandler {
	return &SubscriberHandler{Svc: svc, Logger: logger}
}

type subscriberRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// List handles GET /subscribers. Always 200, even when empty.
func (h *SubscriberHandler) List(c *gin.Context) {
	subs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if subs == nil {
		subs = []entity.Subscriber{}
	}
	response.JSON(c, http.StatusOK, subs)
}

// Get handles GET /subscribers/:id.
func (h *SubscriberHandler) Get(c *gin.Context) {
	sub, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub)
}

// Create handles POST /subscribers.
func (h *SubscriberHandler) Create(c *gin.Context) {
	var req subscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "name and email are required", validation.ToDetails(err))
		return
	}

	sub, err := h.Svc.Create(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Mutation(c, http.StatusCreated, "subscriber created successfully", sub)
}

// Update handles PUT /subscribers/:id.
func (h *SubscriberHandler) Update(c *gin.Context) {
	var req subscriberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "name and email are required", validation.ToDetails(err))
		return
	}

	sub, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "subscriber updated successfully", sub)
}

// Delete handles DELETE /subscribers/:id.
func (h *SubscriberHandler) Delete(c *gin.Context) {
	sub, err := h.Svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Mutation(c, http.StatusOK, "subscriber deleted successfully", sub)
}

// Search handles GET /subscribers/search?q=&size=.
func (h *SubscriberHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	out, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, out)
}

// fail maps service errors to transport responses. Anything unexpected is
// logged for operators and reported with a short generic message.
func (h *SubscriberHandler) fail(c *gin.Context, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, "name and email are required", verr.Fields)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error(c, http.StatusBadRequest, "this email is already subscribed", nil)
	case errors.Is(err, application.ErrSubscriberNotFound):
		response.Error(c, http.StatusNotFound, "subscriber not found", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("path", c.FullPath()).Error("subscriber request failed")
		}
		response.Error(c, http.StatusInternalServerError, "something went wrong, please try again later", nil)
	}
}
