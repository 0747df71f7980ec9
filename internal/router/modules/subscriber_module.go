package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/tiendacafe/subscribers-api/internal/interface/http"
)

// SubscriberModule wires the subscriber CRUD routes under the given
// RouterGroup (usually /api):
//
//	GET    /api/subscribers
//	GET    /api/subscribers/search
//	GET    /api/subscribers/:id
//	POST   /api/subscribers
//	PUT    /api/subscribers/:id
//	DELETE /api/subscribers/:id
type SubscriberModule struct {
	Handler *handlers.SubscriberHandler
}

func NewSubscriberModule(h *handlers.SubscriberHandler) *SubscriberModule {
	return &SubscriberModule{Handler: h}
}

func (m *SubscriberModule) Register(rg *gin.RouterGroup) {
	rg.GET("/subscribers", m.Handler.List)
	// /search must be declared before /:id so Gin does not treat it as an id.
	rg.GET("/subscribers/search", m.Handler.Search)
	rg.GET("/subscribers/:id", m.Handler.Get)
	rg.POST("/subscribers", m.Handler.Create)
	rg.PUT("/subscribers/:id", m.Handler.Update)
	rg.DELETE("/subscribers/:id", m.Handler.Delete)
}
