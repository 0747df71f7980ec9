package router

import (
	"github.com/tiendacafe/subscribers-api/internal/application"
	"github.com/tiendacafe/subscribers-api/internal/container"
	handlers "github.com/tiendacafe/subscribers-api/internal/interface/http"
	"github.com/tiendacafe/subscribers-api/internal/router/modules"
	mailtpl "github.com/tiendacafe/subscribers-api/pkg/mailer/templates"
)

func buildSubscriberModule() *modules.SubscriberModule {
	cfg := container.GetConfig()

	// A typed nil publisher must not end up inside the interface field,
	// or the nil guard in the service stops working.
	var pub application.EmailEnqueuer
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	service := application.NewService(
		container.GetSubscriberRepo(),
		container.GetRedis(),
		cfg.ListCacheTTL,
		container.GetLogger(),
		pub,
		container.GetES(),
		cfg.ESSubscribersIndex,
		cfg.MailSendEnabled,
		mailtpl.Data{
			CompanyName:    cfg.CompanyName,
			CompanyAddress: cfg.CompanyAddress,
			SupportURL:     cfg.SupportURL,
		},
	)

	handler := handlers.NewSubscriberHandler(service, container.GetLogger())
	return modules.NewSubscriberModule(handler)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(buildSubscriberModule())
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
