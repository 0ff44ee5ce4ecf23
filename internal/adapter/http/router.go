package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Orders  interfaces.OrderService
	Menu    interfaces.MenuService
	Users   interfaces.UserService
	Sweeper interfaces.SweeperService
}

// NewRouter собирает все HTTP-маршруты сервиса.
func NewRouter(services Services, logger logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		NewOrderHandler(services.Orders, logger).Register(api)
		NewMenuHandler(services.Menu, logger).Register(api)
		NewUserHandler(services.Users, logger).Register(api)
		NewSweeperHandler(services.Sweeper, logger).Register(api)
	})

	return r
}
