package http

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/controller"
	"lead-tracking-service/internal/routes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server wraps the Fiber application setup.
type Server struct {
	app *fiber.App
}

// NewServer configures routes and middleware.
func NewServer(appCfg *config.Config, trackingController controller.TrackingController, metrics http.Handler) *Server {
	fiberCfg := fiber.Config{
		DisableStartupMessage: true,
		Prefork:               appCfg.FiberPrefork,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ProxyHeader:           appCfg.ProxyHeader,
		EnableIPValidation:    true,
	}
	if len(appCfg.TrustedProxies) > 0 {
		fiberCfg.EnableTrustedProxyCheck = true
		fiberCfg.TrustedProxies = appCfg.TrustedProxies
	}
	app := fiber.New(fiberCfg)
	app.Use(recover.New())

	routes.Register(app, trackingController, metrics)

	return &Server{app: app}
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen runs the server on provided addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
