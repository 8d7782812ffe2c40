package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/notevault/notevault/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Deps
}

func NewApiRouter(deps Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Storage: h.deps.LimiterStorage,
	}))

	api.Post("/auth/register", h.deps.Auth.HandleRegister)
	api.Post("/auth/login", h.deps.Auth.HandleLogin)

	// The webhook authenticates with its HMAC signature, not a bearer token.
	api.Post("/payments/webhook", h.deps.Payments.HandleWebhook)

	protected := api.Group("", middleware.BearerAuth(h.deps.Verifier))
	protected.Get("/notes", h.deps.Notes.HandleListNotes)
	protected.Post("/notes", h.deps.Notes.HandleCreateNote)
	protected.Put("/notes/:id", h.deps.Notes.HandleUpdateNote)
	protected.Delete("/notes/:id", h.deps.Notes.HandleDeleteNote)

	protected.Post("/upload", h.deps.Uploads.HandleUpload)

	protected.Post("/payments/create-checkout", h.deps.Payments.HandleCreateCheckout)
	protected.Get("/user/subscription-status", h.deps.Users.HandleSubscriptionStatus)
}
