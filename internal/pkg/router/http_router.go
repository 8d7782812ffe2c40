package router

import (
	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
	deps Deps
}

func NewHttpRouter(deps Deps) *HttpRouter {
	return &HttpRouter{deps: deps}
}

func (h *HttpRouter) InstallRouter(app *fiber.App) {
	// Browser redirect targets after checkout; the SPA reads the ?payment
	// query flag on the root page.
	app.Get("/payment/success", h.deps.Payments.HandlePaymentSuccess)
	app.Get("/payment/cancel", h.deps.Payments.HandlePaymentCancel)
}
