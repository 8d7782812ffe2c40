package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/notevault/notevault/app/controllers"
	"github.com/notevault/notevault/internal/pkg/auth"
)

// Router installs a group of routes on the fiber app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries the constructed controllers and services the routers wire up.
type Deps struct {
	Verifier auth.Verifier

	Auth     *controllers.AuthController
	Notes    *controllers.NoteController
	Uploads  *controllers.UploadController
	Payments *controllers.PaymentController
	Users    *controllers.UserController

	LimiterStorage fiber.Storage
}

// InstallRouter wires all HTTP and API routes.
func InstallRouter(app *fiber.App, deps Deps) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
