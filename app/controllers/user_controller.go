package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/notevault/notevault/internal/pkg/payments"
	"github.com/notevault/notevault/internal/pkg/usercontext"
)

// UserController serves the authenticated user's account read paths.
type UserController struct {
	status *payments.StatusReader
}

func NewUserController(status *payments.StatusReader) *UserController {
	return &UserController{status: status}
}

// HandleSubscriptionStatus returns the user's current premium entitlement.
// No active subscription row is not an error; it simply means free.
func (uc *UserController) HandleSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	status, err := uc.status.Read(c.Context(), userCtx.UID)
	if err != nil {
		log.Errorf("[User] subscription status read failed for %s: %v", userCtx.UID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load subscription status")
	}

	return c.Status(fiber.StatusOK).JSON(status)
}
