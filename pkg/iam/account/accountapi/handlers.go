package accountapi

import (
	"github.com/Abraxas-365/authcore/pkg/errx"
	"github.com/Abraxas-365/authcore/pkg/iam/account/accountsrv"
	"github.com/Abraxas-365/authcore/pkg/iam/auth"
	"github.com/Abraxas-365/authcore/pkg/kernel"
	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// CreateResponse is returned after an admin creates an account.
type CreateResponse struct {
	ID kernel.AccountID `json:"id"`
}

// AccountHandlers serves account administration and email confirmation.
type AccountHandlers struct {
	service *accountsrv.AccountService
	mw      *auth.SessionMiddleware
	// landing is where a confirmed email address is sent
	landing string
}

func NewAccountHandlers(service *accountsrv.AccountService, mw *auth.SessionMiddleware, landing string) *AccountHandlers {
	return &AccountHandlers{
		service: service,
		mw:      mw,
		landing: landing,
	}
}

func (h *AccountHandlers) RegisterRoutes(router fiber.Router) {
	router.Post("/api/_admin/user", h.mw.RequireAdmin(), h.Create)
	router.Get("/api/auth/v1/verify_email/confirm/:code", h.ConfirmEmail)
}

// Create adds an account. Unverified accounts are sent a confirmation mail.
func (h *AccountHandlers) Create(c *fiber.Ctx) error {
	var req accountsrv.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Respond(c, errx.Wrap(err, "invalid request body", errx.TypeValidation))
	}

	acc, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		e := errx.From(err)
		if !errx.IsClientError(e.HTTPStatus) {
			logx.WithFields(logx.Fields{
				"request_id": c.Get(fiber.HeaderXRequestID),
			}).WithError(err).Error("failed to create account")
		}
		return errx.Respond(c, e)
	}

	return c.Status(fiber.StatusCreated).JSON(CreateResponse{ID: acc.ID})
}

// ConfirmEmail marks the account holding the code as verified.
func (h *AccountHandlers) ConfirmEmail(c *fiber.Ctx) error {
	if err := h.service.ConfirmEmail(c.UserContext(), c.Params("code")); err != nil {
		return errx.Respond(c, err)
	}
	return c.Redirect(h.landing, fiber.StatusSeeOther)
}
