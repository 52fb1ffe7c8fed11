package controller

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/service"
)

type TrackingController interface {
	SubmitContact(c *fiber.Ctx) error
	TrackPageView(c *fiber.Ctx) error
	TrackFormEvent(c *fiber.Ctx) error
	TrackEvent(c *fiber.Ctx) error
	ListPlatforms(c *fiber.Ctx) error
}

// trackingController exposes the contact form and tracking endpoints.
type trackingController struct {
	contactService  service.ContactService
	trackingService service.TrackingService
	cookies         CookieConfig
}

// NewTrackingController builds a TrackingController.
func NewTrackingController(contact service.ContactService, tracking service.TrackingService, cookies CookieConfig) TrackingController {
	return &trackingController{
		contactService:  contact,
		trackingService: tracking,
		cookies:         cookies,
	}
}

// SubmitContact forwards the contact form and schedules the lead event.
func (h *trackingController) SubmitContact(c *fiber.Ctx) error {
	var req model.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	contact, err := h.contactService.BuildContact(req)
	if err != nil {
		return toHTTPError(err)
	}

	result, err := h.contactService.Submit(c.UserContext(), contact, requestContext(c), newCookieStore(c, h.cookies))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to submit contact form")
	}

	return c.JSON(result)
}

// TrackPageView accepts an empty body; the Referer then stands in for the page.
func (h *trackingController) TrackPageView(c *fiber.Ctx) error {
	var req model.PageViewRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return err
	}

	result, err := h.trackingService.TrackPageView(c.UserContext(), req, requestContext(c), newCookieStore(c, h.cookies))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(result)
}

func (h *trackingController) TrackFormEvent(c *fiber.Ctx) error {
	var req model.FormEventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	result, err := h.trackingService.TrackFormEvent(c.UserContext(), req, requestContext(c), newCookieStore(c, h.cookies))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(result)
}

func (h *trackingController) TrackEvent(c *fiber.Ctx) error {
	var req model.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	result, err := h.trackingService.TrackEvent(c.UserContext(), req, requestContext(c), newCookieStore(c, h.cookies))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(result)
}

// ListPlatforms returns the names of the platforms events are sent to.
func (h *trackingController) ListPlatforms(c *fiber.Ctx) error {
	platforms := h.trackingService.EnabledPlatforms()
	if platforms == nil {
		platforms = []string{}
	}
	return c.JSON(fiber.Map{"platforms": platforms})
}

func requestContext(c *fiber.Ctx) model.RequestContext {
	return model.RequestContext{
		ClientIP:  c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referer:   c.Get(fiber.HeaderReferer),
	}
}

func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}
	return nil
}

func toHTTPError(err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return fiber.NewError(fiber.StatusBadRequest, vErr.Message)
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to track event")
}
