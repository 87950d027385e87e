package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skyfleet/balloon-quake-aggregation/internal/aggregator"
	"github.com/skyfleet/balloon-quake-aggregation/internal/observability"
	"github.com/skyfleet/balloon-quake-aggregation/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *aggregator.Service, inquiries *store.InquiryStore, metrics *observability.Metrics) {
	v1 := app.Group("/api/v1")

	v1.Get("/balloons", func(c *fiber.Ctx) error {
		overview, err := service.Overview()
		if err != nil {
			return mapSnapshotError(err)
		}
		return c.JSON(overview)
	})

	v1.Get("/balloons/:id", func(c *fiber.Ctx) error {
		tr, err := service.Balloon(c.Params("id"))
		if err != nil {
			if errors.Is(err, aggregator.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no balloon with that identifier")
			}
			return mapSnapshotError(err)
		}
		return c.JSON(tr)
	})

	v1.Get("/quakes", func(c *fiber.Ctx) error {
		quakes, err := service.Quakes()
		if err != nil {
			return mapSnapshotError(err)
		}
		return c.JSON(quakes)
	})

	v1.Post("/inquiries", func(c *fiber.Ctx) error {
		var req inquiryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "body must be JSON with message and contact strings")
		}
		if err := validate.Struct(req); err != nil {
			// Validator messages name internal struct fields; callers only
			// need to know which inputs are mandatory.
			return fiber.NewError(fiber.StatusBadRequest, "message and contact are required")
		}

		inq, err := inquiries.Save(req.Message, req.Contact)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store inquiry")
		}
		if metrics != nil {
			metrics.InquiriesReceived.Inc()
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":          inq.ID,
			"received_at": inq.ReceivedAt,
		})
	})
}

// inquiryRequest is the submit-inquiry payload. Both fields are required
// non-empty text.
type inquiryRequest struct {
	Message string `json:"message" validate:"required"`
	Contact string `json:"contact" validate:"required"`
}

// mapSnapshotError converts aggregator read errors into HTTP errors. Before
// the first refresh cycle completes the read surface reports unavailable.
func mapSnapshotError(err error) error {
	if errors.Is(err, aggregator.ErrNotReady) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "first refresh cycle has not completed yet")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read snapshot")
}
