package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
	"github.com/nlufoundry/fulfiller/internal/observability/telemetry"
	"github.com/nlufoundry/fulfiller/internal/ports"
)

// WebhookHandler accepts one dialog-turn document per request, runs it
// through the dispatcher and returns the mutated document.
type WebhookHandler struct {
	dialog ports.DialogService
	log    *zap.Logger
}

func NewWebhookHandler(dialog ports.DialogService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{dialog: dialog, log: log}
}

// Fulfill handles POST / and POST /api/v1/fulfill.
func (h *WebhookHandler) Fulfill(c *fiber.Ctx) error {
	var doc map[string]any
	if err := c.BodyParser(&doc); err != nil {
		telemetry.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		return fiber.NewError(fiber.StatusBadRequest, "request body is not a JSON object")
	}

	p, err := domain.NewPayload(doc)
	if err != nil {
		telemetry.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	h.log.Info("Dialog turn received",
		zap.String("state", p.State()),
		zap.String("intent", p.Intent()),
	)

	if err := h.dialog.Fulfill(p); err != nil {
		telemetry.WebhookRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	telemetry.WebhookRequestsTotal.WithLabelValues("ok").Inc()
	return c.JSON(p.Snapshot())
}
