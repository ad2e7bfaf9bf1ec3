package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/existflow/ironmeet/internal/api"
	"github.com/existflow/ironmeet/internal/logger"
	"github.com/existflow/ironmeet/internal/model"
	"github.com/labstack/echo/v4"
)

// handleBilling reports the caller's plan and whether it is paid
func (s *Server) handleBilling(c echo.Context) error {
	sub, err := s.db.GetSubscription(c.Request().Context(), userID(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, s.catalog.Summarize(sub))
}

// handleBillingWebhook records a subscription change pushed by the billing
// provider. Requests must carry the shared secret.
func (s *Server) handleBillingWebhook(c echo.Context) error {
	secret := c.Request().Header.Get("X-Webhook-Secret")
	if s.opts.WebhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.opts.WebhookSecret)) != 1 {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid webhook secret"})
	}

	var ev api.WebhookEvent
	if err := c.Bind(&ev); err != nil {
		return badRequest(c, "invalid request")
	}
	if ev.UserID == "" || ev.Status == "" {
		return badRequest(c, "user_id and status required")
	}

	sub := model.Subscription{Status: ev.Status, PlanID: ev.PriceID}
	if err := s.db.UpdateSubscription(c.Request().Context(), ev.UserID, sub); err != nil {
		return s.fail(c, err)
	}

	s.log.Info("Subscription updated",
		logger.F("user", ev.UserID),
		logger.F("status", ev.Status),
		logger.F("plan", s.catalog.PlanKey(ev.PriceID)))
	return c.JSON(http.StatusOK, s.catalog.Summarize(sub))
}
