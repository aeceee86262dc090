package api

import (
	"net/http"

	"tablenotify/internal/common/errors"
	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/validation"
	"tablenotify/internal/notify"
	"tablenotify/internal/templates"
	"tablenotify/internal/waitlist"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the four send actions. Responses are always
// HTTP 200 with a {success, message} body; failures are data, not HTTP
// errors, so UI code never needs its own error handling for this path.
type NotificationHandler struct {
	service *notify.Service
	logger  logger.Logger
}

func NewNotificationHandler(service *notify.Service, log logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: log}
}

func (h *NotificationHandler) SendBookingConfirmation(c *gin.Context) {
	var req notify.BookingConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, notify.Response{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.SendBookingConfirmation(c.Request.Context(), ActorKey(c), req))
}

func (h *NotificationHandler) SendNoAvailability(c *gin.Context) {
	var req notify.NoAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, notify.Response{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.SendNoAvailability(c.Request.Context(), ActorKey(c), req))
}

func (h *NotificationHandler) SendWaitingList(c *gin.Context) {
	var req notify.WaitingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, notify.Response{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.SendWaitingList(c.Request.Context(), ActorKey(c), req))
}

func (h *NotificationHandler) SendUpgradePlan(c *gin.Context) {
	var req notify.UpgradePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, notify.Response{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.SendUpgradePlan(c.Request.Context(), ActorKey(c), req))
}

// TemplateHandler exposes template read and override-save for the admin
// dashboard's email templates page.
type TemplateHandler struct {
	store  *templates.Store
	logger logger.Logger
}

func NewTemplateHandler(store *templates.Store, log logger.Logger) *TemplateHandler {
	return &TemplateHandler{store: store, logger: log}
}

var saveTemplateSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"subject": {Type: "string", MinLength: intPtr(1), MaxLength: intPtr(500)},
		"body":    {Type: "string", MinLength: intPtr(1), MaxLength: intPtr(50000)},
	},
	Required: []string{"subject", "body"},
}

func intPtr(v int) *int { return &v }

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID := c.Param("templateId")
	if !templates.IsValidKind(templateID) {
		stdErr := errors.NewTemplateInvalidError(templateID)
		c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{"error": stdErr.Message, "details": stdErr.Details})
		return
	}

	tpl, _ := h.store.GetTemplate(c.Request.Context(), templateID, ActorKey(c))
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) SaveTemplate(c *gin.Context) {
	templateID := c.Param("templateId")

	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result := validation.ValidateInput(map[string]interface{}{
		"subject": req.Subject,
		"body":    req.Body,
	}, saveTemplateSchema)
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": result.Errors})
		return
	}

	if err := h.store.SaveTemplate(c.Request.Context(), templateID, ActorKey(c), req.Subject, req.Body); err != nil {
		stdErr := errors.Normalize(err)
		h.logger.Error("template save failed", map[string]interface{}{
			"templateId": templateID,
			"code":       string(stdErr.Code),
		})
		c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{"error": stdErr.Message, "details": stdErr.Details})
		return
	}

	tpl, _ := h.store.GetTemplate(c.Request.Context(), templateID, ActorKey(c))
	c.JSON(http.StatusOK, tpl)
}

// WaitlistHandler exposes the seating-advice helper.
type WaitlistHandler struct {
	advisor *waitlist.Advisor
	logger  logger.Logger
}

func NewWaitlistHandler(advisor *waitlist.Advisor, log logger.Logger) *WaitlistHandler {
	return &WaitlistHandler{advisor: advisor, logger: log}
}

func (h *WaitlistHandler) Optimize(c *gin.Context) {
	var req waitlist.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	advice, err := h.advisor.Optimize(c.Request.Context(), req)
	if err != nil {
		stdErr := errors.Normalize(err)
		h.logger.Error("waitlist optimization failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": stdErr.Details,
		})
		c.JSON(errors.HTTPStatus(stdErr.Code), gin.H{"error": stdErr.Message, "details": stdErr.Details})
		return
	}

	c.JSON(http.StatusOK, advice)
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
