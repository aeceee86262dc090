package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tablenotify/internal/audit"
	"tablenotify/internal/common/errors"
	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/metrics"
	"tablenotify/internal/common/observability"
	"tablenotify/internal/dispatch"
	"tablenotify/internal/render"
	"tablenotify/internal/sender"
	"tablenotify/internal/templates"
	"tablenotify/internal/tenant"

	"github.com/google/uuid"
)

const (
	displayDateFormat = "Monday, 2 January 2006"
	missingDate       = "N/A"
)

// Service orchestrates one notification send: validate the request, fetch
// template and tenant settings, render, resolve the sender identity and
// dispatch. It never returns an error; every outcome is a Response.
type Service struct {
	templates    *templates.Store
	settings     tenant.SettingsReader
	sender       *sender.Resolver
	dispatcher   dispatch.Dispatcher
	recorder     audit.Recorder
	obs          *observability.Observability
	fallbackName string
	logger       logger.Logger
}

func NewService(
	store *templates.Store,
	settings tenant.SettingsReader,
	resolver *sender.Resolver,
	dispatcher dispatch.Dispatcher,
	recorder audit.Recorder,
	obs *observability.Observability,
	fallbackName string,
	log logger.Logger,
) *Service {
	if recorder == nil {
		recorder = audit.NoOpRecorder{}
	}
	return &Service{
		templates:    store,
		settings:     settings,
		sender:       resolver,
		dispatcher:   dispatcher,
		recorder:     recorder,
		obs:          obs,
		fallbackName: fallbackName,
		logger:       log,
	}
}

// SendBookingConfirmation emails a guest that their booking was accepted.
func (s *Service) SendBookingConfirmation(ctx context.Context, actorKey string, req BookingConfirmationRequest) Response {
	kind := templates.KindBookingAccepted
	if err := s.validateBookingEvent(req.Recipient, req.OwnerKey, req.BookingDetails); err != nil {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, err)
	}

	data := bookingData(req.BookingDetails)
	data["notes"] = req.Notes
	return s.send(ctx, kind, req.Recipient, req.OwnerKey, actorKey, data)
}

// SendNoAvailability emails a guest that the requested slot is unavailable.
func (s *Service) SendNoAvailability(ctx context.Context, actorKey string, req NoAvailabilityRequest) Response {
	kind := templates.KindNoAvailability
	if err := s.validateBookingEvent(req.Recipient, req.OwnerKey, req.BookingDetails); err != nil {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, err)
	}

	return s.send(ctx, kind, req.Recipient, req.OwnerKey, actorKey, bookingData(req.BookingDetails))
}

// SendWaitingList emails a guest that they were placed on the waiting list.
func (s *Service) SendWaitingList(ctx context.Context, actorKey string, req WaitingListRequest) Response {
	kind := templates.KindWaitingList
	if err := s.validateBookingEvent(req.Recipient, req.OwnerKey, req.BookingDetails); err != nil {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, err)
	}

	return s.send(ctx, kind, req.Recipient, req.OwnerKey, actorKey, bookingData(req.BookingDetails))
}

// SendUpgradePlan emails a restaurant owner a plan-upgrade nudge. An empty
// OwnerKey falls back to the authenticated actor.
func (s *Service) SendUpgradePlan(ctx context.Context, actorKey string, req UpgradePlanRequest) Response {
	kind := templates.KindUpgradePlan
	doc := map[string]interface{}{
		"recipient": req.Recipient,
		"ownerKey":  req.OwnerKey,
	}
	if err := validateDocument(upgradePlanSchema, doc); err != nil {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, errors.NewValidationError(err.Error()))
	}
	if !isValidEmail(req.Recipient) {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, errors.NewValidationError("recipient is not a valid email address"))
	}
	if req.OwnerKey == "" && actorKey == "" {
		return s.failure(ctx, kind, req.Recipient, req.OwnerKey, errors.NewValidationError("owner key is required"))
	}

	return s.send(ctx, kind, req.Recipient, req.OwnerKey, actorKey, map[string]interface{}{})
}

func (s *Service) validateBookingEvent(recipient, ownerKey string, details BookingDetails) error {
	if err := validateDocument(bookingEventSchema, bookingEventDocument(recipient, ownerKey, details)); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if !isValidEmail(recipient) {
		return errors.NewValidationError("recipient is not a valid email address")
	}
	return nil
}

func (s *Service) send(ctx context.Context, kind, recipient, ownerKey, actorKey string, data map[string]interface{}) Response {
	settingsKey := ownerKey
	if settingsKey == "" {
		settingsKey = actorKey
	}

	// Template and settings have no ordering dependency; fetch both at once.
	var (
		tpl      templates.Template
		known    bool
		settings *tenant.Settings
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tpl, known = s.templates.GetTemplate(ctx, kind, settingsKey)
	}()
	if settingsKey != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settings, _ = s.settings.GetSettingsByID(ctx, settingsKey)
		}()
	}
	wg.Wait()

	if !known {
		return s.failure(ctx, kind, recipient, ownerKey, errors.NewTemplateInvalidError(kind))
	}

	restaurantName := s.fallbackName
	if settings != nil && settings.RestaurantName != "" {
		restaurantName = settings.RestaurantName
	}
	data["restaurantName"] = restaurantName

	subject := render.Render(tpl.Subject, data)
	body := render.Render(tpl.Body, data)
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return s.failure(ctx, kind, recipient, ownerKey,
			errors.NewRenderFailedError(fmt.Sprintf("template %q rendered to an empty subject or body", kind)))
	}

	identity := s.sender.Resolve(ctx, "", "", ownerKey, actorKey)
	dispatchStart := time.Now()
	result := s.dispatcher.Send(ctx, dispatch.OutboundEmail{
		To:          recipient,
		Subject:     subject,
		HTMLContent: body,
		SenderName:  identity.Name,
		SenderEmail: identity.Email,
		OwnerKey:    ownerKey,
	})

	s.recorder.Record(ctx, audit.DeliveryRecord{
		ID:        uuid.New().String(),
		OwnerKey:  ownerKey,
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Provider:  s.dispatcher.Provider(),
		Success:   result.Success,
		MessageID: result.MessageID,
		Error:     result.Error,
		SentAt:    time.Now().UTC(),
	})

	if s.obs != nil {
		status := "sent"
		if !result.Success {
			status = "failed"
		}
		s.obs.RecordSendDuration(ctx, time.Since(dispatchStart), status)
	}

	if !result.Success {
		category := "provider"
		if strings.HasPrefix(result.Error, "configuration error") {
			category = "configuration"
		}
		metrics.EmailsFailed.WithLabelValues(kind, category).Inc()
		if s.obs != nil {
			s.obs.RecordSend(ctx, kind, "failed")
		}
		s.logger.Error("notification send failed", map[string]interface{}{
			"kind":      kind,
			"recipient": recipient,
			"ownerKey":  ownerKey,
			"error":     result.Error,
		})
		return Response{Success: false, Message: fmt.Sprintf("failed to send email: %s", result.Error)}
	}

	metrics.EmailsSent.WithLabelValues(kind, s.dispatcher.Provider()).Inc()
	if s.obs != nil {
		s.obs.RecordSend(ctx, kind, "sent")
	}
	s.logger.Info("notification sent", map[string]interface{}{
		"kind":      kind,
		"recipient": recipient,
		"ownerKey":  ownerKey,
		"messageId": result.MessageID,
	})
	return Response{Success: true, Message: "email sent successfully"}
}

func (s *Service) failure(ctx context.Context, kind, recipient, ownerKey string, err error) Response {
	stdErr := errors.Normalize(err)
	metrics.EmailsFailed.WithLabelValues(kind, errors.CategoryOf(stdErr.Code)).Inc()
	if s.obs != nil {
		s.obs.RecordSend(ctx, kind, "failed")
	}
	s.logger.Warn("notification rejected", map[string]interface{}{
		"kind":      kind,
		"recipient": recipient,
		"ownerKey":  ownerKey,
		"code":      string(stdErr.Code),
		"details":   stdErr.Details,
	})

	message := stdErr.Message
	if stdErr.Details != "" {
		message = fmt.Sprintf("%s: %s", stdErr.Message, stdErr.Details)
	}
	return Response{Success: false, Message: message}
}

// bookingData builds the placeholder map for guest-facing kinds.
// restaurantName is filled in later from tenant settings.
func bookingData(details BookingDetails) map[string]interface{} {
	return map[string]interface{}{
		"guestName":   details.GuestName,
		"bookingDate": formatBookingDate(details.BookingDate),
		"bookingTime": details.BookingTime,
		"partySize":   details.PartySize,
	}
}

func formatBookingDate(raw string) string {
	if raw == "" {
		return missingDate
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return missingDate
	}
	return parsed.Format(displayDateFormat)
}
