package service

import (
	"context"
	"strings"

	"lead-tracking-service/internal/identity"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"
	"lead-tracking-service/internal/webhook"
)

const (
	leadContentName = "Contact Form Lead"
	leadSource      = "website"
	leadFormName    = "contact_form"
	leadCategory    = "General"
	leadCurrency    = "BRL"
	leadValue       = 1
)

// SubmissionMetrics counts webhook outcomes.
type SubmissionMetrics interface {
	IncWebhookSubmission(success bool)
}

type ContactService interface {
	BuildContact(req model.ContactRequest) (model.ContactRequest, error)
	Submit(ctx context.Context, req model.ContactRequest, rc model.RequestContext, store identity.Store) (model.ContactResult, error)
}

type contactService struct {
	webhook webhook.Submitter
	worker  LeadWorker
	metrics SubmissionMetrics
	log     *logger.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(submitter webhook.Submitter, worker LeadWorker, metrics SubmissionMetrics, log *logger.Logger) ContactService {
	if log == nil {
		log = logger.NewNop()
	}
	return &contactService{
		webhook: submitter,
		worker:  worker,
		metrics: metrics,
		log:     log.Named("contact_service"),
	}
}

// BuildContact trims and validates the submitted form.
func (s *contactService) BuildContact(req model.ContactRequest) (model.ContactRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Area = strings.TrimSpace(req.Area)
	req.ClientID = strings.TrimSpace(req.ClientID)

	if err := validateRequest(req); err != nil {
		return model.ContactRequest{}, err
	}
	return req, nil
}

// Submit forwards the form to the webhook. Only a webhook failure fails the
// submission; the lead event is handed to the worker afterwards.
func (s *contactService) Submit(ctx context.Context, req model.ContactRequest, rc model.RequestContext, store identity.Store) (model.ContactResult, error) {
	if err := s.webhook.Submit(ctx, req); err != nil {
		s.recordSubmission(false)
		s.log.Errorw("webhook submission failed", "error", err)
		return model.ContactResult{}, err
	}
	s.recordSubmission(true)

	ids := identity.NewManager(store)
	clientID := req.ClientID
	if clientID == "" {
		clientID = ids.GetOrCreateClientID()
	}
	event := tracking.NewEvent(model.EventLead, leadData(req, rc), clientID, ids.GetOrCreateSessionID())

	if !s.worker.Enqueue(event) {
		s.log.Warnw("lead event not tracked", "event_id", event.ID)
	}
	return model.ContactResult{Success: true, EventID: event.ID}, nil
}

func (s *contactService) recordSubmission(success bool) {
	if s.metrics != nil {
		s.metrics.IncWebhookSubmission(success)
	}
}

func leadData(req model.ContactRequest, rc model.RequestContext) model.EventData {
	category := req.Area
	if category == "" {
		category = leadCategory
	}
	data := model.EventData{
		"content_name":            leadContentName,
		"source":                  leadSource,
		model.DataFormName:        leadFormName,
		model.DataContentCategory: category,
		"value":                   leadValue,
		"currency":                leadCurrency,
		model.DataEmail:           req.Email,
	}
	if req.Phone != "" {
		data[model.DataPhone] = req.Phone
	}
	if req.Area != "" {
		data[model.DataArea] = req.Area
	}
	return withRequestContext(data, rc)
}
