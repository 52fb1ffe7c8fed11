package platforms

import (
	"context"
	"net/url"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"
)

const AnalyticsName = "Google Analytics"

const engagementTimeMsec = 1000

// Unmapped types are sent under their own name.
var analyticsEventNames = map[model.EventType]string{
	model.EventPageView:   "page_view",
	model.EventFormStart:  "begin_checkout",
	model.EventFormSubmit: "purchase",
	model.EventLead:       "generate_lead",
	model.EventPurchase:   "purchase",
	model.EventAddToCart:  "add_to_cart",
}

// Form types missing here resolve through analyticsEventNames.
var analyticsFormEventNames = map[model.EventType]string{
	model.EventFormStart:  "begin_checkout",
	model.EventFormSubmit: "purchase",
}

func analyticsEventName(t model.EventType) string {
	return resolveName(analyticsEventNames, t, func(t model.EventType) string { return string(t) })
}

func analyticsFormEventName(t model.EventType) string {
	return resolveName(analyticsFormEventNames, t, analyticsEventName)
}

// Analytics delivers events to the Google Analytics Measurement Protocol.
type Analytics struct {
	base
	measurementID string
	apiSecret     string
	endpoint      string
}

var _ tracking.Platform = (*Analytics)(nil)

// NewAnalytics builds the Google Analytics adapter. emitter may be nil.
func NewAnalytics(cfg config.AnalyticsConfig, client httpclient.Client, emitter ClientEmitter, log *logger.Logger) *Analytics {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultGAEndpoint
	}
	a := &Analytics{
		base:          newBase(AnalyticsName, cfg.Enabled, log, client, emitter),
		measurementID: cfg.MeasurementID,
		apiSecret:     cfg.APISecret,
		endpoint:      endpoint,
	}
	if a.enabled && !a.configured() {
		a.log.Warn("GA_MEASUREMENT_ID or GA_API_SECRET is not configured; server-side delivery disabled")
	}
	return a
}

func (a *Analytics) configured() bool {
	return a.measurementID != "" && a.apiSecret != ""
}

func (a *Analytics) TrackEvent(ctx context.Context, event model.UnifiedEvent) bool {
	if !a.validate(event) {
		return false
	}
	return a.deliver(ctx, event, analyticsEventName(event.Type))
}

func (a *Analytics) TrackPageView(ctx context.Context, event model.UnifiedEvent) bool {
	return a.TrackEvent(ctx, tracking.AsPageView(event))
}

func (a *Analytics) TrackFormEvent(ctx context.Context, event model.UnifiedEvent) bool {
	if !a.validate(event) {
		return false
	}
	return a.deliver(ctx, event, analyticsFormEventName(event.Type))
}

type measurementPayload struct {
	ClientID       string                  `json:"client_id"`
	UserProperties map[string]userProperty `json:"user_properties,omitempty"`
	Events         []measurementEvent      `json:"events"`
}

type userProperty struct {
	Value any `json:"value"`
}

type measurementEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (a *Analytics) deliver(ctx context.Context, event model.UnifiedEvent, eventName string) bool {
	params := publicParams(event.Data)
	params["event_id"] = event.ID
	params["session_id"] = event.SessionID

	a.emitClientSide("gtag", eventName, params)

	if !a.configured() {
		a.log.Error("GA_MEASUREMENT_ID or GA_API_SECRET is not configured")
		return false
	}

	serverParams := make(map[string]any, len(params)+1)
	for k, v := range params {
		serverParams[k] = v
	}
	serverParams["engagement_time_msec"] = engagementTimeMsec

	payload := measurementPayload{
		ClientID:       event.ClientID,
		UserProperties: analyticsUserProperties(event),
		Events:         []measurementEvent{{Name: eventName, Params: serverParams}},
	}

	return a.safeExecute(ctx, "server-side tracking", func(ctx context.Context) error {
		req, err := httpclient.NewJSONRequest(a.collectURL(), payload)
		if err != nil {
			return err
		}
		if _, err := a.client.Send(ctx, req); err != nil {
			return err
		}
		a.log.Debugw("server-side event tracked", "event_name", eventName, "event_id", event.ID)
		return nil
	})
}

func (a *Analytics) collectURL() string {
	q := url.Values{}
	q.Set("measurement_id", a.measurementID)
	q.Set("api_secret", a.apiSecret)
	return a.endpoint + "?" + q.Encode()
}

func analyticsUserProperties(event model.UnifiedEvent) map[string]userProperty {
	props := map[string]userProperty{}
	if area, ok := event.Data.String(model.DataArea); ok {
		props["interest_area"] = userProperty{Value: area}
	}
	if event.Type == model.EventLead || event.Type == model.EventFormSubmit {
		props["form_completed"] = userProperty{Value: true}
	}
	if len(props) == 0 {
		return nil
	}
	return props
}
