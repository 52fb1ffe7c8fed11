package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"
)

const ConversionsName = "Meta CAPI"

const (
	actionSourceWebsite = "website"
	customEventName     = "CustomEvent"
)

// Unmapped types are sent as CustomEvent.
var conversionsEventNames = map[model.EventType]string{
	model.EventPageView:   "PageView",
	model.EventFormStart:  "InitiateCheckout",
	model.EventFormSubmit: "Lead",
	model.EventLead:       "Lead",
	model.EventPurchase:   "Purchase",
	model.EventAddToCart:  "AddToCart",
}

// Form types missing here resolve through conversionsEventNames.
var conversionsFormEventNames = map[model.EventType]string{
	model.EventFormStart:  "InitiateCheckout",
	model.EventFormSubmit: "Lead",
}

func conversionsEventName(t model.EventType) string {
	return resolveName(conversionsEventNames, t, func(model.EventType) string { return customEventName })
}

func conversionsFormEventName(t model.EventType) string {
	return resolveName(conversionsFormEventNames, t, conversionsEventName)
}

// Conversions delivers events to the Meta Conversions API.
type Conversions struct {
	base
	pixelID       string
	accessToken   string
	graphURL      string
	apiVersion    string
	testEventCode string
}

var _ tracking.Platform = (*Conversions)(nil)

// NewConversions builds the Meta Conversions API adapter. emitter may be nil.
func NewConversions(cfg config.ConversionsConfig, client httpclient.Client, emitter ClientEmitter, log *logger.Logger) *Conversions {
	c := &Conversions{
		base:          newBase(ConversionsName, cfg.Enabled, log, client, emitter),
		pixelID:       cfg.PixelID,
		accessToken:   cfg.AccessToken,
		graphURL:      strings.TrimRight(cfg.GraphURL, "/"),
		apiVersion:    cfg.APIVersion,
		testEventCode: cfg.TestEventCode,
	}
	if c.graphURL == "" {
		c.graphURL = config.DefaultMetaGraphURL
	}
	if c.apiVersion == "" {
		c.apiVersion = config.DefaultMetaAPIVersion
	}
	if c.enabled && !c.configured() {
		c.log.Warn("META_PIXEL_ID or META_ACCESS_TOKEN is not configured; server-side delivery disabled")
	}
	return c
}

func (c *Conversions) configured() bool {
	return c.pixelID != "" && c.accessToken != ""
}

func (c *Conversions) TrackEvent(ctx context.Context, event model.UnifiedEvent) bool {
	if !c.validate(event) {
		return false
	}
	return c.deliver(ctx, event, conversionsEventName(event.Type))
}

func (c *Conversions) TrackPageView(ctx context.Context, event model.UnifiedEvent) bool {
	return c.TrackEvent(ctx, tracking.AsPageView(event))
}

func (c *Conversions) TrackFormEvent(ctx context.Context, event model.UnifiedEvent) bool {
	if !c.validate(event) {
		return false
	}
	return c.deliver(ctx, event, conversionsFormEventName(event.Type))
}

type conversionsPayload struct {
	Data          []conversionsEvent `json:"data"`
	TestEventCode string             `json:"test_event_code,omitempty"`
}

type conversionsEvent struct {
	EventName      string            `json:"event_name"`
	EventTime      int64             `json:"event_time"`
	EventID        string            `json:"event_id"`
	ActionSource   string            `json:"action_source"`
	EventSourceURL string            `json:"event_source_url,omitempty"`
	UserData       map[string]string `json:"user_data"`
	CustomData     map[string]any    `json:"custom_data"`
}

func (c *Conversions) deliver(ctx context.Context, event model.UnifiedEvent, eventName string) bool {
	customData := conversionsCustomData(event)

	pixelParams := make(map[string]any, len(customData)+1)
	for k, v := range customData {
		pixelParams[k] = v
	}
	pixelParams["event_id"] = event.ID
	c.emitClientSide("fbq", eventName, pixelParams)

	if !c.configured() {
		c.log.Error("META_PIXEL_ID or META_ACCESS_TOKEN is not configured")
		return false
	}

	sourceURL, _ := event.Data.Lookup(model.DataEventSourceURL)
	payload := conversionsPayload{
		Data: []conversionsEvent{{
			EventName:      eventName,
			EventTime:      event.Timestamp,
			EventID:        event.ID,
			ActionSource:   actionSourceWebsite,
			EventSourceURL: sourceURL,
			UserData:       conversionsUserData(event.Data),
			CustomData:     customData,
		}},
		TestEventCode: c.testEventCode,
	}

	return c.safeExecute(ctx, "server-side tracking", func(ctx context.Context) error {
		req, err := httpclient.NewJSONRequest(c.eventsURL(), payload)
		if err != nil {
			return err
		}
		if _, err := c.client.Send(ctx, req); err != nil {
			return err
		}
		c.log.Debugw("server-side event tracked", "event_name", eventName, "event_id", event.ID)
		return nil
	})
}

func (c *Conversions) eventsURL() string {
	q := url.Values{}
	q.Set("access_token", c.accessToken)
	return fmt.Sprintf("%s/%s/%s/events?%s", c.graphURL, c.apiVersion, url.PathEscape(c.pixelID), q.Encode())
}

// conversionsUserData hashes email and phone; raw values never leave the process.
func conversionsUserData(data model.EventData) map[string]string {
	userData := map[string]string{}
	if email := tracking.HashUserData(lookup(data, model.DataEmail)); email != "" {
		userData["em"] = email
	}
	if phone := tracking.HashUserData(lookup(data, model.DataPhone)); phone != "" {
		userData["ph"] = phone
	}
	if ip, ok := data.Lookup(model.DataClientIP); ok {
		userData["client_ip_address"] = ip
	}
	if ua, ok := data.Lookup(model.DataClientUserAgent); ok {
		userData["client_user_agent"] = ua
	}
	return userData
}

func lookup(data model.EventData, key string) string {
	v, _ := data.Lookup(key)
	return v
}

func conversionsCustomData(event model.UnifiedEvent) map[string]any {
	custom := publicParams(event.Data)
	if area, ok := event.Data.String(model.DataArea); ok {
		if _, set := custom[model.DataContentCategory]; !set {
			custom[model.DataContentCategory] = area
		}
	}
	custom["correlation_id"] = event.ClientID
	return custom
}
