package platforms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/testdata/mockemitter"
	"lead-tracking-service/internal/tracking"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// capture is a fake vendor endpoint recording every request it receives.
type capture struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []*http.Request
	payloads []map[string]any
	server   *httptest.Server
}

func newCapture(status int) *capture {
	c := &capture{status: status}
	c.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		c.mu.Lock()
		c.requests = append(c.requests, r)
		c.payloads = append(c.payloads, payload)
		status, body := c.status, c.body
		c.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return c
}

func (c *capture) respond(status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status, c.body = status, body
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func (c *capture) last() (*http.Request, map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1], c.payloads[len(c.payloads)-1]
}

type PlatformsTestSuite struct {
	suite.Suite

	ga     *capture
	meta   *capture
	client httpclient.Client
	event  model.UnifiedEvent
}

func TestPlatformsSuite(t *testing.T) {
	suite.Run(t, new(PlatformsTestSuite))
}

func (s *PlatformsTestSuite) SetupTest() {
	s.ga = newCapture(http.StatusNoContent)
	s.meta = newCapture(http.StatusOK)
	s.client = httpclient.NewClient(httpclient.ClientConfig{Timeout: time.Second})
	s.event = model.UnifiedEvent{
		ID:        "evt_01J0000000000000000000000",
		Type:      model.EventFormSubmit,
		Timestamp: 1718000000,
		SessionID: "session_1718000000000_abc1234",
		ClientID:  "GA1.1.1234567890.1718000000",
		Data: model.EventData{
			"form_name":         "contact_form",
			"area":              "Ansiedade",
			"email":             "  Paciente@Example.com ",
			"phone":             "+55 21 99999-0000",
			"value":             1,
			"currency":          "BRL",
			"client_ip_address": "203.0.113.7",
			"client_user_agent": "Mozilla/5.0",
			"event_source_url":  "https://example.com/contato",
		},
	}
}

func (s *PlatformsTestSuite) TearDownTest() {
	s.ga.server.Close()
	s.meta.server.Close()
}

func (s *PlatformsTestSuite) analytics(emitter ClientEmitter) *Analytics {
	return NewAnalytics(config.AnalyticsConfig{
		Enabled:       true,
		MeasurementID: "G-TEST",
		APISecret:     "ga-secret",
		Endpoint:      s.ga.server.URL + "/mp/collect",
	}, s.client, emitter, logger.NewNop())
}

func (s *PlatformsTestSuite) conversions(emitter ClientEmitter) *Conversions {
	return NewConversions(config.ConversionsConfig{
		Enabled:     true,
		PixelID:     "1501515817485128",
		AccessToken: "meta-token",
		GraphURL:    s.meta.server.URL,
		APIVersion:  "v19.0",
	}, s.client, emitter, logger.NewNop())
}

func (s *PlatformsTestSuite) TestConversions_FormSubmitBecomesLead() {
	ok := s.conversions(nil).TrackFormEvent(context.Background(), s.event)

	s.True(ok)
	req, payload := s.meta.last()
	s.Equal("/v19.0/1501515817485128/events", req.URL.Path)
	s.Equal("meta-token", req.URL.Query().Get("access_token"))

	data := payload["data"].([]any)
	s.Require().Len(data, 1)
	ev := data[0].(map[string]any)
	s.Equal("Lead", ev["event_name"])
	s.Equal(float64(1718000000), ev["event_time"])
	s.Equal(s.event.ID, ev["event_id"])
	s.Equal("website", ev["action_source"])
	s.Equal("https://example.com/contato", ev["event_source_url"])

	custom := ev["custom_data"].(map[string]any)
	s.Equal("Ansiedade", custom["content_category"])
	s.Equal(s.event.ClientID, custom["correlation_id"])
	s.Equal("contact_form", custom["form_name"])
	s.NotContains(custom, "email")
	s.NotContains(custom, "phone")
	s.NotContains(custom, "client_ip_address")
	s.NotContains(payload, "test_event_code")
}

func (s *PlatformsTestSuite) TestConversions_HashesUserData() {
	s.True(s.conversions(nil).TrackEvent(context.Background(), s.event))

	_, payload := s.meta.last()
	user := payload["data"].([]any)[0].(map[string]any)["user_data"].(map[string]any)

	s.Equal(tracking.HashUserData("paciente@example.com"), user["em"])
	s.Equal(tracking.HashUserData("+55 21 99999-0000"), user["ph"])
	s.NotEqual("paciente@example.com", user["em"])
	s.Equal("203.0.113.7", user["client_ip_address"])
	s.Equal("Mozilla/5.0", user["client_user_agent"])
}

func (s *PlatformsTestSuite) TestPersonalKeysMatchRegardlessOfCase() {
	s.event.Data = model.EventData{
		"email":             "   ",
		"Email":             "Raw@Example.com",
		"PHONE":             "+55 21 99999-0000",
		"Client_IP_Address": "203.0.113.9",
		"area":              "Ansiedade",
	}

	s.True(s.conversions(nil).TrackEvent(context.Background(), s.event))
	s.True(s.analytics(nil).TrackEvent(context.Background(), s.event))

	_, metaPayload := s.meta.last()
	ev := metaPayload["data"].([]any)[0].(map[string]any)
	user := ev["user_data"].(map[string]any)
	s.Equal(tracking.HashUserData("raw@example.com"), user["em"])
	s.Equal(tracking.HashUserData("+55 21 99999-0000"), user["ph"])
	s.Equal("203.0.113.9", user["client_ip_address"])

	custom := ev["custom_data"].(map[string]any)
	for _, key := range []string{"email", "Email", "PHONE", "Client_IP_Address"} {
		s.NotContains(custom, key)
	}
	s.Equal("Ansiedade", custom["area"])

	_, gaPayload := s.ga.last()
	params := gaPayload["events"].([]any)[0].(map[string]any)["params"].(map[string]any)
	for _, key := range []string{"email", "Email", "PHONE", "Client_IP_Address"} {
		s.NotContains(params, key)
	}
}

func (s *PlatformsTestSuite) TestConversions_BlankEmailIsNotHashed() {
	s.event.Data = model.EventData{"email": " \t ", "phone": ""}

	s.True(s.conversions(nil).TrackEvent(context.Background(), s.event))

	_, payload := s.meta.last()
	user := payload["data"].([]any)[0].(map[string]any)["user_data"].(map[string]any)
	s.NotContains(user, "em")
	s.NotContains(user, "ph")
}

func (s *PlatformsTestSuite) TestConversions_EventNameMapping() {
	c := s.conversions(nil)
	tests := []struct {
		eventType model.EventType
		form      bool
		want      string
	}{
		{model.EventPageView, false, "PageView"},
		{model.EventFormStart, false, "InitiateCheckout"},
		{model.EventLead, false, "Lead"},
		{model.EventPurchase, false, "Purchase"},
		{model.EventAddToCart, false, "AddToCart"},
		{model.EventCustom, false, "CustomEvent"},
		{"newsletter_signup", false, "CustomEvent"},
		{model.EventFormStart, true, "InitiateCheckout"},
		{model.EventLead, true, "Lead"},
		{"newsletter_signup", true, "CustomEvent"},
	}

	for _, tt := range tests {
		ev := s.event
		ev.Type = tt.eventType
		if tt.form {
			s.True(c.TrackFormEvent(context.Background(), ev))
		} else {
			s.True(c.TrackEvent(context.Background(), ev))
		}
		_, payload := s.meta.last()
		s.Equal(tt.want, payload["data"].([]any)[0].(map[string]any)["event_name"], "type %s form=%v", tt.eventType, tt.form)
	}
}

func (s *PlatformsTestSuite) TestConversions_KeepsExplicitContentCategory() {
	s.event.Data = model.EventData{"area": "Ansiedade", "content_category": "Terapia"}

	s.True(s.conversions(nil).TrackEvent(context.Background(), s.event))

	_, payload := s.meta.last()
	custom := payload["data"].([]any)[0].(map[string]any)["custom_data"].(map[string]any)
	s.Equal("Terapia", custom["content_category"])
}

func (s *PlatformsTestSuite) TestConversions_TestEventCode() {
	c := NewConversions(config.ConversionsConfig{
		Enabled: true, PixelID: "1", AccessToken: "t", GraphURL: s.meta.server.URL, TestEventCode: "TEST12345",
	}, s.client, nil, nil)

	s.True(c.TrackEvent(context.Background(), s.event))

	req, payload := s.meta.last()
	s.Equal("TEST12345", payload["test_event_code"])
	s.Equal("/"+config.DefaultMetaAPIVersion+"/1/events", req.URL.Path)
}

func (s *PlatformsTestSuite) TestConversions_Non2xxIsFailure() {
	s.meta.respond(http.StatusBadRequest, `{"error":{"message":"Invalid parameter"}}`)

	s.False(s.conversions(nil).TrackEvent(context.Background(), s.event))
	s.Equal(1, s.meta.count())
}

func (s *PlatformsTestSuite) TestAnalytics_PayloadShape() {
	s.True(s.analytics(nil).TrackEvent(context.Background(), s.event))

	req, payload := s.ga.last()
	s.Equal("/mp/collect", req.URL.Path)
	s.Equal("G-TEST", req.URL.Query().Get("measurement_id"))
	s.Equal("ga-secret", req.URL.Query().Get("api_secret"))
	s.Equal(s.event.ClientID, payload["client_id"])

	events := payload["events"].([]any)
	s.Require().Len(events, 1)
	ev := events[0].(map[string]any)
	s.Equal("purchase", ev["name"])

	params := ev["params"].(map[string]any)
	s.Equal(s.event.ID, params["event_id"])
	s.Equal(s.event.SessionID, params["session_id"])
	s.Equal(float64(1000), params["engagement_time_msec"])
	s.Equal("Ansiedade", params["area"])
	s.Equal("BRL", params["currency"])
	s.NotContains(params, "email")
	s.NotContains(params, "phone")
	s.NotContains(params, "client_ip_address")
	s.NotContains(params, "client_user_agent")

	props := payload["user_properties"].(map[string]any)
	s.Equal(map[string]any{"value": "Ansiedade"}, props["interest_area"])
	s.Equal(map[string]any{"value": true}, props["form_completed"])
}

func (s *PlatformsTestSuite) TestAnalytics_EventNameMapping() {
	a := s.analytics(nil)
	tests := []struct {
		eventType model.EventType
		form      bool
		want      string
	}{
		{model.EventPageView, false, "page_view"},
		{model.EventFormStart, false, "begin_checkout"},
		{model.EventLead, false, "generate_lead"},
		{model.EventAddToCart, false, "add_to_cart"},
		{model.EventCustom, false, "custom"},
		{"scroll_depth", false, "scroll_depth"},
		{model.EventFormStart, true, "begin_checkout"},
		{model.EventFormSubmit, true, "purchase"},
		{model.EventLead, true, "generate_lead"},
	}

	for _, tt := range tests {
		ev := s.event
		ev.Type = tt.eventType
		if tt.form {
			s.True(a.TrackFormEvent(context.Background(), ev))
		} else {
			s.True(a.TrackEvent(context.Background(), ev))
		}
		_, payload := s.ga.last()
		s.Equal(tt.want, payload["events"].([]any)[0].(map[string]any)["name"], "type %s form=%v", tt.eventType, tt.form)
	}
}

func (s *PlatformsTestSuite) TestAnalytics_PageViewOmitsUserProperties() {
	s.event.Type = model.EventCustom
	s.event.Data = model.EventData{"page_location": "https://example.com/"}

	s.True(s.analytics(nil).TrackPageView(context.Background(), s.event))

	_, payload := s.ga.last()
	s.NotContains(payload, "user_properties")
	s.Equal("page_view", payload["events"].([]any)[0].(map[string]any)["name"])
}

func (s *PlatformsTestSuite) TestMissingCredentialsNeverDeliver() {
	a := NewAnalytics(config.AnalyticsConfig{Enabled: true, MeasurementID: "G-TEST", Endpoint: s.ga.server.URL}, s.client, nil, nil)
	c := NewConversions(config.ConversionsConfig{Enabled: true, PixelID: "1", GraphURL: s.meta.server.URL}, s.client, nil, nil)

	for _, p := range []tracking.Platform{a, c} {
		s.NotPanics(func() {
			s.False(p.TrackEvent(context.Background(), s.event))
			s.False(p.TrackPageView(context.Background(), s.event))
			s.False(p.TrackFormEvent(context.Background(), s.event))
		})
	}
	s.Equal(0, s.ga.count())
	s.Equal(0, s.meta.count())
}

func (s *PlatformsTestSuite) TestInvalidEventShortCircuits() {
	emitter := &mockemitter.Emitter{}
	invalid := s.event
	invalid.ClientID = ""

	for _, p := range []tracking.Platform{s.analytics(emitter), s.conversions(emitter)} {
		s.False(p.TrackEvent(context.Background(), invalid))
		s.False(p.TrackPageView(context.Background(), invalid))
		s.False(p.TrackFormEvent(context.Background(), invalid))
	}

	s.Equal(0, s.ga.count())
	s.Equal(0, s.meta.count())
	emitter.AssertNotCalled(s.T(), "Emit", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PlatformsTestSuite) TestClientSideEmitDoesNotAffectResult() {
	emitter := &mockemitter.Emitter{}
	emitter.On("Emit", "gtag", "generate_lead", mock.MatchedBy(func(p map[string]any) bool {
		_, hasEmail := p["email"]
		return p["event_id"] == s.event.ID && !hasEmail
	})).Once()
	emitter.On("Emit", "fbq", "Lead", mock.MatchedBy(func(p map[string]any) bool {
		_, hasPhone := p["phone"]
		return p["event_id"] == s.event.ID && !hasPhone
	})).Once()

	s.ga.respond(http.StatusInternalServerError, "")
	s.event.Type = model.EventLead

	s.False(s.analytics(emitter).TrackEvent(context.Background(), s.event), "server failure decides the result")
	s.True(s.conversions(emitter).TrackEvent(context.Background(), s.event))
	emitter.AssertExpectations(s.T())
}

func (s *PlatformsTestSuite) TestPanickingEmitterIsContained() {
	emitter := &mockemitter.Emitter{}
	emitter.On("Emit", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("tag exploded") })

	s.True(s.conversions(emitter).TrackEvent(context.Background(), s.event))
}

func (s *PlatformsTestSuite) TestDisabledFlagComesFromConfig() {
	a := NewAnalytics(config.AnalyticsConfig{Enabled: false}, s.client, nil, nil)
	c := NewConversions(config.ConversionsConfig{Enabled: true}, s.client, nil, nil)

	s.False(a.Enabled())
	s.True(c.Enabled())
	s.Equal(AnalyticsName, a.Name())
	s.Equal(ConversionsName, c.Name())

	coordinator := tracking.NewCoordinator(nil, nil, a, c)
	s.Equal([]string{ConversionsName}, coordinator.EnabledPlatforms())
}

func (s *PlatformsTestSuite) TestCoordinator_OnePlatformDownOtherUp() {
	s.ga.server.Close()

	coordinator := tracking.NewCoordinator(logger.NewNop(), nil, s.analytics(nil), s.conversions(nil))
	results := coordinator.TrackPageView(context.Background(), s.event)

	s.Equal(model.Results{AnalyticsName: false, ConversionsName: true}, results)
	_, payload := s.meta.last()
	s.Equal("PageView", payload["data"].([]any)[0].(map[string]any)["event_name"])
}

func (s *PlatformsTestSuite) TestEventDataIsNotMutated() {
	before := make(model.EventData, len(s.event.Data))
	for k, v := range s.event.Data {
		before[k] = v
	}

	coordinator := tracking.NewCoordinator(nil, nil, s.analytics(nil), s.conversions(nil))
	coordinator.TrackFormEvent(context.Background(), s.event)

	s.Equal(before, s.event.Data)
}

func (s *PlatformsTestSuite) TestFromConfig() {
	cfg := &config.Config{
		Analytics:   config.AnalyticsConfig{Enabled: false},
		Conversions: config.ConversionsConfig{Enabled: true, PixelID: "1", AccessToken: "t"},
	}

	all := FromConfig(cfg, s.client, nil, nil)

	s.Require().Len(all, 2)
	s.Equal(AnalyticsName, all[0].Name())
	s.False(all[0].Enabled())
	s.Equal(ConversionsName, all[1].Name())
	s.True(all[1].Enabled())
}
