package model

import (
	"sort"
	"strings"
)

// EventType is the vendor-neutral kind of a trackable occurrence.
type EventType string

const (
	EventPageView   EventType = "page_view"
	EventFormStart  EventType = "form_start"
	EventFormSubmit EventType = "form_submit"
	EventLead       EventType = "lead"
	EventPurchase   EventType = "purchase"
	EventAddToCart  EventType = "add_to_cart"
	EventCustom     EventType = "custom"
)

// Known reports whether t is one of the predefined event types.
func (t EventType) Known() bool {
	switch t {
	case EventPageView, EventFormStart, EventFormSubmit, EventLead, EventPurchase, EventAddToCart, EventCustom:
		return true
	default:
		return false
	}
}

// IsFormEvent reports whether t belongs to the form funnel.
func (t EventType) IsFormEvent() bool {
	return t == EventFormStart || t == EventFormSubmit
}

// Well-known keys in EventData.
const (
	DataEmail           = "email"
	DataPhone           = "phone"
	DataArea            = "area"
	DataContentCategory = "content_category"
	DataFormName        = "form_name"
	DataPageLocation    = "page_location"
	DataPageTitle       = "page_title"

	// Request context added by the HTTP layer.
	DataClientIP        = "client_ip_address"
	DataClientUserAgent = "client_user_agent"
	DataEventSourceURL  = "event_source_url"
)

// SensitiveKeys hold personal data that must be hashed before leaving the process.
var SensitiveKeys = []string{DataEmail, DataPhone}

// ContextKeys describe the request rather than the event; platforms decide where they go.
var ContextKeys = []string{DataClientIP, DataClientUserAgent, DataEventSourceURL}

// IsReservedKey reports whether key names a sensitive or request-context
// field. Keys match regardless of case, so "Email" is as personal as "email".
func IsReservedKey(key string) bool {
	for _, k := range SensitiveKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	for _, k := range ContextKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// EventData is the free-form payload of an event. Values are string, number or bool.
type EventData map[string]any

// String returns the value under key when it is a non-empty string.
func (d EventData) String(key string) (string, bool) {
	v, ok := d[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Lookup returns the trimmed string stored under key, matching key without
// regard to case. Blank values are skipped. The exact key wins; among other
// spellings the lexically smallest key is used.
func (d EventData) Lookup(key string) (string, bool) {
	if v, ok := trimmedString(d[key]); ok {
		return v, true
	}
	var matches []string
	for k := range d {
		if k != key && strings.EqualFold(k, key) {
			matches = append(matches, k)
		}
	}
	sort.Strings(matches)
	for _, k := range matches {
		if v, ok := trimmedString(d[k]); ok {
			return v, true
		}
	}
	return "", false
}

func trimmedString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// SanitizeData copies data keeping only string, number and bool values.
func SanitizeData(data map[string]any) EventData {
	out := make(EventData, len(data))
	for k, v := range data {
		switch v.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			out[k] = v
		}
	}
	return out
}

// UnifiedEvent is the canonical representation of one trackable user action.
// It is built once and handed unchanged to every platform.
type UnifiedEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	SessionID string    `json:"session_id"`
	ClientID  string    `json:"client_id"`
	Data      EventData `json:"data"`
}

// Results maps a platform name to whether its server-side delivery succeeded.
type Results map[string]bool

// Succeeded counts the platforms that accepted the event.
func (r Results) Succeeded() int {
	n := 0
	for _, ok := range r {
		if ok {
			n++
		}
	}
	return n
}
