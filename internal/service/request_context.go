package service

import "lead-tracking-service/internal/model"

// withRequestContext adds what the HTTP layer knows about the browser to data.
// Values already present in data win.
func withRequestContext(data model.EventData, rc model.RequestContext) model.EventData {
	set := func(key, value string) {
		if value == "" {
			return
		}
		if _, exists := data[key]; !exists {
			data[key] = value
		}
	}
	set(model.DataClientIP, rc.ClientIP)
	set(model.DataClientUserAgent, rc.UserAgent)
	set(model.DataEventSourceURL, rc.Referer)
	return data
}
