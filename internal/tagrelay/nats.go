package tagrelay

import (
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"

	"lead-tracking-service/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is the part of *nats.Conn the relay needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is what browser-side tag runners receive.
type Message struct {
	Vendor    string         `json:"vendor"`
	EventName string         `json:"event_name"`
	Params    map[string]any `json:"params"`
	SentAt    int64          `json:"sent_at"`
}

// Relay publishes vendor tag calls (gtag, fbq) to NATS. It implements
// platforms.ClientEmitter.
type Relay struct {
	pub    Publisher
	prefix string
	log    *logger.Logger
	now    func() time.Time
}

// New builds a Relay over an existing publisher.
func New(pub Publisher, prefix string, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.NewNop()
	}
	return &Relay{pub: pub, prefix: prefix, log: log.Named("tagrelay"), now: time.Now}
}

// Connect dials url and returns a Relay with a closer for the connection.
func Connect(url, prefix string, log *logger.Logger) (*Relay, func(), error) {
	conn, err := nats.Connect(url, nats.Name("lead-tracking-service"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to nats")
	}
	closeFn := func() {
		if err := conn.Drain(); err != nil {
			conn.Close()
		}
	}
	return New(conn, prefix, log), closeFn, nil
}

// Subject returns the subject used for vendor.
func (r *Relay) Subject(vendor string) string {
	if r.prefix == "" {
		return vendor
	}
	return r.prefix + "." + vendor
}

// Emit publishes without waiting for an acknowledgement. Failures are logged.
func (r *Relay) Emit(vendor, eventName string, params map[string]any) {
	data, err := json.Marshal(Message{
		Vendor:    vendor,
		EventName: eventName,
		Params:    params,
		SentAt:    r.now().UnixMilli(),
	})
	if err != nil {
		r.log.Warnw("failed to encode tag message", "vendor", vendor, "event_name", eventName, "error", err)
		return
	}
	subject := r.Subject(vendor)
	if err := r.pub.Publish(subject, data); err != nil {
		r.log.Warnw("failed to publish tag message", "subject", subject, "event_name", eventName, "error", err)
		return
	}
	r.log.Debugw("tag message published", "subject", subject, "event_name", eventName)
}
