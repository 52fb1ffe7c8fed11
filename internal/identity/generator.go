package identity

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
)

const (
	eventIDPrefix   = "evt"
	sessionIDPrefix = "session"
	// clientIDPrefix follows the Google Analytics cookie layout so the same
	// value is accepted as a GA client_id and as a Meta correlation id.
	clientIDPrefix = "GA1.1"
)

var sessionCharset = append(append([]rune{}, lo.LowerCaseLettersCharset...), lo.NumbersCharset...)

// now is replaced in tests.
var now = time.Now

// GenerateEventID returns a k-sortable id, unique with high probability.
func GenerateEventID() string {
	return fmt.Sprintf("%s_%s", eventIDPrefix, ulid.Make().String())
}

// GenerateClientID returns a new browser-scoped client id, e.g. GA1.1.4821937560.1718000000.
func GenerateClientID() string {
	return fmt.Sprintf("%s.%s.%d", clientIDPrefix, lo.RandomString(10, lo.NumbersCharset), now().Unix())
}

// GenerateSessionID returns a new session id, e.g. session_1718000000123_k3j9x0a.
func GenerateSessionID() string {
	return fmt.Sprintf("%s_%d_%s", sessionIDPrefix, now().UnixMilli(), lo.RandomString(7, sessionCharset))
}
