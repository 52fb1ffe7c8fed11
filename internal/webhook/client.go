package webhook

import (
	"context"

	"github.com/cockroachdb/errors"

	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/model"
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("webhook url is not configured")

// Submitter forwards contact form submissions to the CRM webhook.
type Submitter interface {
	Submit(ctx context.Context, form model.ContactRequest) error
}

type submitter struct {
	url    string
	client httpclient.Client
}

// NewSubmitter builds a Submitter posting to url.
func NewSubmitter(url string, client httpclient.Client) Submitter {
	return &submitter{url: url, client: client}
}

// formPayload is the raw form as the webhook expects it; the client id stays internal.
type formPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Area  string `json:"area"`
}

func (s *submitter) Submit(ctx context.Context, form model.ContactRequest) error {
	if s.url == "" {
		return ErrNotConfigured
	}
	req, err := httpclient.NewJSONRequest(s.url, formPayload{
		Name:  form.Name,
		Email: form.Email,
		Phone: form.Phone,
		Area:  form.Area,
	})
	if err != nil {
		return err
	}
	if _, err := s.client.Send(ctx, req); err != nil {
		return errors.Wrap(err, "submit contact form")
	}
	return nil
}
