package notify

import (
	"context"
	"ctfrank/internal/apperr"
	"ctfrank/internal/assert"
	"ctfrank/internal/telemetry"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ctfrank/notify")

const report_webhook_notify = "webhook.notify"

// Webhook posts messages to a single webhook url.
type Webhook struct {
	url  string
	http *resty.Client
	tel  telemetry.API
}

func NewWebhook(url string, timeout time.Duration, tel telemetry.API) Webhook {
	assert.NotEmptyStr(url, "webhook url")
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("notify", tel)

	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	// the webhook url carries its token
	telemetry.InstrumentResty(client, "ctfrank/notify/http", tel, telemetry.WithRedactedURLs())

	return Webhook{
		url:  url,
		http: client,
		tel:  tel,
	}
}

// Notify delivers msg once, there are no retries.
func (w Webhook) Notify(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "webhook:Notify")
	defer span.End()

	res, err := w.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(msg).
		Post(w.url)
	if err != nil {
		err = apperr.Network("post webhook", telemetry.RedactError(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post webhook")
		w.tel.ReportBroken(report_webhook_notify, err)
		return err
	}
	if !res.IsSuccess() {
		err = apperr.Network(fmt.Sprintf("post webhook: unexpected status %s", res.Status()), nil)
		span.SetStatus(codes.Error, res.Status())
		w.tel.ReportBroken(report_webhook_notify, err, res.String())
		return err
	}

	w.tel.ReportDebug("webhook delivered", res.StatusCode())
	return nil
}

// Disabled stands in for a Webhook when no url is configured, every Notify
// fails with apperr.ErrConfiguration.
type Disabled struct{}

func (Disabled) Notify(context.Context, Message) error {
	return apperr.Configuration("post webhook: no webhook url configured", nil)
}
