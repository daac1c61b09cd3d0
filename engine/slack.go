package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vainamoinen-app/vainamoinen/abuse"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

var ErrNotifyThrottled = errors.New("ban notification dropped by rate limit")

// Posts automatic ban notices to a Slack "incoming webhook". Sends beyond the limiter's rate are dropped.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
	Limiter    *rate.Limiter
}

var _ abuse.BanNotifier = (*SlackNotifier)(nil)

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Limiter: rate.NewLimiter(rate.Every(time.Minute/20), 5),
	}
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

func (n *SlackNotifier) SendBan(ctx context.Context, ev abuse.BanEvent) error {
	if n.Limiter != nil && !n.Limiter.Allow() {
		notificationsSent.WithLabelValues("throttled").Inc()
		return ErrNotifyThrottled
	}
	if err := n.send(ctx, slackBanBody(ev)); err != nil {
		notificationsSent.WithLabelValues("error").Inc()
		return err
	}
	notificationsSent.WithLabelValues("ok").Inc()
	return nil
}

func slackBanBody(ev abuse.BanEvent) string {
	scope := "hourly"
	switch {
	case ev.Hourly && ev.Daily:
		scope = "hourly and daily"
	case ev.Daily:
		scope = "daily"
	}
	return fmt.Sprintf("⚠️ Väinämöinen auto-ban ⚠️\n`%s` exceeded the %s action limit (%d in the last hour, %d in the last day)\n",
		ev.Username, scope, ev.HourlyCount, ev.DailyCount)
}

func (n *SlackNotifier) send(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}
