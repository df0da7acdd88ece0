// Package adapters contains concrete channel adapter implementations that
// ship with the platform. Most channels are wired in by the embedding
// process behind the channels.Adapter contract; the web-chat widget is
// first-party, so its adapter lives here. It delivers outbound messages to
// the widget transport's delivery webhook over HTTP.
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// widgetAuthHeader authenticates the platform to the widget transport.
const widgetAuthHeader = "X-Widget-Key"

// ConnectionSource supplies channel connections so the adapter can read its
// per-connection delivery settings.
type ConnectionSource interface {
	GetChannelConnection(ctx context.Context, id uint) (*domain.ChannelConnection, error)
}

// deliveryRequest is the JSON body posted to the widget delivery webhook.
type deliveryRequest struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// deliveryResponse is the widget transport's acknowledgement.
type deliveryResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// Webchat delivers outbound messages to the embeddable web-chat widget.
// It implements channels.Adapter.
type Webchat struct {
	conns  ConnectionSource
	client *resty.Client
}

// NewWebchat constructs the web-chat adapter. timeout bounds one delivery
// call end to end, including resty's internal retries.
func NewWebchat(conns ConnectionSource, timeout time.Duration) *Webchat {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Webchat{conns: conns, client: client}
}

// SendMessage implements channels.Adapter.
func (w *Webchat) SendMessage(ctx context.Context, channelID uint, systemUserID, to, text string) (*channels.Result, error) {
	return w.deliver(ctx, channelID, deliveryRequest{
		To:   to,
		From: systemUserID,
		Kind: "text",
		Text: text,
	})
}

// SendMedia implements channels.Adapter.
func (w *Webchat) SendMedia(ctx context.Context, channelID uint, systemUserID, to string, kind channels.MediaKind, mediaURL, caption, filename string) (*channels.Result, error) {
	return w.deliver(ctx, channelID, deliveryRequest{
		To:       to,
		From:     systemUserID,
		Kind:     string(kind),
		MediaURL: mediaURL,
		Caption:  caption,
		Filename: filename,
	})
}

func (w *Webchat) deliver(ctx context.Context, channelID uint, payload deliveryRequest) (*channels.Result, error) {
	conn, err := w.conns.GetChannelConnection(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("webchat: load connection %d: %w", channelID, err)
	}
	cfg := conn.Config.Webchat
	if cfg == nil || cfg.DeliveryURL == "" {
		return nil, fmt.Errorf("webchat: connection %d has no delivery_url", channelID)
	}

	var ack deliveryResponse
	req := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&ack)
	if cfg.WidgetKey != "" {
		req.SetHeader(widgetAuthHeader, cfg.WidgetKey)
	}

	resp, err := req.Post(cfg.DeliveryURL)
	if err != nil {
		return nil, fmt.Errorf("webchat: delivery request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusAccepted {
		return nil, fmt.Errorf("webchat: unexpected delivery status %d: %s", resp.StatusCode(), resp.String())
	}

	return &channels.Result{
		ExternalID: ack.MessageID,
		Status:     ack.Status,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
