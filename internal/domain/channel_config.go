// Per-channel connection configuration.
//
// Each channel type carries structurally different credentials, so Config is
// a tagged union: exactly one section is populated, determined by the
// connection's ChannelType. The union is validated once when the connection
// is created; the dispatch core and adapters read typed fields and never
// probe loose properties.
package domain

import (
	"errors"
	"fmt"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
)

// WhatsAppConfig holds Cloud-API / Business-API credentials.
type WhatsAppConfig struct {
	PhoneNumberID string `json:"phone_number_id"`
	BusinessID    string `json:"business_id,omitempty"`
	AccessToken   string `json:"access_token"`
}

// TwilioConfig holds SMS/voice credentials.
type TwilioConfig struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	FromNumber string `json:"from_number"`
}

// TelegramConfig holds Bot API credentials.
type TelegramConfig struct {
	BotToken string `json:"bot_token"`
}

// MetaConfig holds Graph API credentials shared by Instagram and Messenger.
type MetaConfig struct {
	PageID      string `json:"page_id"`
	AccessToken string `json:"access_token"`
}

// TikTokConfig holds TikTok business-messaging credentials.
type TikTokConfig struct {
	AppID       string `json:"app_id"`
	AccessToken string `json:"access_token"`
}

// EmailConfig holds SMTP sending settings.
type EmailConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromAddress string `json:"from_address"`
}

// WebchatConfig holds web-chat widget delivery settings.
type WebchatConfig struct {
	// DeliveryURL is the widget transport endpoint outbound messages are
	// posted to.
	DeliveryURL string `json:"delivery_url"`
	// WidgetKey authenticates the platform against the widget transport.
	WidgetKey string `json:"widget_key,omitempty"`
}

// ChannelConfig is the per-channel credentials/config union stored on a
// ChannelConnection. The section matching the connection's channel type must
// be set; all others must be nil.
type ChannelConfig struct {
	WhatsApp *WhatsAppConfig `json:"whatsapp,omitempty"`
	Twilio   *TwilioConfig   `json:"twilio,omitempty"`
	Telegram *TelegramConfig `json:"telegram,omitempty"`
	Meta     *MetaConfig     `json:"meta,omitempty"`
	TikTok   *TikTokConfig   `json:"tiktok,omitempty"`
	Email    *EmailConfig    `json:"email,omitempty"`
	Webchat  *WebchatConfig  `json:"webchat,omitempty"`
}

// ErrConfigMismatch indicates the populated config section does not match the
// connection's channel type.
var ErrConfigMismatch = errors.New("channel config does not match channel type")

// Validate checks that the section required by t is populated with its
// mandatory fields. Called by connection management at creation/update time;
// the dispatch core assumes stored configs already passed it.
func (c ChannelConfig) Validate(t channels.Type) error {
	switch t {
	case channels.TypeWhatsAppOfficial, channels.TypeWhatsAppBusiness:
		if c.WhatsApp == nil || c.WhatsApp.PhoneNumberID == "" || c.WhatsApp.AccessToken == "" {
			return fmt.Errorf("%w: %s requires whatsapp phone_number_id and access_token", ErrConfigMismatch, t)
		}
	case channels.TypeSMS, channels.TypeVoice:
		if c.Twilio == nil || c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.FromNumber == "" {
			return fmt.Errorf("%w: %s requires twilio account_sid, auth_token and from_number", ErrConfigMismatch, t)
		}
	case channels.TypeTelegram:
		if c.Telegram == nil || c.Telegram.BotToken == "" {
			return fmt.Errorf("%w: telegram requires bot_token", ErrConfigMismatch)
		}
	case channels.TypeInstagram, channels.TypeMessenger:
		if c.Meta == nil || c.Meta.PageID == "" || c.Meta.AccessToken == "" {
			return fmt.Errorf("%w: %s requires meta page_id and access_token", ErrConfigMismatch, t)
		}
	case channels.TypeTikTok:
		if c.TikTok == nil || c.TikTok.AppID == "" || c.TikTok.AccessToken == "" {
			return fmt.Errorf("%w: tiktok requires app_id and access_token", ErrConfigMismatch)
		}
	case channels.TypeEmail:
		if c.Email == nil || c.Email.Host == "" || c.Email.FromAddress == "" {
			return fmt.Errorf("%w: email requires host and from_address", ErrConfigMismatch)
		}
	case channels.TypeWebchat:
		if c.Webchat == nil || c.Webchat.DeliveryURL == "" {
			return fmt.Errorf("%w: webchat requires delivery_url", ErrConfigMismatch)
		}
	default:
		return fmt.Errorf("unknown channel type %q", t)
	}
	return nil
}
