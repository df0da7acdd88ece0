package domain

import (
	"errors"
	"testing"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
)

func TestChannelConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		typ  channels.Type
		cfg  ChannelConfig
		ok   bool
	}{
		{
			"whatsapp complete",
			channels.TypeWhatsAppOfficial,
			ChannelConfig{WhatsApp: &WhatsAppConfig{PhoneNumberID: "123", AccessToken: "tok"}},
			true,
		},
		{
			"whatsapp business variant shares the section",
			channels.TypeWhatsAppBusiness,
			ChannelConfig{WhatsApp: &WhatsAppConfig{PhoneNumberID: "123", AccessToken: "tok"}},
			true,
		},
		{
			"whatsapp missing token",
			channels.TypeWhatsAppOfficial,
			ChannelConfig{WhatsApp: &WhatsAppConfig{PhoneNumberID: "123"}},
			false,
		},
		{
			"whatsapp section absent",
			channels.TypeWhatsAppOfficial,
			ChannelConfig{Telegram: &TelegramConfig{BotToken: "t"}},
			false,
		},
		{
			"sms complete",
			channels.TypeSMS,
			ChannelConfig{Twilio: &TwilioConfig{AccountSID: "AC1", AuthToken: "a", FromNumber: "+15550001111"}},
			true,
		},
		{
			"voice shares the twilio section",
			channels.TypeVoice,
			ChannelConfig{Twilio: &TwilioConfig{AccountSID: "AC1", AuthToken: "a", FromNumber: "+15550001111"}},
			true,
		},
		{
			"sms missing from number",
			channels.TypeSMS,
			ChannelConfig{Twilio: &TwilioConfig{AccountSID: "AC1", AuthToken: "a"}},
			false,
		},
		{
			"telegram complete",
			channels.TypeTelegram,
			ChannelConfig{Telegram: &TelegramConfig{BotToken: "t"}},
			true,
		},
		{
			"instagram complete",
			channels.TypeInstagram,
			ChannelConfig{Meta: &MetaConfig{PageID: "p", AccessToken: "tok"}},
			true,
		},
		{
			"messenger missing page id",
			channels.TypeMessenger,
			ChannelConfig{Meta: &MetaConfig{AccessToken: "tok"}},
			false,
		},
		{
			"tiktok complete",
			channels.TypeTikTok,
			ChannelConfig{TikTok: &TikTokConfig{AppID: "a", AccessToken: "tok"}},
			true,
		},
		{
			"email complete",
			channels.TypeEmail,
			ChannelConfig{Email: &EmailConfig{Host: "smtp.example.com", FromAddress: "inbox@example.com"}},
			true,
		},
		{
			"webchat complete",
			channels.TypeWebchat,
			ChannelConfig{Webchat: &WebchatConfig{DeliveryURL: "https://widget.example.com/deliver"}},
			true,
		},
		{
			"webchat missing delivery url",
			channels.TypeWebchat,
			ChannelConfig{Webchat: &WebchatConfig{WidgetKey: "k"}},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate(tc.typ)
			if tc.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrConfigMismatch) {
					t.Errorf("err = %v, want ErrConfigMismatch", err)
				}
			}
		})
	}
}

func TestChannelConfigValidate_UnknownType(t *testing.T) {
	if err := (ChannelConfig{}).Validate(channels.Type("carrier_pigeon")); err == nil {
		t.Fatal("expected error for unknown channel type")
	}
}
