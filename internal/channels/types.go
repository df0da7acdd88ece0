// Package channels defines the closed vocabulary of messaging channels, the
// static capability model declaring what each channel supports, and the
// adapter contract every channel collaborator implements. Adapters are
// registered once at process start into a fixed registry keyed by the channel
// enum; there is no runtime string-keyed dispatch.
package channels

// Type identifies one external messaging network integration.
type Type string

// Supported channel types. TypeWhatsAppOfficial and TypeWhatsAppBusiness are
// the two WhatsApp Business-API variants; only they carry template and
// interactive capabilities.
const (
	TypeWhatsAppOfficial Type = "whatsapp_official"
	TypeWhatsAppBusiness Type = "whatsapp_business"
	TypeSMS              Type = "sms"
	TypeVoice            Type = "voice"
	TypeTelegram         Type = "telegram"
	TypeInstagram        Type = "instagram"
	TypeMessenger        Type = "messenger"
	TypeTikTok           Type = "tiktok"
	TypeEmail            Type = "email"
	TypeWebchat          Type = "webchat"
)

// Types returns every supported channel type.
func Types() []Type {
	return []Type{
		TypeWhatsAppOfficial,
		TypeWhatsAppBusiness,
		TypeSMS,
		TypeVoice,
		TypeTelegram,
		TypeInstagram,
		TypeMessenger,
		TypeTikTok,
		TypeEmail,
		TypeWebchat,
	}
}

// IsValid reports whether t is a known channel type.
func (t Type) IsValid() bool {
	switch t {
	case TypeWhatsAppOfficial, TypeWhatsAppBusiness, TypeSMS, TypeVoice,
		TypeTelegram, TypeInstagram, TypeMessenger, TypeTikTok, TypeEmail, TypeWebchat:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// MediaKind categorizes an outbound media payload.
type MediaKind string

// Supported media kinds.
const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// MediaKinds returns every supported media kind.
func MediaKinds() []MediaKind {
	return []MediaKind{MediaImage, MediaVideo, MediaAudio, MediaDocument}
}

// IsValid reports whether k is a known media kind.
func (k MediaKind) IsValid() bool {
	switch k {
	case MediaImage, MediaVideo, MediaAudio, MediaDocument:
		return true
	}
	return false
}
