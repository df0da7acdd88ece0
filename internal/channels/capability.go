package channels

// Capability declares which operations and media kinds one channel type
// supports. The dispatch router consults this table before invoking an
// adapter and fails fast on unsupported requests, so calls guaranteed to be
// rejected at the network boundary never consume adapter quota.
type Capability struct {
	Text        bool
	MediaKinds  []MediaKind
	Template    bool
	Interactive bool
}

// SupportsMedia reports whether media kind k is allowed on this channel.
func (c Capability) SupportsMedia(k MediaKind) bool {
	for _, m := range c.MediaKinds {
		if m == k {
			return true
		}
	}
	return false
}

// allMedia is the full media-kind set for channels without restrictions.
var allMedia = []MediaKind{MediaImage, MediaVideo, MediaAudio, MediaDocument}

// capabilities is the static per-channel capability table.
//
// Notable restrictions:
//   - templates and interactive payloads exist only on the two WhatsApp
//     Business-API variants
//   - Instagram rejects document media entirely
//   - SMS carries only image attachments (MMS), voice only audio
//   - TikTok takes image and video only
var capabilities = map[Type]Capability{
	TypeWhatsAppOfficial: {Text: true, MediaKinds: allMedia, Template: true, Interactive: true},
	TypeWhatsAppBusiness: {Text: true, MediaKinds: allMedia, Template: true, Interactive: true},
	TypeSMS:              {Text: true, MediaKinds: []MediaKind{MediaImage}},
	TypeVoice:            {Text: true, MediaKinds: []MediaKind{MediaAudio}},
	TypeTelegram:         {Text: true, MediaKinds: allMedia},
	TypeInstagram:        {Text: true, MediaKinds: []MediaKind{MediaImage, MediaVideo, MediaAudio}},
	TypeMessenger:        {Text: true, MediaKinds: allMedia},
	TypeTikTok:           {Text: true, MediaKinds: []MediaKind{MediaImage, MediaVideo}},
	TypeEmail:            {Text: true, MediaKinds: allMedia},
	TypeWebchat:          {Text: true, MediaKinds: allMedia},
}

// CapabilityFor returns the capability entry for t. The second return value
// is false for unknown channel types.
func CapabilityFor(t Type) (Capability, bool) {
	c, ok := capabilities[t]
	return c, ok
}
