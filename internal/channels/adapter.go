package channels

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAudioConversion is the typed sentinel adapters wrap when an audio/media
// payload could not be transcoded for the target network. The dispatch core
// matches it with errors.Is and maps it to a client error instead of a
// server failure; no error-text scanning is involved.
var ErrAudioConversion = errors.New("audio conversion failed")

// Result is an adapter's report of an accepted message. Adapters may leave
// Status or CreatedAt zero; the dispatch core applies defaults when building
// the response envelope.
type Result struct {
	// ExternalID is the message identifier assigned by the external network.
	ExternalID string
	// Status is the vendor's delivery status, if it reports one.
	Status string
	// CreatedAt is the vendor's acceptance timestamp, if it reports one.
	CreatedAt time.Time
}

// InteractiveResult is the reduced response shape of interactive sends.
type InteractiveResult struct {
	Success   bool
	MessageID string
}

// TemplateComponent is one pass-through component of a pre-approved template
// (header/body/button parameter blocks). The dispatch core forwards
// components verbatim; their inner structure is a contract between the
// template author and the network.
type TemplateComponent map[string]any

// Adapter is the contract every channel collaborator implements. The adapter
// owns the wire protocol, credentials lookup for its channel connection, and
// any transport-level retry policy; the dispatch core performs no retries.
//
// Adapters may block on network I/O and should honor ctx cancellation.
// Errors returned from an adapter are recorded per attempt; inside a batch
// they fail only the item that produced them.
type Adapter interface {
	// SendMessage delivers plain text to the external address.
	SendMessage(ctx context.Context, channelID uint, systemUserID, to, text string) (*Result, error)

	// SendMedia delivers a media attachment by URL. Caption and filename are
	// optional; filename is meaningful for document media only.
	SendMedia(ctx context.Context, channelID uint, systemUserID, to string, kind MediaKind, mediaURL, caption, filename string) (*Result, error)
}

// TemplateSender is implemented by adapters whose channel supports
// pre-approved template messages (the WhatsApp Business-API variants).
type TemplateSender interface {
	SendTemplateMessage(ctx context.Context, channelID uint, systemUserID string, tenantID uint, to, templateName, language string, components []TemplateComponent) (*Result, error)
}

// InteractiveSender is implemented by adapters whose channel supports
// interactive button/list payloads. The payload arrives already shaped into
// the channel-native structure.
type InteractiveSender interface {
	SendInteractiveMessage(ctx context.Context, channelID uint, payload InteractivePayload) (*InteractiveResult, error)
}

// Registry is the fixed channel-type → adapter table. It is populated once
// during process startup and read-only afterwards, so lookups need no
// locking.
type Registry struct {
	adapters map[Type]Adapter
}

// NewRegistry returns an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Type]Adapter)}
}

// Register binds an adapter to a channel type. It panics on an invalid type
// or a duplicate registration: both are wiring bugs that must fail at start,
// not at dispatch time.
func (r *Registry) Register(t Type, a Adapter) {
	if !t.IsValid() {
		panic(fmt.Sprintf("channels: register unknown channel type %q", t))
	}
	if a == nil {
		panic(fmt.Sprintf("channels: nil adapter for %q", t))
	}
	if _, dup := r.adapters[t]; dup {
		panic(fmt.Sprintf("channels: duplicate adapter for %q", t))
	}
	r.adapters[t] = a
}

// Adapter returns the adapter bound to t, if any.
func (r *Registry) Adapter(t Type) (Adapter, bool) {
	a, ok := r.adapters[t]
	return a, ok
}
