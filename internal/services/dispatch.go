// Package services – DispatchService
//
// The dispatch router drives a validated send request through the full
// pipeline: access validation, identity resolution, capability gating,
// adapter invocation, and audit persistence. Every attempt, successful or
// failed, leaves exactly one message row behind. The batch coordinator
// reuses the same pipeline per item, sequentially, isolating failures so a
// bad item never fails its siblings.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// tenant/channel identifiers and the payload kind.
package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/language"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// DefaultMaxBatchSize caps the number of items accepted in one batch call.
const DefaultMaxBatchSize = 100

// Field limits shared by the single-send and batch pipelines. The HTTP layer
// enforces the same bounds through binding tags, but batch items bypass
// binding so a violation must fail here, inside the per-item pipeline.
const (
	maxRecipientLen = 20
	maxTextLen      = 4096
	maxCaptionLen   = 1024
	maxFilenameLen  = 255
)

// validateRecipient checks presence and length of the external address.
func validateRecipient(to string) error {
	if strings.TrimSpace(to) == "" {
		return E(KindValidation, "recipient is required")
	}
	if len(to) > maxRecipientLen {
		return Ef(KindValidation, "recipient exceeds %d characters", maxRecipientLen)
	}
	return nil
}

// AccessValidator is the access-validation dependency of the router
// (implemented by AccessService).
type AccessValidator interface {
	Validate(ctx context.Context, tenantID, channelID uint) (*domain.ChannelConnection, error)
}

// IdentityResolver is the identity-resolution dependency of the router
// (implemented by IdentityService).
type IdentityResolver interface {
	ResolveContact(ctx context.Context, tenantID uint, rawAddress string) (*domain.Contact, error)
	ResolveConversation(ctx context.Context, contact *domain.Contact, conn *domain.ChannelConnection) (*domain.Conversation, error)
}

// MessageRepo defines the repository contract required by DispatchService.
type MessageRepo interface {
	// CreateMessage inserts one dispatch-attempt audit row.
	CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) (*domain.Message, error)
}

// SendResult is the uniform envelope returned for every dispatch, whatever
// the adapter's native response looked like. Defaults are applied here and
// nowhere else: status "sent" and the persistence timestamp when the adapter
// omits its own.
type SendResult struct {
	ID             uint          `json:"id"`
	ExternalID     string        `json:"external_id,omitempty"`
	Status         string        `json:"status"`
	Timestamp      time.Time     `json:"timestamp"`
	ChannelType    channels.Type `json:"channel_type"`
	ConversationID uint          `json:"conversation_id"`
	Error          string        `json:"error,omitempty"`
}

// BatchItem is one entry of a batch send: either a text send (Message set)
// or a media send (MediaType and MediaURL set).
type BatchItem struct {
	ChannelID uint               `json:"channel_id"`
	To        string             `json:"to"`
	Message   string             `json:"message,omitempty"`
	MediaType channels.MediaKind `json:"media_type,omitempty"`
	MediaURL  string             `json:"media_url,omitempty"`
	Caption   string             `json:"caption,omitempty"`
	Filename  string             `json:"filename,omitempty"`
}

// DispatchService routes outbound messages to channel adapters.
type DispatchService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Access validates channel ownership before anything else runs.
	Access AccessValidator
	// Identity resolves contacts and conversations.
	Identity IdentityResolver
	// Registry is the fixed channel-type → adapter table.
	Registry *channels.Registry
	// Repo persists message audit rows.
	Repo MessageRepo

	// SystemUserID identifies the platform as the message sender. Injected
	// from configuration; deployments and tests vary it freely.
	SystemUserID string

	// MaxBatchSize overrides DefaultMaxBatchSize when > 0.
	MaxBatchSize int
}

func (s *DispatchService) maxBatch() int {
	if s.MaxBatchSize > 0 {
		return s.MaxBatchSize
	}
	return DefaultMaxBatchSize
}

// SendText dispatches a plain-text message.
func (s *DispatchService) SendText(ctx context.Context, tenantID, channelID uint, to, text string) (*SendResult, error) {
	ctx, span := s.startSpan(ctx, "SendText", tenantID, channelID)
	defer span.End()

	if err := validateRecipient(to); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, E(KindValidation, "message is required")
	}
	if len(text) > maxTextLen {
		return nil, Ef(KindValidation, "message exceeds %d characters", maxTextLen)
	}

	conn, contact, conv, err := s.resolve(ctx, tenantID, channelID, to)
	if err != nil {
		return nil, err
	}
	caps, err := s.capability(conn)
	if err != nil {
		return nil, err
	}
	if !caps.Text {
		return nil, Ef(KindUnsupportedOperation, "channel %s does not support text messages", conn.ChannelType)
	}
	adapter, err := s.adapter(conn)
	if err != nil {
		return nil, err
	}

	res, sendErr := adapter.SendMessage(ctx, conn.ID, s.SystemUserID, contact.CanonicalIdentifier, text)
	return s.finish(ctx, conn, conv, domain.KindText, text, nil, res, sendErr)
}

// SendMedia dispatches a media attachment by URL. The media kind must be in
// the channel's capability entry; violations fail before any adapter call.
func (s *DispatchService) SendMedia(ctx context.Context, tenantID, channelID uint, to string, kind channels.MediaKind, mediaURL, caption, filename string) (*SendResult, error) {
	ctx, span := s.startSpan(ctx, "SendMedia", tenantID, channelID)
	defer span.End()

	if err := validateRecipient(to); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, Ef(KindValidation, "unknown media type %q", kind)
	}
	if strings.TrimSpace(mediaURL) == "" {
		return nil, E(KindValidation, "media_url is required")
	}
	if u, err := url.ParseRequestURI(mediaURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, E(KindValidation, "media_url must be an absolute URL")
	}
	if len(caption) > maxCaptionLen {
		return nil, Ef(KindValidation, "caption exceeds %d characters", maxCaptionLen)
	}
	if len(filename) > maxFilenameLen {
		return nil, Ef(KindValidation, "filename exceeds %d characters", maxFilenameLen)
	}

	conn, contact, conv, err := s.resolve(ctx, tenantID, channelID, to)
	if err != nil {
		return nil, err
	}
	caps, err := s.capability(conn)
	if err != nil {
		return nil, err
	}
	if !caps.SupportsMedia(kind) {
		return nil, Ef(KindUnsupportedMediaType, "channel %s does not accept %s media", conn.ChannelType, kind)
	}
	adapter, err := s.adapter(conn)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{"media_kind": string(kind), "media_url": mediaURL}
	if caption != "" {
		meta["caption"] = caption
	}
	if filename != "" {
		meta["filename"] = filename
	}

	res, sendErr := adapter.SendMedia(ctx, conn.ID, s.SystemUserID, contact.CanonicalIdentifier, kind, mediaURL, caption, filename)
	return s.finish(ctx, conn, conv, domain.KindMedia, mediaURL, meta, res, sendErr)
}

// SendTemplate dispatches a pre-approved template message. Only the WhatsApp
// Business-API channel variants carry the template capability.
func (s *DispatchService) SendTemplate(ctx context.Context, tenantID, channelID uint, to, templateName, lang string, components []channels.TemplateComponent) (*SendResult, error) {
	ctx, span := s.startSpan(ctx, "SendTemplate", tenantID, channelID)
	defer span.End()

	if err := validateRecipient(to); err != nil {
		return nil, err
	}
	if strings.TrimSpace(templateName) == "" {
		return nil, E(KindValidation, "template_name is required")
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, Ef(KindValidation, "invalid template language %q", lang)
	}

	conn, contact, conv, err := s.resolve(ctx, tenantID, channelID, to)
	if err != nil {
		return nil, err
	}
	caps, err := s.capability(conn)
	if err != nil {
		return nil, err
	}
	if !caps.Template {
		return nil, Ef(KindUnsupportedOperation, "channel %s does not support template messages", conn.ChannelType)
	}
	adapter, err := s.adapter(conn)
	if err != nil {
		return nil, err
	}
	sender, ok := adapter.(channels.TemplateSender)
	if !ok {
		return nil, Ef(KindDispatchFailed, "adapter for %s has no template support", conn.ChannelType)
	}

	meta := map[string]any{"template_name": templateName, "template_language": tag.String()}
	res, sendErr := sender.SendTemplateMessage(ctx, conn.ID, s.SystemUserID, tenantID, contact.CanonicalIdentifier, templateName, tag.String(), components)
	return s.finish(ctx, conn, conv, domain.KindTemplate, templateName, meta, res, sendErr)
}

// SendInteractive dispatches a button or list payload, shaping the generic
// content into the channel-native structure before the adapter sees it.
func (s *DispatchService) SendInteractive(ctx context.Context, tenantID, channelID uint, to string, content channels.InteractiveContent) (*SendResult, error) {
	ctx, span := s.startSpan(ctx, "SendInteractive", tenantID, channelID)
	defer span.End()

	if err := validateRecipient(to); err != nil {
		return nil, err
	}

	conn, contact, conv, err := s.resolve(ctx, tenantID, channelID, to)
	if err != nil {
		return nil, err
	}
	caps, err := s.capability(conn)
	if err != nil {
		return nil, err
	}
	if !caps.Interactive {
		return nil, Ef(KindUnsupportedOperation, "channel %s does not support interactive messages", conn.ChannelType)
	}
	adapter, err := s.adapter(conn)
	if err != nil {
		return nil, err
	}
	sender, ok := adapter.(channels.InteractiveSender)
	if !ok {
		return nil, Ef(KindDispatchFailed, "adapter for %s has no interactive support", conn.ChannelType)
	}

	payload, err := channels.BuildWhatsAppInteractive(contact.CanonicalIdentifier, content)
	if err != nil {
		return nil, Wrap(KindValidation, "invalid interactive content", err)
	}

	meta := map[string]any{"interactive_type": content.Type}
	ires, sendErr := sender.SendInteractiveMessage(ctx, conn.ID, payload)
	if sendErr == nil && ires != nil && !ires.Success {
		sendErr = errors.New("adapter reported interactive send failure")
	}
	var res *channels.Result
	if sendErr == nil && ires != nil {
		res = &channels.Result{ExternalID: ires.MessageID}
	}
	return s.finish(ctx, conn, conv, domain.KindInteractive, content.Body, meta, res, sendErr)
}

// SendBatch drives up to maxBatch() independent sends through the single-send
// pipeline, strictly sequentially, and returns one result per input item in
// input order. A failing item is converted to a {status:"failed",
// conversation_id:0} entry and processing continues; once input validation
// passes, SendBatch itself never returns an error.
//
// Callers own failure detection: a 2xx batch response can still contain
// failed entries, and nothing else flags them.
func (s *DispatchService) SendBatch(ctx context.Context, tenantID uint, items []BatchItem) ([]SendResult, error) {
	ctx, span := s.startSpan(ctx, "SendBatch", tenantID, 0)
	span.SetAttributes(attribute.Int("batch.size", len(items)))
	defer span.End()

	if len(items) == 0 {
		return nil, E(KindValidation, "batch must contain at least one message")
	}
	if max := s.maxBatch(); len(items) > max {
		return nil, Ef(KindBatchSizeExceeded, "batch size %d exceeds maximum of %d", len(items), max)
	}

	// Sequential on purpose: external networks rate-limit per credential, so
	// unordered fan-out of one batch risks cascading throttling, and ordering
	// stays trivial to reason about. Each item completes fully before the
	// next starts.
	results := make([]SendResult, 0, len(items))
	for i := range items {
		res, err := s.dispatchItem(ctx, tenantID, items[i])
		if err != nil {
			results = append(results, SendResult{
				Status:         domain.MessageStatusFailed,
				Timestamp:      time.Now().UTC(),
				ConversationID: 0,
				Error:          err.Error(),
			})
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

// dispatchItem routes one batch entry through the text or media pipeline.
// Panics from a misbehaving adapter are confined to the item, matching the
// per-item isolation contract.
func (s *DispatchService) dispatchItem(ctx context.Context, tenantID uint, item BatchItem) (res *SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, Ef(KindDispatchFailed, "adapter panic: %v", r)
		}
	}()

	if item.MediaURL != "" || item.MediaType != "" {
		return s.SendMedia(ctx, tenantID, item.ChannelID, item.To, item.MediaType, item.MediaURL, item.Caption, item.Filename)
	}
	return s.SendText(ctx, tenantID, item.ChannelID, item.To, item.Message)
}

// --- pipeline internals ---

// resolve runs access validation then identity resolution, in that order, so
// unauthorized requests create no contact or conversation rows.
func (s *DispatchService) resolve(ctx context.Context, tenantID, channelID uint, to string) (*domain.ChannelConnection, *domain.Contact, *domain.Conversation, error) {
	conn, err := s.Access.Validate(ctx, tenantID, channelID)
	if err != nil {
		return nil, nil, nil, err
	}
	contact, err := s.Identity.ResolveContact(ctx, tenantID, to)
	if err != nil {
		return nil, nil, nil, err
	}
	conv, err := s.Identity.ResolveConversation(ctx, contact, conn)
	if err != nil {
		return nil, nil, nil, err
	}
	return conn, contact, conv, nil
}

func (s *DispatchService) capability(conn *domain.ChannelConnection) (channels.Capability, error) {
	caps, ok := channels.CapabilityFor(conn.ChannelType)
	if !ok {
		return channels.Capability{}, Ef(KindDispatchFailed, "no capability entry for channel type %s", conn.ChannelType)
	}
	return caps, nil
}

func (s *DispatchService) adapter(conn *domain.ChannelConnection) (channels.Adapter, error) {
	a, ok := s.Registry.Adapter(conn.ChannelType)
	if !ok {
		return nil, Ef(KindDispatchFailed, "no adapter registered for channel type %s", conn.ChannelType)
	}
	return a, nil
}

// finish persists the attempt and builds the envelope. On adapter failure it
// records a failed row without an external id and returns the classified
// error; on success it records the adapter's identifiers with defaults
// applied.
func (s *DispatchService) finish(ctx context.Context, conn *domain.ChannelConnection, conv *domain.Conversation, kind domain.MessageKind, content string, meta map[string]any, res *channels.Result, sendErr error) (*SendResult, error) {
	now := time.Now().UTC()

	if sendErr != nil {
		classified := classifyAdapterError(sendErr)
		failMeta := meta
		if failMeta == nil {
			failMeta = map[string]any{}
		}
		failMeta["error"] = classified.Message
		failMeta["error_kind"] = string(classified.Kind)

		// Best effort: the audit row matters, but a persistence hiccup must
		// not mask the dispatch failure the caller needs to see.
		_, _ = s.Repo.CreateMessage(ctx, s.DB, &domain.Message{
			ConversationID: conv.ID,
			SenderID:       s.SystemUserID,
			Content:        content,
			Kind:           kind,
			Direction:      domain.DirectionOutbound,
			Status:         domain.MessageStatusFailed,
			Metadata:       failMeta,
			CreatedAt:      now,
		})
		return nil, classified
	}

	status := domain.MessageStatusSent
	externalID := ""
	timestamp := now
	if res != nil {
		if res.Status != "" {
			status = res.Status
		}
		if !res.CreatedAt.IsZero() {
			timestamp = res.CreatedAt
		}
		externalID = res.ExternalID
	}

	msg, err := s.Repo.CreateMessage(ctx, s.DB, &domain.Message{
		ConversationID: conv.ID,
		SenderID:       s.SystemUserID,
		Content:        content,
		Kind:           kind,
		Direction:      domain.DirectionOutbound,
		Status:         status,
		ExternalID:     externalID,
		Metadata:       meta,
		CreatedAt:      now,
	})
	if err != nil {
		return nil, Wrap(KindDispatchFailed, "message persistence failed", err)
	}

	return &SendResult{
		ID:             msg.ID,
		ExternalID:     externalID,
		Status:         status,
		Timestamp:      timestamp,
		ChannelType:    conn.ChannelType,
		ConversationID: conv.ID,
	}, nil
}

// classifyAdapterError maps an adapter failure onto the error taxonomy.
// Audio-conversion failures are matched by typed sentinel, never by scanning
// message text.
func classifyAdapterError(err error) *Error {
	if errors.Is(err, channels.ErrAudioConversion) {
		return Wrap(KindAudioConversionFailed, "media could not be converted for this channel", err)
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return Wrap(KindDispatchFailed, "adapter send failed", err)
}

func (s *DispatchService) startSpan(ctx context.Context, op string, tenantID, channelID uint) (context.Context, trace.Span) {
	tr := otel.Tracer("services/DispatchService")
	attrs := []attribute.KeyValue{attribute.Int64("tenant.id", int64(tenantID))}
	if channelID != 0 {
		attrs = append(attrs, attribute.Int64("channel.id", int64(channelID)))
	}
	return tr.Start(ctx, op, trace.WithAttributes(attrs...))
}
