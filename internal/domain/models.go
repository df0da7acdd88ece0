// Package domain defines the persistence models for channel connections,
// contacts, conversations, and messages. These types are mapped with GORM
// and form the core data layer of the dispatch engine.
package domain

import (
	"time"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
)

// ChannelStatus is the lifecycle state of a channel connection.
type ChannelStatus string

// Channel connection states. Only active connections may dispatch.
const (
	ChannelActive       ChannelStatus = "active"
	ChannelInactive     ChannelStatus = "inactive"
	ChannelDisconnected ChannelStatus = "disconnected"
	ChannelError        ChannelStatus = "error"
)

// ChannelConnection binds the platform to one external messaging account.
// Connections are owned by a tenant and created/updated by channel-connection
// management; the dispatch core reads them and never writes.
//
// Fields:
//   - ID: auto-increment primary key.
//   - TenantID: owning tenant; cross-tenant access is rejected upstream.
//   - ChannelType: closed enum over the supported channel variants.
//   - Status: active|inactive|disconnected|error; only active dispatches.
//   - Config: per-channel credentials/settings, validated at creation time.
type ChannelConnection struct {
	ID          uint          `json:"id"           gorm:"primaryKey"`
	TenantID    uint          `json:"tenant_id"    gorm:"not null;index:idx_channel_tenant"`
	Name        string        `json:"name"         gorm:"type:varchar(128);not null;default:''"`
	ChannelType channels.Type `json:"channel_type" gorm:"type:varchar(32);not null"`
	Status      ChannelStatus `json:"status"       gorm:"type:varchar(16);not null;default:'active'"`
	Config      ChannelConfig `json:"-"            gorm:"serializer:json"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName returns the database table name for ChannelConnection.
func (ChannelConnection) TableName() string { return "channel_connections" }

// Contact is a tenant-scoped external address normalized to one canonical
// record. The (tenant_id, canonical_identifier) pair is unique: a second send
// to the same normalized address resolves to the same row, never a duplicate.
type Contact struct {
	ID                  uint      `json:"id"                   gorm:"primaryKey"`
	TenantID            uint      `json:"tenant_id"            gorm:"not null;uniqueIndex:ux_contacts_tenant_identifier,priority:1"`
	CanonicalIdentifier string    `json:"canonical_identifier" gorm:"type:varchar(64);not null;uniqueIndex:ux_contacts_tenant_identifier,priority:2"`
	DisplayName         string    `json:"display_name"         gorm:"type:varchar(255);not null;default:''"`
	Source              string    `json:"source"               gorm:"type:varchar(32);not null;default:'api'"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

// Conversation states.
const (
	ConversationActive ConversationStatus = "active"
	ConversationClosed ConversationStatus = "closed"
)

// Conversation is the session scope pairing one contact with one channel
// connection; messages accumulate inside it. (contact_id,
// channel_connection_id) is unique. ChannelType and TenantID are copied from
// the connection at creation so conversation queries never need a join.
type Conversation struct {
	ID                  uint               `json:"id"                    gorm:"primaryKey"`
	ContactID           uint               `json:"contact_id"            gorm:"not null;uniqueIndex:ux_conversations_contact_channel,priority:1"`
	ChannelConnectionID uint               `json:"channel_connection_id" gorm:"not null;uniqueIndex:ux_conversations_contact_channel,priority:2"`
	ChannelType         channels.Type      `json:"channel_type"          gorm:"type:varchar(32);not null"`
	TenantID            uint               `json:"tenant_id"             gorm:"not null;index:idx_conversations_tenant"`
	Status              ConversationStatus `json:"status"                gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`

	// Contact is the conversation peer. Conversations are cascade-deleted
	// if their contact is removed.
	Contact Contact `json:"-" gorm:"foreignKey:ContactID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// MessageKind categorizes an outbound payload.
type MessageKind string

// Message kinds.
const (
	KindText        MessageKind = "text"
	KindMedia       MessageKind = "media"
	KindTemplate    MessageKind = "template"
	KindInteractive MessageKind = "interactive"
)

// Message directions.
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Message statuses recorded by the dispatch core. Adapters may report richer
// vendor statuses; whatever they return is stored verbatim.
const (
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// Message is an append-only audit record of a dispatch attempt, successful or
// not. ExternalID is set only when the adapter accepted the message; rows are
// immutable after creation except for status/external-id backfill.
type Message struct {
	ID             uint           `json:"id"              gorm:"primaryKey"`
	ConversationID uint           `json:"conversation_id" gorm:"not null;index:idx_conversation_msgs,priority:1"`
	SenderID       string         `json:"sender_id"       gorm:"type:varchar(64);not null"`
	Content        string         `json:"content"         gorm:"type:text;not null"`
	Kind           MessageKind    `json:"kind"            gorm:"type:varchar(16);not null;check:kind IN ('text','media','template','interactive')"`
	Direction      string         `json:"direction"       gorm:"type:varchar(16);not null;check:direction IN ('outbound','inbound')"`
	Status         string         `json:"status"          gorm:"type:varchar(32);not null"`
	ExternalID     string         `json:"external_id,omitempty" gorm:"type:varchar(128);not null;default:'';index"`
	Metadata       map[string]any `json:"metadata,omitempty"    gorm:"serializer:json"`
	CreatedAt      time.Time      `json:"created_at"      gorm:"index:idx_conversation_msgs,priority:2"`
	UpdatedAt      time.Time      `json:"updated_at"`

	// Conversation is the owning session. Messages are cascade-deleted
	// if their conversation is removed.
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
