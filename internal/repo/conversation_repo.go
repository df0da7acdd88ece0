// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model, with the same upsert discipline as contacts: the
// (contact_id, channel_connection_id) pair is unique and creation is
// insert-on-conflict, never check-then-insert.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// GetConversationByContactAndChannel fetches the conversation pairing a
// contact with a channel connection. Returns ErrNotFound when absent.
func GetConversationByContactAndChannel(ctx context.Context, db *gorm.DB, contactID, channelID uint) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := db.WithContext(ctx).
		Where("contact_id = ? AND channel_connection_id = ?", contactID, channelID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetOrCreateConversation resolves the conversation for (contact,
// connection), creating it active with the channel type and tenant copied
// from the connection when absent. Atomic under concurrent callers.
func GetOrCreateConversation(ctx context.Context, db *gorm.DB, contact *domain.Contact, conn *domain.ChannelConnection) (*domain.Conversation, error) {
	now := time.Now().UTC()
	conv := domain.Conversation{
		ContactID:           contact.ID,
		ChannelConnectionID: conn.ID,
		ChannelType:         conn.ChannelType,
		TenantID:            conn.TenantID,
		Status:              domain.ConversationActive,
		CreatedAt:           now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contact_id"}, {Name: "channel_connection_id"}},
			DoNothing: true,
		}).
		Create(&conv)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return GetConversationByContactAndChannel(ctx, db, contact.ID, conn.ID)
	}
	return &conv, nil
}

// GetConversation fetches a conversation by id scoped to a tenant.
func GetConversation(ctx context.Context, db *gorm.DB, id, tenantID uint) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}
