// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-only repository functions for the
// ChannelConnection model; connections are written by channel-connection
// management, never by the dispatch core.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetChannelConnection fetches a connection by id regardless of tenant.
// Tenant ownership is checked by the access validator so that not-found and
// wrong-tenant remain distinguishable error kinds.
func GetChannelConnection(ctx context.Context, db *gorm.DB, id uint) (*domain.ChannelConnection, error) {
	var conn domain.ChannelConnection
	if err := db.WithContext(ctx).First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}
