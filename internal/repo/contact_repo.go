// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact
// model.
//
// Contact creation is an atomic upsert: two concurrent sends to the same new
// address must converge on one row, so GetOrCreateContact inserts with an
// ON CONFLICT DO NOTHING clause against the (tenant_id, canonical_identifier)
// unique index and re-fetches when the insert was a no-op. A read-then-insert
// sequence would race under load and produce duplicate contacts.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// GetContactByIdentifier fetches a contact by tenant and normalized address.
// Returns ErrNotFound when no such contact exists.
func GetContactByIdentifier(ctx context.Context, db *gorm.DB, tenantID uint, canonical string) (*domain.Contact, error) {
	var c domain.Contact
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND canonical_identifier = ?", tenantID, canonical).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateContact resolves the contact for (tenantID, canonical),
// creating it with the given display name and source when absent. Safe under
// concurrent callers: the insert lands on the unique index and loses
// gracefully to a concurrent winner, whose row is then returned.
func GetOrCreateContact(ctx context.Context, db *gorm.DB, tenantID uint, canonical, displayName, source string) (*domain.Contact, error) {
	now := time.Now().UTC()
	c := domain.Contact{
		TenantID:            tenantID,
		CanonicalIdentifier: canonical,
		DisplayName:         displayName,
		Source:              source,
		CreatedAt:           now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "canonical_identifier"}},
			DoNothing: true,
		}).
		Create(&c)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race (or the row predates us); fetch the surviving row.
		return GetContactByIdentifier(ctx, db, tenantID, canonical)
	}
	return &c, nil
}
