// Package services – IdentityService
//
// The identity resolver normalizes external addresses and resolves them to
// stable Contact and Conversation rows. Both resolutions are lazy (created
// on first send) and idempotent under concurrency: the repository layer
// backs them with atomic upserts, never read-then-blind-insert.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// contactSourceAPI marks contacts created lazily by an API send.
const contactSourceAPI = "api"

// IdentityRepo defines the repository contract required by IdentityService.
// Both methods must be atomic upserts (insert-on-conflict plus re-fetch).
type IdentityRepo interface {
	GetOrCreateContact(ctx context.Context, db *gorm.DB, tenantID uint, canonical, displayName, source string) (*domain.Contact, error)
	GetOrCreateConversation(ctx context.Context, db *gorm.DB, contact *domain.Contact, conn *domain.ChannelConnection) (*domain.Conversation, error)
}

// IdentityService resolves contacts and conversations for the dispatch
// pipeline.
type IdentityService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the contact/conversation repository used by this service.
	Repo IdentityRepo
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(db *gorm.DB, r IdentityRepo) *IdentityService {
	return &IdentityService{DB: db, Repo: r}
}

// NormalizeAddress reduces a raw external address to its canonical form:
// every character except digits is stripped, then a leading "+" is applied
// (preserved if the input already had one, prefixed otherwise).
//
// Deliberately lenient: no length or country-code validation, so unusually
// formatted but valid numbers are never rejected. "+1 (555) 123-4567" and
// "15551234567" both normalize to "+15551234567".
func NormalizeAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(raw) + 1)
	b.WriteByte('+')
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveContact resolves-or-creates the contact for (tenantID, rawAddress).
// The raw address is kept as the display name of newly created contacts;
// repeat sends to the same normalized address always return the same row.
func (s *IdentityService) ResolveContact(ctx context.Context, tenantID uint, rawAddress string) (*domain.Contact, error) {
	canonical := NormalizeAddress(rawAddress)
	if canonical == "+" {
		return nil, E(KindValidation, "recipient address must contain digits")
	}
	c, err := s.Repo.GetOrCreateContact(ctx, s.DB, tenantID, canonical, rawAddress, contactSourceAPI)
	if err != nil {
		return nil, Wrap(KindDispatchFailed, "contact resolution failed", err)
	}
	return c, nil
}

// ResolveConversation resolves-or-creates the conversation keyed by
// (contact, channel connection).
func (s *IdentityService) ResolveConversation(ctx context.Context, contact *domain.Contact, conn *domain.ChannelConnection) (*domain.Conversation, error) {
	conv, err := s.Repo.GetOrCreateConversation(ctx, s.DB, contact, conn)
	if err != nil {
		return nil, Wrap(KindDispatchFailed, "conversation resolution failed", err)
	}
	return conv, nil
}
