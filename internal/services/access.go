// Package services – AccessService
//
// The channel access validator proves that the caller may use the requested
// channel connection: the connection must exist, belong to the caller's
// tenant, and be active. It runs before identity resolution so an
// unauthorized request leaves no contact/conversation side effects behind.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/domain"
)

// ChannelRepo defines the repository contract required by AccessService.
type ChannelRepo interface {
	// GetChannelConnection fetches a connection by id regardless of tenant.
	GetChannelConnection(ctx context.Context, db *gorm.DB, id uint) (*domain.ChannelConnection, error)
}

// AccessService confirms channel ownership and liveness. Pure read; no side
// effects.
type AccessService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the channel-connection repository used by this service.
	Repo ChannelRepo
}

// NewAccessService constructs an AccessService.
func NewAccessService(db *gorm.DB, r ChannelRepo) *AccessService {
	return &AccessService{DB: db, Repo: r}
}

// Validate returns the connection when the tenant may dispatch through it.
//
// Failure kinds, in checking order:
//   - KindChannelNotFound when no connection with that id exists
//   - KindAccessDenied when the connection belongs to another tenant
//   - KindChannelInactive when the connection is not active
//
// Existence and ownership stay distinguishable kinds; nothing beyond those
// two is leaked to the caller about foreign connections.
func (s *AccessService) Validate(ctx context.Context, tenantID, channelID uint) (*domain.ChannelConnection, error) {
	conn, err := s.Repo.GetChannelConnection(ctx, s.DB, channelID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, Ef(KindChannelNotFound, "channel %d not found", channelID)
		}
		return nil, Wrap(KindDispatchFailed, "channel lookup failed", err)
	}
	if conn.TenantID != tenantID {
		return nil, Ef(KindAccessDenied, "channel %d does not belong to this tenant", channelID)
	}
	if conn.Status != domain.ChannelActive {
		return nil, Ef(KindChannelInactive, "channel %d is %s", channelID, conn.Status)
	}
	return conn, nil
}
