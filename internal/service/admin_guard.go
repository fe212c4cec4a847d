package service

import (
	"context"
	"log/slog"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"
)

// Guard operations, used as the metric label.
const (
	GuardDemote = "demote"
	GuardBlock  = "block"
)

// AdminGuard keeps at least one active administrator in the system.
//
// The active-admin count is read before the caller mutates anything, and
// the check and the mutation are not serialized. Two administrators
// demoting each other at the same moment can both pass and leave the
// system without one; cmd/admin can restore access.
type AdminGuard struct {
	users repository.UserRepository
}

func NewAdminGuard(users repository.UserRepository) *AdminGuard {
	return &AdminGuard{users: users}
}

// CanDemoteOrBlock must be called before revoking RoleAdmin from target or
// blocking it. It returns a LAST_ADMIN error when target is the only
// active administrator. Granting admin or unblocking never needs it.
func (g *AdminGuard) CanDemoteOrBlock(ctx context.Context, target *models.User, operation string) error {
	if !target.IsAdmin() || target.IsBlocked() {
		return nil
	}

	active, err := g.users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if active <= 1 {
		observability.LastAdminVetoes.WithLabelValues(operation).Inc()
		middleware.Logger.WarnContext(ctx, "refused to remove last administrator",
			slog.Uint64("target_id", uint64(target.ID)),
			slog.String("operation", operation),
		)
		return models.NewLastAdminError()
	}
	return nil
}
