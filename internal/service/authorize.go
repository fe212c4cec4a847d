// Package service holds the business rules of the blog on top of the repositories.
package service

import (
	"folio/internal/authz"
	"folio/internal/models"
	"folio/internal/observability"
)

// authorize evaluates the policy and turns a refusal into an AppError:
// CodeHidden for failed views, CodeForbidden for failed manage checks.
func authorize(actor *models.User, action authz.Action, subject authz.Subject, resource string, id uint) error {
	decision := authz.Decide(actor, action, subject)
	observability.AuthorizationDecisions.
		WithLabelValues(subject.Kind(), action.String(), decision.String()).
		Inc()

	switch decision {
	case authz.Allow:
		return nil
	case authz.Hide:
		return models.NewHiddenError(resource, id)
	}
	return models.NewForbiddenError("You are not allowed to do that")
}

// requireAdmin gates administrative operations.
func requireAdmin(actor *models.User) error {
	if authz.RequireRole(actor, models.RoleAdmin) == authz.Allow {
		return nil
	}
	return models.NewForbiddenError("Administrator role required")
}

// requireUser rejects anonymous callers.
func requireUser(actor *models.User) error {
	if actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}
