package service

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/authz"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/pagination"
	"folio/internal/repository"
	"folio/internal/validation"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users    repository.UserRepository
	userData repository.UserDataRepository
	guard    *AdminGuard
	pageSize int
}

type ChangePasswordInput struct {
	UserID   uint
	Password string
}

// UpdateUserDataInput carries a partial profile update; nil fields are kept.
type UpdateUserDataInput struct {
	UserID      uint
	Name        *string
	Description *string
}

func NewUserService(users repository.UserRepository, userData repository.UserDataRepository, guard *AdminGuard, pageSize int) *UserService {
	return &UserService{users: users, userData: userData, guard: guard, pageSize: pageSize}
}

func (s *UserService) ListUsers(ctx context.Context, actor *models.User, page int) (*pagination.Page[models.User], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, pagination.Request{Page: page, Size: s.pageSize})
}

// GetProfile loads a user for display. Blocked users are hidden from
// everyone but administrators.
func (s *UserService) GetProfile(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.UserSubject{User: user}, "User", id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor *models.User, in ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.Manage, authz.UserSubject{User: user}, "User", in.UserID); err != nil {
		return err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.NewFieldValidationError(map[string]string{"password": err.Error()})
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, user, hash)
}

func (s *UserService) UpdateUserData(ctx context.Context, actor *models.User, in UpdateUserDataInput) (*models.UserData, error) {
	data, err := s.userData.GetByUserID(ctx, in.UserID)
	switch {
	case models.HasCode(err, models.CodeNotFound):
		// Accounts created outside registration may lack a profile row.
		if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
			return nil, err
		}
		data = &models.UserData{UserID: in.UserID}
	case err != nil:
		return nil, err
	}
	if err := authorize(actor, authz.Manage, authz.UserDataSubject{Data: data}, "UserData", in.UserID); err != nil {
		return nil, err
	}

	patch := struct {
		Name        string
		Description string
	}{Name: data.Name, Description: data.Description}
	if in.Name != nil {
		patch.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		patch.Description = strings.TrimSpace(*in.Description)
	}
	if err := copier.Copy(data, &patch); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := validation.Struct(data); err != nil {
		return nil, err
	}
	if err := s.userData.Save(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ToggleAdmin grants RoleAdmin to a user without it and revokes it
// otherwise. Revoking goes through the last-admin guard.
func (s *UserService) ToggleAdmin(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SetAdmin(ctx, target, !target.IsAdmin()); err != nil {
		return nil, err
	}
	return target, nil
}

// ToggleBlock blocks an active user and unblocks a blocked one. Blocking
// an administrator goes through the last-admin guard.
func (s *UserService) ToggleBlock(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SetBlocked(ctx, target, !target.IsBlocked()); err != nil {
		return nil, err
	}
	return target, nil
}

// SetAdmin applies the role change without an actor check. It is the
// operator path used by cmd/admin; HTTP callers go through ToggleAdmin.
func (s *UserService) SetAdmin(ctx context.Context, target *models.User, admin bool) error {
	if admin == target.IsAdmin() {
		return nil
	}
	if !admin {
		if err := s.guard.CanDemoteOrBlock(ctx, target, GuardDemote); err != nil {
			return err
		}
	}
	if err := s.users.SetAdmin(ctx, target, admin); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "admin role changed",
		slog.Uint64("target_id", uint64(target.ID)),
		slog.Bool("admin", admin),
	)
	return nil
}

// SetBlocked applies the block flag without an actor check.
func (s *UserService) SetBlocked(ctx context.Context, target *models.User, blocked bool) error {
	if blocked == target.IsBlocked() {
		return nil
	}
	if blocked {
		if err := s.guard.CanDemoteOrBlock(ctx, target, GuardBlock); err != nil {
			return err
		}
	}
	if err := s.users.SetBlocked(ctx, target, blocked); err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "user block changed",
		slog.Uint64("target_id", uint64(target.ID)),
		slog.Bool("blocked", blocked),
	)
	return nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
