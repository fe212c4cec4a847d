package repository

import (
	"context"
	"errors"
	"strings"

	"folio/internal/models"
	"folio/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, user *models.User, hash string) error
	SetBlocked(ctx context.Context, user *models.User, blocked bool) error
	SetAdmin(ctx context.Context, user *models.User, admin bool) error
	CountActiveAdmins(ctx context.Context) (int64, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	List(ctx context.Context, page pagination.Request) (*pagination.Page[models.User], error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func preloadUser(q *gorm.DB) *gorm.DB {
	return q.Preload("Roles").Preload("UserData")
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(preloadUser).First(&user, id).Error; err != nil {
		return nil, translateError(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no account uses email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Scopes(preloadUser).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "User", email)
	}
	return &user, nil
}

// Create stores the user, its roles and its UserData in one transaction.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error, "User", user.Email)
}

func (r *userRepository) UpdatePassword(ctx context.Context, user *models.User, hash string) error {
	if err := updateVersioned(r.db.WithContext(ctx), &models.User{}, "User", user.ID, user.Version,
		map[string]any{"password": hash}); err != nil {
		return err
	}
	user.Password = hash
	user.Version++
	return nil
}

func (r *userRepository) SetBlocked(ctx context.Context, user *models.User, blocked bool) error {
	if err := updateVersioned(r.db.WithContext(ctx), &models.User{}, "User", user.ID, user.Version,
		map[string]any{"blocked": blocked}); err != nil {
		return err
	}
	user.Blocked = &blocked
	user.Version++
	return nil
}

// SetAdmin grants or revokes RoleAdmin and bumps the user's version.
func (r *userRepository) SetAdmin(ctx context.Context, user *models.User, admin bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateVersioned(tx, &models.User{}, "User", user.ID, user.Version, map[string]any{}); err != nil {
			return err
		}
		role := models.UserRole{UserID: user.ID, Role: models.RoleAdmin}
		if admin {
			return translateError(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error, "User", user.ID)
		}
		return translateError(tx.Where("user_id = ? AND role = ?", user.ID, models.RoleAdmin).
			Delete(&models.UserRole{}).Error, "User", user.ID)
	})
	if err != nil {
		return err
	}

	user.Version++
	roles := make([]models.UserRole, 0, len(user.Roles)+1)
	for _, r := range user.Roles {
		if r.Role != models.RoleAdmin {
			roles = append(roles, r)
		}
	}
	if admin {
		roles = append(roles, models.UserRole{UserID: user.ID, Role: models.RoleAdmin})
	}
	user.Roles = roles
	return nil
}

// CountActiveAdmins counts administrators that are not blocked.
func (r *userRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Joins("JOIN users ON users.id = user_roles.user_id").
		Where("user_roles.role = ?", models.RoleAdmin).
		Where("(users.blocked IS NULL OR users.blocked = ?)", false).
		Count(&n).Error
	return n, translateError(err, "User", nil)
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Roles").
		Where("id IN (SELECT user_id FROM user_roles WHERE role = ?)", models.RoleAdmin).
		Order("id ASC").Find(&users).Error
	return users, translateError(err, "User", nil)
}

func (r *userRepository) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.User], error) {
	out, err := pagination.Paginate[models.User](r.db.WithContext(ctx).Model(&models.User{}), page,
		preloadUser, func(q *gorm.DB) *gorm.DB { return q.Order("users.id ASC") })
	if err != nil {
		return nil, translateError(err, "User", nil)
	}
	return out, nil
}

// UserDataRepository defines persistence operations for public profiles.
type UserDataRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.UserData, error)
	Save(ctx context.Context, data *models.UserData) error
}

type userDataRepository struct {
	db *gorm.DB
}

// NewUserDataRepository returns a new UserDataRepository implementation.
func NewUserDataRepository(db *gorm.DB) UserDataRepository {
	return &userDataRepository{db: db}
}

func (r *userDataRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserData, error) {
	var data models.UserData
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&data).Error; err != nil {
		return nil, translateError(err, "UserData", userID)
	}
	return &data, nil
}

// Save inserts the profile when it has no id yet, otherwise overwrites it.
func (r *userDataRepository) Save(ctx context.Context, data *models.UserData) error {
	return translateError(r.db.WithContext(ctx).Save(data).Error, "UserData", data.UserID)
}
