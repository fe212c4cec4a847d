package service

import (
	"context"
	"errors"
	"testing"

	"folio/internal/models"
	"folio/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	createFn            func(context.Context, *models.User) error
	updatePasswordFn    func(context.Context, *models.User, string) error
	setBlockedFn        func(context.Context, *models.User, bool) error
	setAdminFn          func(context.Context, *models.User, bool) error
	countActiveAdminsFn func(context.Context) (int64, error)
	listAdminsFn        func(context.Context) ([]models.User, error)
	listFn              func(context.Context, pagination.Request) (*pagination.Page[models.User], error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, user *models.User, hash string) error {
	return s.updatePasswordFn(ctx, user, hash)
}
func (s *userRepoStub) SetBlocked(ctx context.Context, user *models.User, blocked bool) error {
	return s.setBlockedFn(ctx, user, blocked)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, user *models.User, admin bool) error {
	return s.setAdminFn(ctx, user, admin)
}
func (s *userRepoStub) CountActiveAdmins(ctx context.Context) (int64, error) {
	return s.countActiveAdminsFn(ctx)
}
func (s *userRepoStub) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.listAdminsFn(ctx)
}
func (s *userRepoStub) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.User], error) {
	return s.listFn(ctx, page)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:           func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:        func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:            func(_ context.Context, _ *models.User) error { return nil },
		updatePasswordFn:    func(_ context.Context, _ *models.User, _ string) error { return nil },
		setBlockedFn:        func(_ context.Context, _ *models.User, _ bool) error { return nil },
		setAdminFn:          func(_ context.Context, _ *models.User, _ bool) error { return nil },
		countActiveAdminsFn: func(_ context.Context) (int64, error) { return 0, nil },
		listAdminsFn:        func(_ context.Context) ([]models.User, error) { return nil, nil },
		listFn: func(_ context.Context, page pagination.Request) (*pagination.Page[models.User], error) {
			return emptyPage[models.User](page), nil
		},
	}
}

// userDataRepoStub is a stub for repository.UserDataRepository.
type userDataRepoStub struct {
	getByUserIDFn func(context.Context, uint) (*models.UserData, error)
	saveFn        func(context.Context, *models.UserData) error
}

func (s *userDataRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.UserData, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *userDataRepoStub) Save(ctx context.Context, data *models.UserData) error {
	return s.saveFn(ctx, data)
}

func noopUserDataRepo() *userDataRepoStub {
	return &userDataRepoStub{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.UserData, error) {
			return &models.UserData{ID: userID, UserID: userID}, nil
		},
		saveFn: func(_ context.Context, _ *models.UserData) error { return nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	createFn  func(context.Context, *models.Category) error
	getByIDFn func(context.Context, uint) (*models.Category, error)
	updateFn  func(context.Context, *models.Category) error
	deleteFn  func(context.Context, uint) error
	listFn    func(context.Context, pagination.Request) (*pagination.Page[models.Category], error)
}

func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) Update(ctx context.Context, c *models.Category) error {
	return s.updateFn(ctx, c)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *categoryRepoStub) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Category], error) {
	return s.listFn(ctx, page)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn:  func(_ context.Context, _ *models.Category) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) { return &models.Category{ID: id}, nil },
		updateFn:  func(_ context.Context, _ *models.Category) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, page pagination.Request) (*pagination.Page[models.Category], error) {
			return emptyPage[models.Category](page), nil
		},
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.Tag, error)
	findByNameFn func(context.Context, string) (*models.Tag, error)
	updateFn     func(context.Context, *models.Tag) error
	deleteFn     func(context.Context, uint) error
	listFn       func(context.Context, pagination.Request) (*pagination.Page[models.Tag], error)
}

func (s *tagRepoStub) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tagRepoStub) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	return s.findByNameFn(ctx, name)
}
func (s *tagRepoStub) Update(ctx context.Context, tag *models.Tag) error {
	return s.updateFn(ctx, tag)
}
func (s *tagRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *tagRepoStub) List(ctx context.Context, page pagination.Request) (*pagination.Page[models.Tag], error) {
	return s.listFn(ctx, page)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.Tag, error) { return &models.Tag{ID: id}, nil },
		findByNameFn: func(_ context.Context, _ string) (*models.Tag, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Tag) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		listFn: func(_ context.Context, page pagination.Request) (*pagination.Page[models.Tag], error) {
			return emptyPage[models.Tag](page), nil
		},
	}
}

func boolPtr(v bool) *bool { return &v }

func emptyPage[T any](page pagination.Request) *pagination.Page[T] {
	page = page.Normalize()
	return &pagination.Page[T]{Items: []T{}, PageNumber: page.Page, PageSize: page.Size}
}

func adminUser(id uint) *models.User {
	return &models.User{ID: id, Blocked: boolPtr(false), Roles: []models.UserRole{{UserID: id, Role: models.RoleAdmin}}}
}

func plainUser(id uint) *models.User {
	return &models.User{ID: id, Blocked: boolPtr(false)}
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
