package seed

import (
	"context"
	"fmt"
	"log/slog"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/service"

	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Folio-Seed-Pass1!"

// Summary counts what a run created.
type Summary struct {
	Users      int
	Categories int
	Tags       int
	Posts      int
	Comments   int
}

// Seeder populates a database from Options.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts}
}

// ClearAll removes every row the blog stores, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := db.Exec("DELETE FROM post_tags").Error; err != nil {
		return fmt.Errorf("clear post_tags: %w", err)
	}
	for _, model := range []any{
		&models.Comment{},
		&models.Photo{},
		&models.Post{},
		&models.Tag{},
		&models.Category{},
		&models.UserRole{},
		&models.UserData{},
		&models.User{},
	} {
		if err := db.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "database cleared")
	return nil
}

// Run creates users, taxonomy, posts and comments. Posts by blocked users
// and unpublished posts are included so every listing mode has content.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	hash, err := service.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	var summary Summary
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := NewFactory(tx, s.opts, hash)

		users := make([]*models.User, 0, s.opts.Users)
		for i := 0; i < s.opts.Users; i++ {
			admin := i < s.opts.Admins
			blocked := !admin && i < s.opts.Admins+s.opts.BlockedUsers
			user, err := f.CreateUser(func(u *models.User) {
				if admin {
					u.Roles = []models.UserRole{{Role: models.RoleAdmin}}
				}
				if blocked {
					u.Blocked = boolPtr(true)
				}
			})
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		summary.Users = len(users)

		categories := make([]*models.Category, 0, len(s.opts.Categories))
		for _, name := range s.opts.Categories {
			category, err := f.CreateCategory(name)
			if err != nil {
				return err
			}
			categories = append(categories, category)
		}
		summary.Categories = len(categories)

		tags := make([]models.Tag, 0, len(s.opts.Tags))
		for _, name := range s.opts.Tags {
			tag, err := f.CreateTag(name)
			if err != nil {
				return err
			}
			tags = append(tags, *tag)
		}
		summary.Tags = len(tags)

		for i := 0; i < s.opts.Posts; i++ {
			author := users[f.rnd.Intn(len(users))]
			category := categories[f.rnd.Intn(len(categories))]
			post, err := f.CreatePost(author, category, pick(f.rnd, tags, f.rnd.Intn(s.opts.TagsPerPost+1)))
			if err != nil {
				return err
			}
			summary.Posts++

			for j := 0; j < s.opts.CommentsPerPost; j++ {
				if _, err := f.CreateComment(users[f.rnd.Intn(len(users))], post); err != nil {
					return err
				}
				summary.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "seeding completed",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
	)
	return &summary, nil
}
