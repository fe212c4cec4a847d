// Package seed fills a development database with demo content. It is not
// used by the server.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"folio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	opts         Options
	passwordHash string
	rnd          *rand.Rand
	faker        *gofakeit.Faker
}

// NewFactory creates a Factory bound to db. passwordHash is stored for
// every user it creates.
func NewFactory(db *gorm.DB, opts Options, passwordHash string) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:           db,
		opts:         opts,
		passwordHash: passwordHash,
		//nolint:gosec // Weak random number generator is fine for seeding
		rnd:   rand.New(rand.NewSource(seed)),
		faker: gofakeit.New(seed),
	}
}

// CreateUser persists a user with a generated profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Email:    strings.ToLower(fmt.Sprintf("%s.%s.%d@folio.local", first, last, f.rnd.Intn(100000))),
		Password: f.passwordHash,
		Blocked:  new(bool),
		UserData: &models.UserData{
			Name:        clip(first+" "+last, 64),
			Description: clip(f.faker.Sentence(12), 500),
		},
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// CreateCategory persists a category, reusing an existing one with the same name.
func (f *Factory) CreateCategory(name string) (*models.Category, error) {
	category := models.Category{Name: name, Code: models.MakeCode(name, models.CategoryCodeSize)}
	if err := f.db.Where(models.Category{Name: name}).FirstOrCreate(&category).Error; err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return &category, nil
}

// CreateTag persists a tag, reusing an existing one with the same name.
func (f *Factory) CreateTag(name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	tag := models.Tag{Name: name, Code: models.MakeCode(name, models.TagCodeSize)}
	if err := f.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
		return nil, fmt.Errorf("create tag %q: %w", name, err)
	}
	return &tag, nil
}

// BuildPost constructs a post without persisting it. The publication state
// follows opts.PublishedRatio; a small share is left unset.
func (f *Factory) BuildPost(author *models.User, category *models.Category, tags []models.Tag) *models.Post {
	title := clip(strings.TrimSuffix(f.faker.Sentence(f.rnd.Intn(5)+3), "."), 64)
	post := &models.Post{
		Title:      title,
		Content:    clip(f.faker.Paragraph(1, f.rnd.Intn(3)+2, 8, " "), 1000),
		Code:       models.MakeCode(title, models.PostCodeSize),
		Published:  f.publishedState(),
		CategoryID: category.ID,
		AuthorID:   author.ID,
		Tags:       tags,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	stamp := time.Now().Add(-time.Duration(f.rnd.Intn(maxDays*24*60)) * time.Minute)
	post.CreatedAt = stamp
	post.UpdatedAt = stamp
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(author *models.User, category *models.Category, tags []models.Tag) (*models.Post, error) {
	post := f.BuildPost(author, category, tags)
	if err := f.db.Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment persists a comment by author on post.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Title:    clip(strings.TrimSuffix(f.faker.Sentence(f.rnd.Intn(3)+2), "."), 64),
		Content:  clip(f.faker.Sentence(f.rnd.Intn(20)+5), 1000),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (f *Factory) publishedState() *bool {
	roll := f.rnd.Float64()
	switch {
	case roll < f.opts.PublishedRatio:
		return boolPtr(true)
	case roll < f.opts.PublishedRatio+(1-f.opts.PublishedRatio)/2:
		return boolPtr(false)
	}
	return nil
}

// pick returns up to n distinct elements of items.
func pick[T any](rnd *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, 0, n)
	for _, i := range rnd.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return out
}

func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit]))
}

func boolPtr(v bool) *bool {
	return &v
}
