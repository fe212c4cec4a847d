package service

import (
	"testing"

	"folio/internal/featureflags"
	"folio/internal/repository"
	"folio/internal/storage"
	"folio/internal/testutil"

	"gorm.io/gorm"
)

// testStack wires the services against a private SQLite database and a
// temporary media directory.
type testStack struct {
	db       *gorm.DB
	store    *storage.Local
	posts    *PostService
	comments *CommentService
	photos   *PhotoService
}

func newTestStack(t *testing.T, flags string) *testStack {
	t.Helper()
	db := testutil.NewDB(t)
	store := storage.NewLocal(t.TempDir(), "/media")

	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tags := NewTagService(repository.NewTagRepository(db), 10)
	photos := NewPhotoService(repository.NewPhotoRepository(db), postRepo, store, featureflags.NewManager(flags), 1, 10)

	return &testStack{
		db:       db,
		store:    store,
		posts:    NewPostService(postRepo, categoryRepo, tags, photos, 10),
		comments: NewCommentService(repository.NewCommentRepository(db), postRepo, 10),
		photos:   photos,
	}
}
