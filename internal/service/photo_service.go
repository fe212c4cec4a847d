package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"folio/internal/authz"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/pagination"
	"folio/internal/repository"
	"folio/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultPhotoMaxUploadSizeMB = 10
	PhotoMaxSize                = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

type UploadPhotoInput struct {
	PostID  uint
	Content []byte
}

type PhotoService struct {
	photos             repository.PhotoRepository
	posts              repository.PostRepository
	store              *storage.Local
	flags              *featureflags.Manager
	maxUploadSizeBytes int64
	pageSize           int
}

func NewPhotoService(
	photos repository.PhotoRepository,
	posts repository.PostRepository,
	store *storage.Local,
	flags *featureflags.Manager,
	maxUploadSizeMB int,
	pageSize int,
) *PhotoService {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultPhotoMaxUploadSizeMB
	}
	return &PhotoService{
		photos:             photos,
		posts:              posts,
		store:              store,
		flags:              flags,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		pageSize:           pageSize,
	}
}

// Upload attaches an image to a post. The image is re-encoded as a JPEG
// no larger than PhotoMaxSize on either side; a WebP copy is written when
// the photo_webp flag is on for actor.
func (s *PhotoService) Upload(ctx context.Context, actor *models.User, in UploadPhotoInput) (*models.Photo, error) {
	ctx, span := observability.StartSpan(ctx, "photo.upload")
	photo, err := s.upload(ctx, actor, in)
	observability.EndSpan(span, err)
	return photo, err
}

func (s *PhotoService) upload(ctx context.Context, actor *models.User, in UploadPhotoInput) (*models.Photo, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	photo := &models.Photo{PostID: post.ID, Post: post}
	if err := authorize(actor, authz.Manage, authz.PhotoSubject{Photo: photo}, "Post", post.ID); err != nil {
		return nil, err
	}

	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(in.Content)) {
		return nil, models.NewValidationError("Invalid image type")
	}
	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	master := flatten(resizeToFit(decoded, PhotoMaxSize, PhotoMaxSize))
	jpg, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	base := uuid.NewString()
	photo.Filename = base + ".jpg"
	written := []string{photo.Filename}
	if err := s.store.Save(photo.Filename, jpg); err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.PhotosStored.WithLabelValues("jpeg").Inc()

	if s.flags.Enabled(featureflags.PhotoWebP, actor.ID) {
		encoded, err := encodeWebP(master, WebPQuality)
		if err != nil {
			s.removeFiles(ctx, written)
			return nil, models.NewInternalError(err)
		}
		if err := s.store.Save(base+".webp", encoded); err != nil {
			s.removeFiles(ctx, written)
			return nil, models.NewInternalError(err)
		}
		written = append(written, base+".webp")
		observability.PhotosStored.WithLabelValues("webp").Inc()
	}

	if err := s.photos.Create(ctx, photo); err != nil {
		s.removeFiles(ctx, written)
		return nil, err
	}
	s.decorate(photo)
	return photo, nil
}

// ListByPost pages the photos of a post the actor may view.
func (s *PhotoService) ListByPost(ctx context.Context, actor *models.User, postID uint, page int) (*pagination.Page[models.Photo], error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.PostSubject{Post: post}, "Post", postID); err != nil {
		return nil, err
	}
	out, err := s.photos.ListByPost(ctx, postID, pagination.Request{Page: page, Size: s.pageSize})
	if err != nil {
		return nil, err
	}
	for i := range out.Items {
		s.decorate(&out.Items[i])
	}
	return out, nil
}

func (s *PhotoService) Get(ctx context.Context, actor *models.User, id uint) (*models.Photo, error) {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.View, authz.PhotoSubject{Photo: photo}, "Photo", id); err != nil {
		return nil, err
	}
	s.decorate(photo)
	return photo, nil
}

// Delete removes the photo row, then its files.
func (s *PhotoService) Delete(ctx context.Context, actor *models.User, id uint) error {
	photo, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.Manage, authz.PhotoSubject{Photo: photo}, "Photo", id); err != nil {
		return err
	}
	if err := s.photos.Delete(ctx, id); err != nil {
		return err
	}
	s.removeFiles(ctx, renditions(photo.Filename))
	return nil
}

// filenamesFor lists every stored file of a post's photos, renditions included.
func (s *PhotoService) filenamesFor(ctx context.Context, postID uint) ([]string, error) {
	names, err := s.photos.FilenamesByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		out = append(out, renditions(n)...)
	}
	return out, nil
}

// removeFiles is best effort: the rows are already gone.
func (s *PhotoService) removeFiles(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.store.Remove(name); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to remove photo file",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *PhotoService) decorate(photo *models.Photo) {
	photo.URL = s.store.URL(photo.Filename)
	if webpName := webpSibling(photo.Filename); s.store.Exists(webpName) {
		photo.WebPURL = s.store.URL(webpName)
	}
}

func renditions(filename string) []string {
	return []string{filename, webpSibling(filename)}
}

func webpSibling(filename string) string {
	return strings.TrimSuffix(filename, ".jpg") + ".webp"
}

// flatten draws src over white so transparent areas do not turn black in JPEG.
func flatten(src image.Image) image.Image {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if scaleH := float64(maxHeight) / float64(h); scaleH < scale {
		scale = scaleH
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
