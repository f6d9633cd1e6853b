package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/internal/util"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type imgService struct {
	repo     domain.ImgRepository
	blobs    domain.BlobStore
	maxBytes int64
	log      *logger.Logger
}

func NewImgService(repo domain.ImgRepository, blobs domain.BlobStore, maxBytes int64, log *logger.Logger) domain.ImgService {
	return &imgService{repo: repo, blobs: blobs, maxBytes: maxBytes, log: log}
}

// UploadImage stores data unless an image with the same bytes already
// exists, in which case the existing record is returned.
func (s *imgService) UploadImage(ctx context.Context, userID uint, filename string, data []byte) (*domain.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", domain.ErrValidation)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, s.maxBytes)
	}
	mtype := mimetype.Detect(data)
	ext, ok := imageExtensions[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %s", domain.ErrValidation, mtype.String())
	}

	hash := util.SHA256Hex(data)
	existing, err := s.repo.GetByHash(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	url, err := s.blobs.Put(ctx, hash+ext, data, mtype.String())
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	img := &domain.Image{
		URL:         url,
		Hash:        hash,
		Size:        int64(len(data)),
		ContentType: mtype.String(),
		UserID:      &userID,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// a concurrent upload of the same bytes won
			return s.repo.GetByHash(ctx, hash)
		}
		if delErr := s.blobs.Delete(ctx, hash+ext); delErr != nil {
			s.log.Errorf("failed to remove unrecorded blob %s: %v", hash+ext, delErr)
		}
		return nil, err
	}
	s.log.Infof("image stored: %s (%d bytes, %s, from %q)", img.URL, img.Size, img.ContentType, filename)
	return img, nil
}
