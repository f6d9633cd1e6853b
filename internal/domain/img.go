package domain

import (
	"context"
	"time"
)

// Image is a stored upload, keyed by the SHA-256 of its bytes.
type Image struct {
	ID          uint   `gorm:"primaryKey"`
	URL         string `gorm:"size:512;not null"`
	Hash        string `gorm:"size:64;uniqueIndex;not null"`
	Size        int64
	ContentType string `gorm:"size:50"`
	UserID      *uint  `gorm:"index"` // first uploader; kept when the user is deleted
	CreatedAt   time.Time
}

type ImgRepository interface {
	GetByHash(ctx context.Context, hash string) (*Image, error)
	Create(ctx context.Context, img *Image) error
}

// BlobStore persists image bytes and returns the public URL.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
}

type ImgService interface {
	UploadImage(ctx context.Context, userID uint, filename string, data []byte) (*Image, error)
}
