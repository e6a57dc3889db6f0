package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArtifactRepository stores captured identity/face images and hands back
// opaque references. The core carries refs only.
type ArtifactRepository struct {
	db *gorm.DB
}

func NewArtifactRepository(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

func (r *ArtifactRepository) Store(ctx context.Context, mediaType string, raw []byte) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	sum := sha256.Sum256(raw)
	model := ArtifactModel{
		ID:        uuid.NewString(),
		HashValue: hex.EncodeToString(sum[:]),
		MediaType: mediaType,
		Bytes:     raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", fmt.Errorf("store artifact: %w", err)
	}
	return model.ID, nil
}
