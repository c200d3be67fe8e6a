package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/attachment/dto"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/storage"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const MaxUploadSize = 5 << 20

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type AttachmentService interface {
	UploadAttachment(ctx context.Context, actor entity.Actor, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error)
}

type attachmentService struct {
	fileStorage storage.ImageStorage
	logger      *zap.Logger
}

// NewAttachmentService accepts a nil storage; uploads then fail with
// ErrUnavailable.
func NewAttachmentService(fileStorage storage.ImageStorage, logger *zap.Logger) AttachmentService {
	return &attachmentService{
		fileStorage: fileStorage,
		logger:      logger.Named("attachment"),
	}
}

func (s *attachmentService) UploadAttachment(ctx context.Context, actor entity.Actor, file *multipart.FileHeader) (*dto.UploadAttachmentResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if s.fileStorage == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", apperror.ErrUnavailable)
	}
	if file.Size <= 0 {
		return nil, fmt.Errorf("%w: file is empty", apperror.ErrInvalidInput)
	}
	if file.Size > MaxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB", apperror.ErrInvalidInput, MaxUploadSize>>20)
	}

	fileType := file.Header.Get("Content-Type")
	if !lo.Contains(allowedTypes, fileType) {
		return nil, fmt.Errorf("%w: unsupported file type %q", apperror.ErrInvalidInput, fileType)
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	url, err := s.fileStorage.UploadImage(ctx, f, file.Filename)
	if err != nil {
		return nil, err
	}

	s.logger.Info("attachment uploaded", zap.Stringer("user_id", actor.UserID), zap.String("url", url))

	return &dto.UploadAttachmentResponse{
		FileURL:  url,
		FileType: fileType,
		Size:     file.Size,
	}, nil
}
