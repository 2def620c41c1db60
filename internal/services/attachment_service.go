package services

import (
	"context"
	"errors"
	"io"

	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"github.com/ghostnote-im/ghostnote-backend/internal/repository"
	"github.com/ghostnote-im/ghostnote-backend/internal/storage"
)

// AttachmentService handles file sends and receiver-scoped retrieval.
type AttachmentService struct {
	identityRepo repository.IdentityRepository
	messages     *MessageService
	files        storage.FileStorage
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(identityRepo repository.IdentityRepository, messages *MessageService, files storage.FileStorage) *AttachmentService {
	return &AttachmentService{
		identityRepo: identityRepo,
		messages:     messages,
		files:        files,
	}
}

// SendFile persists the uploaded stream under the receiver's attachment
// directory and emits a file-kind message into both mailboxes. The
// returned message's attachment carries the stored name used for
// retrieval.
func (s *AttachmentService) SendFile(ctx context.Context, senderID, receiverID int, filename string, size int64, content io.Reader) (*models.Message, error) {
	if filename == "" {
		return nil, apperrors.ErrNoFile
	}
	if _, err := s.identityRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnknownReceiver
		}
		return nil, err
	}
	if err := storage.ValidateFile(filename, size); err != nil {
		return nil, apperrors.NewAppError(err, err.Error(), apperrors.CodeInvalidInput)
	}

	stored, err := s.files.Save(receiverID, filename, content)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, apperrors.ErrNoFile
		}
		return nil, err
	}

	id, at := s.messages.clock.nextID("file_")
	message := &models.Message{
		MessageID:  id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       models.KindFile,
		Content:    models.FileContentPlaceholder,
		SentAt:     at,
		Attachment: &models.Attachment{
			OriginalName: stored.OriginalName,
			StoredName:   stored.StoredName,
			StoragePath:  stored.Path,
			SizeBytes:    stored.SizeBytes,
			UploadedAt:   stored.UploadedAt,
		},
	}

	if err := s.messages.appendBoth(ctx, message); err != nil {
		// Keep storage consistent with the mailboxes.
		_ = s.files.Delete(receiverID, stored.StoredName)
		return nil, err
	}
	return message, nil
}

// Fetch opens a stored attachment, resolved strictly under the
// receiver's directory. Names that fail the timestamp-prefix format are
// rejected before touching the filesystem; anything resolving outside
// the receiver's directory is rejected as traversal.
func (s *AttachmentService) Fetch(ctx context.Context, storedName string, receiverID int) (io.ReadCloser, *storage.StoredFile, error) {
	reader, info, err := s.files.Open(receiverID, storedName)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileNotFound):
			return nil, nil, apperrors.ErrAttachmentNotFound
		case errors.Is(err, storage.ErrInvalidName), errors.Is(err, storage.ErrPathTraversal):
			return nil, nil, apperrors.ErrInvalidName
		}
		return nil, nil, err
	}
	return reader, info, nil
}
