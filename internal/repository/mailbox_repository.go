package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/ghostnote-im/ghostnote-backend/internal/logger"
	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"gorm.io/gorm"
)

// MailboxRepository defines the interface for per-owner message log
// access. A mailbox is the ordered sequence of message copies owned by
// one identity; logs for different owners are fully independent.
type MailboxRepository interface {
	Append(ctx context.Context, ownerID int, message *models.Message) error
	ReadAll(ctx context.Context, ownerID int) ([]models.Message, error)
	Update(ctx context.Context, ownerID int, messageID string, message *models.Message) error
}

// mailboxRepository implements MailboxRepository using GORM
type mailboxRepository struct {
	db     *gorm.DB
	secLog *logger.SecurityLogger
}

// NewMailboxRepository creates a new MailboxRepository instance
func NewMailboxRepository(db *gorm.DB, secLog *logger.SecurityLogger) MailboxRepository {
	if secLog == nil {
		secLog = logger.NewSecurityLogger()
	}
	return &mailboxRepository{db: db, secLog: secLog}
}

// Append adds a message copy to the end of the owner's log. The log does
// not need to exist beforehand; the first append creates it. The
// attachment row, if any, is written in the same transaction.
func (r *mailboxRepository) Append(ctx context.Context, ownerID int, message *models.Message) error {
	message.OwnerID = ownerID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		att := message.Attachment
		message.Attachment = nil
		if err := tx.Create(message).Error; err != nil {
			message.Attachment = att
			if isDuplicateKeyError(err) {
				return fmt.Errorf("message %s already in mailbox %d: %w", message.MessageID, ownerID, ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to append message: %w", err)
		}
		message.Attachment = att
		if att != nil {
			att.MessageRowID = message.RowID
			if err := tx.Create(att).Error; err != nil {
				return fmt.Errorf("failed to create attachment: %w", err)
			}
		}
		return nil
	})
}

// ReadAll returns the owner's full log in insertion order. A missing log
// yields an empty slice. A log whose rows cannot be scanned back is
// treated as empty rather than failing the caller; the corruption is
// logged. Transport failures such as a cancelled context or a lost
// connection are not corruption and propagate to the caller.
func (r *mailboxRepository) ReadAll(ctx context.Context, ownerID int) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Preload("Attachment").
		Where("owner_id = ?", ownerID).
		Order("row_id ASC").
		Find(&messages)
	if result.Error != nil {
		if isTransportError(result.Error) {
			return nil, fmt.Errorf("failed to read mailbox %d: %w", ownerID, result.Error)
		}
		r.secLog.CorruptMailbox(ownerID, result.Error.Error())
		return []models.Message{}, nil
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// isTransportError reports whether err comes from the connection or the
// request lifecycle rather than from decoding stored rows.
func isTransportError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, sql.ErrTxDone) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, gorm.ErrInvalidDB)
}

// Update replaces the mutable fields of the entry matching messageID in
// the owner's log, preserving its position. A missing entry is a benign
// no-op, not an error; poll claiming relies on that.
func (r *mailboxRepository) Update(ctx context.Context, ownerID int, messageID string, message *models.Message) error {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("owner_id = ? AND message_id = ?", ownerID, messageID).
		Updates(map[string]interface{}{
			"content":   message.Content,
			"is_read":   message.IsRead,
			"is_polled": message.IsPolled,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update message: %w", result.Error)
	}
	return nil
}
