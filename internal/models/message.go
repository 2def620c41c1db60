package models

import (
	"time"
)

// Message kinds
const (
	KindText = "text"
	KindFile = "file"
)

// FileContentPlaceholder is the fixed content string carried by
// file-kind messages.
const FileContentPlaceholder = "file attachment"

// Message is one mailbox copy of a direct message. Every send writes two
// independent copies, one into the sender's log and one into the
// receiver's, identical field-for-field except that IsPolled is mutated
// per copy. RowID orders a mailbox by insertion; MessageID is the stable
// cross-mailbox identifier minted from the message clock.
type Message struct {
	RowID      uint      `gorm:"primaryKey" json:"-"`
	OwnerID    int       `gorm:"not null;index;uniqueIndex:idx_owner_message" json:"-"`
	MessageID  string    `gorm:"not null;size:64;uniqueIndex:idx_owner_message" json:"message_id"`
	SenderID   int       `gorm:"not null;index" json:"sender_id"`
	ReceiverID int       `gorm:"not null" json:"receiver_id"`
	Kind       string    `gorm:"not null;size:8" json:"kind"`
	Content    string    `json:"content"`
	SentAt     time.Time `gorm:"not null" json:"timestamp"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	IsPolled   bool      `gorm:"default:false" json:"is_polled"`

	// Attachment is set only for file-kind messages.
	Attachment *Attachment `gorm:"foreignKey:MessageRowID;constraint:OnDelete:CASCADE" json:"attachment,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// PeerID returns the opposite party of the copy's owner.
func (m *Message) PeerID() int {
	if m.SenderID == m.OwnerID {
		return m.ReceiverID
	}
	return m.SenderID
}

// CopyFor clones the message as a fresh, unpersisted copy owned by
// ownerID. The attachment record is cloned too so each mailbox copy keeps
// its own row.
func (m *Message) CopyFor(ownerID int) *Message {
	cp := *m
	cp.RowID = 0
	cp.OwnerID = ownerID
	if m.Attachment != nil {
		att := *m.Attachment
		att.ID = 0
		att.MessageRowID = 0
		cp.Attachment = &att
	}
	return &cp
}
