package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"github.com/ghostnote-im/ghostnote-backend/internal/repository"
)

// ownerLocks serializes mailbox read-modify-write sequences per owner.
// Operations on different owners never contend.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[int]*sync.Mutex)}
}

func (o *ownerLocks) get(ownerID int) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	l, ok := o.locks[ownerID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[ownerID] = l
	}
	return l
}

// MessageService implements text sends, conversation views and the
// long-poll claim protocol over the mailbox store.
type MessageService struct {
	identityRepo repository.IdentityRepository
	mailboxRepo  repository.MailboxRepository
	clock        *messageClock
	locks        *ownerLocks
}

// NewMessageService creates a new MessageService
func NewMessageService(identityRepo repository.IdentityRepository, mailboxRepo repository.MailboxRepository) *MessageService {
	return &MessageService{
		identityRepo: identityRepo,
		mailboxRepo:  mailboxRepo,
		clock:        &messageClock{},
		locks:        newOwnerLocks(),
	}
}

// SendText creates a text message and writes one copy into each party's
// mailbox. The two copies share every field; only IsPolled diverges later
// as the receiver claims its copy.
func (s *MessageService) SendText(ctx context.Context, senderID, receiverID int, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.ErrInvalidInput
	}
	if _, err := s.identityRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnknownReceiver
		}
		return nil, err
	}

	id, at := s.clock.nextID("msg_")
	message := &models.Message{
		MessageID:  id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       models.KindText,
		Content:    content,
		SentAt:     at,
	}

	if err := s.appendBoth(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation derives the two-party conversation between owner and peer
// from the owner's mailbox, ascending by timestamp. Pure read, no
// mutation.
func (s *MessageService) Conversation(ctx context.Context, ownerID, peerID int) ([]models.Message, error) {
	messages, err := s.mailboxRepo.ReadAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	conversation := make([]models.Message, 0)
	for _, m := range messages {
		if m.SenderID == peerID || m.ReceiverID == peerID {
			conversation = append(conversation, m)
		}
	}

	sort.SliceStable(conversation, func(i, j int) bool {
		if conversation[i].SentAt.Equal(conversation[j].SentAt) {
			return conversation[i].MessageID < conversation[j].MessageID
		}
		return conversation[i].SentAt.Before(conversation[j].SentAt)
	})

	return conversation, nil
}

// PollNew claims the unpolled inbound messages of one conversation: it
// selects messages sent by the peer that have not been polled, flips
// IsPolled on the owner's copies, and returns the claimed set. Each
// message is returned by exactly one successful call per owner. The call
// never blocks; an empty result means "no news yet, retry later".
func (s *MessageService) PollNew(ctx context.Context, ownerID, peerID int) ([]models.Message, error) {
	lock := s.locks.get(ownerID)
	lock.Lock()
	defer lock.Unlock()

	conversation, err := s.Conversation(ctx, ownerID, peerID)
	if err != nil {
		return nil, err
	}

	claimed := make([]models.Message, 0)
	for _, m := range conversation {
		// Outbound messages are never "new" to their own sender.
		if m.SenderID != peerID || m.IsPolled {
			continue
		}
		m.IsPolled = true
		if err := s.mailboxRepo.Update(ctx, ownerID, m.MessageID, &m); err != nil {
			return nil, err
		}
		claimed = append(claimed, m)
	}

	return claimed, nil
}

// appendBoth writes the sender's and receiver's independent copies. The
// per-owner lock covers each append so a racing claim on the same mailbox
// cannot interleave.
func (s *MessageService) appendBoth(ctx context.Context, message *models.Message) error {
	for _, ownerID := range []int{message.SenderID, message.ReceiverID} {
		cp := message.CopyFor(ownerID)
		lock := s.locks.get(ownerID)
		lock.Lock()
		err := s.mailboxRepo.Append(ctx, ownerID, cp)
		lock.Unlock()
		if err != nil {
			return err
		}
		// Self-send writes a single copy; the second append would
		// collide on (owner, message_id).
		if message.SenderID == message.ReceiverID {
			break
		}
	}
	return nil
}
