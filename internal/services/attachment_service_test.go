package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/models"
	"github.com/ghostnote-im/ghostnote-backend/internal/repository"
	"github.com/ghostnote-im/ghostnote-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AttachmentServiceTestSuite exercises file sends and receiver-scoped
// retrieval.
type AttachmentServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	mailboxRepo repository.MailboxRepository
	identities  *IdentityService
	service     *AttachmentService
}

func (s *AttachmentServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.Identity{}, &models.Message{}, &models.Attachment{})
	require.NoError(s.T(), err)

	files, err := storage.NewLocalStorage(s.T().TempDir())
	require.NoError(s.T(), err)

	identityRepo := repository.NewIdentityRepository(db)
	s.db = db
	s.mailboxRepo = repository.NewMailboxRepository(db, nil)
	s.identities = NewIdentityService(identityRepo)
	messages := NewMessageService(identityRepo, s.mailboxRepo)
	s.service = NewAttachmentService(identityRepo, messages, files)

	for _, id := range []int{333333, 444444} {
		_, err := s.identities.Recover(context.Background(), id, "127.0.0.1")
		require.NoError(s.T(), err)
	}
}

func (s *AttachmentServiceTestSuite) TearDownTest() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

func TestAttachmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttachmentServiceTestSuite))
}

func (s *AttachmentServiceTestSuite) sendReport() *models.Message {
	payload := bytes.Repeat([]byte("x"), 1024)
	msg, err := s.service.SendFile(context.Background(), 333333, 444444,
		"report.pdf", int64(len(payload)), bytes.NewReader(payload))
	require.NoError(s.T(), err)
	return msg
}

func (s *AttachmentServiceTestSuite) TestSendFile_BuildsFileMessage() {
	msg := s.sendReport()

	assert.Regexp(s.T(), `^file_[0-9]+$`, msg.MessageID)
	assert.Equal(s.T(), models.KindFile, msg.Kind)
	assert.Equal(s.T(), models.FileContentPlaceholder, msg.Content)
	require.NotNil(s.T(), msg.Attachment)
	assert.Equal(s.T(), "report.pdf", msg.Attachment.OriginalName)
	assert.Regexp(s.T(), `^[0-9]+_report\.pdf$`, msg.Attachment.StoredName)
	assert.EqualValues(s.T(), 1024, msg.Attachment.SizeBytes)
}

func (s *AttachmentServiceTestSuite) TestSendFile_WritesBothCopies() {
	msg := s.sendReport()

	for _, owner := range []int{333333, 444444} {
		log, err := s.mailboxRepo.ReadAll(context.Background(), owner)
		require.NoError(s.T(), err)
		require.Len(s.T(), log, 1)
		assert.Equal(s.T(), msg.MessageID, log[0].MessageID)
		require.NotNil(s.T(), log[0].Attachment)
		assert.Equal(s.T(), msg.Attachment.StoredName, log[0].Attachment.StoredName)
	}
}

func (s *AttachmentServiceTestSuite) TestSendFile_EmptyFilename_Rejected() {
	_, err := s.service.SendFile(context.Background(), 333333, 444444,
		"", 4, strings.NewReader("data"))
	assert.ErrorIs(s.T(), err, apperrors.ErrNoFile)
}

func (s *AttachmentServiceTestSuite) TestSendFile_UnknownReceiver_Rejected() {
	_, err := s.service.SendFile(context.Background(), 333333, 999999,
		"report.pdf", 4, strings.NewReader("data"))
	assert.ErrorIs(s.T(), err, apperrors.ErrUnknownReceiver)
}

func (s *AttachmentServiceTestSuite) TestSendFile_BlockedExtension_Rejected() {
	_, err := s.service.SendFile(context.Background(), 333333, 444444,
		"malware.exe", 4, strings.NewReader("data"))
	require.Error(s.T(), err)

	var appErr *apperrors.AppError
	require.ErrorAs(s.T(), err, &appErr)
	assert.Equal(s.T(), apperrors.CodeInvalidInput, appErr.Code)
}

func (s *AttachmentServiceTestSuite) TestFetch_RoundTrip() {
	msg := s.sendReport()

	reader, info, err := s.service.Fetch(context.Background(), msg.Attachment.StoredName, 444444)
	require.NoError(s.T(), err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(s.T(), err)
	assert.Len(s.T(), data, 1024)
	assert.EqualValues(s.T(), 1024, info.SizeBytes)
	assert.Equal(s.T(), "report.pdf", info.OriginalName)
}

func (s *AttachmentServiceTestSuite) TestFetch_WrongReceiver_NotFound() {
	msg := s.sendReport()

	_, _, err := s.service.Fetch(context.Background(), msg.Attachment.StoredName, 333333)
	assert.ErrorIs(s.T(), err, apperrors.ErrAttachmentNotFound)
}

func (s *AttachmentServiceTestSuite) TestFetch_MalformedName_Rejected() {
	for _, name := range []string{"", "noprefix.pdf", "_leading.pdf"} {
		_, _, err := s.service.Fetch(context.Background(), name, 444444)
		assert.ErrorIs(s.T(), err, apperrors.ErrInvalidName, "name %q", name)
	}
}

func (s *AttachmentServiceTestSuite) TestFetch_TraversalName_Rejected() {
	_, _, err := s.service.Fetch(context.Background(), "123_../../etc/passwd", 444444)
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidName)
}

func (s *AttachmentServiceTestSuite) TestFetch_PolledThroughConversation() {
	// A file message flows through the same claim protocol as text.
	msg := s.sendReport()

	messages := s.service.messages
	claimed, err := messages.PollNew(context.Background(), 444444, 333333)
	require.NoError(s.T(), err)
	require.Len(s.T(), claimed, 1)
	assert.Equal(s.T(), msg.MessageID, claimed[0].MessageID)
	require.NotNil(s.T(), claimed[0].Attachment)

	again, err := messages.PollNew(context.Background(), 444444, 333333)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), again)
}
