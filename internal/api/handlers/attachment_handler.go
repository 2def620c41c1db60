package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ghostnote-im/ghostnote-backend/internal/api/middleware"
	"github.com/ghostnote-im/ghostnote-backend/internal/api/response"
	apperrors "github.com/ghostnote-im/ghostnote-backend/internal/errors"
	"github.com/ghostnote-im/ghostnote-backend/internal/logger"
	"github.com/ghostnote-im/ghostnote-backend/internal/services"
	"github.com/ghostnote-im/ghostnote-backend/internal/validator"
	"github.com/labstack/echo/v4"
)

// AttachmentHandler handles file upload and download HTTP requests
type AttachmentHandler struct {
	attachments *services.AttachmentService
	secLog      *logger.SecurityLogger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachments *services.AttachmentService, secLog *logger.SecurityLogger) *AttachmentHandler {
	return &AttachmentHandler{
		attachments: attachments,
		secLog:      secLog,
	}
}

// Send handles POST /api/files: multipart upload addressed to target_id.
func (h *AttachmentHandler) Send(c echo.Context) error {
	senderID, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}

	targetID, err := parseIdentityParam(c.FormValue("target_id"))
	if err != nil {
		return response.BadRequest(c, "target_id is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "no file provided")
	}
	if fileHeader.Filename == "" {
		return response.BadRequest(c, "no file provided")
	}
	filename := validator.SanitizeFilename(fileHeader.Filename)

	src, err := fileHeader.Open()
	if err != nil {
		return response.InternalError(c, "failed to read upload")
	}
	defer src.Close()

	message, err := h.attachments.SendFile(c.Request().Context(), senderID, targetID, filename, fileHeader.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoFile):
			return response.BadRequest(c, "no file provided")
		case errors.Is(err, apperrors.ErrUnknownReceiver):
			return response.NotFound(c, "target identity does not exist")
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeInvalidInput {
			if h.secLog != nil {
				h.secLog.BlockedFileUpload(c.RealIP(), filename, appErr.Message)
			}
			return response.BadRequest(c, appErr.Message)
		}
		return response.InternalError(c, "failed to send file")
	}

	return response.Created(c, map[string]interface{}{
		"message": message,
		"file_url": fmt.Sprintf("/api/files/%s?receiver_id=%d",
			message.Attachment.StoredName, targetID),
	})
}

// Fetch handles GET /api/files/:stored_name, a receiver-scoped download.
// The receiver defaults to the session identity and may be overridden by
// the receiver_id query parameter (links shared inside a conversation).
func (h *AttachmentHandler) Fetch(c echo.Context) error {
	receiverID, ok := middleware.IdentityID(c)
	if !ok {
		return response.Unauthorized(c, "no session identity")
	}
	if q := c.QueryParam("receiver_id"); q != "" {
		id, err := parseIdentityParam(q)
		if err != nil {
			return response.BadRequest(c, "invalid receiver_id")
		}
		receiverID = id
	}

	storedName := c.Param("stored_name")

	reader, info, err := h.attachments.Fetch(c.Request().Context(), storedName, receiverID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAttachmentNotFound):
			return response.NotFound(c, "attachment not found")
		case errors.Is(err, apperrors.ErrInvalidName):
			if h.secLog != nil {
				h.secLog.PathTraversalAttempt(c.RealIP(), c.Path(), storedName)
			}
			return response.BadRequest(c, "invalid attachment name")
		}
		return response.InternalError(c, "failed to fetch attachment")
	}
	defer reader.Close()

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, info.OriginalName))
	if info.SizeBytes > 0 {
		c.Response().Header().Set("Content-Length", strconv.FormatInt(info.SizeBytes, 10))
	}

	return c.Stream(http.StatusOK, "application/octet-stream", reader)
}
