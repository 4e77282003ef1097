package chatter

import (
	"fmt"
	"path"
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentSize caps uploaded files at 25 MiB
const MaxAttachmentSize int64 = 25 << 20

// Attachment is a file stored in object storage and linked to a message
type Attachment struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	MessageID   uuid.UUID
	FileName    string
	ContentType string
	StorageKey  string
	Size        int64
}

// NewAttachment registers a file for a message. The storage key is derived
// from the tenant, message and attachment IDs.
func NewAttachment(tenantID, messageID uuid.UUID, fileName, contentType string, size int64) (*Attachment, error) {
	fileName = strings.TrimSpace(path.Base(strings.ReplaceAll(fileName, "\\", "/")))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if size > MaxAttachmentSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("File size cannot exceed %d bytes", MaxAttachmentSize))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a := &Attachment{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		MessageID:   messageID,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}
	a.StorageKey = fmt.Sprintf("chatter/%s/%s/%s/%s", tenantID, messageID, a.ID, fileName)
	return a, nil
}
