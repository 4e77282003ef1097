package chatter

import (
	"context"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageRepository persists thread messages
type MessageRepository interface {
	Save(ctx context.Context, msg *Message) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Message, error)
	// FindByRecord returns the record's messages, newest first, with their attachments
	FindByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, filter shared.Filter) ([]*Message, int64, error)
}

// ActivityRepository persists scheduled activities
type ActivityRepository interface {
	Save(ctx context.Context, activity *Activity) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Activity, error)
	FindByAssignee(ctx context.Context, tenantID, userID uuid.UUID, state ActivityState, filter shared.Filter) ([]*Activity, int64, error)
	FindOpenByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID) ([]*Activity, error)
}

// AttachmentRepository persists attachment metadata
type AttachmentRepository interface {
	Save(ctx context.Context, attachment *Attachment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Attachment, error)
}
