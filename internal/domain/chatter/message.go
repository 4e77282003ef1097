// Package chatter holds the discussion thread attached to business records:
// posted messages, scheduled activities and file attachments.
package chatter

import (
	"strings"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// Resource models that carry a chatter thread
const (
	ResModelPurchaseOrder = "purchase.order"
	ResModelProject       = "project.project"
)

var resModels = map[string]bool{
	ResModelPurchaseOrder: true,
	ResModelProject:       true,
}

// IsKnownResModel reports whether the model has a chatter thread
func IsKnownResModel(model string) bool {
	return resModels[model]
}

// MessageType distinguishes user comments from system notifications
type MessageType string

const (
	MessageTypeComment      MessageType = "comment"
	MessageTypeNotification MessageType = "notification"
)

// IsValid checks if the message type is known
func (t MessageType) IsValid() bool {
	return t == MessageTypeComment || t == MessageTypeNotification
}

// Message is a post in a record's thread
type Message struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	ResModel    string
	ResID       uuid.UUID
	AuthorID    *uuid.UUID
	Body        string
	MessageType MessageType
	Attachments []Attachment
}

// NewMessage creates a message on a record
func NewMessage(tenantID uuid.UUID, resModel string, resID uuid.UUID, authorID *uuid.UUID, body string, messageType MessageType) (*Message, error) {
	if !IsKnownResModel(resModel) {
		return nil, shared.NewDomainError("INVALID_RES_MODEL", "Unknown record model: "+resModel)
	}
	if resID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RES_ID", "Record ID cannot be empty")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Message body cannot be empty")
	}
	if !messageType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MESSAGE_TYPE", "Message type must be comment or notification")
	}
	return &Message{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		ResModel:    resModel,
		ResID:       resID,
		AuthorID:    authorID,
		Body:        body,
		MessageType: messageType,
		Attachments: make([]Attachment, 0),
	}, nil
}

// CancellationBody renders the note posted when a purchase order is
// cancelled through the reason wizard
func CancellationBody(userName, reason string) string {
	return "PURCHASE ORDER CANCELLED\nCancelled by: " + userName + "\nCancellation Reason: " + reason
}
