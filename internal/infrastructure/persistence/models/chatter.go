package models

import (
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageModel is the persistence model for a chatter message.
type MessageModel struct {
	TenantModel
	ResModel    string              `gorm:"type:varchar(64);not null;index:idx_message_record,priority:1"`
	ResID       uuid.UUID           `gorm:"type:uuid;not null;index:idx_message_record,priority:2"`
	AuthorID    *uuid.UUID          `gorm:"type:uuid"`
	Body        string              `gorm:"type:text;not null"`
	MessageType chatter.MessageType `gorm:"type:varchar(20);not null"`
	Attachments []AttachmentModel   `gorm:"foreignKey:MessageID;references:ID"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "chatter_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() *chatter.Message {
	msg := &chatter.Message{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		ResModel:    m.ResModel,
		ResID:       m.ResID,
		AuthorID:    m.AuthorID,
		Body:        m.Body,
		MessageType: m.MessageType,
		Attachments: make([]chatter.Attachment, len(m.Attachments)),
	}
	for i := range m.Attachments {
		msg.Attachments[i] = *m.Attachments[i].ToDomain()
	}
	return msg
}

// MessageModelFromDomain creates a new persistence model from a domain Message.
// Attachments are saved through their own repository.
func MessageModelFromDomain(msg *chatter.Message) *MessageModel {
	m := &MessageModel{
		ResModel:    msg.ResModel,
		ResID:       msg.ResID,
		AuthorID:    msg.AuthorID,
		Body:        msg.Body,
		MessageType: msg.MessageType,
	}
	m.FromDomainBaseEntity(msg.BaseEntity)
	m.TenantID = msg.TenantID
	return m
}

// ActivityModel is the persistence model for a scheduled activity.
type ActivityModel struct {
	TenantModel
	ResModel       string                `gorm:"type:varchar(64);not null;index:idx_activity_record,priority:1"`
	ResID          uuid.UUID             `gorm:"type:uuid;not null;index:idx_activity_record,priority:2"`
	ActivityType   chatter.ActivityType  `gorm:"type:varchar(20);not null"`
	Summary        string                `gorm:"type:varchar(200);not null"`
	Note           string                `gorm:"type:text"`
	AssignedUserID uuid.UUID             `gorm:"type:uuid;not null;index"`
	DeadlineDate   time.Time             `gorm:"type:date;not null"`
	State          chatter.ActivityState `gorm:"type:varchar(20);not null;default:'planned';index"`
	Feedback       string                `gorm:"type:text"`
	DoneAt         *time.Time
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "chatter_activities"
}

// ToDomain converts the persistence model to a domain Activity.
func (m *ActivityModel) ToDomain() *chatter.Activity {
	return &chatter.Activity{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		ResModel:       m.ResModel,
		ResID:          m.ResID,
		ActivityType:   m.ActivityType,
		Summary:        m.Summary,
		Note:           m.Note,
		AssignedUserID: m.AssignedUserID,
		DeadlineDate:   shared.DateOf(m.DeadlineDate),
		State:          m.State,
		Feedback:       m.Feedback,
		DoneAt:         m.DoneAt,
	}
}

// ActivityModelFromDomain creates a new persistence model from a domain Activity.
func ActivityModelFromDomain(a *chatter.Activity) *ActivityModel {
	m := &ActivityModel{
		ResModel:       a.ResModel,
		ResID:          a.ResID,
		ActivityType:   a.ActivityType,
		Summary:        a.Summary,
		Note:           a.Note,
		AssignedUserID: a.AssignedUserID,
		DeadlineDate:   a.DeadlineDate,
		State:          a.State,
		Feedback:       a.Feedback,
		DoneAt:         a.DoneAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	return m
}

// AttachmentModel is the persistence model for attachment metadata.
type AttachmentModel struct {
	TenantModel
	MessageID   uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	StorageKey  string    `gorm:"type:varchar(500);not null;uniqueIndex"`
	Size        int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttachmentModel) TableName() string {
	return "chatter_attachments"
}

// ToDomain converts the persistence model to a domain Attachment.
func (m *AttachmentModel) ToDomain() *chatter.Attachment {
	return &chatter.Attachment{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		MessageID:   m.MessageID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		StorageKey:  m.StorageKey,
		Size:        m.Size,
	}
}

// AttachmentModelFromDomain creates a new persistence model from a domain Attachment.
func AttachmentModelFromDomain(a *chatter.Attachment) *AttachmentModel {
	m := &AttachmentModel{
		MessageID:   a.MessageID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		StorageKey:  a.StorageKey,
		Size:        a.Size,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	m.TenantID = a.TenantID
	return m
}
