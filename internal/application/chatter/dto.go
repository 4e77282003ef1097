package chatter

import (
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/google/uuid"
)

// PostMessageRequest posts a comment on a record's thread
type PostMessageRequest struct {
	Body string `json:"body" binding:"required,min=1,max=10000"`
}

// ScheduleActivityRequest schedules a to-do on a record
type ScheduleActivityRequest struct {
	Summary        string    `json:"summary" binding:"required,min=1,max=200"`
	Note           string    `json:"note" binding:"max=4000"`
	AssignedUserID uuid.UUID `json:"user_id" binding:"required"`
	DeadlineDate   time.Time `json:"date_deadline" binding:"required"`
}

// MarkDoneRequest closes an activity
type MarkDoneRequest struct {
	Feedback string `json:"feedback" binding:"max=4000"`
}

// ActivityListFilter filters the current user's activities
type ActivityListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	State    string `form:"state" binding:"omitempty,oneof=planned done cancelled"`
	ResModel string `form:"res_model"`
}

// MessageListFilter paginates a thread
type MessageListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RequestUploadRequest registers an attachment on a message
type RequestUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,max=100"`
	Size        int64  `json:"file_size" binding:"required,min=1"`
}

// AttachmentResponse is the attachment metadata view
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	MessageID   uuid.UUID `json:"message_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"file_size"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadURLResponse carries a presigned upload URL
type UploadURLResponse struct {
	Attachment AttachmentResponse `json:"attachment"`
	UploadURL  string             `json:"upload_url"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// DownloadURLResponse carries a presigned download URL
type DownloadURLResponse struct {
	Attachment  AttachmentResponse `json:"attachment"`
	DownloadURL string             `json:"download_url"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// MessageResponse is the message view
type MessageResponse struct {
	ID          uuid.UUID            `json:"id"`
	ResModel    string               `json:"res_model"`
	ResID       uuid.UUID            `json:"res_id"`
	AuthorID    *uuid.UUID           `json:"author_id,omitempty"`
	Body        string               `json:"body"`
	MessageType string               `json:"message_type"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ActivityResponse is the activity view
type ActivityResponse struct {
	ID             uuid.UUID  `json:"id"`
	ResModel       string     `json:"res_model"`
	ResID          uuid.UUID  `json:"res_id"`
	ActivityType   string     `json:"activity_type"`
	Summary        string     `json:"summary"`
	Note           string     `json:"note,omitempty"`
	AssignedUserID uuid.UUID  `json:"user_id"`
	DeadlineDate   string     `json:"date_deadline"`
	State          string     `json:"state"`
	Overdue        bool       `json:"overdue"`
	Feedback       string     `json:"feedback,omitempty"`
	DoneAt         *time.Time `json:"done_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToAttachmentResponse converts a domain attachment
func ToAttachmentResponse(a *chatter.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		MessageID:   a.MessageID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		CreatedAt:   a.CreatedAt,
	}
}

// ToMessageResponse converts a domain message
func ToMessageResponse(m *chatter.Message) MessageResponse {
	attachments := make([]AttachmentResponse, len(m.Attachments))
	for i := range m.Attachments {
		attachments[i] = ToAttachmentResponse(&m.Attachments[i])
	}
	return MessageResponse{
		ID:          m.ID,
		ResModel:    m.ResModel,
		ResID:       m.ResID,
		AuthorID:    m.AuthorID,
		Body:        m.Body,
		MessageType: string(m.MessageType),
		Attachments: attachments,
		CreatedAt:   m.CreatedAt,
	}
}

// ToActivityResponse converts a domain activity. today decides Overdue.
func ToActivityResponse(a *chatter.Activity, today time.Time) ActivityResponse {
	return ActivityResponse{
		ID:             a.ID,
		ResModel:       a.ResModel,
		ResID:          a.ResID,
		ActivityType:   string(a.ActivityType),
		Summary:        a.Summary,
		Note:           a.Note,
		AssignedUserID: a.AssignedUserID,
		DeadlineDate:   a.DeadlineDate.Format(time.DateOnly),
		State:          string(a.State),
		Overdue:        a.IsOverdue(today),
		Feedback:       a.Feedback,
		DoneAt:         a.DoneAt,
		CreatedAt:      a.CreatedAt,
	}
}
