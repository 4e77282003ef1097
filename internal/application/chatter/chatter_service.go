// Package chatter holds the use cases of record threads: messages,
// scheduled activities and attachments stored in object storage.
package chatter

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage is the object store holding attachment content
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// GenerateDownloadURL returns a presigned GET URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ErrAttachmentNotUploaded is returned when downloading an attachment whose
// content never reached the object store
var ErrAttachmentNotUploaded = shared.NewDomainError("ATTACHMENT_NOT_UPLOADED", "The attachment content has not been uploaded yet.")

// Config holds the presigned URL lifetimes
type Config struct {
	UploadURLExpiry   time.Duration
	DownloadURLExpiry time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
	}
}

// ChatterService handles record threads
type ChatterService struct {
	messageRepo    chatter.MessageRepository
	activityRepo   chatter.ActivityRepository
	attachmentRepo chatter.AttachmentRepository
	storage        ObjectStorage
	clock          shared.Clock
	config         Config
}

// NewChatterService creates a new ChatterService
func NewChatterService(
	messageRepo chatter.MessageRepository,
	activityRepo chatter.ActivityRepository,
	attachmentRepo chatter.AttachmentRepository,
	storage ObjectStorage,
	clock shared.Clock,
	config Config,
) *ChatterService {
	return &ChatterService{
		messageRepo:    messageRepo,
		activityRepo:   activityRepo,
		attachmentRepo: attachmentRepo,
		storage:        storage,
		clock:          clock,
		config:         config,
	}
}

// PostMessage posts a user comment on a record
func (s *ChatterService) PostMessage(ctx context.Context, tenantID uuid.UUID, resModel string, resID, authorID uuid.UUID, req PostMessageRequest) (*MessageResponse, error) {
	msg, err := chatter.NewMessage(tenantID, resModel, resID, &authorID, req.Body, chatter.MessageTypeComment)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Save(ctx, msg); err != nil {
		return nil, err
	}
	logger.L(ctx).Debug("message posted", logger.Record(resModel, resID), zap.String("message_id", msg.ID.String()))

	response := ToMessageResponse(msg)
	return &response, nil
}

// ListMessages returns a record's thread, newest first
func (s *ChatterService) ListMessages(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, filter MessageListFilter) ([]MessageResponse, int64, error) {
	if !chatter.IsKnownResModel(resModel) {
		return nil, 0, shared.NewDomainError("INVALID_RES_MODEL", "Unknown record model: "+resModel)
	}
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	messages, total, err := s.messageRepo.FindByRecord(ctx, tenantID, resModel, resID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	items := make([]MessageResponse, len(messages))
	for i, m := range messages {
		items[i] = ToMessageResponse(m)
	}
	return items, total, nil
}

// ScheduleActivity schedules a to-do on a record
func (s *ChatterService) ScheduleActivity(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, req ScheduleActivityRequest) (*ActivityResponse, error) {
	activity, err := chatter.NewActivity(tenantID, resModel, resID, chatter.ActivityTypeTodo,
		req.Summary, req.Note, req.AssignedUserID, req.DeadlineDate)
	if err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}
	response := ToActivityResponse(activity, shared.Today(s.clock))
	return &response, nil
}

// ListMyActivities returns the activities assigned to a user. Without a
// state filter only planned activities are listed.
func (s *ChatterService) ListMyActivities(ctx context.Context, tenantID, userID uuid.UUID, filter ActivityListFilter) ([]ActivityResponse, int64, error) {
	state := chatter.ActivityStatePlanned
	if filter.State != "" {
		state = chatter.ActivityState(filter.State)
	}
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.ResModel != "" {
		domainFilter.Filters["res_model"] = filter.ResModel
	}

	activities, total, err := s.activityRepo.FindByAssignee(ctx, tenantID, userID, state, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	today := shared.Today(s.clock)
	items := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		items[i] = ToActivityResponse(a, today)
	}
	return items, total, nil
}

// MarkActivityDone closes an activity assigned to the user
func (s *ChatterService) MarkActivityDone(ctx context.Context, tenantID, id, userID uuid.UUID, req MarkDoneRequest) (*ActivityResponse, error) {
	activity, err := s.activityRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := activity.MarkDone(userID, req.Feedback, false, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}
	response := ToActivityResponse(activity, shared.Today(s.clock))
	return &response, nil
}

// RequestAttachmentUpload registers an attachment on a message and returns
// a presigned URL the client uploads the content to
func (s *ChatterService) RequestAttachmentUpload(ctx context.Context, tenantID, messageID uuid.UUID, req RequestUploadRequest) (*UploadURLResponse, error) {
	msg, err := s.messageRepo.FindByID(ctx, tenantID, messageID)
	if err != nil {
		return nil, err
	}

	attachment, err := chatter.NewAttachment(tenantID, msg.ID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, attachment.StorageKey, attachment.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("attachment upload requested",
		logger.Record(msg.ResModel, msg.ResID),
		zap.String("attachment_id", attachment.ID.String()),
		zap.Int64("size", attachment.Size),
	)

	return &UploadURLResponse{
		Attachment: ToAttachmentResponse(attachment),
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// AttachmentDownloadURL returns a presigned URL for an uploaded attachment
func (s *ChatterService) AttachmentDownloadURL(ctx context.Context, tenantID, id uuid.UUID) (*DownloadURLResponse, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, attachment.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check attachment content: %w", err)
	}
	if !exists {
		return nil, ErrAttachmentNotUploaded
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &DownloadURLResponse{
		Attachment:  ToAttachmentResponse(attachment),
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// CloseActivitiesFor closes every planned activity of a record. done marks
// them done on behalf of the system, otherwise they are cancelled.
func (s *ChatterService) CloseActivitiesFor(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, done bool) (int, error) {
	activities, err := s.activityRepo.FindOpenByRecord(ctx, tenantID, resModel, resID)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, a := range activities {
		if done {
			err = a.MarkDone(uuid.Nil, "", true, s.clock.Now())
		} else {
			err = a.Cancel()
		}
		if err != nil {
			// Already closed by a concurrent writer.
			continue
		}
		if err := s.activityRepo.Save(ctx, a); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}
