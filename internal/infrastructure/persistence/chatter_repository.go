package persistence

import (
	"context"
	"errors"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/erp/procurement/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessageRepository implements chatter.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Save stores a message. Messages are append-only.
func (r *GormMessageRepository) Save(ctx context.Context, msg *chatter.Message) error {
	return r.db.WithContext(ctx).Omit("Attachments").Save(models.MessageModelFromDomain(msg)).Error
}

// FindByID finds a message and its attachments within a tenant
func (r *GormMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Message, error) {
	var model models.MessageModel
	if err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRecord returns the record's thread, newest first
func (r *GormMessageRepository) FindByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, filter shared.Filter) ([]*chatter.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("tenant_id = ? AND res_model = ? AND res_id = ?", tenantID, resModel, resID)
	if messageType, ok := filter.Filters["message_type"]; ok {
		query = query.Where("message_type = ?", messageType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	var msgModels []models.MessageModel
	if err := query.Preload("Attachments").Find(&msgModels).Error; err != nil {
		return nil, 0, err
	}

	msgs := make([]*chatter.Message, len(msgModels))
	for i := range msgModels {
		msgs[i] = msgModels[i].ToDomain()
	}
	return msgs, total, nil
}

// GormActivityRepository implements chatter.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Save creates or updates an activity
func (r *GormActivityRepository) Save(ctx context.Context, activity *chatter.Activity) error {
	return r.db.WithContext(ctx).Save(models.ActivityModelFromDomain(activity)).Error
}

// FindByID finds an activity within a tenant
func (r *GormActivityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Activity, error) {
	var model models.ActivityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAssignee returns the activities assigned to a user. An empty state
// matches every state.
func (r *GormActivityRepository) FindByAssignee(ctx context.Context, tenantID, userID uuid.UUID, state chatter.ActivityState, filter shared.Filter) ([]*chatter.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityModel{}).
		Where("tenant_id = ? AND assigned_user_id = ?", tenantID, userID)
	if state != "" {
		query = query.Where("state = ?", state)
	}
	if resModel, ok := filter.Filters["res_model"]; ok {
		query = query.Where("res_model = ?", resModel)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "deadline_date"
		filter.OrderDir = "asc"
	}
	var activityModels []models.ActivityModel
	if err := paginate(query, filter, ActivitySortFields, "deadline_date").Find(&activityModels).Error; err != nil {
		return nil, 0, err
	}

	activities := make([]*chatter.Activity, len(activityModels))
	for i := range activityModels {
		activities[i] = activityModels[i].ToDomain()
	}
	return activities, total, nil
}

// FindOpenByRecord returns the planned activities of a record
func (r *GormActivityRepository) FindOpenByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID) ([]*chatter.Activity, error) {
	var activityModels []models.ActivityModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND res_model = ? AND res_id = ? AND state = ?",
			tenantID, resModel, resID, chatter.ActivityStatePlanned).
		Order("deadline_date ASC").
		Find(&activityModels).Error; err != nil {
		return nil, err
	}
	activities := make([]*chatter.Activity, len(activityModels))
	for i := range activityModels {
		activities[i] = activityModels[i].ToDomain()
	}
	return activities, nil
}

// GormAttachmentRepository implements chatter.AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Save stores attachment metadata
func (r *GormAttachmentRepository) Save(ctx context.Context, attachment *chatter.Attachment) error {
	return r.db.WithContext(ctx).Save(models.AttachmentModelFromDomain(attachment)).Error
}

// FindByID finds attachment metadata within a tenant
func (r *GormAttachmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Attachment, error) {
	var model models.AttachmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var (
	_ chatter.MessageRepository    = (*GormMessageRepository)(nil)
	_ chatter.ActivityRepository   = (*GormActivityRepository)(nil)
	_ chatter.AttachmentRepository = (*GormAttachmentRepository)(nil)
)
