package chatter

import (
	"context"
	"time"

	"github.com/erp/procurement/internal/domain/chatter"
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository is a mock implementation of chatter.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Save(ctx context.Context, msg *chatter.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Message, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatter.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID, filter shared.Filter) ([]*chatter.Message, int64, error) {
	args := m.Called(ctx, tenantID, resModel, resID, filter)
	return args.Get(0).([]*chatter.Message), args.Get(1).(int64), args.Error(2)
}

// MockActivityRepository is a mock implementation of chatter.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Save(ctx context.Context, activity *chatter.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Activity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatter.Activity), args.Error(1)
}

func (m *MockActivityRepository) FindByAssignee(ctx context.Context, tenantID, userID uuid.UUID, state chatter.ActivityState, filter shared.Filter) ([]*chatter.Activity, int64, error) {
	args := m.Called(ctx, tenantID, userID, state, filter)
	return args.Get(0).([]*chatter.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityRepository) FindOpenByRecord(ctx context.Context, tenantID uuid.UUID, resModel string, resID uuid.UUID) ([]*chatter.Activity, error) {
	args := m.Called(ctx, tenantID, resModel, resID)
	return args.Get(0).([]*chatter.Activity), args.Error(1)
}

// MockAttachmentRepository is a mock implementation of chatter.AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Save(ctx context.Context, attachment *chatter.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*chatter.Attachment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatter.Attachment), args.Error(1)
}

// MockObjectStorage is a mock implementation of ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}
