package services

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	collectionrepo "github.com/drapcode/exchange-engine/collection/repository"
	"github.com/drapcode/exchange-engine/internal/types"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

// MockCollectionRepository is a test double for the collection schema store.
type MockCollectionRepository struct {
	mock.Mock
}

var _ collectionrepo.Repository = (*MockCollectionRepository)(nil)

func (m *MockCollectionRepository) GetCollection(ctx context.Context, projectID, collectionName string) (types.Optional[collectionmodels.Collection], error) {
	args := m.Called(ctx, projectID, collectionName)
	return args.Get(0).(types.Optional[collectionmodels.Collection]), args.Error(1)
}

// MockUserRepository is a test double for the project user store.
type MockUserRepository struct {
	mock.Mock
}

var _ usersrepo.Repository = (*MockUserRepository)(nil)

func (m *MockUserRepository) optional(args mock.Arguments) (types.Optional[usersrepo.Document], error) {
	return args.Get(0).(types.Optional[usersrepo.Document]), args.Error(1)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, projectID, subject string) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, subject))
}

func (m *MockUserRepository) FindByField(ctx context.Context, projectID, field string, value interface{}) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, field, value))
}

func (m *MockUserRepository) FindTenant(ctx context.Context, projectID, tenantID string) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, tenantID))
}

func (m *MockUserRepository) FindUserSetting(ctx context.Context, projectID, settingID string) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, settingID))
}

func (m *MockUserRepository) FindRoleByName(ctx context.Context, projectID, name string) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, name))
}

func (m *MockUserRepository) FindRoleByUUID(ctx context.Context, projectID, roleUUID string) (types.Optional[usersrepo.Document], error) {
	return m.optional(m.Called(ctx, projectID, roleUUID))
}

func (m *MockUserRepository) CreateUser(ctx context.Context, projectID string, user usersrepo.Document) error {
	return m.Called(ctx, projectID, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, projectID, userUUID string, set usersrepo.Document) error {
	return m.Called(ctx, projectID, userUUID, set).Error(0)
}

func (m *MockUserRepository) UnsetUserFields(ctx context.Context, projectID, userUUID string, fields []string) error {
	return m.Called(ctx, projectID, userUUID, fields).Error(0)
}

// MockTokenVerifier is a test double for bearer token verification.
type MockTokenVerifier struct {
	mock.Mock
}

var _ TokenVerifier = (*MockTokenVerifier)(nil)

func (m *MockTokenVerifier) VerifyToken(token string) (jwt.MapClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jwt.MapClaims), args.Error(1)
}

// MockExecutor is a test double for pipeline execution.
type MockExecutor struct {
	mock.Mock
}

var _ Executor = (*MockExecutor)(nil)

func (m *MockExecutor) Execute(ctx context.Context, projectID, collectionName string, pipeline mongo.Pipeline) ([]map[string]interface{}, error) {
	args := m.Called(ctx, projectID, collectionName, pipeline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}
