package repository

import (
	"context"

	"github.com/drapcode/exchange-engine/internal/types"
)

// Document is a raw item from a project database.
type Document = map[string]interface{}

// Repository reads and writes the auth-related collections of a project.
type Repository interface {
	// FindByLogin matches subject case-insensitively against email or userName.
	FindByLogin(ctx context.Context, projectID, subject string) (types.Optional[Document], error)

	// FindByField returns the first user whose field equals value.
	FindByField(ctx context.Context, projectID, field string, value interface{}) (types.Optional[Document], error)

	FindTenant(ctx context.Context, projectID, tenantID string) (types.Optional[Document], error)
	FindUserSetting(ctx context.Context, projectID, settingID string) (types.Optional[Document], error)
	FindRoleByName(ctx context.Context, projectID, name string) (types.Optional[Document], error)
	FindRoleByUUID(ctx context.Context, projectID, roleUUID string) (types.Optional[Document], error)

	CreateUser(ctx context.Context, projectID string, user Document) error
	UpdateUser(ctx context.Context, projectID, userUUID string, set Document) error
	UnsetUserFields(ctx context.Context, projectID, userUUID string, fields []string) error
}

// Collections names the project collections the repository reads.
type Collections struct {
	Users        string
	Tenants      string
	UserSettings string
	Roles        string
}
