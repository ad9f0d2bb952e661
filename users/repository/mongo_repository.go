package repository

import (
	"context"
	"fmt"
	"regexp"

	dbi "github.com/drapcode/exchange-engine/internal/database/interfaces"
	"github.com/drapcode/exchange-engine/internal/types"
	"go.mongodb.org/mongo-driver/bson"
)

type mongoRepository struct {
	provider    dbi.Provider
	collections Collections
}

// NewMongoRepository reads users from each project's item database.
func NewMongoRepository(provider dbi.Provider, collections Collections) Repository {
	return &mongoRepository{provider: provider, collections: collections}
}

// loginFilter matches subject exactly, ignoring case, on email or userName.
func loginFilter(subject string) bson.M {
	pattern := bson.M{"$regex": "^" + regexp.QuoteMeta(subject) + "$", "$options": "i"}
	return bson.M{"$or": bson.A{
		bson.M{"email": pattern},
		bson.M{"userName": pattern},
	}}
}

func (r *mongoRepository) findOne(ctx context.Context, projectID, collection string, filter interface{}) (types.Optional[Document], error) {
	res := <-r.provider.ForProject(projectID).FindOne(ctx, collection, filter)
	if res.NoResult() {
		return types.None[Document](), nil
	}
	if err := res.Error(); err != nil {
		return types.None[Document](), fmt.Errorf("find %s: %w", collection, err)
	}
	var doc bson.M
	if err := res.Decode(&doc); err != nil {
		return types.None[Document](), fmt.Errorf("decode %s: %w", collection, err)
	}
	return types.Some(Document(doc)), nil
}

func (r *mongoRepository) FindByLogin(ctx context.Context, projectID, subject string) (types.Optional[Document], error) {
	if subject == "" {
		return types.None[Document](), nil
	}
	return r.findOne(ctx, projectID, r.collections.Users, loginFilter(subject))
}

func (r *mongoRepository) FindByField(ctx context.Context, projectID, field string, value interface{}) (types.Optional[Document], error) {
	return r.findOne(ctx, projectID, r.collections.Users, bson.M{field: value})
}

func (r *mongoRepository) FindTenant(ctx context.Context, projectID, tenantID string) (types.Optional[Document], error) {
	if tenantID == "" {
		return types.None[Document](), nil
	}
	return r.findOne(ctx, projectID, r.collections.Tenants, bson.M{"uuid": tenantID})
}

func (r *mongoRepository) FindUserSetting(ctx context.Context, projectID, settingID string) (types.Optional[Document], error) {
	if settingID == "" {
		return types.None[Document](), nil
	}
	return r.findOne(ctx, projectID, r.collections.UserSettings, bson.M{"uuid": settingID})
}

func (r *mongoRepository) FindRoleByName(ctx context.Context, projectID, name string) (types.Optional[Document], error) {
	if name == "" {
		return types.None[Document](), nil
	}
	return r.findOne(ctx, projectID, r.collections.Roles, bson.M{"name": name})
}

func (r *mongoRepository) FindRoleByUUID(ctx context.Context, projectID, roleUUID string) (types.Optional[Document], error) {
	if roleUUID == "" {
		return types.None[Document](), nil
	}
	return r.findOne(ctx, projectID, r.collections.Roles, bson.M{"uuid": roleUUID})
}

func (r *mongoRepository) CreateUser(ctx context.Context, projectID string, user Document) error {
	res := <-r.provider.ForProject(projectID).Save(ctx, r.collections.Users, user)
	if res.Error != nil {
		return fmt.Errorf("create user: %w", res.Error)
	}
	return nil
}

func (r *mongoRepository) UpdateUser(ctx context.Context, projectID, userUUID string, set Document) error {
	res := <-r.provider.ForProject(projectID).UpdateFields(ctx, r.collections.Users, bson.M{"uuid": userUUID}, set)
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	return nil
}

func (r *mongoRepository) UnsetUserFields(ctx context.Context, projectID, userUUID string, fields []string) error {
	res := <-r.provider.ForProject(projectID).UnsetFields(ctx, r.collections.Users, bson.M{"uuid": userUUID}, fields)
	if res.Error != nil {
		return fmt.Errorf("unset user fields: %w", res.Error)
	}
	return nil
}
