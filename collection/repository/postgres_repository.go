package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/internal/database/postgres"
	"github.com/drapcode/exchange-engine/internal/types"
)

type postgresRepository struct {
	client *postgres.Client
	schema string
	psql   sq.StatementBuilderType
}

// NewPostgresRepositoryWithSchema reads collections from schema, or from the
// search path when schema is empty.
func NewPostgresRepositoryWithSchema(client *postgres.Client, schema string) Repository {
	return &postgresRepository{
		client: client,
		schema: schema,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *postgresRepository) GetCollection(ctx context.Context, projectID, collectionName string) (types.Optional[models.Collection], error) {
	query, args, err := r.selectCollection(projectID, collectionName)
	if err != nil {
		return types.None[models.Collection](), fmt.Errorf("build collection query: %w", err)
	}

	var raw []byte
	if err := r.client.DB().QueryRowxContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.None[models.Collection](), nil
		}
		return types.None[models.Collection](), fmt.Errorf("select collection: %w", err)
	}

	var collection models.Collection
	if err := json.Unmarshal(raw, &collection); err != nil {
		return types.None[models.Collection](), fmt.Errorf("decode collection %s: %w", collectionName, err)
	}
	collection.ProjectID = projectID
	collection.CollectionName = collectionName
	return types.Some(collection), nil
}

func (r *postgresRepository) selectCollection(projectID, collectionName string) (string, []interface{}, error) {
	return r.psql.
		Select("definition").
		From(r.table()).
		Where(sq.Eq{"project_id": projectID, "collection_name": collectionName}).
		Limit(1).
		ToSql()
}

func (r *postgresRepository) table() string {
	return schemaPrefix(r.schema) + "collections"
}

func schemaPrefix(schema string) string {
	if schema == "" {
		return ""
	}
	return schema + "."
}
