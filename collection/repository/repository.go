package repository

import (
	"context"

	"github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/internal/types"
)

// Repository reads collection schemas from the builder database.
type Repository interface {
	// GetCollection returns the full collection definition.
	GetCollection(ctx context.Context, projectID, collectionName string) (types.Optional[models.Collection], error)
}

// FindCollection returns the collection with Finder set to the finder named
// by filterUUID. An unknown collection or finder is absent. An empty
// filterUUID returns the collection without a selected finder.
func FindCollection(ctx context.Context, repo Repository, projectID, collectionName, filterUUID string) (types.Optional[models.Collection], error) {
	found, err := repo.GetCollection(ctx, projectID, collectionName)
	if err != nil {
		return types.None[models.Collection](), err
	}
	if filterUUID == "" || !found.Present() {
		return found, nil
	}
	collection, _ := found.Get()
	return collection.WithFinder(filterUUID), nil
}
