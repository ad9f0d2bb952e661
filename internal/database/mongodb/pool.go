// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"sync"

	"github.com/drapcode/exchange-engine/internal/database/interfaces"
	"go.mongodb.org/mongo-driver/mongo"
)

// Pool owns the process-wide client and hands out one repository per project
// database. Repositories are created once and reused.
type Pool struct {
	client *mongo.Client
	prefix string
	repos  sync.Map
}

// NewPool connects once and returns a pool over that connection.
func NewPool(ctx context.Context, config *interfaces.MongoDBConfig) (*Pool, error) {
	client, err := Connect(ctx, config)
	if err != nil {
		return nil, err
	}
	return &Pool{client: client, prefix: config.DatabasePrefix}, nil
}

// ForProject returns the repository of the project's item database.
func (p *Pool) ForProject(projectID string) interfaces.Repository {
	name := p.DatabaseName(projectID)
	if repo, ok := p.repos.Load(name); ok {
		return repo.(*MongoRepository)
	}
	repo, _ := p.repos.LoadOrStore(name, NewMongoRepository(p.client, name))
	return repo.(*MongoRepository)
}

// DatabaseName maps a project to its database.
func (p *Pool) DatabaseName(projectID string) string {
	return p.prefix + projectID
}

// Ping checks the deployment is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

// Close disconnects the shared client.
func (p *Pool) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}

var _ interfaces.Provider = (*Pool)(nil)
