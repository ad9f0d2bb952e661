// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/drapcode/exchange-engine/internal/database/interfaces"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoRepository implements the Repository interface for one project database
type MongoRepository struct {
	database *mongo.Database
	dbName   string
}

// MongoQueryResult implements QueryResult for MongoDB
type MongoQueryResult struct {
	cursor *mongo.Cursor
	ctx    context.Context
	err    error
}

// MongoSingleResult implements SingleResult for MongoDB
type MongoSingleResult struct {
	result   *mongo.SingleResult
	err      error
	noResult bool
}

// Connect opens the shared client used by every project repository.
func Connect(ctx context.Context, config *interfaces.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(buildConnectionURI(config))

	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(config.MaxPoolSize)
	}
	if config.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(config.MinPoolSize)
	}
	for _, opt := range []struct {
		value time.Duration
		apply func(time.Duration) *options.ClientOptions
	}{
		{config.ConnectTimeout, clientOptions.SetConnectTimeout},
		{config.SocketTimeout, clientOptions.SetSocketTimeout},
		{config.MaxConnIdleTime, clientOptions.SetMaxConnIdleTime},
		{config.ServerSelectionTimeout, clientOptions.SetServerSelectionTimeout},
	} {
		if opt.value > 0 {
			opt.apply(opt.value)
		}
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// NewMongoRepository binds a repository to databaseName on an open client.
func NewMongoRepository(client *mongo.Client, databaseName string) *MongoRepository {
	return &MongoRepository{
		database: client.Database(databaseName),
		dbName:   databaseName,
	}
}

// buildConnectionURI renders the deployment settings as a mongodb:// URI.
// Credentials are escaped.
func buildConnectionURI(config *interfaces.MongoDBConfig) string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
	}
	if config.Username != "" && config.Password != "" {
		u.User = url.UserPassword(config.Username, config.Password)
	}

	params := url.Values{}
	if config.AuthDatabase != "" {
		params.Set("authSource", config.AuthDatabase)
	}
	if config.ReplicaSet != "" {
		params.Set("replicaSet", config.ReplicaSet)
	}
	if config.TLS {
		params.Set("tls", "true")
	}
	if len(params) > 0 {
		u.Path = "/"
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// Name returns the database name.
func (r *MongoRepository) Name() string {
	return r.dbName
}

// Save stores a single document
func (r *MongoRepository) Save(ctx context.Context, collectionName string, data interface{}) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult, 1)

	go func() {
		defer close(result)

		insertResult, err := r.database.Collection(collectionName).InsertOne(ctx, data)
		if err != nil {
			log.ErrorWithContext(ctx, "MongoDB Save error on %s.%s: %s", r.dbName, collectionName, err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}

		result <- interfaces.RepositoryResult{Result: insertResult.InsertedID}
	}()

	return result
}

// FindOne retrieves a single document
func (r *MongoRepository) FindOne(ctx context.Context, collectionName string, filter interface{}) <-chan interfaces.SingleResult {
	result := make(chan interfaces.SingleResult, 1)

	go func() {
		defer close(result)

		singleResult := r.database.Collection(collectionName).FindOne(ctx, filter)
		if err := singleResult.Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				result <- &MongoSingleResult{result: singleResult, noResult: true}
				return
			}
			log.ErrorWithContext(ctx, "MongoDB FindOne error on %s.%s: %s", r.dbName, collectionName, err.Error())
			result <- &MongoSingleResult{err: err}
			return
		}

		result <- &MongoSingleResult{result: singleResult}
	}()

	return result
}

// Aggregate runs an aggregation pipeline
func (r *MongoRepository) Aggregate(ctx context.Context, collectionName string, pipeline interface{}) <-chan interfaces.QueryResult {
	result := make(chan interfaces.QueryResult, 1)

	go func() {
		defer close(result)

		cursor, err := r.database.Collection(collectionName).Aggregate(ctx, pipeline)
		if err != nil {
			log.ErrorWithContext(ctx, "MongoDB Aggregate error on %s.%s: %s", r.dbName, collectionName, err.Error())
			result <- &MongoQueryResult{err: err}
			return
		}

		result <- &MongoQueryResult{cursor: cursor, ctx: ctx}
	}()

	return result
}

// UpdateFields sets fields on the first matching document
func (r *MongoRepository) UpdateFields(ctx context.Context, collectionName string, filter interface{}, updates map[string]interface{}) <-chan interfaces.RepositoryResult {
	return r.updateOne(ctx, collectionName, filter, bson.M{"$set": updates})
}

// UnsetFields removes fields from the first matching document
func (r *MongoRepository) UnsetFields(ctx context.Context, collectionName string, filter interface{}, fields []string) <-chan interfaces.RepositoryResult {
	unset := bson.M{}
	for _, f := range fields {
		unset[f] = ""
	}
	return r.updateOne(ctx, collectionName, filter, bson.M{"$unset": unset})
}

func (r *MongoRepository) updateOne(ctx context.Context, collectionName string, filter interface{}, update bson.M) <-chan interfaces.RepositoryResult {
	result := make(chan interfaces.RepositoryResult, 1)

	go func() {
		defer close(result)

		updateResult, err := r.database.Collection(collectionName).UpdateOne(ctx, filter, update)
		if err != nil {
			log.ErrorWithContext(ctx, "MongoDB Update error on %s.%s: %s", r.dbName, collectionName, err.Error())
			result <- interfaces.RepositoryResult{Error: err}
			return
		}
		if updateResult.MatchedCount == 0 {
			result <- interfaces.RepositoryResult{Error: interfaces.ErrNoDocuments}
			return
		}

		result <- interfaces.RepositoryResult{Result: updateResult.ModifiedCount}
	}()

	return result
}

// Ping checks the database connection
func (r *MongoRepository) Ping(ctx context.Context) <-chan error {
	result := make(chan error, 1)

	go func() {
		defer close(result)
		result <- r.database.Client().Ping(ctx, readpref.Primary())
	}()

	return result
}

func (r *MongoQueryResult) Next() bool {
	if r.cursor == nil {
		return false
	}
	return r.cursor.Next(r.ctx)
}

func (r *MongoQueryResult) Decode(v interface{}) error {
	if r.cursor == nil {
		return fmt.Errorf("cursor is nil")
	}
	return r.cursor.Decode(v)
}

func (r *MongoQueryResult) Close() {
	if r.cursor != nil {
		r.cursor.Close(r.ctx)
	}
}

func (r *MongoQueryResult) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.cursor != nil {
		return r.cursor.Err()
	}
	return nil
}

func (r *MongoSingleResult) Decode(v interface{}) error {
	if r.result == nil {
		return fmt.Errorf("result is nil")
	}
	if err := r.result.Decode(v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.noResult = true
			return interfaces.ErrNoDocuments
		}
		return err
	}
	return nil
}

func (r *MongoSingleResult) Error() error {
	if r.noResult {
		return interfaces.ErrNoDocuments
	}
	return r.err
}

func (r *MongoSingleResult) NoResult() bool {
	return r.noResult
}
