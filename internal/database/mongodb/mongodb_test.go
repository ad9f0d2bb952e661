// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/drapcode/exchange-engine/internal/database/interfaces"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildConnectionURI(t *testing.T) {
	t.Run("host only", func(t *testing.T) {
		uri := buildConnectionURI(&interfaces.MongoDBConfig{Host: "localhost", Port: 27017})
		assert.Equal(t, "mongodb://localhost:27017", uri)
	})

	t.Run("credentials and options", func(t *testing.T) {
		uri := buildConnectionURI(&interfaces.MongoDBConfig{
			Host: "db", Port: 27018, Username: "u", Password: "p",
			AuthDatabase: "admin", ReplicaSet: "rs0", TLS: true,
		})
		assert.Equal(t, "mongodb://u:p@db:27018/?authSource=admin&replicaSet=rs0&tls=true", uri)
	})

	t.Run("replica set without auth database", func(t *testing.T) {
		uri := buildConnectionURI(&interfaces.MongoDBConfig{Host: "db", Port: 1, ReplicaSet: "rs0"})
		assert.Equal(t, "mongodb://db:1/?replicaSet=rs0", uri)
	})

	t.Run("credentials are escaped", func(t *testing.T) {
		uri := buildConnectionURI(&interfaces.MongoDBConfig{Host: "db", Port: 1, Username: "u", Password: "p@ss/word"})
		assert.Equal(t, "mongodb://u:p%40ss%2Fword@db:1", uri)
	})
}

func testPool(t *testing.T) *Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, &interfaces.MongoDBConfig{
		Host: "localhost", Port: 27017, ServerSelectionTimeout: 2 * time.Second, DatabasePrefix: "exchange_test_",
	})
	if err != nil {
		t.Skipf("Skipping test: MongoDB not available: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return pool
}

func TestPool_ForProjectReusesRepository(t *testing.T) {
	pool := testPool(t)

	a := pool.ForProject("p1")
	b := pool.ForProject("p1")
	c := pool.ForProject("p2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "exchange_test_p1", a.(*MongoRepository).Name())
}

func TestMongoRepository_Integration(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	project, _ := uuid.NewV4()
	repo := pool.ForProject(project.String()).(*MongoRepository)
	t.Cleanup(func() { _ = repo.database.Drop(context.Background()) })

	for i := 1; i <= 3; i++ {
		res := <-repo.Save(ctx, "items", bson.M{"uuid": uuid.Must(uuid.NewV4()).String(), "amount": i})
		require.NoError(t, res.Error)
	}

	t.Run("aggregate", func(t *testing.T) {
		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{{Key: "_id", Value: nil}, {Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}}}}},
		}
		docs, err := interfaces.All(ctx, <-repo.Aggregate(ctx, "items", pipeline))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.EqualValues(t, 6, docs[0]["total"])
	})

	t.Run("update and unset fields", func(t *testing.T) {
		res := <-repo.UpdateFields(ctx, "items", bson.M{"amount": 1}, map[string]interface{}{"flag": true})
		require.NoError(t, res.Error)

		var doc bson.M
		single := <-repo.FindOne(ctx, "items", bson.M{"flag": true})
		require.NoError(t, single.Error())
		require.NoError(t, single.Decode(&doc))
		assert.EqualValues(t, 1, doc["amount"])

		res = <-repo.UnsetFields(ctx, "items", bson.M{"amount": 1}, []string{"flag"})
		require.NoError(t, res.Error)

		single = <-repo.FindOne(ctx, "items", bson.M{"flag": true})
		assert.True(t, single.NoResult())
	})

	t.Run("update without match", func(t *testing.T) {
		res := <-repo.UpdateFields(ctx, "items", bson.M{"amount": 99}, map[string]interface{}{"x": 1})
		assert.ErrorIs(t, res.Error, interfaces.ErrNoDocuments)
	})
}
