package services

import (
	"context"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	dbi "github.com/drapcode/exchange-engine/internal/database/interfaces"
)

// Executor runs a pipeline against a project collection.
type Executor interface {
	Execute(ctx context.Context, projectID, collectionName string, pipeline mongo.Pipeline) ([]map[string]interface{}, error)
}

type repositoryExecutor struct {
	provider dbi.Provider
}

// NewExecutor runs pipelines through the project repositories of provider.
func NewExecutor(provider dbi.Provider) Executor {
	return &repositoryExecutor{provider: provider}
}

func (e *repositoryExecutor) Execute(ctx context.Context, projectID, collectionName string, pipeline mongo.Pipeline) ([]map[string]interface{}, error) {
	res := <-e.provider.ForProject(projectID).Aggregate(ctx, collectionName, pipeline)
	return dbi.All(ctx, res)
}

// shapeResult turns raw rows into the response result of mode. Counts and
// aggregates are rendered as strings and default to "0".
func shapeResult(mode collectionmodels.AggregationMode, rows []map[string]interface{}) interface{} {
	field := ""
	switch {
	case mode == collectionmodels.ModeCount:
		field = "count"
	case mode.IsAggregate():
		field = aggregateResultFields[mode]
	default:
		if rows == nil {
			return []map[string]interface{}{}
		}
		return rows
	}
	if len(rows) == 0 {
		return "0"
	}
	return formatScalar(rows[0][field])
}

func formatScalar(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return "0"
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case primitive.Decimal128:
		return n.String()
	}
	return fmt.Sprint(v)
}
