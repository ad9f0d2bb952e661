package services

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/internal/query"
)

// aggregateResultFields names the output field of each grouping mode.
var aggregateResultFields = map[collectionmodels.AggregationMode]string{
	collectionmodels.ModeSum: "total",
	collectionmodels.ModeAvg: "average",
	collectionmodels.ModeMin: "minimum",
	collectionmodels.ModeMax: "maximum",
}

var aggregateOperators = map[collectionmodels.AggregationMode]string{
	collectionmodels.ModeSum: "$sum",
	collectionmodels.ModeAvg: "$avg",
	collectionmodels.ModeMin: "$min",
	collectionmodels.ModeMax: "$max",
}

// buildQuery assembles the resolved query of one request.
func buildQuery(collection collectionmodels.Collection, finder collectionmodels.Finder, req models.Request, filter, search query.Filter, searchTypes query.FieldTypes, defaultMax int64) models.ResolvedQuery {
	mode := finder.Mode
	if mode == "" {
		mode = collectionmodels.ModeFind
	}
	if req.Flags.Count {
		mode = collectionmodels.ModeCount
	}

	rq := models.ResolvedQuery{
		Mode:           mode,
		Filter:         filter,
		Search:         search,
		SearchTypes:    searchTypes,
		AggregateField: finder.AggregateField,
		FieldsInclude:  append([]string(nil), finder.FieldsInclude...),
		Offset:         req.Flags.Offset,
		Limit:          req.Flags.Max,
	}
	if collection.EnableLookup {
		rq.Lookups = append(rq.Lookups, collection.Lookups...)
	}
	if rq.Limit <= 0 {
		rq.Limit = defaultMax
	}
	if rq.Offset < 0 {
		rq.Offset = 0
	}

	if req.Flags.StopNestedFilter {
		valueField := req.ValueField
		if valueField == "" {
			valueField = "uuid"
		}
		rq.FieldsInclude = []string{valueField}
		rq.Lookups = nil
		rq.Offset = 0
		rq.Limit = 0
	}
	return rq
}

// matchDocument is the conjunction of the resolved conditions and search.
func matchDocument(rq models.ResolvedQuery) bson.D {
	var all query.Filter
	all.Merge(rq.Filter)
	all.Merge(rq.Search)
	return all.BSON()
}

// Pipeline compiles the resolved query into an aggregation pipeline.
func Pipeline(rq models.ResolvedQuery) (mongo.Pipeline, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: matchDocument(rq)}}}

	switch {
	case rq.Mode == collectionmodels.ModeCount:
		return append(pipeline, bson.D{{Key: "$count", Value: "count"}}), nil

	case rq.Mode.IsAggregate():
		if rq.AggregateField == "" {
			return nil, fmt.Errorf("%s finder has no aggregate field", rq.Mode)
		}
		group := bson.D{
			{Key: "_id", Value: nil},
			{Key: aggregateResultFields[rq.Mode], Value: bson.D{{Key: aggregateOperators[rq.Mode], Value: "$" + rq.AggregateField}}},
		}
		return append(pipeline, bson.D{{Key: "$group", Value: group}}), nil

	case rq.Mode != collectionmodels.ModeFind:
		return nil, fmt.Errorf("unknown finder mode %q", rq.Mode)
	}

	for _, l := range rq.Lookups {
		pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: l.From},
			{Key: "localField", Value: l.LocalField},
			{Key: "foreignField", Value: l.ForeignField},
			{Key: "as", Value: l.As},
		}}})
	}
	pipeline = append(pipeline, query.SortNewestFirst())
	if rq.Offset > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: rq.Offset}})
	}
	if rq.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: rq.Limit}})
	}
	if len(rq.FieldsInclude) > 0 {
		project := bson.D{}
		for _, f := range rq.FieldsInclude {
			project = append(project, bson.E{Key: f, Value: 1})
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: project}})
	}
	return pipeline, nil
}
