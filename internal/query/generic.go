package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Reserved keys of a generic list query.
const (
	KeyMax    = "max"
	KeyOffset = "offset"
	KeyIDs    = "ids"
)

// DefaultLimit applies when the caller sends no max.
const DefaultLimit int64 = 100

// SortNewestFirst is the only ordering the item queries use.
func SortNewestFirst() bson.D {
	return bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}}
}

// CompileGeneric turns a flat "field:OPERATOR" -> value map into a
// match/sort/skip/limit pipeline. Keys are compiled in sorted order so the
// same input always yields the same pipeline. params is not modified.
func CompileGeneric(params map[string]string, fields FieldTypes, defaultLimit int64) (mongo.Pipeline, error) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}

	limit := defaultLimit
	if raw, ok := params[KeyMax]; ok && raw != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: max %q", ErrInvalidValue, raw)
		}
		limit = n
	}

	var skip *int64
	if raw, ok := params[KeyOffset]; ok && raw != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: offset %q", ErrInvalidValue, raw)
		}
		skip = &n
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		if k == KeyMax || k == KeyOffset || k == KeyIDs {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var filter Filter
	for _, key := range keys {
		field, opName, _ := strings.Cut(key, ":")
		op, err := ParseOperator(opName)
		if err != nil {
			return nil, err
		}
		value, err := Coerce(fields[field], op, params[key])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		pred, err := NewPredicate(op, value)
		if err != nil {
			return nil, err
		}
		filter.Add(field, pred)
	}

	if raw, ok := params[KeyIDs]; ok && raw != "" {
		ids, _ := coerceList("", raw)
		filter.Add("uuid", In{Values: ids})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.BSON()}},
		SortNewestFirst(),
	}
	if skip != nil {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: *skip}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	return pipeline, nil
}
