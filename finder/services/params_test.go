package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	finderrors "github.com/drapcode/exchange-engine/finder/errors"
)

func TestCheckExternalParams(t *testing.T) {
	c := collectionmodels.Collection{ExternalParams: []string{"customer_id---region", "year"}}

	err := checkExternalParams(c, map[string]string{"customer_id": "1", "region": "eu", "year": "2024"})
	assert.NoError(t, err)

	err = checkExternalParams(c, map[string]string{"customer_id": "1", "year": "2024"})
	var se *finderrors.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Equal(t, "External params should be in [customer_id,region,year]", se.Message)

	assert.NoError(t, checkExternalParams(collectionmodels.Collection{}, nil))
}

func TestGoLayout(t *testing.T) {
	assert.Equal(t, "2006-01-02", goLayout(""))
	assert.Equal(t, "02/01/2006", goLayout("DD/MM/YYYY"))
	assert.Equal(t, "Jan 2, 2006 03:04 PM", goLayout("MMM D, YYYY hh:mm A"))
	assert.Equal(t, "2006-01-02T15:04:05", goLayout("YYYY-MM-DDTHH:mm:ss"))
}

func TestNormalizeDates(t *testing.T) {
	in := map[string]string{
		"start_created": "05/03/2024",
		"end_created":   "31/03/2024",
		"start_bad":     "yesterday",
		"name":          "05/03/2024",
	}
	out, unparsed := normalizeDates(in, "DD/MM/YYYY")

	assert.Equal(t, "2024-03-05", out["start_created"])
	assert.Equal(t, "2024-03-31", out["end_created"])
	assert.Equal(t, "yesterday", out["start_bad"])
	assert.Equal(t, "05/03/2024", out["name"])
	assert.Equal(t, []string{"start_bad"}, unparsed)
	assert.Equal(t, "05/03/2024", in["start_created"], "input must not change")
}

func TestBuildSearch(t *testing.T) {
	c := collectionmodels.Collection{
		ExternalParams: []string{"status"},
		Fields: []collectionmodels.Field{
			{FieldName: "name", Type: "text"},
			{FieldName: "qty", Type: "number"},
			{FieldName: "status", Type: "text"},
		},
	}

	filter, searchTypes, err := buildSearch(c, map[string]string{
		"name":   "a.b",
		"qty":    "3",
		"status": "open",
		"offset": "10",
		"ghost":  "x",
	})
	require.NoError(t, err)
	assert.Equal(t, bson.D{
		{Key: "name", Value: bson.D{{Key: "$regex", Value: `a\.b`}, {Key: "$options", Value: "i"}}},
		{Key: "qty", Value: int64(3)},
	}, filter.BSON())
	assert.Equal(t, "number", searchTypes["qty"])
	assert.NotContains(t, searchTypes, "status")

	_, _, err = buildSearch(c, map[string]string{"qty": "many"})
	require.Error(t, err)
}
