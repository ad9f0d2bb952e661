package services

import (
	"sort"
	"strings"
	"time"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	finderrors "github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/internal/query"
	"github.com/drapcode/exchange-engine/internal/types"
)

const isoDate = "2006-01-02"

// checkExternalParams fails when any required param is absent from queryData.
func checkExternalParams(collection collectionmodels.Collection, queryData map[string]string) error {
	required := collection.RequiredParams()
	for _, name := range required {
		if _, ok := queryData[name]; !ok {
			return finderrors.MissingParams(required)
		}
	}
	return nil
}

// normalizeDates returns a copy of queryData with start_ and end_ values
// rewritten from dateFormat to YYYY-MM-DD. Values that do not parse are kept.
func normalizeDates(queryData map[string]string, dateFormat string) (map[string]string, []string) {
	layout := goLayout(dateFormat)
	out := make(map[string]string, len(queryData))
	var unparsed []string
	for k, v := range queryData {
		out[k] = v
		if !strings.HasPrefix(k, "start_") && !strings.HasPrefix(k, "end_") {
			continue
		}
		t, err := time.Parse(layout, strings.TrimSpace(v))
		if err != nil {
			unparsed = append(unparsed, k)
			continue
		}
		out[k] = t.Format(isoDate)
	}
	sort.Strings(unparsed)
	return out, unparsed
}

var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
	{"h", "3"},
	{"A", "PM"},
	{"a", "pm"},
}

// goLayout translates a moment-style date format to a time layout.
func goLayout(format string) string {
	if format == "" {
		format = types.DefaultDateFormat
	}
	var b strings.Builder
	for i := 0; i < len(format); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}
	return b.String()
}

// buildSearch turns request keys naming declared fields into search
// predicates. Flags, external params and unknown keys are dropped.
func buildSearch(collection collectionmodels.Collection, queryData map[string]string) (query.Filter, query.FieldTypes, error) {
	var filter query.Filter
	searchTypes := query.FieldTypes{}

	external := map[string]struct{}{}
	for _, p := range collection.RequiredParams() {
		external[p] = struct{}{}
	}

	keys := make([]string, 0, len(queryData))
	for k := range queryData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if models.IsReserved(key) {
			continue
		}
		if _, ok := external[key]; ok {
			continue
		}
		field, ok := collection.Field(key).Get()
		if !ok {
			continue
		}
		pred, err := query.SearchPredicate(field.Type, queryData[key])
		if err != nil {
			return query.Filter{}, nil, finderrors.Execution(err)
		}
		filter.Add(key, pred)
		searchTypes[key] = field.Type
	}
	return filter, searchTypes, nil
}
