package models

import (
	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/internal/query"
)

// Query keys with a fixed meaning. They never become search constraints.
const (
	KeyCount            = "count"
	KeySearch           = "search"
	KeyStopNestedFilter = "stopNestedFilter"
	KeyOffset           = "offset"
	KeyMax              = "max"
	KeyLimit            = "limit"
)

// Flags are the switches a caller sends next to the query data.
type Flags struct {
	Count            bool  `schema:"count"`
	Search           bool  `schema:"search"`
	StopNestedFilter bool  `schema:"stopNestedFilter"`
	Offset           int64 `schema:"offset"`
	Max              int64 `schema:"max"`
}

// Request is one finder execution.
type Request struct {
	ProjectID      string
	CollectionName string
	FilterUUID     string
	Token          string
	Timezone       string
	DateFormat     string
	Headers        map[string]string
	QueryData      map[string]string
	Flags          Flags
	// ClientIPs are the forwarded-for chain followed by the peer address.
	ClientIPs []string

	// Depth counts nested finder levels above this request; 0 at the top.
	Depth int
	// ValueField is the single field a nested request projects.
	ValueField string
}

// ListRequest is a generic list query over a collection.
type ListRequest struct {
	ProjectID      string
	CollectionName string
	Token          string
	Params         map[string]string
	ClientIPs      []string
}

// Response is the success body. Count echoes the count query value as the
// caller sent it and is omitted when none was sent.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Result  interface{} `json:"result"`
	Count   string      `json:"count,omitempty"`
}

// ResolvedQuery is everything needed to run one finder, built fresh per request.
type ResolvedQuery struct {
	Mode           collectionmodels.AggregationMode
	Filter         query.Filter
	Search         query.Filter
	SearchTypes    query.FieldTypes
	Lookups        []collectionmodels.Lookup
	FieldsInclude  []string
	AggregateField string
	Offset         int64
	// Limit of 0 means no limit.
	Limit int64
}

// IsReserved reports whether key is a flag rather than data.
func IsReserved(key string) bool {
	switch key {
	case KeyCount, KeySearch, KeyStopNestedFilter, KeyOffset, KeyMax, KeyLimit:
		return true
	}
	return false
}
