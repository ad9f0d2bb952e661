package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	collectionrepo "github.com/drapcode/exchange-engine/collection/repository"
	finderrors "github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/query"
	"github.com/drapcode/exchange-engine/internal/types"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

// Service runs stored finders and generic list queries.
type Service interface {
	// ProcessItemsByFilter runs the finder named by req.FilterUUID.
	ProcessItemsByFilter(ctx context.Context, req models.Request) (*models.Response, error)

	// GenericList runs a flat "field:OPERATOR" query over a collection.
	GenericList(ctx context.Context, req models.ListRequest) (*models.Response, error)
}

// Config bounds query execution.
type Config struct {
	MaxNestingDepth int
	NestedTimeout   time.Duration
	DefaultMax      int64
}

// Dependencies are the collaborators of the finder service.
type Dependencies struct {
	Collections collectionrepo.Repository
	Users       usersrepo.Repository
	Auth        Authenticator
	Executor    Executor
}

type service struct {
	deps     Dependencies
	cfg      Config
	resolver *Resolver
}

// Pipeline stages, used to label failures.
const (
	stageLoad       = "LOAD"
	stageAuth       = "AUTHENTICATING"
	stageParams     = "PARAM_VALIDATION"
	stageResolution = "CONDITION_RESOLUTION"
	stageBuild      = "QUERY_BUILD"
	stageExecute    = "EXECUTE"
)

// NewService constructs the finder service.
func NewService(deps Dependencies, cfg Config) Service {
	if cfg.MaxNestingDepth <= 0 {
		cfg.MaxNestingDepth = 5
	}
	if cfg.NestedTimeout <= 0 {
		cfg.NestedTimeout = 10 * time.Second
	}
	if cfg.DefaultMax <= 0 {
		cfg.DefaultMax = query.DefaultLimit
	}
	s := &service{deps: deps, cfg: cfg}
	s.resolver = &Resolver{users: deps.Users, nested: s, now: time.Now}
	return s
}

func fail(ctx context.Context, stage string, err error) error {
	se := finderrors.AsServiceError(err)
	if se.Code >= http.StatusInternalServerError {
		log.ErrorWithContext(ctx, "finder stage %s failed: %v", stage, err)
	} else {
		log.WarnWithContext(ctx, "finder stage %s failed: %s", stage, se.Message)
	}
	return err
}

func (s *service) ProcessItemsByFilter(ctx context.Context, req models.Request) (*models.Response, error) {
	ctx = log.WithProjectID(ctx, req.ProjectID)
	rows, mode, err := s.process(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	return &models.Response{
		Code:    http.StatusOK,
		Message: "success",
		Result:  shapeResult(mode, rows),
		Count:   req.QueryData[models.KeyCount],
	}, nil
}

// process runs one finder. auth carries the caller of a parent finder so
// nested finders do not authenticate twice.
func (s *service) process(ctx context.Context, req models.Request, auth *types.AuthContext) ([]map[string]interface{}, collectionmodels.AggregationMode, error) {
	found, err := collectionrepo.FindCollection(ctx, s.deps.Collections, req.ProjectID, req.CollectionName, req.FilterUUID)
	if err != nil {
		return nil, "", fail(ctx, stageLoad, fmt.Errorf("load collection: %w", err))
	}
	collection, ok := found.Get()
	if !ok || collection.Finder == nil {
		return nil, "", fail(ctx, stageLoad, finderrors.NotFound(req.CollectionName))
	}
	finder := *collection.Finder
	if !collection.AllowsIP(req.ClientIPs) {
		return nil, "", fail(ctx, stageAuth, finderrors.IPNotAllowed())
	}

	var caller types.AuthContext
	if auth != nil {
		caller = *auth
	}
	if collection.IsPrivate && !caller.Authenticated() {
		caller, err = s.deps.Auth.Authenticate(ctx, req.ProjectID, req.Token)
		if err != nil {
			return nil, "", fail(ctx, stageAuth, err)
		}
	}

	if err := checkExternalParams(collection, req.QueryData); err != nil {
		return nil, "", fail(ctx, stageParams, err)
	}
	queryData, unparsed := normalizeDates(req.QueryData, req.DateFormat)
	for _, k := range unparsed {
		log.WarnWithContext(ctx, "date param %s does not match format %q", k, req.DateFormat)
	}
	req.QueryData = queryData

	var search query.Filter
	var searchTypes query.FieldTypes
	if req.Flags.Search {
		search, searchTypes, err = buildSearch(collection, req.QueryData)
		if err != nil {
			return nil, "", fail(ctx, stageParams, err)
		}
	}

	scope := Scope{Collection: collection, Request: req, Auth: caller}
	filter, err := s.resolver.resolveWithRLS(ctx, scope, finder)
	if err != nil {
		return nil, "", fail(ctx, stageResolution, err)
	}

	rq := buildQuery(collection, finder, req, filter, search, searchTypes, s.cfg.DefaultMax)
	pipeline, err := Pipeline(rq)
	if err != nil {
		return nil, "", fail(ctx, stageBuild, finderrors.Execution(err))
	}

	rows, err := s.deps.Executor.Execute(ctx, req.ProjectID, req.CollectionName, pipeline)
	if err != nil {
		return nil, "", fail(ctx, stageExecute, finderrors.Execution(err))
	}
	return rows, rq.Mode, nil
}

func (s *service) runNested(ctx context.Context, parent models.Request, auth types.AuthContext, nf collectionmodels.NestedFilter) ([]interface{}, error) {
	depth := parent.Depth + 1
	if depth > s.cfg.MaxNestingDepth {
		return nil, finderrors.FilterTooDeep(s.cfg.MaxNestingDepth)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.NestedTimeout)
	defer cancel()

	valueField := nf.ValueField
	if valueField == "" {
		valueField = "uuid"
	}
	req := models.Request{
		ProjectID:      parent.ProjectID,
		CollectionName: nf.CollectionName,
		FilterUUID:     nf.FilterUUID,
		Token:          parent.Token,
		Timezone:       parent.Timezone,
		DateFormat:     parent.DateFormat,
		Headers:        parent.Headers,
		QueryData:      parent.QueryData,
		ClientIPs:      parent.ClientIPs,
		Flags:          models.Flags{StopNestedFilter: true},
		Depth:          depth,
		ValueField:     valueField,
	}

	rows, _, err := s.process(ctx, req, &auth)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("nested filter %s on %s timed out", nf.FilterUUID, nf.CollectionName)
		}
		return nil, err
	}

	ids := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[valueField]; ok && v != nil {
			ids = append(ids, v)
		}
	}
	return ids, nil
}

func (s *service) GenericList(ctx context.Context, req models.ListRequest) (*models.Response, error) {
	ctx = log.WithProjectID(ctx, req.ProjectID)
	found, err := s.deps.Collections.GetCollection(ctx, req.ProjectID, req.CollectionName)
	if err != nil {
		return nil, fail(ctx, stageLoad, fmt.Errorf("load collection: %w", err))
	}
	collection, ok := found.Get()
	if !ok {
		return nil, fail(ctx, stageLoad, finderrors.NotFound(req.CollectionName))
	}
	if !collection.AllowsIP(req.ClientIPs) {
		return nil, fail(ctx, stageAuth, finderrors.IPNotAllowed())
	}
	if collection.IsPrivate {
		if _, err := s.deps.Auth.Authenticate(ctx, req.ProjectID, req.Token); err != nil {
			return nil, fail(ctx, stageAuth, err)
		}
	}

	pipeline, err := query.CompileGeneric(req.Params, collection.FieldTypes(), s.cfg.DefaultMax)
	if err != nil {
		return nil, fail(ctx, stageBuild, finderrors.Execution(err))
	}
	rows, err := s.deps.Executor.Execute(ctx, req.ProjectID, req.CollectionName, pipeline)
	if err != nil {
		return nil, fail(ctx, stageExecute, finderrors.Execution(err))
	}
	return &models.Response{
		Code:    http.StatusOK,
		Message: "success",
		Result:  shapeResult(collectionmodels.ModeFind, rows),
	}, nil
}
