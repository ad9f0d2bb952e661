package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	finderrors "github.com/drapcode/exchange-engine/finder/errors"
	"github.com/drapcode/exchange-engine/finder/models"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/query"
	"github.com/drapcode/exchange-engine/internal/types"
	usersrepo "github.com/drapcode/exchange-engine/users/repository"
)

// Resolution is the outcome of resolving one condition. When Missing is set
// the condition had no value to apply and Predicate is nil.
type Resolution struct {
	Field     string
	Predicate query.Predicate
	Missing   bool
	Reason    string
}

// Scope is the request state a condition resolves against.
type Scope struct {
	Collection collectionmodels.Collection
	Request    models.Request
	Auth       types.AuthContext
}

// nestedRunner executes a finder of another collection and returns the
// values of its projected field.
type nestedRunner interface {
	runNested(ctx context.Context, parent models.Request, auth types.AuthContext, nf collectionmodels.NestedFilter) ([]interface{}, error)
}

// Resolver turns stored conditions into predicates.
type Resolver struct {
	users  usersrepo.Repository
	nested nestedRunner
	now    func() time.Time
}

func missing(field, format string, a ...interface{}) Resolution {
	return Resolution{Field: field, Missing: true, Reason: fmt.Sprintf(format, a...)}
}

// Resolve resolves a single condition.
func (r *Resolver) Resolve(ctx context.Context, scope Scope, cond collectionmodels.Condition) (Resolution, error) {
	op, err := query.ParseOperator(cond.Operator)
	if err != nil {
		return Resolution{}, finderrors.Execution(fmt.Errorf("condition on %s: %w", cond.FieldName, err))
	}
	if !op.TakesValue() {
		pred, err := query.NewPredicate(op, nil)
		if err != nil {
			return Resolution{}, finderrors.Execution(err)
		}
		return Resolution{Field: cond.FieldName, Predicate: pred}, nil
	}

	if cond.ValueSource == collectionmodels.SourceNestedFilter {
		return r.resolveNested(ctx, scope, cond, op)
	}

	raw, res, err := r.rawValue(ctx, scope, cond)
	if err != nil || res.Missing {
		return res, err
	}

	fieldType := scope.Collection.FieldTypes()[cond.FieldName]
	value, err := query.Coerce(fieldType, op, raw)
	if err != nil {
		return Resolution{}, finderrors.Execution(fmt.Errorf("condition on %s: %w", cond.FieldName, err))
	}
	pred, err := query.NewPredicate(op, value)
	if err != nil {
		return Resolution{}, finderrors.Execution(err)
	}
	return Resolution{Field: cond.FieldName, Predicate: pred}, nil
}

func (r *Resolver) rawValue(ctx context.Context, scope Scope, cond collectionmodels.Condition) (interface{}, Resolution, error) {
	field := cond.FieldName
	switch cond.ValueSource {
	case collectionmodels.SourceStatic, "":
		return cond.Value, Resolution{}, nil

	case collectionmodels.SourceQueryParam:
		key := cond.Key
		if key == "" {
			key = field
		}
		v, ok := scope.Request.QueryData[key]
		if !ok {
			return nil, missing(field, "query param %s not supplied", key), nil
		}
		return v, Resolution{}, nil

	case collectionmodels.SourceCurrentUser:
		v, ok := scope.Auth.UserField(cond.Key).Get()
		if !ok {
			return nil, missing(field, "current user has no %s", cond.Key), nil
		}
		return v, Resolution{}, nil

	case collectionmodels.SourceCurrentTenant:
		return r.fromDocument(ctx, scope, cond, scope.Auth.TenantID, r.users.FindTenant)

	case collectionmodels.SourceCurrentUserSetting:
		return r.fromDocument(ctx, scope, cond, scope.Auth.UserSettingID, r.users.FindUserSetting)

	case collectionmodels.SourceProjectConstant:
		v, ok := scope.Collection.Constant(cond.Key).Get()
		if !ok {
			return nil, missing(field, "constant %s not defined", cond.Key), nil
		}
		return v, Resolution{}, nil

	case collectionmodels.SourceRequestHeader:
		for k, v := range scope.Request.Headers {
			if strings.EqualFold(k, cond.Key) {
				return v, Resolution{}, nil
			}
		}
		return nil, missing(field, "header %s not sent", cond.Key), nil

	case collectionmodels.SourceCurrentDate:
		loc, err := time.LoadLocation(scope.Request.Timezone)
		if err != nil || scope.Request.Timezone == "" {
			loc = time.UTC
		}
		return r.now().In(loc).Format(isoDate), Resolution{}, nil
	}
	return nil, Resolution{}, finderrors.Execution(fmt.Errorf("condition on %s: unknown value source %q", field, cond.ValueSource))
}

type documentLookup func(ctx context.Context, projectID, id string) (types.Optional[usersrepo.Document], error)

// fromDocument resolves the tenant or user-setting id itself, or an
// attribute of that document when the condition names a key.
func (r *Resolver) fromDocument(ctx context.Context, scope Scope, cond collectionmodels.Condition, id string, lookup documentLookup) (interface{}, Resolution, error) {
	if id == "" {
		return nil, missing(cond.FieldName, "no %s for current user", strings.ToLower(string(cond.ValueSource))), nil
	}
	if cond.Key == "" {
		return id, Resolution{}, nil
	}
	found, err := lookup(ctx, scope.Request.ProjectID, id)
	if err != nil {
		return nil, Resolution{}, finderrors.Execution(err)
	}
	doc, ok := found.Get()
	if !ok {
		return nil, missing(cond.FieldName, "%s %s not found", strings.ToLower(string(cond.ValueSource)), id), nil
	}
	v, ok := types.FirstOf(doc[cond.Key]).Get()
	if !ok {
		return nil, missing(cond.FieldName, "%s has no %s", strings.ToLower(string(cond.ValueSource)), cond.Key), nil
	}
	return v, Resolution{}, nil
}

func (r *Resolver) resolveNested(ctx context.Context, scope Scope, cond collectionmodels.Condition, op query.Operator) (Resolution, error) {
	if cond.NestedFilter == nil {
		return Resolution{}, finderrors.Execution(fmt.Errorf("condition on %s: nested filter not configured", cond.FieldName))
	}
	ids, err := r.nested.runNested(ctx, scope.Request, scope.Auth, *cond.NestedFilter)
	if err != nil {
		var se *finderrors.ServiceError
		if errors.As(err, &se) {
			return Resolution{}, se
		}
		return Resolution{}, finderrors.Execution(err)
	}
	if ids == nil {
		ids = []interface{}{}
	}
	if op == query.OpNotInList {
		return Resolution{Field: cond.FieldName, Predicate: query.NotIn{Values: ids}}, nil
	}
	return Resolution{Field: cond.FieldName, Predicate: query.In{Values: ids}}, nil
}

// ResolveAll resolves conditions concurrently and returns the filter of the
// applied ones in condition order. The first failure aborts the set. A
// condition with no value to apply is skipped.
func (r *Resolver) ResolveAll(ctx context.Context, scope Scope, conditions []collectionmodels.Condition) (query.Filter, error) {
	return r.resolveAll(ctx, scope, conditions, false)
}

// resolveAll is ResolveAll with a choice of what a missing value means. When
// failClosed is set the condition's field is constrained to match nothing
// instead of being dropped.
func (r *Resolver) resolveAll(ctx context.Context, scope Scope, conditions []collectionmodels.Condition, failClosed bool) (query.Filter, error) {
	results := make([]Resolution, len(conditions))
	g, gctx := errgroup.WithContext(ctx)
	for i, cond := range conditions {
		i, cond := i, cond
		g.Go(func() error {
			res, err := r.Resolve(gctx, scope, cond)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return query.Filter{}, err
	}

	var filter query.Filter
	for _, res := range results {
		if !res.Missing {
			filter.Add(res.Field, res.Predicate)
			continue
		}
		if failClosed {
			log.WarnWithContext(ctx, "condition on %s matches nothing: %s", res.Field, res.Reason)
			filter.Add(res.Field, query.In{Values: []interface{}{}})
			continue
		}
		log.InfoWithContext(ctx, "condition on %s skipped: %s", res.Field, res.Reason)
	}
	return filter, nil
}
