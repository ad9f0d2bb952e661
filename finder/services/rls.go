package services

import (
	"context"

	collectionmodels "github.com/drapcode/exchange-engine/collection/models"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/query"
)

// rlsConditions returns the conditions of the finder's row-level security
// filter. A disabled flag, an unknown filter id or an empty filter all yield
// nothing.
func rlsConditions(ctx context.Context, collection collectionmodels.Collection, finder collectionmodels.Finder) []collectionmodels.Condition {
	if !finder.EnableRls {
		return nil
	}
	rls, ok := collection.RLSFilter(finder.RlsFilter).Get()
	if !ok {
		log.WarnWithContext(ctx, "finder %s references unknown rls filter %s", finder.UUID, finder.RlsFilter)
		return nil
	}
	return rls.Conditions
}

// resolveWithRLS resolves the RLS conditions to completion and then the
// finder's own conditions. Both land in one filter; a field constrained by
// both keeps every constraint. An RLS condition whose value is missing
// matches no rows.
func (r *Resolver) resolveWithRLS(ctx context.Context, scope Scope, finder collectionmodels.Finder) (query.Filter, error) {
	var filter query.Filter

	if conds := rlsConditions(ctx, scope.Collection, finder); len(conds) > 0 {
		rls, err := r.resolveAll(ctx, scope, conds, true)
		if err != nil {
			return query.Filter{}, err
		}
		filter.Merge(rls)
	}

	base, err := r.ResolveAll(ctx, scope, finder.Conditions)
	if err != nil {
		return query.Filter{}, err
	}
	warnCollisions(ctx, filter, base)
	filter.Merge(base)
	return filter, nil
}

// warnCollisions flags base fields the rls filter already constrains. Both
// are ANDed, which usually means the finder and its rls filter overlap.
func warnCollisions(ctx context.Context, rls, base query.Filter) {
	warned := map[string]bool{}
	for _, c := range base.Clauses() {
		if warned[c.Field] || !rls.Has(c.Field) {
			continue
		}
		warned[c.Field] = true
		log.WarnWithContext(ctx, "field %s is constrained by the finder and its rls filter; both are applied", c.Field)
	}
}
