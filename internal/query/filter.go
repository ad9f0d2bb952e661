package query

import "go.mongodb.org/mongo-driver/bson"

// Clause binds a predicate to a field.
type Clause struct {
	Field     string
	Predicate Predicate
}

// Filter is an ordered conjunction of clauses. Several clauses on the same
// field are all applied; none replaces another.
type Filter struct {
	clauses []Clause
}

// Add appends a clause.
func (f *Filter) Add(field string, p Predicate) {
	f.clauses = append(f.clauses, Clause{Field: field, Predicate: p})
}

// Merge appends every clause of other.
func (f *Filter) Merge(other Filter) {
	f.clauses = append(f.clauses, other.clauses...)
}

// Clauses returns a copy of the clauses in insertion order.
func (f Filter) Clauses() []Clause {
	out := make([]Clause, len(f.clauses))
	copy(out, f.clauses)
	return out
}

// Len returns the number of clauses.
func (f Filter) Len() int {
	return len(f.clauses)
}

// Has reports whether any clause targets field.
func (f Filter) Has(field string) bool {
	for _, c := range f.clauses {
		if c.Field == field {
			return true
		}
	}
	return false
}

// BSON compiles the filter to a match document. A field with one clause
// becomes field: expr; a field with several is expanded into $and members.
func (f Filter) BSON() bson.D {
	order := make([]string, 0, len(f.clauses))
	byField := make(map[string][]Predicate, len(f.clauses))
	for _, c := range f.clauses {
		if _, seen := byField[c.Field]; !seen {
			order = append(order, c.Field)
		}
		byField[c.Field] = append(byField[c.Field], c.Predicate)
	}

	doc := bson.D{}
	var and bson.A
	for _, field := range order {
		preds := byField[field]
		if len(preds) == 1 {
			doc = append(doc, bson.E{Key: field, Value: preds[0].expression()})
			continue
		}
		for _, p := range preds {
			and = append(and, bson.D{{Key: field, Value: p.expression()}})
		}
	}
	if len(and) > 0 {
		doc = append(doc, bson.E{Key: "$and", Value: and})
	}
	return doc
}
