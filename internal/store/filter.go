package store

import (
	"fmt"
)

// Metadata fields the ordinance index can be filtered on.
var filterFields = map[string]bool{
	"degree":        true,
	"program_level": true,
}

// Clause is one field-equality predicate of a metadata filter.
type Clause struct {
	Field string
	Value string
}

// ParseFilter validates and flattens a metadata filter into equality
// clauses. Two shapes are accepted: a single field-equality clause
// {"degree": {"$eq": "B.Tech"}}, or a conjunction
// {"$and": [clause, ...]}. Disjunction and negation are not supported.
// A nil or empty filter yields no clauses.
func ParseFilter(raw map[string]any) ([]Clause, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	if len(raw) > 1 {
		return nil, fmt.Errorf("multiple top-level fields are not allowed, use a single $and conjunction")
	}

	if inner, ok := raw["$and"]; ok {
		list, ok := inner.([]any)
		if !ok {
			return nil, fmt.Errorf("$and must hold a list of clauses")
		}
		clauses := make([]Clause, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("$and entries must be field-equality clauses")
			}
			clause, err := parseClause(m)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		return clauses, nil
	}

	clause, err := parseClause(raw)
	if err != nil {
		return nil, err
	}
	return []Clause{clause}, nil
}

func parseClause(m map[string]any) (Clause, error) {
	if len(m) != 1 {
		return Clause{}, fmt.Errorf("a clause must name exactly one field")
	}

	for field, cond := range m {
		if !filterFields[field] {
			return Clause{}, fmt.Errorf("unknown filter field %q (valid fields: degree, program_level)", field)
		}

		condMap, ok := cond.(map[string]any)
		if !ok {
			return Clause{}, fmt.Errorf("field %q must use the {%q: value} form", field, "$eq")
		}
		if len(condMap) != 1 {
			return Clause{}, fmt.Errorf("field %q must carry exactly one operator", field)
		}

		eq, ok := condMap["$eq"]
		if !ok {
			return Clause{}, fmt.Errorf("field %q: only the $eq operator is supported", field)
		}

		value, ok := eq.(string)
		if !ok {
			return Clause{}, fmt.Errorf("field %q: $eq value must be a string", field)
		}

		return Clause{Field: field, Value: value}, nil
	}

	return Clause{}, fmt.Errorf("empty clause")
}
