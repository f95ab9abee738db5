package segment

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// BuildQuery compiles a segment into a MongoDB filter over the contacts
// collection. The result always scopes to the segment's organization and the
// base filter; static segments short-circuit to explicit membership and
// never evaluate condition groups.
func BuildQuery(s *Segment) (bson.M, error) {
	filter := baseFilterQuery(s)

	if s.Type == TypeStatic {
		applyStaticMembers(filter, s.StaticMembers)
		return filter, nil
	}

	groups := make([]bson.M, 0, len(s.ConditionGroups))
	for _, g := range s.ConditionGroups {
		compiled, err := compileGroup(g)
		if err != nil {
			return nil, err
		}
		if len(compiled) > 0 {
			groups = append(groups, compiled)
		}
	}

	switch {
	case len(groups) == 0:
		// No effective conditions: the base filter alone defines the segment.
	case len(groups) == 1:
		filter["$and"] = groups
	case s.RootOperator == OperatorOr:
		filter["$or"] = groups
	default:
		filter["$and"] = groups
	}
	return filter, nil
}

// baseFilterQuery narrows to the org, the allowed subscription statuses and,
// when the base filter names lists, an active membership in one of them.
func baseFilterQuery(s *Segment) bson.M {
	statuses := s.BaseFilter.Status
	if len(statuses) == 0 {
		statuses = DefaultSubscriptionStatus
	}
	filter := bson.M{
		"orgId":  s.OrgID,
		"status": bson.M{"$in": statuses},
	}
	if len(s.BaseFilter.Lists) > 0 {
		filter["lists"] = bson.M{"$elemMatch": bson.M{
			"listId": bson.M{"$in": s.BaseFilter.Lists},
			"status": "active",
		}}
	}
	return filter
}

// applyStaticMembers restricts the filter to the explicit membership. Each
// set constrains only when non-empty: included-only narrows to those IDs,
// excluded-only subtracts from the base-filtered universe, and a contact in
// both sets is out because the constraints apply independently.
func applyStaticMembers(filter bson.M, m StaticMembers) {
	ids := bson.M{}
	if len(m.Included) > 0 {
		ids["$in"] = m.Included
	}
	if len(m.Excluded) > 0 {
		ids["$nin"] = m.Excluded
	}
	if len(ids) > 0 {
		filter["_id"] = ids
	}
}

// compileGroup joins a group's condition fragments with its operator.
// Empty fragments (unknown operators) are dropped.
func compileGroup(g ConditionGroup) (bson.M, error) {
	parts := make([]bson.M, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		fragment, err := compileCondition(c)
		if err != nil {
			return nil, err
		}
		if len(fragment) > 0 {
			parts = append(parts, fragment)
		}
	}
	switch {
	case len(parts) == 0:
		return bson.M{}, nil
	case len(parts) == 1:
		return parts[0], nil
	case g.Operator == OperatorOr:
		return bson.M{"$or": parts}, nil
	default:
		return bson.M{"$and": parts}, nil
	}
}
