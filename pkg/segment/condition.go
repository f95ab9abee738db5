package segment

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Condition operators. The set mirrors what the segment builder exposes;
// anything else compiles to an empty, match-all fragment.
const (
	OpEquals             = "equals"
	OpNotEquals          = "not_equals"
	OpContains           = "contains"
	OpNotContains        = "not_contains"
	OpStartsWith         = "starts_with"
	OpEndsWith           = "ends_with"
	OpGreaterThan        = "greater_than"
	OpLessThan           = "less_than"
	OpGreaterThanOrEqual = "greater_than_or_equal"
	OpLessThanOrEqual    = "less_than_or_equal"
	OpIsEmpty            = "is_empty"
	OpIsNotEmpty         = "is_not_empty"
	OpInList             = "in_list"
	OpNotInList          = "not_in_list"
	OpBefore             = "before"
	OpAfter              = "after"
	OpBetween            = "between"
	OpWithinLast         = "within_last"
	OpNotWithinLast      = "not_within_last"
)

// unitSeconds are the fixed within_last multipliers. A month is 30 days by
// convention; none of these are calendar-aware.
var unitSeconds = map[string]int64{
	"minutes": 60,
	"hours":   3600,
	"days":    86400,
	"weeks":   7 * 86400,
	"months":  30 * 86400,
}

// compileCondition translates one condition into a MongoDB filter fragment.
// Unknown operators yield an empty fragment (a match-all contribution);
// malformed dates and values are hard errors since they produce
// user-visible wrong results.
func compileCondition(c Condition) (bson.M, error) {
	switch c.Operator {
	case OpEquals:
		return bson.M{c.Field: c.Value}, nil

	case OpNotEquals:
		return bson.M{c.Field: bson.M{"$ne": c.Value}}, nil

	case OpContains:
		return bson.M{c.Field: caseInsensitive(regexp.QuoteMeta(toString(c.Value)))}, nil

	case OpNotContains:
		return bson.M{c.Field: bson.M{"$not": caseInsensitive(regexp.QuoteMeta(toString(c.Value)))}}, nil

	case OpStartsWith:
		return bson.M{c.Field: caseInsensitive("^" + regexp.QuoteMeta(toString(c.Value)))}, nil

	case OpEndsWith:
		return bson.M{c.Field: caseInsensitive(regexp.QuoteMeta(toString(c.Value)) + "$")}, nil

	case OpGreaterThan:
		return bson.M{c.Field: bson.M{"$gt": c.Value}}, nil

	case OpLessThan:
		return bson.M{c.Field: bson.M{"$lt": c.Value}}, nil

	case OpGreaterThanOrEqual:
		return bson.M{c.Field: bson.M{"$gte": c.Value}}, nil

	case OpLessThanOrEqual:
		return bson.M{c.Field: bson.M{"$lte": c.Value}}, nil

	case OpIsEmpty:
		return bson.M{"$or": []bson.M{
			{c.Field: bson.M{"$exists": false}},
			{c.Field: nil},
			{c.Field: ""},
		}}, nil

	case OpIsNotEmpty:
		return bson.M{c.Field: bson.M{
			"$exists": true,
			"$nin":    []any{nil, ""},
		}}, nil

	case OpInList:
		if c.Field == "lists" {
			return activeListMembership(toSlice(c.Value)), nil
		}
		return bson.M{c.Field: bson.M{"$in": toSlice(c.Value)}}, nil

	case OpNotInList:
		if c.Field == "lists" {
			// $not takes an operator expression, so the $elemMatch level
			// must survive the negation.
			return bson.M{"lists": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"listId": bson.M{"$in": toSlice(c.Value)},
				"status": "active",
			}}}}, nil
		}
		return bson.M{c.Field: bson.M{"$nin": toSlice(c.Value)}}, nil

	case OpBefore:
		at, err := toTime(c.Value)
		if err != nil {
			return nil, err
		}
		return bson.M{c.Field: bson.M{"$lt": at}}, nil

	case OpAfter:
		at, err := toTime(c.Value)
		if err != nil {
			return nil, err
		}
		return bson.M{c.Field: bson.M{"$gt": at}}, nil

	case OpBetween:
		from, err := toTime(c.Value)
		if err != nil {
			return nil, err
		}
		to, err := toTime(c.ValueEnd)
		if err != nil {
			return nil, err
		}
		return bson.M{c.Field: bson.M{"$gte": from, "$lte": to}}, nil

	case OpWithinLast:
		cutoff, err := relativeCutoff(c)
		if err != nil {
			return nil, err
		}
		return bson.M{c.Field: bson.M{"$gte": cutoff}}, nil

	case OpNotWithinLast:
		cutoff, err := relativeCutoff(c)
		if err != nil {
			return nil, err
		}
		return bson.M{c.Field: bson.M{"$lt": cutoff}}, nil

	default:
		// Unknown operator: permissive no-op rather than a failure.
		return bson.M{}, nil
	}
}

// relativeCutoff resolves a within_last-style condition to its absolute
// cutoff instant. Units use fixed multipliers; a month is always 30 days.
func relativeCutoff(c Condition) (time.Time, error) {
	amount, err := toFloat(c.Value)
	if err != nil {
		return time.Time{}, err
	}
	unit := c.Unit
	if unit == "" {
		unit = "days"
	}
	seconds, ok := unitSeconds[unit]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown unit %q", ErrInvalidValue, unit)
	}
	return time.Now().Add(-time.Duration(amount * float64(seconds) * float64(time.Second))), nil
}

// activeListMembership matches contacts belonging to any of the given lists
// with an active membership.
func activeListMembership(listIDs []any) bson.M {
	return bson.M{"lists": bson.M{"$elemMatch": bson.M{
		"listId": bson.M{"$in": listIDs},
		"status": "active",
	}}}
}

// caseInsensitive builds a case-insensitive regex from an already-escaped
// pattern. Escaping is the caller's job; user values never reach the regex
// engine raw.
func caseInsensitive(pattern string) bson.Regex {
	return bson.Regex{Pattern: pattern, Options: "i"}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toSlice(v any) []any {
	switch vv := v.(type) {
	case nil:
		return nil
	case []any:
		return vv
	case []string:
		out := make([]any, len(vv))
		for i, s := range vv {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

func toTime(v any) (time.Time, error) {
	switch vv := v.(type) {
	case time.Time:
		return vv, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if at, err := time.Parse(layout, vv); err == nil {
				return at, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, vv)
	default:
		return time.Time{}, fmt.Errorf("%w: %T", ErrInvalidDate, v)
	}
}

func toFloat(v any) (float64, error) {
	switch vv := v.(type) {
	case float64:
		return vv, nil
	case float32:
		return float64(vv), nil
	case int:
		return float64(vv), nil
	case int32:
		return float64(vv), nil
	case int64:
		return float64(vv), nil
	case string:
		f, err := strconv.ParseFloat(vv, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidValue, vv)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}
