package segment

import "time"

// Type distinguishes rule-driven segments from hand-picked ones.
type Type string

const (
	// TypeDynamic evaluates condition groups against the contact base.
	TypeDynamic Type = "dynamic"
	// TypeStatic is an explicit membership list; condition groups are ignored.
	TypeStatic Type = "static"
)

// Status is the segment lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)

// BoolOperator joins conditions within a group and groups under the root.
type BoolOperator string

const (
	OperatorAnd BoolOperator = "AND"
	OperatorOr  BoolOperator = "OR"
)

// Condition is a single typed predicate over a contact field.
type Condition struct {
	Field    string `bson:"field" json:"field"`
	Operator string `bson:"operator" json:"operator"`
	Value    any    `bson:"value,omitempty" json:"value,omitempty"`
	// ValueEnd carries the upper bound for the between operator.
	ValueEnd any `bson:"valueEnd,omitempty" json:"valueEnd,omitempty"`
	// Unit qualifies within_last values (minutes, hours, days, weeks,
	// months). Defaults to days.
	Unit string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// ConditionGroup is an AND- or OR-joined list of conditions. Nesting stops
// here: groups cannot contain groups.
type ConditionGroup struct {
	Operator   BoolOperator `bson:"operator" json:"operator"`
	Conditions []Condition  `bson:"conditions" json:"conditions"`
}

// StaticMembers holds explicit membership for static segments.
// Exclusion dominates inclusion.
type StaticMembers struct {
	Included []string `bson:"included,omitempty" json:"included,omitempty"`
	Excluded []string `bson:"excluded,omitempty" json:"excluded,omitempty"`
}

// BaseFilter narrows the contact universe before any conditions apply.
type BaseFilter struct {
	Lists  []string `bson:"lists,omitempty" json:"lists,omitempty"`
	Status []string `bson:"status,omitempty" json:"status,omitempty"`
}

// DefaultSubscriptionStatus applies when a base filter names no statuses.
var DefaultSubscriptionStatus = []string{"subscribed"}

// CacheInfo is the cached cardinality and preview of a segment.
type CacheInfo struct {
	ContactCount     int64     `bson:"contactCount" json:"contactCount"`
	LastCalculatedAt time.Time `bson:"lastCalculatedAt,omitempty" json:"lastCalculatedAt,omitempty"`
	IsStale          bool      `bson:"isStale" json:"isStale"`
	SampleIDs        []string  `bson:"sampleIds,omitempty" json:"sampleIds,omitempty"`
}

// Segment is a saved, named filter over an organization's contacts.
type Segment struct {
	ID              string           `bson:"_id" json:"id"`
	OrgID           string           `bson:"orgId" json:"orgId"`
	Name            string           `bson:"name" json:"name"`
	Type            Type             `bson:"type" json:"type"`
	Status          Status           `bson:"status" json:"status"`
	RootOperator    BoolOperator     `bson:"rootOperator" json:"rootOperator"`
	ConditionGroups []ConditionGroup `bson:"conditionGroups,omitempty" json:"conditionGroups,omitempty"`
	StaticMembers   StaticMembers    `bson:"staticMembers,omitempty" json:"staticMembers,omitempty"`
	BaseFilter      BaseFilter       `bson:"baseFilter,omitempty" json:"baseFilter,omitempty"`
	Cache           CacheInfo        `bson:"cache" json:"cache"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// ListMembership records a contact's subscription to a list.
type ListMembership struct {
	ListID string `bson:"listId" json:"listId"`
	Status string `bson:"status" json:"status"`
}

// Engagement summarizes a contact's interaction history.
type Engagement struct {
	Score        float64   `bson:"score" json:"score"`
	LastOpenedAt time.Time `bson:"lastOpenedAt,omitempty" json:"lastOpenedAt,omitempty"`
	LastClickAt  time.Time `bson:"lastClickAt,omitempty" json:"lastClickAt,omitempty"`
}

// Contact is the queried projection of the contact store's documents. The
// store itself is owned elsewhere; this package only reads it.
type Contact struct {
	ID         string           `bson:"_id" json:"id"`
	OrgID      string           `bson:"orgId" json:"orgId"`
	Email      string           `bson:"email" json:"email"`
	FirstName  string           `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName   string           `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Status     string           `bson:"status" json:"status"`
	Lists      []ListMembership `bson:"lists,omitempty" json:"lists,omitempty"`
	Engagement Engagement       `bson:"engagement" json:"engagement"`
	Attributes map[string]any   `bson:"attributes,omitempty" json:"attributes,omitempty"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
}
