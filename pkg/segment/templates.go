package segment

// Pre-built template names. Templates are read-only blueprints identified by
// name; instantiating one produces a regular dynamic segment the org owns.
const (
	TemplateHighlyEngaged  = "HIGHLY_ENGAGED"
	TemplateInactive90D    = "INACTIVE_90D"
	TemplateNewSubscribers = "NEW_SUBSCRIBERS_7D"
)

// Template is a named, ready-made segment definition.
type Template struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Groups      []ConditionGroup `json:"conditionGroups"`
}

var templates = map[string]Template{
	TemplateHighlyEngaged: {
		Name:        TemplateHighlyEngaged,
		Description: "Contacts with an engagement score of 70 or higher",
		Groups: []ConditionGroup{{
			Operator: OperatorAnd,
			Conditions: []Condition{{
				Field:    "engagement.score",
				Operator: OpGreaterThanOrEqual,
				Value:    float64(70),
			}},
		}},
	},
	TemplateInactive90D: {
		Name:        TemplateInactive90D,
		Description: "Contacts with no opens in the last 90 days",
		Groups: []ConditionGroup{{
			Operator: OperatorAnd,
			Conditions: []Condition{{
				Field:    "engagement.lastOpenedAt",
				Operator: OpNotWithinLast,
				Value:    float64(90),
				Unit:     "days",
			}},
		}},
	},
	TemplateNewSubscribers: {
		Name:        TemplateNewSubscribers,
		Description: "Contacts who subscribed within the last 7 days",
		Groups: []ConditionGroup{{
			Operator: OperatorAnd,
			Conditions: []Condition{{
				Field:    "createdAt",
				Operator: OpWithinLast,
				Value:    float64(7),
				Unit:     "days",
			}},
		}},
	},
}

// Templates lists the built-in templates in a stable order.
func Templates() []Template {
	return []Template{
		templates[TemplateHighlyEngaged],
		templates[TemplateInactive90D],
		templates[TemplateNewSubscribers],
	}
}

// TemplateByName returns the named template, if it exists.
func TemplateByName(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}

// FromTemplate builds an unsaved dynamic segment from a template. The
// caller assigns the org and persists it through the Store.
func FromTemplate(t Template, orgID, name string) *Segment {
	return &Segment{
		OrgID:           orgID,
		Name:            name,
		Type:            TypeDynamic,
		Status:          StatusActive,
		RootOperator:    OperatorAnd,
		ConditionGroups: t.Groups,
	}
}
