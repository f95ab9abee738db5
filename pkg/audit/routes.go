package audit

import "strings"

// Route binds an HTTP method and path pattern to an action. Patterns are
// literal paths whose segments may be placeholders (prefixed with ':'),
// matching any single non-empty segment.
type Route struct {
	Method  string
	Pattern string
	Action  Action
}

// DefaultRoutes is the route-to-action table shipped with the service.
// It is data, not code: operators extend it by passing their own table to
// NewClassifier. Declaration order is significant — the first match wins.
var DefaultRoutes = []Route{
	// Auth.
	{"POST", "/api/auth/login", ActionLogin},
	{"POST", "/api/auth/logout", ActionLogout},
	{"POST", "/api/auth/password", ActionPasswordChange},
	{"POST", "/api/auth/password-reset", ActionPasswordReset},
	{"POST", "/api/auth/2fa/enable", Action2FAEnabled},
	{"POST", "/api/auth/2fa/disable", Action2FADisabled},
	{"POST", "/api/auth/refresh", ActionTokenRefresh},

	// Users.
	{"POST", "/api/users", ActionUserCreate},
	{"PUT", "/api/users/:id", ActionUserUpdate},
	{"PATCH", "/api/users/:id", ActionUserUpdate},
	{"DELETE", "/api/users/:id", ActionUserDelete},
	{"POST", "/api/users/invite", ActionUserInvite},
	{"PUT", "/api/users/:id/role", ActionRoleChange},

	// Contacts.
	{"POST", "/api/contacts", ActionContactCreate},
	{"POST", "/api/contacts/import", ActionContactImport},
	{"POST", "/api/contacts/export", ActionContactExport},
	{"PUT", "/api/contacts/:id", ActionContactUpdate},
	{"PATCH", "/api/contacts/:id", ActionContactUpdate},
	{"DELETE", "/api/contacts/:id", ActionContactDelete},
	{"POST", "/api/contacts/:id/unsubscribe", ActionContactUnsubscribe},
	{"POST", "/api/contacts/:id/resubscribe", ActionContactResubscribe},

	// Campaigns.
	{"POST", "/api/campaigns", ActionCampaignCreate},
	{"PUT", "/api/campaigns/:id", ActionCampaignUpdate},
	{"PATCH", "/api/campaigns/:id", ActionCampaignUpdate},
	{"DELETE", "/api/campaigns/:id", ActionCampaignDelete},
	{"POST", "/api/campaigns/:id/send", ActionCampaignSend},
	{"POST", "/api/campaigns/:id/schedule", ActionCampaignSchedule},
	{"POST", "/api/campaigns/:id/pause", ActionCampaignPause},
	{"POST", "/api/campaigns/:id/cancel", ActionCampaignCancel},

	// Templates.
	{"POST", "/api/templates", ActionTemplateCreate},
	{"PUT", "/api/templates/:id", ActionTemplateUpdate},
	{"PATCH", "/api/templates/:id", ActionTemplateUpdate},
	{"DELETE", "/api/templates/:id", ActionTemplateDelete},

	// Lists.
	{"POST", "/api/lists", ActionListCreate},
	{"PUT", "/api/lists/:id", ActionListUpdate},
	{"DELETE", "/api/lists/:id", ActionListDelete},

	// Automations.
	{"POST", "/api/automations", ActionAutomationCreate},
	{"PUT", "/api/automations/:id", ActionAutomationUpdate},
	{"DELETE", "/api/automations/:id", ActionAutomationDelete},
	{"POST", "/api/automations/:id/activate", ActionAutomationActivate},
	{"POST", "/api/automations/:id/pause", ActionAutomationPause},

	// Billing.
	{"POST", "/api/billing/upgrade", ActionSubscriptionUpgrade},
	{"POST", "/api/billing/downgrade", ActionSubscriptionDowngrade},
	{"POST", "/api/billing/cancel", ActionSubscriptionCancel},

	// API keys, webhooks, settings.
	{"POST", "/api/api-keys", ActionAPIKeyCreate},
	{"DELETE", "/api/api-keys/:id", ActionAPIKeyDelete},
	{"POST", "/api/webhooks", ActionWebhookCreate},
	{"DELETE", "/api/webhooks/:id", ActionWebhookDelete},
	{"PUT", "/api/settings", ActionSettingsUpdate},
}

type parametricRoute struct {
	method   string
	segments []string
	action   Action
}

// Classifier maps (method, path) pairs to actions using a static table.
// Matching is two-phase: exact lookups first, then an ordered scan of
// placeholder patterns. Paths are matched verbatim — trailing slashes are
// significant and the caller strips any query string.
type Classifier struct {
	exact      map[string]Action
	parametric []parametricRoute
}

// NewClassifier builds a classifier from a route table, preserving
// declaration order for parametric matches.
func NewClassifier(routes []Route) *Classifier {
	c := &Classifier{exact: make(map[string]Action, len(routes))}
	for _, route := range routes {
		if strings.Contains(route.Pattern, ":") {
			c.parametric = append(c.parametric, parametricRoute{
				method:   route.Method,
				segments: strings.Split(route.Pattern, "/"),
				action:   route.Action,
			})
			continue
		}
		key := route.Method + " " + route.Pattern
		if _, exists := c.exact[key]; !exists {
			c.exact[key] = route.Action
		}
	}
	return c
}

// Classify returns the action for the request and any placeholder values
// captured from the path. The third return is false when no entry matches;
// such requests proceed unaudited.
func (c *Classifier) Classify(method, path string) (Action, map[string]string, bool) {
	if action, ok := c.exact[method+" "+path]; ok {
		return action, nil, true
	}

	segments := strings.Split(path, "/")
	for _, route := range c.parametric {
		if route.method != method || len(route.segments) != len(segments) {
			continue
		}
		params, ok := matchSegments(route.segments, segments)
		if !ok {
			continue
		}
		return route.action, params, true
	}

	return "", nil, false
}

func matchSegments(pattern, path []string) (map[string]string, bool) {
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if path[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string, 2)
			}
			params[p[1:]] = path[i]
			continue
		}
		if p != path[i] {
			return nil, false
		}
	}
	return params, true
}
