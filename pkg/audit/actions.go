package audit

import "strings"

// Action is a short tag naming an auditable operation. The set is closed;
// anything not covered maps to ActionOther.
type Action string

const (
	// Authentication and account security.
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionLoginFailed    Action = "login_failed"
	ActionPasswordChange Action = "password_change"
	ActionPasswordReset  Action = "password_reset"
	Action2FAEnabled     Action = "2fa_enabled"
	Action2FADisabled    Action = "2fa_disabled"
	ActionTokenRefresh   Action = "token_refresh"

	// User management.
	ActionUserCreate       Action = "user_create"
	ActionUserUpdate       Action = "user_update"
	ActionUserDelete       Action = "user_delete"
	ActionUserInvite       Action = "user_invite"
	ActionRoleChange       Action = "role_change"
	ActionPermissionChange Action = "permission_change"

	// Contacts.
	ActionContactCreate      Action = "contact_create"
	ActionContactUpdate      Action = "contact_update"
	ActionContactDelete      Action = "contact_delete"
	ActionContactImport      Action = "contact_import"
	ActionContactExport      Action = "contact_export"
	ActionContactUnsubscribe Action = "contact_unsubscribe"
	ActionContactResubscribe Action = "contact_resubscribe"

	// Campaigns.
	ActionCampaignCreate   Action = "campaign_create"
	ActionCampaignUpdate   Action = "campaign_update"
	ActionCampaignDelete   Action = "campaign_delete"
	ActionCampaignSend     Action = "campaign_send"
	ActionCampaignSchedule Action = "campaign_schedule"
	ActionCampaignPause    Action = "campaign_pause"
	ActionCampaignCancel   Action = "campaign_cancel"

	// Templates.
	ActionTemplateCreate Action = "template_create"
	ActionTemplateUpdate Action = "template_update"
	ActionTemplateDelete Action = "template_delete"

	// Lists.
	ActionListCreate Action = "list_create"
	ActionListUpdate Action = "list_update"
	ActionListDelete Action = "list_delete"

	// Automations.
	ActionAutomationCreate   Action = "automation_create"
	ActionAutomationUpdate   Action = "automation_update"
	ActionAutomationDelete   Action = "automation_delete"
	ActionAutomationActivate Action = "automation_activate"
	ActionAutomationPause    Action = "automation_pause"

	// Billing.
	ActionSubscriptionUpgrade   Action = "subscription_upgrade"
	ActionSubscriptionDowngrade Action = "subscription_downgrade"
	ActionSubscriptionCancel    Action = "subscription_cancel"
	ActionPaymentSuccess        Action = "payment_success"
	ActionPaymentFailed         Action = "payment_failed"

	// Administration.
	ActionAdminUserSuspend    Action = "admin_user_suspend"
	ActionAdminUserReactivate Action = "admin_user_reactivate"
	ActionAdminOrgSuspend     Action = "admin_org_suspend"
	ActionAdminOrgReactivate  Action = "admin_org_reactivate"
	ActionAdminPlanChange     Action = "admin_plan_change"
	ActionAdminCreditsGrant   Action = "admin_credits_grant"
	ActionAdminCampaignFlag   Action = "admin_campaign_flag"
	ActionAdminIPBlock        Action = "admin_ip_block"

	// Security signals.
	ActionSuspiciousActivity Action = "suspicious_activity"
	ActionRateLimitExceeded  Action = "rate_limit_exceeded"
	ActionIPBlocked          Action = "ip_blocked"

	// API keys, webhooks, settings.
	ActionAPIKeyCreate   Action = "api_key_create"
	ActionAPIKeyDelete   Action = "api_key_delete"
	ActionWebhookCreate  Action = "webhook_create"
	ActionWebhookDelete  Action = "webhook_delete"
	ActionSettingsUpdate Action = "settings_update"

	ActionOther Action = "other"
)

// SecurityActions are the actions surfaced by RecentSecurityEvents.
var SecurityActions = []Action{
	ActionLoginFailed,
	ActionSuspiciousActivity,
	ActionRateLimitExceeded,
	ActionIPBlocked,
}

// resourceHints maps action-name substrings to resource types,
// checked in order; first match wins.
var resourceHints = []struct {
	substr string
	typ    string
}{
	{"contact", "contact"},
	{"campaign", "campaign"},
	{"template", "template"},
	{"automation", "automation"},
	{"user", "user"},
	{"org", "organization"},
	{"subscription", "subscription"},
}

// ResourceType infers the resource type from the action name.
func (a Action) ResourceType() string {
	name := string(a)
	for _, hint := range resourceHints {
		if strings.Contains(name, hint.substr) {
			return hint.typ
		}
	}
	return "other"
}

// IsMutation reports whether the action represents a create or update,
// which is when request bodies are worth capturing.
func (a Action) IsMutation() bool {
	name := string(a)
	return strings.Contains(name, "create") || strings.Contains(name, "update")
}

// CapturesBody reports whether the interceptor should snapshot the request
// body for this action. Creates and updates qualify, as do the credential
// actions whose payloads matter for security review — sanitization strips
// the secrets before anything is persisted.
func (a Action) CapturesBody() bool {
	if a.IsMutation() {
		return true
	}
	switch a {
	case ActionLogin, ActionLoginFailed, ActionPasswordChange, ActionPasswordReset:
		return true
	}
	return false
}
