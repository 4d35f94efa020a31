package services

import (
	"strings"

	"business-bot/models"
)

// MatchRule returns the first active rule whose trigger is a
// case-insensitive substring of the message, or nil if none matches.
// It does not consult the auto-reply setting; that is the caller's
// decision. Deterministic for a given rule list and message.
func MatchRule(rules []models.ResponseRule, message string) *models.ResponseRule {
	lowered := strings.ToLower(message)
	for i := range rules {
		if !rules[i].IsActive {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(rules[i].Trigger)) {
			return &rules[i]
		}
	}
	return nil
}

// ApplyRuleUpdates merges a batch of rule updates into the rule set by
// trigger identity: an update whose trigger exactly matches an existing
// rule overwrites that rule's non-nil fields, any other update is
// appended as a new rule. Rules are never deleted. Updates apply in
// input order, so later updates in the batch win over earlier ones
// targeting the same trigger.
func ApplyRuleUpdates(rules []models.ResponseRule, updates []models.RuleUpdate) []models.ResponseRule {
	for _, update := range updates {
		found := false
		for i := range rules {
			if rules[i].Trigger == update.Trigger {
				if update.Response != nil {
					rules[i].Response = *update.Response
				}
				if update.IsActive != nil {
					rules[i].IsActive = *update.IsActive
				}
				found = true
				break
			}
		}
		if found {
			continue
		}

		rule := models.ResponseRule{Trigger: update.Trigger, IsActive: true}
		if update.Response != nil {
			rule.Response = *update.Response
		}
		if update.IsActive != nil {
			rule.IsActive = *update.IsActive
		}
		rules = append(rules, rule)
	}
	return rules
}
