package services

import (
	"testing"

	"business-bot/models"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func sampleRules() []models.ResponseRule {
	return []models.ResponseRule{
		{Trigger: "hours", Response: "Our business hours can be found on our profile page.", IsActive: true},
		{Trigger: "location", Response: "You can find our location details on our profile page.", IsActive: true},
		{Trigger: "contact", Response: "Please visit our profile page for contact information.", IsActive: true},
	}
}

func TestMatchRuleCaseInsensitiveSubstring(t *testing.T) {
	rules := sampleRules()

	tests := []struct {
		name    string
		message string
		want    string // expected trigger, "" for no match
	}{
		{"exact word", "hours", "hours"},
		{"substring", "What are your HOURS today?", "hours"},
		{"mixed case trigger", "tell me the LoCaTiOn", "location"},
		{"no match", "do you deliver?", ""},
		{"empty message", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := MatchRule(rules, tt.message)
			if tt.want == "" {
				if rule != nil {
					t.Fatalf("expected no match, got rule %q", rule.Trigger)
				}
				return
			}
			if rule == nil {
				t.Fatalf("expected match on %q, got none", tt.want)
			}
			if rule.Trigger != tt.want {
				t.Errorf("matched %q, want %q", rule.Trigger, tt.want)
			}
		})
	}
}

func TestMatchRuleFirstMatchWins(t *testing.T) {
	rules := []models.ResponseRule{
		{Trigger: "open", Response: "first", IsActive: true},
		{Trigger: "opening hours", Response: "second", IsActive: true},
	}

	rule := MatchRule(rules, "what are your opening hours?")
	if rule == nil || rule.Response != "first" {
		t.Fatalf("expected first rule in stored order to win, got %+v", rule)
	}
}

func TestMatchRuleSkipsInactive(t *testing.T) {
	rules := []models.ResponseRule{
		{Trigger: "hours", Response: "inactive", IsActive: false},
		{Trigger: "hours", Response: "active", IsActive: true},
	}

	rule := MatchRule(rules, "your hours?")
	if rule == nil || rule.Response != "active" {
		t.Fatalf("expected inactive rule to be skipped, got %+v", rule)
	}
}

func TestMatchRuleDeterministic(t *testing.T) {
	rules := sampleRules()
	first := MatchRule(rules, "where is your location?")
	if first == nil {
		t.Fatal("expected a match")
	}
	for i := 0; i < 100; i++ {
		got := MatchRule(rules, "where is your location?")
		if got != first {
			t.Fatalf("call %d returned a different rule", i)
		}
	}
}

func TestApplyRuleUpdatesUpsert(t *testing.T) {
	rules := []models.ResponseRule{
		{Trigger: "hours", Response: "A", IsActive: true},
	}

	rules = ApplyRuleUpdates(rules, []models.RuleUpdate{
		{Trigger: "hours", Response: strPtr("B")},
		{Trigger: "location", Response: strPtr("C")},
	})

	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Trigger != "hours" || rules[0].Response != "B" {
		t.Errorf("hours rule not updated: %+v", rules[0])
	}
	if !rules[0].IsActive {
		t.Error("update without is_active flipped the existing flag")
	}
	if rules[1].Trigger != "location" || rules[1].Response != "C" || !rules[1].IsActive {
		t.Errorf("location rule not appended correctly: %+v", rules[1])
	}
}

func TestApplyRuleUpdatesTriggerCompareIsExact(t *testing.T) {
	rules := []models.ResponseRule{
		{Trigger: "hours", Response: "A", IsActive: true},
	}

	// "Hours" differs by case from "hours": upsert identity is exact,
	// unlike the matching semantics
	rules = ApplyRuleUpdates(rules, []models.RuleUpdate{
		{Trigger: "Hours", Response: strPtr("B")},
	})

	if len(rules) != 2 {
		t.Fatalf("expected append for non-identical trigger, got %d rules", len(rules))
	}
	if rules[0].Response != "A" {
		t.Errorf("original rule was modified: %+v", rules[0])
	}
}

func TestApplyRuleUpdatesLaterUpdateWins(t *testing.T) {
	rules := ApplyRuleUpdates(nil, []models.RuleUpdate{
		{Trigger: "hours", Response: strPtr("first")},
		{Trigger: "hours", Response: strPtr("second"), IsActive: boolPtr(false)},
	})

	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Response != "second" || rules[0].IsActive {
		t.Errorf("later update in the batch did not win: %+v", rules[0])
	}
}

func TestApplyRuleUpdatesNeverDeletes(t *testing.T) {
	rules := sampleRules()
	updated := ApplyRuleUpdates(rules, []models.RuleUpdate{
		{Trigger: "hours", IsActive: boolPtr(false)},
	})

	if len(updated) != len(rules) {
		t.Fatalf("rule count changed from %d to %d", len(rules), len(updated))
	}
	if updated[0].IsActive {
		t.Error("deactivation not applied")
	}
	if updated[0].Response == "" {
		t.Error("deactivation cleared the response text")
	}
}
