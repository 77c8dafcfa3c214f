package fulfillment

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

func turn(t *testing.T, state, intent string, slots map[string]any) *domain.Payload {
	t.Helper()
	if slots == nil {
		slots = map[string]any{}
	}
	p, err := domain.NewPayload(map[string]any{
		"state":        state,
		"intent":       intent,
		"session_info": map[string]any{},
		"slots":        slots,
	})
	if err != nil {
		t.Fatalf("NewPayload failed: %v", err)
	}
	return p
}

func unresolvedStringSlot(tokens string) map[string]any {
	return map[string]any{
		"type": "string",
		"values": []any{
			map[string]any{"tokens": tokens, "resolved": -1},
		},
	}
}

func extractedStringSlot(tokens string) map[string]any {
	return map[string]any{
		"type": "string",
		"values": []any{
			map[string]any{"tokens": tokens, "status": domain.StatusExtracted},
		},
	}
}

func tagging(tag string, got *string) FulfillerFunc {
	return func(*domain.Payload) error {
		*got = tag
		return nil
	}
}

func TestLookupPrecedence(t *testing.T) {
	var got string
	r := NewRegistry()
	r.Register("auth", "login", tagging("exact", &got))
	r.Register("auth", Wildcard, tagging("state-wildcard", &got))
	r.RegisterFallback(tagging("fallback", &got))

	tests := []struct {
		name      string
		state     string
		intent    string
		wantTag   string
		wantRoute string
	}{
		{"exact pair wins", "auth", "login", "exact", "[auth][login]"},
		{"state wildcard next", "auth", "logout", "state-wildcard", "[auth][*]"},
		{"fallback last", "billing", "login", "fallback", "[*]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, route := r.Lookup(tt.state, tt.intent)
			if f == nil {
				t.Fatalf("Lookup(%q, %q) returned nil fulfiller", tt.state, tt.intent)
			}
			if route != tt.wantRoute {
				t.Errorf("route = %q, want %q", route, tt.wantRoute)
			}
			got = ""
			if err := f.Fulfill(turn(t, tt.state, tt.intent, nil)); err != nil {
				t.Fatalf("Fulfill failed: %v", err)
			}
			if got != tt.wantTag {
				t.Errorf("fulfiller = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestDispatcherUnroutable(t *testing.T) {
	d := NewDispatcher(NewRegistry(), zap.NewNop())

	err := d.Fulfill(turn(t, "billing", "pay", nil))
	var nf *NotFulfilledError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want *NotFulfilledError", err)
	}
	if nf.State != "billing" || nf.Intent != "pay" {
		t.Errorf("error carries (%q, %q), want (billing, pay)", nf.State, nf.Intent)
	}
	want := "state: [billing] + intent: [pay] combination does not have a fulfiller"
	if nf.Error() != want {
		t.Errorf("message = %q, want %q", nf.Error(), want)
	}
}

func TestDispatcherRejectFallback(t *testing.T) {
	r := NewRegistry().RegisterFallback(Reject)
	d := NewDispatcher(r, zap.NewNop())

	err := d.Fulfill(turn(t, "billing", "pay", nil))
	var nf *NotFulfilledError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want *NotFulfilledError", err)
	}
}

func TestDefaultTableRoutes(t *testing.T) {
	r := Default(zap.NewNop())

	tests := []struct {
		state     string
		intent    string
		wantRoute string
	}{
		{StateGetBalance, IntentGetBalanceStart, "[get_balance][get_balance_start]"},
		{StateGetBalance, IntentConfirmYes, "[get_balance][cs_yes]"},
		{StateIdentityVerification, IntentGetBalanceStart, "[identity_verification][get_balance_start]"},
		{StateConfirmDetails, IntentConfirmYes, "[confirm_details][cs_yes]"},
		{StateIncreaseCCLimit, IntentIncreaseCCLimitStart, "[increase_cc_limit][increase_cc_limit_start]"},
		{StateIncreaseCCLimit, IntentAmbiguousAmountStart, "[increase_cc_limit][ambiguous_amount_start]"},
		{StateOutOfScope, "anything_at_all", "[outofscope][*]"},
		{StateSlotMapper, "anything_at_all", "[slot_mapper_state][*]"},
		{"never_registered", "never_registered", "[*]"},
	}
	for _, tt := range tests {
		f, route := r.Lookup(tt.state, tt.intent)
		if f == nil {
			t.Errorf("Lookup(%q, %q) returned nil fulfiller", tt.state, tt.intent)
			continue
		}
		if route != tt.wantRoute {
			t.Errorf("Lookup(%q, %q) route = %q, want %q", tt.state, tt.intent, route, tt.wantRoute)
		}
	}
}
