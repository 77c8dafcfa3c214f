package fulfillment

import (
	"testing"

	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

func TestBalanceUnauthenticatedDetour(t *testing.T) {
	b := NewBalance(zap.NewNop())
	p := turn(t, StateGetBalance, IntentGetBalanceStart, nil)

	if err := b.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	authed, ok := p.SessionValue(SessionAuthenticated)
	if !ok || authed != false {
		t.Errorf("session %s = %v (present=%v), want false", SessionAuthenticated, authed, ok)
	}
	if p.State() != StateIdentityVerification {
		t.Errorf("state = %q, want %q", p.State(), StateIdentityVerification)
	}
	if p.SlotExists(SlotBalance) {
		t.Error("balance was disclosed to an unauthenticated session")
	}

	stashed, err := p.Slot(SlotInitialIntent)
	if err != nil {
		t.Fatalf("initial intent was not stashed: %v", err)
	}
	if got := stashed.Values[0].Value(); got != initialIntentBalance {
		t.Errorf("stashed intent = %v, want %q", got, initialIntentBalance)
	}
}

func TestBalanceAuthenticatedDisclosure(t *testing.T) {
	b := NewBalance(zap.NewNop())
	p := turn(t, StateGetBalance, IntentConfirmYes, nil)
	p.SetSessionValue(SessionAuthenticated, true)

	if err := b.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	if p.State() != StateGetBalance {
		t.Errorf("state = %q, want %q unchanged", p.State(), StateGetBalance)
	}
	s, err := p.Slot(SlotBalance)
	if err != nil {
		t.Fatalf("balance slot missing: %v", err)
	}
	v := s.Values[0]
	if v.Value() != "2000.00" {
		t.Errorf("balance value = %v, want 2000.00", v.Value())
	}
	if status, _ := v.Status(); status != domain.StatusConfirmed {
		t.Errorf("balance status = %q, want %q", status, domain.StatusConfirmed)
	}
	if v["currency"] != "dollars" {
		t.Errorf("currency = %v, want dollars", v["currency"])
	}
}

func TestBalanceBlindResolvesInboundSlots(t *testing.T) {
	b := NewBalance(zap.NewNop())
	p := turn(t, StateGetBalance, IntentGetBalanceStart, map[string]any{
		"_ACC_TYPE_": unresolvedStringSlot("saving"),
	})
	p.SetSessionValue(SessionAuthenticated, true)

	if err := b.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	s, err := p.Slot(SlotAccountType)
	if err != nil {
		t.Fatalf("Slot failed: %v", err)
	}
	v := s.Values[0]
	if !v.IsResolved() {
		t.Error("inbound slot value was not resolved")
	}
	if v.Value() != "saving" {
		t.Errorf("value = %v, want synthesized from tokens", v.Value())
	}
}
