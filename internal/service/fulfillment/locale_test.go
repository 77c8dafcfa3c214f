package fulfillment

import (
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

func TestLocaleStates(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())

	want := []string{
		StateAcctTransfer,
		StateAcctGetBalance,
		StateBLSNonTerminal,
		StateBLSTerminal,
		StateBLSSource,
		StatePrioritizeIntents,
		StateRoot,
		StateSlotMapper,
	}
	got := lp.States()
	if len(got) != len(want) {
		t.Fatalf("States() = %v, want %d states", got, len(want))
	}
	for _, state := range want {
		f, _ := Default(zap.NewNop()).Lookup(state, "anything")
		if f == nil {
			t.Errorf("state %q is not routed by the default table", state)
		}
	}
}

func TestLocaleRootOrdersSegments(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateRoot, "multi_intent", nil)
	p.SetField("classified_segments", []any{
		[]any{"hello there", "clean_hello"},
		[]any{"what is my balance", "get_balance"},
		[]any{"hmm", "chitchat"},
	})

	if err := lp.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	ordered, err := p.Field("ordered_segments")
	if err != nil {
		t.Fatalf("ordered_segments missing: %v", err)
	}
	want := []any{"what is my balance", "hello there"}
	if !reflect.DeepEqual(ordered, want) {
		t.Errorf("ordered_segments = %v, want %v", ordered, want)
	}
}

func TestLocaleRootWithoutSegments(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateRoot, "multi_intent", nil)

	if err := lp.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}
	if p.ContainsField("ordered_segments") {
		t.Error("ordered_segments was written without classified segments")
	}
}

func TestLocaleGetBalanceLookup(t *testing.T) {
	tests := []struct {
		name        string
		accountType string
		wantBalance any
	}{
		{"known account", "saving", 12000},
		{"non-latin account name", "当座", 20000},
		{"unknown account", "retirement", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lp := NewLocalePassthrough(zap.NewNop())
			p := turn(t, StateAcctGetBalance, "get_balance_start", map[string]any{
				"_ACC_TYPE_": extractedStringSlot(tt.accountType),
			})

			if err := lp.Fulfill(p); err != nil {
				t.Fatalf("Fulfill failed: %v", err)
			}

			balance, err := p.Slot(SlotBalance)
			if err != nil {
				t.Fatalf("balance slot missing: %v", err)
			}
			if got := balance.Values[0].Value(); got != tt.wantBalance {
				t.Errorf("balance = %v, want %v", got, tt.wantBalance)
			}

			acct, err := p.Slot(SlotAccountType)
			if err != nil {
				t.Fatalf("Slot failed: %v", err)
			}
			if status, _ := acct.Values[0].Status(); status != domain.StatusConfirmed {
				t.Errorf("account type status = %q, want %q", status, domain.StatusConfirmed)
			}
		})
	}
}

func TestLocaleGetBalanceMissingAccountType(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateAcctGetBalance, "get_balance_start", nil)

	if err := lp.Fulfill(p); err == nil {
		t.Fatal("Fulfill succeeded without an account type slot")
	}
}

func TestLocaleFundsTransferKeepsLatest(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateAcctTransfer, "funds_transfer_start", map[string]any{
		"_AMOUNT_": map[string]any{
			"type": "string",
			"values": []any{
				map[string]any{"tokens": "100", "status": domain.StatusExtracted},
				map[string]any{"tokens": "250", "status": domain.StatusExtracted},
			},
		},
	})

	if err := lp.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	s, err := p.Slot("_AMOUNT_")
	if err != nil {
		t.Fatalf("Slot failed: %v", err)
	}
	if len(s.Values) != 1 {
		t.Fatalf("values = %d, want the slot collapsed to one", len(s.Values))
	}
	v := s.Values[0]
	if v.Tokens() != "250" {
		t.Errorf("kept tokens = %v, want the latest extraction", v.Tokens())
	}
	if status, _ := v.Status(); status != domain.StatusConfirmed {
		t.Errorf("status = %q, want %q", status, domain.StatusConfirmed)
	}
}

func TestLocaleTransitionSource(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateBLSSource, "next", nil)

	if err := lp.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}
	if p.State() != StateBLSDest {
		t.Errorf("state = %q, want %q", p.State(), StateBLSDest)
	}
}

func TestLocaleTerminalStates(t *testing.T) {
	lp := NewLocalePassthrough(zap.NewNop())
	p := turn(t, StateBLSTerminal, "next", nil)

	if err := lp.Fulfill(p); err != nil {
		t.Fatalf("Fulfill failed: %v", err)
	}

	raw, err := p.Field("terminal_states")
	if err != nil {
		t.Fatalf("terminal_states missing: %v", err)
	}
	terminal, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("terminal_states = %T, want an object", raw)
	}
	if terminal[StateBLSTerminal] != true || terminal[StateBLSNonTerminal] != false {
		t.Errorf("terminal_states = %v", terminal)
	}
}

func TestLocaleSlotMapper(t *testing.T) {
	t.Run("extracted gets candidates", func(t *testing.T) {
		lp := NewLocalePassthrough(zap.NewNop())
		p := turn(t, StateSlotMapper, "map_account", map[string]any{
			"_ACC_TYPE_": extractedStringSlot("my rainy day account"),
		})

		if err := lp.Fulfill(p); err != nil {
			t.Fatalf("Fulfill failed: %v", err)
		}

		s, err := p.Slot(SlotAccountType)
		if err != nil {
			t.Fatalf("Slot failed: %v", err)
		}
		candidates, ok := s.Meta["candidates"].([]any)
		if !ok || len(candidates) != 3 {
			t.Fatalf("candidates = %v, want three offers", s.Meta["candidates"])
		}
		if _, ok := s.Meta["mappings"]; !ok {
			t.Error("mappings were not attached")
		}
	})

	t.Run("mapped candidate is confirmed", func(t *testing.T) {
		lp := NewLocalePassthrough(zap.NewNop())
		p := turn(t, StateSlotMapper, "map_account", map[string]any{
			"_ACC_TYPE_": map[string]any{
				"type": "string",
				"values": []any{
					map[string]any{"tokens": "my rainy day account", "value": "saving", "status": domain.StatusMapped},
				},
			},
		})

		if err := lp.Fulfill(p); err != nil {
			t.Fatalf("Fulfill failed: %v", err)
		}

		s, err := p.Slot(SlotAccountType)
		if err != nil {
			t.Fatalf("Slot failed: %v", err)
		}
		if status, _ := s.Values[0].Status(); status != domain.StatusConfirmed {
			t.Errorf("status = %q, want %q", status, domain.StatusConfirmed)
		}
	})

	t.Run("mapped non-candidate stays mapped before resolution", func(t *testing.T) {
		lp := NewLocalePassthrough(zap.NewNop())
		p := turn(t, StateSlotMapper, "map_account", map[string]any{
			"_ACC_TYPE_": map[string]any{
				"type": "string",
				"values": []any{
					map[string]any{"tokens": "my rainy day account", "value": "bitcoin", "status": domain.StatusMapped},
				},
			},
		})

		if err := lp.Fulfill(p); err != nil {
			t.Fatalf("Fulfill failed: %v", err)
		}

		s, err := p.Slot(SlotAccountType)
		if err != nil {
			t.Fatalf("Slot failed: %v", err)
		}
		if _, ok := s.Meta["candidates"]; ok {
			t.Error("candidates were offered to an already-mapped slot")
		}
	})
}
