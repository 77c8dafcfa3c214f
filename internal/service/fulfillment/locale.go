package fulfillment

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// Dialog states handled by the locale-variant passthrough.
const (
	StateRoot              = "root"
	StateAcctGetBalance    = "acct_get_balance"
	StateAcctTransfer      = "acc_transfer"
	StatePrioritizeIntents = "prioritize_multi_intent"
	StateBLSSource         = "bls_transition_source"
	StateBLSDest           = "bls_transition_dest"
	StateBLSTerminal       = "bls_terminal"
	StateBLSNonTerminal    = "bls_non_terminal"
	StateSlotMapper        = "slot_mapper_state"
)

// goalStates orders multi-intent segments by business priority.
var goalStates = []string{StateGetBalance, "clean_hello", "clean_goodbye", "funds_transfer"}

// accountBalances is the fixed account book for the demo balance lookup.
var accountBalances = map[string]int{
	"trading": 20000,
	"spend":   42,
	"saving":  12000,
	"当座":      20000,
}

// accountCandidates is the fixed candidate list offered to the slot
// mapper for account-type disambiguation.
var accountCandidates = []any{
	map[string]any{"value": "saving", "account_id": "155243", "balance": "4521.10", "currency": "USD"},
	map[string]any{"value": "checking", "account_id": "7725485", "balance": "332.21", "currency": "USD"},
	map[string]any{"value": "IRA", "account_id": "2938429", "balance": "5454.23", "currency": "USD"},
}

var accountMappings = []any{
	map[string]any{
		"type":      "contextual_phrase_embedder",
		"threshold": 0.6,
		"values": map[string]any{
			"saving":   []any{"saving"},
			"checking": []any{"checking"},
			"IRA":      []any{"IRA"},
		},
	},
}

// LocalePassthrough is the denser locale-specific passthrough: a set of
// per-state sub-handlers selected through the same table mechanism as
// the top-level dispatcher, followed by the usual blind resolution. At
// the dispatch layer it is simply one more state registration.
type LocalePassthrough struct {
	log    *zap.Logger
	states map[string]FulfillerFunc
}

func NewLocalePassthrough(log *zap.Logger) *LocalePassthrough {
	lp := &LocalePassthrough{log: log}
	lp.states = map[string]FulfillerFunc{
		StateRoot:              lp.handleRoot,
		StateAcctGetBalance:    lp.handleGetBalance,
		StateAcctTransfer:      lp.handleFundsTransfer,
		StatePrioritizeIntents: lp.handleRoot,
		StateBLSSource:         lp.handleTransitionSource,
		StateBLSTerminal:       lp.handleTerminalStates,
		StateBLSNonTerminal:    lp.handleTerminalStates,
		StateSlotMapper:        lp.handleSlotMapper,
	}
	return lp
}

// States lists the dialog states this variant registers for, sorted.
func (lp *LocalePassthrough) States() []string {
	states := make([]string, 0, len(lp.states))
	for state := range lp.states {
		states = append(states, state)
	}
	sort.Strings(states)
	return states
}

func (lp *LocalePassthrough) Fulfill(p *domain.Payload) error {
	if handler, ok := lp.states[p.State()]; ok {
		if err := handler(p); err != nil {
			return err
		}
	}
	p.BlindResolve()
	return nil
}

// handleRoot prioritizes multi-intent utterances: classified segments
// are reordered by goal-state priority and written back as
// ordered_segments.
func (lp *LocalePassthrough) handleRoot(p *domain.Payload) error {
	if !p.ContainsField("classified_segments") {
		return nil
	}
	raw, err := p.Field("classified_segments")
	if err != nil {
		return err
	}

	// Each classified segment is an (utterance, state) pair.
	segments := make(map[string]string)
	list, _ := raw.([]any)
	for _, item := range list {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		utterance, _ := pair[0].(string)
		state, _ := pair[1].(string)
		segments[state] = utterance
	}

	ordered := make([]any, 0, len(goalStates))
	for _, state := range goalStates {
		if utterance, ok := segments[state]; ok && utterance != "" {
			ordered = append(ordered, utterance)
		}
	}
	p.SetField("ordered_segments", ordered)

	lp.log.Info("Prioritized multi-intent segments", zap.Int("count", len(ordered)))
	return nil
}

// handleGetBalance confirms every slot value in the status vocabulary
// and injects the balance of the requested account type from the fixed
// account book. Unknown account types yield a nil balance.
func (lp *LocalePassthrough) handleGetBalance(p *domain.Payload) error {
	for _, name := range p.SlotNames() {
		s, err := p.Slot(name)
		if err != nil {
			return err
		}
		for _, v := range s.Values {
			confirmStatus(v)
		}
		p.SetSlot(name, s)
	}

	accountType, err := p.Slot(SlotAccountType)
	if err != nil {
		return err
	}
	if len(accountType.Values) == 0 {
		return fmt.Errorf("slot [%s] has no values", SlotAccountType)
	}

	var balance any
	if tokens, ok := accountType.Values[0].Tokens().(string); ok {
		if amount, ok := accountBalances[tokens]; ok {
			balance = amount
		}
	}

	p.SetSlot(SlotBalance, &domain.Slot{
		Type: domain.SlotTypeInt,
		Values: []domain.SlotValue{{
			"status": domain.StatusConfirmed,
			"value":  balance,
		}},
	})
	return nil
}

// handleFundsTransfer collapses every slot to its most recent value;
// older extractions are dropped rather than kept unresolved.
func (lp *LocalePassthrough) handleFundsTransfer(p *domain.Payload) error {
	for _, name := range p.SlotNames() {
		s, err := p.Slot(name)
		if err != nil {
			return err
		}
		if len(s.Values) == 0 {
			continue
		}
		latest := s.Values[len(s.Values)-1]
		confirmStatus(latest)
		s.Values = []domain.SlotValue{latest}
		p.SetSlot(name, s)
	}
	return nil
}

func (lp *LocalePassthrough) handleTransitionSource(p *domain.Payload) error {
	p.Transition(StateBLSDest)
	return nil
}

func (lp *LocalePassthrough) handleTerminalStates(p *domain.Payload) error {
	p.SetField("terminal_states", map[string]any{
		StateBLSTerminal:    true,
		StateBLSNonTerminal: false,
	})
	return nil
}

// handleSlotMapper runs the two-stage extract -> map -> confirm ladder:
// freshly extracted slots are offered the fixed candidate list, and
// mapped slots whose value matches a candidate are confirmed.
func (lp *LocalePassthrough) handleSlotMapper(p *domain.Payload) error {
	for _, name := range p.SlotNames() {
		s, err := p.Slot(name)
		if err != nil {
			return err
		}
		if len(s.Values) == 0 {
			continue
		}
		status, _ := s.Values[0].Status()
		switch status {
		case domain.StatusExtracted:
			if s.Meta == nil {
				s.Meta = make(map[string]any)
			}
			s.Meta["candidates"] = accountCandidates
			s.Meta["mappings"] = accountMappings
		case domain.StatusMapped:
			for _, c := range accountCandidates {
				candidate := c.(map[string]any)
				if candidate["value"] == s.Values[0].Value() {
					s.Values[0].SetStatus(domain.StatusConfirmed)
				}
			}
		}
		p.SetSlot(name, s)
	}
	return nil
}

// confirmStatus confirms a value in the status vocabulary regardless of
// which vocabulary it arrived with, synthesizing the value from tokens
// when absent.
func confirmStatus(v domain.SlotValue) {
	v.SetStatus(domain.StatusConfirmed)
	if !v.HasValue() {
		v["value"] = v.Tokens()
	}
}
