package fulfillment

import (
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// amountLadder fixes the priority order in which an ambiguous amount is
// reclassified: annual income first, then the estimated existing
// amount, then the desired new limit. Only the first unmet target is
// filled per invocation.
var amountLadder = []string{SlotAnnualIncome, SlotEstimateAmount, SlotDesiredLimit}

// CreditLimit handles credit-limit-increase turns.
type CreditLimit struct {
	log *zap.Logger
}

func NewCreditLimit(log *zap.Logger) *CreditLimit {
	return &CreditLimit{log: log}
}

func (c *CreditLimit) Fulfill(p *domain.Payload) error {
	p.BlindResolve()
	return nil
}

// FulfillAmbiguous runs the disambiguation ladder for an amount whose
// semantic role is unclear: the ambiguous value's evidence is copied
// into the first unpopulated target slot and the ambiguous value is
// marked for deletion.
func (c *CreditLimit) FulfillAmbiguous(p *domain.Payload) error {
	p.BlindResolve()

	if p.Intent() != IntentAmbiguousAmountStart || !p.SlotExists(SlotAmbiguousAmount) {
		return nil
	}

	target := ""
	for _, name := range amountLadder {
		if !p.SlotExists(name) {
			target = name
			break
		}
	}
	if target == "" {
		// All three amount slots are populated; nothing to reclassify.
		return nil
	}

	ambiguous, err := p.Slot(SlotAmbiguousAmount)
	if err != nil {
		return err
	}
	if len(ambiguous.Values) == 0 {
		return nil
	}
	first := ambiguous.Values[0]

	p.SetSlot(target, &domain.Slot{
		Type: domain.SlotTypeString,
		Values: []domain.SlotValue{{
			"status":   domain.StatusConfirmed,
			"tokens":   first.Tokens(),
			"value":    first.Value(),
			"currency": "dollars",
		}},
	})

	c.log.Info("Reclassified ambiguous amount",
		zap.String("target", target),
	)

	return p.SetValueStatus(SlotAmbiguousAmount, 0, domain.StatusDelete)
}
