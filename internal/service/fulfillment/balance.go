package fulfillment

import (
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// Balance handles balance-lookup turns. A session without an
// authentication flag is marked unauthenticated and detoured to
// identity verification before any balance is disclosed; an
// authenticated session gets a synthesized, fully-resolved balance
// value injected.
type Balance struct {
	log *zap.Logger
}

func NewBalance(log *zap.Logger) *Balance {
	return &Balance{log: log}
}

func (b *Balance) Fulfill(p *domain.Payload) error {
	if _, ok := p.SessionValue(SessionAuthenticated); !ok {
		b.log.Info("Unauthenticated session, deferring balance disclosure",
			zap.String("intent", p.Intent()),
		)
		p.SetSessionValue(SessionAuthenticated, false)
		p.Transition(StateIdentityVerification)
	} else if authed, _ := p.SessionValue(SessionAuthenticated); authed == true {
		p.SetSlot(SlotBalance, &domain.Slot{
			Type: domain.SlotTypeString,
			Values: []domain.SlotValue{{
				"status":   domain.StatusConfirmed,
				"tokens":   "2000.00",
				"value":    "2000.00",
				"currency": "dollars",
			}},
		})
	}

	p.BlindResolve()

	// Stash the requested intent so it survives the state detour.
	p.SetSlot(SlotInitialIntent, &domain.Slot{
		Type: domain.SlotTypeString,
		Values: []domain.SlotValue{{
			"status": domain.StatusConfirmed,
			"tokens": initialIntentBalance,
			"value":  initialIntentBalance,
		}},
	})

	return nil
}
