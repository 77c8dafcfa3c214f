package fulfillment

import (
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// OutOfScope recovers out-of-scope utterances with a fixed policy:
// transition the dialog back to the balance-lookup state.
type OutOfScope struct {
	log *zap.Logger
}

func NewOutOfScope(log *zap.Logger) *OutOfScope {
	return &OutOfScope{log: log}
}

func (o *OutOfScope) Fulfill(p *domain.Payload) error {
	o.log.Info("Out-of-scope utterance, recovering",
		zap.String("intent", p.Intent()),
	)
	p.Transition(StateGetBalance)
	return nil
}
