package fulfillment

import (
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// Passthrough is the default fulfiller: blind resolution only, nothing
// special to do.
type Passthrough struct {
	log *zap.Logger
}

func NewPassthrough(log *zap.Logger) *Passthrough {
	return &Passthrough{log: log}
}

func (pt *Passthrough) Fulfill(p *domain.Payload) error {
	p.BlindResolve()
	return nil
}
