package ports

import (
	"github.com/nlufoundry/fulfiller/internal/domain"
)

// DialogService fulfills one dialog turn in place.
type DialogService interface {
	Fulfill(p *domain.Payload) error
}
