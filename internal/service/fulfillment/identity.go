package fulfillment

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
)

// IdentityVerification marks the session authenticated once both a
// person name and a phone number have been captured, then resumes the
// intent that was interrupted by the verification detour.
type IdentityVerification struct {
	log *zap.Logger
}

func NewIdentityVerification(log *zap.Logger) *IdentityVerification {
	return &IdentityVerification{log: log}
}

func (iv *IdentityVerification) Fulfill(p *domain.Payload) error {
	if p.SlotExists(SlotPersonName) && p.SlotExists(SlotPhoneNumber) {
		userID := uuid.New().String()
		p.SetSessionValue(SessionAuthenticated, true)
		p.SetSessionValue(SessionUserID, userID)
		iv.log.Info("Session authenticated", zap.String("user_id", userID))
	}

	if p.SlotExists(SlotInitialIntent) {
		stashed, err := p.Slot(SlotInitialIntent)
		if err != nil {
			return err
		}
		if len(stashed.Values) > 0 && stashed.Values[0].Value() == initialIntentBalance {
			p.Transition(StateGetBalance)
		}
	}

	return nil
}
