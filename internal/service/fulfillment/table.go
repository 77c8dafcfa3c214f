package fulfillment

import "go.uber.org/zap"

// Default builds the reference routing table. The global fallback is a
// best-effort passthrough, so unroutable turns never occur with this
// table; swap it for Reject to surface them instead.
func Default(log *zap.Logger) *Registry {
	balance := NewBalance(log)
	identity := NewIdentityVerification(log)
	credit := NewCreditLimit(log)
	locale := NewLocalePassthrough(log)

	r := NewRegistry()
	r.Register(StateGetBalance, IntentGetBalanceStart, balance)
	r.Register(StateGetBalance, IntentConfirmYes, balance)
	r.Register(StateIdentityVerification, IntentGetBalanceStart, identity)
	r.Register(StateConfirmDetails, IntentConfirmYes, identity)
	r.Register(StateIncreaseCCLimit, IntentIncreaseCCLimitStart, credit)
	r.Register(StateIncreaseCCLimit, IntentAmbiguousAmountStart, FulfillerFunc(credit.FulfillAmbiguous))
	r.Register(StateOutOfScope, Wildcard, NewOutOfScope(log))
	for _, state := range locale.States() {
		r.Register(state, Wildcard, locale)
	}
	r.RegisterFallback(NewPassthrough(log))
	return r
}
