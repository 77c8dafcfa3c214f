package fulfillment

// Dialog states of the reference conversation graph.
const (
	StateGetBalance           = "get_balance"
	StateIdentityVerification = "identity_verification"
	StateConfirmDetails       = "confirm_details"
	StateIncreaseCCLimit      = "increase_cc_limit"
	StateOutOfScope           = "outofscope"
)

// Recognized intents routed by the reference table.
const (
	IntentGetBalanceStart      = "get_balance_start"
	IntentConfirmYes           = "cs_yes"
	IntentIncreaseCCLimitStart = "increase_cc_limit_start"
	IntentAmbiguousAmountStart = "ambiguous_amount_start"
)

// Canonical slot names shared between fulfillers.
const (
	SlotBalance         = "_BALANCE_"
	SlotInitialIntent   = "_INITIAL_INTENT_"
	SlotPersonName      = "_PERSON_NAME_"
	SlotPhoneNumber     = "_PHONE_NUMBER_"
	SlotAmbiguousAmount = "_AMBIGUOUS_AMOUNT_"
	SlotAnnualIncome    = "_ANNUAL_INCOME_"
	SlotEstimateAmount  = "_ESTIMATE_AMOUNT_"
	SlotDesiredLimit    = "_DESIRED_LIMIT_"
	SlotAccountType     = "_ACC_TYPE_"
)

// session_info keys used for the cross-turn authentication flag.
const (
	SessionAuthenticated = "is_authenticated"
	SessionUserID        = "user_id"
)

// initialIntentBalance is the value stashed in _INITIAL_INTENT_ so the
// requested intent survives the identity-verification detour.
const initialIntentBalance = "get balance"
