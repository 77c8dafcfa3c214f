package fulfillment

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nlufoundry/fulfiller/internal/domain"
	"github.com/nlufoundry/fulfiller/internal/observability/telemetry"
)

// Wildcard matches any intent within a state, or, as the fallback
// registration, any state at all.
const Wildcard = "*"

// Fulfiller transforms one dialog turn in place given its current
// state and intent. Exactly one fulfiller runs per turn; fulfillers are
// never composed or chained.
type Fulfiller interface {
	Fulfill(p *domain.Payload) error
}

// FulfillerFunc adapts a plain function to the Fulfiller interface.
type FulfillerFunc func(p *domain.Payload) error

func (f FulfillerFunc) Fulfill(p *domain.Payload) error { return f(p) }

// NotFulfilledError signals a (state, intent) combination with no
// registered fulfiller. The transport maps it to 501 Not Implemented.
type NotFulfilledError struct {
	State  string
	Intent string
}

func (e *NotFulfilledError) Error() string {
	return fmt.Sprintf("state: [%s] + intent: [%s] combination does not have a fulfiller", e.State, e.Intent)
}

// Ignore does nothing. Useful while wiring new states into the table.
var Ignore = FulfillerFunc(func(*domain.Payload) error { return nil })

// Reject refuses every turn. Registering it as the fallback makes
// unrouted combinations surface as NotFulfilledError instead of being
// passed through.
var Reject = FulfillerFunc(func(p *domain.Payload) error {
	return &NotFulfilledError{State: p.State(), Intent: p.Intent()}
})

// Registry is the two-level routing table: state -> intent -> Fulfiller,
// plus a per-state wildcard intent entry and one global fallback. The
// table is the sole configuration surface of the dispatcher; new states
// and intents are added by registration only.
type Registry struct {
	states   map[string]map[string]Fulfiller
	fallback Fulfiller
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[string]map[string]Fulfiller)}
}

func (r *Registry) Register(state, intent string, f Fulfiller) *Registry {
	intents, ok := r.states[state]
	if !ok {
		intents = make(map[string]Fulfiller)
		r.states[state] = intents
	}
	intents[intent] = f
	return r
}

// RegisterFallback sets the global wildcard fulfiller.
func (r *Registry) RegisterFallback(f Fulfiller) *Registry {
	r.fallback = f
	return r
}

// Lookup resolves a (state, intent) pair with first-match-wins
// precedence: exact pair, then the state's wildcard intent, then the
// global fallback. The returned route names the matched level for
// logging; a nil Fulfiller means the combination is unroutable.
func (r *Registry) Lookup(state, intent string) (Fulfiller, string) {
	if intents, ok := r.states[state]; ok {
		if f, ok := intents[intent]; ok {
			return f, fmt.Sprintf("[%s][%s]", state, intent)
		}
		if f, ok := intents[Wildcard]; ok {
			return f, fmt.Sprintf("[%s][%s]", state, Wildcard)
		}
	}
	if r.fallback != nil {
		return r.fallback, "[" + Wildcard + "]"
	}
	return nil, ""
}

// Dispatcher selects and invokes exactly one fulfiller per dialog turn.
type Dispatcher struct {
	registry *Registry
	log      *zap.Logger
}

func NewDispatcher(registry *Registry, log *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Fulfill routes the payload through the table and runs the selected
// fulfiller.
func (d *Dispatcher) Fulfill(p *domain.Payload) error {
	d.preprocess(p)

	state := p.State()
	intent := p.Intent()

	f, route := d.registry.Lookup(state, intent)
	if f == nil {
		telemetry.FulfillmentsTotal.WithLabelValues(state, intent, "unrouted").Inc()
		return &NotFulfilledError{State: state, Intent: intent}
	}

	d.log.Info("Calling fulfiller",
		zap.String("state", state),
		zap.String("intent", intent),
		zap.String("route", route),
	)

	start := time.Now()
	err := f.Fulfill(p)
	telemetry.FulfillmentLatency.Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	telemetry.FulfillmentsTotal.WithLabelValues(state, intent, status).Inc()

	return err
}

// preprocess is an extension point; the engine performs no validation
// before dispatch.
func (d *Dispatcher) preprocess(p *domain.Payload) {}
