package rpc

import (
	"context"
	"time"

	"github.com/openscenario-sim/oscsim/sim"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "rpc")

// defaultDeadline is the response deadline a method gets when the caller
// does not override it (§5 "Cancellation & timeouts": default 1s).
const defaultDeadline = time.Second

// Handler implements one RPC method's effect against the loop, returning
// its success result or an error (wrapped into the `{message}` envelope
// by the Dispatcher).
type Handler func(ctx context.Context, l *sim.Loop, p Params) (any, error)

// Method is one entry of the RPC surface (§6): a name, its required
// fields, and the handler to run once they validate.
type Method struct {
	Name     string
	Required []string
	Handler  Handler
}

// Dispatcher validates and routes RPC calls onto a sim.Loop (§4.7 step 1,
// §6). It never lets a method error crash the process — every Handler
// error becomes a structured {message} response (§7: "RPC-method errors
// never crash the simulator").
type Dispatcher struct {
	loop    *sim.Loop
	methods map[string]Method
}

// NewDispatcher builds a Dispatcher serving the standard RPC surface
// (§6) against loop.
func NewDispatcher(loop *sim.Loop) *Dispatcher {
	d := &Dispatcher{loop: loop, methods: make(map[string]Method)}
	for _, m := range standardMethods() {
		d.methods[m.Name] = m
	}
	return d
}

// Call validates required fields, then invokes the named method's
// Handler under defaultDeadline. The bool return reports whether name is
// a recognized method at all (a 404 at the transport layer).
func (d *Dispatcher) Call(name string, p Params) (any, *Error, bool) {
	m, ok := d.methods[name]
	if !ok {
		return nil, nil, false
	}
	if missing := p.missingFields(m.Required); len(missing) > 0 {
		return nil, missingFieldsError(missing), true
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDeadline)
	defer cancel()

	v, err := m.Handler(ctx, d.loop, p)
	if err != nil {
		log.Warnf("rpc %s failed: %v", name, err)
		return nil, asRPCError(err), true
	}
	return v, nil, true
}
