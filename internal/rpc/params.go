// Package rpc implements the RPC surface of §6/§4.7: request validation,
// dispatch onto a sim.Loop, and the mux-routed transport plus websocket
// telemetry that carries it.
package rpc

import "encoding/json"

// Params is a decoded JSON request body: field name to raw value. Each
// method's Handler pulls out the fields it needs with the helpers below.
type Params map[string]any

// missingFields returns the subset of required not present in p, in the
// order given — used to build the "missing fields: …" structured error
// (§4.7: "the core validates required fields before dispatch").
func (p Params) missingFields(required []string) []string {
	var missing []string
	for _, f := range required {
		if _, ok := p[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func (p Params) str(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

func (p Params) float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (p Params) boolean(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// decode re-marshals p[key] and unmarshals it into target, for the
// structured fields (params, status, spec, …) that carry a nested object
// rather than a scalar.
func (p Params) decode(key string, target any) error {
	raw, err := json.Marshal(p[key])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
