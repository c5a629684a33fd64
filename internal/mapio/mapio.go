// Package mapio is the injected lanelet2/OSM map-provider collaborator
// spec.md §6 assumes external to the core. It decodes a pre-processed
// JSON description of the lanelet graph (id, bounds, edges, regulatory
// elements) into lanelet.RawLanelet records, standing in for the real
// lanelet2 OSM loader the core never parses itself, plus the traffic
// light phase configuration the map's regulatory elements reference.
package mapio

import (
	"encoding/json"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/trafficlight"
)

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p pointJSON) toPoint() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y, Z: p.Z}
}

type connectionJSON struct {
	ID   int32  `json:"id"`
	Turn string `json:"turn"`
}

func (c connectionJSON) toConnection() lanelet.Connection {
	return lanelet.Connection{ID: c.ID, Turn: parseTurn(c.Turn)}
}

type regulatoryElementJSON struct {
	Type     string      `json:"type"`
	StopLine []pointJSON `json:"stop_line"`
	RefID    string      `json:"ref_id"`
}

func (r regulatoryElementJSON) toRegulatoryElement() lanelet.RegulatoryElement {
	stopLine := make([]geometry.Point, len(r.StopLine))
	for i, p := range r.StopLine {
		stopLine[i] = p.toPoint()
	}
	var t lanelet.RegulatoryElementType
	switch r.Type {
	case "stop_sign":
		t = lanelet.RegulatoryStopSign
	case "right_of_way":
		t = lanelet.RegulatoryRightOfWay
	case "traffic_light":
		t = lanelet.RegulatoryTrafficLight
	}
	return lanelet.RegulatoryElement{Type: t, StopLine: stopLine, RefID: r.RefID}
}

type laneletJSON struct {
	ID                 int32                   `json:"id"`
	Turn               string                  `json:"turn"`
	SpeedMax           float64                 `json:"speed_max"`
	LeftBound          []pointJSON             `json:"left_bound"`
	RightBound         []pointJSON             `json:"right_bound"`
	Centerline         []pointJSON             `json:"centerline"`
	Following          []connectionJSON        `json:"following"`
	Previous           []connectionJSON        `json:"previous"`
	Left               []connectionJSON        `json:"left"`
	Right              []connectionJSON        `json:"right"`
	Conflicting        []connectionJSON        `json:"conflicting"`
	RegulatoryElements []regulatoryElementJSON `json:"regulatory_elements"`
}

func parseTurn(s string) lanelet.TurnDirection {
	switch s {
	case "straight":
		return lanelet.TurnStraight
	case "left":
		return lanelet.TurnLeft
	case "right":
		return lanelet.TurnRight
	default:
		return lanelet.TurnUnspecified
	}
}

func points(ps []pointJSON) []geometry.Point {
	out := make([]geometry.Point, len(ps))
	for i, p := range ps {
		out[i] = p.toPoint()
	}
	return out
}

func connections(cs []connectionJSON) []lanelet.Connection {
	out := make([]lanelet.Connection, len(cs))
	for i, c := range cs {
		out[i] = c.toConnection()
	}
	return out
}

func (l laneletJSON) toRaw() lanelet.RawLanelet {
	elems := make([]lanelet.RegulatoryElement, len(l.RegulatoryElements))
	for i, e := range l.RegulatoryElements {
		elems[i] = e.toRegulatoryElement()
	}
	return lanelet.RawLanelet{
		ID:                 l.ID,
		Turn:               parseTurn(l.Turn),
		SpeedMax:           l.SpeedMax,
		LeftBound:          points(l.LeftBound),
		RightBound:         points(l.RightBound),
		Centerline:         points(l.Centerline),
		FollowingIDs:       connections(l.Following),
		PreviousIDs:        connections(l.Previous),
		LeftIDs:            connections(l.Left),
		RightIDs:           connections(l.Right),
		ConflictingIDs:     connections(l.Conflicting),
		RegulatoryElements: elems,
	}
}

type phaseStepJSON struct {
	State    string  `json:"state"`
	Duration float64 `json:"duration"`
}

type trafficLightJSON struct {
	ID    string          `json:"id"`
	Color []phaseStepJSON `json:"color"`
	Arrow []phaseStepJSON `json:"arrow"`
}

func toSteps(steps []phaseStepJSON) []trafficlight.PhaseStep {
	out := make([]trafficlight.PhaseStep, len(steps))
	for i, s := range steps {
		out[i] = trafficlight.PhaseStep{State: trafficlight.PhaseState(s.State), Duration: s.Duration}
	}
	return out
}

type mapFile struct {
	Lanelets      []laneletJSON      `json:"lanelets"`
	TrafficLights []trafficLightJSON `json:"traffic_lights"`
}

// Document is a decoded map file: the lanelet graph plus any configured
// traffic lights.
type Document struct {
	raw    []lanelet.RawLanelet
	Lights []*trafficlight.Light
}

// Lanelets implements lanelet.Provider.
func (d *Document) Lanelets() ([]lanelet.RawLanelet, error) {
	return d.raw, nil
}

// Load reads and decodes a map file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mapio: %w", err)
	}
	var mf mapFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("mapio: %w", err)
	}
	doc := &Document{raw: make([]lanelet.RawLanelet, len(mf.Lanelets))}
	for i, l := range mf.Lanelets {
		doc.raw[i] = l.toRaw()
	}
	for _, tl := range mf.TrafficLights {
		doc.Lights = append(doc.Lights, trafficlight.New(tl.ID, toSteps(tl.Color), toSteps(tl.Arrow)))
	}
	return doc, nil
}
