package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/sim"
)

// spawnParams is the JSON shape of spawnEntity's `params` field.
type spawnParams struct {
	Box    entity.BoundingBox
	Limits entity.PerformanceLimits
}

// statusParams is the JSON shape of spawnEntity's optional `status` field
// and setEntityStatus's required `status` field.
type statusParams struct {
	Frame      string // "world" or "lane"
	Pose       *lanelet.Pose
	Lane       *lanelet.LaneletPosition
	SpeedMps   float64
	Continuous bool
}

func parseKind(s string) (entity.Kind, error) {
	switch strings.ToLower(s) {
	case "vehicle":
		return entity.KindVehicle, nil
	case "pedestrian":
		return entity.KindPedestrian, nil
	default:
		return entity.KindUnspecified, fmt.Errorf("SyntaxError: unknown entity type %q", s)
	}
}

func applyStatus(e *entity.Entity, s statusParams) error {
	switch strings.ToLower(s.Frame) {
	case "lane":
		if s.Lane == nil {
			return fmt.Errorf("SyntaxError: status.frame=lane requires status.Lane")
		}
		e.TeleportLane(*s.Lane)
	case "world", "":
		if s.Pose == nil {
			return fmt.Errorf("SyntaxError: status.frame=world requires status.Pose")
		}
		e.Teleport(*s.Pose)
	default:
		return fmt.Errorf("SyntaxError: unknown status.frame %q", s.Frame)
	}
	e.Status.SpeedMps = s.SpeedMps
	return nil
}

func lookupEntity(l *sim.Loop, name string) (*entity.Entity, error) {
	e := l.Entities.Get(name)
	if e == nil {
		return nil, fmt.Errorf("NoSuchVariableNamed: entity %q", name)
	}
	return e, nil
}

// standardMethods is the full RPC surface of §6.
func standardMethods() []Method {
	return []Method{
		{
			Name:     "initialize",
			Required: []string{"realtime_factor", "step_time"},
			Handler: func(_ context.Context, l *sim.Loop, p Params) (any, error) {
				rtf, _ := p.float("realtime_factor")
				step, _ := p.float("step_time")
				l.Clock.RealtimeFactor = rtf
				l.Clock.StepTime = step
				return map[string]any{"ok": true}, nil
			},
		},
		{
			Name:     "updateFrame",
			Required: nil,
			Handler: func(_ context.Context, l *sim.Loop, _ Params) (any, error) {
				if err := l.UpdateFrame(); err != nil {
					return nil, err
				}
				return map[string]any{"time": l.Clock.T, "ended": l.IsEnded()}, nil
			},
		},
		{
			Name:     "spawnEntity",
			Required: []string{"name", "type", "params"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				typeStr, _ := p.str("type")
				kind, err := parseKind(typeStr)
				if err != nil {
					return nil, err
				}
				var sp spawnParams
				if err := p.decode("params", &sp); err != nil {
					return nil, fmt.Errorf("SyntaxError: params: %v", err)
				}
				isEgo, _ := p.boolean("is_ego")

				res, err := l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := l.Entities.Spawn(isEgo, name, kind, sp.Box, sp.Limits)
					if err != nil {
						return nil, err
					}
					if _, hasStatus := p["status"]; hasStatus {
						var st statusParams
						if err := p.decode("status", &st); err != nil {
							return nil, fmt.Errorf("SyntaxError: status: %v", err)
						}
						if err := applyStatus(e, st); err != nil {
							return nil, err
						}
					}
					return name, nil
				})
				return res, err
			},
		},
		{
			Name:     "despawnEntity",
			Required: []string{"name"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					if _, err := lookupEntity(l, name); err != nil {
						return nil, err
					}
					l.Entities.Despawn(name)
					return map[string]any{"ok": true}, nil
				})
			},
		},
		{
			Name:     "getEntityStatus",
			Required: []string{"name"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := lookupEntity(l, name)
					if err != nil {
						return nil, err
					}
					if err := e.RequireTeleported(); err != nil {
						return nil, err
					}
					pose, _ := e.WorldPosition(l.Network)
					return map[string]any{
						"frame":      int(e.Status.Frame),
						"x":          pose.Position.X,
						"y":          pose.Position.Y,
						"z":          pose.Position.Z,
						"yaw":        pose.Yaw,
						"speed_mps":  e.Status.SpeedMps,
						"accel_mps2": e.Status.AccelMps2,
					}, nil
				})
			},
		},
		{
			Name:     "setEntityStatus",
			Required: []string{"name", "status"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				var st statusParams
				if err := p.decode("status", &st); err != nil {
					return nil, fmt.Errorf("SyntaxError: status: %v", err)
				}
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := lookupEntity(l, name)
					if err != nil {
						return nil, err
					}
					if err := applyStatus(e, st); err != nil {
						return nil, err
					}
					return map[string]any{"ok": true}, nil
				})
			},
		},
		{
			Name:     "requestAcquirePosition",
			Required: []string{"name", "lanelet_id", "s", "offset"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				targetID, _ := p.float("lanelet_id")
				targetS, _ := p.float("s")
				targetOffset, _ := p.float("offset")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := lookupEntity(l, name)
					if err != nil {
						return nil, err
					}
					if e.Status.Frame != entity.FrameLane {
						return nil, &sim.ExecutionFailedError{Msg: fmt.Sprintf("entity %q is not in lane frame", name)}
					}
					route := l.Network.Route(e.Status.LanePos.LaneletID, int32(targetID))
					if len(route) == 0 {
						return nil, &sim.ExecutionFailedError{Msg: fmt.Sprintf("no route from %d to %d", e.Status.LanePos.LaneletID, int32(targetID))}
					}
					e.Status.RouteLaneletIDs = route
					e.Status.AcquireTarget = entity.AcquirePositionState{
						Active:        true,
						TargetLanelet: int32(targetID),
						TargetS:       targetS,
						TargetOffset:  targetOffset,
					}
					return map[string]any{"route": route}, nil
				})
			},
		},
		{
			Name:     "requestLaneChange",
			Required: []string{"name"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				toID, hasID := p.float("to_lanelet_id")
				direction, _ := p.str("direction")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := lookupEntity(l, name)
					if err != nil {
						return nil, err
					}
					target := int32(toID)
					if !hasID {
						if e.Status.Frame != entity.FrameLane {
							return nil, &sim.ExecutionFailedError{Msg: "lane change requires a lane-frame entity when direction is given"}
						}
						cur := l.Network.Get(e.Status.LanePos.LaneletID)
						if cur == nil {
							return nil, &sim.ExecutionFailedError{Msg: "current lanelet not found"}
						}
						var conns []lanelet.Connection
						switch strings.ToLower(direction) {
						case "left":
							conns = cur.Left
						case "right":
							conns = cur.Right
						default:
							return nil, fmt.Errorf("SyntaxError: requestLaneChange needs to_lanelet_id or direction left/right")
						}
						if len(conns) == 0 {
							return nil, &sim.ExecutionFailedError{Msg: fmt.Sprintf("no %s neighbor of lanelet %d", direction, cur.ID)}
						}
						target = conns[0].ID
					}
					pose, ok := e.WorldPosition(l.Network)
					if !ok {
						return nil, &sim.ExecutionFailedError{Msg: fmt.Sprintf("entity %q has no position", name)}
					}
					curve, targetS, ok := l.Network.LaneChangeTrajectory(pose, target)
					if !ok {
						return nil, &sim.ExecutionFailedError{Msg: fmt.Sprintf("no lane-change trajectory to lanelet %d", target)}
					}
					e.Status.LaneChange = entity.LaneChangeState{
						Active:        true,
						Curve:         curve,
						ArcLength:     curve.ArcLength(),
						TargetLanelet: target,
						TargetS:       targetS,
					}
					return map[string]any{"target_lanelet_id": target}, nil
				})
			},
		},
		{
			Name:     "setTargetSpeed",
			Required: []string{"name", "target_speed", "continuous"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name, _ := p.str("name")
				target, _ := p.float("target_speed")
				continuous, _ := p.boolean("continuous")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e, err := lookupEntity(l, name)
					if err != nil {
						return nil, err
					}
					if continuous {
						e.Status.Target = entity.TargetSpeed{Value: target, Continuous: true}
					} else {
						e.Status.SpeedMps = target
						e.Status.Target = entity.TargetSpeed{Value: target, Continuous: false}
					}
					return map[string]any{"ok": true}, nil
				})
			},
		},
		{
			Name:     "attachDetectionSensor",
			Required: []string{"name", "spec"},
			Handler: attachSensorHandler("detection"),
		},
		{
			Name:     "attachLidarSensor",
			Required: []string{"name", "spec"},
			Handler: attachSensorHandler("lidar"),
		},
		{
			Name:     "checkCollision",
			Required: []string{"name0", "name1"},
			Handler: func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
				name0, _ := p.str("name0")
				name1, _ := p.str("name1")
				return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
					e0, err := lookupEntity(l, name0)
					if err != nil {
						return nil, err
					}
					e1, err := lookupEntity(l, name1)
					if err != nil {
						return nil, err
					}
					pose0, ok0 := e0.WorldPosition(l.Network)
					pose1, ok1 := e1.WorldPosition(l.Network)
					if !ok0 || !ok1 {
						return map[string]any{"collision": false}, nil
					}
					return map[string]any{"collision": entity.Collides(e0.Box, pose0, e1.Box, pose1)}, nil
				})
			},
		},
	}
}

func attachSensorHandler(kind string) Handler {
	return func(ctx context.Context, l *sim.Loop, p Params) (any, error) {
		name, _ := p.str("name")
		var spec map[string]any
		if err := p.decode("spec", &spec); err != nil {
			return nil, fmt.Errorf("SyntaxError: spec: %v", err)
		}
		return l.Enqueue(ctx, func(l *sim.Loop) (any, error) {
			e, err := lookupEntity(l, name)
			if err != nil {
				return nil, err
			}
			e.Sensors = append(e.Sensors, entity.SensorAttachment{Kind: kind, Spec: spec})
			return map[string]any{"ok": true}, nil
		})
	}
}
