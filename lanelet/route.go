package lanelet

import "github.com/openscenario-sim/oscsim/internal/container"

// Route finds the shortest path (by lanelet length, under vehicle rules)
// from `from` to `to`, inclusive of both endpoints. Returns nil if
// unreachable.
func (n *Network) Route(from, to int32) []int32 {
	if from == to {
		return []int32{from}
	}
	if n.Get(from) == nil || n.Get(to) == nil {
		return nil
	}

	dist := map[int32]float64{from: 0}
	prev := map[int32]int32{}
	visited := map[int32]bool{}

	q := container.NewPriorityQueue[int32]()
	q.Push(from, 0)

	for q.Len() > 0 {
		cur, d := q.Pop()
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == to {
			return reconstructPath(prev, from, to)
		}
		l := n.Get(cur)
		if l == nil {
			continue
		}
		for _, conn := range l.Following {
			next := n.Get(conn.ID)
			if next == nil || visited[conn.ID] {
				continue
			}
			nd := d + next.Length()
			if existing, ok := dist[conn.ID]; !ok || nd < existing {
				dist[conn.ID] = nd
				prev[conn.ID] = cur
				q.Push(conn.ID, nd)
			}
		}
	}
	return nil
}

func reconstructPath(prev map[int32]int32, from, to int32) []int32 {
	path := []int32{to}
	cur := to
	for cur != from {
		p, ok := prev[cur]
		if !ok {
			return nil
		}
		path = append([]int32{p}, path...)
		cur = p
	}
	return path
}

// LongitudinalDistance sums the full lengths of intermediate lanelets and
// the partial lengths of the endpoints along the shortest path between two
// lanelet positions (§4.1 "route_sum_identity").
func (n *Network) LongitudinalDistance(from, to LaneletPosition) (float64, bool) {
	if from.LaneletID == to.LaneletID {
		if from.S > to.S {
			return 0, false
		}
		return to.S - from.S, true
	}
	path := n.Route(from.LaneletID, to.LaneletID)
	if path == nil {
		return 0, false
	}
	fromLanelet := n.Get(from.LaneletID)
	total := (fromLanelet.Length() - from.S) + to.S
	for _, id := range path[1 : len(path)-1] {
		total += n.Get(id).Length()
	}
	return total, true
}
