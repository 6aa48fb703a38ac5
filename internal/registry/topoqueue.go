package registry

// TopoQueue is a reusable incremental topological sorter, modeled on
// Python's graphlib.TopologicalSorter: nodes are added with their
// predecessors, Prepare locks the graph and reports any cycle, Ready
// returns nodes with no unresolved predecessor, and Done marks nodes
// finished so their dependents may become ready. The same shape drives
// both the registry's def-level construction and the runtime's Phase 1
// ready-queue scheduling.
type TopoQueue[T comparable] struct {
	predecessors map[T]map[T]struct{}
	dependents   map[T][]T
	done         map[T]struct{}
	prepared     bool
}

// NewTopoQueue returns an empty queue.
func NewTopoQueue[T comparable]() *TopoQueue[T] {
	return &TopoQueue[T]{
		predecessors: make(map[T]map[T]struct{}),
		dependents:   make(map[T][]T),
		done:         make(map[T]struct{}),
	}
}

// Add registers node with its predecessors (nodes that must be Done
// before node can become Ready). Safe to call multiple times for the
// same node; predecessor sets accumulate. Must be called before
// Prepare.
func (q *TopoQueue[T]) Add(node T, preds ...T) {
	if q.predecessors[node] == nil {
		q.predecessors[node] = make(map[T]struct{})
	}
	for _, p := range preds {
		if _, ok := q.predecessors[node][p]; !ok {
			q.predecessors[node][p] = struct{}{}
			q.dependents[p] = append(q.dependents[p], node)
		}
		if q.predecessors[p] == nil {
			q.predecessors[p] = make(map[T]struct{})
		}
	}
}

// Prepare marks the graph as ready for consumption via Ready/Done and
// reports a cycle, if one exists, as the closed path that contains it.
// It does not stop later Add calls from changing the graph.
func (q *TopoQueue[T]) Prepare() ([]T, bool) {
	q.prepared = true
	if cycle, ok := q.findCycle(); ok {
		return cycle, true
	}
	return nil, false
}

// Ready returns every node whose predecessors are all Done and which
// has not itself been marked Done. A node returned by an earlier Ready
// call is returned again until it is marked Done.
func (q *TopoQueue[T]) Ready() []T {
	var ready []T
	for node, preds := range q.predecessors {
		if _, already := q.done[node]; already {
			continue
		}
		if q.allDone(preds) {
			ready = append(ready, node)
		}
	}
	return ready
}

func (q *TopoQueue[T]) allDone(preds map[T]struct{}) bool {
	for p := range preds {
		if _, ok := q.done[p]; !ok {
			return false
		}
	}
	return true
}

// Done marks nodes as finished, potentially unblocking their
// dependents' next Ready call.
func (q *TopoQueue[T]) Done(nodes ...T) {
	for _, n := range nodes {
		q.done[n] = struct{}{}
	}
}

// Active reports whether any node remains that has not yet been Done.
func (q *TopoQueue[T]) Active() bool {
	for node := range q.predecessors {
		if _, ok := q.done[node]; !ok {
			return true
		}
	}
	return false
}

// findCycle runs DFS over the predecessor graph (walking node -> its
// predecessors) and returns the first cycle found as a closed path
// (e.g. [x, y, z, x]), matching the "x -> y -> z -> x" reporting shape.
func (q *TopoQueue[T]) findCycle() ([]T, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[T]int, len(q.predecessors))
	var path []T

	var visit func(T) ([]T, bool)
	visit = func(node T) ([]T, bool) {
		color[node] = gray
		path = append(path, node)
		for pred := range q.predecessors[node] {
			switch color[pred] {
			case gray:
				// Found the back edge: slice path from pred's first
				// occurrence, close it by re-appending pred.
				cut := indexOf(path, pred)
				cycle := append([]T{}, path[cut:]...)
				cycle = append(cycle, pred)
				return cycle, true
			case white:
				if cyc, found := visit(pred); found {
					return cyc, true
				}
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return nil, false
	}

	for node := range q.predecessors {
		if color[node] == white {
			if cyc, found := visit(node); found {
				return cyc, true
			}
		}
	}
	return nil, false
}

func indexOf[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
