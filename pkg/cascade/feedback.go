package cascade

// DetectFeedbackLoops enumerates all simple cycles of the dependency graph
// (Johnson's algorithm) and classifies each one. A loop is reinforcing when
// every edge weight on the cycle exceeds 0.5, otherwise dampening. Strength
// is the product of the cycle's edge weights; cycle time is the sum of its
// effective delays. Enumeration stops at the configured loop limit.
func (s *Simulator) DetectFeedbackLoops() []FeedbackLoop {
	cycles := enumerateSimpleCycles(s.graph, s.opts.FeedbackLoopLimit)
	loops := make([]FeedbackLoop, 0, len(cycles))
	for _, cycle := range cycles {
		loops = append(loops, s.classifyLoop(cycle))
	}
	return loops
}

// classifyLoop computes strength, cycle time and type for one cycle.
func (s *Simulator) classifyLoop(ids []string) FeedbackLoop {
	strength := 1.0
	cycleTime := 0.0
	reinforcing := true

	for i, from := range ids {
		to := ids[(i+1)%len(ids)]
		edge, ok := s.graph.firstEdge(from, to)
		if !ok {
			continue
		}
		strength *= edge.Weight
		delay := edge.Delay
		if delay == 0 {
			delay = s.opts.DomainDelays[edge.Domain]
		}
		cycleTime += delay
		if edge.Weight <= 0.5 {
			reinforcing = false
		}
	}

	loopType := LoopReinforcing
	if !reinforcing {
		loopType = LoopDampening
	}
	return FeedbackLoop{
		Type:      loopType,
		Nodes:     ids,
		Strength:  strength,
		CycleTime: cycleTime,
	}
}

// firstEdge returns the first edge from source to target in input order.
func (g *Graph) firstEdge(source, target string) (Edge, bool) {
	for _, e := range g.out[source] {
		if e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// cycleEnumerator holds the state of Johnson's simple-cycle enumeration.
// Each cycle is reported exactly once, rooted at its smallest node index.
type cycleEnumerator struct {
	adj       [][]int
	blocked   []bool
	blockedOn [][]int
	stack     []int
	cycles    [][]int
	limit     int
	start     int
	scc       map[int]bool
}

// enumerateSimpleCycles returns all simple cycles as node ID sequences, up
// to the given limit. Parallel edges are collapsed for enumeration; edge
// attributes are resolved later against the first matching edge.
func enumerateSimpleCycles(g *Graph, limit int) [][]string {
	n := g.NodeCount()
	if n == 0 || limit <= 0 {
		return nil
	}

	ids := make([]string, n)
	index := make(map[string]int, n)
	for i, node := range g.Nodes() {
		ids[i] = node.ID
		index[node.ID] = i
	}

	adj := make([][]int, n)
	seen := make(map[[2]int]bool)
	for _, e := range g.Edges() {
		u, v := index[e.Source], index[e.Target]
		key := [2]int{u, v}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[u] = append(adj[u], v)
	}

	enum := &cycleEnumerator{
		adj:       adj,
		blocked:   make([]bool, n),
		blockedOn: make([][]int, n),
		limit:     limit,
	}

	for s := 0; s < n && len(enum.cycles) < limit; s++ {
		comp := sccContaining(adj, s)
		if comp == nil {
			continue
		}
		enum.scc = comp
		enum.start = s
		for v := range comp {
			enum.blocked[v] = false
			enum.blockedOn[v] = nil
		}
		enum.circuit(s)
	}

	out := make([][]string, 0, len(enum.cycles))
	for _, cyc := range enum.cycles {
		names := make([]string, len(cyc))
		for i, v := range cyc {
			names[i] = ids[v]
		}
		out = append(out, names)
	}
	return out
}

// circuit explores paths from the current stack top looking for a return to
// the start vertex. Returns true if any cycle was closed below v.
func (e *cycleEnumerator) circuit(v int) bool {
	if len(e.cycles) >= e.limit {
		return false
	}

	found := false
	e.stack = append(e.stack, v)
	e.blocked[v] = true

	for _, w := range e.adj[v] {
		if w < e.start || !e.scc[w] {
			continue
		}
		if w == e.start {
			cycle := make([]int, len(e.stack))
			copy(cycle, e.stack)
			e.cycles = append(e.cycles, cycle)
			found = true
			if len(e.cycles) >= e.limit {
				break
			}
		} else if !e.blocked[w] {
			if e.circuit(w) {
				found = true
			}
		}
	}

	if found {
		e.unblock(v)
	} else {
		// No cycle through v yet: v stays blocked until some blocker of
		// its successors clears.
		for _, w := range e.adj[v] {
			if w < e.start || !e.scc[w] {
				continue
			}
			e.blockedOn[w] = appendMissing(e.blockedOn[w], v)
		}
	}

	e.stack = e.stack[:len(e.stack)-1]
	return found
}

// unblock recursively clears the blocked flag of v and everything blocked
// on it.
func (e *cycleEnumerator) unblock(v int) {
	e.blocked[v] = false
	pending := e.blockedOn[v]
	e.blockedOn[v] = nil
	for _, w := range pending {
		if e.blocked[w] {
			e.unblock(w)
		}
	}
}

func appendMissing(list []int, v int) []int {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

// sccContaining runs Tarjan's algorithm on the subgraph induced by indices
// >= start and returns the strongly connected component containing start,
// or nil when that component cannot carry a cycle (a singleton without a
// self-loop).
func sccContaining(adj [][]int, start int) map[int]bool {
	n := len(adj)
	index := make([]int, n)
	for i := range index {
		index[i] = -1
	}
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	var stack []int
	counter := 0
	var result map[int]bool

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range adj[v] {
			if w < start {
				continue
			}
			if index[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			comp := make(map[int]bool)
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp[w] = true
				if w == v {
					break
				}
			}
			if comp[start] {
				result = comp
			}
		}
	}
	strongconnect(start)

	if result == nil {
		return nil
	}
	if len(result) > 1 {
		return result
	}
	for _, w := range adj[start] {
		if w == start {
			return result
		}
	}
	return nil
}
