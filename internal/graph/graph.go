// Package graph implements the directed dependency graph of the
// recalculation engine: forward adjacency sets with a reverse index,
// reachability, induced subgraphs, strongly connected components and
// topological ordering. All traversals use explicit stacks; dependency
// chains of tens of thousands of nodes are a normal workload.
package graph

type Directed[K comparable] struct {
	nodes []K
	index map[K]int
	out   map[K]map[K]struct{}
	in    map[K]map[K]struct{}
}

func New[K comparable]() *Directed[K] {
	return &Directed[K]{
		index: make(map[K]int),
		out:   make(map[K]map[K]struct{}),
		in:    make(map[K]map[K]struct{}),
	}
}

func (g *Directed[K]) Has(node K) bool {
	_, ok := g.index[node]
	return ok
}

func (g *Directed[K]) Add(node K) {
	if g.Has(node) {
		return
	}
	g.index[node] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.out[node] = make(map[K]struct{})
	g.in[node] = make(map[K]struct{})
}

// Nodes returns every node in insertion order. The caller may mutate the
// returned slice.
func (g *Directed[K]) Nodes() []K {
	list := make([]K, len(g.nodes))
	copy(list, g.nodes)
	return list
}

func (g *Directed[K]) Len() int {
	return len(g.nodes)
}

// Out lists the targets of node's outgoing edges in insertion order.
func (g *Directed[K]) Out(node K) []K {
	return g.ordered(g.out[node])
}

// In lists the sources of node's incoming edges in insertion order.
func (g *Directed[K]) In(node K) []K {
	return g.ordered(g.in[node])
}

func (g *Directed[K]) ordered(set map[K]struct{}) []K {
	if len(set) == 0 {
		return nil
	}
	list := make([]K, 0, len(set))
	for _, n := range g.nodes {
		if _, ok := set[n]; ok {
			list = append(list, n)
		}
	}
	return list
}

func (g *Directed[K]) HasEdge(from, to K) bool {
	_, ok := g.out[from][to]
	return ok
}

func (g *Directed[K]) AddEdge(from, to K) {
	g.Add(from)
	g.Add(to)
	g.out[from][to] = struct{}{}
	g.in[to][from] = struct{}{}
}

// SetEdges replaces every outgoing edge of from with edges to the given
// targets. Targets that become isolated, edgeless nodes are dropped.
func (g *Directed[K]) SetEdges(from K, targets []K) {
	g.Add(from)
	old := g.out[from]
	g.out[from] = make(map[K]struct{})
	for _, to := range targets {
		g.Add(to)
		g.out[from][to] = struct{}{}
		g.in[to][from] = struct{}{}
	}
	for to := range old {
		if _, keep := g.out[from][to]; !keep {
			delete(g.in[to], from)
			g.prune(to)
		}
	}
}

// RemoveSource drops every outgoing edge of node. The node itself stays
// in the graph for as long as anything still points at it.
func (g *Directed[K]) RemoveSource(node K) {
	if !g.Has(node) {
		return
	}
	g.SetEdges(node, nil)
	g.prune(node)
}

func (g *Directed[K]) prune(node K) {
	if len(g.out[node]) > 0 || len(g.in[node]) > 0 {
		return
	}
	at, ok := g.index[node]
	if !ok {
		return
	}
	g.nodes = append(g.nodes[:at], g.nodes[at+1:]...)
	for i := at; i < len(g.nodes); i++ {
		g.index[g.nodes[i]] = i
	}
	delete(g.index, node)
	delete(g.out, node)
	delete(g.in, node)
}

// Transpose returns a new graph with every edge reversed.
func (g *Directed[K]) Transpose() *Directed[K] {
	t := New[K]()
	for _, n := range g.nodes {
		t.Add(n)
	}
	for _, from := range g.nodes {
		for to := range g.out[from] {
			t.AddEdge(to, from)
		}
	}
	return t
}

// ReachableReverse walks the reverse index from the seeds and collects
// every node that can reach a seed through forward edges, seeds
// included. Seeds that are not nodes of the graph are skipped and do
// not appear in the result. Traversal is an iterative DFS.
func (g *Directed[K]) ReachableReverse(seeds []K) map[K]struct{} {
	reached := make(map[K]struct{})
	var stack []K
	for _, s := range seeds {
		if !g.Has(s) {
			continue
		}
		if _, ok := reached[s]; ok {
			continue
		}
		reached[s] = struct{}{}
		stack = append(stack, s)
		for len(stack) > 0 {
			head := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for next := range g.in[head] {
				if _, ok := reached[next]; !ok {
					reached[next] = struct{}{}
					stack = append(stack, next)
				}
			}
		}
	}
	return reached
}

// Induced builds the subgraph spanned by keep: its nodes, and every edge
// whose both ends are kept.
func (g *Directed[K]) Induced(keep map[K]struct{}) *Directed[K] {
	sub := New[K]()
	for _, n := range g.nodes {
		if _, ok := keep[n]; ok {
			sub.Add(n)
		}
	}
	for _, from := range sub.nodes {
		for to := range g.out[from] {
			if _, ok := keep[to]; ok {
				sub.AddEdge(from, to)
			}
		}
	}
	return sub
}

// StronglyConnected computes the strongly connected components of the
// graph with an iterative Tarjan, explicit work stack included.
func (g *Directed[K]) StronglyConnected() [][]K {
	type frame struct {
		node  K
		enter bool
	}
	var (
		components [][]K
		stack      []K
		lowlink    = make(map[K]int)
		idxs       = make(map[K][2]int)
		work       []frame
	)
	for _, start := range g.nodes {
		if _, seen := lowlink[start]; seen {
			continue
		}
		work = append(work[:0], frame{node: start, enter: true})
		for len(work) > 0 {
			f := work[len(work)-1]
			work = work[:len(work)-1]
			k := f.node
			if f.enter {
				if _, seen := lowlink[k]; seen {
					continue
				}
				idx := len(lowlink)
				idxs[k] = [2]int{idx, len(stack)}
				lowlink[k] = idx
				stack = append(stack, k)
				work = append(work, frame{node: k})
				for next := range g.out[k] {
					if _, seen := lowlink[next]; !seen {
						work = append(work, frame{node: next, enter: true})
					}
				}
				continue
			}
			for next := range g.out[k] {
				if lowlink[next] < lowlink[k] {
					lowlink[k] = lowlink[next]
				}
			}
			idx, pos := idxs[k][0], idxs[k][1]
			if lowlink[k] == idx {
				component := make([]K, len(stack)-pos)
				copy(component, stack[pos:])
				stack = stack[:pos]
				components = append(components, component)
				for _, n := range component {
					lowlink[n] = g.Len()
				}
			}
		}
	}
	return components
}

// Topological orders the nodes of an acyclic graph so that every node
// appears before the nodes that read it, i.e. before the sources of its
// incoming edges. Iterative DFS over the reverse index, postorder
// reversed.
func (g *Directed[K]) Topological() []K {
	type frame struct {
		node  K
		enter bool
	}
	var (
		visited = make(map[K]struct{})
		result  []K
		work    []frame
	)
	for _, start := range g.nodes {
		if _, ok := visited[start]; ok {
			continue
		}
		work = append(work[:0], frame{node: start, enter: true})
		for len(work) > 0 {
			f := work[len(work)-1]
			work = work[:len(work)-1]
			if f.enter {
				if _, ok := visited[f.node]; ok {
					continue
				}
				visited[f.node] = struct{}{}
				work = append(work, frame{node: f.node})
				for next := range g.in[f.node] {
					if _, ok := visited[next]; !ok {
						work = append(work, frame{node: next, enter: true})
					}
				}
			} else {
				result = append(result, f.node)
			}
		}
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
