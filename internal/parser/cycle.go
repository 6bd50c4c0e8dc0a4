package parser

import (
	"slices"
	"strings"

	"github.com/roach88/bulletml/internal/expr"
	"github.com/roach88/bulletml/internal/ir"
)

// callGraph maps an action label to the action labels it calls without
// first waiting.
type callGraph map[string][]string

// zeroWaitCycles reports action recursion that cannot yield: every action on
// the cycle calls the next one and none of them contains a wait. A runner
// executing such a cycle spins until its step quota is exhausted.
//
// Recursion through a wait is legal and common, so only wait-free cycles
// are reported.
func zeroWaitCycles(table *ir.Table) []ValidationError {
	graph := buildCallGraph(table)
	var errs []ValidationError
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		path := cyclePath(scc, graph)
		def, _ := table.Action(path[0])
		errs = append(errs, finding(ErrZeroWaitCycle, def.Pos, path[0],
			"action recursion without wait: %s", strings.Join(path, " -> ")))
	}
	return errs
}

func buildCallGraph(table *ir.Table) callGraph {
	graph := make(callGraph)
	for _, def := range table.Definitions() {
		a, ok := def.(*ir.ActionDef)
		if !ok {
			continue
		}
		var (
			calls []string
			waits bool
		)
		ir.Inspect(a, func(n any) bool {
			switch c := n.(type) {
			case *ir.Fire:
				// Bullet actions run on a different runner.
				return false
			case *ir.Wait:
				if !isZero(c.Frames) {
					waits = true
				}
			case *ir.Ref:
				if c.Kind == ir.KindAction {
					if _, defined := table.Action(c.Label); defined {
						calls = append(calls, c.Label)
					}
				}
			}
			return true
		})
		if waits {
			calls = nil
		}
		graph[a.Label] = calls
	}
	return graph
}

// isZero reports whether e is a constant that evaluates to a non-positive
// wait.
func isZero(e expr.Expr) bool {
	if !expr.IsConst(e) {
		return false
	}
	v, err := expr.Eval(e, expr.Scope{})
	return err == nil && v < 1
}

// tarjanSCC finds strongly connected components. Nodes are visited in
// sorted order so the output is deterministic.
func tarjanSCC(graph callGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}
	return sccs
}

// cyclePath walks the SCC from its first member back to itself.
func cyclePath(scc []string, graph callGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	for current := start; ; {
		next := ""
		for _, w := range graph[current] {
			if members[w] && (w == start || !visited[w]) {
				next = w
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
