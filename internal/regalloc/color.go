package regalloc

import (
	"github.com/samber/lo"

	"github.com/cc-core/cc/internal/asmir"
)

type colorResult struct {
	color   map[node]asmir.PhysReg
	spilled map[node]bool
}

// coalesce repeatedly merges move-related node pairs that pass
// Briggs's conservative test: the merged node is safe to simplify (or
// color) as long as it has fewer than K neighbors of degree >= K,
// since every low-degree neighbor is guaranteed a color regardless of
// what the merged node takes. A move into (or out of) a precolored
// register always keeps the precolored node as the surviving
// representative.
func coalesce(g *igraph, K int) (aliasOf map[node]node, hasAlias map[node]bool) {
	aliasOf = map[node]node{}
	hasAlias = map[node]bool{}
	find := func(n node) node {
		for hasAlias[n] {
			n = aliasOf[n]
		}
		return n
	}

	for {
		merged := false
		for a, partners := range g.moves {
			ra := find(a)
			for b := range partners {
				rb := find(b)
				if ra == rb {
					continue
				}
				if g.adj[ra] != nil && g.adj[ra][rb] {
					continue // already forced apart
				}
				if g.precolored[ra] && g.precolored[rb] {
					continue // two distinct physical registers never coalesce
				}

				target, src := rb, ra
				if g.precolored[ra] {
					target, src = ra, rb
				}

				if g.precolored[target] {
					// George's test: safe whenever every neighbor of the
					// non-precolored side already interferes with the
					// register we'd be merging it into, or is low-degree
					// enough to color regardless.
					safe := true
					for n := range g.adj[src] {
						if n == target || g.degree[n] < K || g.adj[target][n] {
							continue
						}
						safe = false
						break
					}
					if !safe {
						continue
					}
				} else {
					neighbors := map[node]bool{}
					for n := range g.adj[ra] {
						neighbors[n] = true
					}
					for n := range g.adj[rb] {
						neighbors[n] = true
					}
					highDeg := 0
					for n := range neighbors {
						if g.degree[n] >= K {
							highDeg++
						}
					}
					if highDeg >= K {
						continue
					}
				}

				mergeNodes(g, src, target)
				aliasOf[src] = target
				hasAlias[src] = true
				merged = true
				break
			}
			if merged {
				break
			}
		}
		if !merged {
			return aliasOf, hasAlias
		}
	}
}

func mergeNodes(g *igraph, src, target node) {
	for n := range g.adj[src] {
		if n != target {
			g.addEdge(target, n)
		}
	}
	for n := range g.moves[src] {
		if n != src {
			g.addMove(target, n)
		}
	}
	delete(g.adj, src)
	delete(g.moves, src)
}

// colorGraph runs coalescing followed by the classic simplify/spill/
// select loop: repeatedly remove a degree-<K node (always colorable),
// and when none remains, push the highest-degree node as a
// potential spill and keep going; then pop the stack assigning each
// node a color its already-colored neighbors don't hold, demoting a
// potential spill to an actual one only if every color is taken.
func colorGraph(g *igraph, physRegs []asmir.PhysReg) colorResult {
	K := len(physRegs)
	aliasOf, hasAlias := coalesce(g, K)
	find := func(n node) node {
		for hasAlias[n] {
			n = aliasOf[n]
		}
		return n
	}

	degree := map[node]int{}
	for n, d := range g.degree {
		degree[n] = d
	}

	removed := map[node]bool{}
	remaining := func() []node {
		return lo.Filter(lo.Keys(g.adj), func(n node, _ int) bool {
			return !removed[n] && !g.precolored[n]
		})
	}

	var stack []node
	for {
		ns := remaining()
		if len(ns) == 0 {
			break
		}
		lowDegree := lo.Filter(ns, func(n node, _ int) bool { return degree[n] < K })
		progressed := len(lowDegree) > 0
		for _, n := range lowDegree {
			stack = append(stack, n)
			removed[n] = true
			for m := range g.adj[n] {
				if !removed[m] && !g.precolored[m] {
					degree[m]--
				}
			}
		}
		if progressed {
			continue
		}
		// Nothing is provably colorable; pick the highest-degree node
		// as a potential spill (a simple, conservative stand-in for a
		// use-count-weighted spill-cost metric) and keep simplifying.
		var best node
		bestDeg := -1
		for _, n := range ns {
			if degree[n] > bestDeg {
				bestDeg, best = degree[n], n
			}
		}
		stack = append(stack, best)
		removed[best] = true
		for m := range g.adj[best] {
			if !removed[m] && !g.precolored[m] {
				degree[m]--
			}
		}
	}

	color := map[node]asmir.PhysReg{}
	for _, r := range physRegs {
		color[physNode(r)] = r
	}
	spilled := map[node]bool{}

	for i := len(stack) - 1; i >= 0; i-- {
		n := stack[i]
		used := map[asmir.PhysReg]bool{}
		for m := range g.adj[n] {
			if c, ok := color[find(m)]; ok {
				used[c] = true
			}
		}
		assigned := false
		for _, r := range physRegs {
			if !used[r] {
				color[n] = r
				assigned = true
				break
			}
		}
		if !assigned {
			spilled[n] = true
		}
	}

	for src := range aliasOf {
		rep := find(src)
		if c, ok := color[rep]; ok {
			color[src] = c
		}
		if spilled[rep] {
			spilled[src] = true
		}
	}

	return colorResult{color: color, spilled: spilled}
}
