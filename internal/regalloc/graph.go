package regalloc

import "github.com/cc-core/cc/internal/asmir"

// igraph is the Chaitin-Briggs interference graph for one register
// class of one function. Physical registers are ordinary precolored
// nodes rather than a side constraint table: an instruction like idiv
// that clobbers AX/DX, or a call that clobbers the caller-saved set,
// shows up here as an edge from every simultaneously live pseudo to
// the clobbered asmir.Reg node, so the calling convention and
// special-instruction register pressure fall out of ordinary graph
// coloring instead of a bespoke constraint pass.
type igraph struct {
	adj        map[node]map[node]bool
	degree     map[node]int
	precolored map[node]bool
	moves      map[node]map[node]bool
}

// infiniteDegree marks a precolored node as never eligible for the
// simplify/spill worklists.
const infiniteDegree = 1 << 30

func newGraph() *igraph {
	return &igraph{
		adj:        map[node]map[node]bool{},
		degree:     map[node]int{},
		precolored: map[node]bool{},
		moves:      map[node]map[node]bool{},
	}
}

func (g *igraph) addNode(n node) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = map[node]bool{}
	}
}

func (g *igraph) addEdge(a, b node) {
	if a == b {
		return
	}
	g.addNode(a)
	g.addNode(b)
	if g.adj[a][b] {
		return
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
	if !g.precolored[a] {
		g.degree[a]++
	}
	if !g.precolored[b] {
		g.degree[b]++
	}
}

func (g *igraph) addMove(a, b node) {
	if a == b {
		return
	}
	if g.moves[a] == nil {
		g.moves[a] = map[node]bool{}
	}
	if g.moves[b] == nil {
		g.moves[b] = map[node]bool{}
	}
	g.moves[a][b] = true
	g.moves[b][a] = true
}

func isRegLike(op asmir.Operand) bool {
	switch op.(type) {
	case asmir.Pseudo, asmir.Reg:
		return true
	default:
		return false
	}
}

// moveNodes reports the (src, dst) pair of a plain register-to-
// register Mov/MovSD - the only instructions internal/codegen ever
// emits that are candidates for coalescing away entirely.
func moveNodes(instr asmir.Instr, class asmir.RegClass) (src, dst node, ok bool) {
	var s, d asmir.Operand
	switch i := instr.(type) {
	case asmir.Mov:
		if class != asmir.GP || !isRegLike(i.Src) || !isRegLike(i.Dst) {
			return node{}, node{}, false
		}
		s, d = i.Src, i.Dst
	case asmir.MovSD:
		if class != asmir.XMM || !isRegLike(i.Src) || !isRegLike(i.Dst) {
			return node{}, node{}, false
		}
		s, d = i.Src, i.Dst
	default:
		return node{}, node{}, false
	}
	sn, ok1 := toNode(s, class)
	dn, ok2 := toNode(d, class)
	if !ok1 || !ok2 {
		return node{}, node{}, false
	}
	return sn, dn, true
}

// buildInterference walks the instruction stream once, adding an edge
// from each definition to everything else simultaneously live and
// recording move-related pairs for the coalescing pass.
func buildInterference(body []asmir.Instr, class asmir.RegClass, liveOut []map[node]bool, physRegs []asmir.PhysReg) *igraph {
	g := newGraph()
	for _, r := range physRegs {
		n := physNode(r)
		g.addNode(n)
		g.precolored[n] = true
		g.degree[n] = infiniteDegree
	}

	for i, instr := range body {
		defs, _ := defsUses(instr)
		var defNodes []node
		for _, d := range defs {
			if nd, ok := toNode(d, class); ok {
				defNodes = append(defNodes, nd)
			}
		}
		moveSrc, _, isMove := moveNodes(instr, class)

		live := liveOut[i]
		for _, d := range defNodes {
			g.addNode(d)
			for l := range live {
				if l == d {
					continue
				}
				if isMove && l == moveSrc {
					// Don't pre-interfere a move's own src/dst: leave
					// the decision to the coalescer.
					continue
				}
				g.addEdge(d, l)
			}
		}
		if isMove {
			src, dst, _ := moveNodes(instr, class)
			g.addMove(src, dst)
		}
	}
	return g
}
