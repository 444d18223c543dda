// Package firing implements the GraphFiring/GraphHandler tree (§3, §4.4):
// per-firing runtime state (resolved parameters, repetition vector, child
// handlers, per-vertex task index) together with the basic-repetition-
// -vector computation each firing resolves against.
package firing

import (
	"math/big"

	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/pisdf"
)

// ComputeBRV solves the balance equations for every vertex of g (§4.4):
// for an edge src->snk with production rate p and consumption rate c,
// rv[snk]*c == rv[src]*p token-for-token. Rates are evaluated against
// scope once per call, so dynamic-dependent parameters already resolved
// on the firing calling this are honoured.
//
// Vertices pinned to a single firing (CONFIG, DELAY, INIT/END,
// EXTERN_IN/OUT, per Vertex.RequiresSingleFiring) are seeded at rv=1 and
// excluded from the balance walk; an edge touching one is only used to
// propagate the neighbour's *rational* ratio, never the reverse.
//
// Interface vertices (INPUT_IF/OUTPUT_IF) never join the balance walk at
// all (`BRVCompute::extractConnectedComponent`, which skips any edge
// whose source or sink is INTERFACE-typed): an edge touching one carries
// no rational ratio and is instead recorded as an interface edge. Once
// every component's ratios are LCM-scaled to integers, each interface
// edge attached to that component can only ever scale the component's RV
// *up* — by `ceilDiv(interfaceRate, internalTotal)` — never down
// (`BRVCompute::updateBRVFromInputIF`/`updateBRVFromOutputIF`); there is
// no "does not divide evenly" failure mode for interfaces.
func ComputeBRV(g *pisdf.Graph, scope expr.Scope) (map[int]int64, error) {
	n := len(g.Vertices)
	ratio := make([]*big.Rat, n) // ratio[v] relative to its component root
	visited := make([]bool, n)
	component := make([]int, n)
	for i := range component {
		component[i] = -1
	}

	adjacency, ifEdges, err := buildAdjacency(g, scope)
	if err != nil {
		return nil, err
	}

	compID := 0
	rv := make(map[int]int64, n)
	for root := 0; root < n; root++ {
		if visited[root] {
			continue
		}
		members, err := walkComponent(g, adjacency, root, ratio, visited, component, compID)
		if err != nil {
			return nil, err
		}
		compID++

		lcm := big.NewInt(1)
		for _, v := range members {
			lcm = lcmInt(lcm, ratio[v].Denom())
		}
		intRV := make(map[int]int64, len(members))
		for _, v := range members {
			scaled := new(big.Int).Mul(ratio[v].Num(), new(big.Int).Div(lcm, ratio[v].Denom()))
			intRV[v] = scaled.Int64()
		}

		memberSet := make(map[int]bool, len(members))
		for _, v := range members {
			memberSet[v] = true
		}
		rescaleForInterfaces(ifEdges, memberSet, intRV)
		for _, v := range members {
			rv[v] = intRV[v]
		}
	}
	return rv, nil
}

type balanceEdge struct {
	other int
	// rv[other] = rv[v] * num/den
	num, den int64
}

// interfaceEdge records an edge with one INPUT_IF/OUTPUT_IF endpoint,
// excluded from the ordinary rational balance walk and resolved instead
// by rescaleForInterfaces's scale-up-only post-pass.
type interfaceEdge struct {
	internalIx     int // the non-interface endpoint
	srcIsInterface bool
	srcRate        int64
	snkRate        int64
}

func buildAdjacency(g *pisdf.Graph, scope expr.Scope) (map[int][]balanceEdge, []interfaceEdge, error) {
	adj := make(map[int][]balanceEdge, len(g.Vertices))
	var ifEdges []interfaceEdge
	for _, e := range g.Edges {
		src, snk := e.Source.VertexIx, e.Sink.VertexIx
		if src == snk {
			continue // self-loop via delay, balances trivially
		}
		if e.IsConfigParamEdge {
			// config-to-vertex parameter plumbing carries a value, not a
			// token count to balance (§9 "nil edge vs config-param edge"
			// open question): it never joins the balance walk and never
			// needs a positive-rate check.
			continue
		}
		srcVertex, snkVertex := g.Vertex(src), g.Vertex(snk)
		p, err := e.SourceRate(scope)
		if err != nil {
			return nil, nil, err
		}
		c, err := e.SinkRate(scope)
		if err != nil {
			return nil, nil, err
		}
		if p <= 0 || c <= 0 {
			return nil, nil, core.NewError(core.ErrBrvInconsistent, "non-positive rate in balance equation", "edge", e.Ix, "src_rate", p, "snk_rate", c)
		}
		if srcVertex.IsInterface() || snkVertex.IsInterface() {
			ie := interfaceEdge{srcRate: p, snkRate: c}
			if srcVertex.IsInterface() {
				ie.srcIsInterface = true
				ie.internalIx = snk
			} else {
				ie.internalIx = src
			}
			ifEdges = append(ifEdges, ie)
			continue
		}
		// rv[snk] = rv[src] * p/c ; rv[src] = rv[snk] * c/p
		adj[src] = append(adj[src], balanceEdge{other: snk, num: p, den: c})
		adj[snk] = append(adj[snk], balanceEdge{other: src, num: c, den: p})
	}
	return adj, ifEdges, nil
}

func walkComponent(g *pisdf.Graph, adj map[int][]balanceEdge, root int, ratio []*big.Rat, visited []bool, component []int, compID int) ([]int, error) {
	ratio[root] = big.NewRat(1, 1)
	visited[root] = true
	component[root] = compID
	members := []int{root}
	queue := []int{root}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, be := range adj[v] {
			if g.Vertex(v).RequiresSingleFiring() && !g.Vertex(be.other).RequiresSingleFiring() {
				// a pinned vertex does not propagate its own rv=1 onto a
				// free neighbour; the neighbour's rv is instead whatever
				// its own other edges determine, with this edge only
				// used later as an EXT/NEW allocation boundary (§4.7).
				continue
			}
			want := new(big.Rat).Mul(ratio[v], big.NewRat(be.num, be.den))
			if visited[be.other] {
				if want.Cmp(ratio[be.other]) != 0 {
					return nil, core.NewError(core.ErrBrvInconsistent, "conflicting repetition ratio", "vertex", be.other)
				}
				continue
			}
			ratio[be.other] = want
			visited[be.other] = true
			component[be.other] = compID
			members = append(members, be.other)
			queue = append(queue, be.other)
		}
	}
	return members, nil
}

// rescaleForInterfaces applies BRVCompute::updateBRV's scale-up-only post
// pass: every interfaceEdge touching this component contributes a
// cumulative factor (ceilDiv(interfaceRate, internalTotal), 1 if the
// internal side already consumes/produces at least as much), and the
// component's RV is multiplied by the final cumulative factor once, same
// as the original's single `setRepetitionValue(rv * scaleRVFactor)` pass.
func rescaleForInterfaces(ifEdges []interfaceEdge, members map[int]bool, intRV map[int]int64) {
	factor := int64(1)
	for _, ie := range ifEdges {
		if !members[ie.internalIx] {
			continue
		}
		if ie.srcIsInterface {
			totalCons := ie.snkRate * intRV[ie.internalIx] * factor
			if totalCons > 0 && totalCons < ie.srcRate {
				factor *= ceilDiv(ie.srcRate, totalCons)
			}
		} else {
			totalProd := ie.srcRate * intRV[ie.internalIx] * factor
			if totalProd > 0 && totalProd < ie.snkRate {
				factor *= ceilDiv(ie.snkRate, totalProd)
			}
		}
	}
	if factor > 1 {
		for v := range members {
			intRV[v] *= factor
		}
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

func lcmInt(a, b *big.Int) *big.Int {
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
	if gcd.Sign() == 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Mul(new(big.Int).Div(a, gcd), b)
}
