package example

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/kernel"
	"github.com/preesm/spider2/internal/param"
	"github.com/preesm/spider2/internal/pisdf"
)

// ForkJoin builds a CONFIG-gated fork/join pipeline (§4.2's
// dynamic-dependent parameter, §4.7's FORK allocation rule): a CONFIG
// actor resolves parameter "n" at run time, a FORK splits Source's 12
// tokens into an n-sized slice and a (12-n) remainder, and two sinks
// consume each split independently. Forces the driver through the
// "wait on the Bus for a CONFIG result before the rest of the tree can
// be built" path (§2, §4.4).
func ForkJoin() *Scenario {
	plat := twoClusterPlatform()
	kernels := kernel.NewRegistry()

	g := pisdf.NewGraph(0, "forkjoin")
	g.AddParam(param.NewDynamic("n"))

	cfg := g.AddVertex(pisdf.NewVertex(-1, "resolve_n", core.VertexConfig, 0, 1))
	cfg.ConfigOutputParams = []string{"n"}
	paramSink := g.AddVertex(pisdf.NewVertex(-1, "param_sink", core.VertexNormal, 1, 0))
	cfgEdge := g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: cfg.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: paramSink.Ix, PortIx: 0},
		expr.MustParse("8"), expr.MustParse("8")))
	cfgEdge.IsConfigParamEdge = true

	source := g.AddVertex(pisdf.NewVertex(-1, "source", core.VertexNormal, 0, 1))
	fork := g.AddVertex(pisdf.NewVertex(-1, "fork", core.VertexFork, 1, 2))
	sinkA := g.AddVertex(pisdf.NewVertex(-1, "sink_a", core.VertexNormal, 1, 0))
	sinkB := g.AddVertex(pisdf.NewVertex(-1, "sink_b", core.VertexNormal, 1, 0))

	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: source.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: fork.Ix, PortIx: 0},
		expr.MustParse("12"), expr.MustParse("12")))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: fork.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: sinkA.Ix, PortIx: 0},
		expr.MustParse("n"), expr.MustParse("n")))
	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: fork.Ix, PortIx: 1}, pisdf.VertexRef{VertexIx: sinkB.Ix, PortIx: 0},
		expr.MustParse("12-n"), expr.MustParse("12-n")))

	bindEverywhere(cfg, plat, kernels, "20", func(ctx kernel.Context) error {
		putInt64(ctx.Outputs[0], 5)
		return nil
	})
	bindEverywhere(paramSink, plat, kernels, "5", func(ctx kernel.Context) error { return nil })
	bindEverywhere(source, plat, kernels, "40", func(ctx kernel.Context) error {
		fillPattern(ctx.Outputs[0], 3)
		return nil
	})
	bindEverywhere(fork, plat, kernels, "10", func(ctx kernel.Context) error {
		copy(ctx.Outputs[0], ctx.Inputs[0][:len(ctx.Outputs[0])])
		copy(ctx.Outputs[1], ctx.Inputs[0][len(ctx.Outputs[0]):])
		return nil
	})
	bindEverywhere(sinkA, plat, kernels, "5", func(ctx kernel.Context) error { return nil })
	bindEverywhere(sinkB, plat, kernels, "5", func(ctx kernel.Context) error { return nil })

	return &Scenario{Name: "forkjoin", Graph: g, Platform: plat, Kernels: kernels}
}
