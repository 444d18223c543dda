package example

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/expr"
	"github.com/preesm/spider2/internal/kernel"
	"github.com/preesm/spider2/internal/pisdf"
)

// Chain builds a four-actor pipeline with an explicit delay setter
// (§3, §4.5 case 2): Producer feeds Consumer across a delayed edge whose
// initial 4 tokens come from Setter instead of an implicit INIT vertex,
// the same construction resolver_test.go's
// TestComputeExecDependencySplitsAcrossDelaySetter exercises, wired up
// here to actually run rather than just to be queried.
func Chain() *Scenario {
	plat := twoClusterPlatform()
	kernels := kernel.NewRegistry()

	g := pisdf.NewGraph(0, "chain")

	setter := g.AddVertex(pisdf.NewVertex(-1, "setter", core.VertexNormal, 0, 1))
	initSink := g.AddVertex(pisdf.NewVertex(-1, "init_sink", core.VertexNormal, 1, 0))
	producer := g.AddVertex(pisdf.NewVertex(-1, "producer", core.VertexNormal, 0, 1))
	consumer := g.AddVertex(pisdf.NewVertex(-1, "consumer", core.VertexNormal, 1, 0))

	g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: setter.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: initSink.Ix, PortIx: 0},
		expr.MustParse("10"), expr.MustParse("10")))
	mainEdge := g.AddEdge(pisdf.NewEdge(-1, pisdf.VertexRef{VertexIx: producer.Ix, PortIx: 0}, pisdf.VertexRef{VertexIx: consumer.Ix, PortIx: 0},
		expr.MustParse("6"), expr.MustParse("10")))
	delay := g.AddDelay(pisdf.NewDelay(-1, expr.MustParse("4"), mainEdge.Ix, -1, -1))
	delay.SetterVertexIx = setter.Ix
	delay.SetterPortIx = 0

	bindEverywhere(setter, plat, kernels, "50", func(ctx kernel.Context) error {
		fillPattern(ctx.Outputs[0], 1)
		return nil
	})
	bindEverywhere(initSink, plat, kernels, "5", func(ctx kernel.Context) error {
		return nil
	})
	bindEverywhere(producer, plat, kernels, "80", func(ctx kernel.Context) error {
		fillPattern(ctx.Outputs[0], 2)
		return nil
	})
	bindEverywhere(consumer, plat, kernels, "80", func(ctx kernel.Context) error {
		return nil
	})

	return &Scenario{Name: "chain", Graph: g, Platform: plat, Kernels: kernels}
}
