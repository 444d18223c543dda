// Package metrics implements Prometheus metrics for the scheduling core
// (§2, §4.9): iteration counts and durations, schedule makespan, PE
// utilization and job counts. The FIFO allocation, job dispatch, CONFIG
// resolution and LRT queue-depth series are registered too, but no
// package of this module updates them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IterationsTotal counts completed runtime.Driver.RunIteration calls,
	// split by outcome.
	IterationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spider2_iterations_total",
			Help: "Total number of graph iterations run, by outcome",
		},
		[]string{"outcome"}, // "ok" | "error"
	)

	// IterationDurationSeconds measures one full RunIteration call,
	// including every CONFIG-actor wait it blocked on.
	IterationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spider2_iteration_duration_seconds",
			Help:    "Wall-clock duration of one graph iteration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 20),
		},
	)

	// ScheduleMakespan reports the last iteration's schedule.Stats
	// makespan, in the same time unit RTInfo timing expressions use.
	ScheduleMakespan = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spider2_schedule_makespan",
			Help: "Makespan of the last computed schedule",
		},
	)

	// PEUtilization reports schedule.Stats.UtilizationFactor per PE for
	// the last iteration.
	PEUtilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spider2_pe_utilization_ratio",
			Help: "Fraction of the last iteration's makespan a PE spent executing",
		},
		[]string{"pe"},
	)

	// PEJobCount reports schedule.Stats.JobCount per PE for the last
	// iteration.
	PEJobCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spider2_pe_job_count",
			Help: "Number of tasks mapped to a PE in the last iteration",
		},
		[]string{"pe"},
	)

	// JobsDispatchedTotal is labelled for JobMessages handed to
	// launcher.Dispatcher, by vertex subtype (§4.10). No package of this
	// module increments it, so it stays at zero.
	JobsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spider2_jobs_dispatched_total",
			Help: "Total number of jobs dispatched to an LRT, by vertex type",
		},
		[]string{"vertex_type"},
	)

	// FifoAllocationsTotal is labelled for fifo.Allocator.Allocate calls,
	// by the AllocationRule.Type they resolved to (NEW/SAME_IN/SAME_OUT/
	// MERGE/EXT, §4.7). No package of this module increments it, so it
	// stays at zero.
	FifoAllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spider2_fifo_allocations_total",
			Help: "Total number of FIFO allocation rules applied, by rule type",
		},
		[]string{"rule"},
	)

	// ConfigParamResolutionsTotal is labelled for CONFIG actor results
	// applied to a GraphFiring's dynamic parameters (§4.2). No package of
	// this module increments it, so it stays at zero.
	ConfigParamResolutionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spider2_config_param_resolutions_total",
			Help: "Total number of dynamic parameters resolved from a CONFIG actor's output",
		},
	)

	// LRTQueueDepth is labelled per LRT for the eventbus partition depth
	// (§5). No package of this module sets it, so it has no samples.
	LRTQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spider2_lrt_queue_depth",
			Help: "Current number of jobs queued for an LRT partition",
		},
		[]string{"lrt"},
	)
)
