package fifo

import (
	"github.com/preesm/spider2/internal/core"
	"github.com/preesm/spider2/internal/dependency"
	"github.com/preesm/spider2/internal/pisdf"
)

// ExternalAddress resolves the platform-registered external buffer index
// for an EXTERN_IN/EXTERN_OUT vertex (§4.7, §6). PersistentAddress
// resolves the fixed virtual address a persistent delay's INIT/END pair
// must reuse across iterations instead of allocating a fresh one; ok is
// false for a non-persistent delay.
type ExternalAddress func(vertex *pisdf.Vertex) int64
type PersistentAddress func(delayIx int) (address int64, ok bool)

// PortRates carries a vertex firing's already-evaluated per-port rates,
// so BuildAllocationRules never has to re-evaluate a RateExpression.
type PortRates struct {
	Input  []int64
	Output []int64
}

// BuildAllocationRules computes the input/output AllocationRules for one
// task (vertex v's firingIx-th firing) and a PrevTaskLookup resolving
// every flattened input slot — including a MERGE rule's ghost
// predecessors — to its producing task's index, ready to hand straight to
// Allocator.Allocate (§4.7, §9: the per-subtype rule tables the fifo
// package doc promises live here, alongside the JobMessage parameter
// templates in internal/launcher that share the same subtype dispatch).
//
// inputDeps[p] is the resolved producer list for input port p
// (dependency.ComputeExecDependency's result); consumerCount[p] is how
// many distinct consumer tasks will read output port p this iteration,
// both supplied by the runtime driver since they depend on the rest of
// the schedule, not on v alone.
func BuildAllocationRules(
	v *pisdf.Vertex,
	rates PortRates,
	inputDeps [][]dependency.Dependency,
	consumerCount []int,
	extAddr ExternalAddress,
	persistentAddr PersistentAddress,
) ([]AllocationRule, []AllocationRule, PrevTaskLookup, error) {
	switch v.Type {
	case core.VertexNormal, core.VertexConfig, core.VertexJoin, core.VertexHead, core.VertexTail, core.VertexEnd:
		return buildDefaultRules(v, rates, inputDeps, consumerCount, core.FifoRWOwn)
	case core.VertexFork, core.VertexDuplicate:
		return buildAliasedInputRules(v, rates, inputDeps, consumerCount)
	case core.VertexRepeat:
		return buildRepeatRules(v, rates, inputDeps)
	case core.VertexExternIn:
		return nil, []AllocationRule{{Type: core.AllocExt, Offset: extAddr(v), Size: rates.Output[0], Attribute: core.FifoRWExt}}, noProducers, nil
	case core.VertexExternOut:
		return []AllocationRule{{Type: core.AllocExt, Offset: extAddr(v), Size: rates.Input[0], Attribute: core.FifoRWExt}}, nil, noProducers, nil
	case core.VertexInit:
		return buildInitRules(v, rates, persistentAddr)
	default:
		return nil, nil, nil, core.NewError(core.ErrUnhandledVertexType, "vertex subtype has no fifo allocation rule template", "vertex", v.Name, "type", v.Type.String())
	}
}

func noProducers(int) int { return -1 }

// buildDefaultRules implements the NORMAL/CONFIG/JOIN/HEAD/TAIL/END shape:
// every input is an ordinary (possibly merged) consumer of its
// producer's output, attribute attr; every output (if any) is a fresh
// allocation sized to its own rate, attribute RW_OWN. JOIN's prefix-sum
// placement into its single output and HEAD/TAIL's byte shuffling are
// job-time kernel concerns (already reflected in internal/launcher's
// input-parameter templates), not allocation-rule concerns: all three
// subtypes consume their inputs and produce their single output exactly
// like a NORMAL actor at the memory-allocation level (§4.7).
func buildDefaultRules(v *pisdf.Vertex, rates PortRates, inputDeps [][]dependency.Dependency, consumerCount []int, attr core.FifoAttribute) ([]AllocationRule, []AllocationRule, PrevTaskLookup, error) {
	inputRules, producers, err := resolveInputPorts(v, rates.Input, inputDeps, attr)
	if err != nil {
		return nil, nil, nil, err
	}
	outputRules := make([]AllocationRule, len(v.OutputPorts))
	for i := range v.OutputPorts {
		count := 0
		if i < len(consumerCount) {
			count = consumerCount[i]
		}
		outputRules[i] = AllocationRule{Type: core.AllocNew, Size: rates.Output[i], Attribute: core.FifoRWOwn, Count: count}
	}
	return inputRules, outputRules, producerLookup(producers), nil
}

// buildAliasedInputRules implements FORK and DUPLICATE: a single input
// port aliased (no copy) by every output, attribute RW_ONLY throughout.
// FORK's outputs walk the input at the prefix sum of previous output
// rates; DUPLICATE's outputs all start at offset 0 (§4.7).
func buildAliasedInputRules(v *pisdf.Vertex, rates PortRates, inputDeps [][]dependency.Dependency, consumerCount []int) ([]AllocationRule, []AllocationRule, PrevTaskLookup, error) {
	inputRules, producers, err := resolveInputPorts(v, rates.Input, inputDeps, core.FifoRWOnly)
	if err != nil {
		return nil, nil, nil, err
	}
	outputRules := make([]AllocationRule, len(v.OutputPorts))
	var prefix int64
	for i := range v.OutputPorts {
		count := 0
		if i < len(consumerCount) {
			count = consumerCount[i]
		}
		offset := int64(0)
		if v.Type == core.VertexFork {
			offset = prefix
		}
		outputRules[i] = AllocationRule{Type: core.AllocSameIn, FifoIx: 0, Offset: offset, Size: rates.Output[i], Attribute: core.FifoRWOnly, Count: count}
		prefix += rates.Output[i]
	}
	return inputRules, outputRules, producerLookup(producers), nil
}

// buildRepeatRules implements REPEAT: an equal-size input/output is a
// plain alias; a resizing REPEAT allocates nothing new for its output,
// instead aliasing the input with the R_REPEAT attribute marking it as a
// wrap-around view sized to the output rate (§4.7).
func buildRepeatRules(v *pisdf.Vertex, rates PortRates, inputDeps [][]dependency.Dependency) ([]AllocationRule, []AllocationRule, PrevTaskLookup, error) {
	attr := core.FifoRWOnly
	if rates.Input[0] != rates.Output[0] {
		attr = core.FifoRWOwn
	}
	inputRules, producers, err := resolveInputPorts(v, rates.Input, inputDeps, attr)
	if err != nil {
		return nil, nil, nil, err
	}
	outAttr := core.FifoRWOnly
	if rates.Input[0] != rates.Output[0] {
		outAttr = core.FifoRRepeat
	}
	outputRules := []AllocationRule{{Type: core.AllocSameIn, FifoIx: 0, Size: rates.Output[0], Attribute: outAttr}}
	return inputRules, outputRules, producerLookup(producers), nil
}

func buildInitRules(v *pisdf.Vertex, rates PortRates, persistentAddr PersistentAddress) ([]AllocationRule, []AllocationRule, PrevTaskLookup, error) {
	if addr, ok := persistentAddr(v.DelayIx); ok {
		return nil, []AllocationRule{{Type: core.AllocExt, Offset: addr, Size: rates.Output[0], Attribute: core.FifoRWOwn}}, noProducers, nil
	}
	return nil, []AllocationRule{{Type: core.AllocNew, Size: rates.Output[0], Attribute: core.FifoRWOwn, Count: 1}}, noProducers, nil
}

// resolveInputPorts builds one AllocationRule per input port of v (a
// direct SAME_IN alias for a single, whole-window producer, or a MERGE
// rule with ghost placeholders when the dependency spans more than one
// producer firing), plus the flat producer-task list Allocate expects
// (§4.7).
func resolveInputPorts(v *pisdf.Vertex, rates []int64, inputDeps [][]dependency.Dependency, attr core.FifoAttribute) ([]AllocationRule, []int, error) {
	var rules []AllocationRule
	var producers []int
	for p := range v.InputPorts {
		deps := inputDeps[p]
		rule, ruleProducers, err := resolvePort(deps, rates[p], attr)
		if err != nil {
			return nil, nil, err
		}
		rules = append(rules, rule)
		producers = append(producers, ruleProducers[0])
		if rule.Type == core.AllocMerge {
			rules = append(rules, make([]AllocationRule, len(rule.Others))...)
			producers = append(producers, ruleProducers[1:]...)
		}
	}
	return rules, producers, nil
}

func resolvePort(deps []dependency.Dependency, rate int64, attr core.FifoAttribute) (AllocationRule, []int, error) {
	var others []AllocationRule
	var producers []int
	for _, d := range deps {
		if d.Unresolved {
			return AllocationRule{}, nil, core.NewError(core.ErrDynamicTimeout, "fifo allocation requested before dependency was resolved")
		}
		for k := d.FiringFrom; k <= d.FiringTo; k++ {
			size := d.Rate
			offset := int64(0)
			if k == d.FiringFrom {
				offset = d.MemFrom
				size -= d.MemFrom
			}
			if k == d.FiringTo {
				size -= d.Rate - 1 - d.MemTo
			}
			others = append(others, AllocationRule{
				Type:      core.AllocSameIn,
				FifoIx:    sourcePortIx(d),
				Size:      size,
				Offset:    offset,
				Attribute: attr,
			})
			producers = append(producers, taskIxOf(d.Handler.GetTaskIx(d.Vertex.Ix, uint32(k))))
		}
	}

	if len(others) == 1 {
		rule := others[0]
		rule.Size = rate
		return rule, producers, nil
	}

	merge := AllocationRule{
		Type:      core.AllocMerge,
		Size:      rate,
		Offset:    int64(len(others)),
		Attribute: core.FifoRMerge,
		Others:    others,
	}
	return merge, append([]int{-1}, producers...), nil
}

// sourcePortIx returns the producer's own output port index for a
// resolved Dependency, i.e. which sibling output Fifo the allocator must
// alias (§4.7).
func sourcePortIx(d dependency.Dependency) int {
	return d.Handler.Handler.Graph.Edge(d.EdgeIx).Source.PortIx
}

// taskIxOf converts a GraphFiring task index to the int PrevTaskLookup
// contract, turning the core.UndefinedIx sentinel into -1.
func taskIxOf(ix uint32) int {
	if ix == core.UndefinedIx {
		return -1
	}
	return int(ix)
}

func producerLookup(producers []int) PrevTaskLookup {
	return func(slot int) int {
		if slot < 0 || slot >= len(producers) {
			return -1
		}
		return producers[slot]
	}
}
