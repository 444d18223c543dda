package fifo

import "github.com/preesm/spider2/internal/core"

// TaskFifos holds the resolved input/output Fifo records of one task.
type TaskFifos struct {
	Input  []Fifo
	Output []Fifo
}

type mergedRecord struct {
	fifoIx     int
	taskOffset int
	taskIx     int
}

// PrevTaskLookup resolves a flattened input slot of a consumer task (one
// slot per input rule, a MERGE rule's own slot followed by one slot per
// merged predecessor) to the task index of the predecessor producing it
// (or -1 if the dependency is unresolved / covered by a delay's initial
// content with nothing to alias).
type PrevTaskLookup func(portIx int) int

// Allocator assigns virtual addresses to every Fifo of every task, in
// the schedule order tasks are allocated (§4.7). It is not safe for
// concurrent use; the GRT driver allocates one task at a time.
type Allocator struct {
	nextAddress int64
	fifos       map[int]*TaskFifos
	merged      []mergedRecord
}

func NewAllocator() *Allocator {
	return &Allocator{fifos: make(map[int]*TaskFifos)}
}

// Clear resets the allocator's address cursor and merge memoization,
// starting a fresh memory layout (§4.7).
func (a *Allocator) Clear() {
	a.nextAddress = 0
	a.fifos = make(map[int]*TaskFifos)
	a.merged = nil
}

// TaskFifos returns the previously allocated record for taskIx, or nil.
func (a *Allocator) TaskFifos(taskIx int) *TaskFifos {
	return a.fifos[taskIx]
}

// Allocate resolves every input and output Fifo of taskIx against its
// allocation rules. prevTask resolves a flattened input slot to the
// producing task's index; it is called once per SAME_IN rule at that
// rule's slot, and for a MERGE rule once per merged predecessor, at the
// slots following the MERGE rule's own.
func (a *Allocator) Allocate(taskIx int, inputRules, outputRules []AllocationRule, prevTask PrevTaskLookup) (*TaskFifos, error) {
	tf := &TaskFifos{
		Input:  make([]Fifo, len(inputRules)),
		Output: make([]Fifo, len(outputRules)),
	}

	offset := 0
	for fifoIx := 0; fifoIx < len(inputRules); fifoIx++ {
		rule := inputRules[fifoIx]
		switch rule.Type {
		case core.AllocMerge:
			consumed, err := a.allocateMergedInputFifo(taskIx, tf, rule, fifoIx, offset, prevTask)
			if err != nil {
				return nil, err
			}
			offset += consumed
			// The consumed slots are filled directly above rather than
			// through their own rule, matching the original iterator's
			// `it += rule.offset_` skip.
			fifoIx += consumed
		case core.AllocSameIn:
			prevIx := prevTask(fifoIx)
			fifoVal, err := a.allocateInputFifo(prevIx, rule)
			if err != nil {
				return nil, err
			}
			tf.Input[fifoIx] = fifoVal
		case core.AllocExt:
			// EXTERN_OUT: the input fifo is the platform-registered
			// external buffer itself, never allocated from the cursor.
			tf.Input[fifoIx] = Fifo{VirtualAddress: rule.Offset, Size: rule.Size, Attribute: rule.Attribute, Count: rule.Count}
		default:
			return nil, core.NewError(core.ErrFifoSizeMismatch, "invalid allocation rule type for input fifo", "task", taskIx, "fifo", fifoIx)
		}
	}

	for fifoIx, rule := range outputRules {
		var f Fifo
		switch rule.Type {
		case core.AllocNew:
			f.VirtualAddress = a.nextAddress
			a.nextAddress += rule.Size
			f.Offset = 0
		case core.AllocSameIn:
			in := tf.Input[rule.FifoIx]
			f.VirtualAddress = in.VirtualAddress
			if in.Attribute == core.FifoRMerge {
				f.Offset = rule.Offset
			} else {
				f.Offset = in.Offset + rule.Offset
			}
		case core.AllocSameOut:
			out := tf.Output[rule.FifoIx]
			f.VirtualAddress = out.VirtualAddress
			f.Offset = out.Offset + rule.Offset
		case core.AllocExt:
			f.VirtualAddress = rule.Offset
			f.Offset = 0
		}
		f.Size = rule.Size
		f.Attribute = rule.Attribute
		f.Count = rule.Count
		tf.Output[fifoIx] = f
	}

	a.fifos[taskIx] = tf
	return tf, nil
}

func (a *Allocator) allocateMergedInputFifo(taskIx int, tf *TaskFifos, rule AllocationRule, realFifoIx, taskOffset int, prevTask PrevTaskLookup) (int, error) {
	merged := int(rule.Offset)
	for _, rec := range a.merged {
		existingTaskFifos := a.fifos[rec.taskIx]
		existing := existingTaskFifos.Input[rec.fifoIx]
		if existing.Size != rule.Size || existing.Offset != rule.Offset {
			continue
		}
		same := true
		for i := 0; i < merged; i++ {
			prevIx := prevTask(realFifoIx + i + 1)
			if prevIx < 0 {
				same = false
				break
			}
			prevFifo := a.fifos[prevIx].Output[rule.Others[i].FifoIx]
			mergedFifo := existingTaskFifos.Input[rec.fifoIx+i+1]
			if prevFifo.VirtualAddress != mergedFifo.VirtualAddress || prevFifo.Size != mergedFifo.Size || prevFifo.Offset != mergedFifo.Offset {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		result := existing
		result.Offset = 0
		result.Count = 0
		result.Attribute = core.FifoRWOwn
		tf.Input[realFifoIx] = result
		for i := 0; i < merged; i++ {
			prevIx := prevTask(realFifoIx + i + 1)
			f, err := a.allocateInputFifo(prevIx, rule.Others[i])
			if err != nil {
				return 0, err
			}
			f.Attribute = core.FifoDummy
			tf.Input[realFifoIx+i+1] = f
		}
		existing.Count++
		existingTaskFifos.Input[rec.fifoIx] = existing
		return merged, nil
	}

	fresh := Fifo{
		VirtualAddress: a.nextAddress,
		Size:           rule.Size,
		Offset:         rule.Offset,
		Count:          rule.Count,
		Attribute:      rule.Attribute,
	}
	a.nextAddress += rule.Size
	tf.Input[realFifoIx] = fresh
	for i := 0; i < merged; i++ {
		prevIx := prevTask(realFifoIx + i + 1)
		f, err := a.allocateInputFifo(prevIx, rule.Others[i])
		if err != nil {
			return 0, err
		}
		tf.Input[realFifoIx+i+1] = f
	}
	a.merged = append(a.merged, mergedRecord{fifoIx: realFifoIx, taskOffset: taskOffset, taskIx: taskIx})
	return merged, nil
}

func (a *Allocator) allocateInputFifo(prevTaskIx int, rule AllocationRule) (Fifo, error) {
	if prevTaskIx < 0 || rule.Attribute == core.FifoDummy {
		return Fifo{}, nil
	}
	prevTf, ok := a.fifos[prevTaskIx]
	if !ok {
		return Fifo{}, core.NewError(core.ErrFifoSizeMismatch, "predecessor task has not been allocated yet", "task", prevTaskIx)
	}
	f := prevTf.Output[rule.FifoIx]
	if f.Attribute != core.FifoRWExt {
		f.Count = 0
		f.Attribute = rule.Attribute
	}
	f.Size = rule.Size
	f.Offset += rule.Offset
	return f, nil
}
