package schedule

import "github.com/preesm/spider2/internal/core"

// Schedule collects every Task produced so far by a Mapper, indexed both
// by task ix and by PE, with running Stats kept current as tasks are
// added (§4.9).
type Schedule struct {
	tasks       []*Task
	byPE        [][]int // byPE[peIx] = task indices mapped on that PE, in start-time order
	lrtJobExec  []int64 // next jobExecIx to hand out per LRT
	Stats       *Stats
}

func NewSchedule(peCount int) *Schedule {
	return &Schedule{
		byPE:  make([][]int, peCount),
		Stats: NewStats(peCount),
	}
}

func (s *Schedule) AddTask(t *Task) {
	t.Ix = len(s.tasks)
	s.tasks = append(s.tasks, t)
}

// InsertTasks splices tasks immediately before beforeIx, shifting every
// later task's Ix (and byPE bookkeeping) up to make room. Used by the
// Mapper to insert SEND/RECEIVE pairs ahead of the task that depends on
// them (§4.8, §4.9).
func (s *Schedule) InsertTasks(beforeIx int, inserted []*Task) {
	n := len(inserted)
	if n == 0 {
		return
	}
	grown := make([]*Task, 0, len(s.tasks)+n)
	grown = append(grown, s.tasks[:beforeIx]...)
	grown = append(grown, inserted...)
	grown = append(grown, s.tasks[beforeIx:]...)
	for ix, t := range grown {
		t.Ix = ix
	}
	s.tasks = grown
	for pe, ixs := range s.byPE {
		for i, ix := range ixs {
			if ix >= beforeIx {
				s.byPE[pe][i] = ix + n
			}
		}
	}
}

// MapTask assigns a task to a PE and time window, updating Stats.
func (s *Schedule) MapTask(taskIx, peIx int, start, end int64) {
	t := s.tasks[taskIx]
	t.PEIx = peIx
	t.StartTime = start
	t.EndTime = end
	t.State = core.TaskReady
	s.byPE[peIx] = append(s.byPE[peIx], taskIx)
	s.Stats.UpdateStartTime(peIx, start)
	s.Stats.UpdateEndTime(peIx, end)
	s.Stats.AddLoadTime(peIx, end-start)
	s.Stats.IncJobCount(peIx, 1)
}

// NextJobExecIx hands out a monotonically increasing job execution index
// for lrtIx, used by the driver to number jobs as they are sent.
func (s *Schedule) NextJobExecIx(lrtIx int) int64 {
	if lrtIx >= len(s.lrtJobExec) {
		grown := make([]int64, lrtIx+1)
		copy(grown, s.lrtJobExec)
		s.lrtJobExec = grown
	}
	v := s.lrtJobExec[lrtIx]
	s.lrtJobExec[lrtIx]++
	return v
}

func (s *Schedule) Task(ix int) *Task { return s.tasks[ix] }
func (s *Schedule) TaskCount() int    { return len(s.tasks) }

// TasksOnPE returns the task indices mapped on pe, in the order they were
// mapped (which List/Greedy scheduling keeps consistent with start time).
func (s *Schedule) TasksOnPE(pe int) []int { return s.byPE[pe] }

// LastTaskOnPE returns the task most recently mapped on pe, or nil if
// none has been mapped yet.
func (s *Schedule) LastTaskOnPE(pe int) *Task {
	ixs := s.byPE[pe]
	if len(ixs) == 0 {
		return nil
	}
	return s.tasks[ixs[len(ixs)-1]]
}
