package schedule

import "math"

// Stats tracks per-PE load/idle time, job count, and the schedule's
// overall time window as tasks are appended (§4.9).
type Stats struct {
	startTime []int64
	endTime   []int64
	loadTime  []int64
	idleTime  []int64
	jobCount  []uint32

	minStartTime int64
	maxEndTime   int64
}

func NewStats(peCount int) *Stats {
	return &Stats{
		startTime:    make([]int64, peCount),
		endTime:      make([]int64, peCount),
		loadTime:     make([]int64, peCount),
		idleTime:     make([]int64, peCount),
		jobCount:     make([]uint32, peCount),
		minStartTime: math.MaxInt64,
		maxEndTime:   0,
	}
}

func (s *Stats) Reset() {
	for i := range s.startTime {
		s.startTime[i] = 0
		s.endTime[i] = 0
		s.loadTime[i] = 0
		s.idleTime[i] = 0
		s.jobCount[i] = 0
	}
	s.minStartTime = math.MaxInt64
	s.maxEndTime = 0
}

// Makespan is the span between the earliest start and the latest end
// across every PE.
func (s *Stats) Makespan() int64 { return s.maxEndTime - s.minStartTime }

// UtilizationFactor is the fraction of the overall makespan that pe spent
// executing.
func (s *Stats) UtilizationFactor(pe int) float64 {
	span := float64(s.Makespan())
	if span == 0 {
		return 0
	}
	return float64(s.loadTime[pe]) / span
}

func (s *Stats) StartTime(pe int) int64  { return s.startTime[pe] }
func (s *Stats) EndTime(pe int) int64    { return s.endTime[pe] }
func (s *Stats) LoadTime(pe int) int64   { return s.loadTime[pe] }
func (s *Stats) IdleTime(pe int) int64   { return s.idleTime[pe] }
func (s *Stats) JobCount(pe int) uint32  { return s.jobCount[pe] }
func (s *Stats) MinStartTime() int64     { return s.minStartTime }
func (s *Stats) MaxEndTime() int64       { return s.maxEndTime }

func (s *Stats) UpdateStartTime(pe int, t int64) {
	s.startTime[pe] = t
	if t < s.minStartTime {
		s.minStartTime = t
	}
}

func (s *Stats) UpdateEndTime(pe int, t int64) {
	s.endTime[pe] = t
	if t > s.maxEndTime {
		s.maxEndTime = t
	}
}

func (s *Stats) AddLoadTime(pe int, t int64)  { s.loadTime[pe] += t }
func (s *Stats) AddIdleTime(pe int, t int64)  { s.idleTime[pe] += t }
func (s *Stats) IncJobCount(pe int, by uint32) { s.jobCount[pe] += by }
