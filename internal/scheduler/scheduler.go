// Package scheduler distributes ongoing lawsuits across a fixed set of judge
// lanes. Each lane is served earliest filing date first, ties by ascending id.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/btree"

	"courthouse/internal/court/models"
	"courthouse/internal/sentinel"
	id "courthouse/pkg/domain"
	dErrors "courthouse/pkg/domain-errors"
)

const (
	DefaultLaneCount = 10
	laneDegree       = 16
)

// ErrEmpty is returned by Dequeue when a judge has nothing pending.
var ErrEmpty = sentinel.ErrEmpty

// Sequencer splits an identifier into its type and sequence number.
type Sequencer interface {
	Split(entityID id.EntityID) (id.EntityType, int64, error)
}

type entry struct {
	filedAt time.Time
	id      id.EntityID
}

func lessEntry(a, b entry) bool {
	if !a.filedAt.Equal(b.filedAt) {
		return a.filedAt.Before(b.filedAt)
	}
	return a.id < b.id
}

type lane struct {
	judge id.EntityID
	queue *btree.BTreeG[entry]
}

// Scheduler owns the lanes and which lawsuit sits where. A lawsuit is in at
// most one lane at a time.
type Scheduler struct {
	seq Sequencer

	mu      sync.Mutex
	lanes   []*lane
	byJudge map[id.EntityID]int
	queued  map[id.EntityID]queuedAt
}

type queuedAt struct {
	lane  int
	entry entry
}

// New creates a scheduler with laneCount lanes.
func New(laneCount int, seq Sequencer) (*Scheduler, error) {
	if laneCount < 1 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "lane count must be positive")
	}
	lanes := make([]*lane, laneCount)
	for i := range lanes {
		lanes[i] = &lane{queue: btree.NewG(laneDegree, lessEntry)}
	}
	return &Scheduler{
		seq:     seq,
		lanes:   lanes,
		byJudge: make(map[id.EntityID]int),
		queued:  make(map[id.EntityID]queuedAt),
	}, nil
}

func (s *Scheduler) LaneCount() int { return len(s.lanes) }

// FreeLanes is the number of lanes no judge is bound to.
func (s *Scheduler) FreeLanes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lanes) - len(s.byJudge)
}

// AddJudge binds judgeID to a lane. The preferred lane is the judge's sequence
// number mod the lane count; occupied lanes are skipped in order. Binding an
// already bound judge returns its existing lane.
func (s *Scheduler) AddJudge(judgeID id.EntityID) (int, error) {
	typ, seq, err := s.seq.Split(judgeID)
	if err != nil {
		return 0, err
	}
	if typ != id.TypeJudge {
		return 0, dErrors.New(dErrors.CodeUnknownJudge, fmt.Sprintf("%s is a %s, not a judge", judgeID, typ))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byJudge[judgeID]; ok {
		return idx, nil
	}
	n := len(s.lanes)
	preferred := int(seq % int64(n))
	for probe := 0; probe < n; probe++ {
		idx := (preferred + probe) % n
		if s.lanes[idx].judge.IsNil() {
			s.lanes[idx].judge = judgeID
			s.byJudge[judgeID] = idx
			return idx, nil
		}
	}
	return 0, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("all %d judge lanes are taken", n))
}

// RemoveJudge frees the judge's lane. A lane with pending cases cannot be freed.
func (s *Scheduler) RemoveJudge(judgeID id.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.laneOf(judgeID)
	if err != nil {
		return err
	}
	if n := s.lanes[idx].queue.Len(); n > 0 {
		return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("judge %s still has %d pending cases", judgeID, n))
	}
	s.lanes[idx].judge = 0
	delete(s.byJudge, judgeID)
	return nil
}

// Lane returns the lane bound to judgeID.
func (s *Scheduler) Lane(judgeID id.EntityID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byJudge[judgeID]
	return idx, ok
}

// Enqueue places an ongoing lawsuit into its judge's lane.
func (s *Scheduler) Enqueue(l *models.Lawsuit) error {
	if err := checkSchedulable(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.laneOf(l.JudgeID)
	if err != nil {
		return err
	}
	if _, ok := s.queued[l.ID]; ok {
		return dErrors.New(dErrors.CodeInvalidStateTransition, fmt.Sprintf("lawsuit %s is already scheduled", l.ID))
	}
	s.insert(idx, l)
	return nil
}

// Dequeue removes and returns the earliest filed lawsuit in the judge's lane.
// The lawsuit is then in progress and is not re-enqueued unless rescheduled.
func (s *Scheduler) Dequeue(judgeID id.EntityID) (id.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.laneOf(judgeID)
	if err != nil {
		return 0, err
	}
	e, ok := s.lanes[idx].queue.DeleteMin()
	if !ok {
		return 0, ErrEmpty
	}
	delete(s.queued, e.id)
	return e.id, nil
}

// Reschedule moves a lawsuit into newJudgeID's lane, wherever it was before.
// Nothing changes if the target lane is unknown.
func (s *Scheduler) Reschedule(l *models.Lawsuit, newJudgeID id.EntityID) error {
	if newJudgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, "target judge is required")
	}
	if !l.IsStillGoing() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is %s and cannot be scheduled", l.ID, l.Status))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.laneOf(newJudgeID)
	if err != nil {
		return err
	}
	s.drop(l.ID)
	s.insert(idx, l)
	return nil
}

// Drop removes a lawsuit from whichever lane holds it and reports whether it
// was queued.
func (s *Scheduler) Drop(lawsuitID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drop(lawsuitID)
}

// Contains reports whether the lawsuit waits in some lane.
func (s *Scheduler) Contains(lawsuitID id.EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.queued[lawsuitID]
	return ok
}

// Pending returns the judge's lane in service order without changing it.
func (s *Scheduler) Pending(judgeID id.EntityID) ([]id.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.laneOf(judgeID)
	if err != nil {
		return nil, err
	}
	q := s.lanes[idx].queue
	out := make([]id.EntityID, 0, q.Len())
	q.Ascend(func(e entry) bool {
		out = append(out, e.id)
		return true
	})
	return out, nil
}

// Depths returns the number of pending cases per bound judge.
func (s *Scheduler) Depths() map[id.EntityID]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[id.EntityID]int, len(s.byJudge))
	for judge, idx := range s.byJudge {
		out[judge] = s.lanes[idx].queue.Len()
	}
	return out
}

func checkSchedulable(l *models.Lawsuit) error {
	if l.JudgeID.IsNil() {
		return dErrors.New(dErrors.CodeUnassignedJudge, fmt.Sprintf("lawsuit %s has no judge", l.ID))
	}
	if !l.IsStillGoing() {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			fmt.Sprintf("lawsuit %s is %s and cannot be scheduled", l.ID, l.Status))
	}
	return nil
}

func (s *Scheduler) laneOf(judgeID id.EntityID) (int, error) {
	idx, ok := s.byJudge[judgeID]
	if !ok {
		return 0, dErrors.New(dErrors.CodeUnknownJudge, fmt.Sprintf("judge %s has no lane", judgeID))
	}
	return idx, nil
}

func (s *Scheduler) insert(idx int, l *models.Lawsuit) {
	e := entry{filedAt: l.FiledAt, id: l.ID}
	s.lanes[idx].queue.ReplaceOrInsert(e)
	s.queued[l.ID] = queuedAt{lane: idx, entry: e}
}

func (s *Scheduler) drop(lawsuitID id.EntityID) bool {
	at, ok := s.queued[lawsuitID]
	if !ok {
		return false
	}
	s.lanes[at.lane].queue.Delete(at.entry)
	delete(s.queued, lawsuitID)
	return true
}
