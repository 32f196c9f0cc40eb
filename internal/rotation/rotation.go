// Package rotation holds the two attorney FIFOs: the pool of state attorneys
// assigned round robin, and the queue of lawyers applying to join it.
package rotation

import (
	"fmt"
	"sync"

	"courthouse/internal/sentinel"
	id "courthouse/pkg/domain"
)

var (
	// ErrExhausted is returned when the pool has too few attorneys.
	ErrExhausted = sentinel.ErrExhausted
	// ErrEmpty is returned when the applicant queue has nobody waiting.
	ErrEmpty = sentinel.ErrEmpty
)

// Pool rotates state attorneys. Assignment takes the head and re-appends it at
// the tail, so every attorney gets a turn before anyone gets a second.
type Pool struct {
	mu    sync.Mutex
	queue fifo
}

func NewPool() *Pool {
	return &Pool{queue: newFIFO()}
}

// Enroll appends lawyerID at the tail. Enrolling a member again is a no-op and
// reports false.
func (p *Pool) Enroll(lawyerID id.EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.pushBack(lawyerID)
}

// AssignNext hands the head attorney to record and then rotates them to the
// tail. If record fails the rotation is left untouched. record runs under the
// pool lock and must not call back into the pool.
func (p *Pool) AssignNext(record func(lawyerID id.EntityID) error) (id.EntityID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	head, ok := p.queue.front()
	if !ok {
		return 0, ErrExhausted
	}
	if record != nil {
		if err := record(head); err != nil {
			return 0, err
		}
	}
	p.queue.moveToBack(head)
	return head, nil
}

// AssignDistinct takes the first n attorneys in rotation order as one turn.
// It fails with ErrExhausted when fewer than n are enrolled, and leaves the
// rotation untouched when record fails.
func (p *Pool) AssignDistinct(n int, record func(lawyerIDs []id.EntityID) error) ([]id.EntityID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 1 {
		return nil, fmt.Errorf("assign %d attorneys: %w", n, sentinel.ErrInvalidInput)
	}
	if p.queue.len() < n {
		return nil, fmt.Errorf("need %d attorneys, pool has %d: %w", n, p.queue.len(), ErrExhausted)
	}
	picked := p.queue.snapshot()[:n]
	if record != nil {
		if err := record(picked); err != nil {
			return nil, err
		}
	}
	for _, lawyerID := range picked {
		p.queue.moveToBack(lawyerID)
	}
	return picked, nil
}

// Withdraw detaches lawyerID and reports whether they were enrolled.
func (p *Pool) Withdraw(lawyerID id.EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.remove(lawyerID)
}

func (p *Pool) Contains(lawyerID id.EntityID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.contains(lawyerID)
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

// Members returns the rotation order, next attorney first.
func (p *Pool) Members() []id.EntityID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.snapshot()
}

// Queue holds lawyers applying to become state attorneys, oldest first.
type Queue struct {
	mu    sync.Mutex
	queue fifo
}

func NewQueue() *Queue {
	return &Queue{queue: newFIFO()}
}

// Submit appends an applicant. Submitting twice is a no-op and reports false.
func (q *Queue) Submit(lawyerID id.EntityID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.pushBack(lawyerID)
}

// Peek returns the oldest applicant without removing them.
func (q *Queue) Peek() (id.EntityID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	head, ok := q.queue.front()
	if !ok {
		return 0, ErrEmpty
	}
	return head, nil
}

// Approve pops the oldest applicant after promote succeeds. promote flips the
// state-attorney flag and enrolls the lawyer; on error the applicant stays at
// the head. promote runs under the queue lock.
func (q *Queue) Approve(promote func(lawyerID id.EntityID) error) (id.EntityID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	head, ok := q.queue.front()
	if !ok {
		return 0, ErrEmpty
	}
	if promote != nil {
		if err := promote(head); err != nil {
			return 0, err
		}
	}
	q.queue.remove(head)
	return head, nil
}

// Reject pops the oldest applicant.
func (q *Queue) Reject() (id.EntityID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	head, ok := q.queue.front()
	if !ok {
		return 0, ErrEmpty
	}
	q.queue.remove(head)
	return head, nil
}

// Withdraw removes an applicant from anywhere in the queue.
func (q *Queue) Withdraw(lawyerID id.EntityID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.remove(lawyerID)
}

func (q *Queue) Contains(lawyerID id.EntityID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.contains(lawyerID)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.len()
}

// Members returns applicants oldest first.
func (q *Queue) Members() []id.EntityID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queue.snapshot()
}
