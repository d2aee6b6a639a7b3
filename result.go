package rangeworkers

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/hnakamur/rangeworkers/compute"
	"github.com/hnakamur/rangeworkers/msg"
)

// Status is the outcome of one dispatch task.
type Status uint8

const (
	StatusFailed Status = iota
	StatusSuccess
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSuccess:
		return "success"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// WorkerResult is the outcome of sending one interval to one worker.
// Result is set only when Status is StatusSuccess; Kind and Err otherwise.
type WorkerResult struct {
	Index      int
	RemoteAddr string
	Interval   Interval
	Status     Status
	Result     string
	Kind       ErrorKind
	Err        error
	Elapsed    time.Duration
}

func (r *WorkerResult) fail(err error) {
	r.Kind = KindOf(err)
	r.Err = err
	if r.Kind == KindTimeout {
		r.Status = StatusTimeout
	} else {
		r.Status = StatusFailed
	}
}

// ResultSet holds one write-once slot per worker index.
type ResultSet struct {
	slots []*WorkerResult
}

func newResultSet(n int) *ResultSet {
	return &ResultSet{slots: make([]*WorkerResult, n)}
}

func (s *ResultSet) set(r WorkerResult) error {
	if r.Index < 0 || r.Index >= len(s.slots) {
		return errors.Errorf("result index %d out of range [0,%d)", r.Index, len(s.slots))
	}
	if s.slots[r.Index] != nil {
		return errors.Errorf("result slot %d already filled", r.Index)
	}
	s.slots[r.Index] = &r
	return nil
}

// Len returns the number of slots.
func (s *ResultSet) Len() int { return len(s.slots) }

// Get returns the result in slot i and whether the slot is filled.
func (s *ResultSet) Get(i int) (WorkerResult, bool) {
	if i < 0 || i >= len(s.slots) || s.slots[i] == nil {
		return WorkerResult{}, false
	}
	return *s.slots[i], true
}

// Filled reports whether every slot holds a result.
func (s *ResultSet) Filled() bool {
	for _, r := range s.slots {
		if r == nil {
			return false
		}
	}
	return true
}

// Results returns the results in worker index order.
func (s *ResultSet) Results() []WorkerResult {
	results := make([]WorkerResult, len(s.slots))
	for i, r := range s.slots {
		if r == nil {
			results[i] = WorkerResult{Index: i, Status: StatusFailed, Err: errors.New("no result")}
			continue
		}
		results[i] = *r
	}
	return results
}

// Report is the typed outcome of one coordinator run.
type Report struct {
	Start   int64
	End     int64
	Workers int
	Results []WorkerResult
	Elapsed time.Duration
}

// Complete reports whether every worker delivered a result.
func (r *Report) Complete() bool {
	return len(r.Failed()) == 0
}

// Failed returns the results whose status is not StatusSuccess.
func (r *Report) Failed() []WorkerResult {
	var failed []WorkerResult
	for _, res := range r.Results {
		if res.Status != StatusSuccess {
			failed = append(failed, res)
		}
	}
	return failed
}

// SumCounts adds the replies of a count mode run. Failed slots are skipped.
func (r *Report) SumCounts() (int64, error) {
	var total int64
	for _, res := range r.Results {
		if res.Status != StatusSuccess {
			continue
		}
		n, err := compute.ParseCount(res.Result)
		if err != nil {
			return 0, errors.Wrapf(err, "worker %d", res.Index)
		}
		total += n
	}
	return total, nil
}

// Primes concatenates the replies of a list mode run in interval order.
// Failed slots are skipped.
func (r *Report) Primes() ([]int64, error) {
	var primes []int64
	for _, res := range r.Results {
		if res.Status != StatusSuccess {
			continue
		}
		list, err := compute.ParseList(res.Result)
		if err != nil {
			return nil, errors.Wrapf(err, "worker %d", res.Index)
		}
		primes = append(primes, list...)
	}
	return primes, nil
}

// Message converts the report to its serializable form.
func (r *Report) Message() *msg.Report {
	m := &msg.Report{
		Start:     r.Start,
		End:       r.End,
		Workers:   r.Workers,
		ElapsedNS: int64(r.Elapsed),
		Results:   make([]msg.WorkerResult, len(r.Results)),
	}
	for i, res := range r.Results {
		wr := msg.WorkerResult{
			Index:      res.Index,
			RemoteAddr: res.RemoteAddr,
			Start:      res.Interval.Start,
			End:        res.Interval.End,
			Status:     res.Status.String(),
			Result:     res.Result,
			ElapsedNS:  int64(res.Elapsed),
		}
		if res.Err != nil {
			wr.Kind = res.Kind.String()
			wr.Error = res.Err.Error()
		}
		m.Results[i] = wr
	}
	return m
}
