package rangeworkers

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Interval is an inclusive integer range [Start, End] assigned to one worker.
// An interval with Start > End is empty.
type Interval struct {
	Start int64
	End   int64
}

// Empty reports whether the interval contains no integers.
func (iv Interval) Empty() bool {
	return iv.Start > iv.End
}

// Len returns the number of integers in the interval. The count of the whole
// int64 range does not fit and is reported as 0.
func (iv Interval) Len() uint64 {
	if iv.Empty() {
		return 0
	}
	return uint64(iv.End) - uint64(iv.Start) + 1
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d]", iv.Start, iv.End)
}

// Partition divides [start, end] into n contiguous intervals in order.
//
// Every interval but the last has size (end-start)/n and the last one ends at
// end, absorbing the remainder. When n exceeds end-start the size is zero and
// all but the last interval are empty. The span is computed in uint64 so any
// start <= end is accepted, including the whole int64 range.
func Partition(start, end int64, n int) ([]Interval, error) {
	if n < 1 {
		return nil, errors.Errorf("partition: worker count must be positive, got %d", n)
	}
	if start > end {
		return nil, errors.Errorf("partition: start %d is greater than end %d", start, end)
	}
	span := uint64(end) - uint64(start)
	size := span / uint64(n)
	intervals := make([]Interval, n)
	for i := range intervals {
		// offset <= span, so start+offset stays within [start, end].
		s := int64(uint64(start) + uint64(i)*size)
		switch {
		case i == n-1:
			intervals[i] = Interval{Start: s, End: end}
		case size == 0:
			intervals[i] = emptyAt(s)
		default:
			intervals[i] = Interval{Start: s, End: int64(uint64(s) + size - 1)}
		}
	}
	return intervals, nil
}

// emptyAt returns an empty interval positioned at s.
func emptyAt(s int64) Interval {
	if s == math.MinInt64 {
		return Interval{Start: s + 1, End: s}
	}
	return Interval{Start: s, End: s - 1}
}
