// Package compute provides the units of work a worker runs on its interval.
//
// A Func turns an inclusive range into the single reply line sent back to the
// coordinator. Two strategies are available: ModeList lists every prime in the
// range and ModeCount reports how many there are.
package compute

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NoPrimesFound is the list mode reply for a range without primes.
const NoPrimesFound = "No primes found"

// Func computes the reply for the inclusive range [start, end].
// An empty range (start > end) has no matches.
type Func func(start, end int64) string

// Mode selects a compute strategy.
type Mode string

const (
	ModeList  Mode = "list"
	ModeCount Mode = "count"
)

// ForMode returns the Func implementing mode.
func ForMode(mode Mode) (Func, error) {
	switch mode {
	case ModeList:
		return ListPrimes, nil
	case ModeCount:
		return CountPrimes, nil
	}
	return nil, errors.Errorf("unknown compute mode %q", mode)
}

// IsPrime reports whether n is prime using trial division by 2 and the odd
// numbers up to floor(sqrt(n)).
func IsPrime(n int64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := int64(3); d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// ListPrimes returns the primes in [start, end] as a comma separated list, or
// NoPrimesFound.
func ListPrimes(start, end int64) string {
	var b strings.Builder
	for n := start; n <= end; n++ {
		if IsPrime(n) {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatInt(n, 10))
		}
		if n == end {
			break
		}
	}
	if b.Len() == 0 {
		return NoPrimesFound
	}
	return b.String()
}

// CountPrimes returns the number of primes in [start, end] in decimal.
func CountPrimes(start, end int64) string {
	var count int64
	for n := start; n <= end; n++ {
		if IsPrime(n) {
			count++
		}
		if n == end {
			break
		}
	}
	return strconv.FormatInt(count, 10)
}

// ParseCount decodes a count mode reply.
func ParseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid count reply")
	}
	return n, nil
}

// ParseList decodes a list mode reply.
func ParseList(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == NoPrimesFound {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	primes := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid list reply")
		}
		primes[i] = n
	}
	return primes, nil
}
