package rangeworkers

import (
	"strconv"
	"strings"
)

// FormatInterval encodes iv as the range line sent to a worker, without the
// trailing newline.
func FormatInterval(iv Interval) string {
	return strconv.FormatInt(iv.Start, 10) + " " + strconv.FormatInt(iv.End, 10)
}

// ParseInterval decodes a range line of two whitespace separated integers.
func ParseInterval(line string) (Interval, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Interval{}, &ProtocolError{Line: line, Reason: "range line must have two integers"}
	}
	start, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Interval{}, &ProtocolError{Line: line, Reason: "invalid range start", Err: err}
	}
	end, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Interval{}, &ProtocolError{Line: line, Reason: "invalid range end", Err: err}
	}
	return Interval{Start: start, End: end}, nil
}
