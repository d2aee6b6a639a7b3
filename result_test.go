package rangeworkers

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResultSetWriteOnce(t *testing.T) {
	rs := newResultSet(2)
	require.False(t, rs.Filled())

	require.NoError(t, rs.set(WorkerResult{Index: 1, Status: StatusSuccess, Result: "3"}))
	require.Error(t, rs.set(WorkerResult{Index: 1, Status: StatusSuccess, Result: "4"}))
	require.Error(t, rs.set(WorkerResult{Index: 2}))

	got, ok := rs.Get(1)
	require.True(t, ok)
	require.Equal(t, "3", got.Result)
	_, ok = rs.Get(0)
	require.False(t, ok)

	results := rs.Results()
	require.Equal(t, StatusFailed, results[0].Status)
	require.Error(t, results[0].Err)

	require.NoError(t, rs.set(WorkerResult{Index: 0, Status: StatusSuccess, Result: "2"}))
	require.True(t, rs.Filled())
}

func TestWorkerResultFail(t *testing.T) {
	var r WorkerResult
	r.fail(&IOError{Op: "read", Err: timeoutError{}})
	require.Equal(t, StatusTimeout, r.Status)
	require.Equal(t, KindTimeout, r.Kind)

	r = WorkerResult{}
	r.fail(&ProtocolError{Reason: "connection closed before a line was received", Err: io.EOF})
	require.Equal(t, StatusFailed, r.Status)
	require.Equal(t, KindProtocol, r.Kind)
}

func TestReportHelpers(t *testing.T) {
	report := &Report{
		Start:   1,
		End:     30,
		Workers: 3,
		Results: []WorkerResult{
			{Index: 0, Interval: Interval{1, 10}, Status: StatusSuccess, Result: "4"},
			{Index: 1, Interval: Interval{11, 20}, Status: StatusSuccess, Result: "4"},
			{Index: 2, Interval: Interval{21, 30}, Status: StatusFailed, Kind: KindIO, Err: io.ErrUnexpectedEOF},
		},
		Elapsed: time.Second,
	}
	require.False(t, report.Complete())
	require.Len(t, report.Failed(), 1)

	total, err := report.SumCounts()
	require.NoError(t, err)
	require.Equal(t, int64(8), total)

	m := report.Message()
	require.Equal(t, int64(time.Second), m.ElapsedNS)
	require.Len(t, m.Results, 3)
	require.Equal(t, "success", m.Results[0].Status)
	require.Equal(t, "failed", m.Results[2].Status)
	require.Equal(t, "io", m.Results[2].Kind)
	require.Equal(t, io.ErrUnexpectedEOF.Error(), m.Results[2].Error)
	require.Equal(t, int64(21), m.Results[2].Start)
}

func TestReportPrimes(t *testing.T) {
	report := &Report{Results: []WorkerResult{
		{Index: 0, Status: StatusSuccess, Result: "2,3,5,7"},
		{Index: 1, Status: StatusSuccess, Result: "No primes found"},
		{Index: 2, Status: StatusSuccess, Result: "11,13"},
	}}
	primes, err := report.Primes()
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3, 5, 7, 11, 13}, primes)

	_, err = report.SumCounts()
	require.Error(t, err)
}
