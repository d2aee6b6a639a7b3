package msg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/vmihailenco/msgpack.v2"
)

func TestEncodeDecodeReport(t *testing.T) {
	report1 := Report{
		Start:     1000,
		End:       1000000,
		Workers:   2,
		ElapsedNS: 1500000,
		Results: []WorkerResult{
			{Index: 0, RemoteAddr: "127.0.0.1:40000", Start: 1000, End: 500499, Status: "success", Result: "41538", ElapsedNS: 700000},
			{Index: 1, RemoteAddr: "127.0.0.1:40001", Start: 500500, End: 1000000, Status: "failed", Kind: "protocol", Error: "protocol error: connection closed before a line was received"},
		},
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	require.NoError(t, enc.Encode(&report1))

	var report2 Report
	dec := msgpack.NewDecoder(&buf)
	require.NoError(t, dec.Decode(&report2))
	require.Equal(t, report1, report2)
}
