// Package msg defines the serializable form of a coordinator report.
package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// Report is the serializable outcome of one coordinator run.
type Report struct {
	Start     int64          `json:"start"`
	End       int64          `json:"end"`
	Workers   int            `json:"workers"`
	ElapsedNS int64          `json:"elapsed_ns"`
	Results   []WorkerResult `json:"results"`
}

var (
	_ msgpack.CustomEncoder = &Report{}
	_ msgpack.CustomDecoder = &Report{}
)

func (r *Report) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.Start, r.End, r.Workers, r.ElapsedNS, r.Results)
}

func (r *Report) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&r.Start, &r.End, &r.Workers, &r.ElapsedNS, &r.Results)
}
