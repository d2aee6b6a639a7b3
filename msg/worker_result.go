package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// WorkerResult is the serializable outcome of one worker.
type WorkerResult struct {
	Index      int    `json:"index"`
	RemoteAddr string `json:"remote_addr"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	Status     string `json:"status"`
	Result     string `json:"result,omitempty"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	ElapsedNS  int64  `json:"elapsed_ns"`
}

var (
	_ msgpack.CustomEncoder = &WorkerResult{}
	_ msgpack.CustomDecoder = &WorkerResult{}
)

func (r *WorkerResult) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.Index, r.RemoteAddr, r.Start, r.End, r.Status, r.Result, r.Kind, r.Error, r.ElapsedNS)
}

func (r *WorkerResult) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&r.Index, &r.RemoteAddr, &r.Start, &r.End, &r.Status, &r.Result, &r.Kind, &r.Error, &r.ElapsedNS)
}
