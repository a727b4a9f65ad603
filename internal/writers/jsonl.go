// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"annotree/internal/jsonlutil"
	"annotree/pkg/api"
)

// StartTreeJSONLWriter streams each tree as one JSON line (v1).
func StartTreeJSONLWriter(out io.Writer, bufSize int, flush bool) (chan<- api.TreeV1, <-chan error) {
	return jsonlutil.Start[api.TreeV1](out, bufSize, flush,
		func(enc *json.Encoder, t api.TreeV1) error {
			return enc.Encode(t)
		},
		IsBrokenPipe,
	)
}

// StartEventWriter streams change events as JSONL. With flush set every
// event is flushed as soon as it is written, for tailing a live stream.
func StartEventWriter(out io.Writer, bufSize int, flush bool) (chan<- api.EventV1, <-chan error) {
	return jsonlutil.Start[api.EventV1](out, bufSize, flush,
		func(enc *json.Encoder, ev api.EventV1) error {
			return enc.Encode(ev)
		},
		IsBrokenPipe,
	)
}
