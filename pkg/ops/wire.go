package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"canvashost/pkg/canvaserr"
	"canvashost/pkg/logging"
)

// maxLineSize bounds one request line on the wire.
const maxLineSize = 64 << 20

// Request is one JSON-lines call.
type Request struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Op   string          `json:"op"`
	Args []any           `json:"args,omitempty"`
}

// Response answers one Request. Exactly one of Result or Error is set for
// operations that return a value; void operations carry neither.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result any             `json:"result,omitempty"`
	Error  *WireError      `json:"error,omitempty"`
}

// WireError is the JSON form of a *canvaserr.Error.
type WireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func wireError(err error) *WireError {
	return &WireError{Kind: canvaserr.KindOf(err).String(), Message: err.Error()}
}

// Serve reads newline-delimited JSON requests from r and writes one
// response line per request to w, in order. Blank lines are skipped. It
// returns nil at EOF and ctx.Err() when ctx is cancelled between requests.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := d.handleLine(line)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleLine(line []byte) Response {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		logging.Logger().Warn("malformed request", "err", err)
		return Response{Error: wireError(invalid("malformed request: %v", err))}
	}

	result, err := d.Call(req.Op, req.Args...)
	if err != nil {
		return Response{ID: req.ID, Error: wireError(err)}
	}
	return Response{ID: req.ID, Result: result}
}
