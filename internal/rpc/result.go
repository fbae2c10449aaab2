package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the outcome of a mutating call: exactly one of ok or err.
// It has no boolean conversion; use Reason to branch.
type Result struct {
	failed bool
	reason string
}

// Ok is the success result, encoded as {"ok":null}.
func Ok() Result {
	return Result{}
}

// Err is a failure result carrying reason, encoded as {"err":reason}.
func Err(reason string) Result {
	return Result{failed: true, reason: reason}
}

// FromError maps nil to Ok and any other error to Err with its message.
func FromError(err error) Result {
	if err == nil {
		return Ok()
	}
	return Err(err.Error())
}

// Reason returns the failure text and true for an err result.
func (r Result) Reason() (string, bool) {
	return r.reason, r.failed
}

func (r Result) String() string {
	if r.failed {
		return "err: " + r.reason
	}
	return "ok"
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.failed {
		return json.Marshal(map[string]string{"err": r.reason})
	}
	return []byte(`{"ok":null}`), nil
}

// UnmarshalJSON accepts exactly one of the two encodings.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if len(raw) != 1 {
		return errors.New("decode result: want exactly one of ok or err")
	}
	if v, ok := raw["ok"]; ok {
		if !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return errors.New("decode result: ok must be null")
		}
		*r = Ok()
		return nil
	}
	v, ok := raw["err"]
	if !ok {
		return errors.New("decode result: want exactly one of ok or err")
	}
	var reason string
	if err := json.Unmarshal(v, &reason); err != nil {
		return fmt.Errorf("decode result err: %w", err)
	}
	*r = Err(reason)
	return nil
}
