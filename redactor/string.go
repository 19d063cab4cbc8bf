// Package redactor keeps secrets out of marshaled output unless explicitly
// opted in with its Encoder.
package redactor

import (
	"encoding/json"
	"io"
	"runtime"
)

// String marshals as null from every encoder except redactor.Encoder
type String string

// MarshalJSON implements json.Marshaler
func (s String) MarshalJSON() ([]byte, error) {
	if isRedacted() {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// Encoder marshals values to JSON with redacted values included.
// Only use when persisting to trusted storage, never over HTTP.
type Encoder json.Encoder

// NewEncoder creates an Encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return (*Encoder)(json.NewEncoder(w))
}

func (e *Encoder) jsonEncoder() *json.Encoder {
	return (*json.Encoder)(e)
}

// Encode calls json.Encoder.Encode with redaction disabled
func (e *Encoder) Encode(v interface{}) error {
	return e.jsonEncoder().Encode(v)
}

// SetIndent calls json.Encoder.SetIndent
func (e *Encoder) SetIndent(prefix, indent string) {
	e.jsonEncoder().SetIndent(prefix, indent)
}

// SetEscapeHTML calls json.Encoder.SetEscapeHTML
func (e *Encoder) SetEscapeHTML(on bool) {
	e.jsonEncoder().SetEscapeHTML(on)
}

// isRedacted reports whether the current marshal was started by something
// other than redactor.Encoder, by scanning up the call stack
func isRedacted() bool {
	var pc uintptr
	ok := true
	for caller := 0; ok; caller++ {
		pc, _, _, ok = runtime.Caller(caller)
		if ok && runtime.FuncForPC(pc).Name() == "pocketbook/redactor.(*Encoder).Encode" {
			return false
		}
	}
	return true
}
