package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Decoding real protocol-buffer wire bytes is explicitly external (spec.md
// §1). This module's frontend and journal-replay both need *some* concrete
// encoding to round-trip ClientMessage through raw bytes end to end, so
// Encode/Decode use encoding/gob as the stand-in codec described in
// SPEC_FULL.md §11.3 — deliberately stdlib, since reaching for a second
// real serialization library here would mean re-implementing the
// intentionally-external protobuf layer rather than serving a SPEC_FULL
// component.
func init() {
	gob.Register(Accept{})
	gob.Register(Reject{})
	gob.Register(Exit{})
	gob.Register(Restart{})
	gob.Register(Alert{})
	gob.Register(IoBuffer{})
	gob.Register(Suspend{})
	gob.Register(WindowSize{})
}

// Encode renders payload as the raw bytes a ClientMessage carries on the
// wire (and, for the journal sink, persists verbatim).
func Encode(payload Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses raw bytes produced by Encode back into a Payload.
func Decode(raw []byte) (Payload, error) {
	var payload Payload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("wire: decode: %w", err)
	}
	return payload, nil
}
