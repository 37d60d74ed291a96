package frontend

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// encodeReply gob-encodes a reply value directly (logIDReply/errorReply
// aren't wire.Payload variants, so internal/wire's codec doesn't cover
// them), using the same stand-in encoding the client-message frames use.
func encodeReply(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("frontend: encode reply: %w", err)
	}
	return buf.Bytes(), nil
}
