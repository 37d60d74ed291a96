package pathutil

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// UniqueSuffix returns a fresh hex string suitable for substituting into a
// mkstemp-style XXXXXX template. Grounded in internal/relay/pty_relay.go's
// uuid.New().String()[:8] session-id minting pattern.
func UniqueSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// CreateExclusive tries to create dir/prefix+<suffix> with O_CREAT|O_EXCL,
// retrying with a fresh suffix on collision, up to a small bound. It returns
// the open file and the name actually used (not the full path). This is the
// Go analog of mkstemp(3) used by both journal_create's incoming-file
// minting and journal_finish's guaranteed-unique outgoing name.
func CreateExclusive(dir, prefix string, perm os.FileMode) (*os.File, string, error) {
	const maxAttempts = 8
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		name := prefix + UniqueSuffix()
		f, err := os.OpenFile(dir+string(os.PathSeparator)+name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return f, name, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
		lastErr = err
	}
	return nil, "", lastErr
}

// LogIDPath formats a fresh NN/NN/NN style log-id path segment from a UUID,
// the local sink's analog of the journal's mkstemp template.
func LogIDPath() string {
	s := strings.ReplaceAll(uuid.New().String(), "-", "")
	return s[0:2] + "/" + s[2:4] + "/" + s[4:6]
}
