package objrepo

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idEncoding produces URL-safe, unpadded identifiers from random bytes.
var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// generateID returns a new 16-character opaque identifier, the format used for
// RepositoryRecord.id. It retries on generation error with a 1ms backoff up to
// 10 times and panics only if every attempt fails (which should never happen
// under normal conditions).
func generateID() string {
	var err error
	for i := 0; i < 10; i++ {
		var u uuid.UUID
		u, err = uuid.NewRandom()
		if err == nil {
			// 26 base32 chars encode 16 bytes; take the first 16 for a compact opaque id.
			return strings.ToLower(idEncoding.EncodeToString(u[:]))[:16]
		}
		time.Sleep(time.Millisecond)
	}
	panic(err)
}
