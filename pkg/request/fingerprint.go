package request

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

const fingerprintVersion = "kiln.request.v1"

// Fingerprint returns the cache and deduplication key of a revealed call.
//
// Every component is length-prefixed and written in a fixed order: method, URL,
// headers in declared order, body content type and body. Header order is part of
// the identity; callers wanting order-independent keys must sort headers first.
func Fingerprint(d Details) string {
	h := sha256.New()

	writeField(h, fingerprintVersion)
	writeField(h, d.Verb())
	writeField(h, d.URL)

	writeCount(h, len(d.Headers))
	for _, hdr := range d.Headers {
		writeField(h, hdr.Name)
		writeField(h, hdr.Value)
	}

	writeField(h, d.Body.mime)
	writeField(h, d.Body.content)

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	writeCount(h, len(s))
	h.Write([]byte(s))
}

func writeCount(h hash.Hash, n int) {
	h.Write(binary.BigEndian.AppendUint64(nil, uint64(n)))
}
