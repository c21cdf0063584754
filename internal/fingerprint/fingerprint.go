// SPDX-License-Identifier: MPL-2.0

// Package fingerprint derives the registry's content identifiers locally.
//
// An identifier is the 32-bit FNV-1a hash of the content, read as an
// unsigned integer and written in base58 with the Bitcoin alphabet. The
// registry stores every script under this identifier plus the file
// extension, so a locally computed fingerprint can be compared with a
// script reference returned by the server without another round trip.
//
// FNV-1a is not collision resistant. Fingerprints are used to reason about
// deduplication, never to authenticate content.
package fingerprint

import (
	"encoding/binary"
	"hash/fnv"
	"path"
	"strings"

	"github.com/mr-tron/base58"
)

// Of returns the fingerprint of content.
func Of(content []byte) string {
	h := fnv.New32a()
	_, _ = h.Write(content) // hash.Hash writes never fail
	return encode(h.Sum32())
}

// String returns the fingerprint of the UTF-8 bytes of s.
func String(s string) string {
	return Of([]byte(s))
}

// Matches reports whether scriptRef names the content identified by id.
// The comparison ignores the extension and any leading path.
func Matches(id, scriptRef string) bool {
	if id == "" || scriptRef == "" {
		return false
	}
	base := path.Base(scriptRef)
	return strings.TrimSuffix(base, path.Ext(base)) == id
}

// encode renders sum as a base58 number. Leading zero bytes are stripped
// so the result is the numeric encoding rather than the byte encoding,
// which would prefix a '1' per zero byte.
func encode(sum uint32) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], sum)
	b := buf[:]
	for len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	return base58.Encode(b)
}
