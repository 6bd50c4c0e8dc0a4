package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// encoding to change without colliding with old hashes.
const (
	DomainDocument = "bulletml/document/v1"
	DomainTrace    = "bulletml/trace/v1"
)

// HashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash identifies a document by content. Source positions and
// formatting do not contribute, so re-serialising a document keeps its hash.
func DocumentHash(doc *Document) (string, error) {
	data, err := DocumentJSON(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return HashWithDomain(DomainDocument, data), nil
}

// MustDocumentHash is like DocumentHash but panics on error.
func MustDocumentHash(doc *Document) string {
	h, err := DocumentHash(doc)
	if err != nil {
		panic(err)
	}
	return h
}
