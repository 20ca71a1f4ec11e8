package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix leaves room to
// change the algorithm.
const (
	DomainSteps = "tickseq/steps/v1"
	DomainTrace = "tickseq/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StepsDigest returns the hex digest of the canonical JSON of steps. Two
// runs with the same digest took the same steps in the same order, so a
// journal read back from the store can be compared with an in-memory run.
func StepsDigest(steps []Step) (string, error) {
	list := make([]any, len(steps))
	for i, s := range steps {
		list[i] = s.Canonical()
	}
	data, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}
	return hashWithDomain(DomainSteps, data), nil
}

// TraceDigest returns the hex digest of a canonical trace snapshot.
func TraceDigest(canonical []byte) string {
	return hashWithDomain(DomainTrace, canonical)
}
