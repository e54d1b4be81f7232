// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

// TrustStore holds the set of trust anchors for one verification, indexed by
// encoded subject name. Duplicates are permitted; the trust test below is
// value-based, so storing the same anchor twice is harmless.
//
// A TrustStore is populated before path building starts and read-only while a
// [PathBuilder] is running. It is not internally synchronized.
type TrustStore struct {
	anchors map[string][]*Certificate
}

// NewTrustStore creates an empty TrustStore.
func NewTrustStore() *TrustStore {
	return &TrustStore{anchors: make(map[string][]*Certificate)}
}

// AddTrustedCertificate registers anchor as an unconditionally trusted root.
func (s *TrustStore) AddTrustedCertificate(anchor *Certificate) {
	name := string(anchor.RawSubject)
	s.anchors[name] = append(s.anchors[name], anchor)
}

// FindAnchorsByName returns all anchors whose encoded subject name equals
// rawSubject byte-for-byte, in insertion order. The returned slice must not
// be modified.
func (s *TrustStore) FindAnchorsByName(rawSubject []byte) []*Certificate {
	return s.anchors[string(rawSubject)]
}

// IsTrusted reports whether cert is a trust anchor. A certificate is trusted
// if it is the identical object as a stored anchor, or if a stored anchor
// shares its subject name and public key. The latter allows a reissuance of
// a trusted name/key pair to be accepted without object identity.
func (s *TrustStore) IsTrusted(cert *Certificate) bool {
	for _, anchor := range s.anchors[string(cert.RawSubject)] {
		if anchor == cert || anchor.SameNameAndKey(cert) {
			return true
		}
	}
	return false
}

// Len returns the number of stored anchors, counting duplicates.
func (s *TrustStore) Len() int {
	n := 0
	for _, anchors := range s.anchors {
		n += len(anchors)
	}
	return n
}
