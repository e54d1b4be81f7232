// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
)

// Key is a content-addressed certificate identity: the SHA-256 digests of the
// encoded subject name and of the SubjectPublicKeyInfo. Two independently
// parsed certificates with the same subject and public key produce equal
// Keys, which is what trust matching and loop prevention compare instead of
// pointer identity.
type Key struct {
	subject [sha256.Size]byte
	spki    [sha256.Size]byte
}

// Certificate wraps an [x509.Certificate] with the precomputed identity Key
// used throughout path building. It is immutable once constructed and safe
// to share between candidate paths.
type Certificate struct {
	*x509.Certificate

	key Key
}

// New wraps a parsed certificate for use in path building.
//
// Parameters:
//   - cert: Parsed certificate to wrap
//
// Returns:
//   - *Certificate: Wrapped certificate with identity key computed
func New(cert *x509.Certificate) *Certificate {
	return &Certificate{
		Certificate: cert,
		key: Key{
			subject: sha256.Sum256(cert.RawSubject),
			spki:    sha256.Sum256(cert.RawSubjectPublicKeyInfo),
		},
	}
}

// NewList wraps a slice of parsed certificates, preserving order.
func NewList(certs []*x509.Certificate) []*Certificate {
	out := make([]*Certificate, 0, len(certs))
	for _, cert := range certs {
		out = append(out, New(cert))
	}
	return out
}

// Key returns the Name+SPKI identity of the certificate.
func (c *Certificate) Key() Key { return c.key }

// SameNameAndKey reports whether two certificates share both subject name and
// public key, regardless of object identity or other fields.
func (c *Certificate) SameNameAndKey(other *Certificate) bool {
	return c.key == other.key
}

// IssuedBy reports whether the certificate's issuer name equals the subject
// name of issuer, compared byte-for-byte on the encoded DER.
func (c *Certificate) IssuedBy(issuer *Certificate) bool {
	return bytes.Equal(c.RawIssuer, issuer.RawSubject)
}

// Fingerprint returns the hex-encoded SHA-256 digest of the certificate's
// DER encoding.
func (c *Certificate) Fingerprint() string {
	sum := sha256.Sum256(c.Raw)
	return hex.EncodeToString(sum[:])
}
