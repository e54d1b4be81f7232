// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

// StaticIssuerSource is a synchronous [CertIssuerSource] backed by an
// in-memory set of certificates indexed by subject name. It is the source
// used for intermediates supplied up front (files, TLS handshake extras).
//
// Certificates must be added before path building starts; the source is not
// internally synchronized.
type StaticIssuerSource struct {
	bySubject map[string][]*Certificate
}

// NewStaticIssuerSource creates an empty StaticIssuerSource.
func NewStaticIssuerSource() *StaticIssuerSource {
	return &StaticIssuerSource{bySubject: make(map[string][]*Certificate)}
}

// AddCert adds a certificate to the set. Duplicates are kept; the path
// builder deduplicates candidates by Name+SPKI.
func (s *StaticIssuerSource) AddCert(cert *Certificate) {
	name := string(cert.RawSubject)
	s.bySubject[name] = append(s.bySubject[name], cert)
}

// Len returns the number of stored certificates.
func (s *StaticIssuerSource) Len() int {
	n := 0
	for _, certs := range s.bySubject {
		n += len(certs)
	}
	return n
}

// SyncGetIssuersOf returns all stored certificates whose subject name equals
// cert's issuer name, in insertion order.
func (s *StaticIssuerSource) SyncGetIssuersOf(cert *Certificate) []*Certificate {
	return s.bySubject[string(cert.RawIssuer)]
}

// AsyncGetIssuersOf always returns nil; a static set has nothing to look up
// asynchronously.
func (s *StaticIssuerSource) AsyncGetIssuersOf(cert *Certificate) IssuerRequest {
	return nil
}
