// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or use this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	x509path "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/path"
	"github.com/stretchr/testify/require"
)

var serialCounter atomic.Int64

// genKey generates a fresh P-256 key for test certificates.
func genKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

// issueOptions tweak a test certificate away from the valid-CA default.
type issueOptions struct {
	notBefore time.Time
	notAfter  time.Time
	notCA     bool
	dnsNames  []string
	aiaURLs   []string
}

// issue creates a certificate for subjectCN over subjectKey's public key,
// signed by issuerKey under issuerCN. Passing the same CN and key for both
// sides produces a self-signed certificate. Reusing a subject key across
// calls models reissued or cross-signed certificates.
func issue(t *testing.T, subjectCN string, subjectKey *ecdsa.PrivateKey, issuerCN string, issuerKey *ecdsa.PrivateKey, opts ...issueOptions) *x509path.Certificate {
	t.Helper()

	opt := issueOptions{}
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.notBefore.IsZero() {
		opt.notBefore = time.Now().Add(-time.Hour)
	}
	if opt.notAfter.IsZero() {
		opt.notAfter = time.Now().Add(24 * time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serialCounter.Add(1)),
		Subject:               pkix.Name{CommonName: subjectCN},
		NotBefore:             opt.notBefore,
		NotAfter:              opt.notAfter,
		IsCA:                  !opt.notCA,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		DNSNames:              opt.dnsNames,
		IssuingCertificateURL: opt.aiaURLs,
	}
	if opt.notCA {
		tmpl.KeyUsage = x509.KeyUsageDigitalSignature
	}

	// The parent template only needs the fields that end up in the issued
	// certificate's issuer name.
	parent := &x509.Certificate{
		SerialNumber:          big.NewInt(serialCounter.Add(1)),
		Subject:               pkix.Name{CommonName: issuerCN},
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	if subjectCN == issuerCN && subjectKey == issuerKey {
		parent = tmpl
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &subjectKey.PublicKey, issuerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return x509path.New(cert)
}

// reparse produces a distinct in-memory certificate object with identical
// DER, for exercising value-identity rather than pointer-identity behavior.
func reparse(t *testing.T, cert *x509path.Certificate) *x509path.Certificate {
	t.Helper()
	parsed, err := x509.ParseCertificate(cert.Raw)
	require.NoError(t, err)
	return x509path.New(parsed)
}

// syncSource is a test double answering only synchronous queries.
type syncSource struct {
	mu      sync.Mutex
	certs   []*x509path.Certificate
	queries int
}

func newSyncSource(certs ...*x509path.Certificate) *syncSource {
	return &syncSource{certs: certs}
}

func (s *syncSource) addCert(cert *x509path.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs = append(s.certs, cert)
}

func (s *syncSource) syncQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *syncSource) SyncGetIssuersOf(cert *x509path.Certificate) []*x509path.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	var out []*x509path.Certificate
	for _, c := range s.certs {
		if cert.IssuedBy(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *syncSource) AsyncGetIssuersOf(cert *x509path.Certificate) x509path.IssuerRequest {
	return nil
}

// asyncSource is a test double that answers only asynchronous queries,
// delivering each matching issuer as its own batch. With repeatBatches set it
// sends every batch twice, modeling a source that returns duplicates.
type asyncSource struct {
	mu            sync.Mutex
	certs         []*x509path.Certificate
	queries       int
	cancels       int
	repeatBatches bool

	// hold, when non-nil, delays batch delivery until closed.
	hold chan struct{}
}

func newAsyncSource(certs ...*x509path.Certificate) *asyncSource {
	return &asyncSource{certs: certs}
}

func (s *asyncSource) asyncQueries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *asyncSource) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func (s *asyncSource) SyncGetIssuersOf(cert *x509path.Certificate) []*x509path.Certificate {
	return nil
}

func (s *asyncSource) AsyncGetIssuersOf(cert *x509path.Certificate) x509path.IssuerRequest {
	s.mu.Lock()
	s.queries++
	var batches [][]*x509path.Certificate
	for _, c := range s.certs {
		if cert.IssuedBy(c) {
			batches = append(batches, []*x509path.Certificate{c})
			if s.repeatBatches {
				batches = append(batches, []*x509path.Certificate{c})
			}
		}
	}
	hold := s.hold
	s.mu.Unlock()

	req := &staticAsyncRequest{
		source:   s,
		ch:       make(chan []*x509path.Certificate),
		canceled: make(chan struct{}),
	}
	go req.deliver(batches, hold)
	return req
}

// staticAsyncRequest delivers a fixed set of batches from a goroutine.
type staticAsyncRequest struct {
	source     *asyncSource
	ch         chan []*x509path.Certificate
	canceled   chan struct{}
	cancelOnce sync.Once
}

func (r *staticAsyncRequest) Batches() <-chan []*x509path.Certificate { return r.ch }

func (r *staticAsyncRequest) Cancel() {
	r.cancelOnce.Do(func() {
		r.source.mu.Lock()
		r.source.cancels++
		r.source.mu.Unlock()
		close(r.canceled)
	})
}

func (r *staticAsyncRequest) deliver(batches [][]*x509path.Certificate, hold chan struct{}) {
	defer close(r.ch)

	if hold != nil {
		select {
		case <-hold:
		case <-r.canceled:
			return
		}
	}

	for _, batch := range batches {
		select {
		case r.ch <- batch:
		case <-r.canceled:
			return
		}
	}
}

// failingVerifier returns a VerifyFunc that rejects every path and records
// each path it saw.
func failingVerifier(paths *[][]*x509path.Certificate) x509path.VerifyFunc {
	var mu sync.Mutex
	return func(path []*x509path.Certificate, at x509path.UTCTime) error {
		mu.Lock()
		defer mu.Unlock()
		if paths != nil {
			*paths = append(*paths, path)
		}
		return x509path.ErrAuthorityInvalid
	}
}

// subjectNames maps a path to its certificates' common names for readable
// assertions.
func subjectNames(path []*x509path.Certificate) []string {
	names := make([]string, len(path))
	for i, cert := range path {
		names[i] = cert.Subject.CommonName
	}
	return names
}
