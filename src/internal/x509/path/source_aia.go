// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import (
	"context"
	"crypto/x509"
	"fmt"
	"net/http"
	"time"

	"github.com/H0llyW00dzZ/cert-path-builder/src/internal/helper/gc"
	x509certs "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/certs"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultAIACacheTTL is how long fetched issuer certificates are reusable
// without refetching their AIA URL.
const DefaultAIACacheTTL = 1 * time.Hour

// AIAIssuerSource is an asynchronous [CertIssuerSource] that downloads
// candidate issuers from the CA Issuers URLs in a certificate's Authority
// Information Access extension.
//
// Successful downloads are cached per URL, so repeated queries for the same
// issuer are answered synchronously from the cache without touching the
// network again.
type AIAIssuerSource struct {
	// HTTPConfig controls timeout and User-Agent for fetches. It may be
	// replaced before path building starts.
	HTTPConfig *HTTPConfig

	decoder *x509certs.Certificate
	cache   *gocache.Cache
}

// NewAIAIssuerSource creates an AIA-backed issuer source using the given
// application version for the User-Agent header.
func NewAIAIssuerSource(version string) *AIAIssuerSource {
	return &AIAIssuerSource{
		HTTPConfig: NewHTTPConfig(version),
		decoder:    x509certs.New(),
		cache:      gocache.New(DefaultAIACacheTTL, 2*DefaultAIACacheTTL),
	}
}

// SetCacheTTL replaces the URL cache with one using the given TTL. Must not
// be called while a request is outstanding.
func (s *AIAIssuerSource) SetCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultAIACacheTTL
	}
	s.cache = gocache.New(ttl, 2*ttl)
}

// SyncGetIssuersOf returns issuers previously fetched from cert's AIA URLs
// that are still cached. It never touches the network.
func (s *AIAIssuerSource) SyncGetIssuersOf(cert *Certificate) []*Certificate {
	var out []*Certificate
	for _, url := range cert.IssuingCertificateURL {
		if v, ok := s.cache.Get(url); ok {
			out = append(out, v.([]*Certificate)...)
		}
	}
	return out
}

// AsyncGetIssuersOf begins fetching cert's uncached AIA URLs. It returns nil
// when the certificate carries no AIA URLs or all of them are already cached
// (in which case SyncGetIssuersOf has the answer).
func (s *AIAIssuerSource) AsyncGetIssuersOf(cert *Certificate) IssuerRequest {
	var urls []string
	for _, url := range cert.IssuingCertificateURL {
		if _, ok := s.cache.Get(url); !ok {
			urls = append(urls, url)
		}
	}
	if len(urls) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := &aiaRequest{
		ch:     make(chan []*Certificate, len(urls)),
		cancel: cancel,
	}
	go req.run(ctx, s, urls)
	return req
}

// aiaRequest is the in-flight lookup for one certificate's AIA URLs. Each URL
// that yields certificates produces one batch.
type aiaRequest struct {
	ch     chan []*Certificate
	cancel context.CancelFunc
}

// Batches implements [IssuerRequest].
func (r *aiaRequest) Batches() <-chan []*Certificate { return r.ch }

// Cancel aborts any in-flight fetch; the batch channel closes promptly.
func (r *aiaRequest) Cancel() { r.cancel() }

func (r *aiaRequest) run(ctx context.Context, s *AIAIssuerSource, urls []string) {
	defer close(r.ch)

	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}

		issuers, err := s.fetch(ctx, url)
		if err != nil || len(issuers) == 0 {
			// A failed or empty URL only means this source has nothing for
			// that location; the search continues with other candidates.
			continue
		}

		s.cache.SetDefault(url, issuers)

		select {
		case r.ch <- issuers:
		case <-ctx.Done():
			return
		}
	}
}

// fetch downloads and decodes the certificates at url. The response body may
// be a single DER or PEM certificate, a PEM bundle, or a PKCS#7 blob.
func (s *AIAIssuerSource) fetch(ctx context.Context, url string) ([]*Certificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.HTTPConfig.GetUserAgent())

	resp, err := s.HTTPConfig.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("x509path: AIA fetch %s returned status %d", url, resp.StatusCode)
	}

	// Get a buffer from the pool for the download
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	data := append([]byte(nil), buf.Bytes()...)

	certs, err := s.decoder.DecodeMultiple(data)
	if err != nil {
		// PKCS#7 responses are not handled by DecodeMultiple; fall back to
		// the single-certificate decoder which understands them.
		cert, err := s.decoder.Decode(data)
		if err != nil {
			return nil, err
		}
		certs = []*x509.Certificate{cert}
	}

	return NewList(certs), nil
}
