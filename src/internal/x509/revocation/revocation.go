// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/cert-path-builder/src/internal/helper/gc"
	x509path "github.com/H0llyW00dzZ/cert-path-builder/src/internal/x509/path"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/ocsp"
)

// Verdict describes the outcome of a single revocation probe.
type Verdict string

const (
	// VerdictGood means the responder or CRL reports the certificate as not revoked.
	VerdictGood Verdict = "Good"
	// VerdictRevoked means the certificate is explicitly revoked.
	VerdictRevoked Verdict = "Revoked"
	// VerdictUnknown means the probe completed but the status could not be determined.
	VerdictUnknown Verdict = "Unknown"
	// VerdictUnavailable means the certificate carries no endpoint for this mechanism.
	VerdictUnavailable Verdict = "Not Available"
)

// Status represents the revocation status of a single certificate in a path.
type Status struct {
	Subject      string
	SerialNumber string
	OCSPStatus   Verdict
	OCSPErr      error
	CRLStatus    Verdict
	CRLErr       error
}

// DefaultCRLCacheTTL bounds how long a downloaded CRL is reused when the
// CRL itself carries no usable NextUpdate time.
const DefaultCRLCacheTTL = 30 * time.Minute

// Checker performs OCSP and CRL revocation spot checks over HTTP.
//
// Checker is safe for concurrent use.
type Checker struct {
	httpConfig *x509path.HTTPConfig
	crlCache   *gocache.Cache
}

// NewChecker creates a revocation checker using the given HTTP configuration.
// A nil config gets a default configuration.
func NewChecker(cfg *x509path.HTTPConfig) *Checker {
	if cfg == nil {
		cfg = x509path.NewHTTPConfig("dev")
	}
	return &Checker{
		httpConfig: cfg,
		crlCache:   gocache.New(DefaultCRLCacheTTL, 2*DefaultCRLCacheTTL),
	}
}

// CheckPath probes revocation status for every certificate in the path except
// the terminal trust anchor. Roots are not revoked via OCSP or CRL, so the
// last element is skipped. Probe failures are recorded per certificate rather
// than aborting the whole check.
func (c *Checker) CheckPath(ctx context.Context, path []*x509path.Certificate) []Status {
	if len(path) == 0 {
		return nil
	}

	statuses := make([]Status, 0, len(path)-1)
	for i, cert := range path {
		if i == len(path)-1 {
			break
		}

		st := Status{
			Subject:      cert.Subject.CommonName,
			SerialNumber: cert.SerialNumber.String(),
		}

		issuer := findIssuer(path, i)
		st.OCSPStatus, st.OCSPErr = c.checkOCSP(ctx, cert.Certificate, issuer)
		st.CRLStatus, st.CRLErr = c.checkCRL(ctx, cert.Certificate)

		statuses = append(statuses, st)
	}
	return statuses
}

// findIssuer returns the issuer of path[i], which in a built path is the next
// element.
func findIssuer(path []*x509path.Certificate, i int) *x509.Certificate {
	if i+1 < len(path) {
		return path[i+1].Certificate
	}
	return nil
}

// checkOCSP queries the certificate's first OCSP responder and verifies the
// response against the issuing certificate per RFC 6960.
func (c *Checker) checkOCSP(ctx context.Context, cert, issuer *x509.Certificate) (Verdict, error) {
	if len(cert.OCSPServer) == 0 {
		return VerdictUnavailable, nil
	}
	if issuer == nil {
		return VerdictUnknown, fmt.Errorf("revocation: no issuer available for OCSP request")
	}

	reqData, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("revocation: failed to create OCSP request: %w", err)
	}

	ocspURL := cert.OCSPServer[0]
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ocspURL, bytes.NewReader(reqData))
	if err != nil {
		return VerdictUnknown, fmt.Errorf("revocation: failed to create OCSP HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/ocsp-request")
	req.Header.Set("Accept", "application/ocsp-response")
	req.Header.Set("User-Agent", c.httpConfig.GetUserAgent())

	resp, err := c.httpConfig.Client().Do(req)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("revocation: OCSP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VerdictUnknown, fmt.Errorf("revocation: OCSP server returned status %d", resp.StatusCode)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return VerdictUnknown, fmt.Errorf("revocation: failed to read OCSP response: %w", err)
	}

	parsed, err := ocsp.ParseResponseForCert(buf.Bytes(), cert, issuer)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("revocation: failed to parse OCSP response: %w", err)
	}

	switch parsed.Status {
	case ocsp.Good:
		return VerdictGood, nil
	case ocsp.Revoked:
		return VerdictRevoked, nil
	default:
		return VerdictUnknown, nil
	}
}

// checkCRL downloads the certificate's first CRL distribution point and scans
// the revoked entries for the certificate's serial number. Downloaded CRLs are
// cached until their NextUpdate time.
func (c *Checker) checkCRL(ctx context.Context, cert *x509.Certificate) (Verdict, error) {
	if len(cert.CRLDistributionPoints) == 0 {
		return VerdictUnavailable, nil
	}

	crlURL := cert.CRLDistributionPoints[0]

	rl, err := c.fetchCRL(ctx, crlURL)
	if err != nil {
		return VerdictUnknown, err
	}

	for _, entry := range rl.RevokedCertificateEntries {
		if entry.SerialNumber != nil && entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
			return VerdictRevoked, nil
		}
	}
	return VerdictGood, nil
}

// fetchCRL returns the parsed revocation list for the given URL, serving
// cached copies while they remain fresh.
func (c *Checker) fetchCRL(ctx context.Context, crlURL string) (*x509.RevocationList, error) {
	if cached, found := c.crlCache.Get(crlURL); found {
		return cached.(*x509.RevocationList), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, crlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("revocation: failed to create CRL request: %w", err)
	}
	req.Header.Set("User-Agent", c.httpConfig.GetUserAgent())

	resp, err := c.httpConfig.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("revocation: CRL request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("revocation: CRL server returned status %d", resp.StatusCode)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("revocation: failed to read CRL: %w", err)
	}

	rl, err := x509.ParseRevocationList(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("revocation: failed to parse CRL: %w", err)
	}

	c.crlCache.Set(crlURL, rl, crlTTL(rl))
	return rl, nil
}

// crlTTL derives a cache lifetime from the CRL's NextUpdate field.
func crlTTL(rl *x509.RevocationList) time.Duration {
	if rl.NextUpdate.IsZero() {
		return DefaultCRLCacheTTL
	}
	ttl := time.Until(rl.NextUpdate)
	if ttl <= 0 || ttl > DefaultCRLCacheTTL {
		return DefaultCRLCacheTTL
	}
	return ttl
}

// Summarize renders the statuses as human-readable text for CLI output.
func Summarize(statuses []Status) string {
	var result strings.Builder
	result.WriteString("Revocation Status Check:\n\n")

	for i, st := range statuses {
		result.WriteString(fmt.Sprintf("Certificate %d: %s\n", i+1, st.Subject))

		if st.OCSPErr != nil {
			result.WriteString(fmt.Sprintf("  OCSP Error: %v\n", st.OCSPErr))
		} else {
			result.WriteString(fmt.Sprintf("  OCSP Status: %s\n", st.OCSPStatus))
		}

		if st.CRLErr != nil {
			result.WriteString(fmt.Sprintf("  CRL Error: %v\n", st.CRLErr))
		} else {
			result.WriteString(fmt.Sprintf("  CRL Status: %s\n", st.CRLStatus))
		}

		result.WriteString("\n")
	}

	return result.String()
}
