// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath indicates the verifier was handed a path with no
	// certificates in it.
	ErrEmptyPath = errors.New("x509path: empty candidate path")

	// ErrCertExpired indicates a certificate on the path was expired at the
	// verification time.
	ErrCertExpired = errors.New("x509path: certificate has expired")

	// ErrCertNotYetValid indicates a certificate on the path was not yet
	// valid at the verification time.
	ErrCertNotYetValid = errors.New("x509path: certificate is not yet valid")

	// ErrNotCA indicates a certificate in an issuer position is not marked
	// as a CA.
	ErrNotCA = errors.New("x509path: issuer certificate is not a CA")
)

// VerifyFunc validates one complete candidate path (target first, anchor
// last) at the given time, returning nil on success. The [PathBuilder]
// invokes it once per candidate path; an error only fails that path and
// causes backtracking.
type VerifyFunc func(path []*Certificate, at UTCTime) error

// VerifyOptions configures the default chain verifier.
type VerifyOptions struct {
	// Hostname, when non-empty, is additionally verified against the target
	// certificate's name constraints.
	Hostname string
}

// ChainVerifier returns the default [VerifyFunc]: a signature walk from the
// target to its anchor, validity-window checks on every certificate, CA
// basic-constraint checks on issuer positions, and optional hostname
// verification on the target.
//
// The anchor terminating a path is trusted by construction and its own
// issuer is not examined, so a path consisting only of a trust anchor
// verifies as long as it is within its validity window.
func ChainVerifier(opts VerifyOptions) VerifyFunc {
	return func(path []*Certificate, at UTCTime) error {
		if len(path) == 0 {
			return ErrEmptyPath
		}

		when := at.Time()
		for i, cert := range path {
			if when.Before(cert.NotBefore) {
				return fmt.Errorf("%w: %q not valid before %s", ErrCertNotYetValid,
					cert.Subject.CommonName, cert.NotBefore.UTC().Format("2006-01-02 15:04:05"))
			}
			if when.After(cert.NotAfter) {
				return fmt.Errorf("%w: %q not valid after %s", ErrCertExpired,
					cert.Subject.CommonName, cert.NotAfter.UTC().Format("2006-01-02 15:04:05"))
			}
			if i > 0 && cert.BasicConstraintsValid && !cert.IsCA {
				return fmt.Errorf("%w: %q", ErrNotCA, cert.Subject.CommonName)
			}
		}

		for i := 0; i+1 < len(path); i++ {
			if err := path[i].CheckSignatureFrom(path[i+1].Certificate); err != nil {
				return fmt.Errorf("%w: %q is not signed by %q: %v", ErrAuthorityInvalid,
					path[i].Subject.CommonName, path[i+1].Subject.CommonName, err)
			}
		}

		if opts.Hostname != "" {
			if err := path[0].VerifyHostname(opts.Hostname); err != nil {
				return err
			}
		}

		return nil
	}
}
