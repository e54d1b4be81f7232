// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package revocation provides OCSP and CRL spot checks for certificate paths.
//
// The checks are advisory: they annotate an already built path with the
// revocation status of each certificate but never change the outcome of
// path building itself. OCSP responses are verified against the issuing
// certificate, and downloaded CRLs are cached until their NextUpdate time.
package revocation
