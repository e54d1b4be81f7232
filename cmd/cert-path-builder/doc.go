// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// cert-path-builder is a command-line tool for building and verifying X.509
// certification paths from a target certificate to configured trust anchors.
//
// Unlike a simple chain resolver that follows the single chain a server
// happens to present, it explores every candidate issuer with backtracking
// and reports all attempted paths, succeeding as soon as one path verifies.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/cert-path-builder/cmd/cert-path-builder@latest
//
// # Usage
//
//	cert-path-builder -f INPUT_CERT -r ROOTS_PEM [FLAGS]
//
// # Flags
//
//	-f, --file             Target certificate file (PEM, DER, or PKCS#7)
//	-c, --connect          Fetch the target from a TLS endpoint (HOST:PORT)
//	-r, --roots            PEM bundle of trust anchors (repeatable) [required]
//	-i, --intermediates    PEM bundle of candidate intermediates (repeatable)
//	    --time             Verification time in RFC 3339 format (default: now)
//	    --hostname         Verify the leaf certificate against this hostname
//	    --aia              Fetch missing issuers via Authority Information Access
//	    --check-revocation Spot-check OCSP/CRL status of the best path
//	    --dump             Write the best path's certificates to PREFIX-N.pem files
//	    --table            Render attempted paths as a markdown table
//	    --json             Emit the result as structured JSON
//	    --config           Configuration file (JSON or YAML)
//	    --timeout          Network timeout in seconds (overrides config)
//
// # Examples
//
// Build a path from a local certificate against a custom root store:
//
//	cert-path-builder -f cert.pem -r roots.pem -i intermediates.pem
//
// Build a path for a live endpoint, downloading missing intermediates:
//
//	cert-path-builder -c example.com:443 -r roots.pem --aia
//
// Produce JSON output for tooling:
//
//	cert-path-builder -f cert.pem -r roots.pem --json > result.json
//
// Verify the dumped path with OpenSSL:
//
//	cert-path-builder -f cert.pem -r roots.pem --dump chain
//	openssl verify -CAfile chain-2.pem chain-1.pem
package main
