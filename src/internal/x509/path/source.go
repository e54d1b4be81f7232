// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

// CompletionStatus reports whether an operation finished on the caller's
// goroutine or will complete later via a callback.
type CompletionStatus int

const (
	// StatusSync indicates the operation completed before returning.
	StatusSync CompletionStatus = iota
	// StatusAsync indicates the operation continues in the background and
	// the completion callback will be invoked when it finishes.
	StatusAsync
)

// String returns a short name for the status.
func (s CompletionStatus) String() string {
	switch s {
	case StatusSync:
		return "sync"
	case StatusAsync:
		return "async"
	default:
		return "unknown"
	}
}

// IssuerRequest is the handle for one in-flight asynchronous issuer lookup.
//
// Batches delivers zero or more groups of candidate issuers; the channel is
// closed once the lookup is exhausted. A single request may deliver multiple
// batches over time, so consumers should keep receiving until the close.
//
// Cancel aborts the lookup. Implementations must close the Batches channel
// promptly after Cancel is called and must tolerate Cancel being called more
// than once.
type IssuerRequest interface {
	Batches() <-chan []*Certificate
	Cancel()
}

// CertIssuerSource supplies candidate issuer certificates for a given
// certificate. Sources are registered on a [PathBuilder] before Run.
//
// The builder never holds two concurrent queries for the same certificate
// against the same source; a certificate revisited on a later branch of the
// search may be queried again, which is why network-backed sources cache by
// URL. Sources must not be mutated while a request they issued is
// outstanding.
type CertIssuerSource interface {
	// SyncGetIssuersOf returns immediately with zero or more candidate
	// issuers of cert, e.g. from an in-memory set or a warm cache.
	SyncGetIssuersOf(cert *Certificate) []*Certificate

	// AsyncGetIssuersOf begins a possibly slow lookup for issuers of cert,
	// such as a network fetch. It returns nil when the source has no
	// asynchronous capability (or nothing to look up) for this certificate.
	AsyncGetIssuersOf(cert *Certificate) IssuerRequest
}
