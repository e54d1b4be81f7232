// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509path implements certification path building for [X.509]
// certificates. Given a target certificate, a set of trust anchors, and one
// or more issuer sources, it discovers candidate certificate chains ending at
// a trust anchor and verifies each one per [RFC 5280] semantics, reporting
// every attempt and the best outcome.
//
// The search is a depth-first traversal over the issuer graph with
// backtracking and loop avoidance. Issuer sources may answer synchronously
// (in-memory sets) or asynchronously (network lookups such as [AIA]); all
// asynchronous sources for a given frontier certificate are queried
// simultaneously and their results incorporated as they arrive.
//
// [X.509]: https://grokipedia.com/page/X.509
// [RFC 5280]: https://www.rfc-editor.org/rfc/rfc5280
// [AIA]: https://grokipedia.com/page/Authority_Information_Access
package x509path
