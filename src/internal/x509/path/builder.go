// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import (
	"errors"
	"fmt"
)

// ErrAuthorityInvalid indicates that no candidate path terminating in a
// trust anchor could be discovered, or that a candidate path failed the
// signature walk to its anchor.
var ErrAuthorityInvalid = errors.New("x509path: no trusted certificate path found")

// ResultPath is one fully attempted candidate path and its verification
// outcome.
type ResultPath struct {
	// Path is the candidate path in forward direction: Path[0] is the
	// target certificate and Path[i+1] is a candidate issuer of Path[i].
	// The last element is a trust anchor when IsSuccess reports true.
	Path []*Certificate

	// Err is the outcome for this path; nil means the path validates. Paths
	// ending at a trust anchor carry the verifier's result; dead-end paths
	// that never reached an anchor carry [ErrAuthorityInvalid].
	Err error
}

// IsSuccess reports whether this path was successfully verified.
func (p *ResultPath) IsSuccess() bool { return p.Err == nil }

// Result is the overall outcome of one path building run: every path that
// was attempted, in discovery order, and the index of the best one.
//
// Result is owned by the caller and mutated only by the [PathBuilder] during
// Run; it must not be inspected while an asynchronous run is pending.
type Result struct {
	// Paths lists every attempted candidate path and its outcome.
	Paths []*ResultPath

	// BestIndex points into Paths at the best outcome. The first
	// successfully verified path becomes and remains best; if no path ever
	// succeeds, it points at the most recently attempted one.
	BestIndex int
}

// Error returns the outcome of the best path, or [ErrAuthorityInvalid] when
// no path was attempted at all.
func (r *Result) Error() error {
	if len(r.Paths) == 0 {
		return ErrAuthorityInvalid
	}
	return r.Paths[r.BestIndex].Err
}

// IsSuccess reports whether a valid path was found.
func (r *Result) IsSuccess() bool { return r.Error() == nil }

// BestPath returns the best attempted path, or nil when none was attempted.
func (r *Result) BestPath() *ResultPath {
	if len(r.Paths) == 0 {
		return nil
	}
	return r.Paths[r.BestIndex]
}

// builderState is the driver's position in the build loop.
type builderState int

const (
	stateNone builderState = iota
	stateGetNextPath
	stateGetNextPathComplete
)

// PathBuilder checks whether a certificate is trusted by building candidate
// paths to trust anchors and handing each one to a verifier. Each instance
// performs a single verification.
//
// Construct with [NewPathBuilder], register issuer sources with
// [PathBuilder.AddCertIssuerSource], then call [PathBuilder.Run] once.
type PathBuilder struct {
	iter     *pathIter
	verify   VerifyFunc
	at       UTCTime
	result   *Result
	state    builderState
	nextPath []*Certificate
	ran      bool
}

// NewPathBuilder creates a PathBuilder that attempts to find a path from
// target to an anchor in store, valid at the given time according to verify.
// Details of every attempted path are recorded in result, which must outlive
// the builder.
//
// A nil verify selects the default chain verifier (see [ChainVerifier]).
func NewPathBuilder(target *Certificate, store *TrustStore, verify VerifyFunc, at UTCTime, result *Result) *PathBuilder {
	if verify == nil {
		verify = ChainVerifier(VerifyOptions{})
	}
	return &PathBuilder{
		iter:   newPathIter(target, store),
		verify: verify,
		at:     at,
		result: result,
	}
}

// AddCertIssuerSource registers a source of intermediate certificates.
// Multiple sources may be added; they are consulted in registration order.
// Must not be called after Run.
//
// If no issuer sources are added, the target certificate will only verify if
// it is a trust anchor or is directly signed by one.
func (b *PathBuilder) AddCertIssuerSource(src CertIssuerSource) {
	b.iter.sources = append(b.iter.sources, src)
}

// Run begins verification of the target certificate. It must be called at
// most once per builder.
//
// When the returned status is [StatusSync] the verification is complete, the
// result can be inspected, and onDone will not be called. When it is
// [StatusAsync], onDone runs once verification completes; the result must
// not be touched until then.
//
// A nil onDone selects synchronous-only mode: asynchronous issuer sources
// are never queried and Run always completes before returning, reporting
// whatever paths are discoverable from synchronous answers alone.
func (b *PathBuilder) Run(onDone func()) CompletionStatus {
	if b.ran {
		panic("x509path: PathBuilder.Run called more than once")
	}
	b.ran = true
	b.state = stateGetNextPath

	if onDone == nil {
		b.iter.syncOnly = true
		b.doLoop()
		return StatusSync
	}

	if b.doLoop() {
		b.iter.release()
		return StatusSync
	}

	// The iterator suspended on asynchronous issuer queries. Finish the
	// search off the caller's goroutine and report completion through the
	// callback.
	b.iter.blocking = true
	go func() {
		b.doLoop()
		canceled := b.iter.isCanceled()
		b.iter.release()
		if !canceled {
			onDone()
		}
	}()
	return StatusAsync
}

// Cancel aborts a pending asynchronous run: outstanding issuer-source
// requests are canceled and the completion callback will not be invoked. The
// result is left in an undefined state. Safe to call from any goroutine, any
// number of times, including from inside the completion callback.
func (b *PathBuilder) Cancel() { b.iter.cancel() }

// doLoop drives the state machine until the search finishes or suspends on
// asynchronous issuer queries. It returns true once the search is finished.
func (b *PathBuilder) doLoop() bool {
	for {
		switch b.state {
		case stateGetNextPath:
			path, status := b.iter.next()
			switch status {
			case iterSuspended:
				return false
			case iterExhausted:
				b.state = stateNone
				return true
			case iterDeadEnd:
				// The path does not reach a trust anchor, so it is recorded
				// as authority-invalid without consulting the verifier.
				b.addResultPath(path, fmt.Errorf("%w: no issuer found for %q",
					ErrAuthorityInvalid, path[len(path)-1].Subject.CommonName))
			case iterPathReady:
				b.nextPath = path
				b.state = stateGetNextPathComplete
			}

		case stateGetNextPathComplete:
			err := b.verify(b.nextPath, b.at)
			b.addResultPath(b.nextPath, err)
			b.nextPath = nil
			if err == nil {
				// First verified path wins; stop searching.
				b.state = stateNone
				return true
			}
			b.state = stateGetNextPath

		case stateNone:
			return true
		}
	}
}

func (b *PathBuilder) addResultPath(path []*Certificate, err error) {
	b.result.Paths = append(b.result.Paths, &ResultPath{Path: path, Err: err})
	last := len(b.result.Paths) - 1
	if err == nil || b.result.Paths[b.result.BestIndex].Err != nil {
		b.result.BestIndex = last
	}
}
