// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509path

import "sync"

// iterStatus is the outcome of asking the iterator for the next complete
// candidate path.
type iterStatus int

const (
	// iterPathReady means a complete candidate path was produced.
	iterPathReady iterStatus = iota
	// iterDeadEnd means a complete candidate path was produced whose last
	// certificate is not a trust anchor: its frontier ran out of issuers
	// without yielding a single continuation.
	iterDeadEnd
	// iterSuspended means asynchronous issuer queries were started and the
	// iterator must wait for their results; the caller should switch to
	// blocking mode and call next again.
	iterSuspended
	// iterExhausted means every distinct candidate path has been produced.
	iterExhausted
)

// candStatus is the outcome of asking a frame for its next untried issuer.
type candStatus int

const (
	candOK candStatus = iota
	candWait
	candExhausted
)

// issuerFrame tracks the search state for one certificate on the in-progress
// path: the ordered worklist of untried candidate issuers, which query phases
// have run, and the merged channel of pending asynchronous results.
type issuerFrame struct {
	cert  *Certificate
	queue []*Certificate
	seen  map[Key]bool

	askedAnchors bool
	askedSync    bool
	askedAsync   bool

	// merged carries batches from all of this frame's async requests; nil
	// until async queries are issued, and reset to nil once drained.
	merged chan []*Certificate

	// terminal marks a frame whose certificate is a trust anchor: the path
	// ending here has been yielded and the iterator must backtrack rather
	// than extend past the anchor.
	terminal bool

	// extended records that at least one candidate issuer was produced for
	// this frame. A frame that exhausts without extending is a dead end and
	// the path ending at it is yielded once as an attempt; a frame that did
	// extend is backtracked silently, since every continuation was already
	// yielded further down.
	extended bool
}

func newIssuerFrame(cert *Certificate) *issuerFrame {
	return &issuerFrame{cert: cert, seen: make(map[Key]bool)}
}

// add enqueues candidates, deduplicating by Name+SPKI against everything this
// frame has already seen and skipping certificates already present on the
// current path (loop prevention).
func (f *issuerFrame) add(it *pathIter, certs []*Certificate) {
	for _, cert := range certs {
		if cert == nil {
			continue
		}
		if f.seen[cert.Key()] {
			continue
		}
		f.seen[cert.Key()] = true
		if it.onPath(cert) {
			continue
		}
		f.queue = append(f.queue, cert)
	}
}

// nextCandidate produces the next untried issuer for this frame, running the
// query phases in order: trust-store anchors matching the issuer name, then
// synchronous sources in registration order, then all asynchronous sources
// simultaneously. Asynchronous batches are incorporated in arrival order.
func (f *issuerFrame) nextCandidate(it *pathIter) (*Certificate, candStatus) {
	for {
		if len(f.queue) > 0 {
			cert := f.queue[0]
			f.queue = f.queue[1:]
			return cert, candOK
		}

		if !f.askedAnchors {
			f.askedAnchors = true
			f.add(it, it.store.FindAnchorsByName(f.cert.RawIssuer))
			continue
		}

		if !f.askedSync {
			f.askedSync = true
			for _, src := range it.sources {
				f.add(it, src.SyncGetIssuersOf(f.cert))
			}
			continue
		}

		if !f.askedAsync {
			f.askedAsync = true
			if it.syncOnly {
				return nil, candExhausted
			}
			var reqs []IssuerRequest
			for _, src := range it.sources {
				if req := src.AsyncGetIssuersOf(f.cert); req != nil {
					reqs = append(reqs, req)
					it.registerRequest(req)
				}
			}
			if len(reqs) == 0 {
				return nil, candExhausted
			}
			f.merged = it.mergeRequests(reqs)
			if !it.blocking {
				return nil, candWait
			}
			continue
		}

		if f.merged == nil {
			return nil, candExhausted
		}

		// Only reached after the builder has switched to asynchronous mode,
		// so blocking here suspends nothing but this search.
		batch, ok := <-f.merged
		if !ok {
			f.merged = nil
			return nil, candExhausted
		}
		f.add(it, batch)
	}
}

// pathIter lazily produces complete candidate paths (target first) in
// depth-first discovery order. Most paths end at a trust anchor; a path
// whose frontier found no issuers at all is produced as a dead end so the
// attempt is still recorded. It is not restartable.
type pathIter struct {
	target  *Certificate
	store   *TrustStore
	sources []CertIssuerSource

	stack   []*issuerFrame
	started bool

	// syncOnly suppresses asynchronous queries entirely; blocking permits
	// the iterator to wait on asynchronous results instead of suspending.
	syncOnly bool
	blocking bool

	reqMu    sync.Mutex
	reqs     []IssuerRequest
	canceled bool
	released bool
	done     chan struct{}
}

func newPathIter(target *Certificate, store *TrustStore) *pathIter {
	return &pathIter{
		target: target,
		store:  store,
		done:   make(chan struct{}),
	}
}

// next produces the next complete candidate path. The returned slice is a
// copy owned by the caller.
func (it *pathIter) next() ([]*Certificate, iterStatus) {
	if !it.started {
		it.started = true
		it.stack = append(it.stack, newIssuerFrame(it.target))
		if it.store.IsTrusted(it.target) {
			it.top().terminal = true
			return it.snapshot(), iterPathReady
		}
	}

	for {
		if it.isCanceled() {
			it.drain()
		}
		if len(it.stack) == 0 {
			return nil, iterExhausted
		}

		top := it.top()
		if top.terminal {
			it.pop()
			continue
		}

		cand, status := top.nextCandidate(it)
		switch status {
		case candWait:
			return nil, iterSuspended
		case candExhausted:
			if !top.extended && len(it.stack) > 1 {
				path := it.snapshot()
				it.pop()
				return path, iterDeadEnd
			}
			it.pop()
		case candOK:
			top.extended = true
			it.stack = append(it.stack, newIssuerFrame(cand))
			if it.store.IsTrusted(cand) {
				it.top().terminal = true
				return it.snapshot(), iterPathReady
			}
		}
	}
}

func (it *pathIter) top() *issuerFrame { return it.stack[len(it.stack)-1] }

func (it *pathIter) pop() {
	it.stack[len(it.stack)-1] = nil
	it.stack = it.stack[:len(it.stack)-1]
}

// onPath reports whether a certificate with the same Name+SPKI is already an
// element of the in-progress path.
func (it *pathIter) onPath(cert *Certificate) bool {
	for _, frame := range it.stack {
		if frame.cert.Key() == cert.Key() {
			return true
		}
	}
	return false
}

func (it *pathIter) snapshot() []*Certificate {
	path := make([]*Certificate, len(it.stack))
	for i, frame := range it.stack {
		path[i] = frame.cert
	}
	return path
}

// mergeRequests fans the batch channels of several requests into one channel,
// closed once every request is exhausted. Forwarders abandon their work when
// the iterator is canceled so nothing blocks on a reader that has gone away.
func (it *pathIter) mergeRequests(reqs []IssuerRequest) chan []*Certificate {
	merged := make(chan []*Certificate)
	var wg sync.WaitGroup
	wg.Add(len(reqs))
	for _, req := range reqs {
		go func(req IssuerRequest) {
			defer wg.Done()
			for {
				select {
				case batch, ok := <-req.Batches():
					if !ok {
						return
					}
					select {
					case merged <- batch:
					case <-it.done:
						return
					}
				case <-it.done:
					return
				}
			}
		}(req)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}

// registerRequest records an outstanding request so cancellation can reach
// it. A request registered after the iterator is released is canceled
// immediately.
func (it *pathIter) registerRequest(req IssuerRequest) {
	it.reqMu.Lock()
	if it.released {
		it.reqMu.Unlock()
		req.Cancel()
		return
	}
	it.reqs = append(it.reqs, req)
	it.reqMu.Unlock()
}

// release aborts every outstanding issuer request and unblocks any goroutine
// the iterator started. It runs both when a search is canceled and when it
// finishes normally with requests still in flight (e.g. a path verified
// before every async answer arrived). Idempotent and safe to call from any
// goroutine.
func (it *pathIter) release() {
	it.reqMu.Lock()
	if it.released {
		it.reqMu.Unlock()
		return
	}
	it.released = true
	reqs := it.reqs
	it.reqs = nil
	close(it.done)
	it.reqMu.Unlock()

	for _, req := range reqs {
		req.Cancel()
	}
}

// cancel abandons the search. Idempotent and safe to call from any goroutine.
func (it *pathIter) cancel() {
	it.reqMu.Lock()
	it.canceled = true
	it.reqMu.Unlock()
	it.release()
}

func (it *pathIter) isCanceled() bool {
	it.reqMu.Lock()
	defer it.reqMu.Unlock()
	return it.canceled
}

// drain abandons the whole search after cancellation.
func (it *pathIter) drain() {
	for _, frame := range it.stack {
		frame.merged = nil
	}
	it.stack = nil
}
