package core

import (
	"sync"

	"github.com/illarion/pwvault/internal/credential"
	"github.com/illarion/pwvault/internal/crypto"
)

// ReadResult is delivered by ReadAsync
type ReadResult struct {
	Collection credential.Collection
	Detected   Detected
	Err        error
}

// Async runs Accessor operations on background goroutines, one at a
// time. Results arrive on buffered channels, so an operation finishes
// even when nobody receives its result. Operations cannot be cancelled.
type Async struct {
	inner Accessor
	mu    sync.Mutex
	wg    sync.WaitGroup
}

// NewAsync wraps inner
func NewAsync(inner Accessor) *Async {
	return &Async{inner: inner}
}

// ReadAsync starts a Read. The password is copied, so the caller may
// clear its buffer once this returns.
func (a *Async) ReadAsync(req AccessRequest) <-chan ReadResult {
	ch := make(chan ReadResult, 1)
	req = cloneRequest(req)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(ch)
		defer crypto.ClearBytes(req.Password)

		a.mu.Lock()
		defer a.mu.Unlock()

		c, detected, err := a.inner.Read(req)
		ch <- ReadResult{Collection: c, Detected: detected, Err: err}
	}()
	return ch
}

// WriteAsync starts a Write. The password is copied; c and prev must not
// be modified until the result arrives.
func (a *Async) WriteAsync(req AccessRequest, c credential.Collection, prev *Detected) <-chan error {
	ch := make(chan error, 1)
	req = cloneRequest(req)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(ch)
		defer crypto.ClearBytes(req.Password)

		a.mu.Lock()
		defer a.mu.Unlock()

		ch <- a.inner.Write(req, c, prev)
	}()
	return ch
}

// Wait blocks until every started operation has finished
func (a *Async) Wait() {
	a.wg.Wait()
}

func cloneRequest(req AccessRequest) AccessRequest {
	req.Password = append([]byte(nil), req.Password...)
	return req
}
