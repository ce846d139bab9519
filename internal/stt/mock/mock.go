// Package mock provides a test double for the stt.Provider interface.
//
// Responses are consumed in order: the Nth call to Recognize returns
// Outputs[N] and Errs[N] when present, falling back to Output and Err.
// This lets a test fail the first attempt and succeed on the second.
//
//	p := &mock.Provider{
//	    Errs:   []error{channelErr},
//	    Output: &stt.Output{Kind: stt.OutputSegments},
//	}
package mock

import (
	"context"
	"sync"

	"audioscribe/internal/stt"
)

// RecognizeCall records a single invocation of Recognize.
type RecognizeCall struct {
	// Ctx is the context passed to Recognize.
	Ctx context.Context
	// Req is the Request passed to Recognize.
	Req stt.Request
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// ProviderName is returned by Name. Defaults to "mock".
	ProviderName string

	// Outputs and Errs are consumed per call, indexed by call number.
	Outputs []*stt.Output
	Errs    []error

	// Output and Err are returned once the per-call slices are exhausted.
	Output *stt.Output
	Err    error

	// Calls records every invocation of Recognize in order.
	Calls []RecognizeCall
}

// Name returns ProviderName or "mock".
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Recognize records the call and returns the configured response for it.
func (p *Provider) Recognize(ctx context.Context, req stt.Request) (*stt.Output, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.Calls)
	p.Calls = append(p.Calls, RecognizeCall{Ctx: ctx, Req: req})

	out, err := p.Output, p.Err
	if n < len(p.Outputs) {
		out = p.Outputs[n]
	}
	if n < len(p.Errs) {
		err = p.Errs[n]
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CallCount returns the number of Recognize calls. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Requests returns a copy of the recorded requests. Thread-safe.
func (p *Provider) Requests() []stt.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	reqs := make([]stt.Request, len(p.Calls))
	for i, c := range p.Calls {
		reqs[i] = c.Req
	}
	return reqs
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
}

// Ensure Provider implements stt.Provider at compile time.
var _ stt.Provider = (*Provider)(nil)
