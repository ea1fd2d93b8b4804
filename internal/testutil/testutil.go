// Package testutil provides testing utilities for council tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/artali/council/internal/llm"
)

// FakeClient is a scripted generation port for tests. Replies are served
// in order per distinguishing prompt prefix, or from a catch-all queue.
// It is safe for concurrent use, since council phases fan calls out in
// parallel.
type FakeClient struct {
	mu       sync.Mutex
	provider string
	model    string

	// byPrefix maps a user-prompt substring to a FIFO of replies.
	byPrefix map[string][]llm.Reply
	// queue is the catch-all FIFO used when no prefix matches.
	queue []llm.Reply
	// fallback is returned when every queue is exhausted.
	fallback llm.Reply

	// Calls records every request for assertions, in arrival order.
	Calls []RecordedCall
}

// RecordedCall captures one Generate invocation.
type RecordedCall struct {
	UserPrompt   string
	SystemPrompt string
}

// NewFakeClient creates a fake for the given identity. With no scripted
// replies it answers every call with a canned success.
func NewFakeClient(provider, model string) *FakeClient {
	return &FakeClient{
		provider: provider,
		model:    model,
		byPrefix: make(map[string][]llm.Reply),
		fallback: llm.Reply{Provider: provider, Model: model, Text: "ok"},
	}
}

func (f *FakeClient) Provider() string { return f.provider }

func (f *FakeClient) Model() string { return f.model }

// Reply convenience constructor for a successful scripted reply.
func (f *FakeClient) Reply(text string) llm.Reply {
	return llm.Reply{Provider: f.provider, Model: f.model, Text: text}
}

// FailedReply convenience constructor for a transport-failure reply.
func (f *FakeClient) FailedReply(errMsg string) llm.Reply {
	return llm.Reply{Provider: f.provider, Model: f.model, Text: "", Err: errMsg}
}

// Enqueue appends replies to the catch-all queue.
func (f *FakeClient) Enqueue(replies ...llm.Reply) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, replies...)
	return f
}

// EnqueueText appends successful text replies to the catch-all queue.
func (f *FakeClient) EnqueueText(texts ...string) *FakeClient {
	for _, t := range texts {
		f.Enqueue(f.Reply(t))
	}
	return f
}

// OnPromptContaining scripts replies served, in order, to calls whose
// user prompt contains the given substring. Prefix queues win over the
// catch-all queue.
func (f *FakeClient) OnPromptContaining(substr string, replies ...llm.Reply) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byPrefix[substr] = append(f.byPrefix[substr], replies...)
	return f
}

// SetFallback changes the reply served once all queues are exhausted.
func (f *FakeClient) SetFallback(r llm.Reply) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = r
	return f
}

// Generate implements llm.Client.
func (f *FakeClient) Generate(_ context.Context, userPrompt, systemPrompt string) llm.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, RecordedCall{UserPrompt: userPrompt, SystemPrompt: systemPrompt})

	for substr, replies := range f.byPrefix {
		if len(replies) > 0 && strings.Contains(userPrompt, substr) {
			f.byPrefix[substr] = replies[1:]
			return replies[0]
		}
	}
	if len(f.queue) > 0 {
		r := f.queue[0]
		f.queue = f.queue[1:]
		return r
	}
	return f.fallback
}

// CallCount returns how many Generate calls this fake has served.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
