// Package memory is the per-user categorized memory core.
//
// Invariants:
// - Stored content is immutable after insert; only usage counters mutate.
// - Retrieval output never exceeds the requested token ceiling.
// - Public operations return structured results; internal errors never escape.
// - When no durable store is configured the service degrades to an in-memory
//   backend and keeps honoring the store/retrieve contract.
//
// Usage:
//
//	svc, _ := memory.NewService(ctx, memory.ServiceConfig{Logger: logger})
//	res := svc.Store(ctx, "u1", "I started a new job", nil)
//	out := svc.Retrieve(ctx, "u1", "how is work going", 2400)
//	_ = res
//	_ = out
package memory
