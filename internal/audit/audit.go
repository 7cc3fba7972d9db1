// Copyright 2026 The Fieldform Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit emits audit records (spec.md §7: "audit write failures
// are swallowed") on a bounded worker pool so a slow or unavailable
// store never blocks the intake pipeline. The pool is sized once at
// construction; once it is saturated a new record is logged and
// dropped rather than queued (spec.md §5: "pool exhaustion degrades
// to a dropped (logged) audit record rather than blocking").
package audit

import (
	"context"
	"log/slog"

	"github.com/jackc/puddle/v2"

	"github.com/fieldform-sh/fieldform/domain"
)

// Sink persists a single AuditLog row.
type Sink interface {
	CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error)
}

// Emitter dispatches audit writes onto a bounded pool of concurrent
// slots. It is safe for concurrent use.
type Emitter struct {
	sink Sink
	log  *slog.Logger
	pool *puddle.Pool[struct{}]
}

// New builds an Emitter with workers concurrent in-flight audit
// writes. workers <= 0 defaults to 4.
func New(sink Sink, log *slog.Logger, workers int) (*Emitter, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := puddle.NewPool(&puddle.Config[struct{}]{
		Constructor: func(ctx context.Context) (struct{}, error) { return struct{}{}, nil },
		Destructor:  func(struct{}) {},
		MaxSize:     int32(workers),
	})
	if err != nil {
		return nil, err
	}
	// TryAcquire only hands out idle resources, so every slot is created
	// up front; otherwise the first Emit on each slot would be dropped.
	for i := 0; i < workers; i++ {
		if err := pool.CreateResource(context.Background()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &Emitter{sink: sink, log: log, pool: pool}, nil
}

// Emit writes l asynchronously on a pool slot. If every slot is busy
// the record is logged and dropped instead of blocking the caller.
// Any store error from the write itself is also logged and swallowed.
func (e *Emitter) Emit(ctx context.Context, l domain.AuditLog) {
	res, err := e.pool.TryAcquire(ctx)
	if err != nil {
		e.log.Warn("audit dropped: worker pool exhausted",
			"action", l.Action, "entity_type", l.EntityType)
		return
	}

	go func() {
		defer res.Release()
		writeCtx := context.WithoutCancel(ctx)
		if _, err := e.sink.CreateAuditLog(writeCtx, l); err != nil {
			e.log.Warn("audit write failed",
				"action", l.Action, "entity_type", l.EntityType, "error", err)
		}
	}()
}

// Close releases pool resources. It does not wait for in-flight writes.
func (e *Emitter) Close() {
	e.pool.Close()
}
