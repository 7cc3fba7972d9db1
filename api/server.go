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

// Package api is the HTTP surface described by spec.md §6: admin CRUD
// insert wrappers for form templates, fields, logic, compute
// definitions and rule sets, plus the intake-submit and
// intake-result endpoints wired to the C5 orchestrator and C6
// assembler. Route registration and listener handling follow the
// teacher's api/http.go shape (ListenerServerPair, resolveBindings,
// one *http.Server per bound address).
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldform-sh/fieldform/api/middleware"
	"github.com/fieldform-sh/fieldform/assemble"
	"github.com/fieldform-sh/fieldform/intake"
	fieldotel "github.com/fieldform-sh/fieldform/otel"
	"github.com/fieldform-sh/fieldform/store"
)

// Server wires store.Store, the intake orchestrator, and the result
// assembler together behind one http.Handler.
type Server struct {
	Store        store.Store
	Orchestrator *intake.Orchestrator
	Assembler    *assemble.Assembler
	Audit        intake.AuditSink
	Tracer       trace.Tracer
	OTelConfig   fieldotel.Config
	Log          *slog.Logger

	listeners []*ListenerServerPair
}

func (s *Server) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Server) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer("fieldform/api")
}

// Handler builds the routed, middleware-wrapped http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/studies/{study}/forms", s.handleCreateFormTemplate)
	mux.HandleFunc("GET /api/studies/{study}/forms/{form_id}", s.handleGetFormTemplate)
	mux.HandleFunc("POST /api/studies/{study}/forms/{form_id}/fields", s.handleCreateFormField)
	mux.HandleFunc("POST /api/studies/{study}/forms/{form_id}/logic", s.handleCreateFormLogic)
	mux.HandleFunc("POST /api/studies/{study}/compute-definitions", s.handleCreateComputeDefinition)
	mux.HandleFunc("POST /api/studies/{study}/rule-sets", s.handleCreateRuleSet)
	mux.HandleFunc("GET /api/studies/{study}/rule-sets", s.handleListRuleSets)

	mux.HandleFunc("POST /api/studies/{study}/participants/{pid}/intake-submit", s.handleIntakeSubmit)
	mux.HandleFunc("GET /api/studies/{study}/participants/{pid}/intake-result", s.handleIntakeResult)

	var handler http.Handler = mux
	handler = middleware.OTelMiddleware(s.OTelConfig, s.tracer(), handler)
	handler = middleware.RequestIDMiddleware(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Setup binds a listener per resolved address (teacher's own
// predefined-address shorthand: "local", "network", etc).
func (s *Server) Setup(ctx context.Context, port int, listen []string) error {
	handler := s.Handler()

	bindings, err := resolveBindings(port, listen)
	if err != nil {
		return err
	}

	s.listeners = make([]*ListenerServerPair, 0, len(bindings))
	for _, binding := range bindings {
		ln, err := net.Listen("tcp", binding)
		if err != nil {
			for _, l := range s.listeners {
				l.Close()
			}
			s.listeners = nil
			return fmt.Errorf("failed to listen on %s: %w", binding, err)
		}
		s.listeners = append(s.listeners, NewListenerServerPair(ln, &http.Server{
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		}))
	}
	return nil
}

// Start serves every bound listener until each is closed.
func (s *Server) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ln := range s.listeners {
		ln := ln
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.logger().InfoContext(ctx, "serving", "address", ln.Listener.Addr().String())
			if err := ln.Server.Serve(ln.Listener); err != nil && err != http.ErrServerClosed {
				s.logger().ErrorContext(ctx, "listener stopped", "error", err)
			}
		}()
	}
	wg.Wait()
}

// Stop closes every bound listener.
func (s *Server) Stop(context.Context) error {
	for _, ln := range s.listeners {
		ln.Close()
	}
	s.listeners = nil
	return nil
}
