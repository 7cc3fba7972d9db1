package audit_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fieldform-sh/fieldform/domain"
	"github.com/fieldform-sh/fieldform/internal/audit"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	logs []domain.AuditLog
}

func (s *recordingSink) CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, l)
	return l, nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitWritesThrough(t *testing.T) {
	sink := &recordingSink{}
	e, err := audit.New(sink, silentLogger(), 2)
	require.NoError(t, err)
	defer e.Close()

	e.Emit(context.Background(), domain.AuditLog{Action: "intake_submitted"})

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)
}

type failingSink struct{}

func (failingSink) CreateAuditLog(ctx context.Context, l domain.AuditLog) (domain.AuditLog, error) {
	return domain.AuditLog{}, context.DeadlineExceeded
}

func TestEmitSwallowsSinkErrors(t *testing.T) {
	e, err := audit.New(failingSink{}, silentLogger(), 1)
	require.NoError(t, err)
	defer e.Close()

	require.NotPanics(t, func() {
		e.Emit(context.Background(), domain.AuditLog{Action: "intake_submitted"})
	})
}
