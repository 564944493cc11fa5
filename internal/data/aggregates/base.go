package aggregates

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"gorm.io/gorm"
)

const (
	defaultMaxAttempts = 3
	baseRetryBackoff   = 25 * time.Millisecond
	tracerName         = "courserate/aggregates"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks

	// MaxAttempts bounds how often a retryable write is re-run. Values below 1 use the default.
	MaxAttempts int
	// Sleep is swapped in tests to avoid real backoff.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.MaxAttempts < 1 {
		d.MaxAttempts = defaultMaxAttempts
	}
	if d.Sleep == nil {
		d.Sleep = sleepCtx
	}
	return d
}

// executeWrite runs fn in a transaction, re-running it while the mapped error is retryable
// and attempts remain.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	var mapped error
	attempt := 0
	for {
		attempt++
		mapped = MapError(op, deps.Runner.InTx(ctx, fn))
		if mapped == nil || !domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			break
		}
		deps.Hooks.IncRetry(op)
		if attempt >= deps.MaxAttempts || ctx.Err() != nil {
			break
		}
		if deps.Log != nil {
			deps.Log.Warn("retrying aggregate write", "op", op, "attempt", attempt, "error", mapped)
		}
		if err := deps.Sleep(ctx, retryBackoff(attempt)); err != nil {
			break
		}
	}

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(
		attribute.String("aggregate.status", status),
		attribute.Int("aggregate.attempts", attempt),
	)
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}

// retryBackoff doubles per attempt with up to 100% jitter.
func retryBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := baseRetryBackoff << uint(attempt-1)
	return d + time.Duration(rand.Int63n(int64(d)+1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
