package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
)

// InjectedTxRunner injects transaction failures around an optional real runner.
//
// When Inner is set the body runs inside a real transaction, and FailCommit is returned
// from inside it so the database rolls the body's writes back.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin  error
	FailCommit error
	// TransientErr fails the first TransientFailures attempts before the body runs.
	TransientErr      error
	TransientFailures int

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	var transient error
	if r.TransientErr != nil && r.TransientFailures > 0 {
		r.TransientFailures--
		transient = r.TransientErr
	}
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if transient != nil {
		r.rollback()
		return transient
	}

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.rollback()
		return err
	}
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
	return nil
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}
