package notify

import (
	"context"
	"sync"
	"time"

	"github.com/go-user-accounts/internal/domain"
	"go.uber.org/zap"
)

type activationSender interface {
	SendActivation(ctx context.Context, n domain.ActivationNotice) error
}

// Async hands each notice to a background goroutine and returns immediately.
// Delivery runs on its own context bounded by timeout, so it outlives the request.
type Async struct {
	next    activationSender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewAsync(next activationSender, timeout time.Duration, log *zap.Logger) *Async {
	return &Async{next: next, timeout: timeout, log: log}
}

func (a *Async) SendActivation(_ context.Context, n domain.ActivationNotice) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.SendActivation(ctx, n); err != nil {
			a.log.Error("activation notice failed", zap.String("email", n.Email), zap.Error(err))
			return
		}
		a.log.Debug("activation notice sent", zap.String("email", n.Email))
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
