// SPDX-License-Identifier: EPL-2.0

package channeldata

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Worker runs job for every index in [0, n) and returns when all are done.
// Implementations differ in where the work runs, not in how they are called.
type Worker interface {
	Run(ctx context.Context, n int, job func(ctx context.Context, i int) error) error
}

type inline struct{}

// Inline runs jobs one after another on the calling goroutine.
func Inline() Worker { return inline{} }

func (inline) Run(ctx context.Context, n int, job func(context.Context, int) error) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w", err)
		}
		if err := job(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

type background struct {
	limit int
}

// Background runs jobs on up to limit goroutines; limit <= 0 means one per job.
func Background(limit int) Worker { return background{limit: limit} }

func (b background) Run(ctx context.Context, n int, job func(context.Context, int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}

	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w", err)
			}
			return job(ctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
