package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/segyhp/feedesk/internal/aggregate"
	"github.com/segyhp/feedesk/internal/domain"
	"github.com/segyhp/feedesk/internal/repository"
)

// ComputeDigest fetches both collections and returns the due-fee list.
// Unlike Load it is all-or-nothing: a digest built from half the data is wrong.
func ComputeDigest(ctx context.Context, source repository.Source, now time.Time) (*domain.Digest, error) {
	var (
		students []domain.Student
		fees     []domain.FeePayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		students, err = source.ListStudents(gctx)
		if err != nil {
			return fmt.Errorf("list students: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fees, err = source.ListFees(gctx)
		if err != nil {
			return fmt.Errorf("list fees: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dues := aggregate.ComputeDueFees(students, fees)
	return &domain.Digest{
		DueFees:    dues,
		Totals:     aggregate.Totals(dues),
		ComputedAt: now,
	}, nil
}
