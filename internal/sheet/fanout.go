package sheet

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"printshop/internal/fit"
	"printshop/internal/units"
)

// FitJob is one independent fit in a batch.
type FitJob struct {
	Image  image.Image
	Target units.PixelSize
	Opts   fit.Options
}

// FitAll runs the jobs concurrently and returns the results in job order.
// The first failure cancels jobs that have not started yet.
func FitAll(ctx context.Context, jobs []FitJob) ([]*image.NRGBA, error) {
	out := make([]*image.NRGBA, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := fit.Fit(job.Image, job.Target, job.Opts)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			out[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
