package convert

import (
	"context"

	"github.com/alitto/pond"
)

// Pool serializes conversions through a bounded worker pool so concurrent
// requests cannot spawn more external processes than configured. With one
// worker (the default) all soffice runs happen strictly one at a time.
type Pool struct {
	inner *pond.WorkerPool
	conv  Converter
}

func NewPool(conv Converter, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		inner: pond.New(workers, 256),
		conv:  conv,
	}
}

func (p *Pool) Convert(ctx context.Context, inputPath, outDir string, format Format) (string, error) {
	var (
		outPath string
		err     error
	)
	p.inner.SubmitAndWait(func() {
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}
		outPath, err = p.conv.Convert(ctx, inputPath, outDir, format)
	})
	return outPath, err
}

func (p *Pool) Stop() {
	p.inner.StopAndWait()
}
