package container

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rebelforge/assetdb/pkg/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Verify streams every record through the decompressor using the given
// worker pool and returns all integrity failures combined. report, if set,
// is called once per record with its verification result; it may be called
// concurrently. Cancellation of ctx stops submitting new records and makes
// Verify return ctx error after the submitted ones are done.
func (c *Container) Verify(ctx context.Context, pool util.WorkerPool, report func(DirectoryEntry, error)) error {
	var (
		wg  sync.WaitGroup
		mtx sync.Mutex
		res error
	)

	for i := range c.dir {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return multierr.Append(res, err)
		}

		e := c.dir[i]

		wg.Add(1)

		err := pool.Submit(func() {
			defer wg.Done()

			err := c.verifyRecord(e)
			if report != nil {
				report(e, err)
			}

			if err != nil {
				c.log.Debug("record verification failed",
					zap.Uint32("index", e.Index),
					zap.Stringer("type", e.Type),
					zap.Error(err),
				)

				mtx.Lock()
				res = multierr.Append(res, fmt.Errorf("record #%d (%s 0x%x): %w", e.Index, e.Type, e.RecordID, err))
				mtx.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit verification of record #%d: %w", e.Index, err)
		}
	}

	wg.Wait()

	return res
}

func (c *Container) verifyRecord(e DirectoryEntry) error {
	s, err := c.StreamFor(e, true)
	if err != nil {
		return err
	}

	_, err = io.Copy(io.Discard, s)
	return multierr.Append(err, s.Close())
}
