// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package flowview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	log "github.com/vine-io/vine/lib/logger"
	"go.uber.org/atomic"
)

const DefaultWorkers = 8

// LoadAll loads paths concurrently on a pool of at most workers goroutines.
// Documents come back in the order of paths; paths that could not be read
// are left out and reported in the returned error.
func LoadAll(ctx context.Context, paths []string, workers int, opts ...DocumentOption) ([]*Document, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		loaded = atomic.NewInt32(0)
		failed = atomic.NewInt32(0)
		docs   = make([]*Document, len(paths))
		errs   = make([]error, len(paths))
	)

	for i := range paths {
		if e := ctx.Err(); e != nil {
			errs[i] = fmt.Errorf("%s: %w", paths[i], e)
			failed.Inc()
			continue
		}

		idx := i
		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			if e := ctx.Err(); e != nil {
				errs[idx] = fmt.Errorf("%s: %w", paths[idx], e)
				failed.Inc()
				return
			}

			doc, e := LoadFile(paths[idx], opts...)
			if e != nil {
				errs[idx] = fmt.Errorf("%s: %w", paths[idx], e)
				failed.Inc()
				return
			}
			docs[idx] = doc
			loaded.Inc()
		})
		if err != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("%s: submit: %w", paths[idx], err)
			failed.Inc()
		}
	}
	wg.Wait()

	log.Debugf("loaded %d document(s), %d failed", loaded.Load(), failed.Load())

	out := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			out = append(out, doc)
		}
	}
	return out, errors.Join(errs...)
}
