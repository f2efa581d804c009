package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	queue "github.com/okian/starchart/internal/adapters/mq/queue"
	worker "github.com/okian/starchart/internal/adapters/mq/worker"
	"github.com/okian/starchart/internal/namegroup"
	logging "github.com/okian/starchart/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

// countingGrouper wraps the real agglomerator and counts calls.
type countingGrouper struct {
	inner *namegroup.Agglomerator
	calls atomic.Int64
	fail  string
}

func (g *countingGrouper) Group(ctx context.Context, names []string) (*namegroup.Result, error) {
	g.calls.Add(1)
	for _, n := range names {
		if n == g.fail {
			return nil, errors.New("refused " + n)
		}
	}
	return g.inner.Group(ctx, names)
}

func jobs(n int) []queue.Job {
	out := make([]queue.Job, n)
	for i := range out {
		out[i] = queue.Job{Seq: i, Names: []string{"A. Smith", "A Smith", fmt.Sprintf("Solo %d", i)}}
	}
	return out
}

func TestPool_Process(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		g := &countingGrouper{inner: namegroup.NewAgglomerator()}
		ctx := context.Background()

		convey.Convey("When processing more jobs than workers", func() {
			q := queue.NewInMemoryQueue(queue.WithCapacity(20))
			pool := worker.NewPool(4, q, g, worker.WithName("names"))
			results, err := pool.Process(ctx, jobs(20))

			convey.Convey("Then every job is grouped once and indexed by seq", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(results, convey.ShouldHaveLength, 20)
				convey.So(g.calls.Load(), convey.ShouldEqual, 20)
				for i, r := range results {
					convey.So(r.Seq, convey.ShouldEqual, i)
					convey.So(r.Groups.Groups, convey.ShouldHaveLength, 2)
					convey.So(r.Groups.Groups[1].Names, convey.ShouldResemble, []string{fmt.Sprintf("Solo %d", i)})
				}
			})

			convey.Convey("Then the queue is closed and drained", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Len(ctx), convey.ShouldEqual, 0)
			})

			convey.Convey("Then running the pool again fails on the closed queue", func() {
				_, err := pool.Process(ctx, jobs(2))
				convey.So(errors.Is(err, queue.ErrClosed), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldStartWith, "names: ")
				convey.So(g.calls.Load(), convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When a job fails", func() {
			g.fail = "Solo 3"
			pool := worker.NewPool(2, queue.NewInMemoryQueue(queue.WithCapacity(8)), g)
			_, err := pool.Process(ctx, jobs(8))

			convey.Convey("Then the error names the job", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "job 3")
				convey.So(err.Error(), convey.ShouldContainSubstring, "refused Solo 3")
			})
		})

		convey.Convey("When the queue is too small", func() {
			pool := worker.NewPool(2, queue.NewInMemoryQueue(queue.WithCapacity(2)), g)
			_, err := pool.Process(ctx, jobs(3))

			convey.Convey("Then ErrQueueFull is returned", func() {
				convey.So(errors.Is(err, worker.ErrQueueFull), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a job seq is out of range", func() {
			pool := worker.NewPool(1, queue.NewInMemoryQueue(), g)
			_, err := pool.Process(ctx, []queue.Job{{Seq: 5}})
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			pool := worker.NewPool(2, queue.NewInMemoryQueue(), g)
			_, err := pool.Process(cctx, jobs(3))

			convey.Convey("Then the cancellation is reported", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When there are no jobs", func() {
			pool := worker.NewPool(0, queue.NewInMemoryQueue(), g)
			results, err := pool.Process(ctx, nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(results, convey.ShouldBeEmpty)
		})
	})
}
