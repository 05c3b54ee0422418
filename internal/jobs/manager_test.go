package jobs_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/noor-go/internal/config"
	"github.com/vrsandeep/noor-go/internal/jobs"
	"github.com/vrsandeep/noor-go/internal/websocket"
)

type fakeJobContext struct {
	db     *sql.DB
	cfg    *config.Config
	ws     *websocket.Hub
	jobMgr *jobs.JobManager
}

func (f *fakeJobContext) DB() *sql.DB                  { return f.db }
func (f *fakeJobContext) Config() *config.Config       { return f.cfg }
func (f *fakeJobContext) WsHub() *websocket.Hub        { return f.ws }
func (f *fakeJobContext) JobManager() *jobs.JobManager { return f.jobMgr }

func newFakeContext() *fakeJobContext {
	ctx := &fakeJobContext{cfg: config.Default(), ws: websocket.NewHub()}
	ctx.jobMgr = jobs.NewManager(ctx)
	return ctx
}

func TestManager_NewManager(t *testing.T) {
	ctx := newFakeContext()
	assert.NotNil(t, ctx.jobMgr)
	assert.Empty(t, ctx.jobMgr.GetStatus())
}

func TestManager_RegisterAndGetStatus(t *testing.T) {
	mgr := newFakeContext().jobMgr
	mgr.Register("jobB", "Job B", func(ctx jobs.JobContext) error { return nil })
	mgr.Register("jobA", "Job A", func(ctx jobs.JobContext) error { return nil })

	statuses := mgr.GetStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, "jobA", statuses[0].ID)
	assert.Equal(t, "jobB", statuses[1].ID)
	assert.Equal(t, "idle", statuses[0].Status)
}

func TestManager_RunJob_SuccessAndStatus(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	var called atomic.Bool
	mgr.Register("jobX", "Job X", func(ctx jobs.JobContext) error {
		called.Store(true)
		return nil
	})

	require.NoError(t, mgr.RunJob("jobX", ctx))
	mgr.Wait()

	assert.True(t, called.Load())
	statuses := mgr.GetStatus()
	assert.Equal(t, "success", statuses[0].Status)
	assert.False(t, statuses[0].EndTime.IsZero())
}

func TestManager_RunJob_FallsBackToAppContext(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	var got jobs.JobContext
	mgr.Register("jobX", "Job X", func(jc jobs.JobContext) error {
		got = jc
		return nil
	})

	require.NoError(t, mgr.RunJob("jobX", nil))
	mgr.Wait()
	assert.Same(t, ctx, got)
}

func TestManager_RunJob_TaskError(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	mgr.Register("jobE", "Job E", func(ctx jobs.JobContext) error { return errors.New("upstream down") })

	require.NoError(t, mgr.RunJob("jobE", ctx))
	mgr.Wait()

	statuses := mgr.GetStatus()
	assert.Equal(t, "failed", statuses[0].Status)
	assert.Equal(t, "upstream down", statuses[0].Message)
}

func TestManager_RunJob_AlreadyRunning(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	block := make(chan struct{})
	mgr.Register("jobY", "Job Y", func(ctx jobs.JobContext) error { <-block; return nil })
	mgr.Register("jobZ", "Job Z", func(ctx jobs.JobContext) error { return nil })

	require.NoError(t, mgr.RunJob("jobY", ctx))
	assert.ErrorIs(t, mgr.RunJob("jobY", ctx), jobs.ErrJobRunning)
	assert.ErrorIs(t, mgr.RunJob("jobZ", ctx), jobs.ErrJobRunning)

	close(block)
	mgr.Wait()
	assert.NoError(t, mgr.RunJob("jobZ", ctx))
	mgr.Wait()
}

func TestManager_RunJob_NotFound(t *testing.T) {
	ctx := newFakeContext()
	err := ctx.jobMgr.RunJob("nojob", ctx)
	assert.Error(t, err)
}

func TestManager_RunJob_Panic(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	mgr.Register("panicJob", "Panic Job", func(ctx jobs.JobContext) error { panic("fail") })

	require.NoError(t, mgr.RunJob("panicJob", ctx))
	mgr.Wait()

	statuses := mgr.GetStatus()
	assert.Equal(t, "failed", statuses[0].Status)
	assert.Contains(t, statuses[0].Message, "panicked")
}

func TestManager_Concurrency(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	release := make(chan struct{})
	var count atomic.Int32
	mgr.Register("jobC", "Job C", func(ctx jobs.JobContext) error {
		count.Add(1)
		<-release
		return nil
	})

	var started atomic.Int32
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if mgr.RunJob("jobC", ctx) == nil {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	close(release)
	mgr.Wait()

	assert.Equal(t, int32(1), started.Load(), "job should only start once concurrently")
	assert.Equal(t, int32(1), count.Load())
}

func TestManager_Shutdown(t *testing.T) {
	ctx := newFakeContext()
	mgr := ctx.jobMgr
	mgr.Register("long", "Long Job", func(jobs.JobContext) error {
		<-mgr.Context().Done()
		return mgr.Context().Err()
	})

	require.NoError(t, mgr.RunJob("long", ctx))
	mgr.Shutdown()

	statuses := mgr.GetStatus()
	assert.Equal(t, "failed", statuses[0].Status)
	assert.Equal(t, context.Canceled.Error(), statuses[0].Message)
}
