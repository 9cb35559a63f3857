package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	runs int
	err  error
}

func (s *stubJob) Name() string { return s.name }

func (s *stubJob) Run(ctx context.Context) error {
	s.runs++
	return s.err
}

func TestAddJobRejectsBadSpecAndDuplicates(t *testing.T) {
	s := NewCronScheduler()
	require.Error(t, s.AddJob(&stubJob{name: "a"}, "not a spec"))
	require.NoError(t, s.AddJob(&stubJob{name: "a"}, "0 3 * * *"))
	require.Error(t, s.AddJob(&stubJob{name: "a"}, "0 4 * * *"))
}

func TestRunNow(t *testing.T) {
	s := NewCronScheduler()
	job := &stubJob{name: "sweep", err: errors.New("boom")}
	require.NoError(t, s.AddJob(job, "*/5 * * * *"))
	require.ErrorIs(t, s.RunNow(context.Background(), "sweep"), job.err)
	require.Equal(t, 1, job.runs)
	require.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestWrapSkipsOverlappingRun(t *testing.T) {
	s := NewCronScheduler()
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := &blockingJob{started: started, release: release}
	run := s.wrap(blocking, "* * * * *")
	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	<-started
	run()
	close(release)
	<-done
	require.Equal(t, 1, blocking.runs)
}

type blockingJob struct {
	started chan struct{}
	release chan struct{}
	runs    int
}

func (b *blockingJob) Name() string { return "blocking" }

func (b *blockingJob) Run(ctx context.Context) error {
	b.runs++
	close(b.started)
	<-b.release
	return nil
}
