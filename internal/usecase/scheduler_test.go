package usecase

import (
	"context"
	"testing"
	"time"
)

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *fakeDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipelineOnTrigger(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{}
	f := &pipelineFixture{searcher: searcher, generator: &fakeGenerator{}, repo: &fakeRepository{}}
	driver := &fakeDriver{}

	s := NewScheduler(driver, f.build(), testLogger)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if driver.job == nil {
		t.Fatal("job was not registered")
	}

	driver.job(time.Now())
	driver.job(time.Now())
	if searcher.callCount() != 8 {
		t.Fatalf("expected two full collections, got %d searches", searcher.callCount())
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if !driver.stopped {
		t.Fatal("driver was not stopped")
	}
}

func TestSchedulerWithoutDriverIsNoop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
}
