package main

import (
	"context"
	"testing"
	"time"

	"subsweep/internal/logging"
	"subsweep/internal/testsupport"
)

func TestRunDaemonScansOnStartAndShutsDown(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Metrics.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runDaemon(ctx, env.cfg, logging.NewNop(), true)
	}()

	journal := testsupport.MustOpenHistory(t, env.cfg)
	waitFor(t, 10*time.Second, func() bool {
		runs, err := journal.List(context.Background(), 1)
		return err == nil && len(runs) == 1
	})
	runs, _ := journal.List(context.Background(), 1)
	if runs[0].Trigger != "startup" {
		t.Fatalf("expected startup trigger, got %q", runs[0].Trigger)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runDaemon: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestRunDaemonRejectsBadCron(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Schedule.CronExpr = "whenever"

	err := runDaemon(context.Background(), env.cfg, logging.NewNop(), false)
	if err == nil {
		t.Fatal("expected invalid cron error")
	}
}
