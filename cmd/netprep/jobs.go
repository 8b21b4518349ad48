package main

import (
	"log/slog"

	"github.com/livinlefevreloca/netprep/internal/orchestrator"
)

// submitAndWait runs one job through a fresh orchestrator, streaming its
// progress and stage messages to the process logger, and returns the
// terminal result. A job failure comes back as the error.
func submitAndWait(req orchestrator.Request) (orchestrator.Result, error) {
	logger := slog.Default()
	orch := orchestrator.New(
		orchestrator.DefaultFactory(logger.With("component", "cct")),
		logger.With("component", "orchestrator"))
	defer orch.Close()

	handle, err := orch.Submit(req)
	if err != nil {
		return nil, err
	}

	jobLog := logger.With("run_id", handle.RunID)
	for {
		select {
		case stage := <-handle.Progress:
			jobLog.Debug("job progress", "stage", stage)
		case message := <-handle.Messages:
			jobLog.Info("job stage", "message", message)
		case result := <-handle.Done:
			if failure, ok := result.(orchestrator.Failure); ok {
				return nil, failure
			}
			return result, nil
		}
	}
}

// workDir resolves the job work directory from a command flag, falling
// back to the configuration.
func workDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Job.WorkDir
}
