package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Worker runs analysis jobs from the orchestrator queue.
type Worker struct {
	engine *Engine
	log    *slog.Logger
}

func NewWorker(engine *Engine, log *slog.Logger) *Worker {
	return &Worker{engine: engine, log: log.With("component", "worker")}
}

var phaseStatus = map[string]JobStatus{
	"validating": StatusValidating,
	"parsing":    StatusParsing,
	"scoring":    StatusScoring,
	"ranking":    StatusRanking,
	"refining":   StatusRefining,
}

// Process runs a single job through the engine, recording phase
// transitions and per-document errors on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	w.log.Info("job started", "job_id", job.ID, "documents", len(job.Documents()))

	hooks := Hooks{
		Phase: func(phase string) {
			status, ok := phaseStatus[phase]
			if !ok {
				status = job.Snapshot().Status
			}
			job.SetStatus(status, phase)
		},
		DocSkipped: func(filename string, err error) {
			job.IncrSkipped()
			job.AddError(fmt.Sprintf("%s: %v", filename, err))
			w.log.Warn("document skipped", "job_id", job.ID, "file", filename, "error", err)
		},
	}

	result, err := w.engine.Run(ctx, job.Persona, job.Task, job.Documents(), hooks)
	if err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "failed")
		w.log.Error("job failed", "job_id", job.ID, "error", err)
		return
	}

	job.SetResult(result)
	job.SetStatus(StatusCompleted, "completed")
	w.log.Info("job completed", "job_id", job.ID,
		"ranked_sections", len(result.ExtractedSections),
		"subsections", len(result.SubsectionAnalysis))
}
