package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/aurorains/insurance-platform/internal/core"
)

const uwBatchSize = 10

// UnderwritingWorker drives pending applications through the automated
// assessment pipeline. The poll excludes already-assessed applications, so a
// backlog of referred cases never crowds newer submissions out of the batch.
type UnderwritingWorker struct {
	BaseWorker
	apps core.ApplicationRepo
	uw   core.UnderwritingService
}

func NewUnderwritingWorker(
	apps core.ApplicationRepo,
	uwSvc core.UnderwritingService,
	interval time.Duration,
	log *slog.Logger,
) *UnderwritingWorker {
	return &UnderwritingWorker{
		BaseWorker: NewBaseWorker("underwriting", interval, log),
		apps:       apps,
		uw:         uwSvc,
	}
}

// Start begins the worker polling loop.
func (w *UnderwritingWorker) Start(ctx context.Context) {
	w.Poll(ctx, w.processPending)
}

func (w *UnderwritingWorker) processPending(ctx context.Context) error {
	apps, err := w.apps.FindAwaitingAssessment(ctx, uwBatchSize)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		return nil
	}

	for _, app := range apps {
		assessment, err := w.uw.ProcessApplication(ctx, app.ID)
		if err != nil {
			w.log.Error("failed to assess application",
				"application_id", app.ID,
				"err", err,
			)
			continue
		}

		w.log.Info("application assessed",
			"application_id", app.ID,
			"risk_score", assessment.RiskScore,
			"result", assessment.Result,
		)
	}

	return nil
}
