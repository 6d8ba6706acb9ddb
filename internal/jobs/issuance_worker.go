package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/aurorains/insurance-platform/internal/core"
)

const issuanceBatchSize = 10

// IssuanceWorker turns approved applications into active policies. The poll
// excludes applications already carrying a policy; the service is idempotent
// and heals interrupted issuances on re-entry.
type IssuanceWorker struct {
	BaseWorker
	apps     core.ApplicationRepo
	policies core.PolicyService
}

func NewIssuanceWorker(
	apps core.ApplicationRepo,
	policySvc core.PolicyService,
	interval time.Duration,
	log *slog.Logger,
) *IssuanceWorker {
	return &IssuanceWorker{
		BaseWorker: NewBaseWorker("issuance", interval, log),
		apps:       apps,
		policies:   policySvc,
	}
}

// Start begins the worker polling loop.
func (w *IssuanceWorker) Start(ctx context.Context) {
	w.Poll(ctx, w.processApproved)
}

func (w *IssuanceWorker) processApproved(ctx context.Context) error {
	apps, err := w.apps.FindAwaitingIssuance(ctx, issuanceBatchSize)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		return nil
	}

	for _, app := range apps {
		policy, err := w.policies.IssueFromApplication(ctx, app.ID)
		if err != nil {
			w.log.Error("failed to issue policy",
				"application_id", app.ID,
				"err", err,
			)
			continue
		}

		w.log.Info("policy issued",
			"application_id", app.ID,
			"policy_id", policy.ID,
			"policy_number", policy.Number,
		)
	}

	return nil
}
