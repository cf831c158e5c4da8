package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/county-home-values/internal/domain"
)

// SnapshotTransformer implements SnapshotBuilder using the domain derivations
// for a fixed dataset profile.
type SnapshotTransformer struct {
	profile domain.Profile
	logger  *slog.Logger
}

// NewTransformer creates a SnapshotTransformer for profile.
func NewTransformer(profile domain.Profile, logger *slog.Logger) *SnapshotTransformer {
	return &SnapshotTransformer{
		profile: profile,
		logger:  logger,
	}
}

func (t *SnapshotTransformer) Build(ctx context.Context, table domain.Table) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.logger.Debug("deriving snapshot",
		"as_of", t.profile.AsOf,
		"windows", len(t.profile.Windows),
		"top_n", t.profile.TopN,
	)
	return domain.BuildSnapshot(table, t.profile)
}
