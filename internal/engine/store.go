package engine

import (
	"context"

	"github.com/verte-zerg/retype/internal/model"
)

// Store is the persistence boundary the engine calls outward. Load methods
// return nil without error when no record exists. Implementations may fail;
// the engine treats every store error as a non-fatal warning and keeps
// operating in memory.
type Store interface {
	LoadCheckpoint(ctx context.Context, filePath string) (*model.Checkpoint, error)
	SaveCheckpoint(ctx context.Context, cp model.Checkpoint) error
	DeleteCheckpoint(ctx context.Context, filePath string) error
	ListCheckpoints(ctx context.Context) ([]model.Checkpoint, error)

	AppendResult(ctx context.Context, res model.SessionResult) error
	BestResult(ctx context.Context, filePath string) (*model.SessionResult, error)

	LoadGhost(ctx context.Context, filePath string) (*model.GhostTrace, error)
	SaveGhost(ctx context.Context, trace model.GhostTrace) error
}
