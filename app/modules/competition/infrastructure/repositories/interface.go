package competitiondb

import (
	"context"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// CompetitionDB is the relational persistence surface the lifecycle manager
// consumes. Each call is one transactional statement; writes are visible to
// subsequent reads immediately.
type CompetitionDB interface {
	UpsertParticipant(ctx context.Context, row *ParticipantRow) error
	DeleteParticipant(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error
	DeleteAllParticipants(ctx context.Context, compType competitiontypes.CompetitionType) error
	ReadParticipants(ctx context.Context, compType competitiontypes.CompetitionType) ([]ParticipantRow, error)

	UpsertFrozenScore(ctx context.Context, row *FrozenScoreRow) error
	DeleteFrozenScores(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error
	ReadFrozenScore(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType, contestRef competitiontypes.ContestRef) (*FrozenScoreRow, error)
	DeleteAllFrozenScores(ctx context.Context, compType competitiontypes.CompetitionType) error
}

// DefinitionStore persists competition definitions as one document per type,
// independent of the relational store, so recovery can reconstruct them even
// when it cannot reach Postgres history.
type DefinitionStore interface {
	Save(def *competitiontypes.Definition) error
	LoadAll() ([]competitiontypes.Definition, error)
	Delete(compType competitiontypes.CompetitionType) error
}
