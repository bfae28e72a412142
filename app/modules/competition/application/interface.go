package competitionservice

import (
	"context"
	"time"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/utils/results"
)

// CompetitionOperationResult is the standard return for competition
// operations.
type CompetitionOperationResult = results.OperationResult

// Service defines the competition lifecycle operations.
type Service interface {
	DefineCompetition(ctx context.Context, def competitiontypes.Definition) (CompetitionOperationResult, error)
	JoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error)
	ForceJoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) (CompetitionOperationResult, error)
	FreezeParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error)
	Leaderboard(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error)
	TimeRemaining(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error)
	KickParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error)
	EndCompetition(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error)
	RecoverCompetitions(ctx context.Context) error
}
