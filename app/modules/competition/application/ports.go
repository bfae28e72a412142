package competitionservice

import (
	"context"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// ChatPlatform is the slice of the chat surface the lifecycle manager needs.
// The discord package implements it; tests use a fake. The manager never
// formats messages beyond plain strings, rendering stays in the adapter.
type ChatPlatform interface {
	SendMessage(ctx context.Context, channelID, content string) error
	// CreatePrivateThread creates a locked-capable private thread under the
	// configured competitions channel and returns its ID.
	CreatePrivateThread(ctx context.Context, name string) (string, error)
	LockThread(ctx context.Context, threadID string) error
	UnlockThread(ctx context.Context, threadID string) error
	ArchiveThread(ctx context.Context, threadID string) error
	AddThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error
	RemoveThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error
	// DisplayName resolves a member's display name, falling back to the raw
	// ID when the member cannot be resolved.
	DisplayName(ctx context.Context, userID competitiontypes.DiscordID) string
}
