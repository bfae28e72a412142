// Package discord is the presentation adapter: it implements the chat
// surface the services consume and routes prefix commands from the gateway
// into them.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// Session is the slice of the discordgo session the platform uses. It exists
// so tests can substitute a fake.
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ThreadStartComplex(channelID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ThreadMemberAdd(threadID string, memberID string, options ...discordgo.RequestOption) error
	ThreadMemberRemove(threadID string, memberID string, options ...discordgo.RequestOption) error
	GuildMember(guildID string, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	UserChannelPermissions(userID string, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

var _ Session = (*discordgo.Session)(nil)

// Platform implements the ChatPlatform interface on a discordgo session.
// Threads are created under the configured competitions channel.
type Platform struct {
	session   Session
	guildID   string
	channelID string
	logger    *slog.Logger
}

var _ competitionservice.ChatPlatform = (*Platform)(nil)

// NewPlatform creates a Platform bound to one guild and its competitions
// channel.
func NewPlatform(session Session, guildID, channelID string, logger *slog.Logger) *Platform {
	return &Platform{
		session:   session,
		guildID:   guildID,
		channelID: channelID,
		logger:    logger,
	}
}

// Bind points the platform at its guild and competitions channel. It must be
// called before any thread operation, once the gateway session is ready and
// the channel has been resolved.
func (p *Platform) Bind(guildID, channelID string) {
	p.guildID = guildID
	p.channelID = channelID
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	if _, err := p.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (p *Platform) CreatePrivateThread(ctx context.Context, name string) (string, error) {
	thread, err := p.session.ThreadStartComplex(p.channelID, &discordgo.ThreadStart{
		Name:                name,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 10080,
		Invitable:           false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create thread %q: %w", name, err)
	}
	return thread.ID, nil
}

func (p *Platform) setThreadState(threadID string, locked *bool, archived *bool) error {
	_, err := p.session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{
		Locked:   locked,
		Archived: archived,
	})
	return err
}

func (p *Platform) LockThread(ctx context.Context, threadID string) error {
	locked := true
	if err := p.setThreadState(threadID, &locked, nil); err != nil {
		return fmt.Errorf("failed to lock thread: %w", err)
	}
	return nil
}

func (p *Platform) UnlockThread(ctx context.Context, threadID string) error {
	locked := false
	if err := p.setThreadState(threadID, &locked, nil); err != nil {
		return fmt.Errorf("failed to unlock thread: %w", err)
	}
	return nil
}

func (p *Platform) ArchiveThread(ctx context.Context, threadID string) error {
	archived := true
	if err := p.setThreadState(threadID, nil, &archived); err != nil {
		return fmt.Errorf("failed to archive thread: %w", err)
	}
	return nil
}

func (p *Platform) AddThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error {
	if err := p.session.ThreadMemberAdd(threadID, string(userID)); err != nil {
		return fmt.Errorf("failed to add thread member: %w", err)
	}
	return nil
}

func (p *Platform) RemoveThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error {
	if err := p.session.ThreadMemberRemove(threadID, string(userID)); err != nil {
		return fmt.Errorf("failed to remove thread member: %w", err)
	}
	return nil
}

// DisplayName resolves the guild nickname, then the global name, then the
// account name, and finally falls back to the raw ID so rendering never
// blocks on a missing member.
func (p *Platform) DisplayName(ctx context.Context, userID competitiontypes.DiscordID) string {
	member, err := p.session.GuildMember(p.guildID, string(userID))
	if err != nil || member == nil {
		p.logger.DebugContext(ctx, "Could not resolve member, using raw ID",
			attr.String("user_id", string(userID)),
		)
		return string(userID)
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		if member.User.Username != "" {
			return member.User.Username
		}
	}
	return string(userID)
}
