package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linkservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/application"
)

// FakeSession is a programmable Session. The zero value succeeds at
// everything; tests override the Func fields to inject failures.
type FakeSession struct {
	mu    sync.Mutex
	trace []string

	// Sent collects plain message contents in send order.
	Sent []string
	// ComplexSent collects rich sends (attachments).
	ComplexSent []*discordgo.MessageSend

	// Members maps user IDs to guild members for GuildMember lookups.
	Members map[string]*discordgo.Member
	// Admins lists user IDs that hold the administrator permission.
	Admins map[string]bool

	threadSeq int

	ChannelMessageSendFunc func(channelID, content string) (*discordgo.Message, error)
	ThreadStartComplexFunc func(channelID string, data *discordgo.ThreadStart) (*discordgo.Channel, error)
	ChannelEditComplexFunc func(channelID string, data *discordgo.ChannelEdit) (*discordgo.Channel, error)
	ThreadMemberAddFunc    func(threadID, memberID string) error
	ThreadMemberRemoveFunc func(threadID, memberID string) error
	GuildMemberFunc        func(guildID, userID string) (*discordgo.Member, error)
}

var _ Session = (*FakeSession)(nil)

func (f *FakeSession) record(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, entry)
}

func (f *FakeSession) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessageSend:" + channelID)
	if f.ChannelMessageSendFunc != nil {
		return f.ChannelMessageSendFunc(channelID, content)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *FakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.record("ChannelMessageSendComplex:" + channelID)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ComplexSent = append(f.ComplexSent, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *FakeSession) ThreadStartComplex(channelID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.record("ThreadStartComplex:" + channelID + ":" + data.Name)
	if f.ThreadStartComplexFunc != nil {
		return f.ThreadStartComplexFunc(channelID, data)
	}
	f.mu.Lock()
	f.threadSeq++
	id := fmt.Sprintf("thread-%d", f.threadSeq)
	f.mu.Unlock()
	return &discordgo.Channel{ID: id, Name: data.Name, Type: data.Type}, nil
}

func (f *FakeSession) ChannelEditComplex(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	entry := "ChannelEditComplex:" + channelID
	if data.Locked != nil {
		entry += fmt.Sprintf(":locked=%t", *data.Locked)
	}
	if data.Archived != nil {
		entry += fmt.Sprintf(":archived=%t", *data.Archived)
	}
	f.record(entry)
	if f.ChannelEditComplexFunc != nil {
		return f.ChannelEditComplexFunc(channelID, data)
	}
	return &discordgo.Channel{ID: channelID}, nil
}

func (f *FakeSession) ThreadMemberAdd(threadID, memberID string, options ...discordgo.RequestOption) error {
	f.record("ThreadMemberAdd:" + threadID + ":" + memberID)
	if f.ThreadMemberAddFunc != nil {
		return f.ThreadMemberAddFunc(threadID, memberID)
	}
	return nil
}

func (f *FakeSession) ThreadMemberRemove(threadID, memberID string, options ...discordgo.RequestOption) error {
	f.record("ThreadMemberRemove:" + threadID + ":" + memberID)
	if f.ThreadMemberRemoveFunc != nil {
		return f.ThreadMemberRemoveFunc(threadID, memberID)
	}
	return nil
}

func (f *FakeSession) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.record("GuildMember:" + guildID + ":" + userID)
	if f.GuildMemberFunc != nil {
		return f.GuildMemberFunc(guildID, userID)
	}
	if member, ok := f.Members[userID]; ok {
		return member, nil
	}
	return nil, fmt.Errorf("member %s not found", userID)
}

func (f *FakeSession) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	f.record("UserChannelPermissions:" + userID)
	if f.Admins[userID] {
		return discordgo.PermissionAdministrator, nil
	}
	return discordgo.PermissionSendMessages, nil
}

// FakeCompetitionService records calls and returns programmable results.
type FakeCompetitionService struct {
	mu    sync.Mutex
	trace []string

	DefineCompetitionFunc    func(ctx context.Context, def competitiontypes.Definition) (competitionservice.CompetitionOperationResult, error)
	JoinCompetitionFunc      func(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error)
	ForceJoinCompetitionFunc func(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) (competitionservice.CompetitionOperationResult, error)
	FreezeParticipantFunc    func(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error)
	LeaderboardFunc          func(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error)
	TimeRemainingFunc        func(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error)
	KickParticipantFunc      func(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error)
	EndCompetitionFunc       func(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error)
}

var _ competitionservice.Service = (*FakeCompetitionService)(nil)

func (f *FakeCompetitionService) record(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, entry)
}

func (f *FakeCompetitionService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeCompetitionService) DefineCompetition(ctx context.Context, def competitiontypes.Definition) (competitionservice.CompetitionOperationResult, error) {
	f.record("DefineCompetition:" + string(def.Type))
	if f.DefineCompetitionFunc != nil {
		return f.DefineCompetitionFunc(ctx, def)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) JoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record(fmt.Sprintf("JoinCompetition:%s:%s", compType, userID))
	if f.JoinCompetitionFunc != nil {
		return f.JoinCompetitionFunc(ctx, compType, userID)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) ForceJoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) (competitionservice.CompetitionOperationResult, error) {
	f.record(fmt.Sprintf("ForceJoinCompetition:%s:%s:%s", compType, userID, delay))
	if f.ForceJoinCompetitionFunc != nil {
		return f.ForceJoinCompetitionFunc(ctx, compType, userID, delay)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) FreezeParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record(fmt.Sprintf("FreezeParticipant:%s:%s", compType, userID))
	if f.FreezeParticipantFunc != nil {
		return f.FreezeParticipantFunc(ctx, compType, userID)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) Leaderboard(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("Leaderboard:" + string(compType))
	if f.LeaderboardFunc != nil {
		return f.LeaderboardFunc(ctx, compType)
	}
	return competitionservice.CompetitionOperationResult{Success: &competitionservice.LeaderboardView{}}, nil
}

func (f *FakeCompetitionService) TimeRemaining(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("TimeRemaining:" + string(compType))
	if f.TimeRemainingFunc != nil {
		return f.TimeRemainingFunc(ctx, compType)
	}
	return competitionservice.CompetitionOperationResult{Success: &competitionservice.TimeRemainingView{Type: compType}}, nil
}

func (f *FakeCompetitionService) KickParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record(fmt.Sprintf("KickParticipant:%s:%s", compType, userID))
	if f.KickParticipantFunc != nil {
		return f.KickParticipantFunc(ctx, compType, userID)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) EndCompetition(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("EndCompetition:" + string(compType))
	if f.EndCompetitionFunc != nil {
		return f.EndCompetitionFunc(ctx, compType)
	}
	return competitionservice.CompetitionOperationResult{Success: struct{}{}}, nil
}

func (f *FakeCompetitionService) RecoverCompetitions(ctx context.Context) error {
	f.record("RecoverCompetitions")
	return nil
}

// FakeLinkService records calls and returns programmable results.
type FakeLinkService struct {
	mu    sync.Mutex
	trace []string

	BeginVerificationFunc func(ctx context.Context, discordID competitiontypes.DiscordID, kaggleID competitiontypes.KaggleID) (linkservice.LinkOperationResult, error)
	VerifyLinkFunc        func(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error)
	GetProfileFunc        func(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error)
	UnlinkFunc            func(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error)
	ListLinksFunc         func(ctx context.Context) (linkservice.LinkOperationResult, error)
}

var _ linkservice.Service = (*FakeLinkService)(nil)

func (f *FakeLinkService) record(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, entry)
}

func (f *FakeLinkService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeLinkService) BeginVerification(ctx context.Context, discordID competitiontypes.DiscordID, kaggleID competitiontypes.KaggleID) (linkservice.LinkOperationResult, error) {
	f.record(fmt.Sprintf("BeginVerification:%s:%s", discordID, kaggleID))
	if f.BeginVerificationFunc != nil {
		return f.BeginVerificationFunc(ctx, discordID, kaggleID)
	}
	return linkservice.LinkOperationResult{Success: &linkservice.VerificationStartedPayload{
		DiscordID: discordID,
		KaggleID:  kaggleID,
		Code:      "SOTA-11111",
	}}, nil
}

func (f *FakeLinkService) VerifyLink(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error) {
	f.record("VerifyLink:" + string(discordID))
	if f.VerifyLinkFunc != nil {
		return f.VerifyLinkFunc(ctx, discordID)
	}
	return linkservice.LinkOperationResult{Success: struct{}{}}, nil
}

func (f *FakeLinkService) GetProfile(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error) {
	f.record("GetProfile:" + string(discordID))
	if f.GetProfileFunc != nil {
		return f.GetProfileFunc(ctx, discordID)
	}
	return linkservice.LinkOperationResult{Success: &linkservice.ProfileView{}}, nil
}

func (f *FakeLinkService) Unlink(ctx context.Context, discordID competitiontypes.DiscordID) (linkservice.LinkOperationResult, error) {
	f.record("Unlink:" + string(discordID))
	if f.UnlinkFunc != nil {
		return f.UnlinkFunc(ctx, discordID)
	}
	return linkservice.LinkOperationResult{Success: struct{}{}}, nil
}

func (f *FakeLinkService) ListLinks(ctx context.Context) (linkservice.LinkOperationResult, error) {
	f.record("ListLinks")
	if f.ListLinksFunc != nil {
		return f.ListLinksFunc(ctx)
	}
	return linkservice.LinkOperationResult{Success: &linkservice.LinkListView{}}, nil
}

func (f *FakeLinkService) ResolveKaggleID(ctx context.Context, userID competitiontypes.DiscordID) (competitiontypes.KaggleID, error) {
	f.record("ResolveKaggleID:" + string(userID))
	return "", fmt.Errorf("no verified link for %s", userID)
}
