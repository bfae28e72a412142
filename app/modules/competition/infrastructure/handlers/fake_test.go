package competitionhandlers

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// FakeService is a programmable stub for the competition service.
type FakeService struct {
	trace []string

	FreezeParticipantFunc func(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error)
}

var _ competitionservice.Service = (*FakeService)(nil)

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) DefineCompetition(ctx context.Context, def competitiontypes.Definition) (competitionservice.CompetitionOperationResult, error) {
	f.record("DefineCompetition")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) JoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record("JoinCompetition")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) ForceJoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) (competitionservice.CompetitionOperationResult, error) {
	f.record("ForceJoinCompetition")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) FreezeParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record("FreezeParticipant")
	if f.FreezeParticipantFunc != nil {
		return f.FreezeParticipantFunc(ctx, compType, userID)
	}
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) Leaderboard(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("Leaderboard")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) TimeRemaining(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("TimeRemaining")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) KickParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitionservice.CompetitionOperationResult, error) {
	f.record("KickParticipant")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) EndCompetition(ctx context.Context, compType competitiontypes.CompetitionType) (competitionservice.CompetitionOperationResult, error) {
	f.record("EndCompetition")
	return competitionservice.CompetitionOperationResult{}, nil
}

func (f *FakeService) RecoverCompetitions(ctx context.Context) error {
	f.record("RecoverCompetitions")
	return nil
}

// FakeBus records published messages per topic.
type FakeBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
}

func NewFakeBus() *FakeBus {
	return &FakeBus{Published: map[string][]*message.Message{}}
}

func (f *FakeBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published[topic] = append(f.Published[topic], messages...)
	return nil
}

func (f *FakeBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeBus) Close() error { return nil }
