package competitionservice

import (
	"context"
	"fmt"
	"sync"

	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ------------------------
// Fake competition DB
// ------------------------

// FakeCompetitionDB is an in-memory, programmable stub for the
// competitiondb.CompetitionDB interface. By default every call succeeds
// against the in-memory maps; each method can be overridden per test.
type FakeCompetitionDB struct {
	mu    sync.Mutex
	trace []string

	Participants map[string]competitiondb.ParticipantRow
	Frozen       map[string]competitiondb.FrozenScoreRow

	UpsertParticipantFunc     func(ctx context.Context, row *competitiondb.ParticipantRow) error
	DeleteParticipantFunc     func(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error
	DeleteAllParticipantsFunc func(ctx context.Context, compType competitiontypes.CompetitionType) error
	ReadParticipantsFunc      func(ctx context.Context, compType competitiontypes.CompetitionType) ([]competitiondb.ParticipantRow, error)
	UpsertFrozenScoreFunc     func(ctx context.Context, row *competitiondb.FrozenScoreRow) error
	DeleteFrozenScoresFunc    func(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error
	ReadFrozenScoreFunc       func(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType, contestRef competitiontypes.ContestRef) (*competitiondb.FrozenScoreRow, error)
	DeleteAllFrozenScoresFunc func(ctx context.Context, compType competitiontypes.CompetitionType) error
}

var _ competitiondb.CompetitionDB = (*FakeCompetitionDB)(nil)

func NewFakeCompetitionDB() *FakeCompetitionDB {
	return &FakeCompetitionDB{
		Participants: map[string]competitiondb.ParticipantRow{},
		Frozen:       map[string]competitiondb.FrozenScoreRow{},
	}
}

func (f *FakeCompetitionDB) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeCompetitionDB) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func rowKey(userID, compType, contestRef string) string {
	return userID + "|" + compType + "|" + contestRef
}

func (f *FakeCompetitionDB) UpsertParticipant(ctx context.Context, row *competitiondb.ParticipantRow) error {
	f.record("UpsertParticipant")
	if f.UpsertParticipantFunc != nil {
		return f.UpsertParticipantFunc(ctx, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Participants[rowKey(row.UserID, row.CompType, row.ContestRef)] = *row
	return nil
}

func (f *FakeCompetitionDB) DeleteParticipant(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error {
	f.record("DeleteParticipant")
	if f.DeleteParticipantFunc != nil {
		return f.DeleteParticipantFunc(ctx, userID, compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.Participants {
		if row.UserID == string(userID) && row.CompType == string(compType) {
			delete(f.Participants, key)
		}
	}
	return nil
}

func (f *FakeCompetitionDB) DeleteAllParticipants(ctx context.Context, compType competitiontypes.CompetitionType) error {
	f.record("DeleteAllParticipants")
	if f.DeleteAllParticipantsFunc != nil {
		return f.DeleteAllParticipantsFunc(ctx, compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.Participants {
		if row.CompType == string(compType) {
			delete(f.Participants, key)
		}
	}
	return nil
}

func (f *FakeCompetitionDB) ReadParticipants(ctx context.Context, compType competitiontypes.CompetitionType) ([]competitiondb.ParticipantRow, error) {
	f.record("ReadParticipants")
	if f.ReadParticipantsFunc != nil {
		return f.ReadParticipantsFunc(ctx, compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []competitiondb.ParticipantRow
	for _, row := range f.Participants {
		if row.CompType == string(compType) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *FakeCompetitionDB) UpsertFrozenScore(ctx context.Context, row *competitiondb.FrozenScoreRow) error {
	f.record("UpsertFrozenScore")
	if f.UpsertFrozenScoreFunc != nil {
		return f.UpsertFrozenScoreFunc(ctx, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Frozen[rowKey(row.UserID, row.CompType, row.ContestRef)] = *row
	return nil
}

func (f *FakeCompetitionDB) DeleteFrozenScores(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error {
	f.record("DeleteFrozenScores")
	if f.DeleteFrozenScoresFunc != nil {
		return f.DeleteFrozenScoresFunc(ctx, userID, compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.Frozen {
		if row.UserID == string(userID) && row.CompType == string(compType) {
			delete(f.Frozen, key)
		}
	}
	return nil
}

func (f *FakeCompetitionDB) ReadFrozenScore(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType, contestRef competitiontypes.ContestRef) (*competitiondb.FrozenScoreRow, error) {
	f.record("ReadFrozenScore")
	if f.ReadFrozenScoreFunc != nil {
		return f.ReadFrozenScoreFunc(ctx, userID, compType, contestRef)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.Frozen[rowKey(string(userID), string(compType), string(contestRef))]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *FakeCompetitionDB) DeleteAllFrozenScores(ctx context.Context, compType competitiontypes.CompetitionType) error {
	f.record("DeleteAllFrozenScores")
	if f.DeleteAllFrozenScoresFunc != nil {
		return f.DeleteAllFrozenScoresFunc(ctx, compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, row := range f.Frozen {
		if row.CompType == string(compType) {
			delete(f.Frozen, key)
		}
	}
	return nil
}

// ------------------------
// Fake definition store
// ------------------------

type FakeDefinitionStore struct {
	mu   sync.Mutex
	defs map[competitiontypes.CompetitionType]competitiontypes.Definition

	SaveFunc    func(def *competitiontypes.Definition) error
	LoadAllFunc func() ([]competitiontypes.Definition, error)
	DeleteFunc  func(compType competitiontypes.CompetitionType) error
}

var _ competitiondb.DefinitionStore = (*FakeDefinitionStore)(nil)

func NewFakeDefinitionStore() *FakeDefinitionStore {
	return &FakeDefinitionStore{defs: map[competitiontypes.CompetitionType]competitiontypes.Definition{}}
}

func (f *FakeDefinitionStore) Save(def *competitiontypes.Definition) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(def)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.defs[def.Type] = *def
	return nil
}

func (f *FakeDefinitionStore) LoadAll() ([]competitiontypes.Definition, error) {
	if f.LoadAllFunc != nil {
		return f.LoadAllFunc()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]competitiontypes.Definition, 0, len(f.defs))
	for _, def := range f.defs {
		out = append(out, def)
	}
	return out, nil
}

func (f *FakeDefinitionStore) Delete(compType competitiontypes.CompetitionType) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(compType)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.defs, compType)
	return nil
}

// ------------------------
// Fake fetcher and resolver
// ------------------------

// FakeFetcher returns programmed results per contest ref and the safe
// default for everything else.
type FakeFetcher struct {
	mu      sync.Mutex
	Results map[competitiontypes.ContestRef]kaggle.FetchResult
	calls   []competitiontypes.ContestRef

	FetchFunc func(ctx context.Context, contestRef competitiontypes.ContestRef, userID competitiontypes.DiscordID) kaggle.FetchResult
}

var _ kaggle.Fetcher = (*FakeFetcher)(nil)

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{Results: map[competitiontypes.ContestRef]kaggle.FetchResult{}}
}

func (f *FakeFetcher) Fetch(ctx context.Context, contestRef competitiontypes.ContestRef, userID competitiontypes.DiscordID) kaggle.FetchResult {
	f.mu.Lock()
	f.calls = append(f.calls, contestRef)
	f.mu.Unlock()
	if f.FetchFunc != nil {
		return f.FetchFunc(ctx, contestRef, userID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.Results[contestRef]; ok {
		return res
	}
	return kaggle.SafeDefault(kaggle.FailureCLI, fmt.Errorf("no programmed result for %s", contestRef))
}

// Calls returns the contest refs fetched, in order.
func (f *FakeFetcher) Calls() []competitiontypes.ContestRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]competitiontypes.ContestRef, len(f.calls))
	copy(out, f.calls)
	return out
}

type FakeResolver struct {
	IDs map[competitiontypes.DiscordID]competitiontypes.KaggleID
}

var _ kaggle.IdentityResolver = (*FakeResolver)(nil)

func (f *FakeResolver) ResolveKaggleID(ctx context.Context, userID competitiontypes.DiscordID) (competitiontypes.KaggleID, error) {
	if id, ok := f.IDs[userID]; ok {
		return id, nil
	}
	return "", fmt.Errorf("no linked account for %s", userID)
}

// ------------------------
// Fake chat platform
// ------------------------

type FakeChatPlatform struct {
	mu    sync.Mutex
	trace []string

	Messages []string
	// nextThreadID feeds CreatePrivateThread; it increments per call.
	nextThreadID int

	SendMessageFunc         func(ctx context.Context, channelID, content string) error
	CreatePrivateThreadFunc func(ctx context.Context, name string) (string, error)
}

var _ ChatPlatform = (*FakeChatPlatform)(nil)

func NewFakeChatPlatform() *FakeChatPlatform {
	return &FakeChatPlatform{}
}

func (f *FakeChatPlatform) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeChatPlatform) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeChatPlatform) SendMessage(ctx context.Context, channelID, content string) error {
	f.record("SendMessage:" + channelID)
	if f.SendMessageFunc != nil {
		return f.SendMessageFunc(ctx, channelID, content)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, content)
	return nil
}

func (f *FakeChatPlatform) CreatePrivateThread(ctx context.Context, name string) (string, error) {
	f.record("CreatePrivateThread:" + name)
	if f.CreatePrivateThreadFunc != nil {
		return f.CreatePrivateThreadFunc(ctx, name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextThreadID++
	return fmt.Sprintf("thread-%d", f.nextThreadID), nil
}

func (f *FakeChatPlatform) LockThread(ctx context.Context, threadID string) error {
	f.record("LockThread:" + threadID)
	return nil
}

func (f *FakeChatPlatform) UnlockThread(ctx context.Context, threadID string) error {
	f.record("UnlockThread:" + threadID)
	return nil
}

func (f *FakeChatPlatform) ArchiveThread(ctx context.Context, threadID string) error {
	f.record("ArchiveThread:" + threadID)
	return nil
}

func (f *FakeChatPlatform) AddThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error {
	f.record(fmt.Sprintf("AddThreadMember:%s:%s", threadID, userID))
	return nil
}

func (f *FakeChatPlatform) RemoveThreadMember(ctx context.Context, threadID string, userID competitiontypes.DiscordID) error {
	f.record(fmt.Sprintf("RemoveThreadMember:%s:%s", threadID, userID))
	return nil
}

func (f *FakeChatPlatform) DisplayName(ctx context.Context, userID competitiontypes.DiscordID) string {
	return "name-" + string(userID)
}

// ------------------------
// Fake event bus
// ------------------------

// FakeEventBus records published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message

	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: map[string][]*message.Message{}}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published[topic] = append(f.Published[topic], messages...)
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

// TopicCount returns how many messages were published to a topic.
func (f *FakeEventBus) TopicCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published[topic])
}
