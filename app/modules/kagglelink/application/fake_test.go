package linkservice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/profile"
	linkdb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories"
)

// FakeLinkDB is an in-memory, programmable stub for linkdb.LinkDB.
type FakeLinkDB struct {
	mu   sync.Mutex
	Rows map[string]linkdb.LinkRow

	FindByDiscordIDFunc func(ctx context.Context, discordID competitiontypes.DiscordID) (*linkdb.LinkRow, error)
	FindByKaggleIDFunc  func(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linkdb.LinkRow, error)
	UpsertLinkFunc      func(ctx context.Context, row *linkdb.LinkRow) error
	DeleteLinkFunc      func(ctx context.Context, discordID competitiontypes.DiscordID) (bool, error)
	ListLinksFunc       func(ctx context.Context) ([]linkdb.LinkRow, error)
}

var _ linkdb.LinkDB = (*FakeLinkDB)(nil)

func NewFakeLinkDB() *FakeLinkDB {
	return &FakeLinkDB{Rows: map[string]linkdb.LinkRow{}}
}

func (f *FakeLinkDB) FindByDiscordID(ctx context.Context, discordID competitiontypes.DiscordID) (*linkdb.LinkRow, error) {
	if f.FindByDiscordIDFunc != nil {
		return f.FindByDiscordIDFunc(ctx, discordID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.Rows[string(discordID)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (f *FakeLinkDB) FindByKaggleID(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linkdb.LinkRow, error) {
	if f.FindByKaggleIDFunc != nil {
		return f.FindByKaggleIDFunc(ctx, kaggleID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.Rows {
		if row.KaggleID == string(kaggleID) {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

func (f *FakeLinkDB) UpsertLink(ctx context.Context, row *linkdb.LinkRow) error {
	if f.UpsertLinkFunc != nil {
		return f.UpsertLinkFunc(ctx, row)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rows[row.DiscordID] = *row
	return nil
}

func (f *FakeLinkDB) DeleteLink(ctx context.Context, discordID competitiontypes.DiscordID) (bool, error) {
	if f.DeleteLinkFunc != nil {
		return f.DeleteLinkFunc(ctx, discordID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Rows[string(discordID)]
	delete(f.Rows, string(discordID))
	return ok, nil
}

func (f *FakeLinkDB) ListLinks(ctx context.Context) ([]linkdb.LinkRow, error) {
	if f.ListLinksFunc != nil {
		return f.ListLinksFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]linkdb.LinkRow, 0, len(f.Rows))
	for _, row := range f.Rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KaggleID < out[j].KaggleID })
	return out, nil
}

// FakeProfileClient is a programmable stub for the profile client.
type FakeProfileClient struct {
	// Bios maps kaggle id to the simulated profile page body.
	Bios     map[competitiontypes.KaggleID]string
	Profiles map[competitiontypes.KaggleID]*linktypes.Profile

	ProfileContainsCodeFunc func(ctx context.Context, kaggleID competitiontypes.KaggleID, code string) (bool, error)
	FetchProfileFunc        func(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linktypes.Profile, error)
}

var _ profile.Client = (*FakeProfileClient)(nil)

func NewFakeProfileClient() *FakeProfileClient {
	return &FakeProfileClient{
		Bios:     map[competitiontypes.KaggleID]string{},
		Profiles: map[competitiontypes.KaggleID]*linktypes.Profile{},
	}
}

func (f *FakeProfileClient) ProfileContainsCode(ctx context.Context, kaggleID competitiontypes.KaggleID, code string) (bool, error) {
	if f.ProfileContainsCodeFunc != nil {
		return f.ProfileContainsCodeFunc(ctx, kaggleID, code)
	}
	bio, ok := f.Bios[kaggleID]
	if !ok {
		return false, fmt.Errorf("profile %s not found", kaggleID)
	}
	return strings.Contains(bio, code), nil
}

func (f *FakeProfileClient) FetchProfile(ctx context.Context, kaggleID competitiontypes.KaggleID) (*linktypes.Profile, error) {
	if f.FetchProfileFunc != nil {
		return f.FetchProfileFunc(ctx, kaggleID)
	}
	p, ok := f.Profiles[kaggleID]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", kaggleID)
	}
	return p, nil
}

// FakeEventBus records published messages per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: map[string][]*message.Message{}}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
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
