package competitionservice

import (
	"sort"
	"sync"
	"time"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// timerKey identifies one participant's pending freeze timer.
type timerKey struct {
	compType competitiontypes.CompetitionType
	userID   competitiontypes.DiscordID
}

// activeCompetition is the live aggregate for one competition type. joinMu
// serializes joins for this type only: the join path checks membership, then
// suspends on leaderboard fetches before writing, and the lock closes that
// window. Other operations are guarded by presence checks.
type activeCompetition struct {
	def          competitiontypes.Definition
	participants map[competitiontypes.DiscordID]*competitiontypes.Participant
	joinMu       sync.Mutex
}

// Registry owns the in-memory table of active competitions and all pending
// freeze timers. One instance is created at startup and injected into the
// service; it is reconstructed from persisted storage by recovery.
type Registry struct {
	mu     sync.RWMutex
	comps  map[competitiontypes.CompetitionType]*activeCompetition
	timers map[timerKey]*time.Timer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		comps:  make(map[competitiontypes.CompetitionType]*activeCompetition),
		timers: make(map[timerKey]*time.Timer),
	}
}

// Register installs a competition with a fresh join guard. It reports false
// when the type is already registered.
func (r *Registry) Register(def competitiontypes.Definition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.comps[def.Type]; exists {
		return false
	}
	r.comps[def.Type] = &activeCompetition{
		def:          def,
		participants: make(map[competitiontypes.DiscordID]*competitiontypes.Participant),
	}
	return true
}

// Definition returns the definition for a type, when active.
func (r *Registry) Definition(compType competitiontypes.CompetitionType) (competitiontypes.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.comps[compType]
	if !ok {
		return competitiontypes.Definition{}, false
	}
	return comp.def, true
}

// Types returns all active competition types.
func (r *Registry) Types() []competitiontypes.CompetitionType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]competitiontypes.CompetitionType, 0, len(r.comps))
	for t := range r.comps {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// JoinLock returns the join mutex for a type. The caller must hold it across
// the membership check and the participant write. Returns nil when the type
// is not active.
func (r *Registry) JoinLock(compType competitiontypes.CompetitionType) *sync.Mutex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.comps[compType]
	if !ok {
		return nil
	}
	return &comp.joinMu
}

// Participant returns a copy of one participant.
func (r *Registry) Participant(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (competitiontypes.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.comps[compType]
	if !ok {
		return competitiontypes.Participant{}, false
	}
	p, ok := comp.participants[userID]
	if !ok {
		return competitiontypes.Participant{}, false
	}
	return copyParticipant(p), true
}

// SetParticipant inserts or replaces a participant.
func (r *Registry) SetParticipant(compType competitiontypes.CompetitionType, p competitiontypes.Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	comp, ok := r.comps[compType]
	if !ok {
		return false
	}
	stored := copyParticipant(&p)
	comp.participants[p.UserID] = &stored
	return true
}

// MarkInactive flips one participant's active flag to false. It reports
// whether the participant existed and was active.
func (r *Registry) MarkInactive(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	comp, ok := r.comps[compType]
	if !ok {
		return false
	}
	p, ok := comp.participants[userID]
	if !ok || !p.Active {
		return false
	}
	p.Active = false
	return true
}

// RemoveParticipant deletes a participant from memory.
func (r *Registry) RemoveParticipant(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comp, ok := r.comps[compType]; ok {
		delete(comp.participants, userID)
	}
}

// Participants returns a snapshot of all participants in encounter order
// (join time, then user ID), so leaderboard ties stay stable.
func (r *Registry) Participants(compType competitiontypes.CompetitionType) []competitiontypes.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.comps[compType]
	if !ok {
		return nil
	}
	out := make([]competitiontypes.Participant, 0, len(comp.participants))
	for _, p := range comp.participants {
		out = append(out, copyParticipant(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Remove deletes a competition and cancels all of its timers.
func (r *Registry) Remove(compType competitiontypes.CompetitionType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comps, compType)
	for key, timer := range r.timers {
		if key.compType == compType {
			timer.Stop()
			delete(r.timers, key)
		}
	}
}

// ScheduleFreeze arms a tracked freeze timer for one participant, replacing
// any previous timer for the same key. fire runs on its own goroutine.
func (r *Registry) ScheduleFreeze(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration, fire func()) {
	key := timerKey{compType: compType, userID: userID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.timers[key]; ok {
		old.Stop()
	}
	r.timers[key] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, key)
		r.mu.Unlock()
		fire()
	})
}

// CancelFreeze stops one participant's pending timer, when present. Kick and
// end cancel proactively; a timer that fires anyway finds no participant
// record and freezes nothing.
func (r *Registry) CancelFreeze(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) {
	key := timerKey{compType: compType, userID: userID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if timer, ok := r.timers[key]; ok {
		timer.Stop()
		delete(r.timers, key)
	}
}

// PendingFreezes returns how many timers are armed for a type. Used by
// tests and diagnostics.
func (r *Registry) PendingFreezes(compType competitiontypes.CompetitionType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for key := range r.timers {
		if key.compType == compType {
			n++
		}
	}
	return n
}

func copyParticipant(p *competitiontypes.Participant) competitiontypes.Participant {
	out := *p
	out.Baselines = make(map[competitiontypes.ContestRef]float64, len(p.Baselines))
	for ref, v := range p.Baselines {
		out.Baselines[ref] = v
	}
	return out
}
