package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	discoveryservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/discovery/application"
	linkservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/application"
	linkevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/events"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// DefaultCommandPrefix marks a message as a bot command unless the config
// overrides it.
const DefaultCommandPrefix = "!"

// Router dispatches prefix commands from gateway messages into the services.
type Router struct {
	session      Session
	platform     *Platform
	competitions competitionservice.Service
	links        linkservice.Service
	discovery    *discoveryservice.Service
	logger       *slog.Logger
	prefix       string

	// botUserID filters out the bot's own messages.
	botUserID string
}

// NewRouter wires the command router. An empty prefix falls back to
// DefaultCommandPrefix.
func NewRouter(
	session Session,
	platform *Platform,
	competitions competitionservice.Service,
	links linkservice.Service,
	discovery *discoveryservice.Service,
	prefix string,
	botUserID string,
	logger *slog.Logger,
) *Router {
	if prefix == "" {
		prefix = DefaultCommandPrefix
	}
	return &Router{
		session:      session,
		platform:     platform,
		competitions: competitions,
		links:        links,
		discovery:    discovery,
		prefix:       prefix,
		botUserID:    botUserID,
		logger:       logger,
	}
}

// HandleMessage is the discordgo MessageCreate handler. The session argument
// is ignored in favor of the injected one so tests can substitute a fake.
func (r *Router) HandleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if r.shouldIgnoreMessage(m) {
		return
	}

	command, params := parseMessage(m.Content, r.prefix)
	if command == "" {
		return
	}

	ctx := context.Background()
	if m.ID != "" {
		ctx = attr.WithCorrelationID(ctx, m.ID)
	}

	r.routeCommand(ctx, m, command, params)
}

func (r *Router) shouldIgnoreMessage(m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return true
	}
	return m.Author.ID == r.botUserID
}

func parseMessage(content, prefix string) (command string, params []string) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, prefix) {
		return "", nil
	}
	args := strings.Fields(content)
	if len(args) == 0 || len(args[0]) <= len(prefix) {
		return "", nil
	}
	return strings.ToLower(args[0][len(prefix):]), args[1:]
}

func (r *Router) routeCommand(ctx context.Context, m *discordgo.MessageCreate, command string, params []string) {
	switch command {
	case "competition":
		r.handleCompetition(ctx, m, params)
	case "kaggle":
		r.handleKaggle(ctx, m, params)
	case "gitgud":
		r.handleGitgud(ctx, m, params)
	case "help":
		r.handleHelp(ctx, m)
	}
}

// isAdmin reports whether the author holds the administrator permission in
// the channel the command came from. DMs never carry admin rights.
func (r *Router) isAdmin(ctx context.Context, m *discordgo.MessageCreate) bool {
	if m.GuildID == "" {
		return false
	}
	perms, err := r.session.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		r.logger.WarnContext(ctx, "Could not resolve member permissions",
			attr.String("user_id", m.Author.ID),
			attr.Error(err),
		)
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func (r *Router) requireAdmin(ctx context.Context, m *discordgo.MessageCreate) bool {
	if r.isAdmin(ctx, m) {
		return true
	}
	r.reply(ctx, m.ChannelID, "⛔ That command requires administrator permissions.")
	return false
}

func (r *Router) reply(ctx context.Context, channelID, content string) {
	if _, err := r.session.ChannelMessageSend(channelID, content); err != nil {
		r.logger.ErrorContext(ctx, "Failed to send command response",
			attr.String("channel_id", channelID),
			attr.Error(err),
		)
	}
}

func (r *Router) handleCompetition(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) == 0 {
		r.reply(ctx, m.ChannelID, "Use `!competition <make|join|leaderboard|time|kick|forcejoin|end> ...` — see `!help`.")
		return
	}

	sub, rest := strings.ToLower(params[0]), params[1:]
	switch sub {
	case "make":
		if r.requireAdmin(ctx, m) {
			r.handleMake(ctx, m, rest)
		}
	case "join":
		r.handleJoin(ctx, m, rest)
	case "leaderboard":
		r.handleLeaderboard(ctx, m, rest)
	case "time":
		r.handleTime(ctx, m, rest)
	case "kick":
		if r.requireAdmin(ctx, m) {
			r.handleKick(ctx, m, rest)
		}
	case "forcejoin":
		if r.requireAdmin(ctx, m) {
			r.handleForceJoin(ctx, m, rest)
		}
	case "end":
		if r.requireAdmin(ctx, m) {
			r.handleEnd(ctx, m, rest)
		}
	default:
		r.reply(ctx, m.ChannelID, fmt.Sprintf("Unknown subcommand `%s`. See `!help`.", sub))
	}
}

func (r *Router) handleMake(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) < 6 {
		r.reply(ctx, m.ChannelID, "Usage: `!competition make <type> <name> <durationMinutes> <higher|lower> <baseline> <contestLink...>`")
		return
	}

	compType, err := competitiontypes.ParseCompetitionType(params[0])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}
	duration, err := strconv.Atoi(params[2])
	if err != nil {
		r.reply(ctx, m.ChannelID, fmt.Sprintf("⚠️ Duration must be a whole number of minutes, got %q.", params[2]))
		return
	}
	direction, err := competitiontypes.ParseDirection(params[3])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}
	baseline, err := strconv.ParseFloat(params[4], 64)
	if err != nil {
		r.reply(ctx, m.ChannelID, fmt.Sprintf("⚠️ Baseline must be a number, got %q.", params[4]))
		return
	}
	refs := competitiontypes.ExtractContestRefs(params[5:])
	if len(refs) == 0 {
		r.reply(ctx, m.ChannelID, "⚠️ No Kaggle competition links recognized. Paste links like `https://www.kaggle.com/competitions/titanic`.")
		return
	}

	def := competitiontypes.Definition{
		Type:            compType,
		Name:            params[1],
		DurationMinutes: duration,
		Direction:       direction,
		Baseline:        baseline,
		Problems:        refs,
	}

	result, err := r.competitions.DefineCompetition(ctx, def)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	payload, ok := result.Success.(*competitionevents.CompetitionDefinedPayload)
	if !ok {
		r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ Competition %q created.", def.Name))
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf(
		"✅ Created the %s competition %q: %d contest(s), %d minute window. Join with `!competition join %s`.",
		payload.Definition.Type, payload.Definition.Name, len(payload.Definition.Problems),
		payload.Definition.DurationMinutes, payload.Definition.Type,
	))
}

func (r *Router) handleJoin(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	compType, ok := r.compTypeArg(ctx, m, params, "join")
	if !ok {
		return
	}

	result, err := r.competitions.JoinCompetition(ctx, compType, competitiontypes.DiscordID(m.Author.ID))
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	name := r.platform.DisplayName(ctx, competitiontypes.DiscordID(m.Author.ID))
	if payload, ok := result.Success.(*competitionevents.ParticipantJoinedPayload); ok {
		r.reply(ctx, m.ChannelID, fmt.Sprintf(
			"✅ %s joined the %s competition. Scores freeze <t:%d:R>.",
			name, payload.Type, payload.FreezeAt.Unix(),
		))
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ %s joined the %s competition.", name, compType))
}

func (r *Router) handleLeaderboard(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	compType, ok := r.compTypeArg(ctx, m, params, "leaderboard")
	if !ok {
		return
	}

	result, err := r.competitions.Leaderboard(ctx, compType)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	view, ok := result.Success.(*competitionservice.LeaderboardView)
	if !ok {
		r.reply(ctx, m.ChannelID, "⚠️ Leaderboard is unavailable right now.")
		return
	}
	r.reply(ctx, m.ChannelID, formatLeaderboard(view))
}

func (r *Router) handleTime(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	compType, ok := r.compTypeArg(ctx, m, params, "time")
	if !ok {
		return
	}

	result, err := r.competitions.TimeRemaining(ctx, compType)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	view, ok := result.Success.(*competitionservice.TimeRemainingView)
	if !ok {
		r.reply(ctx, m.ChannelID, "⚠️ Time report is unavailable right now.")
		return
	}
	r.reply(ctx, m.ChannelID, formatTimeRemaining(view))
}

func (r *Router) handleKick(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) < 2 {
		r.reply(ctx, m.ChannelID, "Usage: `!competition kick <type> <user>`")
		return
	}
	compType, err := competitiontypes.ParseCompetitionType(params[0])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}
	userID, err := userArg(m, params[1])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}

	result, err := r.competitions.KickParticipant(ctx, compType, userID)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ Removed %s from the %s competition.",
		r.platform.DisplayName(ctx, userID), compType))
}

func (r *Router) handleForceJoin(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) < 2 {
		r.reply(ctx, m.ChannelID, "Usage: `!competition forcejoin <type> <user>`")
		return
	}
	compType, err := competitiontypes.ParseCompetitionType(params[0])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}
	userID, err := userArg(m, params[1])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}

	// Zero delay means the participant gets the competition's full window.
	result, err := r.competitions.ForceJoinCompetition(ctx, compType, userID, 0)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	name := r.platform.DisplayName(ctx, userID)
	if payload, ok := result.Success.(*competitionevents.ParticipantJoinedPayload); ok {
		r.reply(ctx, m.ChannelID, fmt.Sprintf(
			"✅ Force-joined %s into the %s competition. Scores freeze <t:%d:R>.",
			name, payload.Type, payload.FreezeAt.Unix(),
		))
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ Force-joined %s into the %s competition.", name, compType))
}

func (r *Router) handleEnd(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	compType, ok := r.compTypeArg(ctx, m, params, "end")
	if !ok {
		return
	}

	// Snapshot the standings before teardown deletes them; the chart is
	// best-effort and must not block the end.
	var standings *competitionservice.LeaderboardView
	if lbResult, err := r.competitions.Leaderboard(ctx, compType); err == nil && lbResult.IsSuccess() {
		standings, _ = lbResult.Success.(*competitionservice.LeaderboardView)
	}

	result, err := r.competitions.EndCompetition(ctx, compType)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}

	r.reply(ctx, m.ChannelID, fmt.Sprintf("🏁 The %s competition has ended.", compType))
	if standings == nil {
		return
	}
	r.reply(ctx, m.ChannelID, formatLeaderboard(standings))
	r.sendStandingsChart(ctx, m.ChannelID, standings)
}

func (r *Router) sendStandingsChart(ctx context.Context, channelID string, standings *competitionservice.LeaderboardView) {
	png, err := standingsChart(standings)
	if err != nil {
		r.logger.WarnContext(ctx, "Could not render standings chart", attr.Error(err))
		return
	}
	_, err = r.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{{
			Name:        "standings.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
	if err != nil {
		r.logger.WarnContext(ctx, "Could not send standings chart", attr.Error(err))
	}
}

func (r *Router) handleKaggle(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) == 0 {
		r.reply(ctx, m.ChannelID, "Use `!kaggle identify <username>` to start linking your Kaggle ID.")
		return
	}

	sub, rest := strings.ToLower(params[0]), params[1:]
	switch sub {
	case "identify":
		r.handleIdentify(ctx, m, rest)
	case "verify":
		r.handleVerify(ctx, m)
	case "get":
		r.handleGetProfile(ctx, m, rest)
	case "unlink":
		if r.requireAdmin(ctx, m) {
			r.handleUnlink(ctx, m, rest)
		}
	case "list":
		r.handleListLinks(ctx, m)
	default:
		r.reply(ctx, m.ChannelID, fmt.Sprintf("Unknown subcommand `%s`. See `!help`.", sub))
	}
}

func (r *Router) handleIdentify(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) < 1 {
		r.reply(ctx, m.ChannelID, "Usage: `!kaggle identify <username>`")
		return
	}

	result, err := r.links.BeginVerification(ctx, competitiontypes.DiscordID(m.Author.ID), competitiontypes.KaggleID(params[0]))
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	payload, ok := result.Success.(*linkservice.VerificationStartedPayload)
	if !ok {
		r.reply(ctx, m.ChannelID, "✅ Verification started. Run `!kaggle verify` once your bio carries the code.")
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf(
		"📝 <@%s>, to verify ownership of `%s`:\n"+
			"1. Go to your Kaggle profile.\n"+
			"2. Add this code to your bio: `%s`\n"+
			"3. Run `!kaggle verify` here.",
		m.Author.ID, payload.KaggleID, payload.Code,
	))
}

func (r *Router) handleVerify(ctx context.Context, m *discordgo.MessageCreate) {
	result, err := r.links.VerifyLink(ctx, competitiontypes.DiscordID(m.Author.ID))
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	if payload, ok := result.Success.(*linkevents.LinkVerifiedPayload); ok {
		r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ <@%s>, your Kaggle ID `%s` has been verified. You can remove the code from your bio.",
			m.Author.ID, payload.KaggleID))
		return
	}
	r.reply(ctx, m.ChannelID, "✅ Verified.")
}

func (r *Router) handleGetProfile(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	userID := competitiontypes.DiscordID(m.Author.ID)
	if len(params) > 0 {
		parsed, err := userArg(m, params[0])
		if err != nil {
			r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
			return
		}
		userID = parsed
	}

	result, err := r.links.GetProfile(ctx, userID)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	view, ok := result.Success.(*linkservice.ProfileView)
	if !ok {
		r.reply(ctx, m.ChannelID, "⚠️ Profile is unavailable right now.")
		return
	}
	r.reply(ctx, m.ChannelID, formatProfile(view))
}

func (r *Router) handleUnlink(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	if len(params) < 1 {
		r.reply(ctx, m.ChannelID, "Usage: `!kaggle unlink <user>`")
		return
	}
	userID, err := userArg(m, params[0])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}

	result, err := r.links.Unlink(ctx, userID)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	if result.IsFailure() {
		r.reply(ctx, m.ChannelID, "⚠️ "+failureReason(result.Failure))
		return
	}
	r.reply(ctx, m.ChannelID, fmt.Sprintf("✅ Unlinked %s.", r.platform.DisplayName(ctx, userID)))
}

func (r *Router) handleListLinks(ctx context.Context, m *discordgo.MessageCreate) {
	result, err := r.links.ListLinks(ctx)
	if err != nil {
		r.replyOperationError(ctx, m.ChannelID, err)
		return
	}
	view, ok := result.Success.(*linkservice.LinkListView)
	if !ok {
		r.reply(ctx, m.ChannelID, "⚠️ Link listing is unavailable right now.")
		return
	}

	rows := make([]linkRow, 0, len(view.Links))
	for _, link := range view.Links {
		rows = append(rows, linkRow{
			Name: r.platform.DisplayName(ctx, link.DiscordID),
			Link: link,
		})
	}
	for _, page := range formatLinkPages(rows) {
		r.reply(ctx, m.ChannelID, page)
	}
}

func (r *Router) handleGitgud(ctx context.Context, m *discordgo.MessageCreate, params []string) {
	// `!gitgud detail <slug>` describes one competition; everything else is
	// a random pick, optionally filtered by category.
	if len(params) >= 2 && strings.EqualFold(params[0], "detail") {
		comp, err := r.discovery.CompetitionDetail(ctx, competitiontypes.ContestRef(params[1]))
		if err != nil {
			r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
			return
		}
		r.reply(ctx, m.ChannelID, formatCompetition(comp))
		return
	}

	category := ""
	for _, p := range params {
		if value, found := strings.CutPrefix(strings.ToLower(p), "category="); found {
			category = value
		} else if category == "" {
			category = strings.ToLower(p)
		}
	}

	comp, err := r.discovery.RandomCompetition(ctx, category)
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return
	}
	r.reply(ctx, m.ChannelID, formatCompetition(comp))
}

func (r *Router) handleHelp(ctx context.Context, m *discordgo.MessageCreate) {
	r.reply(ctx, m.ChannelID, "```\n"+
		"Competitions\n"+
		"  !competition make <type> <name> <minutes> <higher|lower> <baseline> <link...>  (admin)\n"+
		"  !competition join <type>\n"+
		"  !competition leaderboard <type>\n"+
		"  !competition time <type>\n"+
		"  !competition kick <type> <user>       (admin)\n"+
		"  !competition forcejoin <type> <user>  (admin)\n"+
		"  !competition end <type>               (admin)\n"+
		"\n"+
		"Kaggle accounts\n"+
		"  !kaggle identify <username>\n"+
		"  !kaggle verify\n"+
		"  !kaggle get [user]\n"+
		"  !kaggle unlink <user>  (admin)\n"+
		"  !kaggle list\n"+
		"\n"+
		"Discovery\n"+
		"  !gitgud [category]\n"+
		"  !gitgud detail <slug>\n"+
		"```")
}

// compTypeArg parses the single competition-type argument the read commands
// take, replying with usage on bad input.
func (r *Router) compTypeArg(ctx context.Context, m *discordgo.MessageCreate, params []string, sub string) (competitiontypes.CompetitionType, bool) {
	if len(params) < 1 {
		r.reply(ctx, m.ChannelID, fmt.Sprintf("Usage: `!competition %s <type>`", sub))
		return "", false
	}
	compType, err := competitiontypes.ParseCompetitionType(params[0])
	if err != nil {
		r.reply(ctx, m.ChannelID, "⚠️ "+err.Error())
		return "", false
	}
	return compType, true
}

func (r *Router) replyOperationError(ctx context.Context, channelID string, err error) {
	r.logger.ErrorContext(ctx, "Command failed", attr.Error(err))
	r.reply(ctx, channelID, "⚠️ Something went wrong, try again in a bit.")
}

// userArg resolves a user argument that is either a mention or a raw ID.
func userArg(m *discordgo.MessageCreate, arg string) (competitiontypes.DiscordID, error) {
	if len(m.Mentions) > 0 {
		return competitiontypes.DiscordID(m.Mentions[0].ID), nil
	}
	id := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(arg, "<@"), "!"), ">")
	if id == "" {
		return "", fmt.Errorf("could not parse user %q, mention them or pass their ID", arg)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("could not parse user %q, mention them or pass their ID", arg)
		}
	}
	return competitiontypes.DiscordID(id), nil
}
