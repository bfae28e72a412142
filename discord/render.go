package discord

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
	linkservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/application"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
)

// linkPageSize caps the rows per page of the link listing so each page fits
// comfortably in one Discord message.
const linkPageSize = 20

func formatLeaderboard(view *competitionservice.LeaderboardView) string {
	var sb strings.Builder
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%s — %s\n", view.Definition.Name, view.Definition.Type))
	header := fmt.Sprintf("%-4s | %-16s | %-15s | %-8s", "#", "Name", "KaggleID", "NormSum")
	for i := range view.Definition.Problems {
		header += fmt.Sprintf(" | P%d", i+1)
	}
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", len(header)) + "\n")
	for i, row := range view.Rows {
		kaggleID := string(row.KaggleID)
		if kaggleID == "" {
			kaggleID = "?"
		}
		line := fmt.Sprintf("%-4d | %-16s | %-15s | %8.1f", i+1, truncate(row.DisplayName, 16), truncate(kaggleID, 15), row.Total)
		for _, detail := range row.Details {
			line += " | " + detail
		}
		sb.WriteString(line + "\n")
	}
	if len(view.Rows) == 0 {
		sb.WriteString("(no participants yet)\n")
	}
	sb.WriteString("```")
	return sb.String()
}

func formatTimeRemaining(view *competitionservice.TimeRemainingView) string {
	if len(view.Rows) == 0 {
		return fmt.Sprintf("No active participants in the %s competition.", view.Type)
	}
	var sb strings.Builder
	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("Time remaining — %s\n", view.Type))
	for _, row := range view.Rows {
		sb.WriteString(fmt.Sprintf("%-16s | %s\n", truncate(row.DisplayName, 16), formatDuration(row.Remaining)))
	}
	sb.WriteString("```")
	return sb.String()
}

// linkRow pairs a resolved display name with the stored link for rendering.
type linkRow struct {
	Name string
	Link linktypes.Link
}

// formatLinkPages renders the link listing twenty rows per page so long
// member lists stay scrollable.
func formatLinkPages(rows []linkRow) []string {
	if len(rows) == 0 {
		return []string{"No Kaggle accounts linked yet."}
	}
	total := (len(rows) + linkPageSize - 1) / linkPageSize
	pages := make([]string, 0, total)
	for start := 0; start < len(rows); start += linkPageSize {
		end := min(start+linkPageSize, len(rows))
		var sb strings.Builder
		sb.WriteString("```\n")
		sb.WriteString(fmt.Sprintf("%-20s | %-20s %s\n", "Discord Name", "Kaggle ID", "Status"))
		sb.WriteString(strings.Repeat("-", 50) + "\n")
		for _, row := range rows[start:end] {
			status := "unverified"
			if row.Link.Verified {
				status = "verified"
			}
			sb.WriteString(fmt.Sprintf("%-20s | %-20s %s\n", truncate(row.Name, 20), truncate(string(row.Link.KaggleID), 20), status))
		}
		sb.WriteString("```")
		sb.WriteString(fmt.Sprintf("\nPage %d/%d", start/linkPageSize+1, total))
		pages = append(pages, sb.String())
	}
	return pages
}

func formatProfile(view *linkservice.ProfileView) string {
	var sb strings.Builder
	status := "unverified"
	if view.Link.Verified {
		status = "verified"
	}
	sb.WriteString(fmt.Sprintf("**%s** (%s)\n", view.Link.KaggleID, status))
	p := view.Profile
	if p == nil {
		sb.WriteString("Profile details are unavailable right now.")
		return sb.String()
	}
	if p.DisplayName != "" && p.DisplayName != string(view.Link.KaggleID) {
		sb.WriteString(fmt.Sprintf("Name: %s\n", p.DisplayName))
	}
	sb.WriteString(fmt.Sprintf("Tier: %s\n", linktypes.TierName(p.Tier)))
	if p.JoinedOn != "" {
		sb.WriteString(fmt.Sprintf("Member since: %s\n", p.JoinedOn))
	}
	sb.WriteString(fmt.Sprintf("Followers: %d | Following: %d\n", p.Followers, p.Following))
	sb.WriteString(fmt.Sprintf("Competitions: %d | Notebooks: %d | Discussions: %d\n", p.Competitions, p.Notebooks, p.Discussions))
	if p.URL != "" {
		sb.WriteString(p.URL)
	}
	return sb.String()
}

func formatCompetition(c *kaggle.Competition) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n", c.Title))
	if c.Category != "" {
		sb.WriteString(fmt.Sprintf("Category: %s\n", c.Category))
	}
	if c.Reward != "" {
		sb.WriteString(fmt.Sprintf("Reward: %s\n", c.Reward))
	}
	if c.Deadline != "" {
		sb.WriteString(fmt.Sprintf("Deadline: %s\n", c.Deadline))
	}
	url := c.URL
	if url == "" {
		url = "https://www.kaggle.com/competitions/" + string(c.Ref)
	}
	sb.WriteString(url)
	return sb.String()
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d <= 0 {
		return "expired"
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// standingsChart renders the final leaderboard as a PNG bar chart for the
// end-of-competition announcement.
func standingsChart(view *competitionservice.LeaderboardView) ([]byte, error) {
	if len(view.Rows) == 0 {
		return nil, fmt.Errorf("no participants to chart")
	}
	bars := make([]chart.Value, 0, len(view.Rows))
	for _, row := range view.Rows {
		bars = append(bars, chart.Value{
			Label: truncate(row.DisplayName, 12),
			Value: row.Total,
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s — final standings", view.Definition.Name),
		Width:    max(160*len(bars), 480),
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render standings chart: %w", err)
	}
	return buffer.Bytes(), nil
}
