package linkservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
)

// LinkListView is the success payload of ListLinks.
type LinkListView struct {
	Links []linktypes.Link `json:"links"`
}

// ListLinks returns every link, verified and not, ordered by Kaggle ID.
func (s *LinkService) ListLinks(ctx context.Context) (LinkOperationResult, error) {
	return s.serviceWrapper(ctx, "ListLinks", func(ctx context.Context) (LinkOperationResult, error) {
		rows, err := s.LinkDB.ListLinks(ctx)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to list links: %w", err)
		}

		view := &LinkListView{Links: make([]linktypes.Link, 0, len(rows))}
		for _, row := range rows {
			view.Links = append(view.Links, linktypes.Link{
				DiscordID: competitiontypes.DiscordID(row.DiscordID),
				KaggleID:  competitiontypes.KaggleID(row.KaggleID),
				Verified:  row.Verified,
			})
		}
		return LinkOperationResult{Success: view}, nil
	})
}
