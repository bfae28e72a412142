package competitionintegration

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/integration_tests/testutils"
)

func discordID(s string) competitiontypes.DiscordID { return competitiontypes.DiscordID(s) }

func newParticipantRow(compType, contestRef string) *competitiondb.ParticipantRow {
	return &competitiondb.ParticipantRow{
		UserID:     gofakeit.DigitN(18),
		CompType:   compType,
		ContestRef: contestRef,
		Baseline:   gofakeit.Float64Range(0, 10),
		Active:     true,
		JoinedAt:   time.Now().Unix(),
	}
}

func TestCompetitionDB_Participants(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := &competitiondb.CompetitionDBImpl{DB: db}
	ctx := context.Background()

	t.Run("upsert is idempotent on the composite key", func(t *testing.T) {
		row := newParticipantRow("weekly", "titanic")
		require.NoError(t, repo.UpsertParticipant(ctx, row))

		// Replaying the same key updates in place instead of duplicating.
		row.Active = false
		row.Baseline = 42.5
		require.NoError(t, repo.UpsertParticipant(ctx, row))

		rows, err := repo.ReadParticipants(ctx, "weekly")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.False(t, rows[0].Active)
		require.InDelta(t, 42.5, rows[0].Baseline, 1e-9)
	})

	t.Run("read orders by join time", func(t *testing.T) {
		late := newParticipantRow("monthly", "house-prices")
		late.JoinedAt = 2000
		early := newParticipantRow("monthly", "house-prices")
		early.JoinedAt = 1000
		require.NoError(t, repo.UpsertParticipant(ctx, late))
		require.NoError(t, repo.UpsertParticipant(ctx, early))

		rows, err := repo.ReadParticipants(ctx, "monthly")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, early.UserID, rows[0].UserID)
		require.Equal(t, late.UserID, rows[1].UserID)
	})

	t.Run("read is scoped to one competition", func(t *testing.T) {
		require.NoError(t, repo.UpsertParticipant(ctx, newParticipantRow("yearly", "spaceship")))

		rows, err := repo.ReadParticipants(ctx, "yearly")
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})

	t.Run("delete removes every contest row for a user", func(t *testing.T) {
		userID := gofakeit.DigitN(18)
		for _, ref := range []string{"ref-a", "ref-b"} {
			row := newParticipantRow("doubles", ref)
			row.UserID = userID
			require.NoError(t, repo.UpsertParticipant(ctx, row))
		}
		other := newParticipantRow("doubles", "ref-a")
		require.NoError(t, repo.UpsertParticipant(ctx, other))

		require.NoError(t, repo.DeleteParticipant(ctx, discordID(userID), "doubles"))

		rows, err := repo.ReadParticipants(ctx, "doubles")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, other.UserID, rows[0].UserID)
	})

	t.Run("delete all clears the competition", func(t *testing.T) {
		require.NoError(t, repo.UpsertParticipant(ctx, newParticipantRow("purge", "ref-a")))
		require.NoError(t, repo.UpsertParticipant(ctx, newParticipantRow("purge", "ref-b")))

		require.NoError(t, repo.DeleteAllParticipants(ctx, "purge"))

		rows, err := repo.ReadParticipants(ctx, "purge")
		require.NoError(t, err)
		require.Empty(t, rows)
	})
}

func TestCompetitionDB_FrozenScores(t *testing.T) {
	db := testutils.SetupTestDB(t)
	repo := &competitiondb.CompetitionDBImpl{DB: db}
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		row := &competitiondb.FrozenScoreRow{
			UserID:     gofakeit.DigitN(18),
			CompType:   "weekly",
			ContestRef: "titanic",
			Score:      0.81234,
			NormScore:  87.5,
		}
		require.NoError(t, repo.UpsertFrozenScore(ctx, row))

		got, err := repo.ReadFrozenScore(ctx, discordID(row.UserID), "weekly", "titanic")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.InDelta(t, 0.81234, got.Score, 1e-9)
		require.InDelta(t, 87.5, got.NormScore, 1e-9)
	})

	t.Run("replay overwrites the score", func(t *testing.T) {
		row := &competitiondb.FrozenScoreRow{
			UserID:     gofakeit.DigitN(18),
			CompType:   "weekly",
			ContestRef: "titanic",
			Score:      0.5,
			NormScore:  50,
		}
		require.NoError(t, repo.UpsertFrozenScore(ctx, row))
		row.Score = 0.9
		row.NormScore = 95
		require.NoError(t, repo.UpsertFrozenScore(ctx, row))

		got, err := repo.ReadFrozenScore(ctx, discordID(row.UserID), "weekly", "titanic")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.InDelta(t, 0.9, got.Score, 1e-9)
		require.InDelta(t, 95.0, got.NormScore, 1e-9)
	})

	t.Run("missing row reads as nil", func(t *testing.T) {
		got, err := repo.ReadFrozenScore(ctx, "000000000000000000", "weekly", "nowhere")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("delete for one user leaves others alone", func(t *testing.T) {
		keep := &competitiondb.FrozenScoreRow{
			UserID: gofakeit.DigitN(18), CompType: "kickme", ContestRef: "ref", Score: 1, NormScore: 10,
		}
		gone := &competitiondb.FrozenScoreRow{
			UserID: gofakeit.DigitN(18), CompType: "kickme", ContestRef: "ref", Score: 2, NormScore: 20,
		}
		require.NoError(t, repo.UpsertFrozenScore(ctx, keep))
		require.NoError(t, repo.UpsertFrozenScore(ctx, gone))

		require.NoError(t, repo.DeleteFrozenScores(ctx, discordID(gone.UserID), "kickme"))

		got, err := repo.ReadFrozenScore(ctx, discordID(gone.UserID), "kickme", "ref")
		require.NoError(t, err)
		require.Nil(t, got)

		got, err = repo.ReadFrozenScore(ctx, discordID(keep.UserID), "kickme", "ref")
		require.NoError(t, err)
		require.NotNil(t, got)
	})

	t.Run("delete all clears the competition", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.UpsertFrozenScore(ctx, &competitiondb.FrozenScoreRow{
				UserID: gofakeit.DigitN(18), CompType: "teardown", ContestRef: "ref", Score: 1, NormScore: 1,
			}))
		}
		require.NoError(t, repo.DeleteAllFrozenScores(ctx, "teardown"))

		cnt, err := db.NewSelect().
			Model((*competitiondb.FrozenScoreRow)(nil)).
			Where("comp_type = ?", "teardown").
			Count(ctx)
		require.NoError(t, err)
		require.Zero(t, cnt)
	})
}
