package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
)

func TestDeviceID_Idempotent(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.DeviceID(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := repo.DeviceID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCredential_AbsentByDefault(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))

	pin, err := repo.Credential(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pin)
}

func TestCredential_SetOverwritesAndClears(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SetCredential(ctx, "12345"))
	pin, err := repo.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", pin)

	// A new PIN entry replaces the prior one; one credential per device.
	require.NoError(t, repo.SetCredential(ctx, "54321"))
	pin, err = repo.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "54321", pin)

	require.NoError(t, repo.ClearCredential(ctx))
	pin, err = repo.Credential(ctx)
	require.NoError(t, err)
	assert.Empty(t, pin)
}

func TestSelection_RoundTrip(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	sel := model.Selection{
		Category: model.CategoryKing,
		Candidate: model.Candidate{
			Number:     3,
			Name:       "Alex Tan",
			Department: "Engineering",
			ImageURL:   "https://img.example/3.jpg",
		},
		ChosenAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.SetSelection(ctx, sel))

	got, err := repo.Selection(ctx, model.CategoryKing)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sel.Candidate, got.Candidate)
	assert.Equal(t, model.CategoryKing, got.Category)
	assert.True(t, sel.ChosenAt.Equal(got.ChosenAt))
}

func TestSelection_AbsentForUnchosenCategory(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))

	got, err := repo.Selection(context.Background(), model.CategoryQueen)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetSelection_ReplacesPriorChoice(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SetSelection(ctx, model.Selection{
		Category:  model.CategoryPrince,
		Candidate: model.Candidate{Number: 1, Name: "First"},
	}))
	require.NoError(t, repo.SetSelection(ctx, model.Selection{
		Category:  model.CategoryPrince,
		Candidate: model.Candidate{Number: 2, Name: "Second"},
	}))

	got, err := repo.Selection(ctx, model.CategoryPrince)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Candidate.Number)
}

func TestClearSelection_RemovesOneCategory(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SetSelection(ctx, model.Selection{
		Category:  model.CategoryKing,
		Candidate: model.Candidate{Number: 1},
	}))
	require.NoError(t, repo.SetSelection(ctx, model.Selection{
		Category:  model.CategoryQueen,
		Candidate: model.Candidate{Number: 2},
	}))

	require.NoError(t, repo.ClearSelection(ctx, model.CategoryKing))

	king, err := repo.Selection(ctx, model.CategoryKing)
	require.NoError(t, err)
	assert.Nil(t, king)

	queen, err := repo.Selection(ctx, model.CategoryQueen)
	require.NoError(t, err)
	assert.NotNil(t, queen)
}

func TestClearSelections_RemovesAll(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	for i, cat := range model.DefaultCategories() {
		require.NoError(t, repo.SetSelection(ctx, model.Selection{
			Category:  cat,
			Candidate: model.Candidate{Number: i + 1},
		}))
	}

	require.NoError(t, repo.ClearSelections(ctx))

	for _, cat := range model.DefaultCategories() {
		got, err := repo.Selection(ctx, cat)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestRoster_AbsentBeforeFirstRecord(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))

	roster, err := repo.Roster(context.Background(), model.CategoryCouple)
	require.NoError(t, err)
	assert.Nil(t, roster)
}

func TestSetRoster_ReplacesAndPreservesOrder(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	first := []model.Candidate{
		{Number: 2, Name: "B", Department: "Math"},
		{Number: 1, Name: "A", Department: "Arts"},
	}
	require.NoError(t, repo.SetRoster(ctx, model.CategoryKing, first))

	got, err := repo.Roster(ctx, model.CategoryKing)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []model.Candidate{{Number: 7, Name: "C", Department: "Law"}}
	require.NoError(t, repo.SetRoster(ctx, model.CategoryKing, second))

	got, err = repo.Roster(ctx, model.CategoryKing)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestVotedMarker_RoundTrip(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	votedAt, err := repo.VotedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, votedAt)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkVoted(ctx, at))

	votedAt, err = repo.VotedAt(ctx)
	require.NoError(t, err)
	require.NotNil(t, votedAt)
	assert.True(t, at.Equal(*votedAt))

	require.NoError(t, repo.ClearVoted(ctx))
	votedAt, err = repo.VotedAt(ctx)
	require.NoError(t, err)
	assert.Nil(t, votedAt)
}

func TestMarkVoted_PreservesCredential(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SetCredential(ctx, "12345"))
	require.NoError(t, repo.MarkVoted(ctx, time.Now().UTC()))

	pin, err := repo.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12345", pin)
}
