package service

import (
	"context"
	"testing"
	"time"

	"TrophySync/internal/model"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddedAtComesFromLibraryEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.NewString()

	res, err := env.svc.Import(ctx, ImportRequest{UserID: user, Platform: "steam", Payload: []byte(steamTF2)})
	require.NoError(t, err)
	require.Len(t, res.Library.Games, 1)
	require.NotNil(t, res.Library.Games[0].AddedAt)
	assert.WithinDuration(t, time.Now(), *res.Library.Games[0].AddedAt, time.Minute)
	require.Len(t, res.Library.Achievements, 1)
	assert.Equal(t, res.Library.Games[0].AddedAt, res.Library.Achievements[0].Game.AddedAt)
}

func TestAddedAtOmittedWithoutLibraryEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.NewString()

	steam, err := env.catalog.GetPlatformByName(ctx, "steam")
	require.NoError(t, err)
	game := &model.Game{Name: "Portal", NameKey: "portal"}
	require.NoError(t, env.db.Create(game).Error)
	link := &model.GamePlatformLink{GameID: game.ID, PlatformID: steam.ID}
	require.NoError(t, env.db.Create(link).Error)
	ach := &model.Achievement{GamePlatformLinkID: link.ID, Name: "Lab Rat", PlatformAPIName: "PORTAL_LAB_RAT"}
	require.NoError(t, env.db.Create(ach).Error)
	require.NoError(t, env.db.Create(&model.UserAchievementUnlock{UserID: user, AchievementID: ach.ID, Unlocked: true}).Error)

	lib, err := env.projector.Project(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, lib.Games)
	require.Len(t, lib.Achievements, 1)
	assert.Equal(t, "Portal", lib.Achievements[0].Game.Name)
	assert.Nil(t, lib.Achievements[0].Game.AddedAt)

	raw, err := json.Marshal(lib.Achievements[0].Game)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "added_at")
}
