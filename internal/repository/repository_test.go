package repository

import (
	"context"
	"testing"
	"time"

	"TrophySync/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func count(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestEnsurePlatform(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsurePlatform(ctx, &model.Platform{Name: "steam", DisplayName: "Steam", IsEnabled: true}))
	require.NoError(t, repo.EnsurePlatform(ctx, &model.Platform{Name: "steam", DisplayName: "Steam PC", IsEnabled: false}))

	p, err := repo.GetPlatformByName(ctx, "steam")
	require.NoError(t, err)
	assert.Equal(t, "Steam PC", p.DisplayName)
	assert.False(t, p.IsEnabled)
	assert.EqualValues(t, 1, count(t, db, &model.Platform{}))

	_, err = repo.GetPlatformByName(ctx, "gog")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateGameIfAbsent(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	first := &model.Game{Name: "Portal 2", NameKey: "portal 2"}
	created, err := repo.CreateGameIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotZero(t, first.ID)

	second := &model.Game{Name: "PORTAL 2", NameKey: "portal 2"}
	created, err = repo.CreateGameIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Portal 2", second.Name)
	assert.EqualValues(t, 1, count(t, db, &model.Game{}))
}

func TestFillGameMetadataOnlyWhenEmpty(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	icon := "https://cdn/first.jpg"
	g := &model.Game{Name: "Celeste", NameKey: "celeste", IconURL: &icon}
	_, err := repo.CreateGameIfAbsent(ctx, g)
	require.NoError(t, err)

	require.NoError(t, repo.FillGameMetadata(ctx, g.ID, "https://cdn/second.jpg", "climbing"))

	got, err := repo.GetGameByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IconURL)
	assert.Equal(t, "https://cdn/first.jpg", *got.IconURL)
	require.NotNil(t, got.Description)
	assert.Equal(t, "climbing", *got.Description)
}

func TestAliasLookup(t *testing.T) {
	db := openTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	g := &model.Game{Name: "Final Fantasy VII", NameKey: "final fantasy vii"}
	_, err := repo.CreateGameIfAbsent(ctx, g)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertAlias(ctx, &model.GameAlias{AliasKey: "final fantasy vii (jp)", GameID: g.ID}))

	found, err := repo.FindGameByAlias(ctx, "final fantasy vii (jp)")
	require.NoError(t, err)
	assert.Equal(t, g.ID, found.ID)

	_, err = repo.FindGameByAlias(ctx, "ff7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkAndAchievementDedup(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalogRepository(db)
	achievements := NewAchievementRepository(db)
	ctx := context.Background()

	extID := "440"
	link := &model.GamePlatformLink{GameID: 1, PlatformID: 1, PlatformSpecificID: &extID}
	created, err := catalog.CreateLinkIfAbsent(ctx, link)
	require.NoError(t, err)
	assert.True(t, created)

	again := &model.GamePlatformLink{GameID: 1, PlatformID: 1}
	created, err = catalog.CreateLinkIfAbsent(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, link.ID, again.ID)
	require.NotNil(t, again.PlatformSpecificID)
	assert.Equal(t, "440", *again.PlatformSpecificID)

	a := &model.Achievement{GamePlatformLinkID: link.ID, PlatformAPIName: "ACH_WIN_A_GAME", Name: "Head of the Class"}
	created, err = achievements.CreateAchievementIfAbsent(ctx, a)
	require.NoError(t, err)
	assert.True(t, created)

	dup := &model.Achievement{GamePlatformLinkID: link.ID, PlatformAPIName: "ACH_WIN_A_GAME", Name: "Renamed"}
	created, err = achievements.CreateAchievementIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, dup.ID)
	assert.Equal(t, "Head of the Class", dup.Name)

	list, err := achievements.ListAchievementsByLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnlockNeverOverwritesTime(t *testing.T) {
	db := openTestDB(t)
	repo := NewUnlockRepository(db)
	ctx := context.Background()
	user := uuid.NewString()

	created, err := repo.EnsureLibraryEntry(ctx, user, 7)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.EnsureLibraryEntry(ctx, user, 7)
	require.NoError(t, err)
	assert.False(t, created)

	u := &model.UserAchievementUnlock{UserID: user, AchievementID: 3, Unlocked: true}
	created, err = repo.CreateUnlockIfAbsent(ctx, u)
	require.NoError(t, err)
	assert.True(t, created)

	t1 := time.Unix(1700000000, 0).UTC()
	filled, err := repo.FillUnlockTime(ctx, u.ID, t1)
	require.NoError(t, err)
	assert.True(t, filled)

	filled, err = repo.FillUnlockTime(ctx, u.ID, t1.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, filled)

	got, err := repo.FindUnlock(ctx, user, 3)
	require.NoError(t, err)
	require.NotNil(t, got.UnlockTime)
	assert.True(t, got.UnlockTime.Equal(t1))
	assert.True(t, got.Unlocked)
}

func TestImportRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewImportRunRepository(db)
	ctx := context.Background()

	run := &model.ImportRun{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		PlatformID: 1,
		Status:     model.ImportRunRunning,
		GamesTotal: 3,
		StartedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateRun(ctx, run))

	now := time.Now()
	run.Status = model.ImportRunCompleted
	run.GamesSucceeded = 2
	run.GamesFailed = 1
	run.Results = datatypes.JSON(`[{"index":0}]`)
	run.FinishedAt = &now
	require.NoError(t, repo.FinishRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ImportRunCompleted, got.Status)
	assert.Equal(t, 2, got.GamesSucceeded)
	assert.Equal(t, 1, got.GamesFailed)
	assert.NotNil(t, got.FinishedAt)
	assert.JSONEq(t, `[{"index":0}]`, string(got.Results))

	_, err = repo.GetRun(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryReads(t *testing.T) {
	db := openTestDB(t)
	lib := NewLibraryRepository(db)
	unlocks := NewUnlockRepository(db)
	ctx := context.Background()
	user := uuid.NewString()

	_, err := unlocks.EnsureLibraryEntry(ctx, user, 1)
	require.NoError(t, err)
	_, err = unlocks.EnsureLibraryEntry(ctx, uuid.NewString(), 2)
	require.NoError(t, err)
	_, err = unlocks.CreateUnlockIfAbsent(ctx, &model.UserAchievementUnlock{UserID: user, AchievementID: 9, Unlocked: true})
	require.NoError(t, err)

	entries, err := lib.ListLibraryEntries(ctx, user)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].GamePlatformLinkID)

	list, err := lib.ListUnlocks(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)

	games, err := lib.GetGamesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, games)
}
