package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"TrophySync/internal/adapter"
	_ "TrophySync/internal/adapter/psn"
	_ "TrophySync/internal/adapter/steam"
	_ "TrophySync/internal/adapter/xbox"
	"TrophySync/internal/feed"
	"TrophySync/internal/lock"
	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	catalog   repository.CatalogRepository
	svc       *ImportService
	projector *LibraryProjector
	publisher *recordingPublisher
	fetcher   *fakeFetcher
	logger    *logrus.Logger
}

// testAdmin 测试环境中唯一的管理员
const testAdmin = "5d41402a-bc4b-4a76-b971-9d911017c592"

// envSetup 组装服务前可替换的仓储
type envSetup struct {
	deps    *ImportDeps
	library repository.LibraryRepository
}

type envOption func(*envSetup)

func withFailingGame(nameKey string) envOption {
	return func(s *envSetup) {
		s.deps.CatalogRepo = &failingCatalog{CatalogRepository: s.deps.CatalogRepo, failKey: nameKey}
	}
}

func withFailingLibrary() envOption {
	return func(s *envSetup) {
		s.library = &failingLibrary{LibraryRepository: s.library}
	}
}

func withFailingFinish() envOption {
	return func(s *envSetup) {
		s.deps.RunRepo = &failingRuns{ImportRunRepository: s.deps.RunRepo}
	}
}

func withWorkers(n int) envOption {
	return func(s *envSetup) {
		s.deps.Workers = n
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	log, _ := test.NewNullLogger()
	catalog := repository.NewCatalogRepository(db)
	ctx := context.Background()
	for _, p := range []model.PlatformType{model.PlatformSteam, model.PlatformPSN, model.PlatformXbox} {
		require.NoError(t, catalog.EnsurePlatform(ctx, &model.Platform{Name: string(p), DisplayName: string(p), IsEnabled: true}))
	}

	deps := ImportDeps{
		CatalogRepo:  catalog,
		RunRepo:      repository.NewImportRunRepository(db),
		Adapters:     adapter.NewPlatformRegistry(log),
		Workers:      4,
		AdminUserIDs: []string{testAdmin, "not-a-uuid"},
	}
	setup := &envSetup{deps: &deps, library: repository.NewLibraryRepository(db)}
	for _, o := range opts {
		o(setup)
	}
	fetcher := &fakeFetcher{}
	publisher := &recordingPublisher{}
	projector := NewLibraryProjector(setup.library, log)
	deps.Fetcher = fetcher
	deps.Publisher = publisher
	deps.Resolver = NewCatalogResolver(deps.CatalogRepo, lock.NewLocalLocker(), log)
	deps.Upserter = NewAchievementUpserter(repository.NewAchievementRepository(db), log)
	deps.Recorder = NewUnlockRecorder(repository.NewUnlockRepository(db), log)
	deps.Projector = projector

	return &testEnv{
		db:        db,
		catalog:   catalog,
		svc:       NewImportService(deps, log),
		projector: projector,
		publisher: publisher,
		fetcher:   fetcher,
		logger:    log,
	}
}

func (e *testEnv) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

type rowCounts struct {
	games, links, achievements, unlocks, entries int64
}

func (e *testEnv) counts(t *testing.T) rowCounts {
	return rowCounts{
		games:        e.count(t, &model.Game{}),
		links:        e.count(t, &model.GamePlatformLink{}),
		achievements: e.count(t, &model.Achievement{}),
		unlocks:      e.count(t, &model.UserAchievementUnlock{}),
		entries:      e.count(t, &model.UserGameLibraryEntry{}),
	}
}

type fakeFetcher struct {
	payload []byte
	err     error
	calls   []string
}

func (f *fakeFetcher) FetchPayload(_ context.Context, platform model.PlatformType, accountID string) ([]byte, error) {
	f.calls = append(f.calls, string(platform)+":"+accountID)
	return f.payload, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []feed.ImportEvent
}

func (p *recordingPublisher) PublishImportCompleted(_ context.Context, evt feed.ImportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// failingCatalog 对指定 name_key 的建游戏请求返回错误
type failingCatalog struct {
	repository.CatalogRepository
	failKey string
}

var errStorage = errors.New("storage unavailable")

func (f *failingCatalog) CreateGameIfAbsent(ctx context.Context, g *model.Game) (bool, error) {
	if g.NameKey == f.failKey {
		return false, errStorage
	}
	return f.CatalogRepository.CreateGameIfAbsent(ctx, g)
}

// failingLibrary 读取游戏库条目总是失败
type failingLibrary struct {
	repository.LibraryRepository
}

func (f *failingLibrary) ListLibraryEntries(context.Context, string) ([]*model.UserGameLibraryEntry, error) {
	return nil, errStorage
}

// failingRuns 导入记录收尾写入总是失败
type failingRuns struct {
	repository.ImportRunRepository
}

func (f *failingRuns) FinishRun(context.Context, *model.ImportRun) error {
	return errStorage
}
