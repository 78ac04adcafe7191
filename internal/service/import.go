package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"TrophySync/internal/feed"
	"TrophySync/internal/interfaces"
	"TrophySync/internal/metrics"
	"TrophySync/internal/model"
	"TrophySync/internal/repository"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// AdapterProvider 按平台取适配器（adapter.PlatformRegistry 实现）
type AdapterProvider interface {
	GetAdapter(platform model.PlatformType) (interfaces.PlatformAdapter, error)
}

// PayloadFetcher 通过中转函数拉取平台原始负载（relay.Client 实现）
type PayloadFetcher interface {
	FetchPayload(ctx context.Context, platform model.PlatformType, accountID string) ([]byte, error)
}

// ImportRequest 一次导入请求：Payload 为空且给了 AccountID 时走中转函数
type ImportRequest struct {
	UserID    string
	Platform  string
	Payload   []byte
	AccountID string
}

// GameResult 单个游戏的处理结果，顺序与负载中的顺序一致
type GameResult struct {
	Index          int             `json:"index"`
	Name           string          `json:"name"`
	ExternalGameID string          `json:"external_game_id,omitempty"`
	GameID         uint64          `json:"game_id,omitempty"`
	LinkID         uint64          `json:"link_id,omitempty"`
	Stage          Stage           `json:"stage"`
	Succeeded      bool            `json:"succeeded"`
	Error          string          `json:"error,omitempty"`
	GameCreated    bool            `json:"game_created"`
	LinkCreated    bool            `json:"link_created"`
	Definitions    DefinitionStats `json:"definitions"`
	Unlocks        UnlockStats     `json:"unlocks"`

	Err error `json:"-"`
}

// ImportResult 一次导入的汇总
type ImportResult struct {
	RunID          string              `json:"run_id"`
	Platform       string              `json:"platform"`
	Status         string              `json:"status"`
	Games          []GameResult        `json:"games"`
	Skipped        []model.SkippedGame `json:"skipped"`
	Library        *UserLibrary        `json:"library,omitempty"`
	GamesTotal     int                 `json:"games_total"`
	GamesSucceeded int                 `json:"games_succeeded"`
	GamesFailed    int                 `json:"games_failed"`
	GamesSkipped   int                 `json:"games_skipped"`
}

// ImportService 导入编排：归一化 → 目录解析 → 成就定义 → 解锁 → 投影
type ImportService struct {
	catalogRepo repository.CatalogRepository
	runRepo     repository.ImportRunRepository
	adapters    AdapterProvider
	fetcher     PayloadFetcher
	resolver    *CatalogResolver
	upserter    *AchievementUpserter
	recorder    *UnlockRecorder
	projector   *LibraryProjector
	publisher   feed.Publisher
	workers     int
	admins      map[string]bool
	logger      *logrus.Logger
}

// ImportDeps ImportService 的依赖
type ImportDeps struct {
	CatalogRepo repository.CatalogRepository
	RunRepo     repository.ImportRunRepository
	Adapters    AdapterProvider
	Fetcher     PayloadFetcher
	Resolver    *CatalogResolver
	Upserter    *AchievementUpserter
	Recorder    *UnlockRecorder
	Projector   *LibraryProjector
	Publisher   feed.Publisher
	Workers     int
	// AdminUserIDs 允许调用管理接口的用户，非法 UUID 忽略
	AdminUserIDs []string
}

func NewImportService(deps ImportDeps, logger *logrus.Logger) *ImportService {
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = feed.NewNoop()
	}
	admins := make(map[string]bool, len(deps.AdminUserIDs))
	for _, id := range deps.AdminUserIDs {
		if canonical, err := ValidateUser(id); err == nil {
			admins[canonical] = true
		} else if strings.TrimSpace(id) != "" {
			logger.WithField("user_id", id).Warn("管理员ID不是合法UUID，忽略")
		}
	}
	return &ImportService{
		catalogRepo: deps.CatalogRepo,
		runRepo:     deps.RunRepo,
		adapters:    deps.Adapters,
		fetcher:     deps.Fetcher,
		resolver:    deps.Resolver,
		upserter:    deps.Upserter,
		recorder:    deps.Recorder,
		projector:   deps.Projector,
		publisher:   publisher,
		workers:     workers,
		admins:      admins,
		logger:      logger,
	}
}

// ValidateUser 用户标识必须是认证服务签发的 UUID，返回规范形式
func ValidateUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingSession
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingSession, err)
	}
	return id.String(), nil
}

// Import 执行一次导入。整批失败返回哨兵错误；单个游戏失败只记录在对应的 GameResult 中
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	start := time.Now()
	platformName := strings.ToLower(strings.TrimSpace(req.Platform))

	result, err := s.runImport(ctx, platformName, req, start)
	if err != nil {
		metrics.ImportRunsTotal.WithLabelValues(platformName, "fatal").Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"platform": platformName,
			"user_id":  req.UserID,
		}).Warn("导入整批失败")
		return nil, err
	}
	metrics.ImportRunsTotal.WithLabelValues(platformName, result.Status).Inc()
	metrics.ImportDuration.WithLabelValues(platformName).Observe(time.Since(start).Seconds())
	return result, nil
}

func (s *ImportService) runImport(ctx context.Context, platformName string, req ImportRequest, start time.Time) (*ImportResult, error) {
	userID, err := ValidateUser(req.UserID)
	if err != nil {
		return nil, err
	}

	platform, err := s.catalogRepo.GetPlatformByName(ctx, platformName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlatformNotFound, platformName)
		}
		return nil, fmt.Errorf("查询平台失败: %w", err)
	}
	if !platform.IsEnabled {
		return nil, fmt.Errorf("%w: %s", ErrPlatformDisabled, platformName)
	}
	adapterIns, err := s.adapters.GetAdapter(model.PlatformType(platform.Name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
	}

	payload := req.Payload
	if len(payload) == 0 {
		if req.AccountID == "" || s.fetcher == nil {
			return nil, fmt.Errorf("%w: 负载为空", ErrInvalidPayload)
		}
		payload, err = s.fetcher.FetchPayload(ctx, adapterIns.GetType(), req.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
		}
	}

	batch, err := adapterIns.Normalize(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	run := &model.ImportRun{
		ID:         uuid.NewString(),
		UserID:     userID,
		PlatformID: platform.ID,
		Status:     model.ImportRunRunning,
		GamesTotal: len(batch.Games) + len(batch.Skipped),
		StartedAt:  start,
	}
	if err := s.runRepo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("创建导入记录失败: %w", err)
	}

	// 导入开始后不随调用方取消，已写入的数据保留
	workCtx := context.WithoutCancel(ctx)
	logger := s.logger.WithFields(logrus.Fields{"run_id": run.ID, "platform": platform.Name, "user_id": userID})
	logger.WithFields(logrus.Fields{"games": len(batch.Games), "skipped": len(batch.Skipped)}).Info("开始导入")

	results := make([]GameResult, len(batch.Games))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, ng := range batch.Games {
		i, ng := i, ng
		g.Go(func() error {
			results[i] = s.processGame(workCtx, userID, platform, i, ng)
			return nil
		})
	}
	_ = g.Wait()

	result := &ImportResult{
		RunID:        run.ID,
		Platform:     platform.Name,
		Status:       model.ImportRunCompleted,
		Games:        results,
		Skipped:      batch.Skipped,
		GamesTotal:   run.GamesTotal,
		GamesSkipped: len(batch.Skipped),
	}
	if result.Skipped == nil {
		result.Skipped = []model.SkippedGame{}
	}
	for _, r := range results {
		if r.Succeeded {
			result.GamesSucceeded++
		} else {
			result.GamesFailed++
		}
	}

	// 投影失败时已写入的数据保留，导入记录标记为失败
	lib, err := s.projector.Project(workCtx, userID)
	if err != nil {
		logger.WithError(err).Error("用户视图投影失败")
		result.Status = model.ImportRunFailed
		run.Error = err.Error()
	} else {
		result.Library = lib
		for i := range result.Games {
			if result.Games[i].Succeeded {
				result.Games[i].Stage = StageProjected
			}
		}
	}

	s.finishRun(workCtx, run, result, logger)
	s.recordMetrics(platform.Name, result)
	s.publish(workCtx, run, result, logger)

	logger.WithFields(logrus.Fields{
		"succeeded": result.GamesSucceeded,
		"failed":    result.GamesFailed,
		"skipped":   result.GamesSkipped,
		"elapsed":   time.Since(start).String(),
	}).Info("导入完成")
	return result, nil
}

// processGame 推进单个游戏的状态机，任何一步失败即停在当前阶段
func (s *ImportService) processGame(ctx context.Context, userID string, platform *model.Platform, idx int, ng *model.NormalizedGame) GameResult {
	res := GameResult{
		Index:          idx,
		Name:           ng.Name,
		ExternalGameID: ng.ExternalGameID,
		Stage:          StageNormalized,
	}
	fail := func(stage Stage, err error) GameResult {
		gerr := &GameError{Stage: stage, Game: ng.Name, Err: err}
		res.Err = gerr
		res.Error = gerr.Error()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"game":     ng.Name,
			"platform": platform.Name,
			"stage":    stage,
		}).Error("游戏导入失败")
		return res
	}

	game, created, err := s.resolver.ResolveGame(ctx, ng)
	if err != nil {
		return fail(StageCatalogResolved, err)
	}
	res.GameID = game.ID
	res.GameCreated = created

	link, linkCreated, err := s.resolver.ResolveGamePlatformLink(ctx, game.ID, platform.ID, ng.ExternalGameID)
	if err != nil {
		return fail(StageCatalogResolved, err)
	}
	res.LinkID = link.ID
	res.LinkCreated = linkCreated
	res.Stage = StageCatalogResolved

	defsByKey, defStats, err := s.upserter.UpsertDefinitions(ctx, link, ng.Achievements)
	res.Definitions = defStats
	if err != nil {
		return fail(StageAchievementsUpserted, err)
	}
	res.Stage = StageAchievementsUpserted

	unlockStats, err := s.recorder.RecordUnlocks(ctx, userID, link, defsByKey, ng.Unlocks)
	res.Unlocks = unlockStats
	if err != nil {
		return fail(StageUnlocksRecorded, err)
	}
	res.Stage = StageUnlocksRecorded
	res.Succeeded = true
	return res
}

func (s *ImportService) finishRun(ctx context.Context, run *model.ImportRun, result *ImportResult, logger *logrus.Entry) {
	now := time.Now()
	run.Status = result.Status
	run.GamesSucceeded = result.GamesSucceeded
	run.GamesFailed = result.GamesFailed
	run.GamesSkipped = result.GamesSkipped
	run.FinishedAt = &now
	if raw, err := json.Marshal(result.Games); err != nil {
		logger.WithError(err).Warn("序列化逐游戏结果失败")
	} else {
		run.Results = datatypes.JSON(raw)
	}
	if err := s.runRepo.FinishRun(ctx, run); err != nil {
		logger.WithError(err).Error("更新导入记录失败")
		result.Status = model.ImportRunFailed
	}
}

func (s *ImportService) recordMetrics(platform string, result *ImportResult) {
	metrics.ImportGamesTotal.WithLabelValues(platform, "succeeded").Add(float64(result.GamesSucceeded))
	metrics.ImportGamesTotal.WithLabelValues(platform, "failed").Add(float64(result.GamesFailed))
	metrics.ImportGamesTotal.WithLabelValues(platform, "skipped").Add(float64(result.GamesSkipped))

	var games, links, achievements, unlocks, entries int
	for _, r := range result.Games {
		if r.GameCreated {
			games++
		}
		if r.LinkCreated {
			links++
		}
		if r.Unlocks.LibraryEntryCreated {
			entries++
		}
		achievements += r.Definitions.Created
		unlocks += r.Unlocks.Created
	}
	metrics.ImportRowsCreated.WithLabelValues(platform, "games").Add(float64(games))
	metrics.ImportRowsCreated.WithLabelValues(platform, "game_platform_links").Add(float64(links))
	metrics.ImportRowsCreated.WithLabelValues(platform, "achievements").Add(float64(achievements))
	metrics.ImportRowsCreated.WithLabelValues(platform, "user_achievement_unlocks").Add(float64(unlocks))
	metrics.ImportRowsCreated.WithLabelValues(platform, "user_game_library_entries").Add(float64(entries))
}

func (s *ImportService) publish(ctx context.Context, run *model.ImportRun, result *ImportResult, logger *logrus.Entry) {
	evt := feed.ImportEvent{
		RunID:          run.ID,
		UserID:         run.UserID,
		Platform:       result.Platform,
		Status:         result.Status,
		GamesTotal:     result.GamesTotal,
		GamesSucceeded: result.GamesSucceeded,
		GamesFailed:    result.GamesFailed,
		GamesSkipped:   result.GamesSkipped,
		FinishedAt:     *run.FinishedAt,
	}
	if err := s.publisher.PublishImportCompleted(ctx, evt); err != nil {
		logger.WithError(err).Warn("投递导入事件失败")
	}
}

// GetRun 读取导入记录，只能读取本人的
func (s *ImportService) GetRun(ctx context.Context, userID, runID string) (*model.ImportRun, error) {
	userID, err := ValidateUser(userID)
	if err != nil {
		return nil, err
	}
	run, err := s.runRepo.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return run, nil
}

// Library 读取用户视图
func (s *ImportService) Library(ctx context.Context, userID string) (*UserLibrary, error) {
	userID, err := ValidateUser(userID)
	if err != nil {
		return nil, err
	}
	return s.projector.Project(ctx, userID)
}

// AddAlias 管理接口：写入游戏别名，actorID 必须在管理员列表中
func (s *ImportService) AddAlias(ctx context.Context, actorID string, gameID uint64, alias string) (*model.GameAlias, error) {
	actorID, err := ValidateUser(actorID)
	if err != nil {
		return nil, err
	}
	if !s.admins[actorID] {
		s.logger.WithFields(logrus.Fields{"user_id": actorID, "game_id": gameID}).Warn("非管理员尝试写入游戏别名")
		return nil, ErrNotAdmin
	}
	return s.resolver.AddAlias(ctx, gameID, alias)
}
