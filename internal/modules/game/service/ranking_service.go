package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/log"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

// RankingService 排名服务。
// 排名重算是全表操作，所有入口都串行在同一把互斥锁后面，
// 保证落库的 (score, rank) 对来自同一次总排序快照。
type RankingService struct {
	mu         sync.Mutex
	db         *sql.DB
	playerRepo interfaces.PlayerRepository
	metrics    *metrics.BusinessMetrics
	logger     log.Logger
}

// NewRankingService 创建排名服务
func NewRankingService(db *sql.DB, playerRepo interfaces.PlayerRepository, bm *metrics.BusinessMetrics) *RankingService {
	return &RankingService{
		db:         db,
		playerRepo: playerRepo,
		metrics:    bm,
		logger:     log.GetLogger(),
	}
}

// RecalculateAllScores 重算全部玩家积分，只写入发生变化的行，
// 返回积分变化的玩家数。连续两次调用且期间无状态变化时，
// 第二次必然返回 0。
func (s *RankingService) RecalculateAllScores(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recalculateAllScores(ctx)
}

func (s *RankingService) recalculateAllScores(ctx context.Context) (int, error) {
	players, err := s.playerRepo.GetAllActive(ctx)
	if err != nil {
		return 0, xerrors.NewDatabaseError("get_all_players", "players", err)
	}

	changed := 0
	for _, player := range players {
		newScore := combat.Score(player.Level, player.Experience)
		if newScore == player.Score {
			continue
		}
		player.Score = newScore
		// 只写积分列：读取快照里的金币/经验可能已被并发战斗结算刷新，
		// 整行回写会把已提交的奖励冲掉
		if err := s.playerRepo.UpdateScore(ctx, s.db, player.ID, newScore); err != nil {
			return changed, xerrors.NewPersistenceError("update_player_score", err)
		}
		changed++
	}

	s.metrics.RecordRankingRun("recalculate", changed, serviceName)
	return changed, nil
}

// AssignRanks 按 (积分降序, 等级降序, 经验降序, id升序) 总排序后
// 写入稠密排名 1..N，每次调用全量覆盖并刷新 last_rank_update。
// 返回排名发生变化的玩家事件。
func (s *RankingService) AssignRanks(ctx context.Context) ([]combat.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignRanks(ctx)
}

func (s *RankingService) assignRanks(ctx context.Context) ([]combat.DomainEvent, error) {
	players, err := s.playerRepo.GetAllActive(ctx)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_all_players", "players", err)
	}
	if len(players) == 0 {
		return nil, nil
	}

	sortPlayersForRanking(players)

	updates := make([]interfaces.RankUpdate, 0, len(players))
	events := make([]combat.DomainEvent, 0)
	for i, player := range players {
		rank := i + 1
		updates = append(updates, interfaces.RankUpdate{
			PlayerID: player.ID,
			Rank:     rank,
			Score:    player.Score,
		})
		oldRank := 0
		if player.Rank.Valid {
			oldRank = player.Rank.Int
		}
		if oldRank != rank {
			events = append(events, combat.RankChangedEvent{
				PlayerID: player.ID,
				OldRank:  oldRank,
				NewRank:  rank,
			})
		}
	}

	// 排名写入不包事务：互斥锁已串行化全部排名入口，
	// 单行写入幂等，重跑一次即可收敛
	if err := s.playerRepo.UpdateRanks(ctx, s.db, updates); err != nil {
		return nil, xerrors.NewPersistenceError("update_ranks", err)
	}

	s.logger.InfoContext(ctx, "排名写入完成",
		log.Int("players", len(players)),
		log.Int("rank_changes", len(events)),
	)
	return events, nil
}

// UpdatePlayerRanking 单玩家积分更新的便捷入口：重算该玩家积分
// 并持久化，随后执行一次全表排名。排名稠密性依赖每次都从总排序
// 重新推导，调用频繁时应当批量合并后再触发，这里不做增量优化。
func (s *RankingService) UpdatePlayerRanking(ctx context.Context, playerID string) ([]combat.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, xerrors.NewPlayerNotFoundError(playerID)
		}
		return nil, xerrors.NewDatabaseError("get_player", "players", err)
	}

	newScore := combat.Score(player.Level, player.Experience)
	if newScore != player.Score {
		player.Score = newScore
		if err := s.playerRepo.UpdateScore(ctx, s.db, player.ID, newScore); err != nil {
			return nil, xerrors.NewPersistenceError("update_player_score", err)
		}
	}

	s.metrics.RecordRankingRun("single_player", 0, serviceName)
	return s.assignRanks(ctx)
}

// TopN 查询排名前 N 的玩家，尚无排名的玩家被排除而非按无穷大处理
func (s *RankingService) TopN(ctx context.Context, n int) ([]*entity.Player, error) {
	if n <= 0 {
		n = 10
	}
	players, err := s.playerRepo.GetTopRanked(ctx, n)
	if err != nil {
		return nil, xerrors.NewDatabaseError("get_top_ranked", "players", err)
	}
	return players, nil
}

// sortPlayersForRanking 排名总排序。完全同分时按 id 升序兜底，
// 不依赖底层排序的偶然稳定性。
func sortPlayersForRanking(players []*entity.Player) {
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Experience != b.Experience {
			return a.Experience > b.Experience
		}
		return a.ID < b.ID
	})
}
