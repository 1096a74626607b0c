package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/repository/entity"
	"emberfall-server/internal/repository/interfaces"
)

// fakePlayerRepo 内存版玩家仓储，排名相关测试不依赖数据库
type fakePlayerRepo struct {
	players map[string]*entity.Player

	// afterListRead 在 GetAllActive 取完快照后触发，
	// 用于模拟全表读与写回之间的并发提交
	afterListRead func()
}

func newFakePlayerRepo(players ...*entity.Player) *fakePlayerRepo {
	repo := &fakePlayerRepo{players: make(map[string]*entity.Player)}
	for _, p := range players {
		repo.players[p.ID] = p
	}
	return repo
}

func (r *fakePlayerRepo) Create(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error {
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, playerID string) (*entity.Player, error) {
	player, ok := r.players[playerID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return player, nil
}

func (r *fakePlayerRepo) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, playerID string) (*entity.Player, error) {
	return r.GetByID(ctx, playerID)
}

func (r *fakePlayerRepo) GetByName(ctx context.Context, name string) (*entity.Player, error) {
	for _, p := range r.players {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakePlayerRepo) Update(ctx context.Context, execer boil.ContextExecutor, player *entity.Player) error {
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) UpdateScore(ctx context.Context, execer boil.ContextExecutor, playerID string, score int) error {
	if p, ok := r.players[playerID]; ok {
		p.Score = score
	}
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, playerID string) error {
	delete(r.players, playerID)
	return nil
}

func (r *fakePlayerRepo) GetAllActive(ctx context.Context) ([]*entity.Player, error) {
	// 返回行拷贝，模拟数据库读快照
	players := make([]*entity.Player, 0, len(r.players))
	for _, p := range r.players {
		snapshot := *p
		players = append(players, &snapshot)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	if r.afterListRead != nil {
		r.afterListRead()
	}
	return players, nil
}

func (r *fakePlayerRepo) GetTopRanked(ctx context.Context, limit int) ([]*entity.Player, error) {
	ranked := make([]*entity.Player, 0)
	for _, p := range r.players {
		if p.Rank.Valid {
			ranked = append(ranked, p)
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Rank.Int < ranked[j].Rank.Int })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (r *fakePlayerRepo) UpdateRanks(ctx context.Context, execer boil.ContextExecutor, updates []interfaces.RankUpdate) error {
	now := time.Now()
	for _, u := range updates {
		if p, ok := r.players[u.PlayerID]; ok {
			p.Rank = null.IntFrom(u.Rank)
			p.Score = u.Score
			p.LastRankUpdate = null.TimeFrom(now)
		}
	}
	return nil
}

func (r *fakePlayerRepo) CheckExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByName(ctx, name)
	return err == nil, nil
}

func rankingPlayer(id string, level, experience int, storedScore int) *entity.Player {
	return &entity.Player{
		ID:         id,
		Name:       "玩家" + id,
		Level:      level,
		Experience: experience,
		Score:      storedScore,
	}
}

func newTestRankingService(repo interfaces.PlayerRepository) *RankingService {
	bm := metrics.NewBusinessMetricsWithRegistry("emberfall_test", nil)
	return NewRankingService(nil, repo, bm)
}

func TestRankingService_AssignRanks(t *testing.T) {
	repo := newFakePlayerRepo(
		rankingPlayer("p1", 25, 0, 2500),
		rankingPlayer("p2", 15, 0, 1500),
		rankingPlayer("p3", 7, 0, 700),
	)
	svc := newTestRankingService(repo)
	ctx := context.Background()

	events, err := svc.AssignRanks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.players["p1"].Rank.Int)
	assert.Equal(t, 2, repo.players["p2"].Rank.Int)
	assert.Equal(t, 3, repo.players["p3"].Rank.Int)
	assert.Len(t, events, 3, "首次排名所有玩家都应产生变化事件")

	for _, p := range repo.players {
		assert.True(t, p.LastRankUpdate.Valid, "每次排名都应刷新 last_rank_update")
	}

	// 积分不变时重跑，排名不变且无事件
	events, err = svc.AssignRanks(ctx)
	require.NoError(t, err)
	assert.Empty(t, events, "排名无变化不应产生事件")
	assert.Equal(t, 1, repo.players["p1"].Rank.Int)
}

func TestRankingService_TieBreakByLevel(t *testing.T) {
	// 同分时等级高者排名靠前
	repo := newFakePlayerRepo(
		rankingPlayer("p-low", 10, 100, 1100),
		rankingPlayer("p-high", 11, 0, 1100),
	)
	svc := newTestRankingService(repo)

	_, err := svc.AssignRanks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.players["p-high"].Rank.Int)
	assert.Equal(t, 2, repo.players["p-low"].Rank.Int)
}

func TestRankingService_FullyIdenticalKeysFallBackToID(t *testing.T) {
	// (score, level, experience) 全同时按 id 升序兜底
	repo := newFakePlayerRepo(
		rankingPlayer("b", 5, 50, 550),
		rankingPlayer("a", 5, 50, 550),
	)
	svc := newTestRankingService(repo)

	_, err := svc.AssignRanks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.players["a"].Rank.Int)
	assert.Equal(t, 2, repo.players["b"].Rank.Int)
}

func TestRankingService_RecalculateAllScores(t *testing.T) {
	// p1 存储积分过期，p2 已是最新
	repo := newFakePlayerRepo(
		rankingPlayer("p1", 3, 50, 100),
		rankingPlayer("p2", 2, 0, 200),
	)
	svc := newTestRankingService(repo)
	ctx := context.Background()

	changed, err := svc.RecalculateAllScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 350, repo.players["p1"].Score)

	// 幂等性：无状态变化时第二次必然返回 0
	changed, err = svc.RecalculateAllScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestRankingService_RecalculatePreservesConcurrentRewards(t *testing.T) {
	// 全表读快照之后、写回之前，另一个战斗结算事务提交了
	// 金币和经验。积分写回必须只落积分列，不能把奖励冲掉
	player := rankingPlayer("p1", 3, 50, 100)
	player.Gold = 100
	repo := newFakePlayerRepo(player)
	repo.afterListRead = func() {
		repo.players["p1"].Gold = 180
		repo.players["p1"].Experience = 90
	}
	svc := newTestRankingService(repo)
	ctx := context.Background()

	changed, err := svc.RecalculateAllScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored := repo.players["p1"]
	assert.Equal(t, 180, stored.Gold, "并发提交的金币不应被回滚")
	assert.Equal(t, 90, stored.Experience, "并发提交的经验不应被回滚")
	assert.Equal(t, 350, stored.Score)

	// 下一轮重算基于最新经验收敛
	changed, err = svc.RecalculateAllScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 390, stored.Score)
}

func TestRankingService_UpdatePlayerRanking(t *testing.T) {
	repo := newFakePlayerRepo(
		rankingPlayer("p1", 1, 0, 100),
		rankingPlayer("p2", 5, 0, 500),
	)
	svc := newTestRankingService(repo)
	ctx := context.Background()

	// p1 升级后触发单玩家更新，内部执行全表排名
	repo.players["p1"].Level = 10
	events, err := svc.UpdatePlayerRanking(ctx, "p1")
	require.NoError(t, err)

	assert.Equal(t, 1000, repo.players["p1"].Score)
	assert.Equal(t, 1, repo.players["p1"].Rank.Int)
	assert.Equal(t, 2, repo.players["p2"].Rank.Int)
	assert.NotEmpty(t, events)
}

func TestRankingService_UpdatePlayerRanking_NotFound(t *testing.T) {
	svc := newTestRankingService(newFakePlayerRepo())

	_, err := svc.UpdatePlayerRanking(context.Background(), "missing")
	require.Error(t, err)
}

func TestRankingService_TopN(t *testing.T) {
	repo := newFakePlayerRepo(
		rankingPlayer("p1", 25, 0, 2500),
		rankingPlayer("p2", 15, 0, 1500),
		rankingPlayer("p3", 7, 0, 700),
		rankingPlayer("unranked", 99, 0, 9900),
	)
	svc := newTestRankingService(repo)
	ctx := context.Background()

	// 只给前三名赋排名，unranked 保持 null
	repo.players["p1"].Rank = null.IntFrom(1)
	repo.players["p2"].Rank = null.IntFrom(2)
	repo.players["p3"].Rank = null.IntFrom(3)

	top, err := svc.TopN(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].ID)
	assert.Equal(t, "p2", top[1].ID)

	// 无排名玩家被排除，而不是按无穷大参与
	top, err = svc.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	for _, p := range top {
		assert.NotEqual(t, "unranked", p.ID)
	}
}

func TestSortPlayersForRanking(t *testing.T) {
	players := []*entity.Player{
		rankingPlayer("c", 5, 10, 510),
		rankingPlayer("a", 10, 0, 1000),
		rankingPlayer("b", 5, 20, 520),
	}
	sortPlayersForRanking(players)

	assert.Equal(t, "a", players[0].ID)
	assert.Equal(t, "b", players[1].ID)
	assert.Equal(t, "c", players[2].ID)
	assert.Equal(t, combat.Score(10, 0), players[0].Score)
}
