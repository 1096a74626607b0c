package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/modules/game/combat"
	"emberfall-server/internal/pkg/config"
	"emberfall-server/internal/pkg/metrics"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
)

func newTestCombatService(playerItems *fakePlayerItemRepo, items *fakeItemRepo) *CombatService {
	bm := metrics.NewBusinessMetricsWithRegistry("emberfall_test", nil)
	cfg := config.DefaultGameConfig()
	return NewCombatService(nil, newFakePlayerRepo(), playerItems, items, nil, &cfg, bm)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCombatService_ValidateRequest(t *testing.T) {
	svc := newTestCombatService(newFakePlayerItemRepo(), newFakeItemRepo())
	ctx := context.Background()

	testCases := []struct {
		name     string
		request  *StartBattleRequest
		wantCode xerrors.ErrorCode
	}{
		{
			name: "PVP缺少防守方",
			request: &StartBattleRequest{
				AttackerID: "p1",
				BattleType: entity.BattleTypePVP,
			},
			wantCode: xerrors.CodeBattleMissingDefender,
		},
		{
			name: "不能与自己战斗",
			request: &StartBattleRequest{
				AttackerID: "p1",
				DefenderID: strPtr("p1"),
				BattleType: entity.BattleTypePVP,
			},
			wantCode: xerrors.CodeBattleSelfTarget,
		},
		{
			name: "非法NPC等级",
			request: &StartBattleRequest{
				AttackerID:    "p1",
				OpponentLevel: intPtr(0),
				BattleType:    entity.BattleTypePVE,
			},
			wantCode: xerrors.CodeInvalidParams,
		},
		{
			name: "未知战斗类型",
			request: &StartBattleRequest{
				AttackerID: "p1",
				BattleType: "raid",
			},
			wantCode: xerrors.CodeInvalidParams,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, events, err := svc.StartBattle(ctx, tc.request)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Nil(t, events)
			assert.Equal(t, tc.wantCode, xerrors.CodeOf(err))
		})
	}
}

func TestCombatService_BuildPlayerStatsAggregatesEquipment(t *testing.T) {
	playerItems := newFakePlayerItemRepo()
	items := newFakeItemRepo(
		&entity.Item{
			ID:            "sword",
			Name:          "铁剑",
			ItemType:      entity.ItemTypeWeapon,
			StatModifiers: []byte(`{"strength": 5, "agility": 2}`),
		},
		&entity.Item{
			ID:            "shield",
			Name:          "木盾",
			ItemType:      entity.ItemTypeArmor,
			StatModifiers: []byte(`{"defense": 3}`),
		},
	)
	svc := newTestCombatService(playerItems, items)
	ctx := context.Background()

	player := &entity.Player{
		ID:           "p1",
		Name:         "测试玩家",
		Level:        2,
		Health:       80,
		MaxHealth:    100,
		Strength:     10,
		Defense:      10,
		Agility:      10,
		Intelligence: 10,
	}

	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "sword", 1))
	require.NoError(t, playerItems.AddQuantity(ctx, nil, "p1", "shield", 1))
	require.NoError(t, playerItems.SetEquipped(ctx, nil, "p1", "sword", true))
	// 木盾未装备，不应参与属性汇总

	stats, err := svc.buildPlayerStats(ctx, player)
	require.NoError(t, err)

	assert.Equal(t, float64(15), stats.Strength, "装备的铁剑应加5点力量")
	assert.Equal(t, float64(12), stats.Agility)
	assert.Equal(t, float64(10), stats.Defense, "未装备的木盾不应生效")
	assert.Equal(t, 80, stats.Health, "战斗从当前血量开打")
}

func TestCombatService_BuildRecord(t *testing.T) {
	svc := newTestCombatService(newFakePlayerItemRepo(), newFakeItemRepo())

	attacker := &entity.Player{ID: "p1", Name: "进攻方"}
	outcome := &combat.Outcome{
		Winner:     combat.ActorDefender,
		AttackerHP: -5,
		DefenderHP: 30,
		Rounds:     4,
		Log: []combat.RoundEvent{
			{Round: 1, Actor: combat.ActorAttacker, Damage: 10, RemainingHealth: 90},
		},
	}

	// PVE 落败：无胜者，winner_id 为空
	req := &StartBattleRequest{
		AttackerID: "p1",
		BattleType: entity.BattleTypePVE,
	}
	record, err := svc.buildRecord(req, attacker, nil, 3, outcome, 0, 0)
	require.NoError(t, err)

	assert.False(t, record.WinnerID.Valid, "PVE落败不应有胜者")
	assert.False(t, record.DefenderID.Valid)
	assert.Equal(t, 3, record.NPCLevel.Int)
	assert.Equal(t, 0, record.ExpGained)
	assert.Equal(t, 0, record.GoldGained)

	// PVP 防守方胜：胜者为防守方
	defender := &entity.Player{ID: "p2", Name: "防守方"}
	req = &StartBattleRequest{
		AttackerID: "p1",
		DefenderID: strPtr("p2"),
		BattleType: entity.BattleTypePVP,
	}
	record, err = svc.buildRecord(req, attacker, defender, 0, outcome, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, "p2", record.WinnerID.String)
	assert.Equal(t, "p2", record.DefenderID.String)
	assert.False(t, record.NPCLevel.Valid)
}
