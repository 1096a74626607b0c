package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"emberfall-server/internal/repository/entity"
)

func newTestPlayer(level, experience int) *entity.Player {
	return &entity.Player{
		ID:         "player-1",
		Name:       "测试玩家",
		Level:      level,
		Experience: experience,
		Health:     50,
		MaxHealth:  100,
		Mana:       20,
		MaxMana:    50,
	}
}

func TestApplyExperience(t *testing.T) {
	testCases := []struct {
		name           string
		level          int
		experience     int
		grant          int
		wantLevel      int
		wantExperience int
		wantLevels     int
	}{
		{
			name:  "单级升级",
			level: 1, experience: 90, grant: 50,
			wantLevel: 2, wantExperience: 40, wantLevels: 1,
		},
		{
			name:  "大额经验连升多级",
			level: 1, experience: 0, grant: 350,
			wantLevel: 3, wantExperience: 50, wantLevels: 2,
		},
		{
			name:  "不足升级门槛",
			level: 2, experience: 100, grant: 50,
			wantLevel: 2, wantExperience: 150, wantLevels: 0,
		},
		{
			name:  "恰好到达门槛",
			level: 1, experience: 0, grant: 100,
			wantLevel: 2, wantExperience: 0, wantLevels: 1,
		},
		{
			name:  "零经验无变化",
			level: 5, experience: 10, grant: 0,
			wantLevel: 5, wantExperience: 10, wantLevels: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			player := newTestPlayer(tc.level, tc.experience)
			levels := ApplyExperience(player, tc.grant)

			assert.Equal(t, tc.wantLevel, player.Level)
			assert.Equal(t, tc.wantExperience, player.Experience)
			assert.Equal(t, tc.wantLevels, levels)
		})
	}
}

func TestApplyExperience_LevelUpRewards(t *testing.T) {
	player := newTestPlayer(1, 90)
	ApplyExperience(player, 50)

	assert.Equal(t, 5, player.StatPoints)
	assert.Equal(t, 110, player.MaxHealth)
	assert.Equal(t, 55, player.MaxMana)
	assert.Equal(t, player.MaxHealth, player.Health, "升级后应满血")
	assert.Equal(t, player.MaxMana, player.Mana, "升级后应满蓝")
	assert.Equal(t, Score(player.Level, player.Experience), player.Score)
}

func TestApplyExperience_NoLevelUpKeepsHealth(t *testing.T) {
	player := newTestPlayer(3, 0)
	ApplyExperience(player, 10)

	assert.Equal(t, 50, player.Health, "未升级不应回血")
	assert.Equal(t, 0, player.StatPoints)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 100, Score(1, 0))
	assert.Equal(t, 350, Score(3, 50))
	assert.Equal(t, 2500, Score(25, 0))
}

func TestPVEReward(t *testing.T) {
	testCases := []struct {
		name     string
		npcLevel int
		wantExp  int
		wantGold int
	}{
		{name: "一级怪吃保底", npcLevel: 1, wantExp: 10, wantGold: 20},
		{name: "三级怪经验超保底金币吃保底", npcLevel: 3, wantExp: 30, wantGold: 20},
		{name: "五级怪双超保底", npcLevel: 5, wantExp: 50, wantGold: 25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exp, gold := PVEReward(tc.npcLevel)
			assert.Equal(t, tc.wantExp, exp)
			assert.Equal(t, tc.wantGold, gold)
		})
	}
}

func TestHeal(t *testing.T) {
	player := newTestPlayer(2, 0)
	player.Health = 1
	player.Mana = 0

	Heal(player)

	assert.Equal(t, player.MaxHealth, player.Health)
	assert.Equal(t, player.MaxMana, player.Mana)
}
