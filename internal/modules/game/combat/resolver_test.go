package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/pkg/xerrors"
)

// fixedRoll 返回固定随机值的随机源，0.5 对应 U=1.0
func fixedRoll(v float64) func() float64 {
	return func() float64 { return v }
}

func TestNewNPCStats(t *testing.T) {
	testCases := []struct {
		name      string
		level     int
		health    int
		strength  float64
		agility   float64
	}{
		{name: "一级NPC", level: 1, health: 100, strength: 10, agility: 9.5},
		{name: "三级NPC", level: 3, health: 140, strength: 14, agility: 12.5},
		{name: "十级NPC", level: 10, health: 280, strength: 28, agility: 23},
		{name: "非法等级按一级处理", level: 0, health: 100, strength: 10, agility: 9.5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats := NewNPCStats("测试NPC", tc.level)
			assert.Equal(t, tc.health, stats.Health)
			assert.Equal(t, tc.health, stats.MaxHealth)
			assert.Equal(t, tc.strength, stats.Strength)
			assert.Equal(t, tc.strength, stats.Defense)
			assert.Equal(t, tc.agility, stats.Agility)
			assert.Equal(t, tc.agility, stats.Intelligence)
		})
	}
}

func TestResolver_BlowDamageAlwaysAtLeastOne(t *testing.T) {
	// 最低随机因子 0.80 加最小基础伤害 1，伤害也不能为 0
	r := NewResolverWithRoll(fixedRoll(0))

	attacker := CombatantStats{Health: 10, MaxHealth: 10, Strength: 1, Agility: 0}
	defender := CombatantStats{Health: 10, MaxHealth: 10, Defense: 100}

	dmg := r.blow(&attacker, &defender)
	assert.Equal(t, 1, dmg, "防御远高于攻击时伤害应钳制到 1")
}

func TestResolver_BlowRoundHalfUp(t *testing.T) {
	// U=1.0 时伤害等于 mitigated 的四舍五入值
	r := NewResolverWithRoll(fixedRoll(0.5))

	// base = 10 + 5/2 = 12.5, mitigated = 12.5 - 5/2 = 10
	attacker := CombatantStats{Health: 10, Strength: 10, Agility: 5}
	defender := CombatantStats{Health: 10, Defense: 5}
	assert.Equal(t, 10, r.blow(&attacker, &defender))

	// base = 10 + 5/2 = 12.5, mitigated = 12.5, 四舍五入后 13
	noDefense := CombatantStats{Health: 10}
	assert.Equal(t, 13, r.blow(&attacker, &noDefense))
}

func TestResolver_TerminatesWithinRoundCap(t *testing.T) {
	// 双方伤害都被钳制到 1、血量很高，必然打满 20 回合
	r := NewResolverWithRoll(fixedRoll(0))

	attacker := CombatantStats{Health: 1000, MaxHealth: 1000, Strength: 1, Defense: 100}
	defender := CombatantStats{Health: 1000, MaxHealth: 1000, Strength: 1, Defense: 100}

	outcome, err := r.Resolve(attacker, defender)
	require.NoError(t, err)

	assert.Equal(t, MaxRounds, outcome.Rounds)
	assert.LessOrEqual(t, len(outcome.Log), MaxRounds*2)
	assert.Len(t, outcome.Log, 40, "打满 20 回合应产生 40 条日志")
}

func TestResolver_WithMaxRoundsOverridesCap(t *testing.T) {
	// 配置的回合上限生效后，同样的拉锯战提前收场
	r := NewResolverWithRoll(fixedRoll(0)).WithMaxRounds(5)

	attacker := CombatantStats{Health: 1000, MaxHealth: 1000, Strength: 1, Defense: 100}
	defender := CombatantStats{Health: 1000, MaxHealth: 1000, Strength: 1, Defense: 100}

	outcome, err := r.Resolve(attacker, defender)
	require.NoError(t, err)

	assert.Equal(t, 5, outcome.Rounds)
	assert.Len(t, outcome.Log, 10)

	// 非正数不覆盖现有上限
	r = NewResolverWithRoll(fixedRoll(0)).WithMaxRounds(0)
	outcome, err = r.Resolve(attacker, defender)
	require.NoError(t, err)
	assert.Equal(t, MaxRounds, outcome.Rounds)
}

func TestResolver_TieGoesToDefender(t *testing.T) {
	// 属性完全镜像且随机因子固定，20 回合后双方血量相同
	r := NewResolverWithRoll(fixedRoll(0.5))

	stats := CombatantStats{Health: 1000, MaxHealth: 1000, Strength: 10, Defense: 10, Agility: 10}
	outcome, err := r.Resolve(stats, stats)
	require.NoError(t, err)

	assert.Equal(t, outcome.AttackerHP, outcome.DefenderHP)
	assert.Equal(t, ActorDefender, outcome.Winner, "平局应判给防守方")
}

func TestResolver_LethalBlowSkipsCounterAttack(t *testing.T) {
	// 进攻方一击必杀，防守方不应有反击日志
	r := NewResolverWithRoll(fixedRoll(0.5))

	attacker := CombatantStats{Health: 100, MaxHealth: 100, Strength: 1000}
	defender := CombatantStats{Health: 50, MaxHealth: 50, Strength: 10}

	outcome, err := r.Resolve(attacker, defender)
	require.NoError(t, err)

	require.Len(t, outcome.Log, 1)
	assert.Equal(t, ActorAttacker, outcome.Log[0].Actor)
	assert.Equal(t, 0, outcome.Log[0].RemainingHealth, "日志中的剩余血量应钳制到 0")
	assert.Equal(t, 100, outcome.AttackerHP, "进攻方血量不应变化")
	assert.Equal(t, ActorAttacker, outcome.Winner)
	assert.Equal(t, 1, outcome.Rounds)
}

func TestResolver_InvalidStatsFailBeforeLoop(t *testing.T) {
	r := NewResolver()

	testCases := []struct {
		name     string
		attacker CombatantStats
		defender CombatantStats
	}{
		{
			name:     "进攻方血量为零",
			attacker: CombatantStats{Health: 0, Strength: 10},
			defender: CombatantStats{Health: 100, Strength: 10},
		},
		{
			name:     "防守方属性为负",
			attacker: CombatantStats{Health: 100, Strength: 10},
			defender: CombatantStats{Health: 100, Strength: -1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := r.Resolve(tc.attacker, tc.defender)
			require.Error(t, err)
			assert.Nil(t, outcome)
			assert.Equal(t, xerrors.CodeBattleInvalidStats, xerrors.CodeOf(err))
		})
	}
}

func TestResolver_StartsFromCurrentHealth(t *testing.T) {
	// 半血进场就半血开打，不重置到满血
	r := NewResolverWithRoll(fixedRoll(0.5))

	halfHealth := CombatantStats{Health: 10, MaxHealth: 100, Strength: 1}
	fullHealth := CombatantStats{Health: 100, MaxHealth: 100, Strength: 50}

	outcome, err := r.Resolve(halfHealth, fullHealth)
	require.NoError(t, err)

	assert.Equal(t, ActorDefender, outcome.Winner)
	assert.LessOrEqual(t, outcome.AttackerHP, 0, "10 点血扛不住一次反击")
	assert.Equal(t, 1, outcome.Rounds)
}

func TestResolver_EndToEndAgainstLevelThreeNPC(t *testing.T) {
	r := NewResolver()

	attacker := CombatantStats{
		Health:    100,
		MaxHealth: 100,
		Strength:  15,
		Defense:   10,
		Agility:   10,
	}
	npc := NewNPCStats("林間魔狼", 3)
	require.Equal(t, 140, npc.Health)
	require.Equal(t, float64(14), npc.Strength)
	require.Equal(t, 12.5, npc.Agility)

	outcome, err := r.Resolve(attacker, npc)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(outcome.Log), 40)
	assert.LessOrEqual(t, outcome.Rounds, MaxRounds)

	// 胜负必须与最终血量比较一致
	if outcome.AttackerHP > outcome.DefenderHP {
		assert.Equal(t, ActorAttacker, outcome.Winner)
	} else {
		assert.Equal(t, ActorDefender, outcome.Winner)
	}

	// 日志伤害全部 ≥ 1，剩余血量 ≥ 0
	for _, event := range outcome.Log {
		assert.GreaterOrEqual(t, event.Damage, 1)
		assert.GreaterOrEqual(t, event.RemainingHealth, 0)
		assert.GreaterOrEqual(t, event.Round, 1)
		assert.LessOrEqual(t, event.Round, MaxRounds)
	}
}
