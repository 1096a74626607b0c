package combat

import (
	"math"
	"math/rand"
)

// 默认战斗回合上限，双方各出手一次为一回合
const MaxRounds = 20

// 行动方
const (
	ActorAttacker = "attacker"
	ActorDefender = "defender"
)

// RoundEvent 单次出手的战斗日志条目
type RoundEvent struct {
	Round           int    `json:"round"`
	Actor           string `json:"actor"`
	Damage          int    `json:"damage"`
	RemainingHealth int    `json:"remaining_health"`
}

// Outcome 战斗结果
type Outcome struct {
	// Winner 为 ActorAttacker 或 ActorDefender；
	// PVE 中进攻方落败时由调用方解释为"无胜者"。
	Winner     string       `json:"winner"`
	AttackerHP int          `json:"attacker_hp"`
	DefenderHP int          `json:"defender_hp"`
	Rounds     int          `json:"rounds"`
	Log        []RoundEvent `json:"log"`
}

// AttackerWon 检查进攻方是否获胜
func (o *Outcome) AttackerWon() bool {
	return o.Winner == ActorAttacker
}

// Resolver 回合制战斗结算器。
// roll 可注入以便测试固定随机因子，返回值取 [0, 1)。
type Resolver struct {
	roll      func() float64
	maxRounds int
}

// NewResolver 创建战斗结算器
func NewResolver() *Resolver {
	return &Resolver{roll: rand.Float64, maxRounds: MaxRounds}
}

// NewResolverWithRoll 创建使用指定随机源的战斗结算器
func NewResolverWithRoll(roll func() float64) *Resolver {
	return &Resolver{roll: roll, maxRounds: MaxRounds}
}

// WithMaxRounds 覆盖回合上限，非正数保持原值
func (r *Resolver) WithMaxRounds(rounds int) *Resolver {
	if rounds > 0 {
		r.maxRounds = rounds
	}
	return r
}

// Resolve 结算一场战斗。校验失败在回合循环开始前返回，
// 日志与胜负完全在内存中算完，不做任何持久化。
func (r *Resolver) Resolve(attacker, defender CombatantStats) (*Outcome, error) {
	if err := attacker.Validate(); err != nil {
		return nil, err
	}
	if err := defender.Validate(); err != nil {
		return nil, err
	}

	attackerHP := attacker.Health
	defenderHP := defender.Health
	log := make([]RoundEvent, 0, r.maxRounds*2)

	round := 1
	for round <= r.maxRounds {
		// 进攻方先手
		dmg := r.blow(&attacker, &defender)
		defenderHP -= dmg
		log = append(log, RoundEvent{
			Round:           round,
			Actor:           ActorAttacker,
			Damage:          dmg,
			RemainingHealth: clampZero(defenderHP),
		})
		if defenderHP <= 0 {
			// 致命一击，防守方不再反击
			break
		}

		// 防守方反击
		dmg = r.blow(&defender, &attacker)
		attackerHP -= dmg
		log = append(log, RoundEvent{
			Round:           round,
			Actor:           ActorDefender,
			Damage:          dmg,
			RemainingHealth: clampZero(attackerHP),
		})
		if attackerHP <= 0 {
			break
		}

		round++
	}
	if round > r.maxRounds {
		round = r.maxRounds
	}

	// 平局判给防守方（> 而非 >=，刻意的不对称）
	winner := ActorDefender
	if attackerHP > defenderHP {
		winner = ActorAttacker
	}

	return &Outcome{
		Winner:     winner,
		AttackerHP: attackerHP,
		DefenderHP: defenderHP,
		Rounds:     round,
		Log:        log,
	}, nil
}

// blow 计算单次出手的伤害
func (r *Resolver) blow(attacker, defender *CombatantStats) int {
	base := attacker.Strength + attacker.Agility/2
	mitigated := math.Max(1, base-defender.Defense/2)

	// 随机因子 U ∈ [0.80, 1.20]
	u := 0.80 + r.roll()*0.40
	damage := int(math.Floor(mitigated*u + 0.5))

	// 随机缩放后可能舍入到 0，重新钳制到最低 1 点
	if damage < 1 {
		damage = 1
	}
	return damage
}

func clampZero(hp int) int {
	if hp < 0 {
		return 0
	}
	return hp
}
