package combat

// 领域事件由核心逻辑返回、调用方负责分发，
// 核心不直接依赖通知子系统。

// DomainEvent 领域事件统一接口
type DomainEvent interface {
	EventName() string
}

// LevelUpEvent 玩家升级事件
type LevelUpEvent struct {
	PlayerID string `json:"player_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
}

func (LevelUpEvent) EventName() string { return "player.levelup" }

// BattleCompletedEvent 战斗结束事件
type BattleCompletedEvent struct {
	BattleID   string `json:"battle_id"`
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id,omitempty"`
	BattleType string `json:"battle_type"`
	WinnerID   string `json:"winner_id,omitempty"`
	Rounds     int    `json:"rounds"`
	ExpGained  int    `json:"exp_gained"`
	GoldGained int    `json:"gold_gained"`
}

func (BattleCompletedEvent) EventName() string { return "battle.completed" }

// RankChangedEvent 玩家排名变化事件
type RankChangedEvent struct {
	PlayerID string `json:"player_id"`
	OldRank  int    `json:"old_rank"` // 0 表示此前无排名
	NewRank  int    `json:"new_rank"`
}

func (RankChangedEvent) EventName() string { return "ranking.changed" }
