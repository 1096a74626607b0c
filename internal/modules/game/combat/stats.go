package combat

import (
	"encoding/json"

	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"
)

// CombatantStats 战斗参与者的属性快照（派生值，不落库）。
// agility 和 intelligence 在 NPC 合成时会出现 .5 的小数，
// 全程保留浮点参与伤害计算，不做取整。
type CombatantStats struct {
	Name         string  `json:"name"`
	Health       int     `json:"health"`
	MaxHealth    int     `json:"max_health"`
	Strength     float64 `json:"strength"`
	Defense      float64 `json:"defense"`
	Agility      float64 `json:"agility"`
	Intelligence float64 `json:"intelligence"`
	Level        int     `json:"level"`
}

// Validate 校验属性快照是否可用于战斗
func (s *CombatantStats) Validate() error {
	if s.Health <= 0 {
		return xerrors.FromCode(xerrors.CodeBattleInvalidStats).
			WithMetadata("field", "health").
			WithMetadata("value", s.Health)
	}
	if s.Strength < 0 || s.Defense < 0 || s.Agility < 0 || s.Intelligence < 0 {
		return xerrors.FromCode(xerrors.CodeBattleInvalidStats).
			WithMetadata("name", s.Name)
	}
	return nil
}

// NewNPCStats 按等级合成 NPC 属性
func NewNPCStats(name string, level int) CombatantStats {
	if level < 1 {
		level = 1
	}
	health := 80 + level*20
	return CombatantStats{
		Name:         name,
		Health:       health,
		MaxHealth:    health,
		Strength:     float64(8 + level*2),
		Defense:      float64(8 + level*2),
		Agility:      8 + float64(level)*1.5,
		Intelligence: 8 + float64(level)*1.5,
		Level:        level,
	}
}

// StatModifiers 装备附加的属性修正值
type StatModifiers struct {
	Strength     int `json:"strength"`
	Defense      int `json:"defense"`
	Agility      int `json:"agility"`
	Intelligence int `json:"intelligence"`
}

// Add 累加另一组修正值
func (m *StatModifiers) Add(other StatModifiers) {
	m.Strength += other.Strength
	m.Defense += other.Defense
	m.Agility += other.Agility
	m.Intelligence += other.Intelligence
}

// ParseStatModifiers 解析物品模板上的 stat_modifiers JSON
func ParseStatModifiers(raw []byte) (StatModifiers, error) {
	var m StatModifiers
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return StatModifiers{}, err
	}
	return m, nil
}

// NewPlayerStats 从玩家实体和装备修正值构建属性快照。
// 战斗以玩家当前血量开场，半血进场就是半血开打。
func NewPlayerStats(player *entity.Player, modifiers StatModifiers) CombatantStats {
	return CombatantStats{
		Name:         player.Name,
		Health:       player.Health,
		MaxHealth:    player.MaxHealth,
		Strength:     float64(player.Strength + modifiers.Strength),
		Defense:      float64(player.Defense + modifiers.Defense),
		Agility:      float64(player.Agility + modifiers.Agility),
		Intelligence: float64(player.Intelligence + modifiers.Intelligence),
		Level:        player.Level,
	}
}
