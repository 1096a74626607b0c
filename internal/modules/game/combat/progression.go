package combat

import (
	"emberfall-server/internal/repository/entity"
)

// 升级奖励
const (
	expPerLevelFactor  = 100
	statPointsPerLevel = 5
	maxHealthPerLevel  = 10
	maxManaPerLevel    = 5
)

// Score 计算玩家积分
func Score(level, experience int) int {
	return level*100 + experience
}

// ApplyExperience 发放经验并结算升级，返回升级次数。
// 升级循环支持一次性大额经验连升多级，每级升级门槛为
// 当前等级*100，升级后满血满蓝。
func ApplyExperience(player *entity.Player, experience int) int {
	if experience <= 0 {
		return 0
	}

	player.Experience += experience

	levelsGained := 0
	for player.Experience >= player.Level*expPerLevelFactor {
		player.Experience -= player.Level * expPerLevelFactor
		player.Level++
		player.StatPoints += statPointsPerLevel
		player.MaxHealth += maxHealthPerLevel
		player.MaxMana += maxManaPerLevel
		player.Health = player.MaxHealth
		player.Mana = player.MaxMana
		levelsGained++
	}

	player.Score = Score(player.Level, player.Experience)
	return levelsGained
}

// PVEReward 计算 PVE 胜利奖励
func PVEReward(npcLevel int) (experience, gold int) {
	experience = npcLevel * 10
	if experience < 10 {
		experience = 10
	}
	gold = npcLevel * 5
	if gold < 20 {
		gold = 20
	}
	return experience, gold
}

// Heal 恢复玩家到满血满蓝状态。费用扣减由调用方负责。
func Heal(player *entity.Player) {
	player.Health = player.MaxHealth
	player.Mana = player.MaxMana
}
