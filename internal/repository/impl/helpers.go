package impl

import "time"

// nullTimeNow 返回当前时间的指针（用于 null.Time）
func nullTimeNow() *time.Time {
	now := time.Now()
	return &now
}

// playerColumns players 表的查询列，与 entity.Player 的 boil 标签一一对应
const playerColumns = `id, name, level, experience, stat_points,
	health, max_health, mana, max_mana, gold,
	strength, defense, agility, intelligence,
	score, rank, last_rank_update,
	created_at, updated_at, deleted_at`
