// File: internal/pkg/metrics/business_metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 游戏业务指标收集器
type BusinessMetrics struct {
	// 战斗次数（按类型 pve/pvp 和结果 attacker/defender/none 分组）
	BattlesTotal *prometheus.CounterVec

	// 战斗回合数直方图
	BattleRounds *prometheus.HistogramVec

	// 排名重算次数与分数变化数
	RankingRunsTotal    *prometheus.CounterVec
	RankingScoreChanges *prometheus.CounterVec

	// 背包缓存命中/未命中
	InventoryCacheTotal *prometheus.CounterVec

	// 市场成交数（按 sold/cancelled/expired 分组）
	MarketListingsTotal *prometheus.CounterVec

	// 制作尝试数（按成功/失败分组）
	CraftAttemptsTotal *prometheus.CounterVec

	// 每日奖励领取数
	DailyClaimsTotal *prometheus.CounterVec
}

var (
	// DefaultBusinessMetrics 默认的业务指标实例
	DefaultBusinessMetrics *BusinessMetrics
)

// BattleRoundBuckets 战斗回合数的 buckets（回合上限 20）
var BattleRoundBuckets = []float64{1, 2, 3, 5, 8, 12, 16, 20}

// init 初始化默认指标
func init() {
	DefaultBusinessMetrics = NewBusinessMetrics("emberfall")
}

// NewBusinessMetrics 创建新的业务指标收集器
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	return NewBusinessMetricsWithRegistry(namespace, GetRegisterer())
}

// NewBusinessMetricsWithRegistry 创建新的业务指标收集器（使用自定义注册表）
func NewBusinessMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(registerer)

	return &BusinessMetrics{
		BattlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battles_total",
				Help:      "Total number of battles by type (pve/pvp) and winner side (attacker/defender/none)",
			},
			[]string{"battle_type", "winner", "service"},
		),

		BattleRounds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "battle_rounds",
				Help:      "Number of rounds per battle",
				Buckets:   BattleRoundBuckets,
			},
			[]string{"battle_type", "service"},
		),

		RankingRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "ranking_runs_total",
				Help:      "Total number of ranking passes by trigger (inline/cron)",
			},
			[]string{"trigger", "service"},
		),

		RankingScoreChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "ranking_score_changes_total",
				Help:      "Total number of player score changes written by recalculation",
			},
			[]string{"service"},
		),

		InventoryCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "inventory_cache_total",
				Help:      "Inventory cache lookups by result (hit/miss)",
			},
			[]string{"result", "service"},
		),

		MarketListingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "market_listings_total",
				Help:      "Total number of market listing outcomes (created/sold/cancelled/expired)",
			},
			[]string{"outcome", "service"},
		),

		CraftAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "craft_attempts_total",
				Help:      "Total number of craft attempts by result (success/failure)",
			},
			[]string{"result", "service"},
		),

		DailyClaimsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "game",
				Name:      "daily_claims_total",
				Help:      "Total number of daily reward claims",
			},
			[]string{"service"},
		),
	}
}

// RecordBattle 记录战斗指标
func (m *BusinessMetrics) RecordBattle(battleType, winner string, rounds int, service string) {
	service = normalizeServiceName(service)
	m.BattlesTotal.WithLabelValues(battleType, winner, service).Inc()
	m.BattleRounds.WithLabelValues(battleType, service).Observe(float64(rounds))
}

// RecordRankingRun 记录一次排名重算
func (m *BusinessMetrics) RecordRankingRun(trigger string, changed int, service string) {
	service = normalizeServiceName(service)
	m.RankingRunsTotal.WithLabelValues(trigger, service).Inc()
	m.RankingScoreChanges.WithLabelValues(service).Add(float64(changed))
}

// IncInventoryCacheHit 记录背包缓存命中
func (m *BusinessMetrics) IncInventoryCacheHit(service string) {
	m.InventoryCacheTotal.WithLabelValues("hit", normalizeServiceName(service)).Inc()
}

// IncInventoryCacheMiss 记录背包缓存未命中
func (m *BusinessMetrics) IncInventoryCacheMiss(service string) {
	m.InventoryCacheTotal.WithLabelValues("miss", normalizeServiceName(service)).Inc()
}

// RecordMarketListing 记录市场挂单结果
func (m *BusinessMetrics) RecordMarketListing(outcome, service string) {
	m.MarketListingsTotal.WithLabelValues(outcome, normalizeServiceName(service)).Inc()
}

// RecordCraftAttempt 记录制作尝试
func (m *BusinessMetrics) RecordCraftAttempt(success bool, service string) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.CraftAttemptsTotal.WithLabelValues(result, normalizeServiceName(service)).Inc()
}

// RecordDailyClaim 记录每日奖励领取
func (m *BusinessMetrics) RecordDailyClaim(service string) {
	m.DailyClaimsTotal.WithLabelValues(normalizeServiceName(service)).Inc()
}
