// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按模块或领域对错误码进行分段，便于管理。
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	// 6xxxxx: 业务逻辑错误码
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许
	CodeResourceLocked      ErrorCode = 600004 // 资源被锁定

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeDatabaseError        ErrorCode = 700003 // 数据库错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误
	CodeTransactionFailed    ErrorCode = 700006 // 事务提交失败

	// 8xxxxx: 游戏业务错误码
	// 玩家相关 (80xxxx)
	CodePlayerNotFound    ErrorCode = 800001 // 玩家不存在
	CodeInsufficientGold  ErrorCode = 800002 // 金币不足
	CodeInsufficientLevel ErrorCode = 800003 // 等级不足
	CodePlayerStatInvalid ErrorCode = 800004 // 玩家属性无效

	// 战斗相关 (81xxxx)
	CodeBattleNotFound        ErrorCode = 810001 // 战斗记录不存在
	CodeBattleSelfTarget      ErrorCode = 810002 // 不能与自己战斗
	CodeBattleInvalidStats    ErrorCode = 810003 // 战斗属性无效
	CodeBattleMissingDefender ErrorCode = 810004 // PvP 缺少防守方

	// 排名相关 (82xxxx)
	CodeRankingNotReady ErrorCode = 820001 // 排名尚未生成

	// 背包相关 (83xxxx)
	CodeItemNotFound          ErrorCode = 830001 // 物品不存在
	CodeItemQuantityInvalid   ErrorCode = 830002 // 物品数量无效
	CodeInventoryInsufficient ErrorCode = 830003 // 背包物品不足

	// 每日奖励相关 (84xxxx)
	CodeDailyAlreadyClaimed ErrorCode = 840001 // 今日已领取

	// 配方/制作相关 (85xxxx)
	CodeRecipeNotFound       ErrorCode = 850001 // 配方不存在
	CodeRecipeAlreadyKnown   ErrorCode = 850002 // 配方已学习
	CodeRecipeNotLearned     ErrorCode = 850003 // 配方未学习
	CodeInsufficientMaterial ErrorCode = 850004 // 材料不足

	// 市场相关 (86xxxx)
	CodeListingNotFound     ErrorCode = 860001 // 挂单不存在
	CodeListingNotActive    ErrorCode = 860002 // 挂单已失效
	CodeListingNotOwner     ErrorCode = 860003 // 只能操作自己的挂单
	CodeListingSelfPurchase ErrorCode = 860004 // 不能购买自己的挂单
)

// codeMessages 错误码默认消息（中文，i18n 包提供多语言版本）
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",
	CodeResourceLocked:      "资源被锁定",

	CodeExternalServiceError: "外部服务错误",
	CodeDatabaseError:        "数据库错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",
	CodeTransactionFailed:    "事务提交失败",

	CodePlayerNotFound:    "玩家不存在",
	CodeInsufficientGold:  "金币不足",
	CodeInsufficientLevel: "等级不足",
	CodePlayerStatInvalid: "玩家属性无效",

	CodeBattleNotFound:        "战斗记录不存在",
	CodeBattleSelfTarget:      "不能与自己战斗",
	CodeBattleInvalidStats:    "战斗属性无效",
	CodeBattleMissingDefender: "PvP 战斗缺少防守方",

	CodeRankingNotReady: "排名尚未生成",

	CodeItemNotFound:          "物品不存在",
	CodeItemQuantityInvalid:   "物品数量无效",
	CodeInventoryInsufficient: "背包物品不足",

	CodeDailyAlreadyClaimed: "今日奖励已领取",

	CodeRecipeNotFound:       "配方不存在",
	CodeRecipeAlreadyKnown:   "配方已学习",
	CodeRecipeNotLearned:     "配方未学习",
	CodeInsufficientMaterial: "制作材料不足",

	CodeListingNotFound:     "挂单不存在",
	CodeListingNotActive:    "挂单已失效",
	CodeListingNotOwner:     "只能操作自己的挂单",
	CodeListingSelfPurchase: "不能购买自己的挂单",
}

// getCategoryByCode 根据错误码推断分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "general"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "infrastructure"
	case code >= 800000 && code < 810000:
		return "player"
	case code >= 810000 && code < 820000:
		return "battle"
	case code >= 820000 && code < 830000:
		return "ranking"
	case code >= 830000 && code < 840000:
		return "inventory"
	case code >= 840000 && code < 850000:
		return "daily_reward"
	case code >= 850000 && code < 860000:
		return "crafting"
	case code >= 860000 && code < 870000:
		return "market"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码推断级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch code {
	case CodeInternalError, CodeDatabaseError, CodeTransactionFailed,
		CodeDataIntegrityError, CodeMessageQueueError:
		return LevelCritical
	case CodeCacheError, CodeExternalServiceError:
		return LevelWarn
	default:
		return LevelError
	}
}

// isRetryableByCode 判断错误是否可由调用方整体重试
// 注意：战斗/奖励操作的重试会产生全新的战斗记录，而不是重放同一场战斗。
func isRetryableByCode(code ErrorCode) bool {
	switch code {
	case CodeTransactionFailed, CodeDatabaseError, CodeCacheError,
		CodeMessageQueueError, CodeExternalServiceError, CodeResourceLocked:
		return true
	default:
		return false
	}
}

// HTTPStatus 返回错误码对应的 HTTP 状态码
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return 200
	case CodeInvalidParams, CodeInvalidRequest, CodeItemQuantityInvalid,
		CodeBattleInvalidStats, CodeBattleMissingDefender, CodeBattleSelfTarget,
		CodePlayerStatInvalid:
		return 400
	case CodeResourceNotFound, CodePlayerNotFound, CodeBattleNotFound,
		CodeItemNotFound, CodeRecipeNotFound, CodeListingNotFound:
		return 404
	case CodeDuplicateResource, CodeDailyAlreadyClaimed, CodeRecipeAlreadyKnown,
		CodeInsufficientGold, CodeInsufficientLevel, CodeInsufficientMaterial,
		CodeInventoryInsufficient, CodeRecipeNotLearned, CodeListingNotActive,
		CodeListingNotOwner, CodeListingSelfPurchase, CodeOperationNotAllowed,
		CodeResourceLocked, CodeRankingNotReady:
		return 409
	case CodeRateLimitExceeded:
		return 429
	default:
		return 500
	}
}
