// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"emberfall-server/internal/pkg/xerrors"

	"golang.org/x/text/language"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	// 1xxxxx: 通用错误码
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	// 6xxxxx: 业务逻辑错误码
	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},
	xerrors.CodeResourceLocked:      {language.Chinese: "资源被锁定", language.English: "Resource locked"},

	// 7xxxxx: 外部服务错误码
	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeDatabaseError:        {language.Chinese: "数据库错误", language.English: "Database error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},
	xerrors.CodeTransactionFailed:    {language.Chinese: "事务提交失败", language.English: "Transaction commit failed"},

	// 80xxxx: 玩家相关
	xerrors.CodePlayerNotFound:    {language.Chinese: "玩家不存在", language.English: "Player not found"},
	xerrors.CodeInsufficientGold:  {language.Chinese: "金币不足", language.English: "Insufficient gold"},
	xerrors.CodeInsufficientLevel: {language.Chinese: "等级不足", language.English: "Insufficient level"},
	xerrors.CodePlayerStatInvalid: {language.Chinese: "玩家属性无效", language.English: "Invalid player stats"},

	// 81xxxx: 战斗相关
	xerrors.CodeBattleNotFound:        {language.Chinese: "战斗记录不存在", language.English: "Battle record not found"},
	xerrors.CodeBattleSelfTarget:      {language.Chinese: "不能与自己战斗", language.English: "Cannot battle yourself"},
	xerrors.CodeBattleInvalidStats:    {language.Chinese: "战斗属性无效", language.English: "Invalid combat stats"},
	xerrors.CodeBattleMissingDefender: {language.Chinese: "PvP 战斗缺少防守方", language.English: "PvP battle requires a defender"},

	// 82xxxx: 排名相关
	xerrors.CodeRankingNotReady: {language.Chinese: "排名尚未生成", language.English: "Ranking not yet assigned"},

	// 83xxxx: 背包相关
	xerrors.CodeItemNotFound:          {language.Chinese: "物品不存在", language.English: "Item not found"},
	xerrors.CodeItemQuantityInvalid:   {language.Chinese: "物品数量无效", language.English: "Invalid item quantity"},
	xerrors.CodeInventoryInsufficient: {language.Chinese: "背包物品不足", language.English: "Insufficient items in inventory"},

	// 84xxxx: 每日奖励相关
	xerrors.CodeDailyAlreadyClaimed: {language.Chinese: "今日奖励已领取", language.English: "Daily reward already claimed today"},

	// 85xxxx: 配方/制作相关
	xerrors.CodeRecipeNotFound:       {language.Chinese: "配方不存在", language.English: "Recipe not found"},
	xerrors.CodeRecipeAlreadyKnown:   {language.Chinese: "配方已学习", language.English: "Recipe already known"},
	xerrors.CodeRecipeNotLearned:     {language.Chinese: "配方未学习", language.English: "Recipe not learned"},
	xerrors.CodeInsufficientMaterial: {language.Chinese: "制作材料不足", language.English: "Insufficient crafting materials"},

	// 86xxxx: 市场相关
	xerrors.CodeListingNotFound:     {language.Chinese: "挂单不存在", language.English: "Listing not found"},
	xerrors.CodeListingNotActive:    {language.Chinese: "挂单已失效", language.English: "Listing is no longer active"},
	xerrors.CodeListingNotOwner:     {language.Chinese: "只能操作自己的挂单", language.English: "Can only manage your own listings"},
	xerrors.CodeListingSelfPurchase: {language.Chinese: "不能购买自己的挂单", language.English: "Cannot purchase your own listing"},
}

// GetErrorMessage 获取指定语言的错误消息，未翻译时回退到错误码默认消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		if msg, ok := messages[DefaultLanguage]; ok {
			return msg
		}
	}
	return code.Message()
}
