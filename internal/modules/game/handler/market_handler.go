package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/repository/query"
)

// MarketHandler 交易行接口
type MarketHandler struct {
	marketService *service.MarketService
	respWriter    response.Writer
}

// NewMarketHandler 创建交易行接口处理器
func NewMarketHandler(container *service.ServiceContainer, respWriter response.Writer) *MarketHandler {
	return &MarketHandler{
		marketService: container.MarketService,
		respWriter:    respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// CancelListingRequest 下架请求
type CancelListingRequest struct {
	PlayerID string `json:"player_id" validate:"required,uuid4"`
}

// PurchaseListingRequest 购买请求
type PurchaseListingRequest struct {
	BuyerID string `json:"buyer_id" validate:"required,uuid4"`
}

// ListingSearchResponse 挂单搜索响应
type ListingSearchResponse struct {
	Listings   interface{}             `json:"listings"`
	Pagination *query.PaginationResult `json:"pagination"`
}

// ==================== HTTP Handlers ====================

// CreateListing 上架物品
func (h *MarketHandler) CreateListing(c echo.Context) error {
	var req service.CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	listing, err := h.marketService.CreateListing(c.Request().Context(), &req)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, listing)
}

// CancelListing 下架物品，托管物品退回卖家背包
func (h *MarketHandler) CancelListing(c echo.Context) error {
	listingID := c.Param("id")
	if listingID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少挂单ID")
	}

	var req CancelListingRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	if err := h.marketService.CancelListing(c.Request().Context(), req.PlayerID, listingID); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}

// PurchaseListing 购买挂单
func (h *MarketHandler) PurchaseListing(c echo.Context) error {
	listingID := c.Param("id")
	if listingID == "" {
		return response.EchoBadRequest(c, h.respWriter, "缺少挂单ID")
	}

	var req PurchaseListingRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	listing, err := h.marketService.PurchaseListing(c.Request().Context(), req.BuyerID, listingID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, listing)
}

// SearchListings 搜索挂单
func (h *MarketHandler) SearchListings(c echo.Context) error {
	var params query.MarketListingParams
	if v := c.QueryParam("item_id"); v != "" {
		params.ItemID = &v
	}
	if v := c.QueryParam("seller_id"); v != "" {
		params.SellerID = &v
	}
	if v := c.QueryParam("status"); v != "" {
		params.Status = &v
	}
	if v := c.QueryParam("max_price"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return response.EchoBadRequest(c, h.respWriter, "max_price 必须为正整数")
		}
		params.MaxPrice = &n
	}
	params.Pagination = parsePagination(c)

	listings, pagination, err := h.marketService.SearchListings(c.Request().Context(), params)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, &ListingSearchResponse{
		Listings:   listings,
		Pagination: pagination,
	})
}
