package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emberfall-server/internal/modules/game/service"
	"emberfall-server/internal/pkg/response"
	"emberfall-server/internal/pkg/validator"
	"emberfall-server/internal/pkg/xerrors"
	"emberfall-server/internal/repository/entity"

	"github.com/aarondl/null/v8"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	return e
}

func newTestWriter() response.Writer {
	return response.NewResponseHandler(nil, "development")
}

// emptyContainer 返回未初始化服务的容器。
// 仅用于在参数校验阶段就返回的请求路径。
func emptyContainer() *service.ServiceContainer {
	return &service.ServiceContainer{}
}

func doJSON(e *echo.Echo, method, target, body string, h echo.HandlerFunc, params map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for k, v := range params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	_ = h(c)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreatePlayer_InvalidJSON(t *testing.T) {
	e := newTestEcho()
	h := NewPlayerHandler(emptyContainer(), newTestWriter())

	rec := doJSON(e, http.MethodPost, "/api/v1/game/players", "{not json", h.CreatePlayer, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, xerrors.CodeInvalidParams.ToInt(), resp.Code)
}

func TestCreatePlayer_NameTooShort(t *testing.T) {
	e := newTestEcho()
	h := NewPlayerHandler(emptyContainer(), newTestWriter())

	rec := doJSON(e, http.MethodPost, "/api/v1/game/players", `{"name":"x"}`, h.CreatePlayer, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, xerrors.CodeInvalidParams.ToInt(), resp.Code)
}

func TestGetPlayer_MissingID(t *testing.T) {
	e := newTestEcho()
	h := NewPlayerHandler(emptyContainer(), newTestWriter())

	rec := doJSON(e, http.MethodGet, "/api/v1/game/players/", "", h.GetPlayer, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartBattle_InvalidBattleType(t *testing.T) {
	e := newTestEcho()
	h := NewCombatHandler(emptyContainer(), newTestWriter())

	body := `{"attacker_id":"5f9c3b6e-1c37-4a0f-9a51-2f7ce0a1b234","battle_type":"duel"}`
	rec := doJSON(e, http.MethodPost, "/api/v1/game/battles", body, h.StartBattle, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, xerrors.CodeInvalidParams.ToInt(), resp.Code)
}

func TestSearchListings_InvalidMaxPrice(t *testing.T) {
	e := newTestEcho()
	h := NewMarketHandler(emptyContainer(), newTestWriter())

	rec := doJSON(e, http.MethodGet, "/api/v1/game/market/listings?max_price=abc", "", h.SearchListings, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTopRankings_InvalidLimit(t *testing.T) {
	e := newTestEcho()
	h := NewRankingHandler(emptyContainer(), newTestWriter())

	rec := doJSON(e, http.MethodGet, "/api/v1/game/rankings?limit=0", "", h.GetTopRankings, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParsePagination(t *testing.T) {
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodGet, "/?page=3&page_size=50", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	p := parsePagination(c)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PageSize)

	req = httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	p = parsePagination(c)
	assert.Equal(t, 0, p.Page) // 非法值留给 Validate 兜底
}

func TestToPlayerResponse_RankMapping(t *testing.T) {
	unranked := &entity.Player{ID: "p1", Name: "未排名"}
	assert.Nil(t, toPlayerResponse(unranked).Rank)

	ranked := &entity.Player{ID: "p2", Name: "已排名", Rank: null.IntFrom(7)}
	resp := toPlayerResponse(ranked)
	require.NotNil(t, resp.Rank)
	assert.Equal(t, 7, *resp.Rank)
}

func TestToRankingEntries(t *testing.T) {
	players := []*entity.Player{
		{ID: "p1", Name: "甲", Level: 5, Score: 620, Rank: null.IntFrom(1)},
		{ID: "p2", Name: "乙", Level: 4, Score: 470, Rank: null.IntFrom(2)},
	}

	entries := toRankingEntries(players)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "p1", entries[0].PlayerID)
	assert.Equal(t, 620, entries[0].Score)
	assert.Equal(t, 2, entries[1].Rank)
}
