package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapItemView/errcode"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

func newTestServerCtx(t *testing.T) *svc.ServerCtx {
	t.Helper()
	identity, err := types.NewItemIdentity("0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", "42")
	require.NoError(t, err)
	state := itemstate.New(identity, "", nil, nil)
	return &svc.ServerCtx{State: state}
}

func TestItemViewHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/view", ItemViewHandler(newTestServerCtx(t)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/view", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int            `json:"code"`
		Data types.ItemView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errcode.OkCode, resp.Code)
	assert.Equal(t, "42", resp.Data.Identity.TokenID)
	assert.Equal(t, types.PhaseNoAuction, resp.Data.AuctionPhase)
}

func TestActionHandlerUnknownAction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/actions/:action", ActionHandler(newTestServerCtx(t)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/actions/no_such_action", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errcode.ErrNotFound.Code, resp.Code)
}

func TestActionHandlerBadCreatorAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/actions/:action", ActionHandler(newTestServerCtx(t)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/actions/accept_offer", strings.NewReader(`{"creator":"not-an-address"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errcode.ErrInvalidParams.Code, resp.Code)
}

func TestActionHandlerBadPrice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/actions/:action", ActionHandler(newTestServerCtx(t)))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/actions/list_item", strings.NewReader(`{"price":"not-a-number"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errcode.ErrInvalidParams.Code, resp.Code)
}
