package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

func TestHealthzRoute(t *testing.T) {
	identity, err := types.NewItemIdentity("0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263", "42")
	require.NoError(t, err)
	state := itemstate.New(identity, "", nil, nil)
	r := NewRouter(&svc.ServerCtx{State: state})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
