package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-canvas/internal/domain"
	"github.com/weiawesome/wes-io-canvas/internal/repository"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/pkg/database"
	"github.com/weiawesome/wes-io-canvas/pkg/response"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func newGatewayRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, repository.Models()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	svc := service.NewBoardService(repository.NewGormBoardRepository(db), repository.NewGormElementRepository(db), nil)
	r := gin.New()
	NewHTTPHandler(svc).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func TestGatewayBoardLifecycle(t *testing.T) {
	r := newGatewayRouter(t)

	code, env := do(t, r, http.MethodPost, "/api/v1/boards", domain.CreateBoardRequest{Title: "Retro"})
	require.Equal(t, http.StatusCreated, code)
	var board domain.Board
	require.NoError(t, json.Unmarshal(env.Data, &board))
	assert.Equal(t, "Retro", board.Title)

	code, env = do(t, r, http.MethodGet, "/api/v1/boards/"+board.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = do(t, r, http.MethodGet, "/api/v1/boards/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, response.CodeNotFound, env.Error.Code)

	code, _ = do(t, r, http.MethodPost, "/api/v1/boards", nil)
	assert.Equal(t, http.StatusCreated, code)

	code, env = do(t, r, http.MethodGet, "/api/v1/boards?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, code)
	var page domain.ListBoardsResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Total)
}

func TestGatewayElements(t *testing.T) {
	r := newGatewayRouter(t)

	_, env := do(t, r, http.MethodPost, "/api/v1/boards", domain.CreateBoardRequest{Title: "b"})
	var board domain.Board
	require.NoError(t, json.Unmarshal(env.Data, &board))
	base := "/api/v1/boards/" + board.ID + "/elements"

	code, env := do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = do(t, r, http.MethodPost, base, domain.Element{ID: "a", Type: domain.ElementNote, X: 1, Y: 2})
	assert.Equal(t, http.StatusCreated, code)

	code, env = do(t, r, http.MethodPost, base, domain.Element{ID: "a", Type: domain.ElementNote})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, codeElementExists, env.Error.Code)

	code, env = do(t, r, http.MethodPost, base, domain.Element{ID: "b", Type: "blob"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.CodeBadRequest, env.Error.Code)

	code, _ = do(t, r, http.MethodPut, base, domain.ElementsRequest{Elements: []domain.Element{
		{ID: "a", Type: domain.ElementNote, X: 10, Y: 20},
		{ID: "t", Type: domain.ElementText, Text: "hello"},
	}})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, r, http.MethodPut, base, domain.ElementsRequest{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, r, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, code)
	var els []domain.Element
	require.NoError(t, json.Unmarshal(env.Data, &els))
	require.Len(t, els, 2)
	assert.Equal(t, 10.0, els[0].X)
	assert.Equal(t, "hello", els[1].Text)

	code, env = do(t, r, http.MethodPost, base+"/delete", domain.DeleteElementsRequest{IDs: []string{"a", "zz"}})
	require.Equal(t, http.StatusOK, code)
	var del domain.DeleteElementsResponse
	require.NoError(t, json.Unmarshal(env.Data, &del))
	assert.Equal(t, 1, del.Deleted)

	code, _ = do(t, r, http.MethodPost, "/api/v1/boards/missing/elements/delete", domain.DeleteElementsRequest{IDs: []string{"a"}})
	assert.Equal(t, http.StatusNotFound, code)
}
