package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/habitgrid/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habitgrid/internal/adapters/repository"
	"github.com/comitanigiacomo/habitgrid/internal/core/domain"
	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

type boardBody struct {
	Active      []domain.Habit `json:"active"`
	Archived    []domain.Habit `json:"archived"`
	HasArchived bool           `json:"has_archived"`
	Days        []string       `json:"days"`
}

type toggleBody struct {
	Habit     domain.Habit `json:"habit"`
	Celebrate bool         `json:"celebrate"`
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, domain.ErrStateNotFound
}

func (failingStore) Set(ctx context.Context, key string, data []byte) error {
	return errors.New("disk full")
}

type outageStore struct {
	*repository.InMemoryStateStore
	down bool
}

func (o *outageStore) Get(ctx context.Context, key string) ([]byte, error) {
	if o.down {
		return nil, errors.New("dial tcp: connection refused")
	}
	return o.InMemoryStateStore.Get(ctx, key)
}

func setupRouterWith(store domain.StateStore, tokens *services.TokenService) (*gin.Engine, *services.BoardRegistry) {
	gin.SetMode(gin.TestMode)

	registry := services.NewBoardRegistry(store, nil, nil)
	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler: adapterHTTP.NewHabitHandler(registry, nil),
		StatsHandler: adapterHTTP.NewStatsHandler(services.NewStatsService(registry)),
		TokenService: tokens,
		StartTime:    time.Now(),
	})
	return router, registry
}

func setupRouter() (*gin.Engine, *services.BoardRegistry) {
	return setupRouterWith(repository.NewInMemoryStateStore(), nil)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createHabit(t *testing.T, router *gin.Engine, name string) domain.Habit {
	t.Helper()
	w := do(router, "POST", "/api/v1/habits", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var h domain.Habit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	return h
}

func listBoard(t *testing.T, router *gin.Engine) boardBody {
	t.Helper()
	w := do(router, "GET", "/api/v1/habits", "")
	require.Equal(t, http.StatusOK, w.Code)

	var b boardBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		router, _ := setupRouter()

		w := do(router, "POST", "/api/v1/habits", `{"name": "Gym"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Gym"`)
		assert.Contains(t, w.Body.String(), `"id":`)
		assert.Contains(t, w.Body.String(), `"weekProgress":[false,false,false,false,false,false,false]`)
	})

	t.Run("Fail: 400 Bad Request (Missing name)", func(t *testing.T) {
		router, _ := setupRouter()

		w := do(router, "POST", "/api/v1/habits", `{"name": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Bad Request (Whitespace name)", func(t *testing.T) {
		router, _ := setupRouter()

		w := do(router, "POST", "/api/v1/habits", `{"name": "   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), domain.ErrHabitNameEmpty.Error())
		assert.Empty(t, listBoard(t, router).Active)
	})

	t.Run("Fail: 500 when the store cannot persist", func(t *testing.T) {
		router, _ := setupRouterWith(failingStore{}, nil)

		w := do(router, "POST", "/api/v1/habits", `{"name": "Gym"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestListHabits(t *testing.T) {
	router, _ := setupRouter()

	a := createHabit(t, router, "Run")
	createHabit(t, router, "Read")

	w := do(router, "PUT", "/api/v1/habits/"+a.ID+"/complete", "")
	require.Equal(t, http.StatusOK, w.Code)

	b := listBoard(t, router)
	require.Len(t, b.Active, 1)
	require.Len(t, b.Archived, 1)
	assert.Equal(t, "Read", b.Active[0].Name)
	assert.Equal(t, a.ID, b.Archived[0].ID)
	assert.True(t, b.HasArchived)
	assert.Equal(t, []string{"M", "T", "W", "Th", "F", "S", "Su"}, b.Days)
}

func TestToggleDay(t *testing.T) {
	t.Run("Success: Celebrate flag on the seventh day only", func(t *testing.T) {
		router, _ := setupRouter()
		h := createHabit(t, router, "Drink water")

		for day := 0; day < 7; day++ {
			w := do(router, "PUT", "/api/v1/habits/"+h.ID+"/days/"+string(rune('0'+day)), "")
			require.Equal(t, http.StatusOK, w.Code)

			var body toggleBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, day == 6, body.Celebrate, "day %d", day)
			assert.True(t, body.Habit.WeekProgress[day])
		}
	})

	t.Run("Fail: 400 Invalid day", func(t *testing.T) {
		router, _ := setupRouter()
		h := createHabit(t, router, "Read")

		assert.Equal(t, http.StatusBadRequest, do(router, "PUT", "/api/v1/habits/"+h.ID+"/days/7", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(router, "PUT", "/api/v1/habits/"+h.ID+"/days/monday", "").Code)
	})

	t.Run("Fail: 404 Unknown habit", func(t *testing.T) {
		router, _ := setupRouter()
		assert.Equal(t, http.StatusNotFound, do(router, "PUT", "/api/v1/habits/nope/days/0", "").Code)
	})
}

func TestRenameHabit(t *testing.T) {
	router, _ := setupRouter()
	h := createHabit(t, router, "Old")

	w := do(router, "PUT", "/api/v1/habits/"+h.ID, `{"name": "New"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"New"`)

	w = do(router, "PUT", "/api/v1/habits/"+h.ID, `{"name": " "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "PUT", "/api/v1/habits/missing", `{"name": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, "New", listBoard(t, router).Active[0].Name)
}

func TestReorderHabits(t *testing.T) {
	router, _ := setupRouter()
	a := createHabit(t, router, "A")
	x := createHabit(t, router, "X")
	createHabit(t, router, "B")
	createHabit(t, router, "C")

	require.Equal(t, http.StatusOK, do(router, "PUT", "/api/v1/habits/"+x.ID+"/complete", "").Code)

	w := do(router, "POST", "/api/v1/habits/reorder", `{"from": 0, "to": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	b := listBoard(t, router)
	assert.Equal(t, []string{"B", "C", "A"}, []string{b.Active[0].Name, b.Active[1].Name, b.Active[2].Name})
	assert.Equal(t, a.ID, b.Active[2].ID)

	assert.Equal(t, http.StatusBadRequest, do(router, "POST", "/api/v1/habits/reorder", `{"from": 0, "to": 3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, "POST", "/api/v1/habits/reorder", `{"from": 0}`).Code)
}

func TestDeleteCompleted(t *testing.T) {
	router, _ := setupRouter()
	a := createHabit(t, router, "A")
	createHabit(t, router, "B")
	require.Equal(t, http.StatusOK, do(router, "PUT", "/api/v1/habits/"+a.ID+"/complete", "").Code)

	w := do(router, "DELETE", "/api/v1/habits/completed", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	b := listBoard(t, router)
	assert.Len(t, b.Active, 1)
	assert.Empty(t, b.Archived)
	assert.False(t, b.HasArchived)

	assert.Equal(t, http.StatusNoContent, do(router, "DELETE", "/api/v1/habits/completed", "").Code)
}

func TestWeeklyStats(t *testing.T) {
	router, _ := setupRouter()
	h := createHabit(t, router, "Run")
	require.Equal(t, http.StatusOK, do(router, "PUT", "/api/v1/habits/"+h.ID+"/days/3", "").Code)

	w := do(router, "GET", "/api/v1/stats/weekly", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats domain.WeeklyStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalHabits)
	assert.Equal(t, 1, stats.DayTotals[3])
}

func TestBoardsAreIsolated(t *testing.T) {
	tokens := services.NewTokenService("secret", "habitgrid", time.Hour)
	router, _ := setupRouterWith(repository.NewInMemoryStateStore(), tokens)

	work, _ := tokens.GenerateToken("work")
	home, _ := tokens.GenerateToken("home")

	req, _ := http.NewRequest("POST", "/api/v1/habits", bytes.NewBufferString(`{"name":"Inbox zero"}`))
	req.Header.Set("Authorization", "Bearer "+work)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/habits", nil)
	req.Header.Set("Authorization", "Bearer "+home)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var b boardBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Empty(t, b.Active)

	assert.Equal(t, http.StatusUnauthorized, do(router, "GET", "/api/v1/habits", "").Code)
}

func TestStorageOutageDuringLoad(t *testing.T) {
	ctx := context.Background()
	store := &outageStore{InMemoryStateStore: repository.NewInMemoryStateStore()}
	seed, err := domain.Encode(domain.Board{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, domain.DefaultStateKey, seed))

	router, _ := setupRouterWith(store, nil)

	store.down = true
	assert.Equal(t, http.StatusServiceUnavailable, do(router, "GET", "/api/v1/habits", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, "POST", "/api/v1/habits", `{"name":"D"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(router, "GET", "/api/v1/stats/weekly", "").Code)

	store.down = false
	createHabit(t, router, "D")

	b := listBoard(t, router)
	require.Len(t, b.Active, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{b.Active[0].Name, b.Active[1].Name, b.Active[2].Name, b.Active[3].Name})

	data, err := store.Get(ctx, domain.DefaultStateKey)
	require.NoError(t, err)
	persisted, err := domain.Decode(data)
	require.NoError(t, err)
	assert.Len(t, persisted, 4)
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter()

	w := do(router, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)

	w = do(router, "OPTIONS", "/api/v1/habits", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
