// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-handler/internal/model"
)

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) GetSyncStatus(ctx context.Context, startDate, endDate string) (*model.SyncStatus, error) {
	args := m.Called(ctx, startDate, endDate)
	status, _ := args.Get(0).(*model.SyncStatus)
	return status, args.Error(1)
}

func (m *MockQuerier) SaveSyncStatus(ctx context.Context, status model.SyncStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *MockQuerier) SavePrograms(ctx context.Context, programs []model.Program) error {
	return m.Called(ctx, programs).Error(0)
}

func (m *MockQuerier) CountPrograms(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockGitHub struct {
	mock.Mock
}

func (m *MockGitHub) GetUserDetails(ctx context.Context, username string) (*model.GitHubUser, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*model.GitHubUser)
	return user, args.Error(1)
}

func (m *MockGitHub) AggregateContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error) {
	args := m.Called(ctx, owner, repo)
	contributors, _ := args.Get(0).([]model.Contributor)
	return contributors, args.Error(1)
}

func setupRouter() (http.Handler, *MockQuerier, *MockGitHub) {
	db := new(MockQuerier)
	gh := new(MockGitHub)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(db, gh, gh, logger), db, gh
}

func serve(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := setupRouter()

	rec := serve(t, router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetUser(t *testing.T) {
	t.Run("returns the profile", func(t *testing.T) {
		router, _, gh := setupRouter()
		gh.On("GetUserDetails", mock.Anything, "octocat").Return(&model.GitHubUser{ID: 1, Login: "octocat"}, nil)

		rec := serve(t, router, "/v1/users/octocat")

		require.Equal(t, http.StatusOK, rec.Code)
		var user model.GitHubUser
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "octocat", user.Login)
		gh.AssertExpectations(t)
	})

	t.Run("maps upstream failures to bad gateway", func(t *testing.T) {
		router, _, gh := setupRouter()
		gh.On("GetUserDetails", mock.Anything, "ghost").Return(nil, errors.New("404 Not Found"))

		rec := serve(t, router, "/v1/users/ghost")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetContributors(t *testing.T) {
	ranked := []model.Contributor{
		{ID: 1, Login: "a", Contributions: 9},
		{ID: 2, Login: "b", Contributions: 4},
		{ID: 3, Login: "c", Contributions: 1},
	}

	t.Run("truncates to the limit", func(t *testing.T) {
		router, _, gh := setupRouter()
		gh.On("AggregateContributors", mock.Anything, "rust-lang", "rust").Return(ranked, nil)

		rec := serve(t, router, "/v1/repos/rust-lang/rust/contributors?limit=2")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.Contributor
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Login)
		assert.Equal(t, "b", got[1].Login)
	})

	t.Run("defaults to ten", func(t *testing.T) {
		router, _, gh := setupRouter()
		gh.On("AggregateContributors", mock.Anything, "rust-lang", "rust").Return(ranked, nil)

		rec := serve(t, router, "/v1/repos/rust-lang/rust/contributors")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []model.Contributor
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 3)
	})

	for _, limit := range []string{"0", "101", "abc"} {
		t.Run("rejects limit "+limit, func(t *testing.T) {
			router, _, gh := setupRouter()

			rec := serve(t, router, "/v1/repos/rust-lang/rust/contributors?limit="+limit)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			gh.AssertNotCalled(t, "AggregateContributors", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("reports aggregation errors", func(t *testing.T) {
		router, _, gh := setupRouter()
		gh.On("AggregateContributors", mock.Anything, "rust-lang", "rust").Return(nil, context.Canceled)

		rec := serve(t, router, "/v1/repos/rust-lang/rust/contributors")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetSyncStatus(t *testing.T) {
	t.Run("returns the stored status with the program total", func(t *testing.T) {
		router, db, _ := setupRouter()
		db.On("GetSyncStatus", mock.Anything, "2015-01-01", "2015-01-02").
			Return(&model.SyncStatus{ID: 7, StartDate: "2015-01-01", EndDate: "2015-01-02", SyncResult: true}, nil)
		db.On("CountPrograms", mock.Anything).Return(int64(42), nil)

		rec := serve(t, router, "/v1/sync/status?start=2015-01-01&end=2015-01-02")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"start_date":"2015-01-01","end_date":"2015-01-02","sync_result":true,"total_programs":42}`,
			rec.Body.String())
		db.AssertExpectations(t)
	})

	t.Run("returns not found for unknown windows", func(t *testing.T) {
		router, db, _ := setupRouter()
		db.On("GetSyncStatus", mock.Anything, "2015-01-01", "2015-01-02").Return(nil, nil)

		rec := serve(t, router, "/v1/sync/status?start=2015-01-01&end=2015-01-02")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		db.AssertNotCalled(t, "CountPrograms", mock.Anything)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		router, db, _ := setupRouter()

		rec := serve(t, router, "/v1/sync/status?start=2015/01/01&end=2015-01-02")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		db.AssertNotCalled(t, "GetSyncStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reports storage errors", func(t *testing.T) {
		router, db, _ := setupRouter()
		db.On("GetSyncStatus", mock.Anything, "2015-01-01", "2015-01-02").Return(nil, errors.New("connection reset"))

		rec := serve(t, router, "/v1/sync/status?start=2015-01-01&end=2015-01-02")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
