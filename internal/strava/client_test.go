package strava

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, activitiesHandler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		require.Equal(t, "client-123", r.PostFormValue("client_id"))
		require.Equal(t, "secret-456", r.PostFormValue("client_secret"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "token-abc",
			"refresh_token": "rotated-refresh",
			"expires_at":    time.Now().Add(6 * time.Hour).Unix(),
		})
	})
	mux.HandleFunc("/athlete/activities", activitiesHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		RefreshToken: "refresh-789",
	})
}

func TestListActivitiesSendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotPage, gotPerPage, gotAfter string
	server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPage = r.URL.Query().Get("page")
		gotPerPage = r.URL.Query().Get("per_page")
		gotAfter = r.URL.Query().Get("after")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":          1234567890,
				"name":        "Morning Run",
				"sport_type":  "Run",
				"distance":    10230.5,
				"moving_time": 3060,
				"start_date":  "2026-04-09T06:30:00Z",
				"kilojoules":  640.0,
			},
		})
	})
	client := newTestClient(server)

	after := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	activities, err := client.ListActivities(context.Background(), after, 2, 50)
	require.NoError(t, err)

	require.Equal(t, "Bearer token-abc", gotAuth)
	require.Equal(t, "2", gotPage)
	require.Equal(t, "50", gotPerPage)
	require.Equal(t, strconv.FormatInt(after.Unix(), 10), gotAfter)
	require.Equal(t, 1, *tokenCalls)

	require.Len(t, activities, 1)
	activity := activities[0]
	require.Equal(t, int64(1234567890), activity.ID)
	require.Equal(t, "Run", activity.Sport())
	require.InDelta(t, 10230.5, activity.Distance, 0.01)
	require.Equal(t, 3060, activity.MovingTime)
	require.InDelta(t, 640.0, activity.EstimatedCalories(), 0.01)
}

func TestListActivitiesReusesCachedToken(t *testing.T) {
	server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	})
	client := newTestClient(server)

	_, err := client.ListActivities(context.Background(), time.Time{}, 1, 50)
	require.NoError(t, err)
	_, err = client.ListActivities(context.Background(), time.Time{}, 2, 50)
	require.NoError(t, err)

	require.Equal(t, 1, *tokenCalls)
	require.Equal(t, "rotated-refresh", client.cfg.RefreshToken)
}

func TestListActivitiesAPIError(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Rate Limit Exceeded"}`, http.StatusTooManyRequests)
	})
	client := newTestClient(server)

	_, err := client.ListActivities(context.Background(), time.Time{}, 1, 50)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	require.Contains(t, apiErr.Body, "Rate Limit Exceeded")
}

func TestTokenRefreshFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Config{
		BaseURL:      server.URL,
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-123",
		ClientSecret: "secret-456",
		RefreshToken: "refresh-789",
	})

	_, err := client.ListActivities(context.Background(), time.Time{}, 1, 50)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSportFallsBackToTypeThenWorkout(t *testing.T) {
	require.Equal(t, "TrailRun", SummaryActivity{SportType: "TrailRun", Type: "Run"}.Sport())
	require.Equal(t, "Run", SummaryActivity{Type: "Run"}.Sport())
	require.Equal(t, "Workout", SummaryActivity{}.Sport())
}

func TestEstimatedCaloriesPrefersCalories(t *testing.T) {
	require.InDelta(t, 512, SummaryActivity{Calories: 512, Kilojoules: 700}.EstimatedCalories(), 0.01)
	require.InDelta(t, 700, SummaryActivity{Kilojoules: 700}.EstimatedCalories(), 0.01)
	require.Zero(t, SummaryActivity{}.EstimatedCalories())
}
