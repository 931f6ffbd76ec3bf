package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-catalog/internal/auth"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/repository/sqlite"
	"movie-catalog/internal/service"
)

type testServer struct {
	router   *gin.Engine
	tokens   *auth.TokenManager
	movieIDs []int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	movieRepo := sqlite.NewMovieRepository(db)
	ratingRepo := sqlite.NewRatingRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, movieRepo.Init(ctx))
	require.NoError(t, ratingRepo.Init(ctx))

	var movieIDs []int64
	for _, title := range []string{"Heat", "Ran"} {
		id, err := movieRepo.Create(ctx, &domain.Movie{Title: title, Genre: "drama", ReleaseYear: 1995})
		require.NoError(t, err)
		movieIDs = append(movieIDs, id)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	handler := NewHandler(
		service.NewMovieService(movieRepo),
		service.NewRatingService(ratingRepo, movieRepo),
		service.NewUserService(userRepo),
		tokens,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)

	return &testServer{router: router, tokens: tokens, movieIDs: movieIDs}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func (s *testServer) signup(t *testing.T, username, email string) (int64, string) {
	t.Helper()
	w, resp := s.do(t, http.MethodPost, "/api/signup", "", gin.H{
		"username": username,
		"email":    email,
		"password": "long-enough-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token := resp["token"].(string)
	user := resp["user"].(map[string]any)
	return int64(user["id"].(float64)), token
}

func TestListMoviesPublic(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/api/public/movies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	movies := resp["movies"].([]any)
	require.Len(t, movies, 2)
	for _, m := range movies {
		// unrated movies report an average of 0
		assert.Equal(t, float64(0), m.(map[string]any)["rating"])
	}
}

func TestGetMovie(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, fmt.Sprintf("/api/public/movies/%d", s.movieIDs[0]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	movie := resp["movie"].(map[string]any)
	assert.Equal(t, "Heat", movie["title"])

	w, resp = s.do(t, http.MethodGet, "/api/public/movies/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["success"])

	w, _ = s.do(t, http.MethodGet, "/api/public/movies/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	userID, token := s.signup(t, "ripley", "ripley@example.com")
	verified, err := s.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, verified)

	// duplicate email conflicts and issues no token
	w, resp := s.do(t, http.MethodPost, "/api/signup", "", gin.H{
		"username": "other",
		"email":    "ripley@example.com",
		"password": "long-enough-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.NotContains(t, resp, "token")

	w, resp = s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"usernameOremail": "ripley",
		"password":        "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, resp, "token")

	w, resp = s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"usernameOremail": "nobody",
		"password":        "long-enough-password",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = s.do(t, http.MethodPost, "/api/login", "", gin.H{
		"usernameOremail": "ripley@example.com",
		"password":        "long-enough-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	verified, err = s.tokens.Verify(resp["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, userID, verified)
}

func TestRatingRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	path := fmt.Sprintf("/api/movies/%d/rating", s.movieIDs[0])

	w, _ := s.do(t, http.MethodPost, path, "", gin.H{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, path, "garbage-token", gin.H{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := s.signup(t, "ripley", "ripley@example.com")
	w, _ = s.do(t, http.MethodPost, path, token+"x", gin.H{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitRatingCreatedThenUpdated(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup(t, "ripley", "ripley@example.com")
	path := fmt.Sprintf("/api/movies/%d/rating", s.movieIDs[0])

	w, resp := s.do(t, http.MethodPost, path, token, gin.H{"rating": 4})
	require.Equal(t, http.StatusCreated, w.Code)
	rating := resp["rating"].(map[string]any)
	assert.Equal(t, float64(4), rating["rating"])

	w, resp = s.do(t, http.MethodPost, path, token, gin.H{"rating": 2})
	require.Equal(t, http.StatusOK, w.Code)
	rating = resp["rating"].(map[string]any)
	assert.Equal(t, float64(2), rating["rating"])

	// the updated value feeds the public aggregate
	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/public/movies/%d", s.movieIDs[0]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	movie := resp["movie"].(map[string]any)
	assert.Equal(t, float64(2), movie["rating"])
}

func TestSubmitRatingValidation(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup(t, "ripley", "ripley@example.com")
	path := fmt.Sprintf("/api/movies/%d/rating", s.movieIDs[0])

	for _, value := range []int{0, 6, -3} {
		w, resp := s.do(t, http.MethodPost, path, token, gin.H{"rating": value})
		assert.Equal(t, http.StatusBadRequest, w.Code, "value %d", value)
		assert.Equal(t, false, resp["success"])
	}

	w, _ := s.do(t, http.MethodPost, path, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/movies/9999/rating", token, gin.H{"rating": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserRatingsListing(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.signup(t, "ripley", "ripley@example.com")
	path := fmt.Sprintf("/api/movies/%d/rating", s.movieIDs[0])

	// resubmission keeps the last value
	for _, value := range []int{1, 5} {
		w, _ := s.do(t, http.MethodPost, path, token, gin.H{"rating": value})
		require.Contains(t, []int{http.StatusCreated, http.StatusOK}, w.Code)
	}

	ratingsPath := fmt.Sprintf("/api/user/%d/ratings", userID)
	w, _ := s.do(t, http.MethodGet, ratingsPath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := s.do(t, http.MethodGet, ratingsPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ratings := resp["ratings"].(map[string]any)
	assert.Equal(t, map[string]any{
		fmt.Sprintf("%d", s.movieIDs[0]): float64(5),
	}, ratings)
}
