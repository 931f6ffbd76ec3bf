package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"movie-catalog/internal/auth"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	movies  service.MovieService
	ratings service.RatingService
	users   service.UserService
	tokens  *auth.TokenManager
	logger  *logrus.Logger
}

func NewHandler(movies service.MovieService, ratings service.RatingService, users service.UserService, tokens *auth.TokenManager, logger *logrus.Logger) *Handler {
	return &Handler{
		movies:  movies,
		ratings: ratings,
		users:   users,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	api := router.Group("/api")
	{
		api.GET("/public/movies", h.listMovies)
		api.GET("/public/movies/:movieId", h.getMovie)
		api.POST("/signup", h.signup)
		api.POST("/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		protected := api.Group("")
		protected.Use(authMiddleware(h.tokens))
		{
			protected.POST("/movies/:movieId/rating", h.submitRating)
			protected.GET("/user/:userId/ratings", h.userRatings)
		}
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOremail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type ratingRequest struct {
	Rating *int `json:"rating" binding:"required"`
}

func (h *Handler) listMovies(c *gin.Context) {
	movies, err := h.movies.ListMovies(c.Request.Context())
	if err != nil {
		h.serverError(c, "list movies", err)
		return
	}

	resp := make([]MovieResponse, len(movies))
	for i := range movies {
		resp[i] = movieToResponse(movies[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "movies": resp})
}

func (h *Handler) getMovie(c *gin.Context) {
	id, ok := pathID(c, "movieId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid movie id"})
		return
	}

	movie, err := h.movies.GetMovie(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
			return
		}
		h.serverError(c, "get movie", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "movie": movieToResponse(*movie)})
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "username or email already exists"})
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			h.serverError(c, "signup", err)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.serverError(c, "issue token", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": userToResponse(user), "token": token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "username or email not found"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid credentials"})
		default:
			h.serverError(c, "login", err)
		}
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.serverError(c, "issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": userToResponse(user), "token": token})
}

func (h *Handler) submitRating(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token is not provided"})
		return
	}

	movieID, ok := pathID(c, "movieId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid movie id"})
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "provide appropriate rating"})
		return
	}

	rating, created, err := h.ratings.SubmitRating(c.Request.Context(), userID, movieID, *req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrMovieNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "movie not found"})
		default:
			h.serverError(c, "submit rating", err)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "rating": ratingToResponse(*rating)})
}

func (h *Handler) userRatings(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	ratings, err := h.ratings.ListByCustomer(c.Request.Context(), userID)
	if err != nil {
		h.serverError(c, "list user ratings", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ratings": ratings})
}

// serverError logs the underlying failure and answers with a generic message.
func (h *Handler) serverError(c *gin.Context, op string, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(ctxKeyRequestID),
		"path":       c.FullPath(),
	}).Errorf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type MovieResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Genre       string  `json:"genre,omitempty"`
	ReleaseYear int     `json:"release_year,omitempty"`
	Rating      float64 `json:"rating"`
	CreatedAt   string  `json:"created_at"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type RatingResponse struct {
	MovieID    int64  `json:"movie_id"`
	CustomerID int64  `json:"customer_id"`
	Rating     int    `json:"rating"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func movieToResponse(movie domain.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID,
		Title:       movie.Title,
		Genre:       movie.Genre,
		ReleaseYear: movie.ReleaseYear,
		Rating:      movie.AverageRating,
		CreatedAt:   movie.CreatedAt.Format(time.RFC3339),
	}
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func ratingToResponse(rating domain.Rating) RatingResponse {
	return RatingResponse{
		MovieID:    rating.MovieID,
		CustomerID: rating.CustomerID,
		Rating:     rating.Value,
		CreatedAt:  rating.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rating.UpdatedAt.Format(time.RFC3339),
	}
}
