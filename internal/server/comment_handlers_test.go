package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Treobytes-Dev/treo-cms-api/internal/config"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCommentTestServer() (*Server, *MockCommentRepository, *MockPostRepository) {
	commentRepo := new(MockCommentRepository)
	postRepo := new(MockPostRepository)
	s := &Server{
		config:      &config.Config{JWTSecret: "test_secret"},
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
	return s, commentRepo, postRepo
}

func TestCreateComment(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s, commentRepo, postRepo := newCommentTestServer()
		app := fiber.New()
		withUser(app, 8)
		app.Post("/comment/:postId", s.CreateComment)

		postRepo.On("GetByID", mock.Anything, uint(3)).
			Return(&models.Post{ID: 3}, nil)
		commentRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
			return c.PostID == 3 && c.UserID == 8 && c.Content == "Great post"
		})).Return(nil)
		commentRepo.On("GetByID", mock.Anything, mock.Anything).
			Return(&models.Comment{ID: 1, Content: "Great post", PostID: 3, UserID: 8}, nil)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/comment/3",
			map[string]any{"content": "Great post"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		commentRepo.AssertExpectations(t)
	})

	t.Run("Missing Post Is 404", func(t *testing.T) {
		s, commentRepo, postRepo := newCommentTestServer()
		app := fiber.New()
		withUser(app, 8)
		app.Post("/comment/:postId", s.CreateComment)

		postRepo.On("GetByID", mock.Anything, uint(99)).
			Return(nil, models.NewNotFoundError("Post", 99))

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/comment/99",
			map[string]any{"content": "Hello?"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Empty Content", func(t *testing.T) {
		s, _, _ := newCommentTestServer()
		app := fiber.New()
		withUser(app, 8)
		app.Post("/comment/:postId", s.CreateComment)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/comment/3",
			map[string]any{}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	t.Run("Author Updates", func(t *testing.T) {
		s, commentRepo, _ := newCommentTestServer()
		app := fiber.New()
		withUser(app, 8)
		app.Put("/comment/:commentId", s.UpdateComment)

		commentRepo.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Comment{ID: 5, UserID: 8, Content: "old"}, nil)
		commentRepo.On("Update", mock.Anything, mock.MatchedBy(func(c *models.Comment) bool {
			return c.Content == "edited"
		})).Return(nil)

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/comment/5",
			map[string]any{"content": "edited"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Missing Comment Is 404", func(t *testing.T) {
		s, commentRepo, _ := newCommentTestServer()
		app := fiber.New()
		withUser(app, 8)
		app.Put("/comment/:commentId", s.UpdateComment)

		commentRepo.On("GetByID", mock.Anything, uint(77)).
			Return(nil, models.NewNotFoundError("Comment", 77))

		resp, err := app.Test(jsonRequest(t, http.MethodPut, "/comment/77",
			map[string]any{"content": "edited"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteComment(t *testing.T) {
	s, commentRepo, _ := newCommentTestServer()
	app := fiber.New()
	withUser(app, 8)
	app.Delete("/comment/:commentId", s.DeleteComment)

	commentRepo.On("GetByID", mock.Anything, uint(5)).
		Return(&models.Comment{ID: 5, UserID: 8}, nil)
	commentRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/comment/5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["ok"])
}

func TestGetComments(t *testing.T) {
	s, commentRepo, _ := newCommentTestServer()
	app := fiber.New()
	app.Get("/comments/:page", s.GetComments)

	commentRepo.On("ListPage", mock.Anything, 1).
		Return([]models.Comment{{ID: 1}, {ID: 2}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/comments/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	commentRepo.AssertExpectations(t)
}
