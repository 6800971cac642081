package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Treobytes-Dev/treo-cms-api/internal/config"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// withUser registers a middleware that injects the acting user ID the way
// AuthRequired would.
func withUser(app *fiber.App, userID uint) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
		check          func(t *testing.T, body map[string]any)
	}{
		{
			name: "Success",
			body: map[string]string{
				"name":     "Test User",
				"email":    "test@example.com",
				"password": "Password123",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "test@example.com").Return(nil, nil)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Successfully signed up!", body["message"])
				assert.Equal(t, true, body["success"])
			},
		},
		{
			name: "Duplicate Email",
			body: map[string]string{
				"name":     "Test User",
				"email":    "exists@example.com",
				"password": "Password123",
			},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "exists@example.com").
					Return(&models.User{ID: 1}, nil)
			},
			expectedStatus: http.StatusForbidden,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"Email is taken"}, body["error"])
			},
		},
		{
			name: "Validation Failures Collected",
			body: map[string]string{
				"name":     "ab",
				"email":    "not-an-email",
				"password": "short",
			},
			mockSetup:      func(repo *MockUserRepository) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				errs, ok := body["errors"].([]any)
				require.True(t, ok)
				assert.Len(t, errs, 3)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockRepo := new(MockUserRepository)
			s := &Server{
				config:   &config.Config{JWTSecret: "test_secret"},
				userRepo: mockRepo,
			}
			app.Post("/signup", s.Signup)

			tt.mockSetup(mockRepo)
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signup", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.check != nil {
				tt.check(t, decodeBody(t, resp))
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestSignin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(repo *MockUserRepository)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Unknown Email",
			body: map[string]string{"email": "ghost@example.com", "password": "Password123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "User with that email does not exist. Please signup",
		},
		{
			name: "Wrong Password",
			body: map[string]string{"email": "user@example.com", "password": "nope12345"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "user@example.com").Return(&models.User{
					ID: 1, Email: "user@example.com", Password: string(hashed),
				}, nil)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Wrong password",
		},
		{
			name: "Success",
			body: map[string]string{"email": "user@example.com", "password": "Password123"},
			mockSetup: func(repo *MockUserRepository) {
				repo.On("GetByEmail", mock.Anything, "user@example.com").Return(&models.User{
					ID: 1, Email: "user@example.com", Password: string(hashed),
					Role: models.RoleSubscriber,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			mockRepo := new(MockUserRepository)
			s := &Server{
				config:   &config.Config{JWTSecret: "test_secret"},
				userRepo: mockRepo,
			}
			app.Post("/signin", s.Signin)

			tt.mockSetup(mockRepo)
			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/signin", tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, true, body["success"])
				assert.NotEmpty(t, body["token"])
				assert.NotNil(t, body["user"])
			}
		})
	}
}

func TestAuthRequiredAcceptsIssuedToken(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}

	token, err := s.generateToken(42, models.RoleAdmin)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("userID")})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(42), body["user_id"])
}

func TestAuthRequiredRejectsMissingAndBadTokens(t *testing.T) {
	s := &Server{config: &config.Config{JWTSecret: "test_secret"}}
	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "No Token", header: ""},
		{name: "Garbage Token", header: "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestDeleteUserRefusesSelfDelete(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	withUser(app, 7)
	app.Delete("/user/:userId", s.DeleteUser)

	req := httptest.NewRequest(http.MethodDelete, "/user/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "You cannot delete yourself", body["error"])
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateUserByUserForbidsOtherTargets(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	withUser(app, 2)
	app.Put("/update-user-by-user", s.UpdateUserByUser)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/update-user-by-user",
		map[string]any{"id": 9, "name": "New Name"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdateUserByUserDropsRoleChange(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
	}
	withUser(app, 2)
	app.Put("/update-user-by-user", s.UpdateUserByUser)

	existing := &models.User{ID: 2, Name: "Old", Email: "u@example.com", Role: models.RoleSubscriber}
	mockRepo.On("GetByID", mock.Anything, uint(2)).Return(existing, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleSubscriber && u.Name == "New Name"
	})).Return(nil)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/update-user-by-user",
		map[string]any{"id": 2, "name": "New Name", "role": "admin"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}

func TestCreateUserSendsLoginDetailsWhenChecked(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	mailer := &fakeMailer{}
	s := &Server{
		config:   &config.Config{JWTSecret: "test_secret"},
		userRepo: mockRepo,
		mail:     mailer,
	}
	withUser(app, 1)
	app.Post("/create-user", s.CreateUser)

	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/create-user", map[string]any{
		"name":     "New Person",
		"email":    "new@example.com",
		"password": "Password123",
		"role":     "author",
		"checked":  true,
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, []string{"new@example.com"}, mailer.lastTo)
}
