package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/Treobytes-Dev/treo-cms-api/internal/config"
	"github.com/Treobytes-Dev/treo-cms-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMediaTestServer() (*Server, *MockMediaRepository, *fakeStore) {
	mediaRepo := new(MockMediaRepository)
	store := newFakeStore()
	s := &Server{
		config:    &config.Config{JWTSecret: "test_secret"},
		mediaRepo: mediaRepo,
		store:     store,
	}
	return s, mediaRepo, store
}

func TestUploadImage(t *testing.T) {
	t.Run("Base64 Payload Returns URL", func(t *testing.T) {
		s, _, store := newMediaTestServer()
		app := fiber.New()
		withUser(app, 4)
		app.Post("/upload-image", s.UploadImage)

		pixels := []byte{0x89, 0x50, 0x4e, 0x47}
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pixels)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/upload-image",
			map[string]any{"image": dataURL}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		defer func() { _ = resp.Body.Close() }()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var url string
		require.NoError(t, json.Unmarshal(raw, &url))
		assert.True(t, strings.HasPrefix(url, "http://store.local/uploads/"))
		assert.Len(t, store.objects, 1)
	})

	t.Run("Rejects Non Data URL", func(t *testing.T) {
		s, _, _ := newMediaTestServer()
		app := fiber.New()
		withUser(app, 4)
		app.Post("/upload-image", s.UploadImage)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/upload-image",
			map[string]any{"image": "http://example.com/cat.png"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadImageFilePersistsMediaRow(t *testing.T) {
	s, mediaRepo, store := newMediaTestServer()
	app := fiber.New()
	withUser(app, 4)
	app.Post("/upload-image-file", s.UploadImageFile)

	mediaRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *models.Media) bool {
		return m.UserID == 4 && m.PublicID != "" && strings.HasPrefix(m.URL, "http://store.local/")
	})).Return(nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="cat.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegbytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-image-file", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, store.objects, 1)
	mediaRepo.AssertExpectations(t)
}

func TestDeleteMediaRemovesStoredObject(t *testing.T) {
	s, mediaRepo, store := newMediaTestServer()
	app := fiber.New()
	withUser(app, 4)
	app.Delete("/media/:id", s.DeleteMedia)

	mediaRepo.On("GetByID", mock.Anything, uint(6)).
		Return(&models.Media{ID: 6, PublicID: "uploads/abc.png"}, nil)
	mediaRepo.On("Delete", mock.Anything, uint(6)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/media/6", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"uploads/abc.png"}, store.deleted)
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantType    string
		wantPayload string
		wantErr     bool
	}{
		{
			name:        "PNG",
			input:       "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png")),
			wantType:    "image/png",
			wantPayload: "png",
		},
		{
			name:    "Not A Data URL",
			input:   "http://example.com/img.png",
			wantErr: true,
		},
		{
			name:    "Non Image Type",
			input:   "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte("<html>")),
			wantErr: true,
		},
		{
			name:    "Bad Base64",
			input:   "data:image/png;base64,!!!not-base64!!!",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, data, err := decodeDataURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, contentType)
			assert.Equal(t, tt.wantPayload, string(data))
		})
	}
}
