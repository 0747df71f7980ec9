package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendacafe/subscribers-api/internal/application"
	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
	"github.com/tiendacafe/subscribers-api/pkg/validation"
)

type mockService struct {
	listFn   func(ctx context.Context) ([]entity.Subscriber, error)
	getFn    func(ctx context.Context, id string) (*entity.Subscriber, error)
	createFn func(ctx context.Context, name, email string) (*entity.Subscriber, error)
	updateFn func(ctx context.Context, id, name, email string) (*entity.Subscriber, error)
	deleteFn func(ctx context.Context, id string) (*entity.Subscriber, error)
	searchFn func(ctx context.Context, q string, size int) ([]map[string]any, error)
}

func (m *mockService) List(ctx context.Context) ([]entity.Subscriber, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockService) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, application.ErrSubscriberNotFound
}

func (m *mockService) Create(ctx context.Context, name, email string) (*entity.Subscriber, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, email)
	}
	return nil, nil
}

func (m *mockService) Update(ctx context.Context, id, name, email string) (*entity.Subscriber, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, name, email)
	}
	return nil, nil
}

func (m *mockService) Delete(ctx context.Context, id string) (*entity.Subscriber, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil, application.ErrSubscriberNotFound
}

func (m *mockService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q, size)
	}
	return []map[string]any{}, nil
}

func newRouter(svc SubscriberService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	h := NewSubscriberHandler(svc, nil)
	r := gin.New()
	api := r.Group("/api")
	api.GET("/subscribers", h.List)
	api.GET("/subscribers/search", h.Search)
	api.GET("/subscribers/:id", h.Get)
	api.POST("/subscribers", h.Create)
	api.PUT("/subscribers/:id", h.Update)
	api.DELETE("/subscribers/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubscriberHandler_List(t *testing.T) {
	subscribedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		listFn         func(ctx context.Context) ([]entity.Subscriber, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns subscribers newest first",
			listFn: func(ctx context.Context) ([]entity.Subscriber, error) {
				return []entity.Subscriber{
					{ID: "b", Name: "Bea", Email: "bea@x.com", SubscribedAt: subscribedAt.Add(time.Hour)},
					{ID: "a", Name: "Ana", Email: "ana@x.com", SubscribedAt: subscribedAt},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"id":"b","name":"Bea","email":"bea@x.com","subscribedAt":"2026-02-01T11:00:00Z"},{"id":"a","name":"Ana","email":"ana@x.com","subscribedAt":"2026-02-01T10:00:00Z"}]`,
		},
		{
			name: "success: empty store yields empty array, not null",
			listFn: func(ctx context.Context) ([]entity.Subscriber, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "failure: store error becomes generic 500",
			listFn: func(ctx context.Context) ([]entity.Subscriber, error) {
				return nil, errors.New("connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"something went wrong, please try again later"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockService{listFn: tt.listFn})
			w := doJSON(t, r, http.MethodGet, "/api/subscribers", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestSubscriberHandler_Get(t *testing.T) {
	r := newRouter(&mockService{
		getFn: func(ctx context.Context, id string) (*entity.Subscriber, error) {
			if id == "known" {
				return &entity.Subscriber{ID: "known", Name: "Ana", Email: "ana@x.com"}, nil
			}
			return nil, application.ErrSubscriberNotFound
		},
	})

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/subscribers/known", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"ana@x.com"`)
	})

	t.Run("failure: 404 for unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/subscribers/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"message":"subscriber not found"}`, w.Body.String())
	})
}

func TestSubscriberHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFn       func(ctx context.Context, name, email string) (*entity.Subscriber, error)
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "success: 201 with message and subscriber",
			body: `{"name":"Ana","email":"ana@x.com"}`,
			createFn: func(ctx context.Context, name, email string) (*entity.Subscriber, error) {
				return &entity.Subscriber{ID: "id-1", Name: name, Email: email}, nil
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				var resp struct {
					Message    string            `json:"message"`
					Subscriber entity.Subscriber `json:"subscriber"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "subscriber created successfully", resp.Message)
				assert.Equal(t, "id-1", resp.Subscriber.ID)
			},
		},
		{
			name:           "failure: missing email rejected at the boundary",
			body:           `{"name":"Ana"}`,
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "name and email are required")
				assert.Contains(t, body, `"email":"is required"`)
			},
		},
		{
			name:           "failure: malformed json",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "name and email are required")
			},
		},
		{
			name: "failure: blank-after-trim surfaces service validation",
			body: `{"name":"  ","email":"a@x.com"}`,
			createFn: func(ctx context.Context, name, email string) (*entity.Subscriber, error) {
				return nil, &application.ValidationError{Fields: map[string]string{"name": "is required"}}
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, `"name":"is required"`)
			},
		},
		{
			name: "failure: duplicate email",
			body: `{"name":"Other","email":"ana@x.com"}`,
			createFn: func(ctx context.Context, name, email string) (*entity.Subscriber, error) {
				return nil, application.ErrEmailTaken
			},
			expectedStatus: http.StatusBadRequest,
			checkBody: func(t *testing.T, body string) {
				assert.Contains(t, body, "this email is already subscribed")
			},
		},
		{
			name: "failure: persistence fault becomes generic 500",
			body: `{"name":"Ana","email":"ana@x.com"}`,
			createFn: func(ctx context.Context, name, email string) (*entity.Subscriber, error) {
				return nil, errors.New("pq: connection reset")
			},
			expectedStatus: http.StatusInternalServerError,
			checkBody: func(t *testing.T, body string) {
				assert.NotContains(t, body, "pq:", "internal diagnostics must not leak to clients")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&mockService{createFn: tt.createFn})
			w := doJSON(t, r, http.MethodPost, "/api/subscribers", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkBody != nil {
				tt.checkBody(t, w.Body.String())
			}
		})
	}
}

func TestSubscriberHandler_Update(t *testing.T) {
	r := newRouter(&mockService{
		updateFn: func(ctx context.Context, id, name, email string) (*entity.Subscriber, error) {
			switch id {
			case "taken":
				return nil, application.ErrEmailTaken
			case "missing":
				return nil, application.ErrSubscriberNotFound
			default:
				return &entity.Subscriber{ID: id, Name: name, Email: email}, nil
			}
		},
	})

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/subscribers/abc", `{"name":"B2","email":"b@x.com"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "subscriber updated successfully")
	})

	t.Run("failure: email in use by another subscriber", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/subscribers/taken", `{"name":"A2","email":"b@x.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "this email is already subscribed")
	})

	t.Run("failure: unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/subscribers/missing", `{"name":"X","email":"x@x.com"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("failure: missing fields", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/subscribers/abc", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubscriberHandler_Delete(t *testing.T) {
	r := newRouter(&mockService{
		deleteFn: func(ctx context.Context, id string) (*entity.Subscriber, error) {
			if id == "known" {
				return &entity.Subscriber{ID: "known", Name: "Ana", Email: "ana@x.com"}, nil
			}
			return nil, application.ErrSubscriberNotFound
		},
	})

	t.Run("success: returns prior state", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/api/subscribers/known", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "subscriber deleted successfully")
		assert.Contains(t, w.Body.String(), `"email":"ana@x.com"`)
	})

	t.Run("failure: 404 for unknown id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodDelete, "/api/subscribers/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestSubscriberHandler_Search(t *testing.T) {
	var gotQ string
	var gotSize int
	r := newRouter(&mockService{
		searchFn: func(ctx context.Context, q string, size int) ([]map[string]any, error) {
			gotQ, gotSize = q, size
			return []map[string]any{{"email": "ana@x.com"}}, nil
		},
	})

	w := doJSON(t, r, http.MethodGet, "/api/subscribers/search?q=ana&size=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", gotQ)
	assert.Equal(t, 5, gotSize)
	assert.JSONEq(t, `[{"email":"ana@x.com"}]`, w.Body.String())
}
