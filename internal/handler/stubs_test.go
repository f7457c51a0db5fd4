package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard-go/internal/crypto"
	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/observability"
)

type stubAuth struct {
	register     func(model.RegisterRequest) (model.AuthResponse, error)
	authenticate func(model.LoginRequest) (model.AuthResponse, error)
	getUser      func(ulid.ULID) (model.UserResponse, error)
}

func (s *stubAuth) Register(_ context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	return s.register(req)
}

func (s *stubAuth) Authenticate(_ context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	return s.authenticate(req)
}

func (s *stubAuth) GetUser(_ context.Context, userID ulid.ULID) (model.UserResponse, error) {
	return s.getUser(userID)
}

type stubProjects struct {
	create func(ulid.ULID, model.ProjectRequest) (model.ProjectResponse, error)
	get    func(ulid.ULID, ulid.ULID) (model.ProjectResponse, error)
	list   func(ulid.ULID) ([]model.ProjectResponse, error)
	delete func(ulid.ULID, ulid.ULID) error
}

func (s *stubProjects) Create(_ context.Context, ownerID ulid.ULID, req model.ProjectRequest) (model.ProjectResponse, error) {
	return s.create(ownerID, req)
}

func (s *stubProjects) GetByID(_ context.Context, ownerID, projectID ulid.ULID) (model.ProjectResponse, error) {
	return s.get(ownerID, projectID)
}

func (s *stubProjects) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]model.ProjectResponse, error) {
	return s.list(ownerID)
}

func (s *stubProjects) Delete(_ context.Context, ownerID, projectID ulid.ULID) error {
	return s.delete(ownerID, projectID)
}

type stubTasks struct {
	create      func(ulid.ULID, model.TaskDTO) (model.TaskDTO, error)
	update      func(ulid.ULID, model.TaskDTO) (model.TaskDTO, error)
	delete      func(ulid.ULID, ulid.ULID) error
	get         func(ulid.ULID, ulid.ULID) (model.TaskDTO, error)
	listProject func(ulid.ULID, ulid.ULID) ([]model.TaskDTO, error)
}

func (s *stubTasks) Create(_ context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error) {
	return s.create(ownerID, dto)
}

func (s *stubTasks) Update(_ context.Context, ownerID ulid.ULID, dto model.TaskDTO) (model.TaskDTO, error) {
	return s.update(ownerID, dto)
}

func (s *stubTasks) Delete(_ context.Context, ownerID, taskID ulid.ULID) error {
	return s.delete(ownerID, taskID)
}

func (s *stubTasks) GetByID(_ context.Context, ownerID, taskID ulid.ULID) (model.TaskDTO, error) {
	return s.get(ownerID, taskID)
}

func (s *stubTasks) GetByProjectID(_ context.Context, ownerID, projectID ulid.ULID) ([]model.TaskDTO, error) {
	return s.listProject(ownerID, projectID)
}

type testAPI struct {
	router   http.Handler
	codec    *crypto.TokenCodec
	auth     *stubAuth
	projects *stubProjects
	tasks    *stubTasks
	metrics  *observability.Metrics
	logs     *bytes.Buffer
	userID   ulid.ULID
	token    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		codec:    crypto.NewTokenCodec("handler-secret", time.Hour),
		auth:     &stubAuth{},
		projects: &stubProjects{},
		tasks:    &stubTasks{},
		metrics:  observability.NewMetrics(),
		logs:     &bytes.Buffer{},
		userID:   ulid.Make(),
	}
	token, err := api.codec.Issue(api.userID, "alice")
	require.NoError(t, err)
	api.token = token

	logger := slog.New(slog.NewJSONHandler(api.logs, nil))
	api.router = NewRouter(RouterConfig{
		Auth:     NewAuthHandler(api.auth, logger),
		Projects: NewProjectHandler(api.projects, logger),
		Tasks:    NewTaskHandler(api.tasks, logger),
		Verifier: api.codec,
		Metrics:  api.metrics,
		Logger:   logger,
	})
	return api
}

// do sends a request with the test user's token, or anonymously when authed is false.
func (api *testAPI) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
