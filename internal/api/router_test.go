package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"associados_api/internal/api/middleware"
	"associados_api/internal/app/service"
	"associados_api/internal/common"
	"associados_api/internal/common/security"
	"associados_api/internal/domain/model"
	"associados_api/internal/domain/repository"
	"associados_api/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories standing in for Postgres, with the same
// uniqueness behavior the real ones get from constraints.

type memUserRepository struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]model.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: map[int64]model.User{}}
}

func (r *memUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return &common.ValidationError{Fields: map[string][]string{
				"email": {"The email has already been taken."},
			}}
		}
	}
	r.seq++
	user.ID = r.seq
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := u
	return &found, nil
}

func (r *memUserRepository) EmailInUse(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memAssociateRepository struct {
	mu         sync.Mutex
	seq        int64
	associates map[int64]model.Associate
}

func newMemAssociateRepository() *memAssociateRepository {
	return &memAssociateRepository{associates: map[int64]model.Associate{}}
}

func (r *memAssociateRepository) Create(ctx context.Context, associate *model.Associate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	associate.ID = r.seq
	r.associates[associate.ID] = *associate
	return nil
}

func (r *memAssociateRepository) FindByID(ctx context.Context, id int64) (*model.Associate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.associates[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := a
	return &found, nil
}

func (r *memAssociateRepository) List(ctx context.Context, limit, offset int) ([]model.Associate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Associate, 0, len(r.associates))
	for _, a := range r.associates {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []model.Associate{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memAssociateRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.associates), nil
}

func (r *memAssociateRepository) Update(ctx context.Context, associate *model.Associate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.associates[associate.ID]; !ok {
		return common.ErrNotFound
	}
	r.associates[associate.ID] = *associate
	return nil
}

func (r *memAssociateRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.associates[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.associates, id)
	return nil
}

func (r *memAssociateRepository) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.associates {
		if a.Email == email && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAssociateRepository) CPFInUse(ctx context.Context, cpf string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.associates {
		if a.CPF == cpf && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	config.Load()
	security.InitJWT()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	blacklist := repository.NewRedisTokenBlacklist(rdb)

	authService := service.NewAuthService(newMemUserRepository(), blacklist)
	associateService := service.NewAssociateService(newMemAssociateRepository())
	authenticator := middleware.NewAuthenticator(blacklist)

	ts := httptest.NewServer(NewRouter(authService, associateService, authenticator))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

type errorEnvelope struct {
	Path    string              `json:"path"`
	Method  string              `json:"method"`
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func registerUser(t *testing.T, baseURL string) string {
	t.Helper()
	resp, raw := doJSON(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"name":     "Gui Johann",
		"email":    "gui@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var body struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func validAssociatePayload() map[string]string {
	return map[string]string{
		"name":      "Joana D'arc",
		"email":     "joana@example.com",
		"cpf":       "455.004.850-67",
		"telephone": "(11) 99999-9999",
		"city":      "Rio de Janeiro",
		"state":     "rj",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerUser(t, ts.URL)

	// Duplicate registration fails with the uniform 422 envelope.
	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"name":     "Gui Johann",
		"email":    "gui@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "/auth/register", env.Path)
	assert.Equal(t, http.MethodPost, env.Method)
	assert.Equal(t, common.MsgInvalidInput, env.Message)
	assert.Equal(t, []string{"The email has already been taken."}, env.Errors["email"])

	// Wrong password and correct credentials.
	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "gui@example.com",
		"password": "wrong-password123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, common.MsgInvalidCredentials, env.Message)

	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "gui@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.NotEmpty(t, login.Token)
	assert.Greater(t, login.ExpiresIn, int64(0))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/user"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/associates"},
		{http.MethodPost, "/associates"},
		{http.MethodPut, "/associates/1"},
		{http.MethodDelete, "/associates/1"},
	} {
		resp, raw := doJSON(t, route.method, ts.URL+route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)

		var env errorEnvelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, common.MsgNotAuthorized, env.Message)
		assert.Equal(t, route.path, env.Path)
	}

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/auth/user", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentUser(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/auth/user", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "gui@example.com", user["email"])
	assert.Equal(t, "Gui Johann", user["name"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "hashed_password")
}

func TestLogoutInvalidatesToken(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Successfully logged out", body["message"])

	// The same token fails on every protected route from now on.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/auth/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/associates", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/auth/logout", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAssociateCRUD(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	// Create: input is normalized before storage.
	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/associates", token, validAssociatePayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created model.Associate
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "Joana D'arc", created.Name)
	assert.Equal(t, "45500485067", created.CPF)
	assert.Equal(t, "11999999999", created.Telephone)
	assert.Equal(t, "RJ", created.State)
	require.NotZero(t, created.ID)

	// Duplicate email and cpf produce field-specific 422s.
	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/associates", token, validAssociatePayload())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, []string{"The email has already been taken."}, env.Errors["email"])
	assert.Equal(t, []string{"CPF already in use."}, env.Errors["cpf"])

	// Missing fields are all reported.
	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/associates", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &env))
	for _, field := range []string{"name", "email", "cpf", "telephone", "city", "state"} {
		assert.Contains(t, env.Errors, field)
	}

	// Partial update.
	resp, raw = doJSON(t, http.MethodPut, fmt.Sprintf("%s/associates/%d", ts.URL, created.ID), token, map[string]string{
		"name": "Updated Name",
		"city": "New City",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated model.Associate
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, "joana@example.com", updated.Email)

	// Update and delete misses.
	resp, raw = doJSON(t, http.MethodPut, ts.URL+"/associates/999", token, map[string]string{"name": "Nobody"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Associate with id 999 not found", env.Message)

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/associates/999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Delete.
	resp, raw = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/associates/%d", ts.URL, created.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]string
	require.NoError(t, json.Unmarshal(raw, &deleted))
	assert.Equal(t, "Associate deleted successfully", deleted["message"])

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/associates/%d", ts.URL, created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAssociatesPagination(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	// Valid CPFs generated by varying the base digits.
	cpfs := []string{"45500485067", "11144477735", "93541134780"}
	for i, cpf := range cpfs {
		payload := validAssociatePayload()
		payload["email"] = fmt.Sprintf("assoc%d@example.com", i)
		payload["cpf"] = cpf
		resp, raw := doJSON(t, http.MethodPost, ts.URL+"/associates", token, payload)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/associates?page=1&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Data  []model.Associate `json:"data"`
		Links struct {
			First string `json:"first"`
			Last  string `json:"last"`
			Prev  string `json:"prev"`
			Next  string `json:"next"`
		} `json:"links"`
		Meta struct {
			CurrentPage int `json:"current_page"`
			PerPage     int `json:"per_page"`
			Total       int `json:"total"`
			LastPage    int `json:"last_page"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))

	assert.Equal(t, 3, page.Meta.Total)
	assert.Equal(t, 1, page.Meta.CurrentPage)
	assert.Equal(t, 2, page.Meta.PerPage)
	assert.Equal(t, 2, page.Meta.LastPage)
	assert.LessOrEqual(t, len(page.Data), page.Meta.PerPage)
	assert.Equal(t, "/associates?page=1", page.Links.First)
	assert.Equal(t, "/associates?page=2", page.Links.Last)
	assert.Empty(t, page.Links.Prev, "no previous page from page 1")
	assert.Equal(t, "/associates?page=2", page.Links.Next)

	// Last page: next is empty, prev points back.
	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/associates?page=2&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, "/associates?page=1", page.Links.Prev)
	assert.Empty(t, page.Links.Next)

	// Stable order by id.
	assert.Equal(t, "assoc2@example.com", page.Data[0].Email)
}

func TestRouteAndMethodMisses(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, common.MsgResourceNotFound, env.Message)
	assert.Equal(t, "/nope", env.Path)
	assert.Equal(t, 404, env.Status)

	resp, raw = doJSON(t, http.MethodPatch, ts.URL+"/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Method not allowed.", env.Message)
	assert.Equal(t, "/auth/login", env.Path)

	// Non-numeric id never reaches the service.
	token := registerUser(t, ts.URL)
	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/associates/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, common.MsgResourceNotFound, env.Message)
}

func TestMalformedJSONBody(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts.URL)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/associates", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "Invalid request payload.", env.Message)
	assert.Equal(t, 400, env.Status)
}
