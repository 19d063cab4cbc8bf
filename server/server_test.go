package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pocketbook/alert"
	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/plaindb"
	"pocketbook/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine *gin.Engine
	stores Stores
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := plaindb.NewMockDB(plaindb.MockConfig{})
	users, err := user.NewStore(db)
	require.NoError(t, err)
	categories, err := category.NewStore(db)
	require.NoError(t, err)
	txns, err := ledger.NewStore(db, categories)
	require.NoError(t, err)
	budgets, err := budget.NewStore(db, categories)
	require.NoError(t, err)
	alerts, err := alert.NewStore(db)
	require.NoError(t, err)
	stores := Stores{
		Users:      users,
		Categories: categories,
		Ledger:     txns,
		Budgets:    budgets,
		Alerts:     alerts,
	}
	return &testServer{
		engine: newEngine(stores, zap.NewNop()),
		stores: stores,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if s.token != "" {
		req.Header.Set("Authorization", s.token)
	}
	resp := httptest.NewRecorder()
	s.engine.ServeHTTP(resp, req)
	return resp
}

// signUp registers a user and signs in, storing the session token
func (s *testServer) signUp(t *testing.T, name string) {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/v1/register", fmt.Sprintf(
		`{"Name": %q, "Email": "%s@example.com", "Password": "hunter2"}`, name, name))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodPost, "/api/v1/signin", fmt.Sprintf(
		`{"Name": %q, "Password": "hunter2"}`, name))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var session struct {
		Token string
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	s.token = session.Token
}

func TestRecoveryTrapsPanics(t *testing.T) {
	engine := gin.New()
	engine.Use(recovery(zap.NewNop(), true))
	engine.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	assert.NotPanics(t, func() {
		engine.ServeHTTP(resp, req)
	})
}

func TestVersion(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/v1/version", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Version")
}

func TestRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/api/v1/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSignInRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	s.token = ""
	resp := s.do(t, http.MethodPost, "/api/v1/signin", `{"Name": "darsh", "Password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodPost, "/api/v1/register",
		`{"Name": "Darsh", "Email": "other@example.com", "Password": "pw"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")

	resp := s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "1000", "Kind": "income", "Category": "Job", "Description": "May salary", "Date": "2025-05-10T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	resp = s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "150", "Kind": "expense", "Category": "Food", "Date": "2025-05-12T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created ledger.Transaction
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	resp = s.do(t, http.MethodGet, "/api/v1/transactions", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var page ledger.QueryResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Count)

	resp = s.do(t, http.MethodGet, "/api/v1/totals", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var totals struct {
		Income, Expenses, Balance string
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &totals))
	assert.Equal(t, "1000", totals.Income)
	assert.Equal(t, "150", totals.Expenses)
	assert.Equal(t, "850", totals.Balance)

	resp = s.do(t, http.MethodDelete, "/api/v1/transactions/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, resp.Code)
	resp = s.do(t, http.MethodGet, "/api/v1/transactions", "")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Count)
}

func TestTransactionRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	for _, tc := range []struct {
		description, body string
	}{
		{"zero amount", `{"Amount": "0", "Kind": "expense", "Date": "2025-05-12T00:00:00Z"}`},
		{"negative amount", `{"Amount": "-5", "Kind": "expense", "Date": "2025-05-12T00:00:00Z"}`},
		{"missing date", `{"Amount": "5", "Kind": "expense"}`},
		{"unknown kind", `{"Amount": "5", "Kind": "bogus", "Date": "2025-05-12T00:00:00Z"}`},
	} {
		t.Run(tc.description, func(t *testing.T) {
			resp := s.do(t, http.MethodPost, "/api/v1/transactions", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
		})
	}
}

func TestTransactionDeleteScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "10", "Kind": "expense", "Date": "2025-05-12T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var created ledger.Transaction
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))

	s.signUp(t, "intruder")
	resp = s.do(t, http.MethodDelete, "/api/v1/transactions/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestInvalidPagination(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodGet, "/api/v1/transactions?page=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = s.do(t, http.MethodGet, "/api/v1/transactions?results=9001", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodPost, "/api/v1/categories", `{"Name": "Food", "Kind": "expense"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = s.do(t, http.MethodPost, "/api/v1/categories", `{"Name": "Job", "Kind": "income"}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = s.do(t, http.MethodGet, "/api/v1/categories?kind=expense", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Food")
	assert.NotContains(t, resp.Body.String(), "Job")

	resp = s.do(t, http.MethodGet, "/api/v1/categories?kind=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBudgetReconciliation(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "150", "Kind": "expense", "Category": "Food", "Date": "2025-05-12T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	resp = s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "75", "Kind": "expense", "Category": "Food", "Date": "2025-05-20T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = s.do(t, http.MethodPost, "/api/v1/budgets",
		`{"Category": "Food", "Kind": "expense", "Month": 5, "Year": 2025, "Amount": "300"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodGet, "/api/v1/budgets", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Budgets []budget.Row
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Budgets, 1)
	assert.Equal(t, "Food", body.Budgets[0].Category)
	assert.Equal(t, "225", body.Budgets[0].Spent.String())
	assert.Equal(t, "300", body.Budgets[0].Target.String())
}

func TestAlerts(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	u, err := s.stores.Users.Authenticate("darsh", "hunter2")
	require.NoError(t, err)
	raised, err := s.stores.Alerts.Add(u.ID, "Overspent")
	require.NoError(t, err)

	resp := s.do(t, http.MethodGet, "/api/v1/alerts", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Overspent")

	resp = s.do(t, http.MethodPost, "/api/v1/alerts/"+raised.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = s.do(t, http.MethodPost, "/api/v1/alerts/bogus/read", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteAccountCascades(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")
	resp := s.do(t, http.MethodPost, "/api/v1/transactions",
		`{"Amount": "150", "Kind": "expense", "Category": "Food", "Date": "2025-05-12T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	u, err := s.stores.Users.Authenticate("darsh", "hunter2")
	require.NoError(t, err)

	resp = s.do(t, http.MethodDelete, "/api/v1/account", "")
	require.Equal(t, http.StatusNoContent, resp.Code)

	_, found, err := s.stores.Users.Find(u.ID)
	require.NoError(t, err)
	assert.False(t, found)
	txns, err := s.stores.Ledger.ListForOwner(u.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)

	resp = s.do(t, http.MethodGet, "/api/v1/profile", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "sessions are revoked with the account")
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "darsh")

	resp := s.do(t, http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "darsh")
	assert.NotContains(t, resp.Body.String(), "hunter2", "passwords are redacted in responses")

	resp = s.do(t, http.MethodPut, "/api/v1/profile", `{"Name": "darshan", "Email": "darshan@example.com"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "darshan")
}
