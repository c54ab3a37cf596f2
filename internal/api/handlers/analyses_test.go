package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dgarcia/dashboard-api/internal/api/handlers"
	"github.com/dgarcia/dashboard-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisHandler_Lifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("alice").
		WithPassword("secret1").
		Build(t, ts.DB.DB)
	token := testutil.Login(t, ts, user.Username, rawPassword)

	var createdID string

	t.Run("create", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/analyses/"), token, map[string]any{
			"name":         "R1",
			"data":         map[string]any{"a": 1},
			"invoiceCount": 3,
			"totalValue":   "150.25",
		})
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result handlers.AnalysisDetailResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "R1", result.Name)
		assert.Equal(t, user.ID.String(), result.UserID)
		assert.JSONEq(t, `{"a":1}`, string(result.Data))
		assert.Equal(t, 3, result.InvoiceCount)
		assert.True(t, result.TotalValue.Equal(decimal.RequireFromString("150.25")))
		createdID = result.ID
	})

	t.Run("get returns payload verbatim", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/analyses/"+createdID), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result handlers.AnalysisDetailResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.JSONEq(t, `{"a":1}`, string(result.Data))
	})

	t.Run("update name only", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodPut, ts.APIURL("/analyses/"+createdID), token, map[string]any{
			"name": "R1 renamed",
		})
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result handlers.AnalysisDetailResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "R1 renamed", result.Name)
		assert.JSONEq(t, `{"a":1}`, string(result.Data))
		assert.Equal(t, 3, result.InvoiceCount)
	})

	t.Run("delete", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/analyses/"+createdID), token, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		// Gone afterwards, and deleting again is a 404
		resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/analyses/"+createdID), token, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/analyses/"+createdID), token, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAnalysisHandler_List(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, alicePassword := testutil.NewUserBuilder().WithUsername("list_alice").Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().WithUsername("list_bob").Build(t, ts.DB.DB)

	testutil.NewAnalysisBuilder(alice).WithName("alice report").Build(t, ts.DB.DB)
	testutil.NewAnalysisBuilder(bob).WithName("bob report").Build(t, ts.DB.DB)

	token := testutil.Login(t, ts, alice.Username, alicePassword)

	t.Run("all records", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/analyses/"), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result []handlers.AnalysisSummaryResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result, 2)
	})

	t.Run("mine only", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/analyses/?mine=true"), token, nil)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result []handlers.AnalysisSummaryResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result, 1)
		assert.Equal(t, "alice report", result[0].Name)
		assert.Equal(t, alice.ID.String(), result[0].UserID)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/analyses/"), "", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAnalysisHandler_Validation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().WithUsername("validator").Build(t, ts.DB.DB)
	token := testutil.Login(t, ts, user.Username, rawPassword)

	tests := []struct {
		name           string
		method         string
		path           string
		payload        any
		expectedStatus int
	}{
		{
			name:           "create without name",
			method:         http.MethodPost,
			path:           "/analyses/",
			payload:        map[string]any{"data": map[string]any{"a": 1}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "create without data",
			method:         http.MethodPost,
			path:           "/analyses/",
			payload:        map[string]any{"name": "nodata"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "get with malformed id",
			method:         http.MethodGet,
			path:           "/analyses/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "update missing record",
			method:         http.MethodPut,
			path:           "/analyses/00000000-0000-0000-0000-000000000001",
			payload:        map[string]any{"name": "ghost"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, tt.method, ts.APIURL(tt.path), token, tt.payload)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestUserHandler_CreateConflict(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, adminPassword := testutil.NewUserBuilder().WithUsername("admin_user").Build(t, ts.DB.DB)
	token := testutil.Login(t, ts, admin.Username, adminPassword)

	payload := map[string]string{
		"firstName": "Dup",
		"lastName":  "User",
		"username":  "duplicate",
		"password":  "password123",
	}

	resp := testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/"), token, payload)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoJSON(t, http.MethodPost, ts.APIURL("/users/"), token, payload)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUserHandler_DeleteBlockedWhileOwningAnalyses(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, adminPassword := testutil.NewUserBuilder().WithUsername("admin_del").Build(t, ts.DB.DB)
	owner, _ := testutil.NewUserBuilder().WithUsername("record_owner").Build(t, ts.DB.DB)
	testutil.NewAnalysisBuilder(owner).Build(t, ts.DB.DB)

	token := testutil.Login(t, ts, admin.Username, adminPassword)

	resp := testutil.DoJSON(t, http.MethodDelete, ts.APIURL(fmt.Sprintf("/users/%s", owner.ID)), token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
