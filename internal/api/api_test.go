package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skatedesk/internal/auth"
	"github.com/erazemk/skatedesk/internal/db"
	"github.com/erazemk/skatedesk/internal/model"
	"github.com/erazemk/skatedesk/internal/rental"
	"github.com/erazemk/skatedesk/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	logger := zap.NewNop().Sugar()
	svc := rental.NewService(store.New(database), rental.Options{Location: time.UTC}, logger)

	server := httptest.NewServer(NewRouter(database, svc, logger, testJWTSecret))
	t.Cleanup(server.Close)
	return server, database
}

// userToken creates a user with the given role and returns a token for it.
func userToken(t *testing.T, database *sql.DB, username, displayName, role string) string {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u, err := store.CreateUser(context.Background(), database, username, displayName, string(hash), role)
	require.NoError(t, err)

	token, err := auth.GenerateToken(testJWTSecret, u)
	require.NoError(t, err)
	return token
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		// Arrays are decoded by callers that need them.
		json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestLoginEndpoint(t *testing.T) {
	server, database := setupTestServer(t)
	userToken(t, database, "ana", "Ana", model.RoleAgent)

	resp, _ := do(t, "POST", server.URL+"/api/auth/login", "", map[string]string{"username": "ana", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := do(t, "POST", server.URL+"/api/auth/login", "", map[string]string{"username": "ana", "password": "password123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	resp, _ = do(t, "GET", server.URL+"/api/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	server, database := setupTestServer(t)
	token := userToken(t, database, "ana", "", model.RoleAgent)

	resp, _ := do(t, "POST", server.URL+"/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, "GET", server.URL+"/api/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, path := range []string{"/api/items", "/api/dashboard"} {
		resp, _ := do(t, "GET", server.URL+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
	resp, _ := do(t, "POST", server.URL+"/api/scan", "not-a-token", map[string]string{"qr_code": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleBasedAccess(t *testing.T) {
	server, database := setupTestServer(t)
	agent := userToken(t, database, "agent1", "", model.RoleAgent)

	resp, _ := do(t, "POST", server.URL+"/api/items", agent, map[string]string{"type": "skate", "title": "K2"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, "GET", server.URL+"/api/users", agent, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, "GET", server.URL+"/api/items", agent, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	server, database := setupTestServer(t)
	token := userToken(t, database, "gone", "", model.RoleAgent)

	u, _ := store.GetUserByUsername(context.Background(), database, "gone")
	require.NoError(t, store.DeleteUser(context.Background(), database, u.ID))

	resp, _ := do(t, "GET", server.URL+"/api/dashboard", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCatalogValidation(t *testing.T) {
	server, database := setupTestServer(t)
	manager := userToken(t, database, "mgr", "", model.RoleManager)

	resp, _ := do(t, "POST", server.URL+"/api/items", manager, map[string]any{
		"type": "skate", "title": "K2", "qr_code": "skate_7_abc",
		"skate": map[string]any{"brand": "K2", "truck_type": "metal"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skate", "title": "Dup", "qr_code": "skate_7_abc"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skatemate", "title": "Pads", "qr_code": "skate_8"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, "POST", server.URL+"/api/items", manager, map[string]any{
		"type": "skate", "title": "Bad", "skate": map[string]any{"truck_type": "wood"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skatemate", "title": "Helmet"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body["qr_code"].(string), "skatemate_"))
	assert.Equal(t, "available", body["status"])
}

func TestRentalFlow(t *testing.T) {
	server, database := setupTestServer(t)
	manager := userToken(t, database, "mgr", "", model.RoleManager)
	agent := userToken(t, database, "ana", "Ana Novak", model.RoleAgent)

	resp, created := do(t, "POST", server.URL+"/api/items", manager, map[string]any{
		"type": "skate", "title": "K2 Alexis", "qr_code": "skate_7_abc",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	itemURL := server.URL + "/api/items/" + jsonID(created)

	// Scan.
	resp, view := do(t, "POST", server.URL+"/api/scan", agent, map[string]string{"qr_code": "skate_7_abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "available", view["status"])

	resp, body := do(t, "POST", server.URL+"/api/scan", agent, map[string]string{"qr_code": "skate_999_zzz"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No item found with this QR code.", body["error"])

	// Rent.
	resp, body = do(t, "POST", itemURL+"/actions", agent, map[string]string{
		"action": "rent", "notes": "wheels tight", "target_status": "rented",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rented", body["status"])

	// Out of order in strict mode.
	resp, body = do(t, "POST", itemURL+"/actions", agent, map[string]string{"action": "complete-maintenance", "notes": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(rental.KindValidationError), body["kind"])

	// Maintenance without notes.
	resp, body = do(t, "POST", itemURL+"/actions", agent, map[string]string{"action": "flag-maintenance"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "notes", body["field"])

	// Unknown action.
	resp, _ = do(t, "POST", itemURL+"/actions", agent, map[string]string{"action": "steal"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown item.
	resp, body = do(t, "POST", server.URL+"/api/items/999/actions", agent, map[string]string{"action": "rent"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid item type.", body["error"])

	// Notes carry the caller's display name.
	resp, view = do(t, "POST", server.URL+"/api/scan", agent, map[string]string{"qr_code": "skate_7_abc"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rented", view["status"])
	assert.Contains(t, view["notes"], "Pre-Rental Check (by Ana Novak)")

	// Activity.
	req, _ := http.NewRequest("GET", itemURL+"/activity", nil)
	req.Header.Set("Authorization", "Bearer "+agent)
	actResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer actResp.Body.Close()
	var history []model.Activity
	require.NoError(t, json.NewDecoder(actResp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "Item Rented.", history[0].Message)
	assert.Equal(t, "Ana Novak", history[0].AgentName)

	// Dashboard.
	req, _ = http.NewRequest("GET", server.URL+"/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+agent)
	dashResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dashResp.Body.Close()
	var d rental.Dashboard
	require.NoError(t, json.NewDecoder(dashResp.Body).Decode(&d))
	assert.Equal(t, rental.StatusCounts{Total: 1, Rented: 1}, d.Skates.Counts)
	assert.NotNil(t, d.Skatemates.Items)
	assert.Len(t, d.Recent, 1)
}

func TestCatalogEditKeepsStatus(t *testing.T) {
	server, database := setupTestServer(t)
	manager := userToken(t, database, "mgr", "", model.RoleManager)

	_, created := do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skatemate", "title": "Pads"})
	itemURL := server.URL + "/api/items/" + jsonID(created)

	resp, _ := do(t, "POST", itemURL+"/actions", manager, map[string]string{"action": "flag-maintenance", "notes": "strap torn"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, "PUT", itemURL, manager, map[string]any{
		"title": "Knee Pads", "status": "available", "skatemate": map[string]any{"condition": "used"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Knee Pads", body["title"])
	assert.Equal(t, "maintenance", body["status"])
}

func jsonID(obj map[string]any) string {
	id, _ := obj["id"].(float64)
	return strconv.FormatInt(int64(id), 10)
}

func TestAgentActivityHistory(t *testing.T) {
	server, database := setupTestServer(t)
	admin := userToken(t, database, "boss", "", model.RoleAdmin)
	agent := userToken(t, database, "ana", "Ana", model.RoleAgent)

	_, created := do(t, "POST", server.URL+"/api/items", admin, map[string]any{"type": "skate", "title": "K2"})
	resp, _ := do(t, "POST", server.URL+"/api/items/"+jsonID(created)+"/actions", agent, map[string]string{"action": "rent"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ana, _ := store.GetUserByUsername(context.Background(), database, "ana")
	url := server.URL + "/api/users/" + strconv.FormatInt(ana.ID, 10) + "/activity"

	resp, _ = do(t, "GET", url, agent, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	histResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer histResp.Body.Close()
	require.Equal(t, http.StatusOK, histResp.StatusCode)

	var history []model.Activity
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, "rent", history[0].Action)
	assert.Equal(t, "Ana", history[0].AgentName)
}

func TestAccountChangesApplyToExistingTokens(t *testing.T) {
	server, database := setupTestServer(t)
	token := userToken(t, database, "mira", "Old Name", model.RoleManager)
	ctx := context.Background()

	resp, created := do(t, "POST", server.URL+"/api/items", token, map[string]any{"type": "skate", "title": "K2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	mira, _ := store.GetUserByUsername(ctx, database, "mira")
	require.NoError(t, store.UpdateUser(ctx, database, mira.ID, "New Name", model.RoleAgent))

	resp, _ = do(t, "POST", server.URL+"/api/items", token, map[string]any{"type": "skate", "title": "Roces"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, "POST", server.URL+"/api/items/"+jsonID(created)+"/actions", token, map[string]string{"action": "rent", "notes": "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, view := do(t, "GET", server.URL+"/api/items/"+jsonID(created), token, nil)
	assert.Contains(t, view["notes"], "Pre-Rental Check (by New Name)")
	assert.NotContains(t, view["notes"], "Old Name")
}

func TestDeleteMissingItem(t *testing.T) {
	server, database := setupTestServer(t)
	manager := userToken(t, database, "mgr", "", model.RoleManager)

	resp, _ := do(t, "DELETE", server.URL+"/api/items/999", manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, created := do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skatemate", "title": "Helmet"})
	itemURL := server.URL + "/api/items/" + jsonID(created)

	resp, _ = do(t, "DELETE", itemURL, manager, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, "DELETE", itemURL, manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScanListsAvailableActions(t *testing.T) {
	server, database := setupTestServer(t)
	manager := userToken(t, database, "mgr", "", model.RoleManager)

	do(t, "POST", server.URL+"/api/items", manager, map[string]any{"type": "skate", "title": "K2", "qr_code": "skate_3_x"})

	resp, view := do(t, "POST", server.URL+"/api/scan", manager, map[string]string{"qr_code": "skate_3_x"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"rent", "flag-maintenance"}, view["actions"])
}
