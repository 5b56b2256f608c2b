//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"recipe-share-go/internal/cache"
	"recipe-share-go/internal/config"
	"recipe-share-go/internal/db"
	collabdomain "recipe-share-go/internal/domain/collab"
	cookingdomain "recipe-share-go/internal/domain/cooking"
	recipedomain "recipe-share-go/internal/domain/recipe"
	userdomain "recipe-share-go/internal/domain/user"
	collabrepo "recipe-share-go/internal/repository/postgres/collab"
	reciperepo "recipe-share-go/internal/repository/postgres/recipe"
	userrepo "recipe-share-go/internal/repository/postgres/user"
	"recipe-share-go/internal/storage"
	"recipe-share-go/internal/transport/httpserver"
	"recipe-share-go/internal/transport/httpserver/handler"
	authmw "recipe-share-go/internal/transport/httpserver/middleware"
	"recipe-share-go/pkg/logger"
)

const (
	ownerToken = "11111111-1111-1111-1111-111111111111"
	bobToken   = "22222222-2222-2222-2222-222222222222"
)

type testEnv struct {
	server     *httptest.Server
	authServer *httptest.Server
	db         *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, 12, "json")
	authServer := newAuthServer(t)

	cfg := config.Config{
		DB: config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			URL:            authServer.URL,
			PublishableKey: "test-key",
			Timeout:        2 * time.Second,
		},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	store := cache.NewMemory()
	profileRepo := userrepo.NewPostgres(dbConn)
	recipeRepo := reciperepo.NewPostgres(dbConn)
	collabRepo := collabrepo.NewPostgres(dbConn)

	profiles := userdomain.NewService(profileRepo)
	collabs := collabdomain.NewService(collabRepo, store)
	recipes := recipedomain.NewService(recipeRepo, collabRepo, store, time.Minute)

	timers := cookingdomain.NewRegistry(cookingdomain.NewLogNotifier(log), 10*time.Millisecond)
	cooking := cookingdomain.NewManager(timers)

	media, err := storage.NewLocal(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	handlers := handler.New(profiles, recipes, collabs, cooking, media, 10<<20, log)
	router := httpserver.NewRouter(cfg, httpserver.RouterDeps{
		Handlers:   handlers,
		Auth:       authmw.NewAuth(cfg.Auth, profiles, log),
		StaticRoot: media.Root(),
	})
	server := httptest.NewServer(router)

	return &testEnv{server: server, authServer: authServer, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	e.authServer.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

// newAuthServer plays the identity provider: any non-empty bearer token is a
// valid user whose id is the token itself.
func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":    token,
			"email": token + "@example.com",
			"user_metadata": map[string]interface{}{
				"name": "User " + token[:8],
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE recipe_collaborators, recipe_steps, ingredients, recipes, profiles RESTART IDENTITY CASCADE",
	).Error
}

func requestJSON(t *testing.T, method, url, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestRecipeLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	base := env.server.URL + "/api"

	status, created := requestJSON(t, http.MethodPost, base+"/recipes", ownerToken, map[string]interface{}{
		"title":     "Pancakes",
		"servings":  4,
		"is_public": true,
		"ingredients": []map[string]interface{}{
			{"name": "Flour", "quantity": 2, "unit": "cups"},
			{"name": "Eggs", "quantity": 2, "unit": "pcs"},
		},
		"steps": []map[string]interface{}{
			{"instruction": "Mix everything"},
			{"instruction": "Fry until golden", "timer_minutes": 5},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d body = %v", status, created)
	}
	recipeID := created["id"].(string)

	status, got := requestJSON(t, http.MethodGet, base+"/recipes/"+recipeID, ownerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get status = %d", status)
	}
	if access := got["access"].(map[string]interface{}); access["permission"] != "owner" {
		t.Errorf("permission = %v, want owner", access["permission"])
	}

	// Scaled ingredient fetch at 6 servings: 2 cups for 4 reads "3".
	status, scaled := requestJSON(t, http.MethodGet, base+"/recipes/"+recipeID+"/ingredients?servings=6", ownerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("ingredients status = %d", status)
	}
	first := scaled["ingredients"].([]interface{})[0].(map[string]interface{})
	if first["display"] != "3" {
		t.Errorf("display = %v, want 3", first["display"])
	}

	// Replace the ingredient list wholesale.
	status, updated := requestJSON(t, http.MethodPut, base+"/recipes/"+recipeID, ownerToken, map[string]interface{}{
		"title":     "Pancakes",
		"servings":  4,
		"is_public": true,
		"ingredients": []map[string]interface{}{
			{"name": "Buckwheat flour", "quantity": 1.5, "unit": "cups"},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("update status = %d body = %v", status, updated)
	}
	rows := updated["ingredients"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("ingredients after replace = %d, want 1", len(rows))
	}

	status, _ = requestJSON(t, http.MethodDelete, base+"/recipes/"+recipeID, ownerToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	status, _ = requestJSON(t, http.MethodGet, base+"/recipes/"+recipeID, ownerToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", status)
	}
}

func TestCollaborationFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	base := env.server.URL + "/api"

	// Bob touches the API once so his profile exists before the invite.
	if status, _ := requestJSON(t, http.MethodGet, base+"/auth/me", bobToken, nil); status != http.StatusOK {
		t.Fatalf("bob auth/me status = %d", status)
	}

	status, created := requestJSON(t, http.MethodPost, base+"/recipes", ownerToken, map[string]interface{}{
		"title":     "Secret stew",
		"is_public": false,
		"is_draft":  true,
		"steps": []map[string]interface{}{
			{"instruction": "Simmer for hours"},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	recipeID := created["id"].(string)

	// Drafts are invisible to non-collaborators.
	if status, _ := requestJSON(t, http.MethodGet, base+"/recipes/"+recipeID, bobToken, nil); status != http.StatusNotFound {
		t.Fatalf("bob draft get status = %d, want 404", status)
	}

	status, invite := requestJSON(t, http.MethodPost, base+"/recipes/"+recipeID+"/collaborators", ownerToken, map[string]interface{}{
		"email": bobToken + "@example.com",
		"role":  "viewer",
	})
	if status != http.StatusCreated {
		t.Fatalf("invite status = %d body = %v", status, invite)
	}
	inviteID := invite["id"].(string)

	// Duplicate invite is rejected while the first is pending.
	status, _ = requestJSON(t, http.MethodPost, base+"/recipes/"+recipeID+"/collaborators", ownerToken, map[string]interface{}{
		"email": strings.ToUpper(bobToken) + "@EXAMPLE.COM",
		"role":  "editor",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate invite status = %d, want 409", status)
	}

	status, _ = requestJSON(t, http.MethodPost, base+"/collaborations/"+inviteID+"/respond", bobToken, map[string]interface{}{
		"accept": true,
	})
	if status != http.StatusOK {
		t.Fatalf("respond status = %d", status)
	}

	// Accepted viewer can read the draft but not edit it.
	if status, _ := requestJSON(t, http.MethodGet, base+"/recipes/"+recipeID, bobToken, nil); status != http.StatusOK {
		t.Fatalf("bob draft get after accept status = %d", status)
	}
	editBody := map[string]interface{}{"title": "Bob's stew", "is_public": false, "is_draft": true}
	status, denial := requestJSON(t, http.MethodPut, base+"/recipes/"+recipeID, bobToken, editBody)
	if status != http.StatusForbidden {
		t.Fatalf("viewer edit status = %d, want 403", status)
	}
	if code := denial["error"].(map[string]interface{})["code"]; code != "viewer_only" {
		t.Errorf("denial code = %v, want viewer_only", code)
	}

	// Promotion to editor takes effect without a second accept.
	status, _ = requestJSON(t, http.MethodPatch, base+"/collaborations/"+inviteID, ownerToken, map[string]interface{}{
		"role": "editor",
	})
	if status != http.StatusOK {
		t.Fatalf("change role status = %d", status)
	}
	if status, body := requestJSON(t, http.MethodPut, base+"/recipes/"+recipeID, bobToken, editBody); status != http.StatusOK {
		t.Fatalf("editor edit status = %d body = %v", status, body)
	}

	status, list := requestJSON(t, http.MethodGet, base+"/collaborations", bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("collaborations status = %d", status)
	}
	items := list["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("collaborations = %d, want 1", len(items))
	}
	row := items[0].(map[string]interface{})
	if row["status"] != "accepted" || row["role"] != "editor" {
		t.Errorf("collaboration row = %v", row)
	}
}

func TestCookSessionFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()
	base := env.server.URL + "/api"

	status, created := requestJSON(t, http.MethodPost, base+"/recipes", ownerToken, map[string]interface{}{
		"title":     "Two step dish",
		"is_public": true,
		"steps": []map[string]interface{}{
			{"instruction": "Chop"},
			{"instruction": "Cook", "timer_minutes": 1},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	recipeID := created["id"].(string)

	status, session := requestJSON(t, http.MethodPost, base+"/recipes/"+recipeID+"/cook", ownerToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("cook start status = %d", status)
	}
	sessionID := session["session_id"].(string)

	toggle := func(step int) map[string]interface{} {
		url := fmt.Sprintf("%s/cook/%s/steps/%d/toggle", base, sessionID, step)
		status, body := requestJSON(t, http.MethodPost, url, ownerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("toggle %d status = %d", step, status)
		}
		return body
	}

	if p := toggle(1); p["celebrate"] != false {
		t.Error("celebrated early")
	}
	if p := toggle(2); p["celebrate"] != true {
		t.Error("no celebration at completion")
	}
	if p := toggle(2); p["celebrate"] != false {
		t.Error("celebration repeated")
	}

	status, timer := requestJSON(t, http.MethodPost, fmt.Sprintf("%s/cook/%s/steps/2/timer/start", base, sessionID), ownerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("timer start status = %d body = %v", status, timer)
	}
	if timer["state"] != "running" {
		t.Errorf("timer state = %v, want running", timer["state"])
	}

	status, _ = requestJSON(t, http.MethodDelete, base+"/cook/"+sessionID, ownerToken, nil)
	if status != http.StatusNoContent {
		t.Fatalf("end session status = %d", status)
	}
	status, _ = requestJSON(t, http.MethodGet, base+"/cook/"+sessionID, ownerToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get ended session status = %d, want 404", status)
	}
}
