package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ballop/merchplan/internal/blob"
	"github.com/ballop/merchplan/internal/catalog"
	"github.com/ballop/merchplan/internal/engine"
	api "github.com/ballop/merchplan/internal/http"
	"github.com/ballop/merchplan/internal/http/handlers"
	rl "github.com/ballop/merchplan/internal/http/rate_limiter"
	"github.com/ballop/merchplan/internal/identity"
	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
	"github.com/ballop/merchplan/internal/sku"
)

const testSecret = "test-secret"

// newTestServer wires the full surface against the given store and blob
// store, either of which may be nil for local-only behavior.
func newTestServer(t *testing.T, store remote.Store, blobs blob.Store) *httptest.Server {
	t.Helper()
	rl.Reset()

	state := engine.NewState()
	syncer := engine.New(store, state, nil)
	tokens := identity.NewTokens(testSecret, time.Minute)
	gate := identity.NewGate(store, nil, nil)
	pipeline := catalog.NewService(store, state, blobs, nil)
	allocator := sku.NewAllocator(store, nil)

	handlers.SetGate(gate)
	handlers.SetTokens(tokens)
	handlers.SetEngine(syncer)
	handlers.SetPipeline(pipeline)
	handlers.SetAllocator(allocator)
	handlers.SetBlobStore(blobs)
	api.SetTokens(tokens)
	api.SetState(state)

	srv := httptest.NewServer(api.NewRouter())
	t.Cleanup(srv.Close)
	t.Cleanup(syncer.Detach)
	return srv
}

func mintIDToken(t *testing.T, sub, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"name": name,
		"exp":  time.Now().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("mint id token: %v", err)
	}
	return raw
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// login performs the login call and returns the session token.
func login(t *testing.T, srv *httptest.Server, sub, name string, asAdmin bool) (string, models.Account) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]any{
		"idToken": mintIDToken(t, sub, name),
		"asAdmin": asAdmin,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Token   string         `json:"token"`
		Account models.Account `json:"account"`
	}
	decodeBody(t, resp, &result)
	return result.Token, result.Account
}

// completeProfile is required before the catalog routes open up.
func completeProfile(t *testing.T, srv *httptest.Server, token string) {
	t.Helper()
	resp := doJSON(t, http.MethodPut, srv.URL+"/me/profile", token, map[string]string{
		"name": "김민준", "department": "상품기획 1팀",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("profile update: expected 204, got %d", resp.StatusCode)
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	token, account := login(t, srv, "u1", "김민준", false)
	if token == "" {
		t.Fatal("expected a session token")
	}
	if account.UID != "u1" || account.Role != models.RoleUser {
		t.Errorf("unexpected account: %+v", account)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me models.Account
	decodeBody(t, resp, &me)
	if me.UID != "u1" {
		t.Errorf("expected u1, got %+v", me)
	}
}

func TestLoginRejectsBannedAccount(t *testing.T) {
	store := remote.NewMemoryStore()
	if err := store.Set(context.Background(), "users/u1", models.Account{
		UID: "u1", Role: models.RoleUser, Status: models.AccountBanned,
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	srv := newTestServer(t, store, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]any{
		"idToken": mintIDToken(t, "u1", "김민준"),
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a banned account, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsBadToken(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]any{
		"idToken": "not-a-token",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/products", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func TestProfileGate(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	// A fresh account has no department yet.
	token, _ := login(t, srv, "u1", "김민준", false)

	resp := doJSON(t, http.MethodGet, srv.URL+"/products", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before profile completion, got %d", resp.StatusCode)
	}
	var gateErr struct {
		Redirect string `json:"redirect"`
	}
	decodeBody(t, resp, &gateErr)
	if gateErr.Redirect != "/me/profile" {
		t.Errorf("expected a redirect hint, got %q", gateErr.Redirect)
	}

	completeProfile(t, srv, token)

	resp = doJSON(t, http.MethodGet, srv.URL+"/products", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after profile completion, got %d", resp.StatusCode)
	}
}

func TestProductLifecycleLocalOnly(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	token, _ := login(t, srv, "u1", "김민준", false)
	completeProfile(t, srv, token)

	resp := doJSON(t, http.MethodPost, srv.URL+"/products", token, models.Product{
		ItemName: "테스트 셔츠", Brand: "밸롭", Status: models.StatusPlanning,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created models.Product
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatal("expected a minted identifier")
	}
	if created.Author != "김민준" {
		t.Errorf("expected attribution stamped, got %q", created.Author)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/products/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/products/"+created.ID+"/status", token,
		map[string]string{"status": "Production"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/products/"+created.ID+"/status", token,
		map[string]string{"status": "Archived"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/products/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/products/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	blobs := blob.NewMemoryStore("http://files.test")
	srv := newTestServer(t, remote.NewMemoryStore(), blobs)

	token, _ := login(t, srv, "u1", "김민준", false)
	completeProfile(t, srv, token)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	product, _ := json.Marshal(models.Product{ItemName: "테스트 셔츠", Brand: "밸롭"})
	if err := mw.WriteField("product", string(product)); err != nil {
		t.Fatalf("write product part: %v", err)
	}
	fw, err := mw.CreateFormFile("design", "front.png")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := fw.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("multipart create: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created models.Product
	decodeBody(t, resp, &created)
	if !strings.HasPrefix(created.DesignImage, "http://files.test/files/designs") {
		t.Errorf("expected a staged design reference, got %q", created.DesignImage)
	}
	if blobs.Len() != 1 {
		t.Errorf("expected 1 stored payload, got %d", blobs.Len())
	}
}

func TestFileServing(t *testing.T) {
	blobs := blob.NewMemoryStore("http://files.test")
	srv := newTestServer(t, nil, blobs)

	url, err := blobs.Put(context.Background(), "designs/1_front.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	path := url[strings.Index(url, "/files/"):]

	resp := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "png-bytes" {
		t.Errorf("unexpected payload: %q", data)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/files/missing.png", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSKUEndpoint(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	token, _ := login(t, srv, "u1", "김민준", false)
	completeProfile(t, srv, token)

	resp := doJSON(t, http.MethodPost, srv.URL+"/sku/next", token, map[string]string{"brand": "밸롭"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		SKU string `json:"sku"`
	}
	decodeBody(t, resp, &result)
	if result.SKU != "B00000001" {
		t.Errorf("expected B00000001, got %q", result.SKU)
	}
}

func TestAdminRoutes(t *testing.T) {
	store := remote.NewMemoryStore()
	if err := store.Set(context.Background(), "users/u2", models.Account{
		UID: "u2", Role: models.RoleUser, Status: models.AccountActive, Name: "이서연",
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	srv := newTestServer(t, store, nil)

	// A regular account is turned away.
	token, _ := login(t, srv, "u1", "김민준", false)
	resp := doJSON(t, http.MethodGet, srv.URL+"/admin/users", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d", resp.StatusCode)
	}

	// Logging in with admin intent promotes the account.
	token, account := login(t, srv, "u1", "김민준", true)
	if account.Role != models.RoleAdmin {
		t.Fatalf("expected admin role after intent login, got %q", account.Role)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/admin/users", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var accounts []models.Account
	decodeBody(t, resp, &accounts)
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/admin/users/u2/role", token, map[string]string{"role": "admin"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("role: expected 204, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPatch, srv.URL+"/admin/users/u2/status", token, map[string]string{"status": "banned"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status: expected 204, got %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPatch, srv.URL+"/admin/users/u2/status", token, map[string]string{"status": "frozen"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status: expected 400, got %d", resp.StatusCode)
	}
}

func TestLogoutTerminatesSession(t *testing.T) {
	srv := newTestServer(t, remote.NewMemoryStore(), nil)

	token, _ := login(t, srv, "u1", "김민준", false)

	resp := doJSON(t, http.MethodPost, srv.URL+"/auth/logout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/me", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestBrandsEndpoints(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	token, _ := login(t, srv, "u1", "김민준", false)

	resp := doJSON(t, http.MethodGet, srv.URL+"/settings/brands", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var brands []string
	decodeBody(t, resp, &brands)
	if len(brands) != len(models.DefaultBrands) {
		t.Errorf("expected the default registry, got %v", brands)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/settings/brands", token, map[string]any{"brands": []string{"밸롭", "신규"}})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/settings/brands", token, nil)
	decodeBody(t, resp, &brands)
	if len(brands) != 2 || brands[1] != "신규" {
		t.Errorf("expected the replaced registry, got %v", brands)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/settings/brands", token, map[string]any{"brands": []string{}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty registry: expected 400, got %d", resp.StatusCode)
	}
}
