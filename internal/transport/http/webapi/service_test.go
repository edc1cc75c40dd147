package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/identity"
	"forge-server-go/internal/domain/inventory"
	"forge-server-go/internal/domain/orders"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemory()
	t.Cleanup(func() { store.Close(context.Background()) })

	ids, err := identity.NewService(identity.Options{
		Store:  store,
		Tokens: identity.NewTokenCodec("test-secret"),
		Logger: nopLogger{},
	})
	if err != nil {
		t.Fatalf("identity.NewService: %v", err)
	}
	if err := ids.SeedDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("SeedDefaultAdmin: %v", err)
	}

	inv, err := inventory.NewService(inventory.Options{Store: store, Logger: nopLogger{}})
	if err != nil {
		t.Fatalf("inventory.NewService: %v", err)
	}
	ord, err := orders.NewService(orders.Options{Store: store, Materials: inv, Logger: nopLogger{}})
	if err != nil {
		t.Fatalf("orders.NewService: %v", err)
	}
	api, err := NewService(Options{Identities: ids, Inventory: inv, Orders: ord, Logger: nopLogger{}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	engine := gin.New()
	api.Register(engine.Group("/api"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, engine *gin.Engine, username, password string) string {
	t.Helper()

	rec := doJSON(t, engine, http.MethodPost, "/api/user/login", "", gin.H{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("login returned no token")
	}
	return resp.Data.Token
}

func TestAdminGateAndMaterialFlow(t *testing.T) {
	engine := newTestServer(t)
	adminToken := login(t, engine, "Admin", "Admin")

	// Unauthenticated and non-admin callers never reach the handlers.
	if rec := doJSON(t, engine, http.MethodGet, "/api/materials", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d", rec.Code)
	}
	if rec := doJSON(t, engine, http.MethodPost, "/api/user/register", "", gin.H{
		"username": "alice", "password": "secret",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	userToken := login(t, engine, "alice", "secret")
	if rec := doJSON(t, engine, http.MethodGet, "/api/materials", userToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin list: status %d", rec.Code)
	}

	if rec := doJSON(t, engine, http.MethodPost, "/api/materials", adminToken, gin.H{
		"name": "PLA Red", "color": "Red", "unit_price": 2,
		"remaining_quantity": 500, "kind": "Filament", "grade": "PLA", "diameter": 1.75,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("add material: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/materials/search", adminToken, gin.H{"color": "Red"})
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d, body %s", rec.Code, rec.Body.String())
	}
	var search struct {
		Data []inventory.Material `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &search); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if len(search.Data) != 1 || search.Data[0].Name != "PLA Red" {
		t.Fatalf("unexpected search data %+v", search.Data)
	}
}

func TestFilamentChangeOverHTTP(t *testing.T) {
	engine := newTestServer(t)
	adminToken := login(t, engine, "Admin", "Admin")

	addMaterial := func(body gin.H) string {
		rec := doJSON(t, engine, http.MethodPost, "/api/materials", adminToken, body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("add material: status %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data inventory.Material `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode material: %v", err)
		}
		return resp.Data.ID
	}

	redID := addMaterial(gin.H{
		"name": "PLA Red", "color": "Red", "unit_price": 2,
		"remaining_quantity": 40, "kind": "Filament", "grade": "PLA", "diameter": 1.75,
	})
	addMaterial(gin.H{
		"name": "PLA Blue", "color": "Blue", "unit_price": 2,
		"remaining_quantity": 300, "kind": "Filament", "grade": "PLA", "diameter": 1.75,
	})

	rec := doJSON(t, engine, http.MethodPost, "/api/printers", adminToken, gin.H{
		"name": "Ender", "type": "Filament", "filament_diameter": 1.75,
		"supported_materials": []string{"PLA"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add printer: status %d, body %s", rec.Code, rec.Body.String())
	}
	var printerResp struct {
		Data inventory.Printer `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &printerResp); err != nil {
		t.Fatalf("decode printer: %v", err)
	}
	printerID := printerResp.Data.ID

	rec = doJSON(t, engine, http.MethodPost, "/api/printers/"+printerID+"/material", adminToken, gin.H{
		"material_id": redID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/printers/"+printerID+"/filament-change", adminToken, gin.H{
		"color": "Blue", "quantity": 100,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("filament change: status %d, body %s", rec.Code, rec.Body.String())
	}
	var change struct {
		Data inventory.ChangeResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &change); err != nil {
		t.Fatalf("decode change: %v", err)
	}
	if !change.Data.Changed || change.Data.Remaining != 200 {
		t.Fatalf("unexpected change result %+v", change.Data)
	}

	// No purple spool exists: the failure maps to 404 and mutates nothing.
	rec = doJSON(t, engine, http.MethodPost, "/api/printers/"+printerID+"/filament-change", adminToken, gin.H{
		"color": "Purple", "quantity": 10,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing color: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestOrderFlowOverHTTP(t *testing.T) {
	engine := newTestServer(t)
	adminToken := login(t, engine, "Admin", "Admin")

	if rec := doJSON(t, engine, http.MethodPost, "/api/materials", adminToken, gin.H{
		"name": "Standard Clear", "color": "Clear", "unit_price": 10,
		"remaining_quantity": 500, "kind": "Resin", "viscosity": 500,
	}); rec.Code != http.StatusCreated {
		t.Fatalf("add material: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/orders", adminToken, gin.H{
		"object_name": "vase", "weight_grams": 20, "dimensions": "2x3x4",
		"color": "Clear", "address": "12 Forge Lane", "material_type": "Resin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add order: status %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data orders.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/orders/"+created.Data.ID+"/cost", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("compute cost: status %d, body %s", rec.Code, rec.Body.String())
	}
	var priced struct {
		Data orders.Order `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &priced); err != nil {
		t.Fatalf("decode priced order: %v", err)
	}
	if math.Abs(priced.Data.TotalCost-301.2) > 1e-9 {
		t.Fatalf("total = %v, want 301.2", priced.Data.TotalCost)
	}
}

func TestLogoutRevokesSessionOverHTTP(t *testing.T) {
	engine := newTestServer(t)
	adminToken := login(t, engine, "Admin", "Admin")

	if rec := doJSON(t, engine, http.MethodPost, "/api/user/logout", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, engine, http.MethodGet, "/api/materials", adminToken, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: status %d", rec.Code)
	}
}
