package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteacai/pdv-backend/internal/attendance"
	"github.com/eliteacai/pdv-backend/internal/cashregister"
	"github.com/eliteacai/pdv-backend/internal/orders"
	"github.com/eliteacai/pdv-backend/internal/tablesales"
	"github.com/eliteacai/pdv-backend/pkg/auth"
	"github.com/eliteacai/pdv-backend/pkg/config"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/eliteacai/pdv-backend/pkg/logger"
)

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "pdv-test", ExpirationMinutes: 60}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	store   *tablesales.MemoryStore
}

func newTestServer(t *testing.T, allowAnonymous bool) *testServer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		JWT:          testJWT,
		FeatureFlags: config.FeatureFlagsConfig{AllowAnonymous: allowAnonymous},
	}

	cashService, err := cashregister.NewService(cashregister.NewMemoryRepository(), logg)
	require.NoError(t, err)
	ordersService, err := orders.NewService(orders.NewMemoryRepository())
	require.NoError(t, err)
	store := tablesales.NewMemoryStore()
	tableService, err := tablesales.NewService(tablesales.ServiceParams{
		Store:     store,
		Workspace: tablesales.NewMemoryWorkspace(),
		Cash:      cashService,
		Logger:    logg,
	})
	require.NoError(t, err)
	shell, err := attendance.NewShell(ordersService, cashService, true, logg)
	require.NoError(t, err)

	return &testServer{
		handler: NewRouter(cfg, logg, nil, nil, nil, shell, tableService, cashService, ordersService),
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	}
	return resp, env
}

func operatorToken(t *testing.T, code string, perms ...enums.Permission) string {
	t.Helper()
	token, err := auth.MintOperatorToken(testJWT, time.Now(), auth.Operator{Code: code, Name: "Bia", Permissions: perms})
	require.NoError(t, err)
	return token
}

func TestHealthLive(t *testing.T) {
	srv := newTestServer(t, true)
	resp, _ := srv.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp, env := srv.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, string(env.Data), `"demo_mode":true`)
}

func TestTableSaleFlowPostsCashEntry(t *testing.T) {
	srv := newTestServer(t, true)
	tableID := tablesales.DemoTableID(enums.StoreOne, 1)
	base := "/api/v1/stores/1/tables/" + tableID.String()

	resp, _ := srv.do(t, http.MethodPost, "/api/v1/stores/1/cash-register/open", `{"opening_amount":"100.00"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code)

	resp, env := srv.do(t, http.MethodPost, base+"/open", `{"customer_name":"Ana","customer_count":2}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var opened tablesales.SessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &opened))
	assert.Equal(t, enums.TableStatusOccupied, opened.Table.Status)
	assert.Equal(t, tablesales.DefaultOperatorName, opened.Sale.OperatorName)

	resp, _ = srv.do(t, http.MethodPost, base+"/open", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp, _ = srv.do(t, http.MethodPost, base+"/session/items",
		`{"product_code":"ACAI500","product_name":"Açaí 500ml","quantity":2,"unit_price":"15.00"}`, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp, env = srv.do(t, http.MethodPost, base+"/session/finalize", `{"payment_type":"pix","change_amount":"0"}`, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var result tablesales.FinalizeResultDTO
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, enums.SaleStatusClosed, result.Sale.Status)
	assert.Equal(t, "30.00", result.Sale.TotalAmount)
	assert.True(t, result.CashEntryPosted)

	resp, env = srv.do(t, http.MethodGet, "/api/v1/stores/1/cash-register", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var register cashregister.RegisterDTO
	require.NoError(t, json.Unmarshal(env.Data, &register))
	require.Len(t, register.Entries, 1)
	assert.Equal(t, "30.00", register.Entries[0].Amount)
	assert.Equal(t, "Venda Mesa #1 - Loja 1", register.Entries[0].Description)
	assert.Equal(t, "130.00", register.Balance)

	resp, env = srv.do(t, http.MethodGet, "/api/v1/stores/1/sales/"+result.Sale.ID.String(), "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var detail tablesales.SaleDetailDTO
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "ACAI500", detail.Items[0].ProductCode)

	resp, _ = srv.do(t, http.MethodPost, base+"/session/finalize", `{"payment_type":"pix"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestItemEditingRoutes(t *testing.T) {
	srv := newTestServer(t, true)
	base := "/api/v1/stores/2/tables/" + tablesales.DemoTableID(enums.StoreTwo, 2).String()

	resp, _ := srv.do(t, http.MethodPost, base+"/open", "", "")
	require.Equal(t, http.StatusCreated, resp.Code)
	srv.do(t, http.MethodPost, base+"/session/items", `{"product_code":"A","product_name":"Açaí","quantity":1,"unit_price":10}`, "")
	srv.do(t, http.MethodPost, base+"/session/items", `{"product_code":"B","product_name":"Granola","quantity":1,"unit_price":2.5}`, "")

	resp, env := srv.do(t, http.MethodPatch, base+"/session/items/1", `{"quantity":3}`, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var session tablesales.SessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "17.50", session.Total)

	resp, env = srv.do(t, http.MethodDelete, base+"/session/items/0", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(env.Data, &session))
	require.Len(t, session.Items, 1)
	assert.Equal(t, "B", session.Items[0].ProductCode)

	resp, _ = srv.do(t, http.MethodDelete, base+"/session/items/5", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = srv.do(t, http.MethodPatch, base+"/session/items/x", `{"quantity":1}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = srv.do(t, http.MethodPost, base+"/session/items", `{"product_code":"C","product_name":"Mel","quantity":0,"unit_price":"1.00"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "quantity")

	resp, _ = srv.do(t, http.MethodPost, base+"/session/save", "", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp, _ = srv.do(t, http.MethodPost, base+"/session/cancel", `{"confirm":false}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = srv.do(t, http.MethodPost, base+"/session/cancel", `{"confirm":true}`, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var sale tablesales.SaleDTO
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Equal(t, enums.SaleStatusCancelled, sale.Status)

	resp, env = srv.do(t, http.MethodGet, "/api/v1/stores/2/sales?status=cancelled", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var sales []tablesales.SaleDTO
	require.NoError(t, json.Unmarshal(env.Data, &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
}

func TestPermissionsAndAuth(t *testing.T) {
	srv := newTestServer(t, false)

	resp, _ := srv.do(t, http.MethodGet, "/api/v1/stores/1/tables", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	cashier := operatorToken(t, "OP2", enums.PermissionViewCashRegister)
	resp, _ = srv.do(t, http.MethodGet, "/api/v1/stores/1/tables", "", cashier)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/stores/1/cash-register", "", cashier)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp, env := srv.do(t, http.MethodGet, "/api/v1/stores/1/attendance", "", cashier)
	require.Equal(t, http.StatusOK, resp.Code)
	var res attendance.Resolution
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, enums.AttendanceTabCash, res.ActiveTab)
	assert.Equal(t, "Bia", res.OperatorName)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/stores/1/attendance?tab=tables", "", cashier)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	admin := operatorToken(t, "Admin")
	resp, env = srv.do(t, http.MethodGet, "/api/v1/stores/1/tables?search=mesa%202", "", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	var tables []tablesales.TableDTO
	require.NoError(t, json.Unmarshal(env.Data, &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, 2, tables[0].Number)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/stores/9/tables", "", admin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/stores/1/tables/"+uuid.NewString()+"/session", "", admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestOpenTableUsesOperatorName(t *testing.T) {
	srv := newTestServer(t, false)
	token := operatorToken(t, "OP5", enums.PermissionViewSales)
	path := "/api/v1/stores/1/tables/" + tablesales.DemoTableID(enums.StoreOne, 2).String() + "/open"

	resp, env := srv.do(t, http.MethodPost, path, "", token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var session tablesales.SessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "Bia", session.Sale.OperatorName)
	assert.Equal(t, 1, session.Sale.CustomerCount)
}

func TestUnknownBodyFieldsRejected(t *testing.T) {
	srv := newTestServer(t, true)
	path := "/api/v1/stores/1/tables/" + tablesales.DemoTableID(enums.StoreOne, 1).String() + "/open"
	resp, _ := srv.do(t, http.MethodPost, path, `{"table":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.True(t, bytes.Contains(resp.Body.Bytes(), []byte("VALIDATION_ERROR")))
}
