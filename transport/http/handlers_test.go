package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yarielito06/Pearfect-Trading-App/adapters/builder"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/store"
	"github.com/Yarielito06/Pearfect-Trading-App/adapters/venue"
	"github.com/Yarielito06/Pearfect-Trading-App/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstream is a scripted venue. Routes are keyed by "METHOD /path".
type upstream struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	auth   []string
}

func (u *upstream) handle(key string, fn func(w http.ResponseWriter, r *http.Request)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[key] = fn
}

func (u *upstream) bearers() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.auth...)
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.auth = append(u.auth, r.Header.Get("Authorization"))
	fn, ok := u.routes[r.Method+" "+r.URL.Path]
	u.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	fn(w, r)
}

func reply(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func setupTestRouter(t *testing.T, closePath string) (*gin.Engine, *upstream) {
	t.Helper()

	up := &upstream{routes: map[string]func(w http.ResponseWriter, r *http.Request){}}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	client := venue.NewClient(venue.Config{BaseURL: srv.URL, ClosePath: closePath}, entry)
	relay := service.NewRelayService(client, store.NewMemoryStore(), nil, nil, entry)
	approver, err := builder.NewApprover("", "")
	require.NoError(t, err)

	return SetupRouter(NewHandlers(relay, approver), entry), up
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func login(t *testing.T, router http.Handler, up *upstream, access string) {
	t.Helper()
	up.handle("POST /auth/login", reply(http.StatusOK, `{"accessToken":"`+access+`","refreshToken":"r-`+access+`"}`))
	w := doRequest(router, http.MethodPost, "/auth/verify", gin.H{
		"wallet_address": "0xabc",
		"signature":      "0xsig",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

var tradeBody = gin.H{
	"address":     "0xabc",
	"usdValue":    100,
	"leverage":    2,
	"longAssets":  []gin.H{{"asset": "SOL"}},
	"shortAssets": []gin.H{{"asset": "ETH"}},
}

func TestHealth(t *testing.T) {
	router, up := setupTestRouter(t, "")

	w := doRequest(router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","has_token":false}`, w.Body.String())

	login(t, router, up, "T")

	w = doRequest(router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, true, decode(t, w)["has_token"])
}

func TestMessagePassthrough(t *testing.T) {
	router, up := setupTestRouter(t, "")
	challenge := `{"domain":{"name":"Pear"},"message":{"nonce":7}}`
	up.handle("GET /auth/eip712-message", reply(http.StatusOK, challenge))

	w := doRequest(router, http.MethodGet, "/auth/message/0xabc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, challenge, w.Body.String())
}

func TestMessageUpstreamFailure(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("GET /auth/eip712-message", reply(http.StatusBadGateway, `oops`))

	w := doRequest(router, http.MethodGet, "/auth/message/0xabc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "oops")
}

func TestVerify(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("POST /auth/login", reply(http.StatusCreated, `{"accessToken":"A","refreshToken":"R","extra":1}`))

	w := doRequest(router, http.MethodPost, "/auth/verify", gin.H{
		"wallet_address": "0xabc",
		"signature":      "0xsig",
		"timestamp":      1712345678,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"A","refresh_token":"R","success":true}`, w.Body.String())
}

func TestVerifyRejected(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("POST /auth/login", reply(http.StatusUnauthorized, `{"message":"bad signature"}`))

	w := doRequest(router, http.MethodPost, "/auth/verify", gin.H{
		"wallet_address": "0xabc",
		"signature":      "0xsig",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "bad signature")
}

func TestVerifyMissingFields(t *testing.T) {
	router, up := setupTestRouter(t, "")

	w := doRequest(router, http.MethodPost, "/auth/verify", gin.H{"wallet_address": "0xabc"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, up.bearers(), "venue must not be called")
}

func TestExecuteWithoutToken(t *testing.T) {
	router, up := setupTestRouter(t, "")

	w := doRequest(router, http.MethodPost, "/api/pro/execute", tradeBody)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgNotAuthorized, decode(t, w)["detail"])
	assert.Empty(t, up.bearers())
}

func TestExecuteForwardsStoredToken(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")
	up.handle("POST /positions", reply(http.StatusCreated, `{"status":"FILLED"}`))

	w := doRequest(router, http.MethodPost, "/api/pro/execute", tradeBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "unknown", got["tradeId"])
	assert.Equal(t, map[string]any{"status": "FILLED"}, got["data"])

	bearers := up.bearers()
	assert.Equal(t, "Bearer T", bearers[len(bearers)-1])
}

func TestExecuteExplicitToken(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("POST /positions", reply(http.StatusOK, `{"orderId":"o-9"}`))

	body := gin.H{"access_token": "X"}
	for k, v := range tradeBody {
		body[k] = v
	}
	w := doRequest(router, http.MethodPost, "/api/pro/execute", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "o-9", decode(t, w)["tradeId"])
	assert.Equal(t, []string{"Bearer X"}, up.bearers())
}

func TestExecuteEmbeddedVenueError(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")
	up.handle("POST /positions", reply(http.StatusOK, `{"statusCode":422,"message":"bad leverage"}`))

	w := doRequest(router, http.MethodPost, "/api/pro/execute", tradeBody)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Pear API Error: bad leverage", decode(t, w)["detail"])
}

func TestExecuteInvalidBody(t *testing.T) {
	router, _ := setupTestRouter(t, "")

	w := doRequest(router, http.MethodPost, "/api/pro/execute", gin.H{
		"address":     "0xabc",
		"usdValue":    100,
		"leverage":    2,
		"longAssets":  []gin.H{},
		"shortAssets": []gin.H{{"asset": "ETH"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExecuteMissingNotional(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")
	up.handle("POST /positions", reply(http.StatusOK, `{"orderId":"o-1"}`))
	afterLogin := len(up.bearers())

	bodies := map[string]gin.H{
		"no usdValue or leverage": {
			"address":     "0xabc",
			"longAssets":  []gin.H{{"asset": "SOL"}},
			"shortAssets": []gin.H{{"asset": "ETH"}},
		},
		"no usdValue": {
			"address":     "0xabc",
			"leverage":    2,
			"longAssets":  []gin.H{{"asset": "SOL"}},
			"shortAssets": []gin.H{{"asset": "ETH"}},
		},
		"zero leverage": {
			"address":     "0xabc",
			"usdValue":    100,
			"leverage":    0,
			"longAssets":  []gin.H{{"asset": "SOL"}},
			"shortAssets": []gin.H{{"asset": "ETH"}},
		},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/pro/execute", body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}

	assert.Len(t, up.bearers(), afterLogin, "no order may reach the venue")
}

func TestExecuteEmbeddedErrorWithoutMessage(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")
	up.handle("POST /positions", reply(http.StatusOK, `{"statusCode":500,"error":"Internal"}`))

	w := doRequest(router, http.MethodPost, "/api/pro/execute", tradeBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Pear API Error: "+msgUnknownVenue, decode(t, w)["detail"])
}

func TestPositions(t *testing.T) {
	router, up := setupTestRouter(t, "")

	w := doRequest(router, http.MethodGet, "/portfolio/positions", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, msgNoAccessToken, decode(t, w)["detail"])

	up.handle("GET /positions", reply(http.StatusOK, `[{"id":"p1"}]`))
	w = doRequest(router, http.MethodGet, "/portfolio/positions?access_token=Q", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"p1"}]`, w.Body.String())
	assert.Equal(t, []string{"Bearer Q"}, up.bearers())
}

func TestPositionsUpstreamFailureIsEmpty(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")
	up.handle("GET /positions", reply(http.StatusInternalServerError, `{"message":"boom"}`))

	w := doRequest(router, http.MethodGet, "/portfolio/positions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCloseNotConfigured(t *testing.T) {
	router, up := setupTestRouter(t, "")
	login(t, router, up, "T")

	w := doRequest(router, http.MethodPost, "/trade/close", gin.H{"position_id": "p1"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestClose(t *testing.T) {
	router, up := setupTestRouter(t, "/positions/{id}/close")

	w := doRequest(router, http.MethodPost, "/trade/close", gin.H{"position_id": "p1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login(t, router, up, "T")
	up.handle("POST /positions/p1/close", reply(http.StatusOK, `{"closed":true}`))

	w = doRequest(router, http.MethodPost, "/trade/close", gin.H{"position_id": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"closed":true}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/trade/close", gin.H{"position_id": "missing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["detail"], "Close failed: ")
}

func TestPrices(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("GET /market-data/prices", reply(http.StatusOK, `{"HYPE":31.5,"SOL":142.1,"DOGE":0.12}`))

	w := doRequest(router, http.MethodGet, "/market/prices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"HYPE":31.5,"SOL":142.1}`, w.Body.String())
	assert.Equal(t, []string{""}, up.bearers(), "prices are fetched without a bearer")
}

func TestPricesFailure(t *testing.T) {
	router, up := setupTestRouter(t, "")
	up.handle("GET /market-data/prices", reply(http.StatusServiceUnavailable, `down`))

	w := doRequest(router, http.MethodGet, "/market/prices", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgMarketData, decode(t, w)["detail"])
}

func TestBuilderApproval(t *testing.T) {
	router, _ := setupTestRouter(t, "")

	w := doRequest(router, http.MethodGet, "/auth/builder-approval?nonce=1700000000000", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode(t, w)
	assert.Equal(t, float64(1700000000000), got["nonce"])
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, got["digest"])
	typed, ok := got["typed_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ApproveBuilderFee", typed["primaryType"])

	w = doRequest(router, http.MethodGet, "/auth/builder-approval?nonce=abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClientStatus(t *testing.T) {
	assert.Equal(t, 422, clientStatus(422))
	assert.Equal(t, 503, clientStatus(503))
	assert.Equal(t, http.StatusBadGateway, clientStatus(200))
	assert.Equal(t, http.StatusBadGateway, clientStatus(0))
}
