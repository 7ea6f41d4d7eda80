package front

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/catalog"
	"github.com/careerhub/careerhub/internal/config"
	"github.com/careerhub/careerhub/internal/db"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/ledger/memory"
	"github.com/careerhub/careerhub/internal/session"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	router *gin.Engine
	engine *ledger.Engine
	conn   *gorm.DB
	// failSummaries makes the backend reject experience summaries.
	failSummaries atomic.Bool
}

var stubUsers = map[string]uint64{
	"kim@example.com": 1,
	"lee@example.com": 2,
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:front_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	env := &testEnv{conn: conn}
	backend := httptest.NewServer(http.HandlerFunc(env.serveBackend))
	t.Cleanup(backend.Close)

	env.engine = ledger.NewEngine(memory.New(), catalog.MustDefault(), nil)
	store := career.NewStore(conn, env.engine, 500)
	sessions := session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		CookieName: "careerhub_session",
		Secret:     "test-secret",
		TTL:        time.Hour,
	})

	env.router = gin.New()
	RegisterFrontRoutes(env.router, Dependencies{
		Sessions:    sessions,
		Engine:      env.engine,
		Career:      store,
		Upstream:    upstream.NewClient(backend.URL, 2*time.Second),
		SignupGrant: 1000,
	})
	return env
}

func (e *testEnv) serveBackend(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	switch r.URL.Path {
	case "/api/auth/login":
		email, _ := body["userId"].(string)
		id, ok := stubUsers[email]
		if !ok || body["password"] != "password1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "userToken": "tok-" + email, "name": "user", "email": email})
	case "/api/auth/signUp":
		w.WriteHeader(http.StatusCreated)
	case "/api/summarize-experience":
		if e.failSummaries.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"summary":"리더십을 발휘한 경험","tags":["리더십"]}`)
	case "/api/gpt/generate":
		_, _ = io.WriteString(w, `{"genera":"데이터 분석 직무를 추천합니다"}`)
	case "/api/clone/generate":
		_, _ = io.WriteString(w, `{"name":"AI 클론","summary":"요약","strengths":["소통"],"recommendations":[{"title":"PM","match":90}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{"userId": email, "password": "password1"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "careerhub_session" {
			return cookie
		}
	}
	t.Fatalf("login: no session cookie")
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), errDecode)
	}
	return out
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/tokens/balance", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["message"]; got != "Unauthorized" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"userId": "kim@example.com", "password": "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"userId": "not-an-email", "password": "x"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSignupValidatesConsent(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"name": "김", "email": "kim@example.com", "phoneNumber": "010", "password": "password1",
		"location": "서울", "intro": "안녕하세요", "agreeTerms": false, "agreePrivacy": true,
	}
	rec := env.do(t, http.MethodPost, "/api/auth/signup", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decode[map[string]string](t, rec)["message"]; got != "서비스 이용약관에 동의해주세요" {
		t.Fatalf("unexpected message %q", got)
	}

	body["agreeTerms"] = true
	rec = env.do(t, http.MethodPost, "/api/auth/signup", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFirstLoginGrantsSignupTokensOnce(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")
	env.login(t, "kim@example.com")

	rec := env.do(t, http.MethodGet, "/api/tokens/balance", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[map[string]int64](t, rec)["amount"]; got != 1000 {
		t.Fatalf("expected 1000, got %d", got)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	me := decode[map[string]any](t, rec)
	if me["email"] != "kim@example.com" || me["tokens"] != float64(1000) {
		t.Fatalf("unexpected me %#v", me)
	}
}

func TestUseTokensFlow(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")

	rec := env.do(t, http.MethodPost, "/api/tokens/use", map[string]int64{"serviceId": 1}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var used struct {
		NewBalance  int64 `json:"newBalance"`
		Transaction struct {
			Title  string `json:"title"`
			Amount int64  `json:"amount"`
		} `json:"transaction"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &used); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if used.NewBalance != 800 || used.Transaction.Title != "이력서 첨삭 사용" || used.Transaction.Amount != -200 {
		t.Fatalf("unexpected receipt %#v", used)
	}

	rec = env.do(t, http.MethodGet, "/api/tokens/history", nil, cookie)
	history := decode[[]map[string]any](t, rec)
	if len(history) != 2 || history[0]["amount"] != float64(-200) || history[1]["title"] != career.SignupGrantTitle {
		t.Fatalf("unexpected history %#v", history)
	}

	rec = env.do(t, http.MethodPost, "/api/tokens/use", map[string]int64{"serviceId": 999}, cookie)
	if rec.Code != http.StatusNotFound || decode[map[string]string](t, rec)["error"] != "서비스를 찾을 수 없습니다" {
		t.Fatalf("expected 404 service not found, got %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/tokens/use", map[string]string{"serviceId": "abc"}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		if rec = env.do(t, http.MethodPost, "/api/tokens/use", map[string]int64{"serviceId": 2}, cookie); rec.Code != http.StatusOK {
			t.Fatalf("redeem %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec = env.do(t, http.MethodPost, "/api/tokens/use", map[string]int64{"serviceId": 2}, cookie)
	if rec.Code != http.StatusPaymentRequired || decode[map[string]string](t, rec)["error"] != "토큰이 부족합니다. 충전이 필요합니다" {
		t.Fatalf("expected 402, got %d %s", rec.Code, rec.Body.String())
	}
	balance, _ := env.engine.Balance(t.Context(), 1)
	if balance != 200 {
		t.Fatalf("expected 200 left, got %d", balance)
	}
}

func TestServicesInCatalogOrder(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")
	rec := env.do(t, http.MethodGet, "/api/tokens/services", nil, cookie)
	services := decode[[]catalog.Service](t, rec)
	if len(services) != 4 || services[0].Title != "이력서 첨삭" || services[3].Cost != 250 {
		t.Fatalf("unexpected services %#v", services)
	}
}

func TestReferralRedeemCreditsBothUsers(t *testing.T) {
	env := newTestEnv(t)
	kim := env.login(t, "kim@example.com")
	lee := env.login(t, "lee@example.com")

	rec := env.do(t, http.MethodGet, "/api/referrals/code", nil, kim)
	code := decode[map[string]any](t, rec)["code"].(string)
	if !strings.HasPrefix(code, "CH-") {
		t.Fatalf("unexpected code %q", code)
	}

	rec = env.do(t, http.MethodPost, "/api/referrals/redeem", map[string]string{"code": code}, kim)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for own code, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/referrals/redeem", map[string]string{"code": code}, lee)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/referrals/redeem", map[string]string{"code": code}, lee)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	for userID, cookie := range map[uint64]*http.Cookie{1: kim, 2: lee} {
		rec = env.do(t, http.MethodGet, "/api/tokens/balance", nil, cookie)
		if got := decode[map[string]int64](t, rec)["amount"]; got != 1500 {
			t.Fatalf("user %d: expected 1500, got %d", userID, got)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/referrals", nil, kim)
	if list := decode[[]map[string]any](t, rec); len(list) != 1 || list[0]["status"] != "completed" {
		t.Fatalf("unexpected referrals %#v", list)
	}
}

func TestCreateExperienceStoresSummary(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")

	body := map[string]any{"title": "동아리 회장", "role": "회장", "startDate": "2023-03", "endDate": "2024-02"}
	rec := env.do(t, http.MethodPost, "/api/experiences", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[map[string]any](t, rec)
	if created["summary"] != "리더십을 발휘한 경험" {
		t.Fatalf("unexpected experience %#v", created)
	}

	env.failSummaries.Store(true)
	rec = env.do(t, http.MethodPost, "/api/experiences", body, cookie)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/experiences", nil, cookie)
	if list := decode[[]map[string]any](t, rec); len(list) != 1 {
		t.Fatalf("expected 1 experience, got %d", len(list))
	}

	id := int64(created["id"].(float64))
	lee := env.login(t, "lee@example.com")
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/experiences/%d", id), nil, lee)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/experiences/%d", id), nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestSendMessageStoresExchange(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")

	rec := env.do(t, http.MethodPost, "/api/messages", map[string]string{"content": "진로 고민"}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	reply := decode[map[string]any](t, rec)
	if reply["isUser"] != false || reply["content"] != "데이터 분석 직무를 추천합니다" {
		t.Fatalf("unexpected reply %#v", reply)
	}

	rec = env.do(t, http.MethodGet, "/api/messages", nil, cookie)
	if list := decode[[]map[string]any](t, rec); len(list) != 2 || list[0]["isUser"] != true {
		t.Fatalf("unexpected messages %#v", list)
	}

	rec = env.do(t, http.MethodPost, "/api/messages", map[string]string{"content": " "}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetCloneGeneratesOnFirstAccess(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")

	rec := env.do(t, http.MethodGet, "/api/clone", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	clone := decode[map[string]any](t, rec)
	recs, _ := clone["recommendations"].([]any)
	if clone["name"] != "AI 클론" || len(recs) != 1 {
		t.Fatalf("unexpected clone %#v", clone)
	}

	rec = env.do(t, http.MethodGet, "/api/clone", nil, cookie)
	if again := decode[map[string]any](t, rec); again["id"] != clone["id"] {
		t.Fatalf("expected stored clone, got %#v", again)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")
	rec := env.do(t, http.MethodGet, "/api/search-profiles?query=%20", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.login(t, "kim@example.com")
	if rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, cookie); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/auth/me", nil, cookie); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
