package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	reportapp "github.com/englishbooster/affiliate/internal/application/report"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/domain/catalog"
	"github.com/englishbooster/affiliate/internal/domain/identity"
	"github.com/englishbooster/affiliate/internal/interfaces/http/dto"
	"github.com/englishbooster/affiliate/internal/interfaces/http/middleware"
	"github.com/englishbooster/affiliate/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type fixedCode string

func (c fixedCode) Generate() (string, error) { return string(c), nil }

// apiFixture wires the real application services over testify repository
// mocks behind the routes the handlers serve in production.
type apiFixture struct {
	users      *testutil.MockUserRepository
	affiliates *testutil.MockAffiliateRepository
	programs   *testutil.MockProgramRepository
	referrals  *testutil.MockReferralRepository
	events     *testutil.RecordingPublisher
	router     *gin.Engine
}

// fakeAuth stands in for JWTAuthMiddleware: the caller is taken from test headers
func fakeAuth(c *gin.Context) {
	if id := c.GetHeader(testUserHeader); id != "" {
		p := identity.NewPrincipal(uuid.MustParse(id), identity.Role(c.GetHeader(testRoleHeader)))
		c.Set(middleware.PrincipalKey, p)
	}
	c.Next()
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		users:      new(testutil.MockUserRepository),
		affiliates: new(testutil.MockAffiliateRepository),
		programs:   new(testutil.MockProgramRepository),
		referrals:  new(testutil.MockReferralRepository),
		events:     testutil.NewRecordingPublisher(),
	}
	log := zap.NewNop()

	registry := affiliateapp.NewRegistryService(f.affiliates, f.users, f.referrals, fixedCode("BOOST123"),
		&testutil.InlineTxManager{}, f.events, affiliateapp.RegistryConfig{DefaultCommissionRate: decimal.NewFromInt(10)}, log)
	ledger := referralapp.NewLedgerService(f.referrals, f.affiliates, f.programs, f.events, 10, log)
	reports := reportapp.NewReportService(f.affiliates, f.programs, f.referrals, reportapp.Config{
		BaseURL: "https://affiliate.englishbooster.id",
		Contact: reportapp.Contact{Name: "English Booster", Phone: "082231050500"},
	}, log)

	affiliates := NewAffiliateHandler(registry)
	referrals := NewReferralHandler(ledger)
	programs := NewProgramHandler(catalogapp.NewProgramService(f.programs))
	report := NewReportHandler(reports)

	r := gin.New()
	r.Use(middleware.RequestID(), fakeAuth)
	r.GET("/home", report.Home)
	r.GET("/stats", report.CatalogStats)
	r.GET("/programs", programs.List)
	r.GET("/programs/:id", programs.Get)
	r.POST("/affiliate/apply", affiliates.Apply)
	r.GET("/affiliate/me", affiliates.GetMy)
	r.GET("/affiliate/dashboard", report.Dashboard)
	r.GET("/affiliates", affiliates.List)
	r.GET("/affiliates/:id", affiliates.Get)
	r.PATCH("/affiliates/:id", affiliates.Decide)
	r.GET("/affiliates/:id/stats", report.AffiliateStats)
	r.GET("/referrals", referrals.List)
	r.POST("/referrals", referrals.Create)
	r.GET("/referrals/:id", referrals.Get)
	r.PATCH("/referrals/:id", referrals.Transition)
	f.router = r
	return f
}

type caller struct {
	id   uuid.UUID
	role identity.Role
}

var (
	anonymous     = caller{}
	adminCaller   = caller{testutil.AdminID(), identity.RoleAdmin}
	affiliateUser = caller{testutil.UserID(), identity.RoleAffiliate}
	plainUser     = caller{testutil.UserID(), identity.RoleUser}
)

func (f *apiFixture) do(t *testing.T, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who.id != uuid.Nil {
		req.Header.Set(testUserHeader, who.id.String())
		req.Header.Set(testRoleHeader, string(who.role))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the success envelope's data into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeData(t, w, nil)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func approvedAffiliate(t *testing.T, userID uuid.UUID) *affiliate.Affiliate {
	t.Helper()
	a := pendingAffiliate(t, userID)
	require.NoError(t, a.Decide(affiliate.Approve()))
	a.ClearDomainEvents()
	return a
}

func pendingAffiliate(t *testing.T, userID uuid.UUID) *affiliate.Affiliate {
	t.Helper()
	a, err := affiliate.NewAffiliate(userID, affiliate.Profile{
		Name: "Budi Santoso", Email: "budi@example.com", Phone: "081234567890",
	}, "BOOST123", decimal.NewFromInt(10))
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func testProgram(t *testing.T, name string, category catalog.Category, price int64) *catalog.Program {
	t.Helper()
	p, err := catalog.NewProgram(name, category, "", decimal.NewFromInt(price), 8, "Pare")
	require.NoError(t, err)
	return p
}
