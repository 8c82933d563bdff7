package integration

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	identityapp "github.com/englishbooster/affiliate/internal/application/identity"
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	reportapp "github.com/englishbooster/affiliate/internal/application/report"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/infrastructure/auth"
	"github.com/englishbooster/affiliate/internal/infrastructure/config"
	"github.com/englishbooster/affiliate/internal/infrastructure/event"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence/seed"
	"github.com/englishbooster/affiliate/internal/interfaces/http/handler"
	"github.com/englishbooster/affiliate/internal/interfaces/http/middleware"
	"github.com/englishbooster/affiliate/internal/interfaces/http/router"
	"github.com/englishbooster/affiliate/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminEmail    = "admin@englishbooster.id"
	adminPassword = "admin-password-123"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// apiServer is the production route table over a migrated database
type apiServer struct {
	db     *TestDB
	client *testutil.APIClient
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	log := zap.NewNop()
	ctx := context.Background()

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	affiliateRepo := persistence.NewGormAffiliateRepository(tdb.DB)
	programRepo := persistence.NewGormProgramRepository(tdb.DB)
	referralRepo := persistence.NewGormReferralRepository(tdb.DB)

	_, err := seed.SeedPrograms(ctx, programRepo, seed.DefaultPrograms, log)
	require.NoError(t, err)
	_, err = seed.SeedAdmin(ctx, userRepo, "Administrator", adminEmail, adminPassword, log)
	require.NoError(t, err)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "affiliate-integration",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))

	registry := affiliateapp.NewRegistryService(affiliateRepo, userRepo, referralRepo,
		affiliate.NewRandomCodeGenerator(8), persistence.NewGormTxManager(tdb.DB), bus,
		affiliateapp.RegistryConfig{DefaultCommissionRate: decimal.NewFromInt(10), MaxCodeAttempts: 10, PageSize: 10}, log)
	ledger := referralapp.NewLedgerService(referralRepo, affiliateRepo, programRepo, bus, 10, log)
	reports := reportapp.NewReportService(affiliateRepo, programRepo, referralRepo, reportapp.Config{
		BaseURL: "https://affiliate.englishbooster.id",
		Contact: reportapp.Contact{Name: "English Booster", Phone: "082231050500"},
	}, log)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	router.RegisterAPI(engine, r, router.Handlers{
		Auth:      handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, blacklist, log)),
		Affiliate: handler.NewAffiliateHandler(registry),
		Program:   handler.NewProgramHandler(catalogapp.NewProgramService(programRepo)),
		Referral:  handler.NewReferralHandler(ledger),
		Report:    handler.NewReportHandler(reports),
		System:    handler.NewSystemHandler("affiliate-service", "test", tdb.Database, log),
	}, router.Guards{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
	})
	r.Setup()

	return &apiServer{db: tdb, client: testutil.NewAPIClient(engine, "/api/v1")}
}

func (s *apiServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.client.Do(t, http.MethodPost, "/auth/login", "", identityapp.LoginRequest{Email: email, Password: password})
	resp := testutil.DecodeData[identityapp.LoginResponse](t, w, http.StatusOK)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (s *apiServer) register(t *testing.T, name, email, password string) identityapp.UserResponse {
	t.Helper()
	w := s.client.Do(t, http.MethodPost, "/auth/register", "", identityapp.RegisterRequest{Name: name, Email: email, Password: password})
	return testutil.DecodeData[identityapp.UserResponse](t, w, http.StatusCreated)
}
