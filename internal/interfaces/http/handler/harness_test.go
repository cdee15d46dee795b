package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/dashboard"
	appfinance "github.com/iwaqasmaqbool/gms-sub002/internal/application/finance"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	appinventory "github.com/iwaqasmaqbool/gms-sub002/internal/application/inventory"
	appmanufacturing "github.com/iwaqasmaqbool/gms-sub002/internal/application/manufacturing"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	appreport "github.com/iwaqasmaqbool/gms-sub002/internal/application/report"
	appsales "github.com/iwaqasmaqbool/gms-sub002/internal/application/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/auth"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence/persistencetest"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/views"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:                "handler-test-secret-with-enough-length",
	AccessTokenExpiration: time.Hour,
	Issuer:                "gms-test",
	CookieName:            "gms_session",
}

// testServer wires every handler to real services over an in-memory database.
// Requests run as the actor set with as(); the zero actor is anonymous.
type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	fx     *persistencetest.Fixtures
	actor  *identity.Actor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db := persistencetest.NewDB(t)
	repos := persistence.NewGormRepositories(db)
	scope := persistence.NewGormTransactionScope(db)
	log := zap.NewNop()

	users := appidentity.NewUserService(repos, scope, log)
	authSvc := appidentity.NewAuthService(repos, scope, auth.NewJWTService(testJWT), auth.NewInMemorySessionRevoker(), log)
	catalog := appcatalog.NewCatalogService(repos, scope, log)
	batches := appmanufacturing.NewBatchService(repos, scope, nil, log)
	inventory := appinventory.NewInventoryService(repos, scope, nil, log)
	sales := appsales.NewSaleService(repos, scope, nil, log)
	finance := appfinance.NewFinanceService(repos, scope, nil, log)
	notifications := appnotification.NewNotificationService(repos.Notifications(), log)
	activity := appactivity.NewActivityService(repos.ActivityLogs())
	exports := appreport.NewExportService(repos, finance, log)
	overview := dashboard.NewDashboardService(repos, finance, log)

	renderer, err := views.New()
	require.NoError(t, err)

	s := &testServer{t: t, db: db, fx: persistencetest.NewFixtures(t, db)}
	engine := gin.New()
	engine.HTMLRender = renderer
	engine.Use(middleware.RequestID(), func(c *gin.Context) {
		if s.actor != nil {
			c.Set(middleware.ActorKey, *s.actor)
		}
		c.Next()
	})

	base := NewBaseHandler(notifications, exports.PDFEnabled(), log)
	authH := NewAuthHandler(base, authSvc, testJWT)
	dashH := NewDashboardHandler(base, overview)
	userH := NewUserHandler(base, users)
	catalogH := NewCatalogHandler(base, catalog, users)
	batchH := NewBatchHandler(base, batches, catalog)
	inventoryH := NewInventoryHandler(base, inventory, catalog, users)
	saleH := NewSaleHandler(base, sales, catalog, users)
	financeH := NewFinanceHandler(base, finance, users)
	activityH := NewActivityHandler(base, activity, users)
	notificationH := NewNotificationHandler(base, notifications, nil)
	reportH := NewReportHandler(base, exports)

	engine.GET("/login", authH.ShowLogin)
	engine.POST("/login", authH.Login)
	engine.POST("/logout", authH.Logout)
	engine.GET("/", dashH.Show)
	engine.GET("/users", userH.List)
	engine.POST("/users", userH.Create)
	engine.POST("/users/:id", userH.Update)
	engine.GET("/products", catalogH.Products)
	engine.POST("/products", catalogH.CreateProduct)
	engine.GET("/raw-materials", catalogH.Materials)
	engine.POST("/raw-materials", catalogH.CreateMaterial)
	engine.GET("/purchases", catalogH.Purchases)
	engine.POST("/purchases", catalogH.RecordPurchase)
	engine.GET("/batches", batchH.List)
	engine.POST("/batches", batchH.Create)
	engine.GET("/batches/:id", batchH.Detail)
	engine.POST("/batches/:id/status", batchH.UpdateStatus)
	engine.POST("/batches/:id/costs", batchH.RecordCost)
	engine.POST("/batches/:id/materials", batchH.AllocateMaterial)
	engine.GET("/inventory", inventoryH.Stock)
	engine.GET("/inventory/transfers", inventoryH.Transfers)
	engine.POST("/inventory/transfers", inventoryH.Transfer)
	engine.GET("/sales", saleH.List)
	engine.POST("/sales", saleH.Create)
	engine.GET("/sales/:id", saleH.Detail)
	engine.POST("/sales/:id/payments", saleH.RecordPayment)
	engine.GET("/funds", financeH.Funds)
	engine.POST("/funds/transfer", financeH.Transfer)
	engine.GET("/finance/summary", financeH.Summary)
	engine.GET("/activity-logs", activityH.List)
	engine.GET("/notifications", notificationH.List)
	engine.POST("/notifications/read-all", notificationH.MarkAllRead)
	engine.POST("/notifications/:id/read", notificationH.MarkRead)
	engine.GET("/reports/export", reportH.Export)

	api := engine.Group("/api/v1")
	api.GET("/users/:id", userH.Get)
	api.POST("/users/:id/toggle-activation", userH.ToggleActivation)
	api.GET("/batches/:id/costing", batchH.Costing)
	api.GET("/notifications/unread-count", notificationH.UnreadCount)

	s.engine = engine
	return s
}

// user inserts a user and makes it the acting user
func (s *testServer) user(username string, role identity.Role) identity.Actor {
	a := s.fx.Actor(s.fx.User(username, role))
	s.as(a)
	return a
}

func (s *testServer) as(a identity.Actor) {
	s.actor = &a
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// flash returns the status and message a form POST redirected with
func flash(t *testing.T, w *httptest.ResponseRecorder) (path, status, message string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return u.Path, u.Query().Get("status"), u.Query().Get("message")
}
