package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/config"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/kendall-kelly/ppe-pickup-api/web"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSubjectHeader = "X-Test-Subject"
	testWebhookSecret = "whsec_controller_test"
)

func setupControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// testAuth stands in for Authenticate: the subject comes from a header
func testAuth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetHeader(testSubjectHeader)
		if subject == "" {
			if required {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Next()
			return
		}
		middleware.SetIdentity(c, subject, &middleware.CustomClaims{
			Email: c.GetHeader("X-Test-Email"),
			Name:  c.GetHeader("X-Test-Name"),
		})
		c.Next()
	}
}

type testApp struct {
	db      *gorm.DB
	router  *gin.Engine
	gateway *services.MockPaymentGateway
	mailer  *services.MockMailer
	orders  *OrderController
}

func newTestApp(t *testing.T, gateway services.PaymentGateway) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupControllerTestDB(t)
	cfg := &config.Config{
		Currency:       "eur",
		PublicBaseURL:  "http://shop.test",
		PickupTimezone: "UTC",
		ItemImageDir:   t.TempDir(),
	}

	mock, _ := gateway.(*services.MockPaymentGateway)
	mailer := services.NewMockMailer()
	flashes := middleware.NewFlashStore(bytes.Repeat([]byte("f"), 32), false)
	customers := services.NewCustomerService(db, nil)
	fulfillment := services.NewFulfillmentService(db, services.NewEmailNotifier(mailer, time.UTC))
	orders := NewOrderController(db, gateway, customers, flashes, cfg)

	router := gin.New()
	router.SetHTMLTemplate(web.Templates(time.UTC))
	RegisterRoutes(router, &Handlers{
		Catalog:  NewCatalogController(db, services.NewItemImageService(nil), flashes, cfg.Currency),
		Orders:   orders,
		Payments: NewPaymentController(db, flashes),
		Webhooks: NewWebhookController(gateway, fulfillment, services.NewMemoryEventDeduper()),
		Images:   NewImageController(cfg.ItemImageDir),
		Users:    NewUserController(customers),
	}, RouteMiddleware{
		OptionalAuth: testAuth(false),
		RequireAuth:  testAuth(true),
	})

	return &testApp{db: db, router: router, gateway: mock, mailer: mailer, orders: orders}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) postForm(path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return a.do(req)
}

func createItem(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Item {
	t.Helper()
	item := &models.Item{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	return item
}

func createHub(t *testing.T, db *gorm.DB, name string, slots int) *models.PickupHub {
	t.Helper()
	hub := &models.PickupHub{Name: name, Address: name + " Street 1", TotalSlots: slots}
	if err := db.Create(hub).Error; err != nil {
		t.Fatalf("Failed to create hub: %v", err)
	}
	return hub
}

func newGetWithSubject(path, subject string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(testSubjectHeader, subject)
	return req
}
