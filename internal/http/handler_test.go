package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"household-tasks.com/household-tasks/internal/constants"
	"household-tasks.com/household-tasks/internal/gateway"
	model "household-tasks.com/household-tasks/internal/models"
	repository "household-tasks.com/household-tasks/internal/repositories"
	"household-tasks.com/household-tasks/internal/services"
)

type stubGateway struct {
	calls int
	err   error
}

func (s *stubGateway) Send(ctx context.Context, msg gateway.Message) (*gateway.Receipt, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &gateway.Receipt{SID: "SM_stub", Status: "queued"}, nil
}

type handlerFixture struct {
	echo      *echo.Echo
	handler   *Handler
	gateway   *stubGateway
	userRepo  *repository.UserRepository
	notifRepo *repository.NotificationRepository
	taskRepo  *repository.TaskRepository
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.Notification{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	gw := &stubGateway{}
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	dispatch := services.NewDispatchService(
		gw, userRepo, notifRepo, nil,
		"+15550000001", "", "https://tasks.example.com", time.UTC,
	)
	series := services.NewSeriesService(taskRepo, 3)
	taskService := services.NewTaskService(taskRepo, series)

	return &handlerFixture{
		echo:      echo.New(),
		handler:   NewHandler(taskService, dispatch, userRepo, notifRepo),
		gateway:   gw,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		taskRepo:  taskRepo,
	}
}

func TestWebhook_ReconcilesDeliveryStatus(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	user := &model.User{Name: "Dana", PhoneNumber: "+15551234567"}
	if err := f.userRepo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	n, err := f.notifRepo.Insert(ctx, uuid.NewString(), user.ID, "Reminder")
	if err != nil {
		t.Fatalf("insert notification: %v", err)
	}
	if err := f.notifRepo.RecordAttempt(ctx, n.ID, constants.DeliverySent, "SM_hook", ""); err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	form := url.Values{}
	form.Set("MessageSid", "SM_hook")
	form.Set("MessageStatus", "delivered")

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/webhook", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := f.handler.Webhook(f.echo.NewContext(req, rec)); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stored, _ := f.notifRepo.FindByID(ctx, n.ID)
	if stored.DeliveryStatus != constants.DeliveryDelivered {
		t.Errorf("expected status delivered, got %s", stored.DeliveryStatus)
	}
}

func TestWebhook_UnknownSidReturnsOK(t *testing.T) {
	f := newHandlerFixture(t)

	form := url.Values{}
	form.Set("MessageSid", "SM_unknown")
	form.Set("MessageStatus", "delivered")

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/webhook", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	if err := f.handler.Webhook(f.echo.NewContext(req, rec)); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("unknown callbacks must be acknowledged, got %d", rec.Code)
	}
}

func TestTestNotification_UnknownUser(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/test/missing", nil)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues("missing")

	err := f.handler.TestNotification(c)
	var httpErr *echo.HTTPError
	if err == nil || !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if f.gateway.calls != 0 {
		t.Errorf("gateway must not be called for unknown user, got %d calls", f.gateway.calls)
	}
}

func TestTestNotification_SendsAndReportsChannel(t *testing.T) {
	f := newHandlerFixture(t)
	ctx := context.Background()

	user := &model.User{Name: "Dana", PhoneNumber: "+15551234567", NotificationPreference: constants.ChannelSMS}
	if err := f.userRepo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/test/"+user.ID, nil)
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(user.ID)

	if err := f.handler.TestNotification(c); err != nil {
		t.Fatalf("test notification: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["success"] != true {
		t.Errorf("expected success response, got %v", body)
	}
	if body["channel"] != "sms" {
		t.Errorf("expected channel sms, got %v", body["channel"])
	}
	if f.gateway.calls != 1 {
		t.Errorf("expected 1 gateway call, got %d", f.gateway.calls)
	}
}

func TestCreateTask_RejectsInvalidPayload(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"title":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := f.handler.CreateTask(f.echo.NewContext(req, rec))
	var httpErr *echo.HTTPError
	if err == nil || !asHTTPError(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty title, got %v", err)
	}
}

func TestCreateTask_RecurringExpandsSeries(t *testing.T) {
	f := newHandlerFixture(t)

	payload := `{
		"title": "Water plants",
		"priority": "low",
		"due_date": "2024-01-01T18:00:00Z",
		"is_recurring": true,
		"recurrence_pattern": "weekly",
		"recurrence_end_date": "2024-01-22T18:00:00Z"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := f.handler.CreateTask(f.echo.NewContext(req, rec)); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	tasks, err := f.taskRepo.List(context.Background())
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	// Parent plus three weekly occurrences up to the end date.
	if len(tasks) != 4 {
		t.Errorf("expected 4 tasks after expansion, got %d", len(tasks))
	}
}

func asHTTPError(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}
