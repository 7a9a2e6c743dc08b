package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTwilioClient_SendSuccess(t *testing.T) {
	var captured *http.Request
	var capturedForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		capturedForm = map[string]string{
			"To":             r.PostFormValue("To"),
			"From":           r.PostFormValue("From"),
			"Body":           r.PostFormValue("Body"),
			"StatusCallback": r.PostFormValue("StatusCallback"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM_abc123","status":"queued"}`))
	}))
	defer srv.Close()

	client := NewTwilioClient("AC_test_sid", "test_token").WithAPIBase(srv.URL)

	receipt, err := client.Send(context.Background(), Message{
		To:             "+15551234567",
		From:           "+15550000001",
		Body:           `Reminder for Dana: Task "Dishes" is due soon.`,
		StatusCallback: "https://tasks.example.com/api/notifications/webhook",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if receipt.SID != "SM_abc123" || receipt.Status != "queued" {
		t.Errorf("unexpected receipt %+v", receipt)
	}

	if got := captured.URL.Path; got != "/2010-04-01/Accounts/AC_test_sid/Messages.json" {
		t.Errorf("unexpected request path %q", got)
	}
	user, pass, ok := captured.BasicAuth()
	if !ok || user != "AC_test_sid" || pass != "test_token" {
		t.Error("expected basic auth with account sid and token")
	}
	if capturedForm["To"] != "+15551234567" || capturedForm["StatusCallback"] == "" {
		t.Errorf("unexpected form payload %v", capturedForm)
	}
}

func TestTwilioClient_SendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":63007,"status":400,"message":"Twilio could not find a Channel with the specified From address"}`))
	}))
	defer srv.Close()

	client := NewTwilioClient("AC_test_sid", "test_token").WithAPIBase(srv.URL)

	_, err := client.Send(context.Background(), Message{To: "whatsapp:+15551234567", From: "whatsapp:+15550000001", Body: "hi"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Code != CodeWhatsAppNotReachable {
		t.Errorf("expected code %d, got %d", CodeWhatsAppNotReachable, provErr.Code)
	}
	if provErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", provErr.Status)
	}
	if got := provErr.Error(); got != "63007: Twilio could not find a Channel with the specified From address" {
		t.Errorf("unexpected error rendering %q", got)
	}
}

func TestTwilioClient_SendErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewTwilioClient("AC_test_sid", "test_token").WithAPIBase(srv.URL)

	_, err := client.Send(context.Background(), Message{To: "+15551234567", From: "+15550000001", Body: "hi"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", provErr.Status)
	}
	if provErr.Message == "" {
		t.Error("expected a synthesized error message")
	}
}

func TestTwilioClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewTwilioClient("AC_test_sid", "test_token").WithAPIBase(srv.URL)

	_, err := client.Send(context.Background(), Message{To: "+15551234567", From: "+15550000001", Body: "hi"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 for transport failure, got %d", provErr.Status)
	}
}
