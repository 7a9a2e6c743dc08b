package repository

import (
	"context"
	"testing"

	"household-tasks.com/household-tasks/internal/constants"
	model "household-tasks.com/household-tasks/internal/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, want string }{
		{"+15551234567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"  15551234567 ", "+15551234567"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCreateUser_Defaults(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &model.User{Name: "Noam", Color: "#2E8B57", PhoneNumber: "15551234567"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	stored, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.PhoneNumber != "+15551234567" {
		t.Errorf("expected normalized phone, got %q", stored.PhoneNumber)
	}
	if stored.NotificationPreference != constants.ChannelSMS {
		t.Errorf("expected default preference sms, got %s", stored.NotificationPreference)
	}
}

func TestUpdatePreference_LastWriteWins(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &model.User{Name: "Noam", PhoneNumber: "+15551234567", NotificationPreference: constants.ChannelWhatsApp}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := repo.UpdatePreference(ctx, user.ID, constants.ChannelSMS); err != nil {
		t.Fatalf("update preference: %v", err)
	}
	if err := repo.UpdatePreference(ctx, user.ID, constants.ChannelWhatsApp); err != nil {
		t.Fatalf("update preference: %v", err)
	}

	stored, _ := repo.FindByID(ctx, user.ID)
	if stored.NotificationPreference != constants.ChannelWhatsApp {
		t.Errorf("expected latest write to win, got %s", stored.NotificationPreference)
	}
}
