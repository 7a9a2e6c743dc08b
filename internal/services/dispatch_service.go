package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"household-tasks.com/household-tasks/internal/constants"
	"household-tasks.com/household-tasks/internal/dedupe"
	apperrors "household-tasks.com/household-tasks/internal/errors"
	"household-tasks.com/household-tasks/internal/gateway"
	model "household-tasks.com/household-tasks/internal/models"
	repository "household-tasks.com/household-tasks/internal/repositories"
)

// DispatchResult describes what actually happened to one reminder dispatch:
// the channel used, the provider id when the send was accepted, and whether
// the attempt fell back from the preferred channel.
type DispatchResult struct {
	Status     constants.DeliveryStatus `json:"status"`
	Channel    constants.Channel        `json:"channel"`
	ProviderID string                   `json:"provider_id,omitempty"`
	Fallback   bool                     `json:"fallback"`
}

// DispatchService formats reminder messages, chooses a delivery channel,
// attempts delivery with one level of automatic fallback, and persists every
// outcome to the ledger.
type DispatchService struct {
	gateway      gateway.Client
	userRepo     *repository.UserRepository
	notifRepo    *repository.NotificationRepository
	marker       dedupe.Marker
	fromNumber   string
	whatsAppFrom string
	callbackURL  string
	timeZone     *time.Location
}

func NewDispatchService(
	gw gateway.Client,
	userRepo *repository.UserRepository,
	notifRepo *repository.NotificationRepository,
	marker dedupe.Marker,
	fromNumber string,
	whatsAppFrom string,
	baseURL string,
	timeZone *time.Location,
) *DispatchService {
	return &DispatchService{
		gateway:      gw,
		userRepo:     userRepo,
		notifRepo:    notifRepo,
		marker:       marker,
		fromNumber:   fromNumber,
		whatsAppFrom: whatsAppFrom,
		callbackURL:  strings.TrimSuffix(baseURL, "/") + "/api/notifications/webhook",
		timeZone:     timeZone,
	}
}

// FormatReminder renders the reminder body. The due date is converted into
// the configured local zone; without one the task is due "soon".
func (s *DispatchService) FormatReminder(task *model.Task, user *model.User) string {
	due := "soon"
	if task.DueDate != nil {
		due = "on " + task.DueDate.In(s.timeZone).Format("Jan 2")
	}
	msg := fmt.Sprintf("Reminder for %s: Task %q is due %s.", user.Name, task.Title, due)
	if task.Description != "" {
		msg += " " + task.Description
	}
	return msg
}

// DispatchReminder runs the channel-selection state machine for one ledger
// row. The row must already exist; every exit path records an attempt on it.
func (s *DispatchService) DispatchReminder(ctx context.Context, task *model.Task, user *model.User, notificationID string) (*DispatchResult, error) {
	phone := repository.NormalizePhone(user.PhoneNumber)
	if phone == "" {
		if err := s.notifRepo.RecordAttempt(ctx, notificationID, constants.DeliveryFailed, "", apperrors.ErrNoPhoneNumber.Message); err != nil {
			log.Printf("dispatch: record missing-phone failure for notification %s: %v", notificationID, err)
		}
		return nil, apperrors.ErrNoPhoneNumber
	}

	body := s.FormatReminder(task, user)

	selected := user.NotificationPreference
	if !selected.Valid() {
		selected = constants.ChannelSMS
	}
	fallback := false

	// WhatsApp needs a configured sending identity. Without one the user's
	// stored preference is permanently downgraded so every future reminder
	// skips the dead channel.
	if selected == constants.ChannelWhatsApp && s.whatsAppFrom == "" {
		log.Printf("dispatch: whatsapp not configured, falling back to sms for user %s", user.ID)
		if err := s.notifRepo.RecordAttempt(ctx, notificationID, constants.DeliveryPending, "", "WhatsApp not configured, falling back to SMS"); err != nil {
			log.Printf("dispatch: record fallback note for notification %s: %v", notificationID, err)
		}
		s.downgradePreference(ctx, user)
		selected = constants.ChannelSMS
		fallback = true
	}

	// Two attempts at most: the preferred channel, plus one SMS retry after
	// a WhatsApp-specific rejection.
	for {
		receipt, err := s.gateway.Send(ctx, gateway.Message{
			To:             s.formatAddress(selected, phone),
			From:           s.fromAddress(selected),
			Body:           body,
			StatusCallback: s.callbackURL,
		})
		if err == nil {
			status := normalizeInitialStatus(receipt.Status)
			if recErr := s.notifRepo.RecordAttempt(ctx, notificationID, status, receipt.SID, ""); recErr != nil {
				log.Printf("dispatch: record success for notification %s: %v", notificationID, recErr)
			}
			return &DispatchResult{
				Status:     status,
				Channel:    selected,
				ProviderID: receipt.SID,
				Fallback:   fallback,
			}, nil
		}

		var provErr *gateway.ProviderError
		if errors.As(err, &provErr) &&
			provErr.Code == gateway.CodeWhatsAppNotReachable &&
			selected == constants.ChannelWhatsApp && !fallback {
			log.Printf("dispatch: whatsapp unreachable for user %s (%d), retrying via sms", user.ID, provErr.Code)
			s.downgradePreference(ctx, user)
			selected = constants.ChannelSMS
			fallback = true
			continue
		}

		if recErr := s.notifRepo.RecordAttempt(ctx, notificationID, constants.DeliveryFailed, "", err.Error()); recErr != nil {
			log.Printf("dispatch: record failure for notification %s: %v", notificationID, recErr)
		}
		return nil, err
	}
}

// Reconcile applies an asynchronous provider status callback to the ledger.
// Unknown provider ids are dropped silently: callbacks can race ahead of the
// initial ledger write or belong to messages outside our retention.
func (s *DispatchService) Reconcile(ctx context.Context, providerID string, status constants.DeliveryStatus, errorCode, errorMessage string) error {
	if providerID == "" {
		return nil
	}

	if s.marker != nil {
		first, err := s.marker.FirstSeen(ctx, providerID+"/"+string(status))
		if err != nil {
			// A marker outage degrades to at-least-once reconciliation.
			log.Printf("reconcile: dedupe marker unavailable for %s: %v", providerID, err)
		} else if !first {
			return nil
		}
	}

	n, err := s.notifRepo.FindByProviderID(ctx, providerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotificationNotFound) {
			return nil
		}
		return err
	}

	var deliveryErr string
	if errorCode != "" {
		deliveryErr = fmt.Sprintf("%s: %s", errorCode, errorMessage)
	}

	return s.notifRepo.RecordAttempt(ctx, n.ID, status, providerID, deliveryErr)
}

func (s *DispatchService) downgradePreference(ctx context.Context, user *model.User) {
	if err := s.userRepo.UpdatePreference(ctx, user.ID, constants.ChannelSMS); err != nil {
		log.Printf("dispatch: persist sms downgrade for user %s: %v", user.ID, err)
	}
	user.NotificationPreference = constants.ChannelSMS
}

func (s *DispatchService) formatAddress(channel constants.Channel, phone string) string {
	if channel == constants.ChannelWhatsApp {
		return "whatsapp:" + phone
	}
	return phone
}

func (s *DispatchService) fromAddress(channel constants.Channel) string {
	if channel == constants.ChannelWhatsApp {
		return "whatsapp:" + s.whatsAppFrom
	}
	return s.fromNumber
}

// normalizeInitialStatus maps the provider's synchronous "queued" answer to
// the ledger's "sent"; later callbacks refine it.
func normalizeInitialStatus(status string) constants.DeliveryStatus {
	switch status {
	case "queued", "accepted", "sent", "":
		return constants.DeliverySent
	case "delivered":
		return constants.DeliveryDelivered
	case "failed", "undelivered":
		return constants.DeliveryFailed
	default:
		return constants.DeliveryStatus(status)
	}
}
