/**
 * @description
 * Notification fan-out and the recipient-facing notification operations.
 * Every mutation that concerns a user persists a notification row and then
 * publishes a matching event to the broker; the publish is best-effort and a
 * broker failure never fails the originating operation.
 */

package app

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/pkg/rabbitmq"
)

// notify persists one notification and pushes the live event.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	if err := s.repo.CreateNotification(ctx, &n); err != nil {
		log.Printf("level=error component=notifications msg=\"failed to persist notification\" recipient_id=%s type=%s err=%v",
			n.RecipientID, n.Type, err)
		return
	}
	if s.producer == nil {
		return
	}
	event := domain.NotificationCreatedEvent{
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           n.Type,
		Title:          n.Title,
		CreatedAt:      n.CreatedAt,
	}
	if err := s.producer.Publish(ctx, rabbitmq.EventsExchange, "notification.created", event); err != nil {
		log.Printf("level=warn component=notifications msg=\"live push failed; persisted row remains\" notification_id=%s err=%v",
			n.ID, err)
	}
}

// notifyCountyAdmins fans one informational notification out to every
// approved admin of the given county.
func (s *Service) notifyCountyAdmins(ctx context.Context, county string, template domain.Notification) {
	admins, err := s.repo.ListAdminsByCounty(ctx, county)
	if err != nil {
		log.Printf("level=warn component=notifications msg=\"county admin fan-out skipped\" county=%s err=%v", county, err)
		return
	}
	for _, admin := range admins {
		n := template
		n.RecipientID = admin.ID
		s.notify(ctx, n)
	}
}

// notifyNLCAdmins fans one informational notification out to every active
// NLC admin.
func (s *Service) notifyNLCAdmins(ctx context.Context, template domain.Notification) {
	admins, err := s.repo.ListAdminsByRole(ctx, domain.RoleNLCAdmin)
	if err != nil {
		log.Printf("level=warn component=notifications msg=\"nlc admin fan-out skipped\" err=%v", err)
		return
	}
	for _, admin := range admins {
		n := template
		n.RecipientID = admin.ID
		s.notify(ctx, n)
	}
}

// ListNotifications returns the caller's notifications.
func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, opts domain.NotificationListOptions) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, opts)
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	return s.repo.MarkNotificationRead(ctx, userID, notificationID)
}

// MarkAllNotificationsRead marks everything unread as read and returns the count.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

// UnreadNotificationCount returns the caller's unread badge count.
func (s *Service) UnreadNotificationCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnreadNotifications(ctx, userID)
}
