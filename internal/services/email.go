package services

import (
	"context"
	"fmt"

	"skillup-go/internal/models"
	"skillup-go/internal/repository"

	"go.uber.org/zap"
)

// EmailService delivers user messages as in-app notifications and email.
// Email delivery is a placeholder that logs the message.
type EmailService struct {
	log   *zap.Logger
	store *repository.Store
}

func NewEmailService(log *zap.Logger, store *repository.Store) *EmailService {
	return &EmailService{log: log.Named("email"), store: store}
}

// Notify stores a notification for the user and emails the same text.
func (s *EmailService) Notify(ctx context.Context, user *models.User, subject, message string) error {
	uow := s.store.UnitOfWork()
	uow.Notifications.Add(&models.Notification{
		UserID:  user.ID,
		Subject: subject,
		Message: message,
	})
	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.sendEmail(user, subject)
	return nil
}

func (s *EmailService) sendEmail(user *models.User, subject string) {
	// TODO: replace with an SMTP client once mail credentials are provisioned.
	s.log.Info("Sending email",
		zap.String("to", user.Email),
		zap.String("name", user.FirstName),
		zap.String("subject", subject),
	)
}
