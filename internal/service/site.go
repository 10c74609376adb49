package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/access"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/apperror"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/events"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/model"
	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/repository"
)

// =========================================================================
// CONTACT MESSAGES
// =========================================================================

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,max=5000"`
}

type MessageService struct {
	messages repository.MessageRepository
	events   events.Publisher
	logger   *slog.Logger
}

func NewMessageService(messages repository.MessageRepository, publisher events.Publisher, logger *slog.Logger) *MessageService {
	return &MessageService{messages: messages, events: publisher, logger: logger}
}

// Submit stores a contact form submission. Anyone may submit.
func (s *MessageService) Submit(ctx context.Context, in ContactInput) (*model.ContactMessage, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	m := &model.ContactMessage{Name: in.Name, Email: in.Email, Message: in.Message}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, storeErr("saving message", err)
	}
	s.logger.Info("contact message received", slog.String("id", m.ID))

	e := events.Event{Type: events.ChannelContactReceived, ID: m.ID, Attributes: map[string]string{"name": m.Name}}
	if err := s.events.Publish(ctx, e); err != nil {
		s.logger.Warn("publish failed", slog.String("channel", e.Type), slog.String("error", err.Error()))
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, session *access.Session, opts repository.ListOptions) ([]model.ContactMessage, error) {
	if !access.CanManage(session, access.CollectionMessages) {
		return nil, apperror.Forbidden("only admins can read messages")
	}
	out, err := s.messages.List(ctx, opts)
	if err != nil {
		return nil, storeErr("listing messages", err)
	}
	return out, nil
}

func (s *MessageService) Delete(ctx context.Context, session *access.Session, id string) error {
	if !access.CanManage(session, access.CollectionMessages) {
		return apperror.Forbidden("only admins can delete messages")
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return storeErr("deleting message", err)
	}
	return nil
}

// =========================================================================
// SITE SETTINGS
// =========================================================================

type SettingsService struct {
	settings repository.SettingsRepository
	logger   *slog.Logger
}

func NewSettingsService(settings repository.SettingsRepository, logger *slog.Logger) *SettingsService {
	return &SettingsService{settings: settings, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (*model.SiteSettings, error) {
	out, err := s.settings.Get(ctx)
	if err != nil {
		return nil, storeErr("reading settings", err)
	}
	return out, nil
}

// Save replaces the whole settings document. Admin only.
func (s *SettingsService) Save(ctx context.Context, session *access.Session, in model.SiteSettings) (*model.SiteSettings, error) {
	if !access.CanManage(session, access.CollectionSettings) {
		return nil, apperror.Forbidden("only admins can change site settings")
	}
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if err := s.settings.Save(ctx, &in); err != nil {
		return nil, storeErr("saving settings", err)
	}
	s.logger.Info("site settings saved", slog.String("by", session.UserID()))
	return &in, nil
}

// =========================================================================
// NOTIFICATIONS
// =========================================================================

// NotificationWindow is how long a notification stays in the public panel.
const NotificationWindow = 12 * time.Hour

type NotificationService struct {
	notifications repository.NotificationRepository
	now           func() time.Time
	logger        *slog.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, now: time.Now, logger: logger}
}

// Recent returns the notifications inside the window, newest first.
func (s *NotificationService) Recent(ctx context.Context) ([]model.Notification, error) {
	out, err := s.notifications.ListSince(ctx, s.now().Add(-NotificationWindow))
	if err != nil {
		return nil, storeErr("listing notifications", err)
	}
	return out, nil
}

// Prune deletes notifications that have aged out of the window.
func (s *NotificationService) Prune(ctx context.Context) (int64, error) {
	n, err := s.notifications.DeleteBefore(ctx, s.now().Add(-NotificationWindow))
	if err != nil {
		return 0, storeErr("pruning notifications", err)
	}
	if n > 0 {
		s.logger.Info("notifications pruned", slog.Int64("count", n))
	}
	return n, nil
}

// =========================================================================
// VISITORS
// =========================================================================

const visitorCounter = "visitors"

// VisitorService counts site visits on whichever counter it is given: redis
// when configured, the record store otherwise.
type VisitorService struct {
	counter repository.Counter
	logger  *slog.Logger
}

func NewVisitorService(counter repository.Counter, logger *slog.Logger) *VisitorService {
	return &VisitorService{counter: counter, logger: logger}
}

func (s *VisitorService) Visit(ctx context.Context) (int64, error) {
	n, err := s.counter.Increment(ctx, visitorCounter)
	if err != nil {
		return 0, apperror.Unavailable("visitor counter", err)
	}
	return n, nil
}

// Count reads the visitor count. A failing counter reads as zero; the count
// is decoration and must not break the page it sits on.
func (s *VisitorService) Count(ctx context.Context) int64 {
	n, err := s.counter.Get(ctx, visitorCounter)
	if err != nil {
		s.logger.Warn("visitor count unavailable", slog.String("error", err.Error()))
		return 0
	}
	return n
}
