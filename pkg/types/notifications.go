package types

import (
	"context"
	"fmt"
)

// NotificationLevel mirrors toast variants.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a user-facing toast.
type Notification struct {
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
}

// Notifier delivers notifications. Implementations must not block the caller
// on delivery failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(context.Context, Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	if f != nil {
		f(ctx, n)
	}
}

// NopNotifier drops notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Notification) {}

// Notification titles surfaced by the store.
const (
	TitleSaveFailed         = "Failed to save view preferences"
	TitleNameExists         = "Name already exists"
	TitleNameRequired       = "Name required"
	TitleViewLimitReached   = "View limit reached"
	TitleViewSaved          = "View saved"
	TitleViewDeleted        = "View deleted"
	TitleDefaultViewSet     = "Default view set"
	TitleDefaultViewCleared = "Default view cleared"
	TitleResetComplete      = "Reset complete"
)

func SaveFailedNotification() Notification {
	return Notification{Level: NotificationError, Title: TitleSaveFailed}
}

func NameExistsNotification(name string) Notification {
	return Notification{
		Level:       NotificationError,
		Title:       TitleNameExists,
		Description: fmt.Sprintf("A view named %q already exists. Please choose a different name.", name),
	}
}

func NameRequiredNotification() Notification {
	return Notification{
		Level:       NotificationError,
		Title:       TitleNameRequired,
		Description: "Please enter a name for the view.",
	}
}

func ViewLimitNotification() Notification {
	return Notification{
		Level:       NotificationError,
		Title:       TitleViewLimitReached,
		Description: fmt.Sprintf("You can save up to %d views. Please delete an existing view first.", MaxSavedViews),
	}
}

func ViewSavedNotification(name string) Notification {
	return Notification{
		Level:       NotificationSuccess,
		Title:       TitleViewSaved,
		Description: fmt.Sprintf("%q has been saved", name),
	}
}

func ViewDeletedNotification(name string) Notification {
	return Notification{
		Level:       NotificationSuccess,
		Title:       TitleViewDeleted,
		Description: fmt.Sprintf("%q has been deleted", name),
	}
}

func DefaultViewNotification(name string) Notification {
	if name == "" {
		return Notification{
			Level:       NotificationSuccess,
			Title:       TitleDefaultViewCleared,
			Description: "No view will load automatically",
		}
	}
	return Notification{
		Level:       NotificationSuccess,
		Title:       TitleDefaultViewSet,
		Description: fmt.Sprintf("%q will load automatically", name),
	}
}

func ResetNotification() Notification {
	return Notification{
		Level:       NotificationSuccess,
		Title:       TitleResetComplete,
		Description: "View reset to default settings",
	}
}
