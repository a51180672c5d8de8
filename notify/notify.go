// Package notify sends desktop notifications when long-running work finishes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jongio/logbar/logutil"
)

// Notification represents a notification to be displayed.
type Notification struct {
	// Title is the notification title (typically the task name)
	Title string

	// Message is the notification body
	Message string

	// Level selects a plain notification or an alert. Error and above alert.
	Level logutil.Level
}

// Notifier delivers notifications to the desktop.
type Notifier interface {
	// Send delivers notification, giving up when ctx is done or the configured timeout passes.
	Send(ctx context.Context, notification Notification) error
}

// Config contains notification system configuration.
type Config struct {
	// AppName prefixes titles so notifications can be traced back to the program
	AppName string

	// Timeout bounds a single Send
	Timeout time.Duration
}

// DefaultConfig returns default notification configuration.
func DefaultConfig() Config {
	return Config{
		AppName: "logbar",
		Timeout: 5 * time.Second,
	}
}

// Error types
var (
	ErrNotificationFailed = errors.New("failed to send notification")
	ErrTimeout            = errors.New("notification timeout")
)

// New creates a notifier backed by the platform notification daemon.
func New(config Config) Notifier {
	return newNotifier(config, beeepNotify, beeepAlert)
}

// Title formats the title shown for notification.
func (c Config) Title(n Notification) string {
	if c.AppName == "" {
		return n.Title
	}
	if n.Title == "" {
		return c.AppName
	}
	return fmt.Sprintf("%s: %s", c.AppName, n.Title)
}
