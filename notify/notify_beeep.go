package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/jongio/logbar/logutil"
)

type sendFunc func(title, message string, icon any) error

func beeepNotify(title, message string, icon any) error { return beeep.Notify(title, message, icon) }
func beeepAlert(title, message string, icon any) error  { return beeep.Alert(title, message, icon) }

// beeepNotifier implements Notifier using the cross-platform beeep library.
type beeepNotifier struct {
	config Config
	notify sendFunc
	alert  sendFunc
}

func newNotifier(config Config, notify, alert sendFunc) *beeepNotifier {
	return &beeepNotifier{config: config, notify: notify, alert: alert}
}

// Send runs the beeep call on its own goroutine so a stuck notification daemon cannot
// hold up the caller past ctx or the configured timeout.
func (n *beeepNotifier) Send(ctx context.Context, notification Notification) error {
	if n.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.Timeout)
		defer cancel()
	}

	send := n.notify
	if notification.Level >= logutil.LevelError {
		send = n.alert
	}
	title := n.config.Title(notification)

	done := make(chan error, 1)
	go func() {
		done <- send(title, notification.Message, "")
	}()

	select {
	case err := <-done:
		if err != nil {
			logutil.Debug("notification failed", "title", title, "error", err)
			return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}
