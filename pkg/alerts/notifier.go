package alerts

import (
	"context"
	"errors"

	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
)

// LogNotifier writes alerts to the log. It is the fallback when no webhook
// is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Deliver(_ context.Context, userID int64, alert *models.Alert) error {
	n.log.Warn().
		Int64("user_id", userID).
		Int64("alert_id", alert.ID).
		Str("kind", string(alert.Kind)).
		Str("severity", string(alert.Severity)).
		Msg(alert.Message)

	return nil
}

// MultiNotifier fans a delivery out to every notifier and joins their
// errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Deliver(ctx context.Context, userID int64, alert *models.Alert) error {
	var errs []error

	for _, n := range m {
		if err := n.Deliver(ctx, userID, alert); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
