// Package notify alerts operators when analysis finds a strategy whose
// profit/loss curve is positive everywhere at mid prices. Alerts are
// dispatched to all configured channels (Telegram, Discord).
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/polyhedge/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches alerts to one or more Senders. A single sender failure
// does not prevent delivery to the remaining senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// AlertGuaranteed sends one alert per opportunity that contains at least one
// guaranteed-profit strategy. Opportunities without one are skipped.
func (n *Notifier) AlertGuaranteed(ctx context.Context, opps []domain.Opportunity) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, opp := range opps {
		guaranteed := guaranteedStrategies(opp)
		if len(guaranteed) == 0 {
			continue
		}
		title := fmt.Sprintf("Guaranteed profit: %s", opp.Pair.Binary.Title)
		if err := n.dispatch(ctx, title, formatAlert(opp, guaranteed)); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %s", strings.Join(errs, "; "))
	}
	return nil
}

// dispatch sends to every sender, collecting individual failures.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func guaranteedStrategies(opp domain.Opportunity) []*domain.Strategy {
	var out []*domain.Strategy
	for _, strat := range opp.Strategies {
		if strat.GuaranteedProfit() {
			out = append(out, strat)
		}
	}
	return out
}

// formatAlert renders a compact multi-line summary of the guaranteed
// strategies for one opportunity.
func formatAlert(opp domain.Opportunity, strategies []*domain.Strategy) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Market: %s\n", opp.Pair.Binary.Title)
	fmt.Fprintf(&b, "Expiration: %s\n", opp.Pair.Expiration.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "Spot: $%.0f | Prob gap: %.1f%%\n", opp.SpotPrice, opp.ProbabilityGap*100)

	for i, strat := range strategies {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, strat.Name)
		fmt.Fprintf(&b, "   Cost: $%.2f | Min profit: $%.2f | Max profit: $%.2f\n",
			strat.TotalCost, strat.MaxLoss, strat.MaxProfit)
		if strat.Execution != nil {
			if strat.Execution.Executable {
				b.WriteString("   Executable at current book depth\n")
			} else {
				b.WriteString("   NOT executable at current book depth\n")
			}
		}
	}

	return b.String()
}
