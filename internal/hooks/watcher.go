package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/omahs/claims-hatter/internal/events"
	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/store"
)

// Watcher consumes registry transfer events and records an audit entry
// against every gate whose hat, or admin hat, was minted.
type Watcher struct {
	store  store.Store
	logger *slog.Logger

	// Optional shell command run once per affected gate. The command sees
	// the gate and mint details in HATTER_GATE, HATTER_HAT, and
	// HATTER_WEARER environment variables.
	notifyCommand string
	notifyTimeout int
}

// NewWatcher creates a watcher backed by the given store.
func NewWatcher(s store.Store, logger *slog.Logger) *Watcher {
	return &Watcher{store: s, logger: logger}
}

// SetNotifyCommand configures a shell command to run for each affected gate.
func (w *Watcher) SetNotifyCommand(command string, timeoutSec int) {
	w.notifyCommand = command
	w.notifyTimeout = timeoutSec
}

// HandleMint records the mint against every gate it affects. A mint of hat H
// touches a gate G when H is G's hat (someone new wears the gated hat) or
// H is the admin of G's hat (someone gained authority over the gate).
// Returns the number of gates recorded.
func (w *Watcher) HandleMint(ctx context.Context, ev events.HatMinted) (int, error) {
	if !ev.Hat.IsValid() || ev.To == "" {
		return 0, nil
	}

	gates, _, err := w.store.ListGates(ctx, model.GateFilter{})
	if err != nil {
		return 0, fmt.Errorf("hooks: list gates: %w", err)
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("hooks: marshal mint event: %w", err)
	}

	recorded := 0
	for _, gate := range gates {
		if ev.Hat != gate.Hat && ev.Hat != gate.Hat.Admin() {
			continue
		}

		if err := w.store.RecordEvent(ctx, &model.AuditEvent{
			Topic:   events.TopicHatMinted,
			GateID:  gate.ID,
			Actor:   ev.To,
			Payload: payload,
		}); err != nil {
			w.logger.Error("hooks: failed to record mint", "gate", gate.ID, "err", err)
			continue
		}
		recorded++

		if w.notifyCommand != "" {
			env := map[string]string{
				"HATTER_GATE":   gate.ID,
				"HATTER_HAT":    string(ev.Hat),
				"HATTER_WEARER": ev.To,
			}
			result := Execute(ctx, w.notifyCommand, w.notifyTimeout, "", env)
			if result.Err != nil {
				w.logger.Warn("hooks: notify command failed",
					"gate", gate.ID, "err", result.Err, "output", result.Output)
			}
		}

		w.logger.Info("hooks: recorded registry mint",
			"gate", gate.ID, "hat", ev.Hat, "wearer", ev.To)
	}

	return recorded, nil
}

// StartSubscriber listens for registry transfer events on the event bus and
// records them against affected gates. It blocks until ctx is cancelled.
func (w *Watcher) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicHatAll)
	if err != nil {
		return fmt.Errorf("hooks: subscribe: %w", err)
	}
	defer cancel()

	w.logger.Info("hooks: registry watcher started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("hooks: registry watcher stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				w.logger.Info("hooks: subscription channel closed")
				return nil
			}

			var ev events.HatMinted
			if err := json.Unmarshal(raw, &ev); err != nil {
				w.logger.Warn("hooks: bad event payload", "err", err)
				continue
			}

			if _, err := w.HandleMint(ctx, ev); err != nil {
				w.logger.Error("hooks: mint handling failed", "err", err)
			}
		}
	}
}
