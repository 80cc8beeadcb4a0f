package session

import (
	"context"
	"time"

	"github.com/lightwave-link/lightwave-go/pkg/model"
	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// groupUpdateTimeout bounds the background root-group re-read triggered
// by a group/update notification.
const groupUpdateTimeout = 30 * time.Second

// handleEvent processes a feature event notification: update the mirrored
// value and surface a human-readable record. Runs on the dispatch
// goroutine. Unknown feature ids are ignored; events can outrun the group
// read that would introduce the feature.
func (s *Session) handleEvent(msg *wire.Message) {
	for _, item := range msg.Items {
		var payload wire.EventPayload
		if err := item.DecodePayload(&payload); err != nil {
			s.logger.Debug("ignoring undecodable event item", "itemId", item.ItemID, "error", err)
			continue
		}

		feature, ok := s.store.Feature(payload.FeatureID)
		if !ok {
			continue
		}
		s.store.UpdateFeatureValue(payload.FeatureID, payload.Value, "")

		event := model.FeatureEvent{
			FeatureID: payload.FeatureID,
			Value:     payload.Value,
		}
		if feature.Attributes != nil {
			event.AttributeType = feature.Attributes.Type
			event.DisplayName = feature.Attributes.Name
		}
		if name, ok := s.store.DisplayName(payload.FeatureID); ok {
			event.DisplayName = name
		}

		s.logger.Info("feature event",
			"name", event.DisplayName,
			"attribute", event.AttributeType,
			"value", event.Value,
		)

		s.mu.RLock()
		fn := s.onEvent
		s.mu.RUnlock()
		if fn != nil {
			fn(event)
		}
	}
}

// handleGroupUpdate reacts to a group/update notification by re-reading
// the root groups in the background. The re-read must leave the dispatch
// goroutine: it issues requests whose responses arrive through the very
// loop that delivered the notification.
func (s *Session) handleGroupUpdate() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), groupUpdateTimeout)
		defer cancel()

		if _, err := s.ReadRootGroups(ctx); err != nil {
			s.logger.Warn("root group re-read after group update failed", "error", err)
		}
	}()
}
