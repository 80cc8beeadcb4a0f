package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightwave-link/lightwave-go/pkg/model"
	"github.com/lightwave-link/lightwave-go/pkg/wire"
)

// GroupReadOptions selects which group contents a group read returns.
type GroupReadOptions struct {
	Blocks        bool
	Devices       bool
	Features      bool
	Scripts       bool
	Subgroups     bool
	SubgroupDepth int
}

// DefaultGroupReadOptions requests everything, ten subgroup levels deep.
func DefaultGroupReadOptions() GroupReadOptions {
	return GroupReadOptions{
		Blocks:        true,
		Devices:       true,
		Features:      true,
		Scripts:       true,
		Subgroups:     true,
		SubgroupDepth: 10,
	}
}

// groupReadResult is the per-group payload of a group read response. The
// service keys devices and features by their ids.
type groupReadResult struct {
	Devices  map[string]*model.Device  `json:"devices"`
	Features map[string]*model.Feature `json:"features"`
}

// Authenticate presents the bearer token obtained from the HTTP login
// exchange. It must succeed before any other operation.
func (s *Session) Authenticate(ctx context.Context, token string) error {
	item, err := s.newItem(&wire.AuthenticatePayload{
		ClientDeviceID: s.clientDeviceID,
		Token:          token,
	})
	if err != nil {
		return err
	}

	msg := wire.NewRequest(s.seq, wire.ClassUser, wire.OpAuthenticate, []wire.Item{item})
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return err
	}

	for _, item := range resp.Items {
		if !item.Succeeded() {
			return itemFailure("authenticate", item)
		}
	}

	s.logger.Info("authenticated", "senderId", s.seq.SenderID())
	return nil
}

// ReadRootGroups lists the account's root group ids and chains a group
// read and a hierarchy read over every discovered id, so one call fully
// primes the entity store. Returns the discovered group ids.
func (s *Session) ReadRootGroups(ctx context.Context) ([]string, error) {
	item, err := s.newItem(nil)
	if err != nil {
		return nil, err
	}

	msg := wire.NewRequest(s.seq, wire.ClassUser, wire.OpRootGroups, []wire.Item{item})
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return nil, err
	}

	var groupIDs []string
	for _, item := range resp.Items {
		if !item.Succeeded() {
			return nil, itemFailure("read root groups", item)
		}
		var result wire.RootGroupsResult
		if err := item.DecodePayload(&result); err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, result.GroupIDs...)
	}

	if len(groupIDs) == 0 {
		return nil, nil
	}
	if err := s.ReadGroups(ctx, groupIDs, DefaultGroupReadOptions()); err != nil {
		return groupIDs, err
	}
	if err := s.ReadHierarchy(ctx, groupIDs); err != nil {
		return groupIDs, err
	}
	return groupIDs, nil
}

// ReadGroups reads the contents of the given groups, one request item per
// group id, and merges the reported devices and features into the store.
// A failing item is reported but does not discard the succeeding items'
// results.
func (s *Session) ReadGroups(ctx context.Context, groupIDs []string, opts GroupReadOptions) error {
	if len(groupIDs) == 0 {
		return nil
	}

	items := make([]wire.Item, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		item, err := s.newItem(&wire.GroupReadPayload{
			GroupID:       groupID,
			Blocks:        opts.Blocks,
			Devices:       opts.Devices,
			Features:      opts.Features,
			Scripts:       opts.Scripts,
			Subgroups:     opts.Subgroups,
			SubgroupDepth: opts.SubgroupDepth,
		})
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	msg := wire.NewRequest(s.seq, wire.ClassGroup, wire.OpRead, items)
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return err
	}

	var failures []error
	for _, item := range resp.Items {
		if !item.Succeeded() {
			failures = append(failures, itemFailure("read groups", item))
			continue
		}
		var result groupReadResult
		if err := item.DecodePayload(&result); err != nil {
			failures = append(failures, err)
			continue
		}
		s.store.UpsertDevices(result.Devices)
		s.store.UpsertFeatures(result.Features)
	}

	devices, features := s.store.Len()
	s.logger.Debug("group read applied", "devices", devices, "features", features)
	return errors.Join(failures...)
}

// ReadHierarchy reads the group hierarchy, one request item per group id,
// and replaces the display-name mapping in full. The hierarchy is the
// only place the service exposes user-assigned feature-set names.
func (s *Session) ReadHierarchy(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}

	items := make([]wire.Item, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		item, err := s.newItem(&wire.HierarchyPayload{GroupID: groupID})
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	msg := wire.NewRequest(s.seq, wire.ClassGroup, wire.OpHierarchy, items)
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return err
	}

	names := make(map[string]string)
	var failures []error
	for _, item := range resp.Items {
		if !item.Succeeded() {
			failures = append(failures, itemFailure("read hierarchy", item))
			continue
		}
		var result wire.HierarchyResult
		if err := item.DecodePayload(&result); err != nil {
			failures = append(failures, err)
			continue
		}
		for featureID, name := range result.DisplayNames() {
			names[featureID] = name
		}
	}

	if len(failures) == len(resp.Items) {
		// Nothing succeeded: keep the previous mapping.
		return errors.Join(failures...)
	}

	s.store.ReplaceDisplayNames(names)
	s.logger.Debug("display names replaced", "count", len(names))
	return errors.Join(failures...)
}

// ReadFeature reads the current value of one feature and records it in
// the store. Exactly one feature per call: the response comes back
// without a usable transaction id, and item correlation is only
// unambiguous for single-item requests.
func (s *Session) ReadFeature(ctx context.Context, featureID string) (int, error) {
	item, err := s.newItem(&wire.FeatureReadPayload{FeatureID: featureID})
	if err != nil {
		return 0, err
	}

	msg := wire.NewRequest(s.seq, wire.ClassFeature, wire.OpRead, []wire.Item{item})
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return 0, err
	}

	for _, item := range resp.Items {
		if !item.Succeeded() {
			return 0, itemFailure(fmt.Sprintf("read feature %s", featureID), item)
		}
		var result wire.FeatureResult
		if err := item.DecodePayload(&result); err != nil {
			return 0, err
		}
		s.store.UpdateFeatureValue(featureID, result.Value, result.Status)
		return result.Value, nil
	}
	return 0, fmt.Errorf("read feature %s: empty response", featureID)
}

// WriteFeature sets the value of one feature. Exactly one feature per
// call, for the same correlation reason as ReadFeature. The store is not
// updated here; the service confirms the new value through an event
// notification.
func (s *Session) WriteFeature(ctx context.Context, featureID string, value int) error {
	item, err := s.newItem(&wire.FeatureWritePayload{FeatureID: featureID, Value: value})
	if err != nil {
		return err
	}

	msg := wire.NewRequest(s.seq, wire.ClassFeature, wire.OpWrite, []wire.Item{item})
	resp, err := s.roundTrip(ctx, msg)
	if err != nil {
		return err
	}

	for _, item := range resp.Items {
		if !item.Succeeded() {
			return itemFailure(fmt.Sprintf("write feature %s", featureID), item)
		}
	}

	s.logger.Debug("feature written", "featureId", featureID, "value", value)
	return nil
}
