package eventstore

import (
	"context"

	"github.com/streamforge/eventstore-go/protos/persistent"
	"github.com/streamforge/eventstore-go/protos/shared"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// Persistent-subscription admin calls (create/update/delete) carry a fixed
// deadline (see envelope.go) and dual-write the starting position: the new
// Stream/All oneof for current servers, and the deprecated scalar
// Settings.Revision for servers predating stream_option/all_option.

// CreatePersistentSubscription creates a persistent subscription group on
// a single stream.
func (c *Client) CreatePersistentSubscription(
	ctx context.Context,
	stream, groupName string,
	from StreamPosition,
	settings PersistentSubscriptionSettings,
	creds *Credentials,
) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	streamOpts := &persistent.CreateReqStreamOptions{StreamIdentifier: streamIdentifier(stream)}
	applyPersistentStreamStart(streamOpts, from)

	wireSettings := settingsToWire(settings)
	wireSettings.Revision = psToDeprecatedRevisionValue(from)

	_, err = pc.Create(ctx, &persistent.CreateReq{Options: &persistent.CreateReqOptions{
		Stream:    streamOpts,
		GroupName: groupName,
		Settings:  wireSettings,
	}})
	return classifyGrpcErr(err)
}

// CreatePersistentSubscriptionToAll creates a persistent subscription
// group on $all, optionally filtered.
func (c *Client) CreatePersistentSubscriptionToAll(
	ctx context.Context,
	groupName string,
	from StreamPosition,
	filter *SubscriptionFilter,
	settings PersistentSubscriptionSettings,
	creds *Credentials,
) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	allOpts := &persistent.CreateReqAllOptions{}
	applyPersistentAllStart(allOpts, from)
	if fo, ok := filterIntoProto(filter); ok {
		allOpts.Filter = fo
	} else {
		allOpts.NoFilter = &shared.Empty{}
	}

	wireSettings := settingsToWire(settings)
	wireSettings.Revision = psToDeprecatedRevisionValueAll(from)

	_, err = pc.Create(ctx, &persistent.CreateReq{Options: &persistent.CreateReqOptions{
		All:       allOpts,
		GroupName: groupName,
		Settings:  wireSettings,
	}})
	return classifyGrpcErr(err)
}

// UpdatePersistentSubscription updates an existing single-stream group.
func (c *Client) UpdatePersistentSubscription(
	ctx context.Context,
	stream, groupName string,
	from StreamPosition,
	settings PersistentSubscriptionSettings,
	creds *Credentials,
) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	streamOpts := &persistent.UpdateReqStreamOptions{StreamIdentifier: streamIdentifier(stream)}
	applyPersistentUpdateStreamStart(streamOpts, from)

	wireSettings := settingsToWire(settings)
	wireSettings.Revision = psToDeprecatedRevisionValue(from)

	_, err = pc.Update(ctx, &persistent.UpdateReq{Options: &persistent.UpdateReqOptions{
		Stream:    streamOpts,
		GroupName: groupName,
		Settings:  wireSettings,
	}})
	return classifyGrpcErr(err)
}

// UpdatePersistentSubscriptionToAll updates an existing $all group.
func (c *Client) UpdatePersistentSubscriptionToAll(
	ctx context.Context,
	groupName string,
	from StreamPosition,
	settings PersistentSubscriptionSettings,
	creds *Credentials,
) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	allOpts := &persistent.UpdateReqAllOptions{}
	applyPersistentUpdateAllStart(allOpts, from)

	wireSettings := settingsToWire(settings)
	wireSettings.Revision = psToDeprecatedRevisionValueAll(from)

	_, err = pc.Update(ctx, &persistent.UpdateReq{Options: &persistent.UpdateReqOptions{
		All:       allOpts,
		GroupName: groupName,
		Settings:  wireSettings,
	}})
	return classifyGrpcErr(err)
}

// DeletePersistentSubscription deletes a single-stream group.
func (c *Client) DeletePersistentSubscription(ctx context.Context, stream, groupName string, creds *Credentials) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	_, err = pc.Delete(ctx, &persistent.DeleteReq{Options: &persistent.DeleteReqOptions{
		StreamIdentifier: streamIdentifier(stream),
		GroupName:        groupName,
	}})
	return classifyGrpcErr(err)
}

// DeletePersistentSubscriptionToAll deletes a $all group.
func (c *Client) DeletePersistentSubscriptionToAll(ctx context.Context, groupName string, creds *Credentials) error {
	pc, err := c.persistentClient(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withAdminDeadline(withAuth(ctx, c.credentials(creds)))
	defer cancel()

	_, err = pc.Delete(ctx, &persistent.DeleteReq{Options: &persistent.DeleteReqOptions{
		All:       &shared.Empty{},
		GroupName: groupName,
	}})
	return classifyGrpcErr(err)
}

func applyPersistentStreamStart(opts *persistent.CreateReqStreamOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		r := from.Pos.Commit
		opts.Revision = &r
	}
}

func applyPersistentAllStart(opts *persistent.CreateReqAllOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		opts.Position = &streams.Position{CommitPosition: from.Pos.Commit, PreparePosition: from.Pos.Prepare}
	}
}

func applyPersistentUpdateStreamStart(opts *persistent.UpdateReqStreamOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		r := from.Pos.Commit
		opts.Revision = &r
	}
}

func applyPersistentUpdateAllStart(opts *persistent.UpdateReqAllOptions, from StreamPosition) {
	switch from.Kind {
	case StreamPositionStart:
		opts.Start = &shared.Empty{}
	case StreamPositionEnd:
		opts.End = &shared.Empty{}
	case StreamPositionExact:
		opts.Position = &streams.Position{CommitPosition: from.Pos.Commit, PreparePosition: from.Pos.Prepare}
	}
}
