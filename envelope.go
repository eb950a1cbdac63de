package eventstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/grpc/metadata"
)

// adminWriteDeadline bounds persistent-subscription create/update/delete
// calls. Data-plane calls (append, read, subscribe) carry no deadline of
// their own; callers control that through the context they pass in.
const adminWriteDeadline = 2 * time.Second

// withAuth attaches a Basic authorization header to ctx when creds is set,
// the way the reference client's configure_auth_req does.
func withAuth(ctx context.Context, creds *Credentials) context.Context {
	if creds == nil {
		return ctx
	}
	token := base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", creds.Login, creds.Password)))
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Basic "+token)
}

// withAdminDeadline applies the fixed admin-write deadline used for
// persistent-subscription create/update/delete, unless ctx already carries
// an earlier one.
func withAdminDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < adminWriteDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, adminWriteDeadline)
}
