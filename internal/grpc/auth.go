package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Billy-Davies-2/team-draft/internal/auth"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
)

// SessionMetadataKey carries the session id issued by /auth/login
const SessionMetadataKey = "session-id"

// SessionResolver looks up the user behind a session id
type SessionResolver interface {
	UserForSession(id string) (*auth.User, bool)
}

// readOnlyMethods need no session
var readOnlyMethods = map[string]bool{
	"/" + ServiceName + "/GetState":  true,
	"/" + ServiceName + "/GetRoster": true,
}

// AuthInterceptor requires an organizer session on every method that
// changes the draft. The session id is read from SessionMetadataKey or
// from a "Bearer" authorization header.
func AuthInterceptor(sessions SessionResolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if readOnlyMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		id := sessionID(ctx)
		if id == "" {
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}
		user, ok := sessions.UserForSession(id)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "session expired or unknown")
		}
		if !auth.IsOrganizer(user) {
			logger.Warn("gRPC: Organizer access denied", "method", info.FullMethod, "user", user.Username)
			return nil, status.Error(codes.PermissionDenied, "organizer access required")
		}
		return handler(auth.WithUser(ctx, user), req)
	}
}

// WithSession attaches a session id to outgoing client calls
func WithSession(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, SessionMetadataKey, id)
}

func sessionID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(SessionMetadataKey); len(v) > 0 && v[0] != "" {
		return v[0]
	}
	if v := md.Get("authorization"); len(v) > 0 {
		if token, found := strings.CutPrefix(v[0], "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
