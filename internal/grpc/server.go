package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Billy-Davies-2/team-draft/internal/dal"
	"github.com/Billy-Davies-2/team-draft/internal/draft"
	"github.com/Billy-Davies-2/team-draft/internal/logger"
	"github.com/Billy-Davies-2/team-draft/internal/models"
	"github.com/Billy-Davies-2/team-draft/internal/service"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "teamdraft.DraftService"

// DraftServiceServer is the server API for DraftService. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
type DraftServiceServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AddPlayer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartDraft(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Spin(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AutoFinish(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRoster(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Reset(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

// Server implements the gRPC DraftService
type Server struct {
	svc *service.Service
}

var _ DraftServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Register attaches srv to a grpc.Server
func Register(s grpc.ServiceRegistrar, srv DraftServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// GetState returns the registry and the live draft view
func (s *Server) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Debug("gRPC: Getting draft state")
	state, err := s.svc.State(ctx)
	if err != nil {
		return nil, toStatus("get state", err)
	}
	return toStruct(map[string]any{
		"event": state,
		"draft": s.svc.View(ctx),
	})
}

// AddPlayer registers a player
func (s *Server) AddPlayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var player models.Player
	if err := fromStruct(req, &player); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	added, err := s.svc.AddPlayer(ctx, player)
	if err != nil {
		return nil, toStatus("add player", err)
	}
	return toStruct(added)
}

// StartDraft builds a draft from the registry
func (s *Server) StartDraft(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Info("gRPC: Starting draft")
	view, err := s.svc.StartDraft(ctx)
	if err != nil {
		return nil, toStatus("start draft", err)
	}
	return toStruct(view)
}

// Spin starts an interactive pick
func (s *Server) Spin(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result, accepted, err := s.svc.Spin(ctx)
	if err != nil {
		return nil, toStatus("spin", err)
	}
	resp := map[string]any{"accepted": accepted}
	if accepted {
		resp["spin"] = result
	}
	return toStruct(resp)
}

// AutoFinish resolves the remaining picks at once
func (s *Server) AutoFinish(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	logger.Info("gRPC: Auto-finishing draft")
	roster, err := s.svc.AutoFinish(ctx)
	if err != nil {
		return nil, toStatus("auto-finish", err)
	}
	return toStruct(roster)
}

// GetRoster returns the final roster
func (s *Server) GetRoster(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	roster, err := s.svc.Roster(ctx)
	if err != nil {
		return nil, toStatus("get roster", err)
	}
	return toStruct(roster)
}

// Reset abandons the running draft
func (s *Server) Reset(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	logger.Info("gRPC: Resetting draft")
	s.svc.ResetDraft(ctx)
	return &emptypb.Empty{}, nil
}

// CodeFor maps a service error to a gRPC status code
func CodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, service.ErrInvalid),
		errors.Is(err, draft.ErrInsufficientPlayers),
		errors.Is(err, draft.ErrInvalidTeamCount),
		errors.Is(err, draft.ErrUnknownTier),
		errors.Is(err, draft.ErrDuplicatePlayer),
		errors.Is(err, dal.ErrInvalidTeamCount),
		errors.Is(err, dal.ErrInvalidTeamIndex):
		return codes.InvalidArgument
	case errors.Is(err, dal.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, draft.ErrNoDraft),
		errors.Is(err, draft.ErrDraftInProgress),
		errors.Is(err, draft.ErrDraftComplete),
		errors.Is(err, draft.ErrSpinInFlight),
		errors.Is(err, draft.ErrNotReady):
		return codes.FailedPrecondition
	case errors.Is(err, service.ErrAnalyticsDisabled):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func toStatus(op string, err error) error {
	code := CodeFor(err)
	if code == codes.Internal {
		logger.Error("gRPC: Request failed", "op", op, "error", err)
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}

// toStruct converts v through its JSON form
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("request body is required")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
