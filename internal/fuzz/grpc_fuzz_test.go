package fuzz

import (
	"context"
	"testing"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	grpcserver "github.com/Billy-Davies-2/team-draft/internal/grpc"
)

// FuzzGRPCAddPlayer fuzzes the gRPC AddPlayer endpoint
func FuzzGRPCAddPlayer(f *testing.F) {
	// Seed corpus
	f.Add("Asha", "Bowler", "A", "Batch 19")
	f.Add("", "", "", "")
	f.Add("Ravi", "Batsman", "b", "Batch 16")
	f.Add(string(make([]byte, 500)), "x", "Z", "")

	f.Fuzz(func(t *testing.T, name, position, tier, batch string) {
		server := grpcserver.NewServer(newService())

		req, err := structpb.NewStruct(map[string]any{
			"name":     name,
			"position": position,
			"tier":     tier,
			"batch":    batch,
		})
		if err != nil {
			// invalid UTF-8 cannot be carried in a Struct
			return
		}

		_, _ = server.AddPlayer(context.Background(), req)
	})
}

// FuzzGRPCDraftSequence fuzzes the order of draft calls
func FuzzGRPCDraftSequence(f *testing.F) {
	// Seed corpus: each byte selects one call
	f.Add([]byte{0, 1, 1, 2, 3})
	f.Add([]byte{2, 2, 2})
	f.Add([]byte{0, 4, 0, 2, 5, 3})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, ops []byte) {
		svc := newService()
		seedPlayers(t, svc, 5)
		server := grpcserver.NewServer(svc)
		ctx := context.Background()
		empty := &emptypb.Empty{}

		for _, op := range ops {
			switch op % 6 {
			case 0:
				_, _ = server.StartDraft(ctx, empty)
			case 1:
				_, _ = server.Spin(ctx, empty)
			case 2:
				_, _ = server.AutoFinish(ctx, empty)
			case 3:
				_, _ = server.GetRoster(ctx, empty)
			case 4:
				_, _ = server.Reset(ctx, empty)
			case 5:
				_, _ = server.GetState(ctx, empty)
			}
		}
	})
}
