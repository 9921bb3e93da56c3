package pagesrv

import (
	"context"
	"net"
	"testing"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/config"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func dialPageService(t *testing.T, cfg *config.Config) (*PageServiceClient, *webgraph.Simulator) {
	t.Helper()
	sim := newTestSimulator(t, cfg)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterPageServiceServer(srv, NewPageGRPCServer(sim, metrics.NewCollector()))
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewPageServiceClient(conn), sim
}

func TestGRPCGetPage(t *testing.T) {
	cfg := testConfig()
	cfg.Failure.Rate = 0
	client, sim := dialPageService(t, cfg)
	ctx := context.Background()

	for _, bt := range []models.BehaviorType{models.BehaviorRegular, models.BehaviorCPU, models.BehaviorMultiSeed} {
		p := sim.Site().PagesOfType(bt)[0]
		resp, err := client.GetPage(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPage(%s): %v", p.ID, err)
		}
		fields := resp.GetFields()
		if fields["page_id"].GetStringValue() != string(p.ID) {
			t.Fatalf("expected page %s, got %v", p.ID, fields["page_id"])
		}
		if fields["page_type"].GetStringValue() != string(bt) {
			t.Fatalf("expected type %s, got %v", bt, fields["page_type"])
		}
		name, _ := p.Payload.Field(bt)
		if got := len(fields[name].GetListValue().GetValues()); got != p.Payload.Len() {
			t.Fatalf("expected %d %s, got %d", p.Payload.Len(), name, got)
		}
	}
}

func TestGRPCGetPageErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Failure.Rate = 1
	client, sim := dialPageService(t, cfg)
	ctx := context.Background()

	tests := []struct {
		name string
		id   models.PageID
		code codes.Code
	}{
		{"missing id", "", codes.InvalidArgument},
		{"unknown page", "zzzzzz", codes.NotFound},
		{"simulated failure", sim.Site().PagesOfType(models.BehaviorFailure)[0].ID, codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetPage(ctx, tt.id)
			if status.Code(err) != tt.code {
				t.Fatalf("expected %v, got %v", tt.code, err)
			}
		})
	}
}

func TestGRPCGetStats(t *testing.T) {
	client, sim := dialPageService(t, testConfig())
	ctx := context.Background()

	if _, err := client.GetPage(ctx, sim.Site().Root().ID); err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	resp, err := client.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	fields := resp.GetFields()
	if fields["total_pages"].GetNumberValue() != float64(sim.Site().Len()) {
		t.Fatalf("unexpected total_pages %v", fields["total_pages"])
	}
	if fields["build_id"].GetStringValue() != sim.Site().BuildID() {
		t.Fatalf("unexpected build id %v", fields["build_id"])
	}
	lookups := fields["lookups"].GetStructValue().GetFields()
	if lookups["total_lookups"].GetNumberValue() != 1 {
		t.Fatalf("expected 1 lookup, got %v", lookups["total_lookups"])
	}
}
