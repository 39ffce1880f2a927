package server

import (
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/invoice-extractor/internal/probe"
)

// Service names reported by the gRPC health endpoint. The empty name is the
// overall server status.
const (
	HealthServiceOCR = "ocr"
	HealthServiceLLM = "llm"
)

// GRPCHealth is a standalone gRPC server exposing grpc.health.v1.
type GRPCHealth struct {
	srv    *grpc.Server
	health *health.Server
}

func NewGRPCHealth(caps *probe.Capabilities) *GRPCHealth {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)
	applyCapabilities(hs, caps)
	return &GRPCHealth{srv: srv, health: hs}
}

func applyCapabilities(hs *health.Server, caps *probe.Capabilities) {
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(HealthServiceOCR, servingStatus(caps != nil && caps.OCRAvailable))
	hs.SetServingStatus(HealthServiceLLM, servingStatus(caps != nil && caps.LLMAvailable))
}

func servingStatus(ok bool) healthpb.HealthCheckResponse_ServingStatus {
	if ok {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

func (g *GRPCHealth) Serve(lis net.Listener) error { return g.srv.Serve(lis) }

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (g *GRPCHealth) Stop() {
	g.health.Shutdown()
	g.srv.GracefulStop()
}
