package server

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var claimInfo = &grpc.UnaryServerInfo{FullMethod: "/hatter.v1.HatterService/Claim"}

func okHandler(_ context.Context, _ any) (any, error) {
	return "ok", nil
}

func TestAuthInterceptor_DisabledWhenNoToken(t *testing.T) {
	interceptor := AuthInterceptor("")

	resp, err := interceptor(context.Background(), nil, claimInfo, okHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestAuthInterceptor_MissingMetadata(t *testing.T) {
	interceptor := AuthInterceptor("s3cret")

	_, err := interceptor(context.Background(), nil, claimInfo, okHandler)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestAuthInterceptor_InvalidToken(t *testing.T) {
	interceptor := AuthInterceptor("s3cret")

	for _, header := range []string{"Bearer wrong", "Basic s3cret", ""} {
		md := metadata.MD{}
		if header != "" {
			md.Set("authorization", header)
		}
		ctx := metadata.NewIncomingContext(context.Background(), md)

		_, err := interceptor(ctx, nil, claimInfo, okHandler)
		if status.Code(err) != codes.Unauthenticated {
			t.Errorf("header %q: expected Unauthenticated, got %v", header, err)
		}
	}
}

func TestAuthInterceptor_ValidToken(t *testing.T) {
	interceptor := AuthInterceptor("s3cret")

	md := metadata.Pairs("authorization", "Bearer s3cret")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	resp, err := interceptor(ctx, nil, claimInfo, okHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestAuthInterceptor_HealthExempt(t *testing.T) {
	interceptor := AuthInterceptor("s3cret")
	healthInfo := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	// No metadata at all, still passes.
	resp, err := interceptor(context.Background(), nil, healthInfo, okHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	panicHandler := func(_ context.Context, _ any) (any, error) {
		panic("boom")
	}

	_, err := RecoveryInterceptor(context.Background(), nil, claimInfo, panicHandler)
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected Internal after panic, got %v", err)
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	resp, err := LoggingInterceptor(context.Background(), nil, claimInfo, okHandler)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected response: %v", resp)
	}
}
