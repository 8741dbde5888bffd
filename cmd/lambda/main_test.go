package main

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func TestApplyAuthorizerIdentity(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		claims   map[string]string
		wantUser string
	}{
		{
			name:     "claims become headers",
			claims:   map[string]string{"sub": "alice", "email": "alice@example.com"},
			wantUser: "alice",
		},
		{
			name:     "spoofed header is dropped without authorizer",
			headers:  map[string]string{"X-Gateway-User-Id": "mallory"},
			wantUser: "",
		},
		{
			name:     "spoofed header is replaced by claims",
			headers:  map[string]string{"x-gateway-user-id": "mallory"},
			claims:   map[string]string{"sub": "alice"},
			wantUser: "alice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := events.APIGatewayV2HTTPRequest{Headers: tt.headers}
			if tt.claims != nil {
				req.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{Claims: tt.claims},
				}
			}

			applyAuthorizerIdentity(&req)

			assert.Equal(t, tt.wantUser, req.Headers["x-gateway-user-id"])
			assert.NotContains(t, req.Headers, "X-Gateway-User-Id")
		})
	}
}
