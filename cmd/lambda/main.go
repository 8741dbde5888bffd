package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/cmd/internal/server"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/di"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest/middleware"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container

	coldStart = true
)

// coldStartInit wires the container once per execution environment. Its
// cleanup is never run: the environment is frozen, not shut down.
func coldStartInit() error {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	cfg.IsLambda = true

	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		return err
	}

	chiLambda = chiadapter.NewV2(server.Router(container))
	container.Logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if coldStart {
		container.Logger.Info("First invocation after cold start",
			zap.String("request_id", req.RequestContext.RequestID),
		)
		coldStart = false
	}

	applyAuthorizerIdentity(&req)
	return chiLambda.ProxyWithContextV2(ctx, req)
}

// applyAuthorizerIdentity replaces any client-supplied gateway identity
// headers with the claims API Gateway's JWT authorizer verified.
func applyAuthorizerIdentity(req *events.APIGatewayV2HTTPRequest) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	for k := range req.Headers {
		switch strings.ToLower(k) {
		case strings.ToLower(middleware.GatewayUserHeader), strings.ToLower(middleware.GatewayEmailHeader):
			delete(req.Headers, k)
		}
	}

	authz := req.RequestContext.Authorizer
	if authz == nil || authz.JWT == nil {
		return
	}
	if sub := authz.JWT.Claims["sub"]; sub != "" {
		req.Headers[strings.ToLower(middleware.GatewayUserHeader)] = sub
		req.Headers[strings.ToLower(middleware.GatewayEmailHeader)] = authz.JWT.Claims["email"]
	}
}

func main() {
	if err := coldStartInit(); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	lambda.Start(Handler)
}
