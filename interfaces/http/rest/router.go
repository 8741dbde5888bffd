package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/commands/bus"
	querybus "github.com/haydenbleasel/tersa-sub001/application/queries/bus"
	_ "github.com/haydenbleasel/tersa-sub001/docs"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest/handlers"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest/middleware"
	"github.com/haydenbleasel/tersa-sub001/pkg/auth"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
	"github.com/haydenbleasel/tersa-sub001/pkg/observability"
)

// Options tunes the router.
type Options struct {
	Version        string
	EnableCORS     bool
	CORSOrigins    []string
	RequestTimeout time.Duration
	// TrustGatewayHeaders accepts identities injected by the Lambda entry
	// point after API Gateway has verified the caller.
	TrustGatewayHeaders bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	verifier   auth.TokenVerifier
	metrics    *observability.Metrics
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
	opts       Options
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	verifier auth.TokenVerifier,
	metrics *observability.Metrics,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
	opts Options,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		verifier:   verifier,
		metrics:    metrics,
		errors:     errs,
		logger:     logger,
		opts:       opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestIDHeader)
	router.Use(middleware.Logger(rt.logger))
	router.Use(rt.errors.Middleware)
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.opts.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: !allowsAny(rt.opts.CORSOrigins),
			MaxAge:           300,
		}))
	}

	router.Get("/health", handlers.Health(rt.opts.Version, rt.logger))
	router.Get("/swagger/doc.json", rt.swaggerDoc)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(middleware.AuthConfig{
			Verifier:            rt.verifier,
			TrustGatewayHeaders: rt.opts.TrustGatewayHeaders,
		}, rt.errors, rt.logger))
		if rt.opts.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(rt.opts.RequestTimeout))
		}

		modelHandler := handlers.NewModelHandler(rt.queryBus, rt.errors, rt.logger)
		r.Get("/models", modelHandler.ListModels)

		projectHandler := handlers.NewProjectHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
		canvasHandler := handlers.NewCanvasHandler(rt.commandBus, rt.queryBus, rt.errors, rt.logger)
		generationHandler := handlers.NewGenerationHandler(rt.commandBus, rt.errors, rt.logger)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Post("/", projectHandler.CreateProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)
				r.Patch("/", projectHandler.UpdateProject)
				r.Delete("/", projectHandler.DeleteProject)
				r.Put("/content", projectHandler.SaveContent)
				r.Post("/generate", generationHandler.GenerateNodes)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", canvasHandler.CreateNode)
					r.Patch("/{nodeID}", canvasHandler.UpdateNode)
					r.Delete("/{nodeID}", canvasHandler.DeleteNode)
					r.Put("/{nodeID}/position", canvasHandler.MoveNode)
					r.Put("/{nodeID}/type", canvasHandler.ConvertNode)
					r.Post("/{nodeID}/generate", generationHandler.GenerateNode)
				})

				r.Route("/edges", func(r chi.Router) {
					r.Post("/", canvasHandler.ConnectNodes)
					r.Delete("/{edgeID}", canvasHandler.DisconnectNodes)
				})
			})
		})
	})

	return router
}

func (rt *Router) swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		rt.errors.Handle(w, r, pkgerrors.NewInternalError("swagger document unavailable").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

// requestIDHeader echoes the request id so clients and error bodies agree.
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			w.Header().Set("X-Request-ID", id)
			if r.Header.Get("X-Request-ID") == "" {
				r.Header.Set("X-Request-ID", id)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
