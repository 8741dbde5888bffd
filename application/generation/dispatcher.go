package generation

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
	"github.com/haydenbleasel/tersa-sub001/domain/core/aggregates"
	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Recorder receives one observation per finished generation.
type Recorder interface {
	ObserveGeneration(capability, model, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveGeneration(string, string, string, time.Duration) {}

// Outcome labels passed to Recorder.
const (
	OutcomeSuccess       = "success"
	OutcomeModelNotFound = "model_not_found"
	OutcomeUpstream      = "upstream_failed"
	OutcomeStorage       = "storage_failed"
	OutcomeInvalid       = "invalid"
)

// GenerateRequest describes one node generation.
type GenerateRequest struct {
	// Owner is the namespace binary output is stored under.
	Owner    string
	Target   *entities.Node
	Upstream []*entities.Node
	ModelID  string
	Task     entities.Task
	Defaults aggregates.Defaults
}

// Result is a successful generation. Node is a copy of the target with the
// output applied; the caller's node is never modified.
type Result struct {
	Node       *entities.Node
	Generation entities.Generation
	Model      ModelDescriptor
}

// BatchResult pairs a batch item with its outcome.
type BatchResult struct {
	NodeID valueobjects.NodeID
	Result *Result
	Err    error
}

// Dispatcher resolves a model for a node, invokes it and normalises the
// output into the node's generated fields.
type Dispatcher struct {
	catalog     atomic.Pointer[Catalog]
	storage     ports.ObjectStorage
	logger      *zap.Logger
	recorder    Recorder
	tracer      trace.Tracer
	timeout     time.Duration
	concurrency int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithTimeout bounds a single model call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithConcurrency bounds parallel calls in GenerateBatch.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDispatcher creates a dispatcher over an immutable catalog.
func NewDispatcher(catalog *Catalog, storage ports.ObjectStorage, logger *zap.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		storage:     storage,
		logger:      logger,
		recorder:    nopRecorder{},
		tracer:      otel.Tracer("canvas/generation"),
		concurrency: 4,
	}
	if catalog == nil {
		catalog, _ = NewCatalog()
	}
	d.catalog.Store(catalog)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the catalog currently in use.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog.Load()
}

// SetCatalog swaps the catalog. Calls already in flight keep the catalog
// they started with.
func (d *Dispatcher) SetCatalog(c *Catalog) {
	if c != nil {
		d.catalog.Store(c)
	}
}

// Resolve picks the model that serves the request: the explicit id, then the
// node's own selection (generate) or the project default (describe and
// transcribe), then the catalog default for the capability.
func (d *Dispatcher) Resolve(capability Capability, req GenerateRequest) (ModelDescriptor, error) {
	catalog := d.catalog.Load()
	id := strings.TrimSpace(req.ModelID)
	if id == "" && req.Task == entities.TaskGenerate && req.Target != nil {
		id = req.Target.Model()
	}
	if id == "" {
		switch capability {
		case CapabilityVision:
			id = req.Defaults.VisionModel
		case CapabilityTranscription:
			id = req.Defaults.TranscriptionModel
		}
	}
	if id == "" {
		m, ok := catalog.Default(capability)
		if !ok {
			return ModelDescriptor{}, pkgerrors.NewModelNotFoundError(string(capability), "")
		}
		return m, nil
	}
	m, ok := catalog.Lookup(capability, id)
	if !ok {
		return ModelDescriptor{}, pkgerrors.NewModelNotFoundError(string(capability), id)
	}
	return m, nil
}

// Generate runs one model call for the target node. On any failure the
// error is one of ModelNotFound, UpstreamCallFailed, StorageWriteFailed or a
// validation error, and nothing has been written anywhere except possibly an
// orphaned object in storage.
func (d *Dispatcher) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if req.Target == nil {
		return nil, pkgerrors.NewValidationError("target node is required")
	}
	task := req.Task
	if task == "" {
		task = entities.TaskGenerate
	}
	req.Task = task

	ctx, span := d.tracer.Start(ctx, "generation.Generate", trace.WithAttributes(
		attribute.String("node.id", req.Target.ID().String()),
		attribute.String("node.type", req.Target.Kind().String()),
		attribute.String("task", string(task)),
	))
	defer span.End()

	started := time.Now()
	capability, err := CapabilityFor(req.Target.Kind(), task)
	if err != nil {
		return nil, d.fail(span, "", "", OutcomeInvalid, started, err)
	}
	model, err := d.Resolve(capability, req)
	if err != nil {
		return nil, d.fail(span, capability, req.ModelID, OutcomeModelNotFound, started, err)
	}
	span.SetAttributes(attribute.String("model.id", model.ID), attribute.String("model.provider", model.Provider))

	input, err := buildRequest(capability, model.ID, req.Target, task, req.Upstream)
	if err != nil {
		return nil, d.fail(span, capability, model.ID, OutcomeInvalid, started, err)
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	out, err := model.Invoker.Invoke(callCtx, input)
	if err != nil {
		return nil, d.fail(span, capability, model.ID, OutcomeUpstream, started, pkgerrors.NewUpstreamCallError(model.ID, err))
	}

	g := entities.Generation{Task: task}
	if capability.Binary() {
		if len(out.Data) == 0 {
			return nil, d.fail(span, capability, model.ID, OutcomeUpstream, started,
				pkgerrors.NewUpstreamCallError(model.ID, errEmptyOutput))
		}
		mediaType := out.MediaType
		if mediaType == "" || !strings.Contains(mediaType, "/") {
			mediaType = http.DetectContentType(out.Data)
		}
		url, err := d.storage.Put(ctx, req.Owner, out.Data, mediaType)
		if err != nil {
			return nil, d.fail(span, capability, model.ID, OutcomeStorage, started, pkgerrors.NewStorageWriteError(err))
		}
		media, err := valueobjects.NewMedia(url, mediaType)
		if err != nil {
			return nil, d.fail(span, capability, model.ID, OutcomeStorage, started, pkgerrors.NewStorageWriteError(err))
		}
		g.Media = &media
	} else {
		text := out.Text
		if req.Target.Kind() == entities.KindCode {
			text = stripFences(text)
			g.Language = input.Language
		}
		if strings.TrimSpace(text) == "" {
			return nil, d.fail(span, capability, model.ID, OutcomeUpstream, started,
				pkgerrors.NewUpstreamCallError(model.ID, errEmptyOutput))
		}
		g.Text = text
	}

	node := req.Target.Clone()
	if err := node.ApplyGeneration(g); err != nil {
		return nil, d.fail(span, capability, model.ID, OutcomeInvalid, started, err)
	}

	elapsed := time.Since(started)
	d.recorder.ObserveGeneration(string(capability), model.ID, OutcomeSuccess, elapsed)
	d.logger.Info("Node generated",
		zap.String("node_id", req.Target.ID().String()),
		zap.String("capability", string(capability)),
		zap.String("model", model.ID),
		zap.Duration("elapsed", elapsed),
	)
	return &Result{Node: node, Generation: g, Model: model}, nil
}

// GenerateBatch runs independent generations with bounded parallelism.
// Results are returned in request order; one failure does not cancel the
// others.
func (d *Dispatcher) GenerateBatch(ctx context.Context, reqs []GenerateRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, req := range reqs {
		if req.Target != nil {
			results[i].NodeID = req.Target.ID()
		}
		g.Go(func() error {
			res, err := d.Generate(ctx, req)
			results[i].Result = res
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) fail(span trace.Span, capability Capability, model, outcome string, started time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	d.recorder.ObserveGeneration(string(capability), model, outcome, time.Since(started))

	fields := []zap.Field{
		zap.String("capability", string(capability)),
		zap.String("model", model),
		zap.String("outcome", outcome),
		zap.Error(err),
	}
	if outcome == OutcomeInvalid || outcome == OutcomeModelNotFound {
		d.logger.Warn("Generation rejected", fields...)
	} else {
		d.logger.Error("Generation failed", fields...)
	}
	return err
}

type generationError string

func (e generationError) Error() string { return string(e) }

const errEmptyOutput = generationError("model returned no output")
