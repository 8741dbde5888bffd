package generation

import (
	"context"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

// Request is the provider-neutral input to a model call. Each capability
// reads the fields it understands and ignores the rest.
type Request struct {
	Capability Capability
	Model      string
	System     string
	Prompt     string
	Images     []valueobjects.Media
	Audio      *valueobjects.Media
	Voice      string
	Size       string
	Language   string
}

// Output is a provider result: Text for textual capabilities, Data and
// MediaType for binary ones.
type Output struct {
	Text      string
	Data      []byte
	MediaType string
}

// Invoker calls one model.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Output, error)
}

// InvokerFunc adapts a function to Invoker.
type InvokerFunc func(ctx context.Context, req Request) (Output, error)

// Invoke implements Invoker
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (Output, error) {
	return f(ctx, req)
}
