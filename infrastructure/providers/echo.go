package providers

import (
	"context"
	"fmt"

	"github.com/haydenbleasel/tersa-sub001/application/generation"
)

// Echo answers textual requests with their prompt. It backs local
// development when no provider key is configured.
var Echo = generation.InvokerFunc(func(_ context.Context, req generation.Request) (generation.Output, error) {
	if req.Capability.Binary() {
		return generation.Output{}, fmt.Errorf("echo does not serve %s", req.Capability)
	}
	return generation.Output{Text: req.Prompt}, nil
})
