package generation

import (
	"fmt"
	"strings"

	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

const (
	defaultCodeLanguage = "javascript"
	describePrompt      = "Describe this image in detail."
)

// section renders one labelled block of the prompt.
func section(b *strings.Builder, heading string, lines []string) {
	if len(lines) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "--- %s ---\n", heading)
	b.WriteString(strings.Join(lines, "\n"))
}

// textPrompt folds every upstream source a text model can read into one prompt.
func textPrompt(instructions string, upstream []*entities.Node) string {
	var b strings.Builder
	if strings.TrimSpace(instructions) != "" {
		section(&b, "Instructions", []string{instructions})
	}
	section(&b, "Text Prompts", entities.ExtractText(upstream))
	section(&b, "Audio Prompts", entities.ExtractTranscripts(upstream))
	section(&b, "Image Descriptions", entities.ExtractDescriptions(upstream))
	section(&b, "Tweet Content", entities.ExtractTweets(upstream))

	var code []string
	for _, c := range entities.ExtractCode(upstream) {
		code = append(code, fmt.Sprintf("```%s\n%s\n```", c.Language, c.Text))
	}
	section(&b, "Code Content", code)

	var files []string
	for _, f := range entities.ExtractFiles(upstream) {
		name := f.Name
		if name == "" {
			name = f.URL
		}
		files = append(files, fmt.Sprintf("%s (%s): %s", name, f.MediaType, f.URL))
	}
	section(&b, "Files", files)
	return b.String()
}

// plainPrompt joins instructions and upstream text for media models.
func plainPrompt(instructions string, upstream []*entities.Node) string {
	var parts []string
	if strings.TrimSpace(instructions) != "" {
		parts = append(parts, instructions)
	}
	parts = append(parts, entities.ExtractText(upstream)...)
	parts = append(parts, entities.ExtractDescriptions(upstream)...)
	return strings.Join(parts, "\n")
}

func codeLanguage(target *entities.Node, upstream []*entities.Node) string {
	if d, ok := target.Data().(*entities.CodeData); ok {
		if d.Generated != nil && d.Generated.Language != "" {
			return d.Generated.Language
		}
		if d.Content != nil && d.Content.Language != "" {
			return d.Content.Language
		}
	}
	for _, c := range entities.ExtractCode(upstream) {
		if c.Language != "" {
			return c.Language
		}
	}
	return defaultCodeLanguage
}

func noInput(kind entities.Kind, task entities.Task) error {
	return pkgerrors.NewValidationErrorf("nothing to %s: connect input nodes to this %s node or add instructions", task, kind).
		WithCode("NO_INPUT")
}

// buildRequest assembles the model input for a target node.
func buildRequest(capability Capability, model string, target *entities.Node, task entities.Task, upstream []*entities.Node) (Request, error) {
	req := Request{Capability: capability, Model: model}
	kind := target.Kind()

	switch capability {
	case CapabilityText:
		req.Prompt = textPrompt(target.Instructions(), upstream)
		req.Images = entities.ExtractImages(upstream)
		if kind == entities.KindCode {
			req.Language = codeLanguage(target, upstream)
			req.System = fmt.Sprintf("You write %s code. Reply with the code only, without explanations or markdown fences.", req.Language)
		}
		if strings.TrimSpace(req.Prompt) == "" && len(req.Images) == 0 {
			return Request{}, noInput(kind, task)
		}

	case CapabilityImage:
		req.Prompt = plainPrompt(target.Instructions(), upstream)
		req.Images = entities.ExtractImages(upstream)
		if d, ok := target.Data().(*entities.ImageData); ok {
			req.Size = d.Size
		}
		if strings.TrimSpace(req.Prompt) == "" {
			return Request{}, noInput(kind, task)
		}

	case CapabilityVision:
		own := entities.ExtractImages([]*entities.Node{target})
		if len(own) == 0 {
			return Request{}, pkgerrors.NewValidationError("image node has no image to describe").WithCode("NO_INPUT")
		}
		req.Images = own[:1]
		req.Prompt = describePrompt
		if instr := strings.TrimSpace(target.Instructions()); instr != "" {
			req.Prompt = instr
		}

	case CapabilitySpeech:
		req.Prompt = strings.Join(entities.ExtractText(upstream), "\n")
		req.System = target.Instructions()
		if d, ok := target.Data().(*entities.AudioData); ok {
			req.Voice = d.Voice
		}
		if strings.TrimSpace(req.Prompt) == "" {
			return Request{}, noInput(kind, task)
		}

	case CapabilityTranscription:
		own := entities.ExtractAudio([]*entities.Node{target})
		if len(own) == 0 {
			return Request{}, pkgerrors.NewValidationError("audio node has no recording to transcribe").WithCode("NO_INPUT")
		}
		req.Audio = &own[0]
		req.Prompt = target.Instructions()

	case CapabilityVideo:
		req.Prompt = plainPrompt(target.Instructions(), upstream)
		if images := entities.ExtractImages(upstream); len(images) > 0 {
			req.Images = images[:1]
		}
		if strings.TrimSpace(req.Prompt) == "" {
			return Request{}, noInput(kind, task)
		}
	}
	return req, nil
}

// stripFences removes a single surrounding markdown code fence.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.ContainsAny(t[:nl], " \t") {
		t = t[nl+1:]
	}
	return strings.TrimSpace(t)
}
