package entities

import (
	"fmt"
	"strings"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
)

// Extraction helpers gather upstream content for the generation dispatcher.
// They never fail: nodes of other kinds and empty fields contribute nothing.

// ExtractText returns, in document order, each text node's primitive text
// followed by its generated text, skipping empty values.
func ExtractText(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		d, ok := n.data.(*TextData)
		if !ok {
			continue
		}
		if strings.TrimSpace(d.Text) != "" {
			out = append(out, d.Text)
		}
		if d.Generated != nil && strings.TrimSpace(d.Generated.Text) != "" {
			out = append(out, d.Generated.Text)
		}
	}
	return out
}

// ExtractImages returns the primitive then generated media of each image node.
func ExtractImages(nodes []*Node) []valueobjects.Media {
	var out []valueobjects.Media
	for _, n := range nodes {
		if d, ok := n.data.(*ImageData); ok {
			out = appendMedia(out, d.Content, d.Generated)
		}
	}
	return out
}

// ExtractAudio returns the primitive then generated media of each audio node.
func ExtractAudio(nodes []*Node) []valueobjects.Media {
	var out []valueobjects.Media
	for _, n := range nodes {
		if d, ok := n.data.(*AudioData); ok {
			out = appendMedia(out, d.Content, d.Generated)
		}
	}
	return out
}

// ExtractVideos returns the primitive then generated media of each video node.
func ExtractVideos(nodes []*Node) []valueobjects.Media {
	var out []valueobjects.Media
	for _, n := range nodes {
		if d, ok := n.data.(*VideoData); ok {
			out = appendMedia(out, d.Content, d.Generated)
		}
	}
	return out
}

// ExtractTranscripts returns the transcripts of audio nodes.
func ExtractTranscripts(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		if d, ok := n.data.(*AudioData); ok && strings.TrimSpace(d.Transcript) != "" {
			out = append(out, d.Transcript)
		}
	}
	return out
}

// ExtractDescriptions returns the descriptions of image nodes.
func ExtractDescriptions(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		if d, ok := n.data.(*ImageData); ok && strings.TrimSpace(d.Description) != "" {
			out = append(out, d.Description)
		}
	}
	return out
}

// ExtractCode returns the primitive then generated snippets of code nodes.
func ExtractCode(nodes []*Node) []Code {
	var out []Code
	for _, n := range nodes {
		d, ok := n.data.(*CodeData)
		if !ok {
			continue
		}
		if d.Content != nil && strings.TrimSpace(d.Content.Text) != "" {
			out = append(out, *d.Content)
		}
		if d.Generated != nil && strings.TrimSpace(d.Generated.Text) != "" {
			out = append(out, *d.Generated)
		}
	}
	return out
}

// ExtractFiles returns the uploaded documents of file nodes.
func ExtractFiles(nodes []*Node) []FileContent {
	var out []FileContent
	for _, n := range nodes {
		if d, ok := n.data.(*FileData); ok && d.Content != nil {
			out = append(out, *d.Content)
		}
	}
	return out
}

// ExtractTweets renders each tweet node as a single attributed line.
func ExtractTweets(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		d, ok := n.data.(*TweetData)
		if !ok || d.Content == nil || strings.TrimSpace(d.Content.Text) == "" {
			continue
		}
		line := d.Content.Text
		if d.Content.Author != "" {
			line = fmt.Sprintf("%s (@%s", line, d.Content.Author)
			if d.Content.Date != "" {
				line += ", " + d.Content.Date
			}
			line += ")"
		}
		out = append(out, line)
	}
	return out
}

func appendMedia(out []valueobjects.Media, refs ...*valueobjects.Media) []valueobjects.Media {
	for _, m := range refs {
		if m != nil && !m.IsZero() {
			out = append(out, *m)
		}
	}
	return out
}
