package entities

import (
	"encoding/json"
	"testing"

	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func origin(t *testing.T) valueobjects.Position {
	t.Helper()
	p, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)
	return p
}

func dataKeys(t *testing.T, n *Node) map[string]json.RawMessage {
	t.Helper()
	raw, err := n.MarshalData()
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	return keys
}

func TestNewNode_SerializesOnlyDeclaredFields(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			node, err := NewNode(kind, origin(t), nil)
			require.NoError(t, err)
			assert.False(t, node.ID().IsZero())
			assert.Equal(t, kind, node.Kind())

			specs, err := Fields(kind)
			require.NoError(t, err)
			declared := make(map[string]FieldSpec, len(specs))
			for _, f := range specs {
				declared[f.Name] = f
			}

			keys := dataKeys(t, node)
			for key := range keys {
				assert.Contains(t, declared, key, "undeclared field %q", key)
			}
			for _, f := range specs {
				if f.Required {
					assert.Contains(t, keys, f.Name, "missing required field %q", f.Name)
				}
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		tag     string
		want    Kind
		wantErr bool
	}{
		{tag: "text", want: KindText},
		{tag: "drop", want: KindDrop},
		{tag: "tweet", want: KindTweet},
		{tag: "Text", wantErr: true},
		{tag: "spreadsheet", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseKind(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewNode_InitialData(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		initial string
		wantErr bool
		check   func(t *testing.T, n *Node)
	}{
		{
			name:    "text override merges onto default",
			kind:    KindText,
			initial: `{"text":"Say hello"}`,
			check: func(t *testing.T, n *Node) {
				d := n.Data().(*TextData)
				assert.Equal(t, SourcePrimitive, d.Source)
				assert.Equal(t, "Say hello", d.Text)
			},
		},
		{
			name:    "transform image",
			kind:    KindImage,
			initial: `{"source":"transform","instructions":"watercolor"}`,
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, SourceTransform, n.Source())
				assert.Equal(t, "watercolor", n.Instructions())
			},
		},
		{
			name:    "field from another kind is rejected",
			kind:    KindFile,
			initial: `{"text":"not a file field"}`,
			wantErr: true,
		},
		{
			name:    "unknown source is rejected",
			kind:    KindCode,
			initial: `{"source":"magic"}`,
			wantErr: true,
		},
		{
			name:    "media without MIME type is rejected",
			kind:    KindAudio,
			initial: `{"content":{"url":"https://cdn.example.com/a.mp3","mediaType":"mp3"}}`,
			wantErr: true,
		},
		{
			name:    "empty generated text is dropped",
			kind:    KindText,
			initial: `{"generated":{"text":""}}`,
			check: func(t *testing.T, n *Node) {
				assert.False(t, n.HasGenerated())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewNode(tt.kind, origin(t), json.RawMessage(tt.initial))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Nil(t, node)
				return
			}
			require.NoError(t, err)
			tt.check(t, node)
		})
	}
}

func TestNode_UpdateData(t *testing.T) {
	node, err := NewNode(KindText, origin(t), json.RawMessage(`{"text":"draft"}`))
	require.NoError(t, err)

	require.NoError(t, node.UpdateData(json.RawMessage(`{"text":"final","model":"gpt-4o"}`)))
	assert.Equal(t, "final", node.Data().(*TextData).Text)
	assert.Equal(t, "gpt-4o", node.Model())

	err = node.UpdateData(json.RawMessage(`{"generated":{"text":"forged"}}`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.False(t, node.HasGenerated())

	err = node.UpdateData(json.RawMessage(`{"voice":"alloy"}`))
	require.Error(t, err)
	assert.Equal(t, "final", node.Data().(*TextData).Text)
}

func TestNode_ApplyGeneration(t *testing.T) {
	media := &valueobjects.Media{URL: "https://cdn.example.com/u1/out.png", MediaType: "image/png"}

	tests := []struct {
		name    string
		kind    Kind
		gen     Generation
		wantErr bool
		check   func(t *testing.T, n *Node)
	}{
		{
			name: "text generate",
			kind: KindText,
			gen:  Generation{Task: TaskGenerate, Text: "Bonjour"},
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, "Bonjour", n.Data().(*TextData).Generated.Text)
			},
		},
		{
			name: "code generate keeps language",
			kind: KindCode,
			gen:  Generation{Task: TaskGenerate, Text: "print(1)", Language: "python"},
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, &Code{Text: "print(1)", Language: "python"}, n.Data().(*CodeData).Generated)
			},
		},
		{
			name: "image generate",
			kind: KindImage,
			gen:  Generation{Task: TaskGenerate, Media: media},
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, media, n.Data().(*ImageData).Generated)
			},
		},
		{
			name: "image describe",
			kind: KindImage,
			gen:  Generation{Task: TaskDescribe, Text: "a cat"},
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, "a cat", n.Data().(*ImageData).Description)
			},
		},
		{
			name: "audio transcribe",
			kind: KindAudio,
			gen:  Generation{Task: TaskTranscribe, Text: "hello there"},
			check: func(t *testing.T, n *Node) {
				assert.Equal(t, "hello there", n.Data().(*AudioData).Transcript)
			},
		},
		{name: "text cannot describe", kind: KindText, gen: Generation{Task: TaskDescribe, Text: "x"}, wantErr: true},
		{name: "file has no generated slot", kind: KindFile, gen: Generation{Task: TaskGenerate, Text: "x"}, wantErr: true},
		{name: "image generate needs media", kind: KindImage, gen: Generation{Task: TaskGenerate, Text: "x"}, wantErr: true},
		{name: "empty text rejected", kind: KindText, gen: Generation{Task: TaskGenerate}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := NewNode(tt.kind, origin(t), nil)
			require.NoError(t, err)
			before, err := node.MarshalData()
			require.NoError(t, err)

			err = node.ApplyGeneration(tt.gen)
			if tt.wantErr {
				require.Error(t, err)
				after, err := node.MarshalData()
				require.NoError(t, err)
				assert.JSONEq(t, string(before), string(after))
				return
			}
			require.NoError(t, err)
			assert.True(t, node.HasGenerated())
			tt.check(t, node)
		})
	}
}

func TestNode_ConvertTo(t *testing.T) {
	node, err := NewNode(KindDrop, origin(t), json.RawMessage(`{"isSource":true}`))
	require.NoError(t, err)

	require.NoError(t, node.ConvertTo(KindImage))
	assert.Equal(t, KindImage, node.Kind())
	assert.Equal(t, map[string]json.RawMessage{"source": json.RawMessage(`"primitive"`)}, dataKeys(t, node))

	assert.Error(t, node.ConvertTo(Kind("spreadsheet")))
	assert.Equal(t, KindImage, node.Kind())
}

func TestNode_DataIsCopy(t *testing.T) {
	node, err := NewNode(KindText, origin(t), json.RawMessage(`{"text":"original"}`))
	require.NoError(t, err)

	d := node.Data().(*TextData)
	d.Text = "mutated"

	assert.Equal(t, "original", node.Data().(*TextData).Text)
}
