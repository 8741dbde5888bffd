package validators

import (
	"testing"

	"github.com/haydenbleasel/tersa-sub001/domain/core/entities"
	"github.com/haydenbleasel/tersa-sub001/domain/core/valueobjects"
	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(t *testing.T, kind entities.Kind) *entities.Node {
	t.Helper()
	pos, err := valueobjects.NewPosition(10, 20)
	require.NoError(t, err)
	n, err := entities.NewNode(kind, pos, nil)
	require.NoError(t, err)
	return n
}

func TestEdgeValidator_TerminalSourcesNeverConnect(t *testing.T) {
	v := NewEdgeValidator()
	for _, source := range []entities.Kind{entities.KindVideo, entities.KindDrop} {
		for _, target := range entities.Kinds() {
			t.Run(source.String()+"->"+target.String(), func(t *testing.T) {
				s, tg := node(t, source), node(t, target)
				assert.False(t, v.CanConnect(s, tg))

				err := v.Check(s, tg)
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Equal(t, "terminal-source", pkgerrors.GetAppError(err).Details["rule"])
			})
		}
	}
}

func TestEdgeValidator_AcceptsOtherSources(t *testing.T) {
	v := NewEdgeValidator()
	sources := []entities.Kind{
		entities.KindText, entities.KindImage, entities.KindAudio,
		entities.KindCode, entities.KindFile, entities.KindTweet,
	}
	for _, source := range sources {
		for _, target := range entities.Kinds() {
			t.Run(source.String()+"->"+target.String(), func(t *testing.T) {
				assert.True(t, v.CanConnect(node(t, source), node(t, target)))
			})
		}
	}
}

func TestEdgeValidator_CustomRulesFirstMatchWins(t *testing.T) {
	noAudioToCode := ConnectionRule{
		Name:   "audio-to-code",
		Reason: "code nodes cannot consume audio",
		Check: func(source, target *entities.Node) Verdict {
			if source.Kind() == entities.KindAudio && target.Kind() == entities.KindCode {
				return Reject
			}
			return Pass
		},
	}
	v := NewEdgeValidatorWithRules(append([]ConnectionRule{noAudioToCode}, DefaultConnectionRules()...)...)

	assert.False(t, v.CanConnect(node(t, entities.KindAudio), node(t, entities.KindCode)))
	assert.True(t, v.CanConnect(node(t, entities.KindAudio), node(t, entities.KindText)))
	assert.False(t, v.CanConnect(node(t, entities.KindVideo), node(t, entities.KindText)))
}

func TestEdgeValidator_MissingEndpoint(t *testing.T) {
	v := NewEdgeValidator()
	assert.False(t, v.CanConnect(nil, node(t, entities.KindText)))
	assert.False(t, v.CanConnect(node(t, entities.KindText), nil))
}
