package valueobjects

import (
	"encoding/json"
	"math"

	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

// Position is a node's canvas coordinate.
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position, rejecting NaN and infinities.
func NewPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 { return p.x }

// Y returns the Y coordinate
func (p Position) Y() float64 { return p.y }

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon && math.Abs(p.y-other.y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{X: p.x, Y: p.y})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.NewValidationError("position must be an object with numeric x and y")
	}
	parsed, err := NewPosition(raw.X, raw.Y)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
