package world

import (
	"errors"
	"fmt"
	"os"

	"github.com/specialistvlad/flowgrid/internal/gateway"
	"gopkg.in/yaml.v3"
)

// Level describes a grid: its size, walls, exit and where the agent starts.
type Level struct {
	Name     string             `yaml:"name"`
	GridSize int                `yaml:"grid_size"`
	Walls    []gateway.Position `yaml:"walls"`
	Exit     gateway.Position   `yaml:"exit"`
	Start    Start              `yaml:"start"`
}

// Start is the agent's initial placement.
type Start struct {
	Position  gateway.Position  `yaml:"position"`
	Direction gateway.Direction `yaml:"direction"`
}

// DefaultLevel is the built-in training level.
func DefaultLevel() Level {
	return Level{
		Name:     "default",
		GridSize: 10,
		Walls: []gateway.Position{
			{X: 2, Y: 3},
			{X: 1, Y: 2},
			{X: 4, Y: 4},
			{X: 5, Y: 2},
			{X: 3, Y: 5},
		},
		Exit: gateway.Position{X: 7, Y: 7},
		Start: Start{
			Position:  gateway.Position{X: 2, Y: 2},
			Direction: gateway.East,
		},
	}
}

// LoadLevel reads a YAML level file. Keys absent from the file keep the
// values of DefaultLevel, except walls once grid_size is set.
func LoadLevel(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("failed to read level file %s: %w", path, err)
	}
	lvl, err := ParseLevel(data)
	if err != nil {
		return Level{}, fmt.Errorf("invalid level file %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes and validates a YAML level document. A document that
// sets grid_size describes its own grid, so it gets no default walls.
func ParseLevel(data []byte) (Level, error) {
	var sized struct {
		GridSize *int `yaml:"grid_size"`
	}
	if err := yaml.Unmarshal(data, &sized); err != nil {
		return Level{}, fmt.Errorf("failed to decode level: %w", err)
	}

	lvl := DefaultLevel()
	if sized.GridSize != nil {
		lvl.Walls = nil
	}
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return Level{}, fmt.Errorf("failed to decode level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return Level{}, err
	}
	return lvl, nil
}

// Validate checks that every coordinate lies on the grid and that neither the
// agent nor the exit sits inside a wall.
func (l Level) Validate() error {
	var errs []error
	if l.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", l.GridSize)
	}
	if _, err := gateway.ParseDirection(string(l.Start.Direction)); err != nil {
		errs = append(errs, fmt.Errorf("start: %w", err))
	}
	if !l.inBounds(l.Start.Position) {
		errs = append(errs, fmt.Errorf("start position %s is outside the grid", l.Start.Position))
	}
	if !l.inBounds(l.Exit) {
		errs = append(errs, fmt.Errorf("exit position %s is outside the grid", l.Exit))
	}
	for _, w := range l.Walls {
		if !l.inBounds(w) {
			errs = append(errs, fmt.Errorf("wall %s is outside the grid", w))
		}
		if w == l.Start.Position {
			errs = append(errs, fmt.Errorf("start position %s is inside a wall", w))
		}
		if w == l.Exit {
			errs = append(errs, fmt.Errorf("exit position %s is inside a wall", w))
		}
	}
	return errors.Join(errs...)
}

func (l Level) inBounds(p gateway.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.GridSize && p.Y < l.GridSize
}
