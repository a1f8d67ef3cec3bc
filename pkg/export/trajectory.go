package export

import (
	"encoding/json"
	"fmt"

	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

// MarshalTrajectory renders a projected trajectory as an indented JSON
// document suitable for files and HTTP responses.
func MarshalTrajectory(t *trajectory.Trajectory) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: trajectory cannot be nil", ErrInvalidInput)
	}
	return json.MarshalIndent(t, "", "  ")
}

// UnmarshalTrajectory parses a trajectory document produced by
// MarshalTrajectory.
func UnmarshalTrajectory(data []byte) (*trajectory.Trajectory, error) {
	var t trajectory.Trajectory
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trajectory: %w", err)
	}
	return &t, nil
}
