package commands

import "github.com/haydenbleasel/tersa-sub001/pkg/utils"

// ConnectNodesCommand adds an edge from Source to Target.
type ConnectNodesCommand struct {
	ProjectID    string `json:"projectId" validate:"notblank"`
	UserID       string `json:"userId" validate:"notblank"`
	EdgeID       string `json:"id" validate:"notblank,max=128"`
	Source       string `json:"source" validate:"notblank"`
	Target       string `json:"target" validate:"notblank"`
	SourceHandle string `json:"sourceHandle,omitempty" validate:"max=128"`
	TargetHandle string `json:"targetHandle,omitempty" validate:"max=128"`
}

// Validate validates the command
func (c ConnectNodesCommand) Validate() error { return utils.ValidateStruct(c) }

// DisconnectNodesCommand removes an edge.
type DisconnectNodesCommand struct {
	ProjectID string `json:"projectId" validate:"notblank"`
	UserID    string `json:"userId" validate:"notblank"`
	EdgeID    string `json:"id" validate:"notblank"`
}

// Validate validates the command
func (c DisconnectNodesCommand) Validate() error { return utils.ValidateStruct(c) }
