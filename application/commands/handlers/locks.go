package handlers

import "github.com/haydenbleasel/tersa-sub001/pkg/utils"

// Locks are the in-process locks shared by every command handler: one per
// project for read-modify-write cycles and one per node for generation.
type Locks struct {
	project *utils.KeyedMutex
	node    *utils.KeyedMutex
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{project: utils.NewKeyedMutex(), node: utils.NewKeyedMutex()}
}

func (l *Locks) projects() *utils.KeyedMutex {
	if l == nil {
		return utils.NewKeyedMutex()
	}
	return l.project
}

func (l *Locks) nodes() *utils.KeyedMutex {
	if l == nil {
		return utils.NewKeyedMutex()
	}
	return l.node
}
