package patch

import (
	"context"

	"github.com/elantharil/elastarter/internal/model"
)

// Patcher defines the interface for the patch service. Tasks handed out
// through the callback and the getters are copies; mutating them has no
// effect on the service.
type Patcher interface {
	SetUpdateCallback(func(*model.PatchTask))
	Run(ctx context.Context) error
	GetTask(id string) (*model.PatchTask, bool)
	GetAllTasks() []*model.PatchTask
}
