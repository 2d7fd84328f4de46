package screen

import (
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/explain"
	"github.com/eiken-drill/eiken/internal/mistakes"
	"github.com/eiken-drill/eiken/internal/question"
	"github.com/eiken-drill/eiken/internal/session"
	"github.com/eiken-drill/eiken/internal/store"
)

// Deps are the services shared by all screens. Controller and Catalog are
// required; the rest may be nil.
type Deps struct {
	Controller *session.Controller
	Catalog    *question.Catalog
	Mistakes   *mistakes.Store
	Events     store.EventRepo
	Tutor      *explain.Tutor
	Logger     *zap.Logger
}

// Log returns the logger, or a no-op logger when none is set.
func (d Deps) Log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// MistakeCount is the size of the mistake list, 0 without a store.
func (d Deps) MistakeCount() int {
	if d.Mistakes == nil {
		return 0
	}
	return d.Mistakes.Len()
}
