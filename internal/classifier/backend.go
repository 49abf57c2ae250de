package classifier

import (
	"context"
	"fmt"
	"sync"

	"nps-insights-go/internal/logger"
	"nps-insights-go/internal/types"
)

// Initializer runs a backend's one-time setup: try Load, and if that fails
// and Fetch is set, Fetch the artifact and Load again. The outcome is
// computed once; later calls return the same result.
type Initializer struct {
	Name  string
	Load  func() error
	Fetch func(ctx context.Context) error

	once sync.Once
	err  error
}

func (i *Initializer) Init(ctx context.Context) error {
	i.once.Do(func() {
		i.err = i.run(ctx)
	})
	return i.err
}

func (i *Initializer) run(ctx context.Context) error {
	log := logger.New().Component("classifier.init").WithField("backend", i.Name)
	err := i.Load()
	if err == nil {
		log.Info("backend loaded")
		return nil
	}
	if i.Fetch == nil {
		log.WithError(err).Warn("backend load failed, no fetch fallback")
		return fmt.Errorf("%w: %s: %v", types.ErrMissingBackend, i.Name, err)
	}
	log.WithError(err).Info("backend not available locally, fetching")
	if ferr := i.Fetch(ctx); ferr != nil {
		log.WithError(ferr).Warn("backend fetch failed")
		return fmt.Errorf("%w: %s: fetch: %v", types.ErrMissingBackend, i.Name, ferr)
	}
	if err := i.Load(); err != nil {
		log.WithError(err).Warn("backend load failed after fetch")
		return fmt.Errorf("%w: %s: %v", types.ErrMissingBackend, i.Name, err)
	}
	log.Info("backend fetched and loaded")
	return nil
}

// Status converts an Init result into the value reported to callers.
func (i *Initializer) Status(err error) types.BackendStatus {
	st := types.BackendStatus{Name: i.Name, Ready: err == nil, Degraded: err != nil}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}
