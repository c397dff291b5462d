package classifier

import (
	"sync"

	"github.com/raysh454/phishscan/internal/logging"
)

// Loader lazily loads the model artifact once per process. A failed load is
// not cached: the next call retries, so a model trained after startup is
// picked up without a restart.
type Loader struct {
	path   string
	logger logging.Logger

	mu    sync.Mutex
	model Model
}

func NewLoader(path string, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Loader{
		path:   path,
		logger: logger.With(logging.Field{Key: "component", Value: "classifier"}),
	}
}

// NewStaticLoader wraps an already constructed model.
func NewStaticLoader(m Model) *Loader {
	return &Loader{model: m, logger: logging.NopLogger{}}
}

// Model returns the cached model, loading it on first use.
func (l *Loader) Model() (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.model != nil {
		return l.model, nil
	}
	f, err := Load(l.path)
	if err != nil {
		l.logger.Error("model load failed",
			logging.Field{Key: "path", Value: l.path},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, err
	}
	l.logger.Info("model loaded",
		logging.Field{Key: "path", Value: l.path},
		logging.Field{Key: "trees", Value: len(f.Trees)})
	l.model = f
	return f, nil
}

// Path is the artifact location.
func (l *Loader) Path() string { return l.path }
