package driven

import "github.com/zhouliangjun/rag-project03-audit/internal/core/domain"

// ConfigStore loads and persists client settings. Implementations keep
// the file format to themselves; core only sees resolved settings.
type ConfigStore interface {
	// Settings returns the currently resolved settings.
	Settings() domain.Settings

	// Save persists the given settings.
	Save(settings domain.Settings) error

	// Watch registers a callback invoked whenever the underlying
	// configuration changes outside this process. Optional: stores
	// without change detection may ignore the callback.
	Watch(onChange func(domain.Settings)) error

	// Close stops any watcher and releases resources.
	Close() error
}
