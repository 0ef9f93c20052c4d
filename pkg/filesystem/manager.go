package filesystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// DiskConfig is one entry of the "filesystems.disks" config map. The S3
// fields are shared by every driver: url and visibility apply to local disks
// too.
type DiskConfig struct {
	S3Config `mapstructure:",squash"`
	Driver   string `mapstructure:"driver"`
	Root     string `mapstructure:"root"`
}

// Config is the "filesystems" config section.
type Config struct {
	Default string                `mapstructure:"default"`
	Disks   map[string]DiskConfig `mapstructure:"disks"`
}

// DriverFunc builds a disk from its config.
type DriverFunc func(cfg DiskConfig) (Disk, error)

// Manager resolves named disks lazily and forwards Disk calls to the
// default one.
type Manager struct {
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	disks   map[string]Disk
	drivers map[string]DriverFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDriver registers a driver under name.
func WithDriver(name string, fn DriverFunc) ManagerOption {
	return func(m *Manager) { m.drivers[name] = fn }
}

// NewManager creates a manager with the local and s3 drivers.
func NewManager(cfg Config, opts ...ManagerOption) *Manager {
	if cfg.Default == "" {
		cfg.Default = "local"
	}
	m := &Manager{
		cfg:    cfg,
		logger: logger.NewNope(),
		disks:  make(map[string]Disk),
		drivers: map[string]DriverFunc{
			"local": localDriver,
			"s3":    s3Driver,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Disk returns the named disk, or the default one.
func (m *Manager) Disk(name ...string) (Disk, error) {
	n := m.cfg.Default
	if len(name) > 0 && name[0] != "" {
		n = name[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.disks[n]; ok {
		return d, nil
	}
	cfg, ok := m.cfg.Disks[n]
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownDisk, n)
	}
	driver, ok := m.drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownDriver, cfg.Driver)
	}
	d, err := driver(cfg)
	if err != nil {
		return nil, fmt.Errorf("disk %s: %w", n, err)
	}
	m.disks[n] = d
	m.logger.Debug("disk resolved", slog.String("disk", n), slog.String("driver", cfg.Driver))
	return d, nil
}

// Set registers a ready disk under name.
func (m *Manager) Set(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Names returns the configured and registered disk names.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := slices.Collect(maps.Keys(m.cfg.Disks))
	for n := range m.disks {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Close closes every resolved disk implementing io.Closer.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.disks {
		if c, ok := d.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return nil
}

func (m *Manager) def() (Disk, error) { return m.Disk() }

// Exists calls Exists on the default disk.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	d, err := m.def()
	if err != nil {
		return false, err
	}
	return d.Exists(ctx, name)
}

// Get calls Get on the default disk.
func (m *Manager) Get(ctx context.Context, name string) ([]byte, error) {
	d, err := m.def()
	if err != nil {
		return nil, err
	}
	return d.Get(ctx, name)
}

// Open calls Open on the default disk.
func (m *Manager) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	d, err := m.def()
	if err != nil {
		return nil, err
	}
	return d.Open(ctx, name)
}

// Put calls Put on the default disk.
func (m *Manager) Put(ctx context.Context, name string, r io.Reader, opts ...PutOption) error {
	d, err := m.def()
	if err != nil {
		return err
	}
	return d.Put(ctx, name, r, opts...)
}

// Delete calls Delete on the default disk.
func (m *Manager) Delete(ctx context.Context, names ...string) error {
	d, err := m.def()
	if err != nil {
		return err
	}
	return d.Delete(ctx, names...)
}

// Copy calls Copy on the default disk.
func (m *Manager) Copy(ctx context.Context, from, to string) error {
	d, err := m.def()
	if err != nil {
		return err
	}
	return d.Copy(ctx, from, to)
}

// Move calls Move on the default disk.
func (m *Manager) Move(ctx context.Context, from, to string) error {
	d, err := m.def()
	if err != nil {
		return err
	}
	return d.Move(ctx, from, to)
}

// Stat calls Stat on the default disk.
func (m *Manager) Stat(ctx context.Context, name string) (*FileInfo, error) {
	d, err := m.def()
	if err != nil {
		return nil, err
	}
	return d.Stat(ctx, name)
}

// Files calls Files on the default disk.
func (m *Manager) Files(ctx context.Context, dir string) ([]string, error) {
	d, err := m.def()
	if err != nil {
		return nil, err
	}
	return d.Files(ctx, dir)
}

// URL calls URL on the default disk.
func (m *Manager) URL(ctx context.Context, name string) (string, error) {
	d, err := m.def()
	if err != nil {
		return "", err
	}
	return d.URL(ctx, name)
}

var _ Disk = (*Manager)(nil)

func localDriver(cfg DiskConfig) (Disk, error) {
	opts := []LocalOption{WithBaseURL(cfg.URL)}
	if cfg.Visibility != "" {
		opts = append(opts, WithLocalVisibility(cfg.Visibility))
	}
	return NewLocal(cfg.Root, opts...)
}

func s3Driver(cfg DiskConfig) (Disk, error) {
	return NewS3(cfg.S3Config)
}
