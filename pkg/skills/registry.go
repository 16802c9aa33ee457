package skills

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/jingkaihe/skills-mcp/pkg/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultStalenessThreshold is how old the last scan may get before a
	// listing triggers a rescan
	DefaultStalenessThreshold = 5 * time.Second
	// DefaultScanConcurrency bounds the number of SKILL.md files read in parallel
	DefaultScanConcurrency = 16
)

var tracer = telemetry.Tracer("skills-mcp.registry")

// Registry caches skill metadata discovered under a set of root directories.
// Only metadata is cached; instructions are read from disk on every GetSkill.
//
// The entries map is replaced wholesale by Scan, so readers observe either
// the previous or the next scan, never a partially built map.
type Registry struct {
	dirs        []string
	excludes    []glob.Glob
	threshold   time.Duration
	concurrency int
	fsys        FileSystem
	now         func() time.Time

	mu       sync.RWMutex
	entries  map[string]*Entry
	lastScan time.Time
}

// Option is a function that configures a Registry
type Option func(*Registry) error

// WithSkillDirs sets the root directories to scan
func WithSkillDirs(dirs ...string) Option {
	return func(r *Registry) error {
		r.dirs = append([]string(nil), dirs...)
		return nil
	}
}

// WithExcludes skips SKILL.md files whose path relative to their root
// matches any of the globs
func WithExcludes(patterns ...string) Option {
	return func(r *Registry) error {
		excludes, err := CompileExcludes(patterns)
		if err != nil {
			return err
		}
		r.excludes = excludes
		return nil
	}
}

// WithStalenessThreshold overrides DefaultStalenessThreshold
func WithStalenessThreshold(threshold time.Duration) Option {
	return func(r *Registry) error {
		if threshold < 0 {
			return errors.Errorf("staleness threshold cannot be negative: %s", threshold)
		}
		r.threshold = threshold
		return nil
	}
}

// WithScanConcurrency overrides DefaultScanConcurrency
func WithScanConcurrency(n int) Option {
	return func(r *Registry) error {
		if n < 1 {
			return errors.Errorf("scan concurrency must be at least 1, got %d", n)
		}
		r.concurrency = n
		return nil
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(r *Registry) error {
		if now == nil {
			return errors.New("clock cannot be nil")
		}
		r.now = now
		return nil
	}
}

// WithFileSystem replaces the OS filesystem
func WithFileSystem(fsys FileSystem) Option {
	return func(r *Registry) error {
		if fsys == nil {
			return errors.New("filesystem cannot be nil")
		}
		r.fsys = fsys
		return nil
	}
}

// NewRegistry creates an empty registry. Call Scan to populate it.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		threshold:   DefaultStalenessThreshold,
		concurrency: DefaultScanConcurrency,
		fsys:        OSFileSystem{},
		now:         time.Now,
		entries:     make(map[string]*Entry),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if len(r.dirs) == 0 {
		return nil, errors.New("at least one skills directory is required")
	}

	return r, nil
}

// Scan rediscovers every skill under the configured directories and replaces
// the cache. Broken skills are logged and left out. An error is returned only
// when none of the directories could be read.
func (r *Registry) Scan(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "registry.scan")
	defer span.End()

	paths, err := discoverSkillFiles(ctx, r.fsys, r.dirs, r.excludes...)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return err
	}

	results := make([]*Entry, len(paths))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.loadEntry(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	entries := make(map[string]*Entry, len(results))
	for _, entry := range results {
		if entry == nil {
			continue
		}
		if prev, exists := entries[entry.Info.ID]; exists {
			logger.G(ctx).WithFields(map[string]any{
				logger.FieldSkillID: entry.Info.ID,
				logger.FieldPath:    entry.Info.Path,
				"previous_path":     prev.Info.Path,
			}).Warn("duplicate skill ID, previous skill will be overwritten")
		}
		entries[entry.Info.ID] = entry
	}

	r.mu.Lock()
	r.entries = entries
	r.lastScan = r.now()
	r.mu.Unlock()

	span.SetAttributes(
		attribute.Int("skills.discovered", len(paths)),
		attribute.Int("skills.loaded", len(entries)),
	)
	logger.G(ctx).WithField("discovered", len(paths)).WithField("loaded", len(entries)).Debug("scanned skills directories")

	return nil
}

func (r *Registry) loadEntry(ctx context.Context, path string) *Entry {
	id := IDFromPath(path)
	log := logger.G(ctx).WithField(logger.FieldSkillID, id).WithField(logger.FieldPath, path)

	if !ValidateID(id) {
		log.Warn("skipping skill with invalid ID (should be lowercase with hyphens)")
		return nil
	}

	file, err := ReadSkillFile(r.fsys, path)
	if err != nil {
		log.WithError(err).Warn("failed to load skill")
		return nil
	}

	return &Entry{
		Info: Info{
			ID:           id,
			Path:         path,
			Metadata:     file.Metadata,
			LastModified: file.LastModified,
		},
		LastChecked: r.now(),
	}
}

// IsStale reports whether the last scan is older than the staleness
// threshold. A registry that has never scanned is stale.
func (r *Registry) IsStale() bool {
	r.mu.RLock()
	lastScan := r.lastScan
	r.mu.RUnlock()

	return r.now().Sub(lastScan) > r.threshold
}

// Invalidate makes the next IsStale call report true
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.lastScan = time.Time{}
	r.mu.Unlock()
}

// RefreshIfStale scans when the registry is stale and reports whether it did
func (r *Registry) RefreshIfStale(ctx context.Context) (bool, error) {
	if !r.IsStale() {
		return false, nil
	}
	if err := r.Scan(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// IsModified reports whether the skill file changed since it was cached.
// Unknown IDs and stat failures count as modified so callers reload rather
// than serve stale data.
func (r *Registry) IsModified(ctx context.Context, id string) bool {
	entry, ok := r.lookup(id)
	if !ok {
		return true
	}
	return r.isModified(ctx, entry)
}

func (r *Registry) isModified(ctx context.Context, entry Entry) bool {
	info, err := r.fsys.Stat(entry.Info.Path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField(logger.FieldSkillID, entry.Info.ID).Warn("failed to check modification time")
		return true
	}
	return info.ModTime().After(entry.Info.LastModified)
}

// SkillInfos returns a snapshot of every cached skill, sorted by ID
func (r *Registry) SkillInfos() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.entries))
	for _, entry := range r.entries {
		infos = append(infos, entry.Info)
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// GetSkill returns the skill with its instructions read from disk. Unknown
// IDs trigger at most one rescan, and only when the registry is stale. The
// boolean is false when the skill does not exist or cannot be read.
func (r *Registry) GetSkill(ctx context.Context, id string) (*Skill, bool) {
	ctx, span := tracer.Start(ctx, "registry.get_skill", trace.WithAttributes(attribute.String("skill.id", id)))
	defer span.End()

	rescanned := false
	for {
		entry, known := r.lookup(id)
		modified := known && r.isModified(ctx, entry)
		action := resolve(known, !rescanned && r.IsStale(), modified)
		span.AddEvent(action.String())

		switch action {
		case resolveRescan:
			rescanned = true
			if err := r.Scan(ctx); err != nil {
				logger.G(ctx).WithError(err).WithField(logger.FieldSkillID, id).Error("failed to rescan skills")
				return nil, false
			}
		case resolveReload:
			return r.reload(ctx, entry)
		case resolveReadContent:
			return r.readContent(ctx, entry)
		default:
			return nil, false
		}
	}
}

func (r *Registry) reload(ctx context.Context, entry Entry) (*Skill, bool) {
	file, err := ReadSkillFile(r.fsys, entry.Info.Path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField(logger.FieldSkillID, entry.Info.ID).Error("failed to reload skill")
		return nil, false
	}

	info := Info{
		ID:           entry.Info.ID,
		Path:         entry.Info.Path,
		Metadata:     file.Metadata,
		LastModified: file.LastModified,
	}

	r.mu.Lock()
	r.entries[info.ID] = &Entry{Info: info, LastChecked: r.now()}
	r.mu.Unlock()

	return &Skill{Info: info, Content: strings.TrimSpace(file.Body)}, true
}

func (r *Registry) readContent(ctx context.Context, entry Entry) (*Skill, bool) {
	file, err := ReadSkillFile(r.fsys, entry.Info.Path)
	if err != nil {
		logger.G(ctx).WithError(err).WithField(logger.FieldSkillID, entry.Info.ID).Error("failed to read skill content")
		return nil, false
	}

	return &Skill{Info: entry.Info, Content: strings.TrimSpace(file.Body)}, true
}

func (r *Registry) lookup(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Entry returns a copy of the cached entry for id
func (r *Registry) Entry(id string) (Entry, bool) {
	return r.lookup(id)
}

// LastScan returns the time of the last completed scan
func (r *Registry) LastScan() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastScan
}

// Len returns the number of cached skills
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Dirs returns the configured skills directories
func (r *Registry) Dirs() []string {
	return append([]string(nil), r.dirs...)
}
