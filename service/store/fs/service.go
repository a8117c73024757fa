// Package fs provides a filesystem-backed approval store built on viant/afs,
// so records survive restarts and the base location can be any scheme afs
// understands (file, mem, s3, gs, ...). An in-memory mirror guards the
// compare-and-swap transition; the file under the base path is the durable
// copy.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"

	"github.com/viant/hitl/internal/clock"
	"github.com/viant/hitl/model"
	"github.com/viant/hitl/service/store"
)

// Service implements store.Service on top of an afs filesystem.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	records  map[string]*model.Request
	byStatus map[model.Status]map[string]struct{}
	feed     *store.Feed
}

// Ensure Service implements store.Service
var _ store.Service = (*Service)(nil)

// New creates a filesystem store rooted at basePath and loads any records
// already present there.
func New(ctx context.Context, basePath string, options ...Option) (*Service, error) {
	ret := &Service{
		basePath: basePath,
		records:  make(map[string]*model.Request),
		byStatus: make(map[model.Status]map[string]struct{}),
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.feed == nil {
		ret.feed = store.NewFeed(store.DefaultFeedBuffer)
	}
	if err := ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

// Create persists a new record, forcing status to Pending.
func (s *Service) Create(ctx context.Context, request *model.Request) error {
	if request == nil {
		return fmt.Errorf("cannot create nil request")
	}
	if request.ID == "" {
		return store.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[request.ID]; ok {
		return fmt.Errorf("request %s: %w", request.ID, store.ErrDuplicateID)
	}
	request.Status = model.StatusPending
	record := request.Clone()
	if err := s.persist(ctx, record); err != nil {
		return err
	}
	s.records[record.ID] = record
	s.index(record.ID, "", record.Status)
	s.feed.Publish(&model.Event{
		Type:      model.EventRequestCreated,
		Request:   record.Clone(),
		EmittedAt: clock.Now(),
	})
	return nil
}

// Get returns a copy of the record.
func (s *Service) Get(_ context.Context, id string) (*model.Request, error) {
	if id == "" {
		return nil, store.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	return record.Clone(), nil
}

// List returns matching records.
func (s *Service) List(_ context.Context, filter store.Filter) ([]*model.Request, error) {
	s.mu.RLock()
	var matched []*model.Request
	for _, record := range s.records {
		if filter.Matches(record) {
			matched = append(matched, record.Clone())
		}
	}
	s.mu.RUnlock()

	store.Sort(matched, filter)
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Transition applies a compare-and-swap status update and persists the
// updated record before publishing the change.
func (s *Service) Transition(ctx context.Context, transition store.Transition) (*model.Request, error) {
	if transition.ID == "" {
		return nil, store.ErrInvalidID
	}
	if !transition.To.Terminal() {
		return nil, fmt.Errorf("cannot transition to non-terminal status %q", transition.To)
	}
	from := transition.From
	if from == "" {
		from = model.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[transition.ID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", transition.ID, store.ErrNotFound)
	}
	if record.Status != from {
		return nil, fmt.Errorf("request %s is %s: %w", record.ID, record.Status, store.ErrConflict)
	}

	now := clock.Now()
	updated := record.Clone()
	updated.Status = transition.To
	updated.DecidedAt = &now
	updated.DecidedBy = transition.DecidedBy
	updated.Reason = transition.Reason
	if err := s.persist(ctx, updated); err != nil {
		return nil, err
	}

	s.records[updated.ID] = updated
	s.index(updated.ID, from, updated.Status)
	s.feed.Publish(&model.Event{
		Type:      model.EventRequestUpdated,
		Request:   updated.Clone(),
		EmittedAt: now,
	})
	return updated.Clone(), nil
}

// Watch subscribes to the change feed.
func (s *Service) Watch(ctx context.Context, ids ...string) *store.Subscription {
	return s.feed.Subscribe(ctx, ids...)
}

func (s *Service) persist(ctx context.Context, record *model.Request) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal request %s: %w", record.ID, err)
	}
	filePath := s.requestPath(record.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save request to %s: %v: %w", filePath, err, store.ErrUnavailable)
	}
	return nil
}

// load populates the in-memory mirror from records already on disk.
func (s *Service) load(ctx context.Context) error {
	exists, err := s.fs.Exists(ctx, s.basePath)
	if err != nil {
		return fmt.Errorf("failed to check base path %s: %v: %w", s.basePath, err, store.ErrUnavailable)
	}
	if !exists {
		return nil
	}
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return fmt.Errorf("failed to list %s: %v: %w", s.basePath, err, store.ErrUnavailable)
	}
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return fmt.Errorf("failed to read %s: %v: %w", object.URL(), err, store.ErrUnavailable)
		}
		record := &model.Request{}
		if err = json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", object.URL(), err)
		}
		if record.ID == "" {
			continue
		}
		s.records[record.ID] = record
		s.index(record.ID, "", record.Status)
	}
	return nil
}

func (s *Service) requestPath(id string) string {
	return path.Join(s.basePath, "requests", id+".json")
}

func (s *Service) index(id string, from, to model.Status) {
	if from != "" {
		delete(s.byStatus[from], id)
	}
	bucket, ok := s.byStatus[to]
	if !ok {
		bucket = make(map[string]struct{})
		s.byStatus[to] = bucket
	}
	bucket[id] = struct{}{}
}
