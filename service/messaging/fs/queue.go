// Package fs provides a filesystem-backed queue built on viant/afs. Each
// message lives as a json file that moves between state directories
// (pending, processing, completed, failed, dlq), so queued notifications
// survive process restarts.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"

	"github.com/viant/hitl/internal/idgen"
	"github.com/viant/hitl/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue.
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed directory.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.completeMessage(context.Background(), m)
}

// Nack records the failure and parks the message for retry, or in the DLQ
// once the retry limit is exceeded.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	return m.queue.failMessage(context.Background(), m)
}

// Config holds the filesystem queue configuration.
type Config struct {
	BasePath   string
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns a default queue configuration.
func DefaultConfig() Config {
	return Config{
		BasePath:   "/tmp/hitl/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Queue implements a filesystem-based messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        Config
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a filesystem-based queue and ensures its state
// directories exist.
func NewQueue[T any](fs afs.Service, config Config) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}

	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish writes a new message file into the pending directory.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        idgen.New(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		queue:     q,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.upload(ctx, path.Join(q.pendingDir, message.ID+".json"), data)
}

// Consume retrieves a single message, preferring failed messages eligible
// for retry. It returns (nil, nil) when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	retryMessage, err := q.checkFailedMessages(ctx)
	if err != nil {
		return nil, err
	}
	if retryMessage != nil {
		return retryMessage, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	obj, err := q.oldestJSON(ctx, q.pendingDir)
	if err != nil || obj == nil {
		return nil, err
	}

	message, err := q.read(ctx, obj.URL())
	if err != nil {
		_ = q.fs.Move(ctx, obj.URL(), path.Join(q.failedDir, "invalid-"+obj.Name()))
		return nil, err
	}
	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err = q.move(ctx, message, obj, q.processingDir); err != nil {
		return nil, err
	}
	return message, nil
}

// checkFailedMessages looks for failed messages eligible for retry.
func (q *Queue[T]) checkFailedMessages(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	obj, err := q.oldestJSON(ctx, q.failedDir)
	if err != nil || obj == nil {
		return nil, err
	}

	message, err := q.read(ctx, obj.URL())
	if err != nil {
		_ = q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, "invalid-"+obj.Name()))
		return nil, err
	}
	if message.Retries > q.config.MaxRetries {
		if err = q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, obj.Name())); err != nil {
			return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
		}
		return nil, nil
	}
	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err = q.move(ctx, message, obj, q.processingDir); err != nil {
		return nil, err
	}
	return message, nil
}

// completeMessage moves a message from processing to completed.
func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal completed message: %w", err)
	}
	if err = q.upload(ctx, path.Join(q.completedDir, m.ID+".json"), data); err != nil {
		return fmt.Errorf("failed to write message to completed directory: %w", err)
	}
	return q.deleteIfExists(ctx, path.Join(q.processingDir, m.ID+".json"))
}

// failMessage parks a message for retry, or in the DLQ once the retry limit
// is exceeded.
func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal failed message: %w", err)
	}
	destDir := q.failedDir
	if m.Retries > q.config.MaxRetries {
		destDir = q.dlqDir
	}
	if err = q.upload(ctx, path.Join(destDir, m.ID+".json"), data); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", destDir, err)
	}
	return q.deleteIfExists(ctx, path.Join(q.processingDir, m.ID+".json"))
}

// oldestJSON returns the oldest json message file in dir, or nil.
func (q *Queue[T]) oldestJSON(ctx context.Context, dir string) (storage.Object, error) {
	objects, err := q.fs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			return obj, nil
		}
	}
	return nil, nil
}

// move uploads the updated message into destDir, then removes the source
// object (upload first so a crash never loses the message).
func (q *Queue[T]) move(ctx context.Context, message *Message[T], obj storage.Object, destDir string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal updated message: %w", err)
	}
	if err = q.upload(ctx, path.Join(destDir, obj.Name()), data); err != nil {
		return fmt.Errorf("failed to move message to %s: %w", destDir, err)
	}
	if err = q.fs.Delete(ctx, obj.URL()); err != nil {
		return fmt.Errorf("failed to delete source message: %w", err)
	}
	return nil
}

func (q *Queue[T]) upload(ctx context.Context, dest string, data []byte) error {
	return q.fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) deleteIfExists(ctx context.Context, location string) error {
	if exists, _ := q.fs.Exists(ctx, location); exists {
		if err := q.fs.Delete(ctx, location); err != nil {
			return fmt.Errorf("failed to delete %s: %w", location, err)
		}
	}
	return nil
}

func (q *Queue[T]) read(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	message := &Message[T]{}
	if err = json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return message, nil
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
