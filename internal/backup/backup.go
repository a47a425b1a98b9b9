// Package backup exports a user's items and history as an encrypted snapshot
// to S3-compatible storage and restores them from one.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dukerupert/basket/internal/kv"
	"github.com/dukerupert/basket/internal/model"
)

var (
	ErrDisabled = errors.New("backup not configured")
	ErrNotFound = errors.New("backup not found")
)

// s3Client is the subset of *s3.Client the manager uses.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Restorer replaces a user's items and history as one step.
type Restorer interface {
	Restore(ctx context.Context, userID string, items []model.ShoppingItem, entries []model.HistoryEntry) error
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Info describes one stored snapshot.
type Info struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

const snapshotVersion = 1

// snapshot is the plaintext of a backup. Items and History hold the stored
// payloads verbatim, envelope included.
type snapshot struct {
	Version   int             `json:"version"`
	UserID    string          `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Items     json.RawMessage `json:"items,omitempty"`
	History   json.RawMessage `json:"history,omitempty"`
}

// Manager runs exports and restores. It is safe for concurrent use; at most
// one operation runs per user at a time, and each user sees only their own
// status.
type Manager struct {
	mu       sync.Mutex
	bucket   string
	client   s3Client
	kv       kv.Store
	restorer Restorer
	logger   *slog.Logger
	statuses map[string]Status
	busy     map[string]bool
	now      func() time.Time
}

// NewManager returns a manager that is disabled unless cfg carries a bucket
// and credentials.
func NewManager(cfg S3Config, store kv.Store, restorer Restorer, logger *slog.Logger) *Manager {
	var client s3Client
	if cfg.Enabled() {
		client = newS3Client(cfg)
	}
	return newManager(client, cfg.Bucket, store, restorer, logger)
}

func newManager(client s3Client, bucket string, store kv.Store, restorer Restorer, logger *slog.Logger) *Manager {
	return &Manager{
		bucket:   bucket,
		client:   client,
		kv:       store,
		restorer: restorer,
		logger:   logger.With("component", "backup"),
		statuses: make(map[string]Status),
		busy:     make(map[string]bool),
		now:      time.Now,
	}
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Status reports the state of the user's most recent backup operation.
func (m *Manager) Status(userID string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return Status{State: StateDisabled}
	}
	if st, ok := m.statuses[userID]; ok {
		return st
	}
	return Status{State: StateIdle}
}

func (m *Manager) begin(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return ErrDisabled
	}
	if m.busy[userID] {
		return fmt.Errorf("backup already running for user")
	}
	m.busy[userID] = true
	st := m.statuses[userID]
	st.State = StateRunning
	m.statuses[userID] = st
	return nil
}

func (m *Manager) finish(userID string, err error, completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.busy, userID)
	st := m.statuses[userID]
	defer func() { m.statuses[userID] = st }()
	if err != nil {
		st.State = StateError
		st.Error = err.Error()
		return
	}
	st.State = StateIdle
	st.Error = ""
	if completed {
		now := m.now().UTC()
		st.LastBackup = &now
	}
}

func userPrefix(userID string) string {
	return userID + "/"
}

// Export encrypts the user's current items and history and uploads them.
func (m *Manager) Export(ctx context.Context, userID, passphrase string) (info *Info, err error) {
	if err := m.begin(userID); err != nil {
		return nil, err
	}
	defer func() { m.finish(userID, err, err == nil) }()

	itemsRaw, err := m.kv.Get(ctx, kv.ItemsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	historyRaw, err := m.kv.Get(ctx, kv.HistoryKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	created := m.now().UTC()
	plaintext, err := json.Marshal(snapshot{
		Version:   snapshotVersion,
		UserID:    userID,
		CreatedAt: created,
		Items:     itemsRaw,
		History:   historyRaw,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	sealed, err := Encrypt(plaintext, passphrase)
	if err != nil {
		return nil, fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := userPrefix(userID) + "backup-" + created.Format("2006-01-02T150405.000Z") + ".json.enc"
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(sealed),
		ContentLength: aws.Int64(int64(len(sealed))),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to s3: %w", err)
	}

	m.logger.Info("backup exported", "user_id", userID, "key", key, "size", len(sealed))
	return &Info{Key: key, Size: int64(len(sealed)), CreatedAt: created}, nil
}

// Restore replaces the user's items and history with the snapshot at key.
// The data is applied through the Restorer so it cannot interleave with
// list mutations. Keys outside the user's prefix are reported as not found.
func (m *Manager) Restore(ctx context.Context, userID, key, passphrase string) (err error) {
	if !strings.HasPrefix(key, userPrefix(userID)) {
		return ErrNotFound
	}
	if err := m.begin(userID); err != nil {
		return err
	}
	defer func() { m.finish(userID, err, false) }()

	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return ErrNotFound
		}
		return fmt.Errorf("download from s3: %w", err)
	}
	defer out.Body.Close()

	sealed, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	plaintext, err := Decrypt(sealed, passphrase)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := json.Unmarshal(plaintext, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	if snap.UserID != userID {
		return ErrNotFound
	}

	var items []model.ShoppingItem
	if len(snap.Items) > 0 {
		if err := kv.DecodeJSON(kv.ItemsKey(userID), snap.Items, &items); err != nil {
			return fmt.Errorf("decode snapshot items: %w", err)
		}
	}
	var entries []model.HistoryEntry
	if len(snap.History) > 0 {
		if err := kv.DecodeJSON(kv.HistoryKey(userID), snap.History, &entries); err != nil {
			return fmt.Errorf("decode snapshot history: %w", err)
		}
	}

	if err := m.restorer.Restore(ctx, userID, items, entries); err != nil {
		return fmt.Errorf("apply backup: %w", err)
	}
	m.logger.Info("backup restored", "user_id", userID, "key", key, "items", len(items), "entries", len(entries))
	return nil
}

// List returns the user's snapshots, newest first.
func (m *Manager) List(ctx context.Context, userID string) ([]Info, error) {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		return nil, ErrDisabled
	}

	out := []Info{}
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(userPrefix(userID)),
	}
	for {
		page, err := client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		for _, obj := range page.Contents {
			out = append(out, Info{
				Key:       aws.ToString(obj.Key),
				Size:      aws.ToInt64(obj.Size),
				CreatedAt: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

// Prune deletes all but the newest keep snapshots of the user and returns
// how many were removed.
func (m *Manager) Prune(ctx context.Context, userID string, keep int) (int, error) {
	infos, err := m.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(infos) <= keep {
		return 0, nil
	}

	removed := 0
	for _, info := range infos[keep:] {
		_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(info.Key),
		})
		if err != nil {
			m.logger.Warn("delete backup failed", "user_id", userID, "key", info.Key, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
