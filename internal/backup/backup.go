// Package backup snapshots the SQLite database to S3-compatible
// storage: WAL checkpoint, file copy, gzip, passphrase encryption,
// timestamped upload, and retention pruning. Disabled unless S3
// credentials and a passphrase are configured.
package backup

import (
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Config holds backup manager configuration. Snapshots are encrypted
// with a key derived from Passphrase before leaving the machine.
type Config struct {
	S3            S3Config
	DBPath        string
	Passphrase    string
	Interval      time.Duration
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastKey    string     `json:"last_key,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager runs scheduled and on-demand database snapshots.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status
	logger *slog.Logger

	db     *sql.DB
	client s3Client

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. Without bucket, credentials and
// a passphrase the manager stays disabled and every run is a no-op
// error.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger.With("component", "backup"),
		status: Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" && cfg.Passphrase != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
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

// Enabled reports whether the manager has a configured client.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client != nil
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.client == nil {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup", "error", err)
				}
				if err := m.Cleanup(ctx); err != nil {
					m.logger.Error("retention cleanup", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// RunNow snapshots the database and uploads it. Returns the object key.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("backup not configured: S3 credentials or passphrase missing")
	}

	m.setStatus(Status{State: StateRunning})

	key := ObjectKey(cfg.S3.Prefix, time.Now().UTC())

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("hearth-backup-%d.db", os.Getpid()))
	gzFile := dbCopy + ".gz"
	encFile := gzFile + ".enc"
	defer os.Remove(dbCopy)
	defer os.Remove(gzFile)
	defer os.Remove(encFile)

	// Checkpoint WAL so the copied file is complete on its own.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("wal checkpoint: %w", err)
	}
	if err := copyFile(cfg.DBPath, dbCopy); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("copy database: %w", err)
	}
	if err := gzipFile(dbCopy, gzFile); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := EncryptFile(gzFile, encFile, cfg.Passphrase); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("encrypt: %w", err)
	}

	body, err := os.Open(encFile)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	defer body.Close()
	stat, _ := body.Stat()

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now, LastKey: key})
	m.logger.Info("backup uploaded", "key", key, "bytes", stat.Size())
	return key, nil
}

// Cleanup deletes snapshots older than the retention period.
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.RetentionDays)

	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.S3.Bucket),
		Prefix: aws.String(cfg.S3.Prefix),
	})
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		stamp, ok := ParseObjectKey(*obj.Key)
		if !ok || !stamp.Before(cutoff) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    obj.Key,
		}); err != nil {
			m.logger.Error("delete expired snapshot", "key", *obj.Key, "error", err)
		}
	}
	return nil
}

const keyTimeFormat = "2006-01-02T150405Z"

const keySuffix = ".db.gz.enc"

// ObjectKey builds the age-keyed object name for a snapshot taken at t.
func ObjectKey(prefix string, t time.Time) string {
	name := fmt.Sprintf("hearth-%s%s", t.UTC().Format(keyTimeFormat), keySuffix)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ParseObjectKey recovers the snapshot time from an object key. Returns
// false for keys this manager did not write.
func ParseObjectKey(key string) (time.Time, bool) {
	base := path.Base(key)
	if len(base) < len("hearth-")+len(keySuffix) {
		return time.Time{}, false
	}
	stamp := base[len("hearth-") : len(base)-len(keySuffix)]
	t, err := time.Parse(keyTimeFormat, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
