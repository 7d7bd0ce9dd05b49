package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/odnalezione/odnalezione-backend/internal/domain"
	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

const (
	DraftsKey   = "import_drafts"
	AcceptedKey = "accepted_import_records"
)

// DraftMirror keeps a copy of all drafts and of submitted records in redis.
// Every write replaces the whole value; the last writer wins.
type DraftMirror interface {
	StoreDrafts(ctx context.Context, drafts []*types.ImportDraft) error
	LoadDrafts(ctx context.Context) ([]*types.ImportDraft, error)
	AppendAccepted(ctx context.Context, recs []items.RecordEvaluation) error
	Close() error
}

type draftMirror struct {
	log *logger.Logger
	rdb *goredis.Client
}

type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NewDraftMirror connects to redis. It returns a nil mirror and no error when
// cfg.Addr is empty.
func NewDraftMirror(log *logger.Logger, cfg Config) (DraftMirror, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &draftMirror{
		log: log.With("service", "RedisDraftMirror"),
		rdb: rdb,
	}, nil
}

func (m *draftMirror) StoreDrafts(ctx context.Context, drafts []*types.ImportDraft) error {
	b, err := EncodeDrafts(drafts)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, DraftsKey, b, 0).Err()
}

func (m *draftMirror) LoadDrafts(ctx context.Context) ([]*types.ImportDraft, error) {
	b, err := m.rdb.Get(ctx, DraftsKey).Bytes()
	if err == goredis.Nil {
		return []*types.ImportDraft{}, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeDrafts(b)
}

func (m *draftMirror) AppendAccepted(ctx context.Context, recs []items.RecordEvaluation) error {
	if len(recs) == 0 {
		return nil
	}
	var existing []items.RecordEvaluation
	b, err := m.rdb.Get(ctx, AcceptedKey).Bytes()
	switch {
	case err == goredis.Nil:
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(b, &existing); err != nil {
			m.log.Warn("Discarding unreadable accepted records", "key", AcceptedKey, "error", err)
			existing = nil
		}
	}
	out, err := json.Marshal(append(existing, recs...))
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, AcceptedKey, out, 0).Err()
}

func (m *draftMirror) Close() error { return m.rdb.Close() }

func EncodeDrafts(drafts []*types.ImportDraft) ([]byte, error) {
	if drafts == nil {
		drafts = []*types.ImportDraft{}
	}
	return json.Marshal(drafts)
}

func DecodeDrafts(b []byte) ([]*types.ImportDraft, error) {
	var out []*types.ImportDraft
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", DraftsKey, err)
	}
	if out == nil {
		out = []*types.ImportDraft{}
	}
	return out, nil
}
