// Package store persists composer drafts to a local SQLite database. One
// draft is current at a time: saving replaces whatever was there, loading
// returns the most recent save. Media rows keep the local file reference
// and alt text only; raw bytes and fetched cards are never written.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bluesky-social/quill/compose"
)

type Draft struct {
	gorm.Model

	Active int
	Labels string // JSON array

	ReplyRootURI   string
	ReplyRootCid   string
	ReplyParentURI string
	ReplyParentCid string

	QuoteURI string
	QuoteCid string

	GateOverridden bool
	GateRules      string // JSON array of {Kind, List}

	Entries []DraftEntry `gorm:"constraint:OnDelete:CASCADE"`
}

type DraftEntry struct {
	gorm.Model

	DraftID  uint `gorm:"index"`
	Position int

	Text  string
	Langs string // JSON array
	Tags  string // JSON array

	VideoPath string
	VideoAlt  string
	Gif       string // JSON DraftGifRef, empty when unset

	Media []DraftMedia `gorm:"constraint:OnDelete:CASCADE"`
}

type DraftMedia struct {
	gorm.Model

	DraftEntryID uint `gorm:"index"`
	Position     int

	Path string
	Alt  string
}

// DraftStore implements compose.DraftStore over gorm/SQLite.
type DraftStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ compose.DraftStore = (*DraftStore)(nil)

func NewDraftStore(sqlitePath string, logger *slog.Logger) (*DraftStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{
		Logger: slogGorm.New(slogGorm.WithLogger(logger)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		return nil, fmt.Errorf("failed to set journal_mode=WAL: %w", err)
	}
	if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(&Draft{}, &DraftEntry{}, &DraftMedia{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate draft tables: %w", err)
	}

	rawDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get raw DB from gorm: %w", err)
	}
	rawDB.SetMaxOpenConns(1)

	return &DraftStore{db: db, logger: logger}, nil
}

// SaveDraft replaces the stored draft with snap.
func (s *DraftStore) SaveDraft(ctx context.Context, snap *compose.DraftSnapshot) error {
	row, err := draftFromSnapshot(snap)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteAll(tx); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("writing draft: %w", err)
		}
		return nil
	})
}

// LoadDraft returns the most recently saved draft, or (nil, nil) when
// nothing is stored.
func (s *DraftStore) LoadDraft(ctx context.Context) (*compose.DraftSnapshot, error) {
	var row Draft
	err := s.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Entries.Media", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}
	return snapshotFromDraft(&row)
}

// ClearDraft drops any stored draft.
func (s *DraftStore) ClearDraft(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(deleteAll)
}

func deleteAll(tx *gorm.DB) error {
	for _, model := range []any{&DraftMedia{}, &DraftEntry{}, &Draft{}} {
		if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clearing drafts: %w", err)
		}
	}
	return nil
}

func draftFromSnapshot(snap *compose.DraftSnapshot) (*Draft, error) {
	labels, err := marshalJSON(snap.Labels)
	if err != nil {
		return nil, err
	}
	rules, err := marshalJSON(snap.GateRules)
	if err != nil {
		return nil, err
	}
	row := &Draft{
		Active:         snap.Active,
		Labels:         labels,
		ReplyRootURI:   snap.ReplyRootURI,
		ReplyRootCid:   snap.ReplyRootCid,
		ReplyParentURI: snap.ReplyParentURI,
		ReplyParentCid: snap.ReplyParentCid,
		QuoteURI:       snap.QuoteURI,
		QuoteCid:       snap.QuoteCid,
		GateOverridden: snap.GateOverridden,
		GateRules:      rules,
	}
	for i, es := range snap.Entries {
		langs, err := marshalJSON(es.Langs)
		if err != nil {
			return nil, err
		}
		tags, err := marshalJSON(es.Tags)
		if err != nil {
			return nil, err
		}
		entry := DraftEntry{
			Position: i,
			Text:     es.Text,
			Langs:    langs,
			Tags:     tags,
		}
		if es.Video != nil {
			entry.VideoPath = es.Video.Path
			entry.VideoAlt = es.Video.Alt
		}
		if es.Gif != nil {
			gif, err := marshalJSON(es.Gif)
			if err != nil {
				return nil, err
			}
			entry.Gif = gif
		}
		for j, m := range es.Images {
			entry.Media = append(entry.Media, DraftMedia{Position: j, Path: m.Path, Alt: m.Alt})
		}
		row.Entries = append(row.Entries, entry)
	}
	return row, nil
}

func snapshotFromDraft(row *Draft) (*compose.DraftSnapshot, error) {
	snap := &compose.DraftSnapshot{
		Active:         row.Active,
		ReplyRootURI:   row.ReplyRootURI,
		ReplyRootCid:   row.ReplyRootCid,
		ReplyParentURI: row.ReplyParentURI,
		ReplyParentCid: row.ReplyParentCid,
		QuoteURI:       row.QuoteURI,
		QuoteCid:       row.QuoteCid,
		GateOverridden: row.GateOverridden,
	}
	if err := unmarshalJSON(row.Labels, &snap.Labels); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(row.GateRules, &snap.GateRules); err != nil {
		return nil, err
	}
	for _, er := range row.Entries {
		es := compose.DraftEntrySnapshot{Text: er.Text}
		if err := unmarshalJSON(er.Langs, &es.Langs); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(er.Tags, &es.Tags); err != nil {
			return nil, err
		}
		if er.VideoPath != "" {
			es.Video = &compose.DraftMediaRef{Path: er.VideoPath, Alt: er.VideoAlt}
		}
		if er.Gif != "" {
			var gif compose.DraftGifRef
			if err := unmarshalJSON(er.Gif, &gif); err != nil {
				return nil, err
			}
			es.Gif = &gif
		}
		for _, m := range er.Media {
			es.Images = append(es.Images, compose.DraftMediaRef{Path: m.Path, Alt: m.Alt})
		}
		snap.Entries = append(snap.Entries, es)
	}
	return snap, nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding draft field: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(s string, out any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("decoding draft field: %w", err)
	}
	return nil
}
