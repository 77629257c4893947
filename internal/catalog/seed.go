package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/skatedesk/internal/model"
	"github.com/erazemk/skatedesk/internal/store"
)

// Seed is a YAML catalog of items to preload.
type Seed struct {
	Skates     []SeedSkate     `yaml:"skates"`
	Skatemates []SeedSkatemate `yaml:"skatemates"`
}

// SeedSkate is one skate entry; attributes sit next to the title.
type SeedSkate struct {
	Title                 string `yaml:"title"`
	QRCode                string `yaml:"qr_code"`
	model.SkateAttributes `yaml:",inline"`
}

// SeedSkatemate is one skatemate entry.
type SeedSkatemate struct {
	Title                     string `yaml:"title"`
	QRCode                    string `yaml:"qr_code"`
	model.SkatemateAttributes `yaml:",inline"`
}

// Items converts the seed into create requests, skates first.
func (s *Seed) Items() []model.NewItem {
	items := make([]model.NewItem, 0, len(s.Skates)+len(s.Skatemates))
	for _, e := range s.Skates {
		attrs := e.SkateAttributes
		items = append(items, model.NewItem{Type: model.ItemTypeSkate, Title: e.Title, QRCode: e.QRCode, Skate: &attrs})
	}
	for _, e := range s.Skatemates {
		attrs := e.SkatemateAttributes
		items = append(items, model.NewItem{Type: model.ItemTypeSkatemate, Title: e.Title, QRCode: e.QRCode, Skatemate: &attrs})
	}
	return items
}

// ParseSeed decodes and validates a seed catalog.
func ParseSeed(data []byte) (*Seed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("seed: catalog is empty")
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("seed: decode catalog: %w", err)
	}
	for i, n := range s.Items() {
		if err := ValidateNewItem(n); err != nil {
			return nil, fmt.Errorf("seed: entry %d (%s): %w", i+1, n.Title, err)
		}
	}
	return &s, nil
}

// LoadSeedFile reads and parses a seed catalog from disk.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	s, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Skipped int
}

// Import creates the seed items that are not in the inventory yet. Entries
// with a QR code are skipped when the code is taken; entries without one are
// skipped when an item of the same type and title exists.
func Import(ctx context.Context, db *sql.DB, s *Seed, logger *zap.SugaredLogger) (ImportResult, error) {
	var res ImportResult

	titles := map[model.ItemType]map[string]bool{}
	for _, t := range []model.ItemType{model.ItemTypeSkate, model.ItemTypeSkatemate} {
		existing, err := store.ListItemsByType(ctx, db, t)
		if err != nil {
			return res, err
		}
		titles[t] = make(map[string]bool, len(existing))
		for _, it := range existing {
			titles[t][it.Title] = true
		}
	}

	for _, n := range s.Items() {
		if n.QRCode == "" && titles[n.Type][n.Title] {
			res.Skipped++
			continue
		}

		item, err := store.CreateItem(ctx, db, n)
		if errors.Is(err, store.ErrDuplicateQRCode) {
			logger.Debugw("Seed item already present", "qr_code", n.QRCode)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed: creating %q: %w", n.Title, err)
		}

		titles[n.Type][n.Title] = true
		res.Created++
		logger.Debugw("Seed item created", "id", item.ID, "type", item.Type, "qr_code", item.QRCode)
	}

	if err := store.SetSetting(ctx, db, store.SettingSeedImportedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return res, err
	}

	logger.Infow("Seed catalog imported", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}
