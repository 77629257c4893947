// Package catalog validates item records entering the inventory and imports
// seed catalogs.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/skatedesk/internal/model"
	"github.com/erazemk/skatedesk/internal/rental"
)

// ErrInvalidItem wraps every validation failure returned by this package.
var ErrInvalidItem = errors.New("invalid item")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidItem, fmt.Sprintf(format, args...))
}

// ValidateNewItem checks the catalog fields of an item about to be created.
func ValidateNewItem(n model.NewItem) error {
	if !n.Type.Valid() {
		return invalid("type must be skate or skatemate")
	}
	if strings.TrimSpace(n.Title) == "" {
		return invalid("title required")
	}
	if n.QRCode != "" {
		if err := ValidateQRCode(n.Type, n.QRCode); err != nil {
			return err
		}
	}
	if err := model.ValidateAttributes(n.Type, n.Skate, n.Skatemate); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// ValidateQRCode rejects codes that a scan would resolve to the other type.
func ValidateQRCode(t model.ItemType, code string) error {
	if code != strings.TrimSpace(code) || strings.ContainsAny(code, " \t\r\n") {
		return invalid("qr_code must not contain whitespace")
	}
	if !rental.CodeMatchesType(code, t) {
		if t == model.ItemTypeSkate {
			return invalid("skate qr_code must start with %q", rental.SkateQRPrefix)
		}
		return invalid("skatemate qr_code must not start with %q", rental.SkateQRPrefix)
	}
	return nil
}
