package rental

import (
	"strings"

	"github.com/erazemk/skatedesk/internal/model"
)

// SkateQRPrefix marks QR codes printed on skates. The match is case-sensitive.
const SkateQRPrefix = "skate_"

// ClassifyItemType infers the item type from a scanned code. Codes carrying
// SkateQRPrefix are skates; everything else is a skatemate.
func ClassifyItemType(code string) model.ItemType {
	if strings.HasPrefix(code, SkateQRPrefix) {
		return model.ItemTypeSkate
	}
	return model.ItemTypeSkatemate
}

// CodeMatchesType reports whether code classifies as t.
func CodeMatchesType(code string, t model.ItemType) bool {
	return ClassifyItemType(code) == t
}
