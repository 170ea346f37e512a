package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// BuildItemKey fingerprints a selection so repeated adds of the same
// item, variant and add-on set land on the same cart line. Add-on order
// does not change the key.
func BuildItemKey(foodItemID uuid.UUID, variantID *uuid.UUID, addonIDs []uuid.UUID) string {
	parts := make([]string, 0, len(addonIDs)+2)
	parts = append(parts, foodItemID.String())
	if variantID != nil {
		parts = append(parts, variantID.String())
	} else {
		parts = append(parts, "base")
	}

	addons := make([]string, 0, len(addonIDs))
	for _, id := range addonIDs {
		addons = append(addons, id.String())
	}
	sort.Strings(addons)
	parts = append(parts, addons...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}
