package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/LavishGent/breedbase/internal/types"
)

// Hash returns the lower-case hex SHA-256 of the JSON encoding of raw. It is a
// change marker only. The digest depends on list order, so an upstream reorder
// of identical content forces one refresh.
func Hash(raw []types.BreedRaw) (string, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encoding breed list: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
