package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/airtsgen/internal/alerr"
)

// tableContent implements merkletree.Content for table-level hashing.
type tableContent struct {
	id   string
	hash string
}

func (t tableContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(t.id + ":" + t.hash))
	return h[:], nil
}

func (t tableContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(tableContent)
	if !ok {
		return false, nil
	}
	return t.id == o.id && t.hash == o.hash, nil
}

// TableHash returns the SHA-256 of the table's canonical JSON encoding.
// Field order is significant because it drives output order.
func TableHash(t *Table) string {
	data, _ := json.Marshal(t) // plain structs, cannot fail
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Fingerprint computes the merkle root over per-table hashes, in provider
// order. Equal schemas always produce equal fingerprints, so a fingerprint can
// key cached snapshots without breaking output determinism.
func (b Base) Fingerprint() (string, error) {
	if len(b) == 0 {
		h := sha256.Sum256(nil)
		return hex.EncodeToString(h[:]), nil
	}

	contents := make([]merkletree.Content, 0, len(b))
	for _, t := range b {
		contents = append(contents, tableContent{id: t.ID, hash: TableHash(t)})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return "", alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}
	return hex.EncodeToString(tree.MerkleRoot()), nil
}
