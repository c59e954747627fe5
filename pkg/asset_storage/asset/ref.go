package asset

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
)

// RefSize is a size of binary-encoded Ref.
const RefSize = 8

// Reserved record IDs that never address a record.
const (
	// NoAssetID marks a reference slot that intentionally points nowhere.
	NoAssetID uint32 = 0xFFFFFFFF
	// HoleID marks a reference slot left by a removed asset.
	HoleID uint32 = 0xFFFFFFFE
)

// Ref references an asset record possibly owned by another database.
//
// Dep is an index in the dependency table of the database resolving the
// reference, 0 means the resolving database itself. The same Ref addresses
// different assets when resolved by different databases.
type Ref struct {
	ID  uint32
	Dep uint32
}

// IsNull checks whether r is the zero reference.
func (r Ref) IsNull() bool {
	return r == Ref{}
}

// IsSentinel checks whether r addresses no asset: it is either null or
// carries one of the reserved IDs.
func (r Ref) IsSentinel() bool {
	return r.IsNull() || r.ID == NoAssetID || r.ID == HoleID
}

// Local returns r rewritten against the database it points into.
func (r Ref) Local() Ref {
	return Ref{ID: r.ID}
}

// String returns "id@dep" form of r with hexadecimal id.
func (r Ref) String() string {
	return "0x" + strconv.FormatUint(uint64(r.ID), 16) + "@" + strconv.FormatUint(uint64(r.Dep), 10)
}

// ParseRef parses "id" or "id@dep" string. Both numbers may be decimal or
// 0x-prefixed hexadecimal.
func ParseRef(s string) (Ref, error) {
	id, dep, withDep := strings.Cut(s, "@")

	var (
		r   Ref
		err error
	)

	r.ID, err = parseUint32(id)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid asset reference %q: id: %w", s, err)
	}

	if withDep {
		r.Dep, err = parseUint32(dep)
		if err != nil {
			return Ref{}, fmt.Errorf("invalid asset reference %q: dependency: %w", s, err)
		}
	}

	return r, nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

// Encode writes r into b in the binary form used by record payloads.
// b must be at least RefSize bytes.
func (r Ref) Encode(b []byte) {
	binary.LittleEndian.PutUint32(b, r.ID)
	binary.LittleEndian.PutUint32(b[4:], r.Dep)
}

// DecodeRef reads binary-encoded reference from the beginning of b.
func DecodeRef(b []byte) (Ref, error) {
	if len(b) < RefSize {
		return Ref{}, common.Formatf("asset reference requires %d bytes, got %d", RefSize, len(b))
	}

	return Ref{
		ID:  binary.LittleEndian.Uint32(b),
		Dep: binary.LittleEndian.Uint32(b[4:]),
	}, nil
}
