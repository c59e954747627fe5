package asset

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rebelforge/assetdb/pkg/asset_storage/common"
	"github.com/rebelforge/assetdb/pkg/asset_storage/container"
)

// Record is an undecoded asset payload. Decoding of the payload contents
// belongs to the asset consumers.
type Record struct {
	ID      uint32
	GroupID uint32
	Data    []byte
}

type (
	// Texture is a texture record.
	Texture struct{ Record }

	// Model is a model record. Its payload is preceded by the list of
	// references to the textures it uses.
	Model struct {
		Record
		Textures []Ref
	}

	// Behavior is a scripted behavior class record.
	Behavior struct{ Record }

	Animation struct{ Record }

	Sound struct{ Record }

	Sequence struct{ Record }
)

// Built-in asset kinds.
var (
	TextureKind   = NewKind("texture", ".tex", container.NewTag("TXTR"), recordDecoder(func(r Record) *Texture { return &Texture{r} }))
	ModelKind     = NewKind("model", ".mdl", container.NewTag("MODL"), decodeModel)
	BehaviorKind  = NewKind("behavior", ".cls", container.NewTag("BHVR"), recordDecoder(func(r Record) *Behavior { return &Behavior{r} }))
	AnimationKind = NewKind("animation", ".ani", container.NewTag("ANIM"), recordDecoder(func(r Record) *Animation { return &Animation{r} }))
	SoundKind     = NewKind("sound", ".snd", container.NewTag("SOND"), recordDecoder(func(r Record) *Sound { return &Sound{r} }))
	SequenceKind  = NewKind("sequence", ".seq", container.NewTag("SEQN"), recordDecoder(func(r Record) *Sequence { return &Sequence{r} }))
)

// BuiltinKinds returns all built-in asset kinds.
func BuiltinKinds() []Descriptor {
	return []Descriptor{
		TextureKind,
		ModelKind,
		BehaviorKind,
		AnimationKind,
		SoundKind,
		SequenceKind,
	}
}

func recordDecoder[T any](wrap func(Record) T) Decoder[T] {
	return func(r io.Reader, e container.DirectoryEntry) (T, error) {
		rec, err := readRecord(r, e)
		if err != nil {
			var zero T
			return zero, err
		}
		return wrap(rec), nil
	}
}

func readRecord(r io.Reader, e container.DirectoryEntry) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:      e.RecordID,
		GroupID: e.GroupID,
		Data:    data,
	}, nil
}

func decodeModel(r io.Reader, e container.DirectoryEntry) (*Model, error) {
	rec, err := readRecord(r, e)
	if err != nil {
		return nil, err
	}

	refs, data, err := splitRefs(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("model texture list: %w", err)
	}

	rec.Data = data

	return &Model{Record: rec, Textures: refs}, nil
}

// EncodeModel returns model payload referencing the given textures.
func EncodeModel(textures []Ref, data []byte) []byte {
	b := make([]byte, 4+len(textures)*RefSize, 4+len(textures)*RefSize+len(data))
	binary.LittleEndian.PutUint32(b, uint32(len(textures)))

	for i := range textures {
		textures[i].Encode(b[4+i*RefSize:])
	}

	return append(b, data...)
}

func splitRefs(b []byte) ([]Ref, []byte, error) {
	if len(b) < 4 {
		return nil, nil, common.Formatf("missing reference count")
	}

	n := binary.LittleEndian.Uint32(b)
	b = b[4:]

	if uint64(n)*RefSize > uint64(len(b)) {
		return nil, nil, common.Formatf("%d references do not fit %d bytes", n, len(b))
	}

	refs := make([]Ref, n)
	for i := range refs {
		refs[i], _ = DecodeRef(b[i*RefSize:])
	}

	return refs, b[n*RefSize:], nil
}
