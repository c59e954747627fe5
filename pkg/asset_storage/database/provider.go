package database

import (
	"github.com/rebelforge/assetdb/pkg/asset_storage/asset"
	"github.com/rebelforge/assetdb/pkg/asset_storage/assetcache"
)

// Typed accessors below are thin wrappers over Get and GetByRef. Returned
// handles must be released by the caller.
var _ asset.Provider = (*Database)(nil)

// Texture returns the texture with given ID from db itself.
func (db *Database) Texture(id uint32) (*assetcache.Handle[*asset.Texture], error) {
	return Get(db, asset.TextureKind, id)
}

// TextureByRef returns the texture ref points to in db or one of its dependencies.
func (db *Database) TextureByRef(ref asset.Ref) (*assetcache.Handle[*asset.Texture], error) {
	return GetByRef(db, asset.TextureKind, ref)
}

// Model returns the model with given ID from db itself.
func (db *Database) Model(id uint32) (*assetcache.Handle[*asset.Model], error) {
	return Get(db, asset.ModelKind, id)
}

// ModelByRef returns the model ref points to in db or one of its dependencies.
func (db *Database) ModelByRef(ref asset.Ref) (*assetcache.Handle[*asset.Model], error) {
	return GetByRef(db, asset.ModelKind, ref)
}

// Behavior returns the behavior with given ID from db itself.
func (db *Database) Behavior(id uint32) (*assetcache.Handle[*asset.Behavior], error) {
	return Get(db, asset.BehaviorKind, id)
}

// BehaviorByRef returns the behavior ref points to in db or one of its dependencies.
func (db *Database) BehaviorByRef(ref asset.Ref) (*assetcache.Handle[*asset.Behavior], error) {
	return GetByRef(db, asset.BehaviorKind, ref)
}

// Animation returns the animation with given ID from db itself.
func (db *Database) Animation(id uint32) (*assetcache.Handle[*asset.Animation], error) {
	return Get(db, asset.AnimationKind, id)
}

// AnimationByRef returns the animation ref points to in db or one of its dependencies.
func (db *Database) AnimationByRef(ref asset.Ref) (*assetcache.Handle[*asset.Animation], error) {
	return GetByRef(db, asset.AnimationKind, ref)
}

// Sound returns the sound with given ID from db itself.
func (db *Database) Sound(id uint32) (*assetcache.Handle[*asset.Sound], error) {
	return Get(db, asset.SoundKind, id)
}

// SoundByRef returns the sound ref points to in db or one of its dependencies.
func (db *Database) SoundByRef(ref asset.Ref) (*assetcache.Handle[*asset.Sound], error) {
	return GetByRef(db, asset.SoundKind, ref)
}

// Sequence returns the sequence with given ID from db itself.
func (db *Database) Sequence(id uint32) (*assetcache.Handle[*asset.Sequence], error) {
	return Get(db, asset.SequenceKind, id)
}

// SequenceByRef returns the sequence ref points to in db or one of its dependencies.
func (db *Database) SequenceByRef(ref asset.Ref) (*assetcache.Handle[*asset.Sequence], error) {
	return GetByRef(db, asset.SequenceKind, ref)
}
