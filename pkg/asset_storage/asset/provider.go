package asset

import "github.com/rebelforge/assetdb/pkg/asset_storage/assetcache"

// Provider provides access to the built-in asset kinds.
//
// Methods taking record ID serve assets of the provider itself, ByRef
// methods resolve the reference first and may delegate to dependencies.
// Sentinel references resolve to nil handle and nil error. All returned
// handles MUST be released.
type Provider interface {
	Texture(id uint32) (*assetcache.Handle[*Texture], error)
	TextureByRef(ref Ref) (*assetcache.Handle[*Texture], error)

	Model(id uint32) (*assetcache.Handle[*Model], error)
	ModelByRef(ref Ref) (*assetcache.Handle[*Model], error)

	Behavior(id uint32) (*assetcache.Handle[*Behavior], error)
	BehaviorByRef(ref Ref) (*assetcache.Handle[*Behavior], error)

	Animation(id uint32) (*assetcache.Handle[*Animation], error)
	AnimationByRef(ref Ref) (*assetcache.Handle[*Animation], error)

	Sound(id uint32) (*assetcache.Handle[*Sound], error)
	SoundByRef(ref Ref) (*assetcache.Handle[*Sound], error)

	Sequence(id uint32) (*assetcache.Handle[*Sequence], error)
	SequenceByRef(ref Ref) (*assetcache.Handle[*Sequence], error)
}
