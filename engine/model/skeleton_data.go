package model

// SkeletonData is the immutable, shareable definition of a rigged character: its setup skeleton
// and the animation clips authored for it. Per-entity poses are created with NewSkeleton.
type SkeletonData struct {
	// Name is the identifier of the source asset.
	Name string

	// Skeleton is the setup pose. It is never animated directly.
	Skeleton *Skeleton

	// Animations are all clips that target this skeleton.
	Animations []*AnimationClip
}

// FindAnimation returns the clip with the given name.
//
// Parameters:
//   - name: the clip name to look up
//
// Returns:
//   - *AnimationClip: the matching clip, or nil if no clip has that name
func (d *SkeletonData) FindAnimation(name string) *AnimationClip {
	if d == nil {
		return nil
	}
	for _, clip := range d.Animations {
		if clip != nil && clip.Name == name {
			return clip
		}
	}
	return nil
}

// NewSkeleton returns a fresh pose instance reset to the setup pose with world transforms computed.
//
// Returns:
//   - *Skeleton: a new skeleton owned by the caller, or nil if the data has no skeleton
func (d *SkeletonData) NewSkeleton() *Skeleton {
	if d == nil || d.Skeleton == nil {
		return nil
	}
	s := d.Skeleton.Clone()
	s.SetToSetupPose()
	s.UpdateWorldTransforms()
	return s
}
