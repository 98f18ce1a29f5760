package model

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
)

// SetToSetupPose resets every bone's local transform to its setup (rest) transform.
func (s *Skeleton) SetToSetupPose() {
	for i := range s.Bones {
		s.Bones[i].LocalTransform = s.Bones[i].SetupTransform
	}
}

// UpdateWorldTransforms recomputes each bone's WorldMatrix from its LocalTransform and its parent's
// WorldMatrix. Bones must be sorted so that parents precede children, which the loader guarantees.
func (s *Skeleton) UpdateWorldTransforms() {
	var local [16]float32
	for i := range s.Bones {
		b := &s.Bones[i]
		common.ComposeTRS(local[:], b.LocalTransform.Translation, b.LocalTransform.Rotation, b.LocalTransform.Scale)
		if b.ParentIndex < 0 || int(b.ParentIndex) >= len(s.Bones) {
			b.WorldMatrix = local
			continue
		}
		common.Mul4(b.WorldMatrix[:], s.Bones[b.ParentIndex].WorldMatrix[:], local[:])
	}
}

// FindBone returns the index of the bone with the given name.
//
// Parameters:
//   - name: the bone name to look up
//
// Returns:
//   - int32: the bone index, or -1 if no bone has that name
func (s *Skeleton) FindBone(name string) int32 {
	if s.BoneNameToIndex != nil {
		if idx, ok := s.BoneNameToIndex[name]; ok {
			return idx
		}
		return -1
	}
	for i := range s.Bones {
		if s.Bones[i].Name == name {
			return int32(i)
		}
	}
	return -1
}

// Clone returns a deep copy of the skeleton so that the copy's pose can be mutated independently.
//
// Returns:
//   - *Skeleton: the copied skeleton
func (s *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		Bones:           make([]Bone, len(s.Bones)),
		RootBoneIndices: append([]int32(nil), s.RootBoneIndices...),
	}
	copy(c.Bones, s.Bones)
	if s.BoneNameToIndex != nil {
		c.BoneNameToIndex = make(map[string]int32, len(s.BoneNameToIndex))
		for k, v := range s.BoneNameToIndex {
			c.BoneNameToIndex[k] = v
		}
	}
	return c
}
