package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBoneSkeleton() *Skeleton {
	return &Skeleton{
		Bones: []Bone{
			{Name: "hips", ParentIndex: -1, SetupTransform: IdentityTransform(), LocalTransform: IdentityTransform()},
			{Name: "spine", ParentIndex: 0, SetupTransform: Transform{
				Translation: [3]float32{0, 1, 0},
				Rotation:    [4]float32{0, 0, 0, 1},
				Scale:       [3]float32{1, 1, 1},
			}, LocalTransform: IdentityTransform()},
		},
		RootBoneIndices: []int32{0},
		BoneNameToIndex: map[string]int32{"hips": 0, "spine": 1},
	}
}

func slideClip() *AnimationClip {
	return &AnimationClip{
		Name:     "slide",
		Duration: 2,
		Channels: []AnimationChannel{{
			BoneIndex: 0,
			PositionKeys: []VectorKeyframe{
				{Time: 0, Value: [3]float32{0, 0, 0}},
				{Time: 2, Value: [3]float32{4, 0, 0}},
			},
		}},
	}
}

func TestClipSampling(t *testing.T) {
	tests := []struct {
		name string
		time float32
		loop bool
		want float32
	}{
		{"start", 0, false, 0},
		{"midpoint", 1, false, 2},
		{"clamps past the end", 5, false, 4},
		{"clamps before the start", -1, false, 0},
		{"loops past the end", 2.5, true, 1},
		{"loops negative time", -0.5, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skel := twoBoneSkeleton()
			slideClip().Apply(skel, tt.time, tt.loop)
			assert.InDelta(t, tt.want, skel.Bones[0].LocalTransform.Translation[0], 1e-5)
		})
	}
}

func TestClipMix(t *testing.T) {
	skel := twoBoneSkeleton()
	skel.Bones[0].LocalTransform.Translation = [3]float32{-4, 0, 0}
	clip := slideClip()

	clip.Mix(skel, 2, false, 0.25)
	assert.InDelta(t, -2, skel.Bones[0].LocalTransform.Translation[0], 1e-5)

	clip.Mix(skel, 2, false, 0)
	assert.InDelta(t, -2, skel.Bones[0].LocalTransform.Translation[0], 1e-5)

	clip.Mix(skel, 2, false, 3)
	assert.Equal(t, float32(4), skel.Bones[0].LocalTransform.Translation[0])
}

func TestClipLeavesUntargetedBones(t *testing.T) {
	skel := twoBoneSkeleton()
	skel.Bones[1].LocalTransform.Translation = [3]float32{9, 9, 9}
	clip := slideClip()
	clip.Channels = append(clip.Channels, AnimationChannel{
		BoneIndex:    7,
		PositionKeys: []VectorKeyframe{{Time: 0, Value: [3]float32{1, 1, 1}}},
	})

	require.NotPanics(t, func() { clip.Apply(skel, 1, false) })
	assert.Equal(t, [3]float32{9, 9, 9}, skel.Bones[1].LocalTransform.Translation)
}

func TestClipRotation(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	clip := &AnimationClip{
		Name:     "turn",
		Duration: 1,
		Channels: []AnimationChannel{{
			BoneIndex: 0,
			RotationKeys: []QuaternionKeyframe{
				{Time: 0, Value: [4]float32{0, 0, 0, 1}},
				{Time: 1, Value: [4]float32{0, 0, 1, 0}},
			},
		}},
	}
	skel := twoBoneSkeleton()

	clip.Apply(skel, 0.5, false)

	q := skel.Bones[0].LocalTransform.Rotation
	assert.InDelta(t, half, q[2], 1e-5)
	assert.InDelta(t, half, q[3], 1e-5)
}
