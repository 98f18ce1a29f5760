package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/stretchr/testify/require"
)

// newTestSkeleton returns a single-bone skeleton at the origin.
func newTestSkeleton() *model.Skeleton {
	root := model.Bone{
		Name:           "root",
		ParentIndex:    -1,
		SetupTransform: model.IdentityTransform(),
		LocalTransform: model.IdentityTransform(),
	}
	return &model.Skeleton{
		Bones:           []model.Bone{root},
		RootBoneIndices: []int32{0},
		BoneNameToIndex: map[string]int32{"root": 0},
	}
}

// holdClip returns a clip that holds the root bone at translation x for its whole duration.
func holdClip(name string, duration, x float32) *model.AnimationClip {
	return &model.AnimationClip{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: 1,
		Channels: []model.AnimationChannel{{
			BoneIndex: 0,
			PositionKeys: []model.VectorKeyframe{
				{Time: 0, Value: [3]float32{x, 0, 0}},
				{Time: duration, Value: [3]float32{x, 0, 0}},
			},
		}},
	}
}

// rootX returns the root bone's local x translation.
func rootX(skel *model.Skeleton) float32 {
	return skel.Bones[0].LocalTransform.Translation[0]
}

type fixture struct {
	walk, run, jump *model.AnimationClip
	data            *StateData
	state           AnimationState
	skel            *model.Skeleton
}

func newFixture(t *testing.T, options ...AnimationStateBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		walk: holdClip("walk", 3.0, 0),
		run:  holdClip("run", 2.0, 10),
		jump: holdClip("jump", 1.5, 20),
		skel: newTestSkeleton(),
	}
	f.data = NewStateData(&model.SkeletonData{
		Name:       "hero",
		Skeleton:   f.skel,
		Animations: []*model.AnimationClip{f.walk, f.run, f.jump},
	})

	var err error
	f.state, err = NewAnimationState(f.data, options...)
	require.NoError(t, err)
	return f
}
