package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// extractClips converts every animation with at least one channel on a skin joint into a clip.
// Channels on other nodes and morph weights are skipped. Channels are ordered by bone index.
func extractClips(p gltfParser, nodeToBone map[int]int32) ([]*model.AnimationClip, error) {
	doc := p.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	var clips []*model.AnimationClip
	for i := range doc.Animations {
		clip, err := extractClip(p, i, nodeToBone)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		if clip != nil {
			clips = append(clips, clip)
		}
	}
	return clips, nil
}

// extractClip returns nil when the animation does not touch the skeleton.
func extractClip(p gltfParser, animIndex int, nodeToBone map[int]int32) (*model.AnimationClip, error) {
	anim := &p.Document().Animations[animIndex]

	byBone := make(map[int32]*model.AnimationChannel)
	var duration float32

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			continue
		}
		bone, ok := nodeToBone[*ch.Target.Node]
		if !ok {
			continue
		}
		switch ch.Target.Path {
		case gltfAnimPathTranslation, gltfAnimPathRotation, gltfAnimPathScale:
		default:
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("%q channel %d: invalid sampler index %d", anim.Name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, err := p.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("%q channel %d: failed to read key times: %w", anim.Name, i, err)
		}
		if n := len(times); n > 0 && times[n-1] > duration {
			duration = times[n-1]
		}

		out, exists := byBone[bone]
		if !exists {
			out = &model.AnimationChannel{BoneIndex: bone}
			byBone[bone] = out
		}

		// Cubic spline samplers store (in-tangent, value, out-tangent) per key; only the value is kept.
		stride, offset := 1, 0
		if sampler.Interpolation == gltfInterpolationCubicSpline {
			stride, offset = 3, 1
		}

		switch ch.Target.Path {
		case gltfAnimPathRotation:
			values, err := p.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("%q channel %d: failed to read rotations: %w", anim.Name, i, err)
			}
			n := min(len(times), len(values)/stride)
			keys := make([]model.QuaternionKeyframe, n)
			for j := range keys {
				keys[j] = model.QuaternionKeyframe{Time: times[j], Value: common.NormalizeQuat(values[j*stride+offset])}
			}
			out.RotationKeys = keys

		default:
			values, err := p.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("%q channel %d: failed to read %s: %w", anim.Name, i, ch.Target.Path, err)
			}
			n := min(len(times), len(values)/stride)
			keys := make([]model.VectorKeyframe, n)
			for j := range keys {
				keys[j] = model.VectorKeyframe{Time: times[j], Value: values[j*stride+offset]}
			}
			if ch.Target.Path == gltfAnimPathTranslation {
				out.PositionKeys = keys
			} else {
				out.ScaleKeys = keys
			}
		}
	}

	if len(byBone) == 0 {
		return nil, nil
	}

	channels := make([]model.AnimationChannel, 0, len(byBone))
	for _, ch := range byBone {
		channels = append(channels, *ch)
	}
	sort.Slice(channels, func(a, b int) bool { return channels[a].BoneIndex < channels[b].BoneIndex })

	name := anim.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", animIndex)
	}

	return &model.AnimationClip{
		Name:           name,
		Duration:       duration,
		TicksPerSecond: 1,
		Channels:       channels,
	}, nil
}
