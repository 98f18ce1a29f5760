package model

import (
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Apply writes the clip's pose at the given time into the skeleton at full weight.
// Only bones targeted by a channel are touched; every other bone keeps its current local transform.
//
// Parameters:
//   - skel: the skeleton pose to write into
//   - time: the playback time in seconds
//   - loop: whether time wraps around the clip duration
func (c *AnimationClip) Apply(skel *Skeleton, time float32, loop bool) {
	c.Mix(skel, time, loop, 1)
}

// Mix blends the clip's pose at the given time into the skeleton's current pose.
// Translation and scale are linearly interpolated and rotation is slerped from the current
// local transform toward the sampled value by alpha. Alpha 0 leaves the pose untouched and
// alpha 1 is equivalent to Apply.
//
// Parameters:
//   - skel: the skeleton pose to blend into
//   - time: the playback time in seconds
//   - loop: whether time wraps around the clip duration
//   - alpha: the blend weight in [0, 1]
func (c *AnimationClip) Mix(skel *Skeleton, time float32, loop bool, alpha float32) {
	if skel == nil {
		return
	}
	t := c.localTime(time, loop)
	alpha = common.Clamp(alpha, 0, 1)

	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.BoneIndex < 0 || int(ch.BoneIndex) >= len(skel.Bones) {
			continue
		}
		local := &skel.Bones[ch.BoneIndex].LocalTransform

		if len(ch.PositionKeys) > 0 {
			v := sampleVector(ch.PositionKeys, t)
			if alpha >= 1 {
				local.Translation = v
			} else {
				local.Translation = common.LerpVec3(local.Translation, v, alpha)
			}
		}
		if len(ch.RotationKeys) > 0 {
			q := sampleQuaternion(ch.RotationKeys, t)
			if alpha >= 1 {
				local.Rotation = q
			} else {
				local.Rotation = common.SlerpQuat(local.Rotation, q, alpha)
			}
		}
		if len(ch.ScaleKeys) > 0 {
			v := sampleVector(ch.ScaleKeys, t)
			if alpha >= 1 {
				local.Scale = v
			} else {
				local.Scale = common.LerpVec3(local.Scale, v, alpha)
			}
		}
	}
}

// localTime maps a cursor time onto the clip's timeline. Looping clips wrap modulo the duration;
// non-looping clips are left as-is and clamp to the end keys during sampling.
func (c *AnimationClip) localTime(time float32, loop bool) float32 {
	if loop && c.Duration > 0 {
		t := float32(math.Mod(float64(time), float64(c.Duration)))
		if t < 0 {
			t += c.Duration
		}
		return t
	}
	return time
}

// keySpan locates the pair of keys surrounding t among n sorted key times and the
// interpolation factor between them. When t lies outside the keyed range both indices
// refer to the nearest end key.
func keySpan(n int, keyTime func(int) float32, t float32) (int, int, float32) {
	if t <= keyTime(0) {
		return 0, 0, 0
	}
	if t >= keyTime(n-1) {
		return n - 1, n - 1, 0
	}
	next := sort.Search(n, func(i int) bool { return keyTime(i) > t })
	prev := next - 1
	span := keyTime(next) - keyTime(prev)
	if span <= 0 {
		return next, next, 0
	}
	return prev, next, (t - keyTime(prev)) / span
}

func sampleVector(keys []VectorKeyframe, t float32) [3]float32 {
	prev, next, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if prev == next {
		return keys[prev].Value
	}
	return common.LerpVec3(keys[prev].Value, keys[next].Value, f)
}

func sampleQuaternion(keys []QuaternionKeyframe, t float32) [4]float32 {
	prev, next, f := keySpan(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if prev == next {
		return keys[prev].Value
	}
	return common.SlerpQuat(keys[prev].Value, keys[next].Value, f)
}
