package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docBuilder assembles a glTF document whose accessors all live in buffer 0.
type docBuilder struct {
	doc gltfDocument
	bin []byte
}

func (b *docBuilder) floats(typ string, values ...float32) int {
	view := gltfBufferView{Buffer: 0, ByteOffset: len(b.bin), ByteLength: 4 * len(values)}
	for _, v := range values {
		b.bin = binary.LittleEndian.AppendUint32(b.bin, math.Float32bits(v))
	}
	b.doc.BufferViews = append(b.doc.BufferViews, view)

	components := map[string]int{gltfAccessorTypeScalar: 1, gltfAccessorTypeVec3: 3, gltfAccessorTypeVec4: 4, gltfAccessorTypeMat4: 16}[typ]
	bv := len(b.doc.BufferViews) - 1
	b.doc.Accessors = append(b.doc.Accessors, gltfAccessor{
		BufferView:    &bv,
		ComponentType: gltfComponentTypeFloat,
		Count:         len(values) / components,
		Type:          typ,
	})
	return len(b.doc.Accessors) - 1
}

func (b *docBuilder) channel(anim *gltfAnimation, node int, path, interpolation string, input, output int) {
	anim.Samplers = append(anim.Samplers, gltfAnimSampler{Input: input, Output: output, Interpolation: interpolation})
	ch := gltfAnimChannel{Sampler: len(anim.Samplers) - 1}
	ch.Target.Node = &node
	ch.Target.Path = path
	anim.Channels = append(anim.Channels, ch)
}

// riggedDoc is a two-joint arm plus an unskinned prop node. Joints are listed child first.
func riggedDoc() *docBuilder {
	b := &docBuilder{}
	b.doc.Asset = gltfAsset{Version: "2.0"}
	b.doc.Nodes = []gltfNode{
		{Name: "shoulder", Children: []int{1}, Translation: &[3]float32{0, 1, 0}},
		{Name: "elbow", Translation: &[3]float32{0, 2, 0}},
		{Name: "prop"},
	}

	ibm := b.floats(gltfAccessorTypeMat4,
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -3, 0, 1,
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1, 0, 1,
	)
	b.doc.Skins = []gltfSkin{{Name: "arm", InverseBindMatrices: &ibm, Joints: []int{1, 0}}}

	times := b.floats(gltfAccessorTypeScalar, 0, 1.5)
	half := float32(math.Sqrt2 / 2)
	wave := gltfAnimation{Name: "wave"}
	b.channel(&wave, 1, gltfAnimPathRotation, "", times, b.floats(gltfAccessorTypeVec4, 0, 0, 0, 1, 0, 0, half, half))
	b.channel(&wave, 0, gltfAnimPathTranslation, "", times, b.floats(gltfAccessorTypeVec3, 0, 1, 0, 0, 1.5, 0))
	b.channel(&wave, 0, "weights", "", times, times)

	shortTimes := b.floats(gltfAccessorTypeScalar, 0, 0.5)
	pulse := gltfAnimation{}
	b.channel(&pulse, 1, gltfAnimPathScale, gltfInterpolationCubicSpline, shortTimes, b.floats(gltfAccessorTypeVec3,
		9, 9, 9, 1, 1, 1, 9, 9, 9,
		9, 9, 9, 2, 2, 2, 9, 9, 9,
	))

	spin := gltfAnimation{Name: "spin"}
	b.channel(&spin, 2, gltfAnimPathRotation, "", times, b.floats(gltfAccessorTypeVec4, 0, 0, 0, 1, 0, 1, 0, 0))

	b.doc.Animations = []gltfAnimation{wave, pulse, spin}
	return b
}

func (b *docBuilder) gltfJSON(t *testing.T) []byte {
	t.Helper()
	doc := b.doc
	doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.bin),
		ByteLength: len(b.bin),
	}}
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return out
}

func (b *docBuilder) glb(t *testing.T) []byte {
	t.Helper()
	doc := b.doc
	doc.Buffers = []gltfBuffer{{ByteLength: len(b.bin)}}
	js, err := json.Marshal(doc)
	require.NoError(t, err)

	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), b.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON}))
	out.Write(js)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

func TestLoadSkeletonDataReader(t *testing.T) {
	data, err := LoadSkeletonDataReader(bytes.NewReader(riggedDoc().gltfJSON(t)), false, "arm")
	require.NoError(t, err)

	assert.Equal(t, "arm", data.Name)

	t.Run("skeleton is sorted parents first", func(t *testing.T) {
		skel := data.Skeleton
		require.Len(t, skel.Bones, 2)
		assert.Equal(t, "shoulder", skel.Bones[0].Name)
		assert.Equal(t, int32(-1), skel.Bones[0].ParentIndex)
		assert.Equal(t, "elbow", skel.Bones[1].Name)
		assert.Equal(t, int32(0), skel.Bones[1].ParentIndex)
		assert.Equal(t, []int32{0}, skel.RootBoneIndices)
		assert.Equal(t, int32(1), skel.FindBone("elbow"))

		// Inverse bind matrices follow their joints through the sort.
		assert.Equal(t, float32(-1), skel.Bones[0].InverseBindMatrix[13])
		assert.Equal(t, float32(-3), skel.Bones[1].InverseBindMatrix[13])

		assert.Equal(t, [3]float32{0, 2, 0}, skel.Bones[1].SetupTransform.Translation)
		assert.Equal(t, skel.Bones[1].SetupTransform, skel.Bones[1].LocalTransform)
		assert.Equal(t, float32(3), skel.Bones[1].WorldMatrix[13])
	})

	t.Run("clips target sorted bones", func(t *testing.T) {
		require.Len(t, data.Animations, 2, "the prop-only animation is skipped")

		wave := data.FindAnimation("wave")
		require.NotNil(t, wave)
		assert.Equal(t, float32(1.5), wave.Duration)
		require.Len(t, wave.Channels, 2)
		assert.Equal(t, int32(0), wave.Channels[0].BoneIndex)
		assert.Len(t, wave.Channels[0].PositionKeys, 2)
		assert.Equal(t, int32(1), wave.Channels[1].BoneIndex)
		assert.Len(t, wave.Channels[1].RotationKeys, 2)

		assert.Nil(t, data.FindAnimation("spin"))
	})

	t.Run("cubic spline keeps the key values", func(t *testing.T) {
		pulse := data.FindAnimation("animation_1")
		require.NotNil(t, pulse)
		require.Len(t, pulse.Channels, 1)
		keys := pulse.Channels[0].ScaleKeys
		require.Len(t, keys, 2)
		assert.Equal(t, [3]float32{1, 1, 1}, keys[0].Value)
		assert.Equal(t, [3]float32{2, 2, 2}, keys[1].Value)
	})

	t.Run("clips pose a fresh skeleton", func(t *testing.T) {
		pose := data.NewSkeleton()
		data.FindAnimation("wave").Apply(pose, 1.5, false)
		pose.UpdateWorldTransforms()
		assert.InDelta(t, 1.5, pose.Bones[0].WorldMatrix[13], 1e-5)
		assert.InDelta(t, 3.5, pose.Bones[1].WorldMatrix[13], 1e-5)
		// The elbow's x axis now points along +y.
		assert.InDelta(t, 0, pose.Bones[1].WorldMatrix[0], 1e-5)
		assert.InDelta(t, 1, pose.Bones[1].WorldMatrix[1], 1e-5)
	})
}

func TestLoadGLB(t *testing.T) {
	data, err := LoadSkeletonDataReader(bytes.NewReader(riggedDoc().glb(t)), true, "arm")
	require.NoError(t, err)
	assert.Len(t, data.Skeleton.Bones, 2)
	assert.Len(t, data.Animations, 2)

	path := filepath.Join(t.TempDir(), "arm.glb")
	require.NoError(t, os.WriteFile(path, riggedDoc().glb(t), 0o644))
	fromFile, err := LoadSkeletonData(path)
	require.NoError(t, err)
	assert.Equal(t, "arm", fromFile.Name)
}

func TestLoadErrors(t *testing.T) {
	t.Run("no skin", func(t *testing.T) {
		b := riggedDoc()
		b.doc.Skins = nil
		_, err := LoadSkeletonDataReader(bytes.NewReader(b.gltfJSON(t)), false, "bare")
		assert.ErrorIs(t, err, ErrNoSkin)
	})

	t.Run("bad version", func(t *testing.T) {
		b := riggedDoc()
		b.doc.Asset.Version = "1.0"
		_, err := LoadSkeletonDataReader(bytes.NewReader(b.gltfJSON(t)), false, "old")
		assert.ErrorIs(t, err, errInvalidGLTFVersion)
	})

	t.Run("bad magic", func(t *testing.T) {
		glb := riggedDoc().glb(t)
		glb[0] = 'x'
		_, err := LoadSkeletonDataReader(bytes.NewReader(glb), true, "broken")
		assert.ErrorIs(t, err, errInvalidGLBMagic)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadSkeletonData("hero.fbx")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("wrong accessor type", func(t *testing.T) {
		b := riggedDoc()
		b.doc.Animations[0].Samplers[0].Output = b.doc.Animations[0].Samplers[1].Output
		_, err := LoadSkeletonDataReader(bytes.NewReader(b.gltfJSON(t)), false, "mismatch")
		assert.ErrorContains(t, err, "is not VEC4 FLOAT")
	})
}

func TestLoaderCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.gltf")
	require.NoError(t, os.WriteFile(path, riggedDoc().gltfJSON(t), 0o644))

	l := NewLoader()
	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))

	fromReader, err := l.LoadReader("stream", bytes.NewReader(riggedDoc().gltfJSON(t)), false)
	require.NoError(t, err)
	assert.Len(t, l.Assets(), 2)
	assert.Same(t, fromReader, l.Get("stream"))

	l = NewLoader(WithSkin(3), WithSkeletonData("preset", first))
	assert.Same(t, first, l.Get("preset"))
	_, err = l.LoadReader("other", bytes.NewReader(riggedDoc().gltfJSON(t)), false)
	assert.ErrorIs(t, err, ErrNoSkin)
}

func TestDecomposeMatrix(t *testing.T) {
	half := float32(math.Sqrt2 / 2)
	// 90 degrees about z, scale 2, translation (1, 2, 3).
	m := [16]float32{
		0, 2, 0, 0,
		-2, 0, 0, 0,
		0, 0, 2, 0,
		1, 2, 3, 1,
	}

	tr := decomposeMatrix(m)

	assert.Equal(t, [3]float32{1, 2, 3}, tr.Translation)
	assert.InDeltaSlice(t, []float32{2, 2, 2}, tr.Scale[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 0, half, half}, tr.Rotation[:], 1e-6)
}
