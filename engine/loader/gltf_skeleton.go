package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// extractSkeleton builds the setup skeleton of a skin. Bones are sorted so parents precede
// children, and the returned map translates glTF node indices to sorted bone indices.
func extractSkeleton(p gltfParser, skinIndex int) (*model.Skeleton, map[int]int32, error) {
	doc := p.Document()
	if doc == nil {
		return nil, nil, errNoDocument
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}
	skin := &doc.Skins[skinIndex]

	var inverseBind [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBind, err = p.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	nodeParent := make(map[int]int, len(doc.Nodes))
	for parent, node := range doc.Nodes {
		for _, child := range node.Children {
			nodeParent[child] = parent
		}
	}

	jointBone := make(map[int]int32, len(skin.Joints))
	for i, joint := range skin.Joints {
		jointBone[joint] = int32(i)
	}

	bones := make([]model.Bone, len(skin.Joints))
	for i, joint := range skin.Joints {
		if joint < 0 || joint >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, joint)
		}
		node := &doc.Nodes[joint]
		bone := &bones[i]

		bone.Name = node.Name
		if bone.Name == "" {
			bone.Name = fmt.Sprintf("bone_%d", i)
		}

		bone.ParentIndex = -1
		if parent, ok := nodeParent[joint]; ok {
			if pb, ok := jointBone[parent]; ok {
				bone.ParentIndex = pb
			}
		}

		if i < len(inverseBind) {
			bone.InverseBindMatrix = inverseBind[i]
		} else {
			common.Identity(bone.InverseBindMatrix[:])
		}

		bone.SetupTransform = nodeTransform(node)
		bone.LocalTransform = bone.SetupTransform
	}

	order := parentFirstOrder(bones)
	oldToNew := make([]int32, len(bones))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = int32(newIdx)
	}

	skel := &model.Skeleton{
		Bones:           make([]model.Bone, len(bones)),
		BoneNameToIndex: make(map[string]int32, len(bones)),
	}
	for newIdx, oldIdx := range order {
		bone := bones[oldIdx]
		if bone.ParentIndex >= 0 {
			bone.ParentIndex = oldToNew[bone.ParentIndex]
		} else {
			skel.RootBoneIndices = append(skel.RootBoneIndices, int32(newIdx))
		}
		skel.Bones[newIdx] = bone
		skel.BoneNameToIndex[bone.Name] = int32(newIdx)
	}

	nodeToBone := make(map[int]int32, len(skin.Joints))
	for i, joint := range skin.Joints {
		nodeToBone[joint] = oldToNew[i]
	}

	skel.UpdateWorldTransforms()
	return skel, nodeToBone, nil
}

// parentFirstOrder returns bone indices in breadth-first order from the roots.
// Bones unreachable from a root (cyclic input) are appended in their original order.
func parentFirstOrder(bones []model.Bone) []int {
	children := make([][]int, len(bones))
	var queue []int
	for i, b := range bones {
		if b.ParentIndex < 0 {
			queue = append(queue, i)
			continue
		}
		children[b.ParentIndex] = append(children[b.ParentIndex], i)
	}

	order := make([]int, 0, len(bones))
	visited := make([]bool, len(bones))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited[i] = true
		order = append(order, i)
		queue = append(queue, children[i]...)
	}

	for i := range bones {
		if !visited[i] {
			bones[i].ParentIndex = -1
			order = append(order, i)
		}
	}
	return order
}

// nodeTransform returns a node's local TRS, decomposing its matrix when one is given.
func nodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return decomposeMatrix(*node.Matrix)
	}

	t := model.IdentityTransform()
	if node.Translation != nil {
		t.Translation = *node.Translation
	}
	if node.Rotation != nil {
		t.Rotation = common.NormalizeQuat(*node.Rotation)
	}
	if node.Scale != nil {
		t.Scale = *node.Scale
	}
	return t
}

// decomposeMatrix splits a column-major affine matrix without shear into TRS.
func decomposeMatrix(m [16]float32) model.Transform {
	length := func(x, y, z float32) float32 {
		return float32(math.Sqrt(float64(x*x + y*y + z*z)))
	}
	s := [3]float32{length(m[0], m[1], m[2]), length(m[4], m[5], m[6]), length(m[8], m[9], m[10])}

	safe := s
	for i := range safe {
		if safe[i] < 1e-4 {
			safe[i] = 1
		}
	}

	// Rotation basis as rows r[row][col], with each column divided by its scale.
	var r [3][3]float32
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			r[row][col] = m[col*4+row] / safe[col]
		}
	}

	return model.Transform{
		Translation: [3]float32{m[12], m[13], m[14]},
		Rotation:    rotationToQuat(r),
		Scale:       s,
	}
}

// rotationToQuat converts a 3x3 rotation matrix to a unit quaternion (x, y, z, w).
func rotationToQuat(r [3][3]float32) [4]float32 {
	var x, y, z, w float32
	trace := r[0][0] + r[1][1] + r[2][2]

	switch {
	case trace > 0:
		s := float32(math.Sqrt(float64(trace+1))) * 2
		w = 0.25 * s
		x = (r[2][1] - r[1][2]) / s
		y = (r[0][2] - r[2][0]) / s
		z = (r[1][0] - r[0][1]) / s
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		s := float32(math.Sqrt(float64(1+r[0][0]-r[1][1]-r[2][2]))) * 2
		w = (r[2][1] - r[1][2]) / s
		x = 0.25 * s
		y = (r[0][1] + r[1][0]) / s
		z = (r[0][2] + r[2][0]) / s
	case r[1][1] > r[2][2]:
		s := float32(math.Sqrt(float64(1+r[1][1]-r[0][0]-r[2][2]))) * 2
		w = (r[0][2] - r[2][0]) / s
		x = (r[0][1] + r[1][0]) / s
		y = 0.25 * s
		z = (r[1][2] + r[2][1]) / s
	default:
		s := float32(math.Sqrt(float64(1+r[2][2]-r[0][0]-r[1][1]))) * 2
		w = (r[1][0] - r[0][1]) / s
		x = (r[0][2] + r[2][0]) / s
		y = (r[1][2] + r[2][1]) / s
		z = 0.25 * s
	}

	return common.NormalizeQuat([4]float32{x, y, z, w})
}
