package model

import "github.com/driftmark/vanim/pkg/math"

// AnimateModel poses every skinned mesh of m at the given frame of anim,
// writing deformed positions into each mesh's AnimVertices buffer. Vertices
// are weighted across up to four bones (linear blend skinning). Meshes
// without skinning data are left untouched. frame is wrapped into the clip's
// frame range.
func AnimateModel(m *Model, anim *Animation, frame int) {
	if m == nil || anim == nil || anim.FrameCount <= 0 ||
		anim.Bones == nil || anim.FramePoses == nil {
		return
	}

	if frame >= anim.FrameCount {
		frame %= anim.FrameCount
	}
	if frame < 0 {
		frame = 0
	}
	pose := anim.FramePoses[frame]

	for mi := range m.Meshes {
		mesh := &m.Meshes[mi]
		if !mesh.Skinned() {
			continue
		}

		for v := 0; v < mesh.VertexCount; v++ {
			base := v * 3
			mesh.AnimVertices[base] = 0
			mesh.AnimVertices[base+1] = 0
			mesh.AnimVertices[base+2] = 0

			for j := 0; j < 4; j++ {
				weight := mesh.BoneWeights[v*4+j]
				if weight == 0 {
					continue
				}
				boneID := int(mesh.BoneIDs[v*4+j])
				if boneID >= len(pose) || boneID >= len(m.BindPose) {
					continue
				}

				in := m.BindPose[boneID]
				out := pose[boneID]

				// Move the vertex out of the bind pose, apply the frame
				// pose, then weight the result.
				p := math.Vec3{X: mesh.Vertices[base], Y: mesh.Vertices[base+1], Z: mesh.Vertices[base+2]}
				p = p.Sub(in.Translation)
				p = p.Mul(out.Scale)
				p = p.RotateBy(out.Rotation.Mul(in.Rotation.Invert()))
				p = p.Add(out.Translation)

				mesh.AnimVertices[base] += p.X * weight
				mesh.AnimVertices[base+1] += p.Y * weight
				mesh.AnimVertices[base+2] += p.Z * weight
			}
		}
	}
}
