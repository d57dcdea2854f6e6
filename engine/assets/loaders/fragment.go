package loaders

import (
	"bytes"
	"encoding/binary"
	"fmt"
	m "math"
	"os"

	"github.com/plumage3d/plumage/engine/math"
	"github.com/plumage3d/plumage/engine/scene"
)

func m32bits(v float32) uint32     { return m.Float32bits(v) }
func m32fromBits(b uint32) float32 { return m.Float32frombits(b) }

/** @brief A magic number indicating the file as a plumage fragment file. */
const FragmentMagic uint32 = 0xfea7bead

/** @brief The fragment format version this build reads and writes. */
const FragmentVersion uint8 = 1

// FragmentExtension is the on-disk suffix for fragment files.
const FragmentExtension = ".plf"

var ErrUnknownCodec = fmt.Errorf("no decoder registered for payload codec")

// DecodeFragment reads a .plf fragment file and returns its mesh subtree:
// a group node with one mesh-node child per sub-mesh. Layout, little endian:
//
//	u32 magic, u8 version, u8 codec-name length, codec name,
//	u32 payload length, payload (codec-compressed when a codec is named).
//
// Payload: u16 sub-mesh count, then per sub-mesh a name (u16 length +
// bytes), an RGBA diffuse colour (4×f32), vertices (u32 count ×
// [position 3f32, normal 3f32, texcoord 2f32]) and indices (u32 count ×
// u32).
func DecodeFragment(path string) (*scene.Node, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fragment: read %s: %w", path, err)
	}

	r := &reader{data: raw}
	if magic := r.readU32(); magic != FragmentMagic {
		return nil, fmt.Errorf("fragment: invalid magic in %s", path)
	}
	if version := r.readU8(); version != FragmentVersion {
		return nil, fmt.Errorf("fragment: unsupported version %d in %s", version, path)
	}

	codecName := r.readStr(int(r.readU8()))
	payload := r.readBytes(int(r.readU32()))
	if r.overrun {
		return nil, fmt.Errorf("fragment: truncated file %s", path)
	}

	if codecName != "" {
		codec, ok := codecByName(codecName)
		if !ok {
			return nil, fmt.Errorf("fragment: %s names codec %q: %w", path, codecName, ErrUnknownCodec)
		}
		payload, err = codec.Decode(payload)
		if err != nil {
			return nil, fmt.Errorf("fragment: decode payload of %s: %w", path, err)
		}
	}

	return decodePayload(payload, path)
}

// On-disk stride of one vertex (position 3f32 + normal 3f32 + texcoord
// 2f32) and one index.
const (
	vertexStride = 8 * 4
	indexStride  = 4
)

func decodePayload(payload []byte, path string) (*scene.Node, error) {
	r := &reader{data: payload}

	root := scene.NewNode("fragment")
	meshCount := int(r.readU16())
	for i := 0; i < meshCount; i++ {
		name := r.readStr(int(r.readU16()))

		colour := math.NewVec4(r.readF32(), r.readF32(), r.readF32(), r.readF32())

		// Counts come from the untrusted file; reject any claim the
		// remaining bytes cannot back before sizing buffers off it.
		vertexCount := int(r.readU32())
		if vertexCount*vertexStride > r.remaining() {
			return nil, fmt.Errorf("fragment: truncated payload in %s", path)
		}
		vertices := make([]math.Vertex3D, 0, vertexCount)
		for v := 0; v < vertexCount; v++ {
			vertices = append(vertices, math.Vertex3D{
				Position: math.NewVec3(r.readF32(), r.readF32(), r.readF32()),
				Normal:   math.NewVec3(r.readF32(), r.readF32(), r.readF32()),
				Texcoord: math.Vec2{X: r.readF32(), Y: r.readF32()},
				Colour:   math.NewVec4One(),
			})
		}

		indexCount := int(r.readU32())
		if indexCount*indexStride > r.remaining() {
			return nil, fmt.Errorf("fragment: truncated payload in %s", path)
		}
		indices := make([]uint32, 0, indexCount)
		for n := 0; n < indexCount; n++ {
			indices = append(indices, r.readU32())
		}

		if r.overrun {
			return nil, fmt.Errorf("fragment: truncated payload in %s", path)
		}

		geometry := &scene.Geometry{Name: name, Vertices: vertices, Indices: indices}
		material := &scene.Material{Name: name, DiffuseColour: colour}
		root.AddChild(scene.NewMeshNode(name, geometry, material))
	}
	return root, nil
}

// EncodeFragment writes the mesh subtree of node to path in the .plf
// format, compressing the payload with the named codec ("" for raw).
// Used by fixture generation and the asset packing mage target.
func EncodeFragment(path string, node *scene.Node, codecName string) error {
	var payload bytes.Buffer
	meshNodes := node.MeshNodes()
	writeU16(&payload, uint16(len(meshNodes)))
	for _, mn := range meshNodes {
		g := mn.Mesh.Geometry
		writeU16(&payload, uint16(len(g.Name)))
		payload.WriteString(g.Name)

		colour := scene.DefaultMaterial().DiffuseColour
		if mn.Mesh.Material != nil {
			colour = mn.Mesh.Material.DiffuseColour
		}
		writeF32(&payload, colour.X, colour.Y, colour.Z, colour.W)

		writeU32(&payload, uint32(len(g.Vertices)))
		for _, v := range g.Vertices {
			writeF32(&payload,
				v.Position.X, v.Position.Y, v.Position.Z,
				v.Normal.X, v.Normal.Y, v.Normal.Z,
				v.Texcoord.X, v.Texcoord.Y)
		}
		writeU32(&payload, uint32(len(g.Indices)))
		for _, idx := range g.Indices {
			writeU32(&payload, idx)
		}
	}

	data := payload.Bytes()
	if codecName != "" {
		codec, ok := codecByName(codecName)
		if !ok {
			return fmt.Errorf("fragment: encode with codec %q: %w", codecName, ErrUnknownCodec)
		}
		var err error
		data, err = codec.Encode(data)
		if err != nil {
			return err
		}
	}

	var out bytes.Buffer
	writeU32(&out, FragmentMagic)
	out.WriteByte(FragmentVersion)
	out.WriteByte(uint8(len(codecName)))
	out.WriteString(codecName)
	writeU32(&out, uint32(len(data)))
	out.Write(data)

	return os.WriteFile(path, out.Bytes(), 0o644)
}

// reader walks a byte slice with bounds checking; any read past the end
// flips overrun and yields zero values, mirroring how truncated model
// files are handled without panicking mid-parse.
type reader struct {
	data    []byte
	off     int
	overrun bool
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) readBytes(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.off = len(r.data)
		r.overrun = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readStr(n int) string {
	return string(r.readBytes(n))
}

func (r *reader) readU8() uint8 {
	b := r.readBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) readU16() uint16 {
	b := r.readBytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) readU32() uint32 {
	b := r.readBytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) readF32() float32 {
	return m32fromBits(r.readU32())
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeF32(buf *bytes.Buffer, vs ...float32) {
	for _, v := range vs {
		writeU32(buf, m32bits(v))
	}
}
