package view

import (
	"bytes"
	"errors"
	"slices"
	"strconv"

	"github.com/soypat/orbitext/glbuild"
	"github.com/soypat/orbitext/scene"
)

// maxLights is the number of point lights the fragment shader shades with.
const maxLights = 4

// instance is the std430 layout of one placed mesh in the instance buffer.
// Rows hold the world-to-mesh rotation. Row w components carry the shape
// index and bounding radius.
type instance struct {
	Row0     [4]float32 // w: shape index.
	Row1     [4]float32 // w: bounding radius in mesh space.
	Row2     [4]float32
	PosScale [4]float32
	// Color is the lambert color. w is 0 for normal shading and 1 for lambert.
	Color [4]float32
}

// shapeSet keeps the distinct shapes of a scene in first-seen order. Satellites
// of a batch share one shape so a scene holds only a handful.
type shapeSet struct {
	shapes []glbuild.Shader3D
	index  map[glbuild.Shader3D]int
	next   []glbuild.Shader3D
}

// reset collects the shapes of meshes and reports whether they differ from
// the previous call, in which case the program must be rebuilt.
func (ss *shapeSet) reset(meshes []scene.PlacedMesh) (changed bool) {
	if ss.index == nil {
		ss.index = make(map[glbuild.Shader3D]int)
	}
	clear(ss.index)
	ss.next = ss.next[:0]
	for _, pm := range meshes {
		s := pm.Mesh.Shape
		if _, ok := ss.index[s]; !ok {
			ss.index[s] = len(ss.next)
			ss.next = append(ss.next, s)
		}
	}
	changed = !slices.Equal(ss.shapes, ss.next)
	ss.shapes, ss.next = ss.next, ss.shapes
	return changed
}

func appendInstances(dst []instance, meshes []scene.PlacedMesh, ss *shapeSet) []instance {
	for _, pm := range meshes {
		inv := pm.World.Rot.Transpose()
		m := pm.Mesh
		var inst instance
		inst.Row0 = [4]float32{inv[0], inv[1], inv[2], float32(ss.index[m.Shape])}
		inst.Row1 = [4]float32{inv[3], inv[4], inv[5], shapeRadius(m)}
		inst.Row2 = [4]float32{inv[6], inv[7], inv[8], 0}
		inst.PosScale = [4]float32{pm.World.Pos.X, pm.World.Pos.Y, pm.World.Pos.Z, pm.World.Scale}
		if m.Material != nil && m.Material.Kind == scene.MaterialLambert {
			c := m.Material.Color
			inst.Color = [4]float32{c.X, c.Y, c.Z, 1}
		}
		dst = append(dst, inst)
	}
	return dst
}

func shapeRadius(m *scene.Mesh) float32 {
	r := m.BoundingRadius()
	if m.Scale != 0 {
		r /= m.Scale
	}
	return r
}

const vertexSource = `#version 460
in vec2 aPos;
out vec2 vTexCoord;
void main() {
	vTexCoord = aPos * 0.5 + 0.5;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

// fragmentSource returns the null terminated raymarching fragment shader
// for a scene made of the given distinct shapes.
func fragmentSource(programmer *glbuild.Programmer, shapes []glbuild.Shader3D) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(glbuild.VersionStr)
	roots := make([]glbuild.Shader, len(shapes))
	for i := range shapes {
		roots[i] = shapes[i]
	}
	names, _, err := programmer.WriteSDFDecls(&buf, roots...)
	if err != nil {
		return "", err
	}
	buf.WriteString("\nfloat shapeDist(int k, vec3 p) {\n\tswitch (k) {\n")
	for i, name := range names {
		buf.WriteString("\tcase ")
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(": return ")
		buf.WriteString(name)
		buf.WriteString("(p);\n")
	}
	buf.WriteString("\tdefault:\n\t\tbreak;\n\t}\n\treturn 1e9;\n}\n")
	buf.WriteString("const int MAX_LIGHTS = " + strconv.Itoa(maxLights) + ";\n")
	buf.WriteString(fragmentBody)
	buf.WriteByte(0)
	if bytes.Count(buf.Bytes(), []byte{0}) != 1 {
		return "", errors.New("null byte in shader source")
	}
	return buf.String(), nil
}

const fragmentBody = `
struct Instance {
	vec4 r0;
	vec4 r1;
	vec4 r2;
	vec4 ps;
	vec4 col;
};
layout(std430, binding = 0) readonly buffer Instances {
	Instance inst[];
};

in vec2 vTexCoord;
out vec4 fragColor;

uniform int uCount;
uniform vec2 uResolution;
uniform vec3 uCamPos;
uniform vec3 uCamRight;
uniform vec3 uCamUp;
uniform vec3 uCamFwd;
uniform float uTanHalfFov;
uniform float uFar;
uniform float uTol;
uniform float uAmbient;
uniform int uLightCount;
uniform vec3 uLightPos[MAX_LIGHTS];
uniform float uLightIntensity[MAX_LIGHTS];
uniform float uLightRange[MAX_LIGHTS];
uniform vec3 uClearColor;
uniform int uHasBackground;
uniform samplerCube uBackground;

float instDist(int i, vec3 p) {
	vec3 q = p - inst[i].ps.xyz;
	float s = inst[i].ps.w;
	float bound = length(q) - inst[i].r1.w * s;
	if (bound > uTol) {
		return bound;
	}
	vec3 l = vec3(dot(inst[i].r0.xyz, q), dot(inst[i].r1.xyz, q), dot(inst[i].r2.xyz, q)) / s;
	return shapeDist(int(inst[i].r0.w + 0.5), l) * s;
}

float sceneDist(vec3 p, out int hit) {
	float d = 1e9;
	hit = -1;
	for (int i = 0; i < uCount; i++) {
		float di = instDist(i, p);
		if (di < d) {
			d = di;
			hit = i;
		}
	}
	return d;
}

vec3 calcNormal(int i, vec3 pos) {
	const float eps = 0.0001;
	vec2 e = vec2(1.0, -1.0) * 0.5773;
	return normalize(
		e.xyy * instDist(i, pos + e.xyy * eps) +
		e.yyx * instDist(i, pos + e.yyx * eps) +
		e.yxy * instDist(i, pos + e.yxy * eps) +
		e.xxx * instDist(i, pos + e.xxx * eps)
	);
}

void main() {
	vec2 ndc = 2.0 * vTexCoord - 1.0;
	float aspect = uResolution.x / uResolution.y;
	vec3 rd = normalize(uCamFwd + ndc.x * uTanHalfFov * aspect * uCamRight + ndc.y * uTanHalfFov * uCamUp);
	float t = 0.0;
	int hit = -1;
	bool found = false;
	for (int s = 0; s < 256 && t < uFar; s++) {
		float d = sceneDist(uCamPos + t * rd, hit);
		if (d < uTol && hit >= 0) {
			found = true;
			break;
		}
		t += d;
	}
	vec3 col;
	if (found) {
		vec3 pos = uCamPos + t * rd;
		vec3 nor = calcNormal(hit, pos);
		if (inst[hit].col.w < 0.5) {
			col = 0.5 + 0.5 * nor;
		} else {
			float li = uAmbient;
			for (int l = 0; l < uLightCount; l++) {
				vec3 L = uLightPos[l] - pos;
				float dist = length(L);
				float att = uLightIntensity[l];
				if (uLightRange[l] > 0.0) {
					float f = max(1.0 - dist / uLightRange[l], 0.0);
					att *= f * f;
				}
				li += max(dot(nor, L / dist), 0.0) * att;
			}
			col = inst[hit].col.xyz * li;
		}
	} else if (uHasBackground != 0) {
		col = texture(uBackground, rd).rgb;
	} else {
		col = uClearColor;
	}
	fragColor = vec4(col, 1.0);
}
`
