package renderer

const surfaceVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec4 aColor;

uniform mat4 uModel;
uniform mat4 uViewProj;

out vec3 vNormal;
out vec4 vColor;

void main() {
	vNormal = mat3(transpose(inverse(uModel))) * aNormal;
	vColor = aColor;
	gl_Position = uViewProj * uModel * vec4(aPos, 1.0);
}
`

const surfaceFragmentSrc = `
#version 410 core

in vec3 vNormal;
in vec4 vColor;

uniform vec4 uColor;
uniform bool uVertexColor;
uniform bool uUnlit;
uniform bool uDoubleSide;
uniform vec3 uLightDir;
uniform vec3 uAmbient;
uniform float uLightBrightness;

out vec4 FragColor;

void main() {
	vec4 base = uVertexColor ? vColor : uColor;
	if (uUnlit) {
		FragColor = base;
		return;
	}

	vec3 n = normalize(vNormal);
	float d = dot(n, -uLightDir);
	if (uDoubleSide) {
		d = abs(d);
	}
	vec3 lit = base.rgb * (uAmbient + max(d, 0.0) * uLightBrightness);
	FragColor = vec4(min(lit, vec3(1.0)), base.a);
}
`

const lineVertexSrc = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const lineFragmentSrc = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
