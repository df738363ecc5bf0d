// Package render draws scenes with Kage fragment shaders.
package render

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Pipeline is a compiled scene shader, drawn as a full-screen rectangle.
type Pipeline struct {
	shader *ebiten.Shader
}

// Draw fills dst with the shader using the given uniforms.
func (p *Pipeline) Draw(dst *ebiten.Image, uniforms map[string]any) {
	if p == nil || p.shader == nil {
		return
	}
	b := dst.Bounds()
	op := &ebiten.DrawRectShaderOptions{
		Uniforms: NormalizeUniforms(uniforms),
	}
	dst.DrawRectShader(b.Dx(), b.Dy(), p.shader, op)
}

// Compiler builds pipelines from Kage source.
type Compiler struct{}

func (Compiler) Compile(src []byte) (*Pipeline, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return nil, err
	}
	return &Pipeline{shader: s}, nil
}

// Release frees the GPU resources of a replaced pipeline.
func (Compiler) Release(p *Pipeline) {
	if p == nil || p.shader == nil {
		return
	}
	p.shader.Deallocate()
	p.shader = nil
}
