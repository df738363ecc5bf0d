// Package scene describes the fixed-duration segments of a production and
// resolves which one is on screen at a given time.
package scene

import "github.com/milk9111/usch/timeline"

// Params exposes animated parameters to uniform producers. ok is false while
// a known parameter has no value yet; an unknown name is an error.
type Params interface {
	Param(name string) (v float32, ok bool, err error)
}

// Context is what a uniform producer sees for one frame.
type Context struct {
	// Time is the global production time.
	Time timeline.Time
	// Local is the time since the scene started.
	Local      timeline.Time
	Resolution [2]float32
	Params     Params
}

// Param returns the named parameter, or def when it has no value yet or there
// are no params at all.
func (c Context) Param(name string, def float32) (float32, error) {
	if c.Params == nil {
		return def, nil
	}
	v, ok, err := c.Params.Param(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// UniformProducer builds the uniform values a scene's shader is drawn with.
type UniformProducer interface {
	Uniforms(ctx Context) (map[string]any, error)
}

// Scene is one segment of the production: a fragment shader shown for a fixed
// duration.
type Scene struct {
	Name     string
	Duration timeline.Time
	// Fragment is the Kage source of the scene's shader.
	Fragment []byte
	// FragmentPath is where Fragment was read from, if it came from disk.
	FragmentPath string
	Uniforms     UniformProducer
}

// Builtin provides Time, LocalTime and Resolution.
type Builtin struct{}

func (Builtin) Uniforms(ctx Context) (map[string]any, error) {
	return builtinUniforms(ctx), nil
}

func builtinUniforms(ctx Context) map[string]any {
	return map[string]any{
		"Time":       float32(ctx.Time.Seconds()),
		"LocalTime":  float32(ctx.Local.Seconds()),
		"Resolution": []float32{ctx.Resolution[0], ctx.Resolution[1]},
	}
}
