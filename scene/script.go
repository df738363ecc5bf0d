package scene

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// A uniform script is tengo source that assigns a map named `uniforms` on
// every run. The globals below are set before each run:
//
//	seconds     global time in seconds
//	local       scene time in seconds
//	resolution  [width, height]
//	param(name, default)  held tracker value
//
// Values in `uniforms` override the builtin Time, LocalTime and Resolution.
// param fails the run when the track does not exist.
const scriptUniformsVar = "uniforms"

// Script is a UniformProducer backed by a compiled tengo script.
type Script struct {
	compiled *tengo.Compiled
	ctx      Context
	last     map[string]any
}

// CompileScript compiles src and runs it once against a zero context to check
// that it defines `uniforms`.
func CompileScript(src []byte) (*Script, error) {
	s := &Script{}
	script := tengo.NewScript(src)
	globals := []struct {
		name  string
		value any
	}{
		{"seconds", 0.0},
		{"local", 0.0},
		{"resolution", []any{0.0, 0.0}},
		{"param", &tengo.UserFunction{Name: "param", Value: s.param}},
	}
	for _, g := range globals {
		if err := script.Add(g.name, g.value); err != nil {
			return nil, fmt.Errorf("script global %q: %w", g.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	s.compiled = compiled

	if _, err := s.Uniforms(Context{}); err != nil {
		return nil, err
	}
	return s, nil
}

// Uniforms runs the script. On failure the previous result is returned along
// with the error.
func (s *Script) Uniforms(ctx Context) (map[string]any, error) {
	s.ctx = ctx
	out, err := s.run()
	if err != nil {
		return s.last, err
	}
	s.last = out
	return out, nil
}

func (s *Script) run() (map[string]any, error) {
	if s == nil || s.compiled == nil {
		return nil, errors.New("nil uniform script")
	}
	c := s.compiled
	if err := c.Set("seconds", s.ctx.Time.Seconds()); err != nil {
		return nil, err
	}
	if err := c.Set("local", s.ctx.Local.Seconds()); err != nil {
		return nil, err
	}
	res := []any{float64(s.ctx.Resolution[0]), float64(s.ctx.Resolution[1])}
	if err := c.Set("resolution", res); err != nil {
		return nil, err
	}
	if err := c.Run(); err != nil {
		return nil, err
	}
	if !c.IsDefined(scriptUniformsVar) {
		return nil, fmt.Errorf("script does not define %q", scriptUniformsVar)
	}
	values := c.Get(scriptUniformsVar).Map()
	if values == nil {
		return nil, fmt.Errorf("script %q is not a map", scriptUniformsVar)
	}

	out := builtinUniforms(s.ctx)
	for k, v := range values {
		out[k] = v
	}
	return out, nil
}

func (s *Script) param(args ...tengo.Object) (tengo.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, tengo.ErrWrongNumArguments
	}
	name, ok := tengo.ToString(args[0])
	if !ok {
		return nil, tengo.ErrInvalidArgumentType{Name: "name", Expected: "string", Found: args[0].TypeName()}
	}
	def := 0.0
	if len(args) == 2 {
		if def, ok = tengo.ToFloat64(args[1]); !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "default", Expected: "float", Found: args[1].TypeName()}
		}
	}
	v, err := s.ctx.Param(name, float32(def))
	if err != nil {
		return nil, err
	}
	return &tengo.Float{Value: float64(v)}, nil
}

// ScriptCompiler lets a hot-reload coordinator rebuild uniform scripts. When
// Params is set, a script that reads a param Params does not know is
// rejected.
type ScriptCompiler struct {
	Params Params
}

func (c ScriptCompiler) Compile(src []byte) (*Script, error) {
	s, err := CompileScript(src)
	if err != nil {
		return nil, err
	}
	if c.Params != nil {
		if _, err := s.Uniforms(Context{Params: c.Params}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (ScriptCompiler) Release(*Script) {}
