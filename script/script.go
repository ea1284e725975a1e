package script

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.starlark.net/starlark"

	"canvas-camera/canvas"
)

// Result is what a script leaves behind.
type Result struct {
	State   canvas.State
	Globals map[string]interface{}
}

// Runner executes Starlark gesture scripts against a camera. Scripts see
// these builtins:
//
//	reset()                  acquire the surface and reset the camera
//	press(x, y) / move(x, y) / release()
//	pan(dx, dy)              a whole drag in one call
//	pointer(x, y)            track the pointer (surface-relative)
//	wheel(dy)                zoom at the pointer; False if rejected
//	zoom_at(x, y, dy)        zoom at an explicit anchor
//	state()                  dict snapshot of the camera
//	to_world(x, y)           exact screen-to-world mapping
//	transformed_point(x, y)  translation-only mapping
//
// and the predeclared values width, height and ratio.
type Runner struct {
	cam     *canvas.Camera
	surface canvas.Surface
	log     zerolog.Logger
}

func NewRunner(cam *canvas.Camera, s canvas.Surface, log zerolog.Logger) *Runner {
	return &Runner{cam: cam, surface: s, log: log}
}

// Run executes src. name is used in error positions and log lines.
func (r *Runner) Run(name, src string, vars map[string]interface{}) (Result, error) {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			r.log.Info().Str("script", name).Msg(msg)
		},
	}

	w, h := r.cam.DeclaredSize()
	globals := starlark.StringDict{
		"width":  starlark.Float(w),
		"height": starlark.Float(h),
		"ratio":  starlark.Float(r.cam.PixelRatio()),
	}
	for k, v := range vars {
		val, err := toStarlarkValue(v)
		if err != nil {
			return Result{}, fmt.Errorf("script var %q: %w", k, err)
		}
		globals[k] = val
	}
	for k, v := range r.builtins() {
		globals[k] = v
	}

	resultGlobals, err := starlark.ExecFile(thread, name, src, globals)
	if err != nil {
		return Result{}, err
	}

	out := make(map[string]interface{})
	for k, v := range resultGlobals {
		if val := FromStarlarkValue(v); val != nil {
			out[k] = val
		}
	}
	return Result{State: r.cam.State(), Globals: out}, nil
}

func (r *Runner) builtins() starlark.StringDict {
	return starlark.StringDict{
		"reset": starlark.NewBuiltin("reset", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			r.cam.Reset(r.surface)
			return starlark.None, nil
		}),
		"press": r.pointBuiltin("press", func(p canvas.Point) { r.cam.StartPan(p) }),
		"move":  r.pointBuiltin("move", func(p canvas.Point) { r.cam.PanMove(p) }),
		"release": starlark.NewBuiltin("release", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			r.cam.EndPan()
			return starlark.None, nil
		}),
		"pan": r.pointBuiltin("pan", func(d canvas.Point) {
			r.cam.StartPan(canvas.Origin)
			r.cam.PanMove(d)
			r.cam.EndPan()
		}),
		"pointer": r.pointBuiltin("pointer", func(p canvas.Point) { r.cam.TrackPointer(p, canvas.Origin) }),
		"wheel": starlark.NewBuiltin("wheel", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			f, err := floatArgs(b, args, kwargs, "dy")
			if err != nil {
				return nil, err
			}
			return starlark.Bool(r.cam.Wheel(f[0]) == nil), nil
		}),
		"zoom_at": starlark.NewBuiltin("zoom_at", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			f, err := floatArgs(b, args, kwargs, "x", "y", "dy")
			if err != nil {
				return nil, err
			}
			return starlark.Bool(r.cam.ZoomAt(canvas.Pt(f[0], f[1]), f[2]) == nil), nil
		}),
		"state": starlark.NewBuiltin("state", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
				return nil, err
			}
			return stateDict(r.cam.State())
		}),
		"to_world": r.mapBuiltin("to_world", r.cam.ScreenToWorld),
		"transformed_point": r.mapBuiltin("transformed_point", func(p canvas.Point) canvas.Point {
			return r.cam.TransformedPoint(p.X, p.Y)
		}),
	}
}

func (r *Runner) pointBuiltin(name string, fn func(canvas.Point)) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		f, err := floatArgs(b, args, kwargs, "x", "y")
		if err != nil {
			return nil, err
		}
		fn(canvas.Pt(f[0], f[1]))
		return starlark.None, nil
	})
}

func (r *Runner) mapBuiltin(name string, fn func(canvas.Point) canvas.Point) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		f, err := floatArgs(b, args, kwargs, "x", "y")
		if err != nil {
			return nil, err
		}
		return pointTuple(fn(canvas.Pt(f[0], f[1]))), nil
	})
}

// floatArgs unpacks named numeric arguments, accepting ints and floats.
func floatArgs(b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, names ...string) ([]float64, error) {
	vals := make([]starlark.Value, len(names))
	pairs := make([]interface{}, 0, 2*len(names))
	for i, n := range names {
		pairs = append(pairs, n, &vals[i])
	}
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, pairs...); err != nil {
		return nil, err
	}
	out := make([]float64, len(names))
	for i, v := range vals {
		f, ok := starlark.AsFloat(v)
		if !ok {
			return nil, fmt.Errorf("%s: %s must be a number, got %s", b.Name(), names[i], v.Type())
		}
		out[i] = f
	}
	return out, nil
}

func pointTuple(p canvas.Point) starlark.Tuple {
	return starlark.Tuple{starlark.Float(p.X), starlark.Float(p.Y)}
}

func stateDict(st canvas.State) (*starlark.Dict, error) {
	d := starlark.NewDict(5)
	entries := []struct {
		key string
		val starlark.Value
	}{
		{"scale", starlark.Float(st.Scale)},
		{"offset", pointTuple(st.Offset)},
		{"viewport_top_left", pointTuple(st.ViewportTopLeft)},
		{"pointer", pointTuple(st.PointerPos)},
		{"panning", starlark.Bool(st.Panning)},
	}
	for _, e := range entries {
		if err := d.SetKey(starlark.String(e.key), e.val); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Helpers for type conversion
func toStarlarkValue(v interface{}) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}
	switch val := v.(type) {
	case string:
		return starlark.String(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case float64:
		return starlark.Float(val), nil
	case bool:
		return starlark.Bool(val), nil
	}
	return starlark.None, fmt.Errorf("unsupported type: %T", v)
}

// FromStarlarkValue converts scalars and (x, y) pairs to Go values. Anything
// else, including builtins, becomes nil.
func FromStarlarkValue(v starlark.Value) interface{} {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.Int:
		i, _ := val.Int64()
		return int(i)
	case starlark.Float:
		return float64(val)
	case starlark.Bool:
		return bool(val)
	case starlark.Tuple:
		if len(val) == 2 {
			x, okX := starlark.AsFloat(val[0])
			y, okY := starlark.AsFloat(val[1])
			if okX && okY {
				return canvas.Pt(x, y)
			}
		}
	}
	return nil
}
