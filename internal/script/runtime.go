package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dshills/twintree/internal/conversion"
	"github.com/dshills/twintree/internal/logging"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds each script run and each callback made during
// conversion.
const DefaultTimeout = 5 * time.Second

// Runtime is a sandboxed Lua state whose scripts register converters.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes script
// runs and the callbacks converters make into Lua.
type Runtime struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	log     *logging.Logger
	closed  bool

	down *conversion.DowncastHelpers
	up   *conversion.UpcastHelpers
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithTimeout sets the limit for each run and callback.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) { r.timeout = d }
}

// WithLogger sets the logger used for script output and callback errors.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) { r.log = l.WithComponent("script") }
}

// NewRuntime creates a runtime whose converters module registers onto down
// and, for the upcast functions, up. up may be nil.
func NewRuntime(down *conversion.DowncastHelpers, up *conversion.UpcastHelpers, opts ...Option) *Runtime {
	r := &Runtime{
		timeout: DefaultTimeout,
		log:     logging.NullLogger(),
		down:    down,
		up:      up,
	}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	r.L = L
	openSafeLibraries(L)
	r.installSandbox()
	L.PreloadModule(ModuleName, r.loadModule)
	return r
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// installSandbox removes file and code loading and restricts require to the
// converters module and the opened libraries.
func (r *Runtime) installSandbox() {
	L := r.L
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	allowed := map[string]bool{
		ModuleName: true, "string": true, "table": true, "math": true,
	}
	original := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !allowed[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		args := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			args = append(args, L.ToStringMeta(L.Get(i)).String())
		}
		r.log.Info("%s", strings.Join(args, "\t"))
		return 0
	}))
}

// DoFile runs a script file.
func (r *Runtime) DoFile(path string) error {
	return r.run(func() error { return r.L.DoFile(path) })
}

// DoString runs script source.
func (r *Runtime) DoString(code string) error {
	return r.run(func() error { return r.L.DoString(code) })
}

// LoadFiles runs each file in order and stops at the first error.
func (r *Runtime) LoadFiles(paths ...string) error {
	for _, p := range paths {
		if err := r.DoFile(p); err != nil {
			return fmt.Errorf("script %s: %w", p, err)
		}
		r.log.WithField("file", p).Debug("loaded script")
	}
	return nil
}

func (r *Runtime) run(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRuntimeClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()
	return r.withRecovery(fn)
}

// withRecovery executes a function with panic recovery.
func (r *Runtime) withRecovery(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// call invokes fn with the arguments built by args and returns its first
// result. Converters use it while no script is running.
func (r *Runtime) call(fn *lua.LFunction, args func(L *lua.LState) []lua.LValue) (lua.LValue, error) {
	var ret lua.LValue = lua.LNil
	err := r.run(func() error {
		var in []lua.LValue
		if args != nil {
			in = args(r.L)
		}
		if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, in...); err != nil {
			return err
		}
		ret = r.L.Get(-1)
		r.L.Pop(1)
		return nil
	})
	return ret, err
}

// Close releases the Lua state. Converters registered by scripts stop
// producing elements afterwards.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}
