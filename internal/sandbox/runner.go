// Package sandbox runs short JavaScript and TypeScript snippets in an
// isolated goja runtime and captures what they print.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"

	"codemorph/internal/language"
)

const (
	DefaultTimeout = 2 * time.Second

	emptyLine    = "// Code is empty. Nothing to execute."
	noOutputLine = "// Code executed successfully with no output."
	circularLine = "[Circular Object]"
)

var (
	jsxPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)
	jsxLines   = []string{
		"Execution Error: Cannot run code containing JSX.",
		"The 'Run Code' feature is for plain JavaScript and does not support JSX syntax (e.g., <div>, <Component />).",
	}

	errTimeout = errors.New("execution timed out")
)

// Outcome is the result of one run.
type Outcome struct {
	Lines   []string `json:"lines" yaml:"lines"`
	IsError bool     `json:"isError" yaml:"isError"`
}

// Runner executes snippets. Every call gets a fresh runtime, so a Runner is
// safe for concurrent use.
type Runner struct {
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*Runner)

// WithTimeout overrides DefaultTimeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func New(opts ...Option) *Runner {
	r := &Runner{timeout: DefaultTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run never returns an error: every failure is reported through the Outcome.
func (r *Runner) Run(ctx context.Context, code string, lang language.Tag) (out Outcome) {
	if !lang.Runnable() {
		return Outcome{
			Lines:   []string{fmt.Sprintf("// Execution for '%s' is not supported in the sandbox.", lang)},
			IsError: true,
		}
	}
	if strings.TrimSpace(code) == "" {
		return Outcome{Lines: []string{emptyLine}}
	}
	if jsxPattern.MatchString(code) {
		return Outcome{Lines: append([]string(nil), jsxLines...), IsError: true}
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Msg("sandbox panic")
			out = Outcome{Lines: []string{fmt.Sprintf("Execution Error: %v", p)}, IsError: true}
		}
	}()

	if lang == language.TypeScript {
		js, err := stripTypes(code)
		if err != nil {
			return Outcome{Lines: []string{err.Error()}, IsError: true}
		}
		code = js
	}
	return r.execute(ctx, code)
}

func (r *Runner) execute(ctx context.Context, code string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vm := goja.New()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(errTimeout) })
	defer stop()

	c := &console{vm: vm}
	restore := c.install()
	defer restore()

	start := time.Now()
	err := runBody(vm, code)
	r.log.Debug().Dur("elapsed", time.Since(start)).Int("lines", len(c.lines)).Err(err).Msg("sandbox run")
	if err != nil {
		return Outcome{Lines: []string{errorText(err, r.timeout)}, IsError: true}
	}
	if len(c.lines) == 0 {
		return Outcome{Lines: []string{noOutputLine}}
	}
	return Outcome{Lines: c.lines}
}

// runBody compiles code as the body of a fresh function and calls it. The
// source is handed to the Function constructor as a value, so it cannot close
// the wrapper early, and a top-level return still works.
func runBody(vm *goja.Runtime, code string) error {
	ctor, ok := goja.AssertConstructor(vm.Get("Function"))
	if !ok {
		return errors.New("Function constructor unavailable")
	}
	fn, err := ctor(nil, vm.ToValue(code))
	if err != nil {
		return err
	}
	call, ok := goja.AssertFunction(fn)
	if !ok {
		return errors.New("compiled body is not callable")
	}
	_, err = call(goja.Undefined())
	return err
}

func errorText(err error, timeout time.Duration) string {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		return fmt.Sprintf("Error: execution timed out after %s", timeout)
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return strings.TrimSpace(thrownText(ex))
	}
	return err.Error()
}

// thrownText prefers the thrown object's stack, then its message. Thrown
// primitives are printed as they are.
func thrownText(ex *goja.Exception) string {
	v := ex.Value()
	obj, ok := v.(*goja.Object)
	if !ok {
		if v == nil {
			return ex.String()
		}
		return v.String()
	}
	for _, prop := range []string{"stack", "message"} {
		if p := obj.Get(prop); p != nil && !goja.IsUndefined(p) && !goja.IsNull(p) && p.String() != "" {
			return p.String()
		}
	}
	return ex.String()
}

// stripTypes removes TypeScript-only syntax so goja can run the result.
func stripTypes(code string) (string, error) {
	res := api.Transform(code, api.TransformOptions{
		Loader: api.LoaderTS,
		Target: api.ES2017,
	})
	if len(res.Errors) > 0 {
		msgs := make([]string, 0, len(res.Errors))
		for _, m := range res.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", fmt.Errorf("TypeScript Error: %s", strings.Join(msgs, "; "))
	}
	return string(res.Code), nil
}
