package sandbox

import (
	"strings"

	"github.com/dop251/goja"
)

// console captures console.log calls for a single run.
type console struct {
	vm    *goja.Runtime
	lines []string
}

// install replaces the runtime's console object and returns the function
// that puts the previous value back.
func (c *console) install() func() {
	prev := c.vm.Get("console")
	obj := c.vm.NewObject()
	_ = obj.Set("log", c.log)
	for _, name := range []string{"info", "warn", "error", "debug"} {
		_ = obj.Set(name, func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	}
	_ = c.vm.Set("console", obj)
	return func() {
		if prev == nil {
			_ = c.vm.GlobalObject().Delete("console")
			return
		}
		_ = c.vm.Set("console", prev)
	}
}

func (c *console) log(call goja.FunctionCall) goja.Value {
	parts := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		parts = append(parts, c.format(arg))
	}
	c.lines = append(c.lines, strings.Join(parts, " "))
	return goja.Undefined()
}

func (c *console) format(arg goja.Value) string {
	obj, ok := arg.(*goja.Object)
	if !ok {
		return c.toString(arg)
	}
	if _, isFn := goja.AssertFunction(obj); isFn {
		return obj.String()
	}
	stringify, ok := goja.AssertFunction(c.vm.Get("JSON").ToObject(c.vm).Get("stringify"))
	if !ok {
		return obj.String()
	}
	v, err := stringify(goja.Undefined(), obj, goja.Null(), c.vm.ToValue(2))
	if err != nil {
		return circularLine
	}
	return v.String()
}

// toString applies the script's own String function, which renders symbols
// as Symbol(desc) instead of their bare description.
func (c *console) toString(arg goja.Value) string {
	if str, ok := goja.AssertFunction(c.vm.Get("String")); ok {
		if v, err := str(goja.Undefined(), arg); err == nil {
			return v.String()
		}
	}
	return arg.String()
}
