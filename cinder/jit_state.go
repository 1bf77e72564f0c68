package cinder

import "fmt"

type callFrame struct {
	Function string
	Pos      Position
}

// frame holds the storage of one active function call.
type frame struct {
	fn     *FuncDecl
	locals map[*VarDecl]*GenericValue
	this   *Object
}

// execution runs guest code for one backend entry point. Nested entry
// points, such as a native that compiles and runs another fragment, get
// their own execution.
type execution struct {
	jit       *jit
	callStack []callFrame
	frames    []*frame
	steps     int
}

func (j *jit) newExecution() *execution {
	return &execution{jit: j}
}

func (exec *execution) enter(fn *FuncDecl, function string, pos Position, this *Object) error {
	if err := exec.pushFrame(function, pos); err != nil {
		return err
	}
	exec.frames = append(exec.frames, &frame{fn: fn, locals: make(map[*VarDecl]*GenericValue), this: this})
	return nil
}

func (exec *execution) leave() {
	exec.popFrame()
	if len(exec.frames) == 0 {
		return
	}
	exec.frames = exec.frames[:len(exec.frames)-1]
}

func (exec *execution) pushFrame(function string, pos Position) error {
	limit := exec.jit.recursionLimit
	if limit > 0 && len(exec.callStack) >= limit {
		return exec.errorAt(pos, "recursion depth exceeded (limit %d)", limit)
	}
	exec.callStack = append(exec.callStack, callFrame{Function: function, Pos: pos})
	return nil
}

func (exec *execution) popFrame() {
	if len(exec.callStack) == 0 {
		return
	}
	exec.callStack = exec.callStack[:len(exec.callStack)-1]
}

func (exec *execution) current() *frame {
	if len(exec.frames) == 0 {
		return nil
	}
	return exec.frames[len(exec.frames)-1]
}

func (exec *execution) step(pos Position) error {
	exec.steps++
	quota := exec.jit.stepQuota
	if quota > 0 && exec.steps > quota {
		return exec.errorAt(pos, "step quota exceeded (%d)", quota)
	}
	return nil
}

// localSlot returns the storage of a local variable or parameter in the
// innermost frame.
func (exec *execution) localSlot(v *VarDecl) (*GenericValue, bool) {
	f := exec.current()
	if f == nil {
		return nil, false
	}
	slot, ok := f.locals[v]
	return slot, ok
}

func (exec *execution) varSlot(v *VarDecl, pos Position) (*GenericValue, error) {
	if v.Global {
		name := Mangle(v)
		slot, ok := exec.jit.globals[name]
		if !ok {
			return nil, exec.wrapError(&LinkError{Symbol: name}, pos)
		}
		return slot, nil
	}
	if slot, ok := exec.localSlot(v); ok {
		return slot, nil
	}
	return nil, exec.errorAt(pos, "variable '%s' is not available here", v.Name)
}

func (exec *execution) errorAt(pos Position, format string, args ...any) error {
	return exec.newRuntimeError(fmt.Sprintf(format, args...), pos, nil)
}

func (exec *execution) newRuntimeError(message string, pos Position, cause error) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	if len(exec.callStack) > 0 {
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, StackFrame{Function: current.Function, Pos: pos})
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			call := exec.callStack[i]
			// the entry call from the host has no call site
			if i == 0 && call.Pos.Line == 0 {
				break
			}
			frames = append(frames, StackFrame(call))
		}
	} else {
		frames = append(frames, StackFrame{Function: "<toplevel>", Pos: pos})
	}

	codeFrame := ""
	if f := exec.current(); f != nil && f.fn != nil {
		codeFrame = formatCodeFrame(f.fn.source, pos)
	}
	return &RuntimeError{Message: message, CodeFrame: codeFrame, Frames: frames, cause: cause}
}

// wrapError attaches guest frames to an error returned by host code.
func (exec *execution) wrapError(err error, pos Position) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	return exec.newRuntimeError(err.Error(), pos, err)
}
