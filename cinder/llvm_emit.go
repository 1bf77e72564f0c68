package cinder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

var errNotLowerable = errors.New("construct has no IR lowering")

// EmitIR renders the program as LLVM IR. Only functions over int, bool and
// double are lowered; the names of skipped functions are listed in a
// comment at the top. Globals are emitted zero-initialized because their
// initializers run in the interpreter.
func (in *Interpreter) EmitIR() (string, error) {
	if in.closed {
		return "", ErrClosed
	}
	em := newIREmitter()
	for _, tx := range in.session.Transactions() {
		for _, d := range tx.decls {
			em.collect(d)
		}
	}
	return em.emit(), nil
}

type irLoop struct {
	cont, exit *ir.Block
}

type irEmitter struct {
	module  *ir.Module
	funcs   []*FuncDecl
	globals []*VarDecl

	declared   map[string]*ir.Func
	globalDefs map[string]*ir.Global
	lowerable  map[*FuncDecl]bool
	skipped    []string

	fn     *ir.Func
	block  *ir.Block
	locals map[*VarDecl]*ir.InstAlloca
	loops  []irLoop
}

func newIREmitter() *irEmitter {
	return &irEmitter{
		module:     ir.NewModule(),
		declared:   make(map[string]*ir.Func),
		globalDefs: make(map[string]*ir.Global),
		lowerable:  make(map[*FuncDecl]bool),
	}
}

func (em *irEmitter) collect(d Decl) {
	switch decl := d.(type) {
	case *FuncDecl:
		if decl.Body != nil {
			em.funcs = append(em.funcs, decl)
		}
	case *VarDecl:
		if decl.Global && decl.IsDefinition() {
			em.globals = append(em.globals, decl)
		}
	case *NamespaceDecl:
		for _, member := range decl.Decls {
			em.collect(member)
		}
	}
}

func irType(t Type) (types.Type, bool) {
	switch t.Kind {
	case KindVoid:
		return types.Void, true
	case KindBool:
		return types.I1, true
	case KindInt:
		return types.I64, true
	case KindDouble:
		return types.Double, true
	default:
		return nil, false
	}
}

func irZero(t Type) constant.Constant {
	switch t.Kind {
	case KindBool:
		return constant.NewInt(types.I1, 0)
	case KindDouble:
		return constant.NewFloat(types.Double, 0)
	default:
		return constant.NewInt(types.I64, 0)
	}
}

func (em *irEmitter) emit() string {
	for _, v := range em.globals {
		t, ok := irType(v.Type)
		if !ok || t == types.Void {
			em.skipped = append(em.skipped, QualifiedName(v))
			continue
		}
		name := Mangle(v)
		em.globalDefs[name] = em.module.NewGlobalDef(name, irZero(v.Type))
	}

	var defined []*FuncDecl
	for _, fn := range em.funcs {
		if err := em.checkSignature(fn); err != nil {
			em.skipped = append(em.skipped, QualifiedName(fn))
			continue
		}
		defined = append(defined, fn)
		em.declare(fn)
	}
	for _, fn := range defined {
		if err := em.define(fn); err != nil {
			em.skipped = append(em.skipped, QualifiedName(fn))
		}
	}

	var b strings.Builder
	if len(em.skipped) > 0 {
		sort.Strings(em.skipped)
		fmt.Fprintf(&b, "; skipped: %s\n", strings.Join(em.skipped, ", "))
	}
	b.WriteString(em.module.String())
	return b.String()
}

func (em *irEmitter) checkSignature(fn *FuncDecl) error {
	if fn.Class != nil {
		return errNotLowerable
	}
	if _, ok := irType(fn.Result); !ok {
		return errNotLowerable
	}
	for _, p := range fn.Params {
		if t, ok := irType(p.Type); !ok || t == types.Void {
			return errNotLowerable
		}
	}
	return nil
}

func (em *irEmitter) declare(fn *FuncDecl) *ir.Func {
	name := Mangle(fn)
	if f, ok := em.declared[name]; ok {
		return f
	}
	result, _ := irType(fn.Result)
	params := make([]*ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		t, _ := irType(p.Type)
		params[i] = ir.NewParam(p.Name, t)
	}
	f := em.module.NewFunc(name, result, params...)
	em.declared[name] = f
	return f
}

func (em *irEmitter) define(fn *FuncDecl) (err error) {
	f := em.declared[Mangle(fn)]
	em.fn = f
	em.locals = make(map[*VarDecl]*ir.InstAlloca)
	em.loops = nil
	em.block = f.NewBlock("entry")
	// A function that cannot be lowered stays behind as a declaration.
	defer func() {
		if err != nil {
			f.Blocks = nil
		}
	}()

	for i, p := range fn.Params {
		t, _ := irType(p.Type)
		slot := em.block.NewAlloca(t)
		em.block.NewStore(f.Params[i], slot)
		em.locals[p] = slot
	}
	for _, stmt := range fn.Body.Stmts {
		if err := em.stmt(stmt); err != nil {
			return err
		}
	}
	if em.block.Term == nil {
		if fn.Result.IsVoid() {
			em.block.NewRet(nil)
		} else {
			em.block.NewRet(irZero(fn.Result))
		}
	}
	for _, block := range f.Blocks {
		if block.Term == nil {
			block.NewUnreachable()
		}
	}
	return nil
}

// detach starts a new block for code following a terminator.
func (em *irEmitter) detach() {
	em.block = em.fn.NewBlock("")
}

func (em *irEmitter) stmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *CompoundStmt:
		for _, inner := range s.Stmts {
			if err := em.stmt(inner); err != nil {
				return err
			}
		}
	case *DeclStmt:
		for _, d := range s.Decls {
			v, ok := d.(*VarDecl)
			if !ok {
				return errNotLowerable
			}
			t, ok := irType(v.Type)
			if !ok || t == types.Void {
				return errNotLowerable
			}
			var init value.Value = irZero(v.Type)
			if v.Init != nil {
				var err error
				if init, err = em.expr(v.Init); err != nil {
					return err
				}
			}
			slot := em.block.NewAlloca(t)
			em.block.NewStore(init, slot)
			em.locals[v] = slot
		}
	case *ExprStmt:
		_, err := em.expr(s.X)
		return err
	case *NullStmt:
	case *ReturnStmt:
		if s.Result == nil {
			em.block.NewRet(nil)
		} else {
			v, err := em.expr(s.Result)
			if err != nil {
				return err
			}
			em.block.NewRet(v)
		}
		em.detach()
	case *IfStmt:
		return em.ifStmt(s)
	case *WhileStmt:
		return em.loop(nil, s.Cond, nil, s.Body)
	case *ForStmt:
		return em.loop(s.Init, s.Cond, s.Post, s.Body)
	case *BreakStmt:
		if len(em.loops) == 0 {
			return errNotLowerable
		}
		em.block.NewBr(em.loops[len(em.loops)-1].exit)
		em.detach()
	case *ContinueStmt:
		if len(em.loops) == 0 {
			return errNotLowerable
		}
		em.block.NewBr(em.loops[len(em.loops)-1].cont)
		em.detach()
	default:
		return errNotLowerable
	}
	return nil
}

func (em *irEmitter) ifStmt(s *IfStmt) error {
	cond, err := em.expr(s.Cond)
	if err != nil {
		return err
	}
	thenBlock := em.fn.NewBlock("")
	mergeBlock := em.fn.NewBlock("")
	elseBlock := mergeBlock
	if s.Else != nil {
		elseBlock = em.fn.NewBlock("")
	}
	em.block.NewCondBr(cond, thenBlock, elseBlock)

	em.block = thenBlock
	if err := em.stmt(s.Then); err != nil {
		return err
	}
	if em.block.Term == nil {
		em.block.NewBr(mergeBlock)
	}
	if s.Else != nil {
		em.block = elseBlock
		if err := em.stmt(s.Else); err != nil {
			return err
		}
		if em.block.Term == nil {
			em.block.NewBr(mergeBlock)
		}
	}
	em.block = mergeBlock
	return nil
}

func (em *irEmitter) loop(init Stmt, cond, post Expr, body Stmt) error {
	if init != nil {
		if err := em.stmt(init); err != nil {
			return err
		}
	}
	condBlock := em.fn.NewBlock("")
	bodyBlock := em.fn.NewBlock("")
	stepBlock := em.fn.NewBlock("")
	endBlock := em.fn.NewBlock("")
	em.block.NewBr(condBlock)

	em.block = condBlock
	if cond != nil {
		c, err := em.expr(cond)
		if err != nil {
			return err
		}
		em.block.NewCondBr(c, bodyBlock, endBlock)
	} else {
		em.block.NewBr(bodyBlock)
	}

	em.loops = append(em.loops, irLoop{cont: stepBlock, exit: endBlock})
	em.block = bodyBlock
	err := em.stmt(body)
	em.loops = em.loops[:len(em.loops)-1]
	if err != nil {
		return err
	}
	if em.block.Term == nil {
		em.block.NewBr(stepBlock)
	}

	em.block = stepBlock
	if post != nil {
		if _, err := em.expr(post); err != nil {
			return err
		}
	}
	em.block.NewBr(condBlock)
	em.block = endBlock
	return nil
}

// slot returns the storage of a variable named by an identifier.
func (em *irEmitter) slot(e Expr) (value.Value, types.Type, error) {
	id, ok := e.(*Ident)
	if !ok {
		return nil, nil, errNotLowerable
	}
	v, ok := id.Ref.(*VarDecl)
	if !ok {
		return nil, nil, errNotLowerable
	}
	t, ok := irType(v.Type)
	if !ok {
		return nil, nil, errNotLowerable
	}
	if v.Global {
		g, ok := em.globalDefs[Mangle(v)]
		if !ok {
			return nil, nil, errNotLowerable
		}
		return g, t, nil
	}
	local, ok := em.locals[v]
	if !ok {
		return nil, nil, errNotLowerable
	}
	return local, t, nil
}

func (em *irEmitter) expr(e Expr) (value.Value, error) {
	switch n := e.(type) {
	case *IntLit:
		return constant.NewInt(types.I64, n.Value), nil
	case *FloatLit:
		return constant.NewFloat(types.Double, n.Value), nil
	case *BoolLit:
		if n.Value {
			return constant.NewInt(types.I1, 1), nil
		}
		return constant.NewInt(types.I1, 0), nil
	case *Ident:
		slot, t, err := em.slot(n)
		if err != nil {
			return nil, err
		}
		return em.block.NewLoad(t, slot), nil
	case *UnaryExpr:
		x, err := em.expr(n.X)
		if err != nil {
			return nil, err
		}
		switch {
		case n.Op == tokenBang:
			return em.block.NewICmp(enum.IPredEQ, x, constant.NewInt(types.I1, 0)), nil
		case n.Op == tokenMinus && n.Type().Kind == KindDouble:
			return em.block.NewFSub(constant.NewFloat(types.Double, 0), x), nil
		case n.Op == tokenMinus:
			return em.block.NewSub(constant.NewInt(types.I64, 0), x), nil
		default:
			return x, nil
		}
	case *IncDecExpr:
		slot, t, err := em.slot(n.X)
		if err != nil {
			return nil, err
		}
		old := em.block.NewLoad(t, slot)
		var updated value.Value
		switch {
		case n.Type().Kind == KindDouble && n.Op == tokenIncrement:
			updated = em.block.NewFAdd(old, constant.NewFloat(types.Double, 1))
		case n.Type().Kind == KindDouble:
			updated = em.block.NewFSub(old, constant.NewFloat(types.Double, 1))
		case n.Op == tokenIncrement:
			updated = em.block.NewAdd(old, constant.NewInt(types.I64, 1))
		default:
			updated = em.block.NewSub(old, constant.NewInt(types.I64, 1))
		}
		em.block.NewStore(updated, slot)
		if n.Postfix {
			return old, nil
		}
		return updated, nil
	case *BinaryExpr:
		if n.Op == tokenAnd || n.Op == tokenOr {
			return em.logical(n)
		}
		x, err := em.expr(n.X)
		if err != nil {
			return nil, err
		}
		y, err := em.expr(n.Y)
		if err != nil {
			return nil, err
		}
		return em.binary(n.Op, x, y, n.X.Type())
	case *AssignExpr:
		slot, t, err := em.slot(n.Target)
		if err != nil {
			return nil, err
		}
		v, err := em.expr(n.Value)
		if err != nil {
			return nil, err
		}
		if n.Op != tokenAssign {
			old := em.block.NewLoad(t, slot)
			if v, err = em.binary(compoundOps[n.Op], old, v, n.Target.Type()); err != nil {
				return nil, err
			}
		}
		em.block.NewStore(v, slot)
		return v, nil
	case *CondExpr:
		return em.conditional(n)
	case *CallExpr:
		return em.call(n)
	case *ConvExpr:
		x, err := em.expr(n.X)
		if err != nil {
			return nil, err
		}
		return em.convert(x, n.X.Type(), n.Type())
	default:
		return nil, errNotLowerable
	}
}

func (em *irEmitter) binary(op TokenType, x, y value.Value, t Type) (value.Value, error) {
	if t.Kind == KindDouble {
		switch op {
		case tokenPlus:
			return em.block.NewFAdd(x, y), nil
		case tokenMinus:
			return em.block.NewFSub(x, y), nil
		case tokenAsterisk:
			return em.block.NewFMul(x, y), nil
		case tokenSlash:
			return em.block.NewFDiv(x, y), nil
		}
		preds := map[TokenType]enum.FPred{
			tokenEQ: enum.FPredOEQ, tokenNotEQ: enum.FPredONE,
			tokenLT: enum.FPredOLT, tokenLTE: enum.FPredOLE,
			tokenGT: enum.FPredOGT, tokenGTE: enum.FPredOGE,
		}
		if pred, ok := preds[op]; ok {
			return em.block.NewFCmp(pred, x, y), nil
		}
		return nil, errNotLowerable
	}
	if t.Kind != KindInt && t.Kind != KindBool {
		return nil, errNotLowerable
	}
	switch op {
	case tokenPlus:
		return em.block.NewAdd(x, y), nil
	case tokenMinus:
		return em.block.NewSub(x, y), nil
	case tokenAsterisk:
		return em.block.NewMul(x, y), nil
	case tokenSlash:
		return em.block.NewSDiv(x, y), nil
	case tokenPercent:
		return em.block.NewSRem(x, y), nil
	}
	preds := map[TokenType]enum.IPred{
		tokenEQ: enum.IPredEQ, tokenNotEQ: enum.IPredNE,
		tokenLT: enum.IPredSLT, tokenLTE: enum.IPredSLE,
		tokenGT: enum.IPredSGT, tokenGTE: enum.IPredSGE,
	}
	if pred, ok := preds[op]; ok {
		return em.block.NewICmp(pred, x, y), nil
	}
	return nil, errNotLowerable
}

func (em *irEmitter) logical(n *BinaryExpr) (value.Value, error) {
	x, err := em.expr(n.X)
	if err != nil {
		return nil, err
	}
	lhsBlock := em.block
	rhsBlock := em.fn.NewBlock("")
	mergeBlock := em.fn.NewBlock("")
	short := constant.NewInt(types.I1, 0)
	if n.Op == tokenAnd {
		em.block.NewCondBr(x, rhsBlock, mergeBlock)
	} else {
		short = constant.NewInt(types.I1, 1)
		em.block.NewCondBr(x, mergeBlock, rhsBlock)
	}

	em.block = rhsBlock
	y, err := em.expr(n.Y)
	if err != nil {
		return nil, err
	}
	rhsEnd := em.block
	em.block.NewBr(mergeBlock)

	em.block = mergeBlock
	return mergeBlock.NewPhi(ir.NewIncoming(short, lhsBlock), ir.NewIncoming(y, rhsEnd)), nil
}

func (em *irEmitter) conditional(n *CondExpr) (value.Value, error) {
	if _, ok := irType(n.Type()); !ok || n.Type().IsVoid() {
		return nil, errNotLowerable
	}
	cond, err := em.expr(n.Cond)
	if err != nil {
		return nil, err
	}
	thenBlock := em.fn.NewBlock("")
	elseBlock := em.fn.NewBlock("")
	mergeBlock := em.fn.NewBlock("")
	em.block.NewCondBr(cond, thenBlock, elseBlock)

	em.block = thenBlock
	thenValue, err := em.expr(n.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := em.block
	em.block.NewBr(mergeBlock)

	em.block = elseBlock
	elseValue, err := em.expr(n.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := em.block
	em.block.NewBr(mergeBlock)

	em.block = mergeBlock
	return mergeBlock.NewPhi(ir.NewIncoming(thenValue, thenEnd), ir.NewIncoming(elseValue, elseEnd)), nil
}

func (em *irEmitter) call(n *CallExpr) (value.Value, error) {
	if n.Func == nil || em.checkSignature(n.Func) != nil {
		return nil, errNotLowerable
	}
	callee, ok := em.declared[Mangle(n.Func)]
	if !ok {
		if n.Func.Body != nil {
			return nil, errNotLowerable
		}
		callee = em.declare(n.Func)
	}
	args := make([]value.Value, len(n.Args))
	for i, arg := range n.Args {
		v, err := em.expr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return em.block.NewCall(callee, args...), nil
}

func (em *irEmitter) convert(x value.Value, from, to Type) (value.Value, error) {
	switch {
	case from.Equal(to):
		return x, nil
	case from.Kind == KindInt && to.Kind == KindDouble:
		return em.block.NewSIToFP(x, types.Double), nil
	case from.Kind == KindDouble && to.Kind == KindInt:
		return em.block.NewFPToSI(x, types.I64), nil
	case from.Kind == KindBool && to.Kind == KindInt:
		return em.block.NewZExt(x, types.I64), nil
	case from.Kind == KindBool && to.Kind == KindDouble:
		return em.block.NewUIToFP(x, types.Double), nil
	case from.Kind == KindInt && to.Kind == KindBool:
		return em.block.NewICmp(enum.IPredNE, x, constant.NewInt(types.I64, 0)), nil
	case from.Kind == KindDouble && to.Kind == KindBool:
		return em.block.NewFCmp(enum.FPredUNE, x, constant.NewFloat(types.Double, 0)), nil
	default:
		return nil, errNotLowerable
	}
}
