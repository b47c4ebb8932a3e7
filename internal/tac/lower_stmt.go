package tac

import (
	"fmt"

	"github.com/cc-core/cc/internal/symtab"
	"github.com/cc-core/cc/internal/tast"
	"github.com/cc-core/cc/internal/types"
)

func (b *builder) lowerBlockItems(items []tast.Node) error {
	for _, item := range items {
		switch n := item.(type) {
		case *tast.VarDecl:
			if err := b.lowerLocalVarDecl(n); err != nil {
				return err
			}
		case *tast.FuncDecl:
			// A nested function prototype declares no storage and
			// generates no code; only file-scope definitions do.
		case tast.Stmt:
			if err := b.lowerStmt(n); err != nil {
				return err
			}
		default:
			return fmt.Errorf("tac: unhandled block item %T", item)
		}
	}
	return nil
}

func (b *builder) lowerLocalVarDecl(d *tast.VarDecl) error {
	entry := b.syms.Get(d.Symbol)
	b.fn.Locals = append(b.fn.Locals, d.Symbol)
	baseVar := Var{Ty: entry.Type, Symbol: d.Symbol, Name: entry.Name}
	scalar := entry.Type.Kind() != types.KindArray && entry.Type.Kind() != types.KindStruct

	for _, item := range d.Init {
		if item.Value == nil {
			b.emit(ZeroOut{Dst: baseVar, Offset: item.Offset, Length: item.Zero})
			continue
		}
		v, err := b.lowerExpr(item.Value)
		if err != nil {
			return err
		}
		if scalar && item.Offset == 0 {
			b.emit(Copy{Dst: baseVar, Src: v})
		} else {
			b.emit(CopyToOffset{Dst: baseVar, Offset: item.Offset, Src: v})
		}
	}
	return nil
}

func (b *builder) lowerStmt(s tast.Stmt) error {
	switch s := s.(type) {
	case *tast.CompoundStmt:
		return b.lowerBlockItems(s.Items)

	case *tast.IfStmt:
		cond, err := b.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		if s.Else == nil {
			end := b.newLabel("if_end")
			b.emit(JumpIfZero{Cond: cond, Target: end})
			if err := b.lowerStmt(s.Then); err != nil {
				return err
			}
			b.emit(Label{Name: end})
			return nil
		}
		elseLabel := b.newLabel("if_else")
		end := b.newLabel("if_end")
		b.emit(JumpIfZero{Cond: cond, Target: elseLabel})
		if err := b.lowerStmt(s.Then); err != nil {
			return err
		}
		b.emit(Jump{Target: end})
		b.emit(Label{Name: elseLabel})
		if err := b.lowerStmt(s.Else); err != nil {
			return err
		}
		b.emit(Label{Name: end})
		return nil

	case *tast.ForStmt:
		return b.lowerFor(s)

	case *tast.WhileStmt:
		start := b.newLabel("while_start")
		end := b.newLabel("while_end")
		b.pushLoop(end, start)
		defer b.popLoop()
		b.emit(Label{Name: start})
		cond, err := b.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		b.emit(JumpIfZero{Cond: cond, Target: end})
		if err := b.lowerStmt(s.Body); err != nil {
			return err
		}
		b.emit(Jump{Target: start})
		b.emit(Label{Name: end})
		return nil

	case *tast.DoWhileStmt:
		start := b.newLabel("do_start")
		cont := b.newLabel("do_cont")
		end := b.newLabel("do_end")
		b.pushLoop(end, cont)
		defer b.popLoop()
		b.emit(Label{Name: start})
		if err := b.lowerStmt(s.Body); err != nil {
			return err
		}
		b.emit(Label{Name: cont})
		cond, err := b.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		b.emit(JumpIfNotZero{Cond: cond, Target: start})
		b.emit(Label{Name: end})
		return nil

	case *tast.SwitchStmt:
		return b.lowerSwitch(s)

	case *tast.CaseStmt:
		label, ok := b.caseLabels[caseKey{s}]
		if !ok {
			return fmt.Errorf("tac: internal error: case label not pre-assigned")
		}
		b.emit(Label{Name: label})
		return b.lowerStmt(s.Stmt)

	case *tast.DefaultStmt:
		b.emit(Label{Name: b.defaultLabel})
		return b.lowerStmt(s.Stmt)

	case *tast.BreakStmt:
		b.emit(Jump{Target: b.breakStack[len(b.breakStack)-1]})
		return nil

	case *tast.ContinueStmt:
		b.emit(Jump{Target: b.continueStack[len(b.continueStack)-1]})
		return nil

	case *tast.GotoStmt:
		b.emit(Jump{Target: b.userLabel(s.Label)})
		return nil

	case *tast.LabeledStmt:
		b.emit(Label{Name: b.userLabel(s.Label)})
		return b.lowerStmt(s.Stmt)

	case *tast.ReturnStmt:
		if s.Value == nil {
			b.emit(Return{})
			return nil
		}
		v, err := b.lowerExpr(s.Value)
		if err != nil {
			return err
		}
		b.emit(Return{Value: v})
		return nil

	case *tast.ExprStmt:
		_, err := b.lowerExpr(s.X)
		return err

	case *tast.NullStmt:
		return nil

	default:
		return fmt.Errorf("tac: unhandled statement %T", s)
	}
}

// userLabel namespaces a source-level goto label by function, since
// TAC labels are function-local but spec.md's C label names are not
// otherwise distinguished from the compiler's own synthetic labels.
func (b *builder) userLabel(name string) string {
	return fmt.Sprintf(".Luser.%s.%s", b.fn.Name, name)
}

func (b *builder) pushLoop(breakLabel, continueLabel string) {
	b.breakStack = append(b.breakStack, breakLabel)
	b.continueStack = append(b.continueStack, continueLabel)
}

func (b *builder) popLoop() {
	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	b.continueStack = b.continueStack[:len(b.continueStack)-1]
}

func (b *builder) lowerFor(s *tast.ForStmt) error {
	switch init := s.Init.(type) {
	case nil:
	case *tast.VarDecl:
		if err := b.lowerLocalVarDecl(init); err != nil {
			return err
		}
	case *tast.ExprStmt:
		if _, err := b.lowerExpr(init.X); err != nil {
			return err
		}
	default:
		return fmt.Errorf("tac: unhandled for-init %T", s.Init)
	}

	start := b.newLabel("for_start")
	cont := b.newLabel("for_cont")
	end := b.newLabel("for_end")
	b.pushLoop(end, cont)
	defer b.popLoop()

	b.emit(Label{Name: start})
	if s.Cond != nil {
		cond, err := b.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		b.emit(JumpIfZero{Cond: cond, Target: end})
	}
	if err := b.lowerStmt(s.Body); err != nil {
		return err
	}
	b.emit(Label{Name: cont})
	if s.Post != nil {
		if _, err := b.lowerExpr(s.Post); err != nil {
			return err
		}
	}
	b.emit(Jump{Target: start})
	b.emit(Label{Name: end})
	return nil
}

// caseKey identifies one *tast.CaseStmt node by identity, used to
// look up the label lowerSwitch pre-assigned it during the dispatch
// pass before the body is walked a second time to emit code.
type caseKey struct{ node *tast.CaseStmt }

func (b *builder) lowerSwitch(s *tast.SwitchStmt) error {
	tag, err := b.lowerExpr(s.Tag)
	if err != nil {
		return err
	}

	prevCaseLabels, prevDefault := b.caseLabels, b.defaultLabel
	b.caseLabels = map[caseKey]string{}
	b.defaultLabel = ""
	var order []*tast.CaseStmt
	b.collectCases(s.Body, &order)
	for _, c := range order {
		b.caseLabels[caseKey{c}] = b.newLabel("case")
	}
	hasDefault := b.hasDefault(s.Body)
	end := b.newLabel("switch_end")
	if hasDefault {
		b.defaultLabel = b.newLabel("default")
	}

	for _, c := range order {
		cmp := b.newTemp(types.Int{Width: 4, Signed: true})
		b.emit(Binary{Op: Eq, Dst: cmp, L: tag, R: Const{Ty: tag.Type(), C: symtab.ScalarConst{Type: tag.Type(), Int: c.Value}}})
		b.emit(JumpIfNotZero{Cond: cmp, Target: b.caseLabels[caseKey{c}]})
	}
	if hasDefault {
		b.emit(Jump{Target: b.defaultLabel})
	} else {
		b.emit(Jump{Target: end})
	}

	// A switch gives break a target but not continue: push only the
	// break stack so an enclosing loop's continue target (if any)
	// shows through unchanged.
	b.breakStack = append(b.breakStack, end)

	err = b.lowerStmt(s.Body)

	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	if err != nil {
		return err
	}
	b.emit(Label{Name: end})

	b.caseLabels, b.defaultLabel = prevCaseLabels, prevDefault
	return nil
}

// collectCases walks a switch's body for *tast.CaseStmt nodes,
// without descending into a nested switch's own body (its cases
// belong to that inner switch).
func (b *builder) collectCases(s tast.Stmt, out *[]*tast.CaseStmt) {
	switch s := s.(type) {
	case *tast.CaseStmt:
		*out = append(*out, s)
		b.collectCases(s.Stmt, out)
	case *tast.DefaultStmt:
		b.collectCases(s.Stmt, out)
	case *tast.CompoundStmt:
		for _, item := range s.Items {
			if st, ok := item.(tast.Stmt); ok {
				b.collectCases(st, out)
			}
		}
	case *tast.IfStmt:
		b.collectCases(s.Then, out)
		if s.Else != nil {
			b.collectCases(s.Else, out)
		}
	case *tast.ForStmt:
		b.collectCases(s.Body, out)
	case *tast.WhileStmt:
		b.collectCases(s.Body, out)
	case *tast.DoWhileStmt:
		b.collectCases(s.Body, out)
	case *tast.LabeledStmt:
		b.collectCases(s.Stmt, out)
	case *tast.SwitchStmt:
		// A nested switch's cases bind to it, not to this one.
	}
}

func (b *builder) hasDefault(s tast.Stmt) bool {
	switch s := s.(type) {
	case *tast.DefaultStmt:
		return true
	case *tast.CaseStmt:
		return b.hasDefault(s.Stmt)
	case *tast.CompoundStmt:
		for _, item := range s.Items {
			if st, ok := item.(tast.Stmt); ok && b.hasDefault(st) {
				return true
			}
		}
		return false
	case *tast.IfStmt:
		if b.hasDefault(s.Then) {
			return true
		}
		return s.Else != nil && b.hasDefault(s.Else)
	case *tast.ForStmt:
		return b.hasDefault(s.Body)
	case *tast.WhileStmt:
		return b.hasDefault(s.Body)
	case *tast.DoWhileStmt:
		return b.hasDefault(s.Body)
	case *tast.LabeledStmt:
		return b.hasDefault(s.Stmt)
	default:
		return false
	}
}
