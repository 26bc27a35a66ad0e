package ssa

import (
	"fmt"
	"io"
	"strings"

	"minic/internal/types"
)

const indent = "  "

// idManager hands out per-function numeric ids for the duration of one
// dump.
type idManager struct {
	ids  map[*Value]int
	next int
}

func newIDManager() *idManager {
	return &idManager{ids: make(map[*Value]int)}
}

// resetID restarts numbering; called at each function definition.
func (im *idManager) resetID() { im.next = 0 }

func (im *idManager) id(v *Value) int {
	if id, ok := im.ids[v]; ok {
		return id
	}
	id := im.next
	im.next++
	im.ids[v] = id
	return id
}

type dumper struct {
	w   io.Writer
	im  *idManager
	in  *types.Interner
	err error
}

func (d *dumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func dumpModule(w io.Writer, m *Module) error {
	d := &dumper{w: w, im: newIDManager(), in: m.Types}
	for _, g := range m.vars {
		d.dumpGlobalVar(g)
		d.printf("\n")
	}
	for _, f := range m.funcs {
		d.dumpFunction(f)
		d.printf("\n")
	}
	return d.err
}

func (d *dumper) typeStr(id types.TypeID) string {
	return d.in.String(id)
}

// ref renders a value in operand position.
func (d *dumper) ref(v *Value) string {
	if v == nil {
		return "void"
	}
	switch v.Kind {
	case KindFunction, KindGlobalVar:
		return "@" + v.Name
	case KindBlock:
		if v.Name != "" {
			return "%" + v.Name
		}
		return fmt.Sprintf("%%%d", d.im.id(v))
	case KindArgRef:
		return fmt.Sprintf("arg %d", v.Index)
	case KindUndef:
		return "undef"
	case KindConstInt:
		if d.in.IsUnsigned(v.Type()) || d.in.IsPointer(v.Type()) {
			return fmt.Sprintf("constant %s %d", d.typeStr(v.Type()), v.IntVal)
		}
		return fmt.Sprintf("constant %s %d", d.typeStr(v.Type()), int32(v.IntVal))
	case KindConstStr:
		return fmt.Sprintf("constant %s \"%s\"", d.typeStr(v.Type()), escapeStr(v.StrVal))
	case KindConstStruct, KindConstArray:
		parts := make([]string, v.NumOperands())
		for i := range parts {
			parts[i] = d.ref(v.Operand(i))
		}
		return fmt.Sprintf("constant %s {%s}", d.typeStr(v.Type()), strings.Join(parts, ", "))
	case KindConstZero:
		return fmt.Sprintf("constant %s zero", d.typeStr(v.Type()))
	case KindCast:
		if v.IsConst() {
			return fmt.Sprintf("cast %s %s", d.typeStr(v.Type()), d.ref(v.Operand(0)))
		}
	case KindPhiOperand:
		return fmt.Sprintf("[%s, %s]", d.ref(v.Operand(0)), d.ref(v.Operand(1)))
	}
	return fmt.Sprintf("%%%d", d.im.id(v))
}

// refTyped renders "type value" in operand position.
func (d *dumper) refTyped(v *Value) string {
	return d.typeStr(v.Type()) + " " + d.ref(v)
}

func (d *dumper) dumpGlobalVar(g *Value) {
	kind := "const"
	if g.Mut {
		kind = "var"
	}
	d.printf("@%s = %s global %s %s", g.Name, g.Link, kind, d.typeStr(g.Type()))
	if init := g.Operand(0); init != nil {
		d.printf(", %s", d.ref(init))
	}
	d.printf("\n")
}

func (d *dumper) dumpFunction(f *Value) {
	decl := "define"
	if f.IsDecl() {
		decl = "declare"
	}
	d.printf("%s %s %s @%s", decl, f.Link, d.typeStr(f.Type()), f.Name)
	if f.IsDecl() {
		d.printf("\n")
		return
	}
	d.im.resetID()
	// number blocks first so forward branch targets stay stable
	for _, bu := range f.Blocks() {
		if b := bu.Value(); b.Name == "" {
			d.im.id(b)
		}
	}
	d.printf(" {\n")
	for _, bu := range f.Blocks() {
		d.dumpBlock(bu.Value())
	}
	d.printf("}\n")
}

func (d *dumper) dumpBlock(b *Value) {
	d.printf("%s:", d.ref(b))
	if len(b.Preds()) > 0 {
		parts := make([]string, len(b.Preds()))
		for i, pu := range b.Preds() {
			parts[i] = d.ref(pu.Value())
		}
		d.printf(" ; preds: %s", strings.Join(parts, ", "))
	}
	d.printf("\n")
	for _, inst := range b.Insts {
		d.dumpInst(inst)
	}
}

func (d *dumper) dumpInst(v *Value) {
	switch v.Kind {
	case KindLoad:
		d.printf("%s%s = load %s, %s\n", indent, d.ref(v),
			d.typeStr(v.Type()), d.refTyped(v.Operand(0)))
	case KindStore:
		d.printf("%sstore %s, %s\n", indent,
			d.refTyped(v.Operand(0)), d.refTyped(v.Operand(1)))
	case KindAlloca:
		d.printf("%s%s = alloca %s\n", indent, d.ref(v), d.typeStr(v.Type()))
	case KindAccess:
		acc := "ptr"
		if v.Access == AccessElement {
			acc = "elem"
		}
		d.printf("%s%s = access %s %s, %s\n", indent, d.ref(v), acc,
			d.refTyped(v.Operand(0)), d.ref(v.Operand(1)))
	case KindBinary:
		d.printf("%s%s = %s %s %s, %s\n", indent, d.ref(v), v.Op,
			d.typeStr(v.Type()), d.ref(v.Operand(0)), d.ref(v.Operand(1)))
	case KindUnary:
		d.printf("%s%s = %s %s %s\n", indent, d.ref(v), v.UOp,
			d.typeStr(v.Type()), d.ref(v.Operand(0)))
	case KindCast:
		d.printf("%s%s = cast %s %s\n", indent, d.ref(v),
			d.typeStr(v.Type()), d.ref(v.Operand(0)))
	case KindCall:
		d.printf("%s%s = call %s", indent, d.ref(v), d.refTyped(v.Operand(0)))
		for i := 1; i < v.NumOperands(); i++ {
			d.printf(", %s", d.ref(v.Operand(i)))
		}
		d.printf("\n")
	case KindBranch:
		d.printf("%sbr %s, %s, %s\n", indent,
			d.ref(v.Operand(0)), d.ref(v.Operand(1)), d.ref(v.Operand(2)))
	case KindJump:
		d.printf("%sjump %s\n", indent, d.ref(v.Operand(0)))
	case KindReturn:
		if v.Operand(0) == nil {
			d.printf("%sret void\n", indent)
		} else {
			d.printf("%sret %s\n", indent, d.refTyped(v.Operand(0)))
		}
	case KindPhi:
		parts := make([]string, v.NumOperands())
		for i := range parts {
			parts[i] = d.ref(v.Operand(i))
		}
		d.printf("%s%s = phi %s %s\n", indent, d.ref(v),
			d.typeStr(v.Type()), strings.Join(parts, ", "))
	case KindSelect:
		d.printf("%s%s = select %s, %s, %s\n", indent, d.ref(v),
			d.refTyped(v.Operand(0)), d.refTyped(v.Operand(1)),
			d.refTyped(v.Operand(2)))
	case KindPhiOperand:
		// rendered inline by its phi
	default:
		d.printf("%s<unknown instruction>\n", indent)
	}
}

func escapeStr(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				fmt.Fprintf(&sb, `\x%02x`, c)
			}
		}
	}
	return sb.String()
}
