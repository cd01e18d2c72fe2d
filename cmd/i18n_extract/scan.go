// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"go/ast"
	"go/constant"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// msgidArg gives, per i18n function, the argument positions of the
// context, msgid and plural msgid. -1 marks an absent argument.
var msgidArg = map[string]struct{ ctx, id, plural int }{
	"Tr":           {-1, 1, -1},
	"TrFor":        {-1, 1, -1},
	"NewUserError": {-1, 1, -1},
	"TrC":          {1, 2, -1},
	"TrN":          {-1, 1, 2},
	"TrNC":         {1, 2, 3},
}

// findI18nPkgPaths returns the paths of packages named i18n that define a
// MsgKey string type, so calls are matched however the package is imported.
func findI18nPkgPaths(pkgs []*packages.Package) map[string]bool {
	out := map[string]bool{}

	for _, p := range pkgs {
		if p.Name != "i18n" || p.Types == nil {
			continue
		}

		tn, ok := p.Types.Scope().Lookup("MsgKey").(*types.TypeName)
		if !ok {
			continue
		}

		if basic, ok := tn.Type().Underlying().(*types.Basic); ok && basic.Kind() == types.String {
			out[p.PkgPath] = true
		}
	}

	return out
}

// scanner walks the syntax of one package.
type scanner struct {
	catalog  *catalog
	pkg      *packages.Package
	i18nPkgs map[string]bool
}

// scan adds every message found in p to the catalog.
func (c *catalog) scan(p *packages.Package, i18nPkgs map[string]bool) {
	if p.TypesInfo == nil {
		return
	}

	s := scanner{catalog: c, pkg: p, i18nPkgs: i18nPkgs}

	for _, f := range p.Syntax {
		ast.Inspect(f, func(n ast.Node) bool {
			switch x := n.(type) {
			case *ast.CallExpr:
				s.call(x)
			case *ast.ValueSpec:
				s.valueSpec(x)
			}

			return true
		})
	}
}

// isMsgKey reports whether t is the MsgKey type of an i18n package.
func (s scanner) isMsgKey(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()

	return obj != nil && obj.Pkg() != nil && s.i18nPkgs[obj.Pkg().Path()] && obj.Name() == "MsgKey"
}

// constString evaluates expr to a constant string if possible.
func (s scanner) constString(expr ast.Expr) (string, bool) {
	tv, ok := s.pkg.TypesInfo.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

func (s scanner) add(expr ast.Expr, k key) {
	s.catalog.add(s.pkg.Fset.Position(expr.Pos()), k)
}

// addConst records expr when it is a constant string.
func (s scanner) addConst(expr ast.Expr) {
	if msg, ok := s.constString(expr); ok {
		s.add(expr, key{id: msg})
	}
}

// valueSpec handles declarations such as `const MsgX i18n.MsgKey = "..."`.
func (s scanner) valueSpec(spec *ast.ValueSpec) {
	for i, name := range spec.Names {
		if i >= len(spec.Values) {
			break
		}

		if obj := s.pkg.TypesInfo.Defs[name]; obj != nil && s.isMsgKey(obj.Type()) {
			s.addConst(spec.Values[i])
		}
	}
}

// call handles MsgKey conversions, the Tr family and any call passing a
// constant to a MsgKey parameter.
func (s scanner) call(x *ast.CallExpr) {
	info := s.pkg.TypesInfo

	if tv, ok := info.Types[x.Fun]; ok && tv.IsType() {
		if len(x.Args) == 1 && s.isMsgKey(tv.Type) {
			s.addConst(x.Args[0])
		}

		return
	}

	if sel, ok := x.Fun.(*ast.SelectorExpr); ok {
		if fn, ok := info.Uses[sel.Sel].(*types.Func); ok && fn.Pkg() != nil && s.i18nPkgs[fn.Pkg().Path()] {
			if pos, ok := msgidArg[fn.Name()]; ok {
				s.trCall(x, pos.ctx, pos.id, pos.plural)

				return
			}
		}
	}

	sig, ok := info.TypeOf(x.Fun).(*types.Signature)
	if !ok || sig.Params().Len() == 0 {
		return
	}

	params := sig.Params()
	last := params.Len() - 1

	for i, arg := range x.Args {
		var pt types.Type

		switch {
		case sig.Variadic() && i >= last:
			if x.Ellipsis.IsValid() {
				continue
			}

			pt = params.At(last).Type().(*types.Slice).Elem()
		case i <= last:
			pt = params.At(i).Type()
		default:
			return
		}

		if s.isMsgKey(pt) {
			s.addConst(arg)
		}
	}
}

func (s scanner) trCall(x *ast.CallExpr, ctxArg, idArg, pluralArg int) {
	if idArg >= len(x.Args) || pluralArg >= len(x.Args) {
		return
	}

	var k key

	var ok bool

	if k.id, ok = s.constString(x.Args[idArg]); !ok {
		return
	}

	if ctxArg >= 0 {
		if k.ctx, ok = s.constString(x.Args[ctxArg]); !ok {
			return
		}
	}

	if pluralArg >= 0 {
		if k.plural, ok = s.constString(x.Args[pluralArg]); !ok {
			return
		}
	}

	s.add(x.Args[idArg], k)
}
