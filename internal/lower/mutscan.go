package lower

import "github.com/teacompiler/teac/internal/ast"

// scanMutated implements §3.5/§9's mutable-binding pre-scan: a single pass
// recording every name that is the target of an assignment. It descends
// into nested lambda bodies and records assignments there too, including
// assignments to the lambda's own parameters and locals, so a lambda-local
// name equal to an outer binding's name also marks that binding mutable.
func scanMutated(body *ast.BlockExpr, names map[string]bool) map[string]bool {
	mutated := map[string]bool{}
	var walkExpr func(e ast.Expr)
	var walkStmt func(s ast.Stmt)

	markTarget := func(target ast.Expr) {
		if id, ok := target.(*ast.Ident); ok {
			mutated[id.Name] = true
		}
	}

	walkExpr = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.AssignExpr:
			markTarget(n.Target)
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.PrefixExpr:
			walkExpr(n.Expr)
		case *ast.UnwrapExpr:
			walkExpr(n.Expr)
		case *ast.InfixExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.RangeExpr:
			walkExpr(n.Low)
			walkExpr(n.High)
		case *ast.CallExpr:
			walkExpr(n.Callee)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.IndexExpr:
			walkExpr(n.Target)
			walkExpr(n.Index)
		case *ast.FieldExpr:
			walkExpr(n.Target)
		case *ast.ArrayLiteral:
			for _, el := range n.Elements {
				walkExpr(el)
			}
		case *ast.MapLiteral:
			for _, entry := range n.Entries {
				walkExpr(entry.Key)
				walkExpr(entry.Value)
			}
		case *ast.StructLiteral:
			for _, f := range n.Fields {
				walkExpr(f.Value)
			}
		case *ast.FunctionLiteral:
			// Nested lambda: every assignment in its body is recorded,
			// whether the target is an outer name or one of its own.
			for _, s := range n.Body.Stmts {
				walkStmt(s)
			}
			if n.Body.Tail != nil {
				walkExpr(n.Body.Tail)
			}
		case *ast.IfExpr:
			for _, clause := range n.Clauses {
				walkExpr(clause.Condition)
				for _, s := range clause.Body.Stmts {
					walkStmt(s)
				}
				if clause.Body.Tail != nil {
					walkExpr(clause.Body.Tail)
				}
			}
			if n.Else != nil {
				for _, s := range n.Else.Stmts {
					walkStmt(s)
				}
				if n.Else.Tail != nil {
					walkExpr(n.Else.Tail)
				}
			}
		case *ast.TryExpr:
			for _, s := range n.Body.Stmts {
				walkStmt(s)
			}
			if n.Body.Tail != nil {
				walkExpr(n.Body.Tail)
			}
			for _, arm := range n.Arms {
				for _, s := range arm.Body.Stmts {
					walkStmt(s)
				}
				if arm.Body.Tail != nil {
					walkExpr(arm.Body.Tail)
				}
			}
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.LetStmt:
			walkExpr(n.Value)
		case *ast.ExprStmt:
			walkExpr(n.Expr)
		case *ast.ReturnStmt:
			if n.Value != nil {
				walkExpr(n.Value)
			}
		case *ast.ThrowStmt:
			walkExpr(n.Value)
		case *ast.WhileStmt:
			walkExpr(n.Condition)
			for _, s2 := range n.Body.Stmts {
				walkStmt(s2)
			}
			if n.Body.Tail != nil {
				walkExpr(n.Body.Tail)
			}
		case *ast.ForStmt:
			walkExpr(n.Iterable)
			for _, s2 := range n.Body.Stmts {
				walkStmt(s2)
			}
			if n.Body.Tail != nil {
				walkExpr(n.Body.Tail)
			}
		}
	}

	for _, s := range body.Stmts {
		walkStmt(s)
	}
	if body.Tail != nil {
		walkExpr(body.Tail)
	}

	result := map[string]bool{}
	for name := range names {
		if mutated[name] {
			result[name] = true
		}
	}
	for name := range mutated {
		result[name] = true
	}
	return result
}
