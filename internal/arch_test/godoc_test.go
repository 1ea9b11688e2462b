package arch_test

import (
	"go/ast"
	"go/token"
	"strings"
	"testing"
)

// TestExportedDeclsDocumented requires a doc comment starting with the
// symbol name on every exported type and function. Members of a documented
// const or var group may rely on the group comment.
func TestExportedDeclsDocumented(t *testing.T) {
	t.Parallel()

	for _, pkg := range packages(t) {
		for _, pf := range parse(t, pkg) {
			for _, decl := range pf.file.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if !d.Name.IsExported() || !exportedReceiver(d) {
						continue
					}
					checkDoc(t, pf.path, d.Name.Name, d.Doc)
				case *ast.GenDecl:
					checkGenDoc(t, pf.path, d)
				}
			}
		}
	}
}

func checkGenDoc(t *testing.T, path string, d *ast.GenDecl) {
	t.Helper()
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if !s.Name.IsExported() {
				continue
			}
			doc := s.Doc
			if doc == nil && !d.Lparen.IsValid() {
				doc = d.Doc
			}
			checkDoc(t, path, s.Name.Name, doc)
		case *ast.ValueSpec:
			if d.Tok != token.CONST && d.Tok != token.VAR {
				continue
			}
			for _, n := range s.Names {
				if !n.IsExported() {
					continue
				}
				switch {
				case s.Doc != nil, s.Comment != nil:
				case d.Lparen.IsValid() && d.Doc != nil:
				case d.Doc != nil && strings.HasPrefix(d.Doc.Text(), n.Name):
				default:
					t.Errorf("%s: %s has no doc comment", rel(t, path), n.Name)
				}
			}
		}
	}
}

func checkDoc(t *testing.T, path, name string, doc *ast.CommentGroup) {
	t.Helper()
	if doc == nil {
		t.Errorf("%s: %s has no doc comment", rel(t, path), name)
		return
	}
	text := doc.Text()
	if !strings.HasPrefix(text, name+" ") && !strings.HasPrefix(text, "A "+name) && !strings.HasPrefix(text, "An "+name) {
		t.Errorf("%s: doc comment for %s should start with its name, got %q", rel(t, path), name, firstLine(text))
	}
}

func exportedReceiver(d *ast.FuncDecl) bool {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return true
	}
	typ := d.Recv.List[0].Type
	if star, ok := typ.(*ast.StarExpr); ok {
		typ = star.X
	}
	if idx, ok := typ.(*ast.IndexExpr); ok {
		typ = idx.X
	}
	id, ok := typ.(*ast.Ident)
	return ok && id.IsExported()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
