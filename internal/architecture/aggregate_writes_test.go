package architecture_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
)

// aggregateOwnedWrites lists repo methods that may only run inside the review
// aggregate, where the course row lock and the statistics recompute happen.
var aggregateOwnedWrites = map[string]map[string]bool{
	"ReviewRepo": {"Create": true, "UpdateFields": true, "DeleteByID": true},
	"CourseRepo": {"UpdateFields": true, "LockByID": true},
}

type repoWrite struct {
	file   string
	line   int
	method string
	call   string
}

func TestReviewAggregateOwnsItsWriteTx(t *testing.T) {
	got := aggregates.NewReviewAggregate(aggregates.ReviewAggregateDeps{}).Contract()
	if got != domainagg.ReviewAggregateContract {
		t.Fatalf("contract: want=%+v got=%+v", domainagg.ReviewAggregateContract, got)
	}
	if !got.RequiresAggregateOwnedTx() {
		t.Fatalf("%s must own its write transaction", got.Name)
	}
	if got.ReadPolicy != domainagg.ReadPolicyInvariantScoped {
		t.Fatalf("%s read policy: got=%s", got.Name, got.ReadPolicy)
	}
}

func TestServicesDoNotBypassReviewAggregate(t *testing.T) {
	if !domainagg.ReviewAggregateContract.RequiresAggregateOwnedTx() {
		t.Skip("review aggregate does not own its write transaction")
	}
	root, _ := moduleRoot(t)
	servicesDir := filepath.Join(root, "internal", "services")
	fset := token.NewFileSet()

	pkgs, err := parser.ParseDir(fset, servicesDir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, 0)
	if err != nil {
		t.Fatalf("parse services: %v", err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		t.Fatalf("services package not found in %s", servicesDir)
	}

	repoFields := map[string]map[string]string{}
	for _, f := range pkg.Files {
		collectRepoFields(f, repoFields)
	}
	if len(repoFields) == 0 {
		t.Fatalf("no repo-holding service structs found; the scan is stale")
	}

	var writes []repoWrite
	for path, f := range pkg.Files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		writes = append(writes, findOwnedWrites(fset, f, filepath.ToSlash(rel), repoFields)...)
	}

	if len(writes) > 0 {
		sort.Slice(writes, func(i, j int) bool {
			if writes[i].file == writes[j].file {
				return writes[i].line < writes[j].line
			}
			return writes[i].file < writes[j].file
		})
		var b strings.Builder
		b.WriteString("aggregate-owned repo writes called from services (route them through the review aggregate):\n")
		for _, w := range writes {
			fmt.Fprintf(&b, "- %s:%d %s calls %s\n", w.file, w.line, w.method, w.call)
		}
		t.Fatal(b.String())
	}
}

// collectRepoFields maps struct name -> field name -> repo type for fields typed repos.XRepo.
func collectRepoFields(file *ast.File, out map[string]map[string]string) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			for _, field := range st.Fields.List {
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok || len(field.Names) == 0 {
					continue
				}
				if pkgIdent, ok := sel.X.(*ast.Ident); !ok || pkgIdent.Name != "repos" {
					continue
				}
				if out[ts.Name.Name] == nil {
					out[ts.Name.Name] = map[string]string{}
				}
				out[ts.Name.Name][field.Names[0].Name] = sel.Sel.Name
			}
		}
	}
}

func findOwnedWrites(fset *token.FileSet, file *ast.File, rel string, repoFields map[string]map[string]string) []repoWrite {
	var out []repoWrite
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := recvInfo(fd.Recv.List[0])
		fields, ok := repoFields[recvType]
		if !ok {
			continue
		}
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fnSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			rcvSel, ok := fnSel.X.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if base, ok := rcvSel.X.(*ast.Ident); !ok || base.Name != recvName {
				return true
			}
			repoType := fields[rcvSel.Sel.Name]
			if aggregateOwnedWrites[repoType][fnSel.Sel.Name] {
				out = append(out, repoWrite{
					file:   rel,
					line:   fset.Position(call.Pos()).Line,
					method: recvType + "." + fd.Name.Name,
					call:   repoType + "." + fnSel.Sel.Name,
				})
			}
			return true
		})
	}
	return out
}

func recvInfo(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return field.Names[0].Name, id.Name
		}
	case *ast.Ident:
		return field.Names[0].Name, t.Name
	}
	return "", ""
}
