package metadata

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"reflect"
	"regexp"
	"strconv"
)

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// fileDecl 单个源文件的解析结果，可序列化后缓存
type fileDecl struct {
	Path    string       `json:"path"`
	Package string       `json:"package"`
	Structs []structDecl `json:"structs"`
}

// structDecl 结构体声明
type structDecl struct {
	Name   string      `json:"name"`
	Fields []fieldDecl `json:"fields"`
}

// fieldDecl 结构体字段声明
type fieldDecl struct {
	Name     string `json:"name,omitempty"` // 嵌入字段为空
	Type     string `json:"type"`           // 原始类型表达式
	Ref      string `json:"ref,omitempty"`  // 去掉指针和切片后的类型，包外类型为 importpath.Name
	Slice    bool   `json:"slice,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
	Tag      string `json:"tag,omitempty"` // gorm标签
}

// parseSource 静态解析Go源文件，只收集结构体声明，不执行任何代码
func parseSource(filename string, src []byte) (*fileDecl, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}

	imports := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := importName(p)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = p
	}

	decl := &fileDecl{Path: filename, Package: f.Name.Name}
	for _, d := range f.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			decl.Structs = append(decl.Structs, structDecl{
				Name:   ts.Name.Name,
				Fields: parseFields(st, imports),
			})
		}
	}
	return decl, nil
}

func parseFields(st *ast.StructType, imports map[string]string) []fieldDecl {
	var list []fieldDecl
	for _, field := range st.Fields.List {
		tag := ""
		if field.Tag != nil {
			if raw, err := strconv.Unquote(field.Tag.Value); err == nil {
				tag = reflect.StructTag(raw).Get("gorm")
			}
		}
		ref, slice := typeRef(field.Type, imports)
		typ := types.ExprString(field.Type)

		if len(field.Names) == 0 {
			list = append(list, fieldDecl{Type: typ, Ref: ref, Embedded: true, Tag: tag})
			continue
		}
		for _, n := range field.Names {
			list = append(list, fieldDecl{Name: n.Name, Type: typ, Ref: ref, Slice: slice, Tag: tag})
		}
	}
	return list
}

// typeRef 解析字段引用的命名类型
func typeRef(expr ast.Expr, imports map[string]string) (string, bool) {
	slice := false
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
			continue
		case *ast.ArrayType:
			slice = true
			expr = t.Elt
			continue
		case *ast.Ident:
			return t.Name, slice
		case *ast.SelectorExpr:
			x, ok := t.X.(*ast.Ident)
			if !ok {
				return "", slice
			}
			if p, ok := imports[x.Name]; ok {
				return p + "." + t.Sel.Name, slice
			}
			return x.Name + "." + t.Sel.Name, slice
		}
		return "", slice
	}
}

// importName 推断导入路径的默认包名
func importName(p string) string {
	name := path.Base(p)
	if versionSuffix.MatchString(name) {
		name = path.Base(path.Dir(p))
	}
	if i := len(name) - len(path.Ext(name)); path.Ext(name) != "" && versionSuffix.MatchString(path.Ext(name)[1:]) {
		name = name[:i]
	}
	return name
}
