package boundary

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MaxFileLines is the length above which a file is flagged for splitting.
const MaxFileLines = 300

type Finding struct {
	Verdict Verdict
	File    string
	Import  string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Verdict, f.Message)
}

type Report struct {
	Files    int
	Findings []Finding
}

// Blocked reports whether any finding forbids the layout.
func (r Report) Blocked() bool {
	for _, f := range r.Findings {
		if f.Verdict == Block {
			return true
		}
	}
	return false
}

func (r Report) String() string {
	if len(r.Findings) == 0 {
		return "PASS: no architectural violations found"
	}
	lines := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// ModulePath reads the module directive from root/go.mod.
func ModulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("boundary: read go.mod: %w", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "module"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			mod := strings.TrimSpace(rest)
			if unq, err := strconv.Unquote(mod); err == nil {
				mod = unq
			}
			return mod, nil
		}
	}
	return "", errors.New("boundary: go.mod has no module directive")
}

// CheckFile validates one file, named relative to root, against the layer
// rules. Imports outside the module are ignored.
func CheckFile(root, relPath string, imports []string) (Report, error) {
	module, err := ModulePath(root)
	if err != nil {
		return Report{}, err
	}
	return checkFile(root, module, filepath.ToSlash(relPath), imports), nil
}

func checkFile(root, module, relPath string, imports []string) Report {
	rep := Report{Files: 1}
	if strings.HasSuffix(relPath, "_test.go") {
		return rep
	}

	source := Layer(relPath)
	if _, free := unrestricted[source]; free {
		return rep
	}
	if source == LayerUnknown {
		rep.Findings = append(rep.Findings, Finding{
			Verdict: Warn,
			File:    relPath,
			Message: fmt.Sprintf("%s is not in a recognised layer directory, expected one of: %s", relPath, strings.Join(Layers(), ", ")),
		})
	}

	for _, imp := range imports {
		rel, ok := internalPath(module, imp)
		if !ok {
			continue
		}
		target := Layer(rel)
		verdict, ruled := verdictFor(source, target)
		switch {
		case ruled && verdict == Block:
			rep.Findings = append(rep.Findings, Finding{
				Verdict: Block,
				File:    relPath,
				Import:  imp,
				Message: fmt.Sprintf("%s (%s) imports %q (%s), this dependency direction is not allowed", relPath, source, imp, target),
			})
		case !ruled && target != LayerUnknown:
			rep.Findings = append(rep.Findings, Finding{
				Verdict: Warn,
				File:    relPath,
				Import:  imp,
				Message: fmt.Sprintf("%s (%s) imports %q (%s) with no explicit rule, verify this is intentional", relPath, source, imp, target),
			})
		}
	}

	if n, err := countLines(filepath.Join(root, filepath.FromSlash(relPath))); err == nil && n > MaxFileLines {
		rep.Findings = append(rep.Findings, Finding{
			Verdict: Warn,
			File:    relPath,
			Message: fmt.Sprintf("%s is %d lines (max %d), consider splitting", relPath, n, MaxFileLines),
		})
	}
	return rep
}

func internalPath(module, imp string) (string, bool) {
	if imp == module {
		return "", false
	}
	rel, ok := strings.CutPrefix(imp, module+"/")
	return rel, ok
}

func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}

func skipDir(name string) bool {
	return name == "_examples" || name == "vendor" || name == "testdata" ||
		(len(name) > 1 && (name[0] == '.' || name[0] == '_'))
}

// CheckTree parses the imports of every Go file under root and aggregates the
// findings in path order.
func CheckTree(root string) (Report, error) {
	module, err := ModulePath(root)
	if err != nil {
		return Report{}, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("boundary: walk %s: %w", root, err)
	}
	sort.Strings(files)

	var total Report
	fset := token.NewFileSet()
	for _, path := range files {
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return Report{}, fmt.Errorf("boundary: parse %s: %w", path, err)
		}
		imports := make([]string, 0, len(f.Imports))
		for _, spec := range f.Imports {
			p, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			imports = append(imports, p)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return Report{}, fmt.Errorf("boundary: rel %s: %w", path, err)
		}
		rep := checkFile(root, module, filepath.ToSlash(rel), imports)
		total.Files += rep.Files
		total.Findings = append(total.Findings, rep.Findings...)
	}
	return total, nil
}
