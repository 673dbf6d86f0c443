package boundary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeModule lays out a throwaway module for the checker.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module example.test/caseflow\n\ngo 1.24\n"
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestLayer(t *testing.T) {
	tests := map[string]string{
		"cases/service.go":      LayerCases,
		"httpapi":               LayerHTTPAPI,
		"./db/conn.go":          LayerDB,
		"cmd/api/main.go":       LayerCmd,
		"test/actors/actors.go": LayerTest,
		"main.go":               LayerUnknown,
		"scripts/tool.go":       LayerUnknown,
		"":                      LayerUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, Layer(path), path)
	}
}

func TestCheckFile(t *testing.T) {
	root := writeModule(t, map[string]string{
		"cases/service.go": "package cases\n",
		"misc/helper.go":   "package misc\n",
		"db/big.go":        "package db\n" + strings.Repeat("// filler\n", MaxFileLines+5),
	})
	const mod = "example.test/caseflow/"

	tests := []struct {
		name    string
		file    string
		imports []string
		want    []Verdict
	}{
		{"allowed edges", "cases/service.go", []string{mod + "logging", "context", "github.com/jackc/pgx/v5"}, nil},
		{"blocked edge", "cases/service.go", []string{mod + "httpapi"}, []Verdict{Block}},
		{"adapter to domain", "httpapi/handlers.go", []string{mod + "cases", mod + "logging"}, nil},
		{"adapter to config", "httpapi/server.go", []string{mod + "config"}, []Verdict{Block}},
		{"no rule", "httpapi/server.go", []string{mod + "boundary"}, []Verdict{Warn}},
		{"unknown source layer", "misc/helper.go", []string{mod + "cases"}, []Verdict{Warn, Warn}},
		{"unknown source to unknown target", "misc/helper.go", []string{mod + "misc/sub"}, []Verdict{Warn}},
		{"long file", "db/big.go", nil, []Verdict{Warn}},
		{"tests unrestricted", "cases/service_test.go", []string{mod + "httpapi"}, nil},
		{"cmd unrestricted", "cmd/api/main.go", []string{mod + "db", mod + "config"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := CheckFile(root, tc.file, tc.imports)
			require.NoError(t, err)
			var got []Verdict
			for _, f := range rep.Findings {
				got = append(got, f.Verdict)
			}
			assert.Equal(t, tc.want, got, rep.String())
		})
	}
}

func TestReportString(t *testing.T) {
	assert.Equal(t, "PASS: no architectural violations found", Report{}.String())

	rep := Report{Findings: []Finding{{Verdict: Block, Message: "a"}, {Verdict: Warn, Message: "b"}}}
	assert.Equal(t, "BLOCK: a\nWARN: b", rep.String())
	assert.True(t, rep.Blocked())
	assert.False(t, Report{Findings: []Finding{{Verdict: Warn}}}.Blocked())
}

func TestCheckTree(t *testing.T) {
	root := writeModule(t, map[string]string{
		"cases/service.go":      "package cases\n\nimport _ \"example.test/caseflow/db\"\n",
		"cases/service_test.go": "package cases\n\nimport _ \"example.test/caseflow/httpapi\"\n",
		"httpapi/server.go":     "package httpapi\n\nimport (\n\t\"net/http\"\n\n\t_ \"example.test/caseflow/cases\"\n)\n\nvar _ = http.StatusOK\n",
		"_examples/x/x.go":      "package x\n\nimport _ \"example.test/caseflow/httpapi\"\n",
		".hidden/y.go":          "package y\n",
	})

	rep, err := CheckTree(root)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Files)
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, Block, rep.Findings[0].Verdict)
	assert.Equal(t, "cases/service.go", rep.Findings[0].File)
	assert.Equal(t, "example.test/caseflow/db", rep.Findings[0].Import)
}

func TestCheckTree_ParseError(t *testing.T) {
	root := writeModule(t, map[string]string{"cases/broken.go": "not go"})
	_, err := CheckTree(root)
	assert.Error(t, err)
}

func TestModuleRespectsItsOwnLayers(t *testing.T) {
	rep, err := CheckTree("..")
	require.NoError(t, err)
	assert.Greater(t, rep.Files, 0)
	assert.False(t, rep.Blocked(), rep.String())
}

func TestModulePath(t *testing.T) {
	mod, err := ModulePath("..")
	require.NoError(t, err)
	assert.Equal(t, "caseflow", mod)

	_, err = ModulePath(t.TempDir())
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	out, err := Describe(LayerCases)
	require.NoError(t, err)
	assert.Contains(t, out, "Layer boundaries for 'cases/':")
	assert.Contains(t, out, "Can import from: cases, logging")
	assert.Contains(t, out, "Cannot import from: boundary, config, db, httpapi")

	out, err = Describe(LayerTest)
	require.NoError(t, err)
	assert.Contains(t, out, "Can import from: anything")

	_, err = Describe("services")
	require.True(t, errors.Is(err, ErrUnknownLayer))
	assert.Contains(t, err.Error(), "httpapi")
}

func TestLoadContract(t *testing.T) {
	c, err := LoadContract("..", "case")
	require.NoError(t, err)
	assert.Equal(t, "Case API", c.Title)
	assert.Equal(t, []string{
		"GET /api/v1/cases/{case_id}",
		"POST /api/v1/cases/{case_id}/assign",
	}, c.Paths)
	assert.Contains(t, c.Raw, "openapi:")

	_, err = LoadContract("..", "billing")
	require.ErrorIs(t, err, ErrUnknownContract)
	assert.Contains(t, err.Error(), "available: case")

	_, err = LoadContract("..", "../go")
	assert.Error(t, err)
}

func TestLoadContract_Invalid(t *testing.T) {
	root := writeModule(t, map[string]string{
		"contracts/bad.yaml":   "openapi: [unclosed\n",
		"contracts/empty.yaml": "info:\n  title: x\n",
	})
	_, err := LoadContract(root, "bad")
	assert.Error(t, err)
	_, err = LoadContract(root, "empty")
	assert.Error(t, err)

	names, err := AvailableContracts(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "empty"}, names)
}

func TestCheckFile_UnknownLayerImportWarns(t *testing.T) {
	root := writeModule(t, map[string]string{"misc/helper.go": "package misc\n"})

	rep, err := CheckFile(root, "misc/helper.go", []string{"example.test/caseflow/httpapi"})
	require.NoError(t, err)
	require.Len(t, rep.Findings, 2)
	assert.Empty(t, rep.Findings[0].Import)
	assert.Equal(t, "example.test/caseflow/httpapi", rep.Findings[1].Import)
	assert.Equal(t, Warn, rep.Findings[1].Verdict)
	assert.False(t, rep.Blocked())
}
