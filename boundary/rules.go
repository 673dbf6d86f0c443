// Package boundary checks that packages in this module only import in the
// directions the layering allows.
package boundary

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

type Verdict string

const (
	Allow Verdict = "ALLOW"
	Block Verdict = "BLOCK"
	Warn  Verdict = "WARN"
)

const (
	LayerCases    = "cases"
	LayerHTTPAPI  = "httpapi"
	LayerDB       = "db"
	LayerConfig   = "config"
	LayerLogging  = "logging"
	LayerBoundary = "boundary"
	LayerCmd      = "cmd"
	LayerTest     = "test"
	LayerUnknown  = "unknown"
)

var ErrUnknownLayer = errors.New("boundary: unknown layer")

type layerRule struct {
	imports map[string]Verdict
	notes   string
}

// rules maps source layer to the verdict for each target layer. A target
// missing from the map has no rule and is reported as a warning.
var rules = map[string]layerRule{
	LayerCases: {
		imports: map[string]Verdict{
			LayerCases:    Allow,
			LayerLogging:  Allow,
			LayerHTTPAPI:  Block,
			LayerDB:       Block,
			LayerConfig:   Block,
			LayerBoundary: Block,
		},
		notes: "Domain core. Repositories receive their pools and clients from the caller; " +
			"never reach for transport or process configuration.",
	},
	LayerHTTPAPI: {
		imports: map[string]Verdict{
			LayerHTTPAPI: Allow,
			LayerCases:   Allow,
			LayerLogging: Allow,
			LayerDB:      Block,
			LayerConfig:  Block,
		},
		notes: "Transport adapter. Talks to the case service through an interface and maps its error kinds to status codes.",
	},
	LayerDB: {
		imports: map[string]Verdict{
			LayerDB:      Allow,
			LayerCases:   Block,
			LayerHTTPAPI: Block,
			LayerConfig:  Block,
		},
		notes: "Connection and migration plumbing only. Knows nothing about cases beyond the schema files.",
	},
	LayerConfig: {
		imports: map[string]Verdict{
			LayerConfig:  Allow,
			LayerCases:   Block,
			LayerHTTPAPI: Block,
			LayerDB:      Block,
			LayerLogging: Block,
		},
		notes: "Leaf layer. Reads the environment and config files.",
	},
	LayerLogging: {
		imports: map[string]Verdict{
			LayerLogging: Allow,
			LayerCases:   Block,
			LayerHTTPAPI: Block,
			LayerDB:      Block,
			LayerConfig:  Block,
		},
		notes: "Leaf layer. Wraps zap and carries the request id through context.",
	},
	LayerBoundary: {
		imports: map[string]Verdict{
			LayerBoundary: Allow,
			LayerCases:    Block,
			LayerHTTPAPI:  Block,
			LayerDB:       Block,
			LayerConfig:   Block,
			LayerLogging:  Block,
		},
		notes: "Tooling. Reads source files and contracts from disk, never imports the code it checks.",
	},
}

// unrestricted layers may import anything.
var unrestricted = map[string]string{
	LayerCmd:  "Process wiring. Builds every dependency once and injects it downward.",
	LayerTest: "Test helpers, actors and oracles have no import restrictions.",
}

// Layers lists every known layer in sorted order.
func Layers() []string {
	out := make([]string, 0, len(rules)+len(unrestricted))
	for l := range rules {
		out = append(out, l)
	}
	for l := range unrestricted {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Layer resolves a slash-separated path relative to the module root, or a
// module import path with the module prefix stripped, to its layer.
func Layer(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "./")
	first, _, _ := strings.Cut(path, "/")
	if first == "" {
		return LayerUnknown
	}
	if _, ok := rules[first]; ok {
		return first
	}
	if _, ok := unrestricted[first]; ok {
		return first
	}
	return LayerUnknown
}

// verdictFor reports ok=false when no rule covers the edge, including every
// edge out of an unknown layer.
func verdictFor(source, target string) (Verdict, bool) {
	r, ok := rules[source]
	if !ok {
		return "", false
	}
	v, ok := r.imports[target]
	return v, ok
}

// Describe renders the import rules for one layer.
func Describe(layer string) (string, error) {
	if notes, ok := unrestricted[layer]; ok {
		return fmt.Sprintf("Layer boundaries for '%s/':\n\n  Can import from: anything\n  Cannot import from: (none)\n\n  Notes: %s", layer, notes), nil
	}
	r, ok := rules[layer]
	if !ok {
		return "", fmt.Errorf("%w %q, available: %s", ErrUnknownLayer, layer, strings.Join(Layers(), ", "))
	}

	var can, cannot []string
	for target, v := range r.imports {
		if v == Block {
			cannot = append(cannot, target)
		} else {
			can = append(can, target)
		}
	}
	slices.Sort(can)
	slices.Sort(cannot)

	lines := []string{
		fmt.Sprintf("Layer boundaries for '%s/':", layer),
		"",
		"  Can import from: " + strings.Join(can, ", "),
		"  Cannot import from: " + strings.Join(cannot, ", "),
		"",
		"  Notes: " + r.notes,
	}
	return strings.Join(lines, "\n"), nil
}
