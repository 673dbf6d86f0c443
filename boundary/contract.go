package boundary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownContract = errors.New("boundary: unknown contract")

// ContractsDir is where API contracts live, relative to the module root.
const ContractsDir = "contracts"

type Contract struct {
	Domain  string
	Title   string
	Version string
	// Paths lists "METHOD /path" entries in sorted order.
	Paths []string
	Raw   string
}

type openAPIDoc struct {
	OpenAPI string `yaml:"openapi"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

// AvailableContracts lists the domains with a contract file under root.
func AvailableContracts(root string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(root, ContractsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("boundary: list contracts: %w", err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(m), ".yaml"))
	}
	sort.Strings(out)
	return out, nil
}

// LoadContract reads and validates contracts/<domain>.yaml.
func LoadContract(root, domain string) (Contract, error) {
	if domain == "" || strings.ContainsAny(domain, `/\.`) {
		return Contract{}, fmt.Errorf("boundary: invalid contract name %q", domain)
	}

	path := filepath.Join(root, ContractsDir, domain+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		available, lerr := AvailableContracts(root)
		if lerr != nil {
			return Contract{}, lerr
		}
		list := "(none)"
		if len(available) > 0 {
			list = strings.Join(available, ", ")
		}
		return Contract{}, fmt.Errorf("%w %q, available: %s", ErrUnknownContract, domain, list)
	}
	if err != nil {
		return Contract{}, fmt.Errorf("boundary: read contract %s: %w", domain, err)
	}

	var doc openAPIDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Contract{}, fmt.Errorf("boundary: parse contract %s: %w", domain, err)
	}
	if doc.OpenAPI == "" {
		return Contract{}, fmt.Errorf("boundary: contract %s has no openapi version", domain)
	}

	c := Contract{
		Domain:  domain,
		Title:   doc.Info.Title,
		Version: doc.Info.Version,
		Raw:     string(data),
	}
	for path, ops := range doc.Paths {
		for method := range ops {
			c.Paths = append(c.Paths, strings.ToUpper(method)+" "+path)
		}
	}
	sort.Strings(c.Paths)
	return c, nil
}
