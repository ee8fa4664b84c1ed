package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/colorcodebot/colorcodebot/internal/biz/domain"
)

// Table files in the config directory
const (
	SyntaxesFile   = "syntaxes.yml"
	ClassifierFile = "classifier.yml"
	MarkupFile     = "markup.yml"
	PrefixesFile   = "prefixes.yml"
)

// Tables is the set of syntax tables loaded from YAML
type Tables = domain.AliasTables

// prefixEntry is one item of prefixes.yml
type prefixEntry struct {
	Prefix string `yaml:"prefix"`
	Syntax string `yaml:"syntax"`
}

// LoadTables reads the syntax tables from dir. Missing files fall back to
// the built-in tables.
func LoadTables(dir string) (*Tables, error) {
	defaults := DefaultTables()
	tables := &Tables{}

	display, err := loadOrderedSyntaxes(filepath.Join(dir, SyntaxesFile))
	if err != nil {
		return nil, err
	}
	if display == nil {
		display = defaults.Display
	}
	tables.Display = display

	labels, err := loadSyntaxMap(filepath.Join(dir, ClassifierFile))
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = defaults.ClassifierLabels
	}
	tables.ClassifierLabels = labels

	markup, err := loadSyntaxMap(filepath.Join(dir, MarkupFile))
	if err != nil {
		return nil, err
	}
	if markup == nil {
		markup = defaults.Markup
	}
	tables.Markup = markup

	prefixes, err := loadPrefixes(filepath.Join(dir, PrefixesFile))
	if err != nil {
		return nil, err
	}
	if prefixes == nil {
		prefixes = defaults.Prefixes
	}
	tables.Prefixes = prefixes

	return tables, nil
}

// readOptional returns nil data for a missing file
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// loadOrderedSyntaxes reads a "Display Name: syntax" mapping keeping file order
func loadOrderedSyntaxes(path string) ([]domain.NamedSyntax, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse %s: expected a mapping", path)
	}

	out := make([]domain.NamedSyntax, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, value := root.Content[i].Value, root.Content[i+1].Value
		if name == "" || value == "" {
			continue
		}
		out = append(out, domain.NamedSyntax{Name: name, Syntax: domain.SyntaxID(value)})
	}
	return out, nil
}

func loadSyntaxMap(path string) (map[string]domain.SyntaxID, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	out := make(map[string]domain.SyntaxID, len(raw))
	for k, v := range raw {
		out[k] = domain.SyntaxID(v)
	}
	return out, nil
}

func loadPrefixes(path string) (domain.PrefixRules, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return nil, err
	}

	var entries []prefixEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	rules := make(domain.PrefixRules, 0, len(entries))
	for _, e := range entries {
		if e.Prefix == "" || e.Syntax == "" {
			return nil, fmt.Errorf("failed to parse %s: prefix and syntax are required", path)
		}
		rules = append(rules, domain.PrefixRule{Prefix: e.Prefix, Syntax: domain.SyntaxID(e.Syntax)})
	}
	return rules, nil
}

// DefaultTables returns the built-in syntax tables
func DefaultTables() *Tables {
	return &Tables{
		Display: []domain.NamedSyntax{
			{Name: "Bash", Syntax: "sh"},
			{Name: "C", Syntax: "c"},
			{Name: "C#", Syntax: "cs"},
			{Name: "C++", Syntax: "cpp"},
			{Name: "CSS", Syntax: "css"},
			{Name: "Diff", Syntax: "diff"},
			{Name: "Dockerfile", Syntax: "Dockerfile"},
			{Name: "Elixir", Syntax: "ex"},
			{Name: "Factor", Syntax: "factor"},
			{Name: "Go", Syntax: "go"},
			{Name: "Haskell", Syntax: "hs"},
			{Name: "HTML", Syntax: "html"},
			{Name: "INI", Syntax: "ini"},
			{Name: "Java", Syntax: "java"},
			{Name: "JavaScript", Syntax: "js"},
			{Name: "JSON", Syntax: "json"},
			{Name: "Kotlin", Syntax: "kt"},
			{Name: "Lua", Syntax: "lua"},
			{Name: "Makefile", Syntax: "make"},
			{Name: "Markdown", Syntax: "md"},
			{Name: "Nim", Syntax: "nim"},
			{Name: "Perl", Syntax: "pl"},
			{Name: "PHP", Syntax: "php"},
			{Name: "PowerShell", Syntax: "ps1"},
			{Name: "Python", Syntax: "py"},
			{Name: "R", Syntax: "r"},
			{Name: "Ruby", Syntax: "rb"},
			{Name: "Rust", Syntax: "rs"},
			{Name: "Scala", Syntax: "scala"},
			{Name: "SQL", Syntax: "sql"},
			{Name: "Swift", Syntax: "swift"},
			{Name: "TeX", Syntax: "tex"},
			{Name: "TOML", Syntax: "toml"},
			{Name: "TypeScript", Syntax: "ts"},
			{Name: "XML", Syntax: "xml"},
			{Name: "YAML", Syntax: "yaml"},
			{Name: "Zsh", Syntax: "zsh"},
		},
		// chroma lexer names
		ClassifierLabels: map[string]domain.SyntaxID{
			"Bash":       "sh",
			"C":          "c",
			"C#":         "cs",
			"C++":        "cpp",
			"CSS":        "css",
			"Diff":       "diff",
			"Docker":     "Dockerfile",
			"Elixir":     "ex",
			"Factor":     "factor",
			"Go":         "go",
			"Haskell":    "hs",
			"HTML":       "html",
			"INI":        "ini",
			"Java":       "java",
			"JavaScript": "js",
			"JSON":       "json",
			"Kotlin":     "kt",
			"Lua":        "lua",
			"Makefile":   "make",
			"markdown":   "md",
			"Nim":        "nim",
			"Perl":       "pl",
			"PHP":        "php",
			"PowerShell": "ps1",
			"Python":     "py",
			"Python 2":   "py",
			"R":          "r",
			"Ruby":       "rb",
			"Rust":       "rs",
			"Scala":      "scala",
			"SQL":        "sql",
			"Swift":      "swift",
			"TeX":        "tex",
			"TOML":       "toml",
			"TypeScript": "ts",
			"XML":        "xml",
			"YAML":       "yaml",

			"Bash Session": "sh",
			"MySQL":        "sql",
		},
		Markup: map[string]domain.SyntaxID{
			"bash":       "sh",
			"sh":         "sh",
			"shell":      "sh",
			"c":          "c",
			"csharp":     "cs",
			"cs":         "cs",
			"cpp":        "cpp",
			"c++":        "cpp",
			"css":        "css",
			"diff":       "diff",
			"dockerfile": "Dockerfile",
			"elixir":     "ex",
			"go":         "go",
			"golang":     "go",
			"haskell":    "hs",
			"html":       "html",
			"ini":        "ini",
			"java":       "java",
			"javascript": "js",
			"js":         "js",
			"json":       "json",
			"kotlin":     "kt",
			"lua":        "lua",
			"makefile":   "make",
			"markdown":   "md",
			"md":         "md",
			"nim":        "nim",
			"perl":       "pl",
			"php":        "php",
			"powershell": "ps1",
			"python":     "py",
			"python3":    "py",
			"py":         "py",
			"r":          "r",
			"ruby":       "rb",
			"rust":       "rs",
			"scala":      "scala",
			"sql":        "sql",
			"swift":      "swift",
			"tex":        "tex",
			"latex":      "tex",
			"toml":       "toml",
			"typescript": "ts",
			"ts":         "ts",
			"xml":        "xml",
			"yaml":       "yaml",
			"yml":        "yaml",
			"zsh":        "zsh",
		},
		Prefixes: domain.PrefixRules{
			{Prefix: "{", Syntax: "json"},
			{Prefix: "---\n", Syntax: "yaml"},
			{Prefix: "--- ", Syntax: "diff"},
			{Prefix: "-- ", Syntax: "lua"},
			{Prefix: `\`, Syntax: "tex"},
			{Prefix: "%%", Syntax: "tex"},
			{Prefix: "[[", Syntax: "toml"},
			{Prefix: "[", Syntax: "ini"},
			{Prefix: "<?php", Syntax: "php"},
			{Prefix: "<", Syntax: "xml"},
			{Prefix: "! ", Syntax: "factor"},
			{Prefix: ": ", Syntax: "factor"},
			{Prefix: "USING: ", Syntax: "factor"},
			{Prefix: "IN: ", Syntax: "factor"},
		},
	}
}
