package workflow

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type definitionFile struct {
	ID           string                `yaml:"id"`
	InitialState string                `yaml:"initial_state"`
	States       []string              `yaml:"states"`
	Transitions  map[string][]edgeFile `yaml:"transitions"`
}

type edgeFile struct {
	To    string     `yaml:"to"`
	Guard *guardFile `yaml:"guard,omitempty"`
}

type guardFile struct {
	Flag  string `yaml:"flag"`
	Op    string `yaml:"op"`
	Value any    `yaml:"value"`
}

// LoadDefinitionsDir reads one YAML file per workflow definition from dir
// and returns them keyed by id. A missing directory yields an empty map
// with a warning, matching the lexicon/contract loaders' gradual-adoption
// behavior.
func LoadDefinitionsDir(dir string, logger *slog.Logger) (map[string]*Definition, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defs := map[string]*Definition{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("workflow definitions directory not found", "path", dir)
			return defs, nil
		}
		return nil, fmt.Errorf("reading workflow definitions dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		def, err := loadDefinitionFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading workflow definition %s: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs[def.ID] = def
	}
	return defs, nil
}

func loadDefinitionFile(path string) (*Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var df definitionFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, err
	}
	if df.ID == "" {
		return nil, fmt.Errorf("workflow definition missing id")
	}

	edges := make(map[string][]Edge, len(df.Transitions))
	for from, fileEdges := range df.Transitions {
		for _, fe := range fileEdges {
			guard := Guard{}
			if fe.Guard != nil {
				guard = Guard{
					Flag:  fe.Guard.Flag,
					Op:    ConditionOp(fe.Guard.Op),
					Value: fe.Guard.Value,
				}
			}
			edges[from] = append(edges[from], Edge{To: fe.To, Guard: guard})
		}
	}

	return &Definition{
		ID:           df.ID,
		InitialState: df.InitialState,
		States:       df.States,
		Edges:        edges,
	}, nil
}
