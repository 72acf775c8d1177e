package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type templateFile struct {
	Template        string         `yaml:"template"`
	Version         string         `yaml:"version"`
	Metadata        map[string]any `yaml:"metadata"`
	Tags            []string       `yaml:"tags"`
	WorkflowContext struct {
		ApplicableWorkflows []string `yaml:"applicable_workflows"`
		ApplicableStates    []string `yaml:"applicable_states"`
		ResolvesBlockers    []string `yaml:"resolves_blockers"`
	} `yaml:"workflow_context"`
	Params []struct {
		Name       string   `yaml:"name"`
		Required   bool     `yaml:"required"`
		Source     string   `yaml:"source"`
		Default    any      `yaml:"default"`
		Validation string   `yaml:"validation"`
		EnumValues []string `yaml:"enum_values"`
	} `yaml:"params"`
	Body             string   `yaml:"body"`
	Outputs          []string `yaml:"outputs"`
	RelatedTemplates []string `yaml:"related_templates"`
}

// LoadDir reads one YAML file per template from dir and registers each into
// reg. A missing directory is logged and skipped, not an error.
func LoadDir(dir string, reg *Registry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("templates directory not found", "path", dir)
			return nil
		}
		return fmt.Errorf("reading templates dir %s: %w", dir, err)
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
		t, err := loadTemplateFile(path)
		if err != nil {
			return fmt.Errorf("loading template %s: %w", path, err)
		}
		reg.Register(t)
	}
	return nil
}

func loadTemplateFile(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf templateFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, err
	}
	if tf.Template == "" {
		return nil, fmt.Errorf("template file missing 'template' id")
	}

	params := make([]ParamSpec, 0, len(tf.Params))
	for _, p := range tf.Params {
		params = append(params, ParamSpec{
			Name:       p.Name,
			Required:   p.Required,
			Source:     ParamSource(p.Source),
			Default:    p.Default,
			Validation: p.Validation,
			EnumValues: p.EnumValues,
		})
	}

	return &Template{
		TemplateID: tf.Template,
		Version:    tf.Version,
		Metadata:   tf.Metadata,
		Tags:       tf.Tags,
		WorkflowContext: WorkflowContext{
			ApplicableWorkflows: tf.WorkflowContext.ApplicableWorkflows,
			ApplicableStates:    tf.WorkflowContext.ApplicableStates,
			ResolvesBlockers:    tf.WorkflowContext.ResolvesBlockers,
		},
		Params:           params,
		Body:             tf.Body,
		Outputs:          tf.Outputs,
		RelatedTemplates: tf.RelatedTemplates,
	}, nil
}
