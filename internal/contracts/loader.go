package contracts

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sem-os/semcore/internal/types"
	"gopkg.in/yaml.v3"
)

// contractFile is the on-disk shape of a contracts config file. Like the
// lexicon config files, it may be wrapped under a top-level "contracts" key
// or given as a flat mapping of task_type -> body.
type contractFile struct {
	Contracts map[string]contractBody `yaml:"contracts"`
}

type contractBody struct {
	ReadsFlags          []string `yaml:"reads_flags"`
	WritesFlags         []string `yaml:"writes_flags"`
	MayRaiseErrors      []string `yaml:"may_raise_errors"`
	ProducesCorrelation []string `yaml:"produces_correlation"`
}

// LoadFile loads a contracts YAML file into reg. A missing file is not an
// error: it is logged at Warn and skipped, matching the lexicon loader's
// tolerance for absent config files.
func LoadFile(reg *Registry, path string, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if logger != nil {
				logger.Warn("contracts file not found, skipping", "path", path)
			}
			return nil
		}
		return fmt.Errorf("reading contracts file %s: %w", path, err)
	}

	var file contractFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing contracts file %s: %w", path, err)
	}

	body := file.Contracts
	if body == nil {
		// Flat shape: the whole document is the mapping.
		if err := yaml.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("parsing contracts file %s: %w", path, err)
		}
	}

	for taskType, b := range body {
		contract := &types.VerbContract{
			TaskType:       taskType,
			ReadsFlags:     toFlagSet(b.ReadsFlags),
			WritesFlags:    toFlagSet(b.WritesFlags),
			MayRaiseErrors: toErrorSet(b.MayRaiseErrors),
		}
		for _, src := range b.ProducesCorrelation {
			contract.ProducesCorrelation = append(contract.ProducesCorrelation, types.CorrelationSource{KeySource: src})
		}
		reg.Register(contract)
	}
	return nil
}

// LoadKnownInputsFile loads known workflow input flag names from either a
// flat YAML list or a mapping holding a known_workflow_inputs list.
func LoadKnownInputsFile(reg *Registry, path string, logger *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if logger != nil {
				logger.Warn("known-inputs file not found, skipping", "path", path)
			}
			return nil
		}
		return fmt.Errorf("reading known-inputs file %s: %w", path, err)
	}

	var doc struct {
		KnownWorkflowInputs []string `yaml:"known_workflow_inputs"`
	}
	var flat []string
	if err := yaml.Unmarshal(raw, &flat); err == nil {
		doc.KnownWorkflowInputs = flat
	} else if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing known-inputs file %s: %w", path, err)
	}
	for _, f := range doc.KnownWorkflowInputs {
		reg.RegisterKnownInput(types.Flag(f))
	}
	return nil
}

func toFlagSet(names []string) map[types.Flag]struct{} {
	set := make(map[types.Flag]struct{}, len(names))
	for _, n := range names {
		set[types.Flag(n)] = struct{}{}
	}
	return set
}

func toErrorSet(codes []string) map[types.ErrorCode]struct{} {
	set := make(map[types.ErrorCode]struct{}, len(codes))
	for _, c := range codes {
		set[types.ErrorCode(c)] = struct{}{}
	}
	return set
}
