package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Compiler builds a Snapshot from a directory of lexicon YAML files.
type Compiler struct {
	configRoot string
	logger     *slog.Logger
}

// NewCompiler returns a Compiler rooted at configRoot, which must contain a
// "lexicon/" subdirectory holding verb_concepts.yaml, entity_types.yaml,
// domains.yaml, and (optionally) schemes.yaml.
func NewCompiler(configRoot string, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{configRoot: configRoot, logger: logger}
}

// Build reads whatever lexicon YAML files are present and compiles them into
// a Snapshot. Missing files are not an error — each one is logged and
// skipped, leaving its portion of the lexicon empty, so the registry can
// adopt controlled vocabulary gradually.
func (c *Compiler) Build() (*Snapshot, error) {
	snap := &Snapshot{
		Version:         "1.0.0",
		LabelToConcepts: map[string][]string{},
		TokenToConcepts: map[string][]string{},
		VerbMeta:        map[string]VerbMeta{},
		EntityTypes:     map[string]EntityTypeMeta{},
		Domains:         map[string]DomainMeta{},
		KeywordToDomain: map[string]string{},
	}

	verbConceptsPath := filepath.Join(c.configRoot, "lexicon", "verb_concepts.yaml")
	if fileExists(verbConceptsPath) {
		if err := c.loadVerbConcepts(verbConceptsPath, snap); err != nil {
			return nil, fmt.Errorf("loading verb_concepts.yaml: %w", err)
		}
	} else {
		c.logger.Warn("verb_concepts.yaml not found, lexicon will be empty", "path", verbConceptsPath)
	}

	entityTypesPath := filepath.Join(c.configRoot, "lexicon", "entity_types.yaml")
	if fileExists(entityTypesPath) {
		if err := c.loadEntityTypes(entityTypesPath, snap); err != nil {
			return nil, fmt.Errorf("loading entity_types.yaml: %w", err)
		}
	} else {
		c.logger.Warn("entity_types.yaml not found", "path", entityTypesPath)
	}

	domainsPath := filepath.Join(c.configRoot, "lexicon", "domains.yaml")
	if fileExists(domainsPath) {
		if err := c.loadDomains(domainsPath, snap); err != nil {
			return nil, fmt.Errorf("loading domains.yaml: %w", err)
		}
	} else {
		c.logger.Warn("domains.yaml not found", "path", domainsPath)
	}

	hash, err := c.computeHash()
	if err != nil {
		return nil, fmt.Errorf("computing lexicon hash: %w", err)
	}
	snap.Hash = hash

	return snap, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mappingOf accepts either `{wrapper: {...}}` or a flat top-level mapping,
// matching the two config shapes every lexicon YAML file is allowed to use.
func mappingOf(root map[string]any, wrapper string) map[string]any {
	if wrapped, ok := root[wrapper].(map[string]any); ok {
		return wrapped
	}
	return root
}

func (c *Compiler) loadVerbConcepts(path string, snap *Snapshot) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var root map[string]any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return err
	}

	for dslVerb, v := range mappingOf(root, "verbs") {
		entry, _ := v.(map[string]any)
		meta := parseVerbMeta(dslVerb, entry)

		conceptID := "verb." + dslVerb
		addToIndex(snap.LabelToConcepts, normalize(meta.PrefLabel), conceptID)
		for _, alt := range meta.AltLabels {
			addToIndex(snap.LabelToConcepts, normalize(alt), conceptID)
		}
		for _, phrase := range meta.InvocationPhrases {
			addToIndex(snap.LabelToConcepts, normalize(phrase), conceptID)
		}

		for _, tok := range extractTokens(meta.PrefLabel) {
			addToIndex(snap.TokenToConcepts, tok, conceptID)
		}
		for _, alt := range meta.AltLabels {
			for _, tok := range extractTokens(alt) {
				addToIndex(snap.TokenToConcepts, tok, conceptID)
			}
		}

		snap.VerbMeta[dslVerb] = meta
	}
	return nil
}

func parseVerbMeta(dslVerb string, entry map[string]any) VerbMeta {
	return VerbMeta{
		DSLVerb:           dslVerb,
		PrefLabel:         stringOr(entry["pref_label"], dslVerb),
		Domain:            stringOrEmpty(entry["domain"]),
		TargetTypes:       stringSlice(entry["target_types"]),
		ProducesType:      stringOrEmpty(entry["produces_type"]),
		CRUDType:          stringOrEmpty(entry["crud_type"]),
		InvocationPhrases: stringSlice(entry["invocation_phrases"]),
		AltLabels:         stringSlice(entry["alt_labels"]),
	}
}

func (c *Compiler) loadEntityTypes(path string, snap *Snapshot) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var root map[string]any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return err
	}

	for typeName, v := range mappingOf(root, "entity_types") {
		entry, _ := v.(map[string]any)
		meta := EntityTypeMeta{
			TypeName:  typeName,
			PrefLabel: stringOr(entry["pref_label"], typeName),
			Aliases:   stringSlice(entry["aliases"]),
			Domain:    stringOrEmpty(entry["domain"]),
		}

		conceptID := "entity_type." + typeName
		addToIndex(snap.LabelToConcepts, normalize(meta.PrefLabel), conceptID)
		for _, alias := range meta.Aliases {
			addToIndex(snap.LabelToConcepts, normalize(alias), conceptID)
		}

		snap.EntityTypes[typeName] = meta
	}
	return nil
}

func (c *Compiler) loadDomains(path string, snap *Snapshot) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var root map[string]any
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return err
	}

	for domainID, v := range mappingOf(root, "domains") {
		entry, _ := v.(map[string]any)
		meta := DomainMeta{
			DomainID:          domainID,
			Label:             stringOr(entry["label"], domainID),
			Parent:            stringOrEmpty(entry["parent"]),
			InferenceKeywords: stringSlice(entry["inference_keywords"]),
		}

		for _, kw := range meta.InferenceKeywords {
			if n := normalize(kw); n != "" {
				snap.KeywordToDomain[n] = domainID
			}
		}

		snap.Domains[domainID] = meta
	}
	return nil
}

// computeHash mirrors the content hash used to version a compiled lexicon: a
// fixed magic tag plus the raw bytes of each source file, in a fixed order,
// so the same inputs always produce the same hash regardless of filesystem
// iteration order.
func (c *Compiler) computeHash() (string, error) {
	h := sha256.New()
	h.Write([]byte("lexicon_snapshot_v1"))

	for _, rel := range []string{
		filepath.Join("lexicon", "verb_concepts.yaml"),
		filepath.Join("lexicon", "entity_types.yaml"),
		filepath.Join("lexicon", "domains.yaml"),
		filepath.Join("lexicon", "schemes.yaml"),
	} {
		path := filepath.Join(c.configRoot, rel)
		if !fileExists(path) {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		h.Write(content)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func stringOrEmpty(v any) string {
	s, _ := v.(string)
	return s
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func stringSlice(v any) []string {
	seq, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
