// Package help answers `lmath describe` and the REPL's :describe command.
// It reads module metadata from the evaluator registry, so export lists are
// kept next to the module code and never duplicated here.
package help

import (
	"fmt"
	"sort"
	"strings"

	lerrors "github.com/sambeau/lmath/pkg/lmath/errors"
	"github.com/sambeau/lmath/pkg/lmath/evaluator"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string        `json:"kind"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Exports     []ExportEntry `json:"exports,omitempty"`
	Modules     []string      `json:"modules,omitempty"`
	Arity       string        `json:"arity,omitempty"`
	Params      string        `json:"params,omitempty"`
}

// ExportEntry represents a module export for help output
type ExportEntry struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Arity       string `json:"arity,omitempty"`
	Description string `json:"description,omitempty"`
}

// DescribeTopic returns help for a topic. Topics are a module name (math),
// a qualified export (math.random) or the keyword "modules".
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: modules, math, math.random)")
	}

	if topic == "modules" {
		return &TopicResult{
			Kind:    "module-list",
			Name:    "modules",
			Modules: evaluator.GetModuleNames(),
		}, nil
	}

	modName, exportName, qualified := strings.Cut(topic, ".")
	meta := evaluator.GetModuleMeta(modName)
	if meta == nil {
		return nil, unknownTopicError(topic)
	}
	if !qualified {
		return &TopicResult{
			Kind:        "module",
			Name:        modName,
			Description: meta.Description,
			Exports:     getModuleExports(meta),
		}, nil
	}

	em, ok := meta.Exports[exportName]
	if !ok {
		return nil, unknownExportError(modName, exportName, meta)
	}
	result := &TopicResult{
		Kind:        em.Kind,
		Name:        topic,
		Description: em.Description,
		Arity:       em.Arity,
	}
	if em.Kind == "function" {
		result.Params = arityToParams(em.Arity)
	}
	return result, nil
}

// unknownTopicError generates a helpful error for unknown topics
func unknownTopicError(topic string) error {
	if s := findSuggestion(topic); s != "" {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, s)
	}
	return fmt.Errorf("unknown topic: %s\nTry: modules, %s", topic, strings.Join(evaluator.GetModuleNames(), ", "))
}

func unknownExportError(modName, exportName string, meta *evaluator.ModuleMeta) error {
	if s := lerrors.FindClosestMatch(exportName, meta.ExportNames()); s != "" {
		return fmt.Errorf("unknown topic: %s.%s\nDid you mean: %s.%s?", modName, exportName, modName, s)
	}
	return fmt.Errorf("unknown topic: %s.%s (see: describe %s)", modName, exportName, modName)
}

// findSuggestion matches a misspelt module name, or a bare export name
// typed without its module.
func findSuggestion(topic string) string {
	modules := evaluator.GetModuleNames()
	if s := lerrors.FindClosestMatch(strings.ToLower(topic), modules); s != "" {
		return s
	}
	for _, mod := range modules {
		if _, ok := evaluator.GetModuleMeta(mod).Exports[topic]; ok {
			return mod + "." + topic
		}
	}
	return ""
}

// getModuleExports builds the export list from a module's own metadata.
func getModuleExports(meta *evaluator.ModuleMeta) []ExportEntry {
	if meta == nil || len(meta.Exports) == 0 {
		return nil
	}

	exports := make([]ExportEntry, 0, len(meta.Exports))
	for name, em := range meta.Exports {
		exports = append(exports, ExportEntry{
			Name:        name,
			Kind:        em.Kind,
			Arity:       em.Arity,
			Description: em.Description,
		})
	}

	// Sort: constants first, then functions, alphabetically within each
	sort.Slice(exports, func(i, j int) bool {
		if exports[i].Kind != exports[j].Kind {
			return exports[i].Kind == "constant"
		}
		return exports[i].Name < exports[j].Name
	})

	return exports
}
