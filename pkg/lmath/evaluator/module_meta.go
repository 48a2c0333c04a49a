package evaluator

import "sort"

// ExportMeta describes a single module export for help/introspection.
type ExportMeta struct {
	Kind        string `json:"kind"`
	Arity       string `json:"arity,omitempty"`
	Description string `json:"description,omitempty"`
}

// ModuleMeta describes a module and its exports for help/introspection.
// The loader attaches it to ModuleDict.Meta and the registry below serves
// it to the help system without an Environment.
type ModuleMeta struct {
	Description string                `json:"description"`
	Exports     map[string]ExportMeta `json:"exports"`
}

// ExportNames returns the sorted export names.
func (m *ModuleMeta) ExportNames() []string {
	names := make([]string, 0, len(m.Exports))
	for name := range m.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var moduleMeta = map[string]*ModuleMeta{
	"math": &mathModuleMeta,
}

// GetModuleMeta returns metadata for a module, or nil if unknown.
func GetModuleMeta(name string) *ModuleMeta {
	return moduleMeta[name]
}

// GetModuleNames returns sorted names of all modules that have metadata.
func GetModuleNames() []string {
	names := make([]string, 0, len(moduleMeta))
	for name := range moduleMeta {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
