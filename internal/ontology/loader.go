package ontology

import (
	"fmt"
	"os"
)

// LoadDescriptorFile reads and validates one YAML descriptor from disk.
func LoadDescriptorFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology file '%s': %w", path, err)
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("ontology file '%s': %w", path, err)
	}
	return d, nil
}

// LoadDescriptorFiles reads the core descriptor and the plugin descriptors
// in the given order. When enabled is non-empty, plugins whose name is not
// in it are dropped; the core descriptor always loads. The returned slice
// preserves load order so collisions resolve deterministically.
func LoadDescriptorFiles(corePath string, pluginPaths, enabled []string) ([]*Descriptor, error) {
	var descriptors []*Descriptor

	if corePath != "" {
		core, err := LoadDescriptorFile(corePath)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, core)
	}

	enabledSet := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		enabledSet[name] = true
	}

	for _, path := range pluginPaths {
		plugin, err := LoadDescriptorFile(path)
		if err != nil {
			return nil, err
		}
		if len(enabledSet) > 0 && !enabledSet[plugin.Name] {
			continue
		}
		descriptors = append(descriptors, plugin)
	}

	return descriptors, nil
}
