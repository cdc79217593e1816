package ontology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDescriptorFiles(t *testing.T) {
	dir := t.TempDir()
	core := writeDescriptor(t, dir, "core.yaml", `
name: core
entities:
  Entity:
    properties:
      name: string
`)
	crm := writeDescriptor(t, dir, "crm.yaml", `
name: crm
entities:
  Contact:
    properties:
      name: string
`)
	fin := writeDescriptor(t, dir, "financial.yaml", `
name: financial
entities:
  Deal:
    properties:
      name: string
`)

	descriptors, err := LoadDescriptorFiles(core, []string{crm, fin}, nil)
	require.NoError(t, err)
	require.Len(t, descriptors, 3)
	assert.Equal(t, "core", descriptors[0].Name)
	assert.Equal(t, "crm", descriptors[1].Name)
	assert.Equal(t, "financial", descriptors[2].Name)
}

func TestLoadDescriptorFilesEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	core := writeDescriptor(t, dir, "core.yaml", "name: core\n")
	crm := writeDescriptor(t, dir, "crm.yaml", "name: crm\n")
	fin := writeDescriptor(t, dir, "financial.yaml", "name: financial\n")

	// The core ontology always loads; only enabled plugins follow.
	descriptors, err := LoadDescriptorFiles(core, []string{crm, fin}, []string{"financial"})
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Equal(t, "core", descriptors[0].Name)
	assert.Equal(t, "financial", descriptors[1].Name)
}

func TestLoadDescriptorFilesMissingFile(t *testing.T) {
	_, err := LoadDescriptorFiles(filepath.Join(t.TempDir(), "missing.yaml"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read ontology file")
}
