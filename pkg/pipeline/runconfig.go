package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig is the on-disk shape of an optional dmerge.yaml file, letting a
// user pin a run's mod roots and priority order instead of repeating CLI
// flags on every invocation.
type RunConfig struct {
	ResourceDir string         `yaml:"resource_dir"`
	OutputDir   string         `yaml:"output_dir"`
	PatchRoots  []string       `yaml:"patch_roots"`
	ModOrder    []string       `yaml:"mod_order"`
	ModRoot     string         `yaml:"mod_root_marker"`
	Target      string         `yaml:"target"`
	Debug       RunConfigDebug `yaml:"debug"`
}

// RunConfigDebug mirrors DebugOptions in the on-disk run-config shape.
type RunConfigDebug struct {
	OutputPatchJSON  bool `yaml:"output_patch_json"`
	OutputMergedJSON bool `yaml:"output_merged_json"`
	OutputMergedXML  bool `yaml:"output_merged_xml"`
}

// LoadRunConfig reads and parses a RunConfig from path.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "pipeline: reading run config %s", path)
	}
	var rc RunConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, errors.Wrapf(err, "pipeline: parsing run config %s", path)
	}
	return &rc, nil
}

// ApplyRunConfig fills zero-valued fields of c from rc, so values already
// set on c (e.g. by CLI flags) take precedence over the file.
func (c *Config) ApplyRunConfig(rc *RunConfig) {
	if c.ResourceDir == "" {
		c.ResourceDir = rc.ResourceDir
	}
	if c.OutputDir == "" {
		c.OutputDir = rc.OutputDir
	}
	if len(c.PatchRoots) == 0 {
		c.PatchRoots = rc.PatchRoots
	}
	if len(c.ModOrder) == 0 {
		c.ModOrder = rc.ModOrder
	}
	if c.ModRootMarker == "" {
		c.ModRootMarker = rc.ModRoot
	}
	if !c.Debug.OutputPatchJSON {
		c.Debug.OutputPatchJSON = rc.Debug.OutputPatchJSON
	}
	if !c.Debug.OutputMergedJSON {
		c.Debug.OutputMergedJSON = rc.Debug.OutputMergedJSON
	}
	if !c.Debug.OutputMergedXML {
		c.Debug.OutputMergedXML = rc.Debug.OutputMergedXML
	}
}
