package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	icmd "github.com/sardonyx-sard/dmerge/internal/cmd"
	"github.com/sardonyx-sard/dmerge/pkg/codec"
	"github.com/sardonyx-sard/dmerge/pkg/pipeline"
)

// NewMerge builds the "merge" subcommand: run the full discover / parse /
// plan / apply / emit pipeline over a set of patch roots against a
// resource directory, writing merged templates to an output directory.
func NewMerge() *cobra.Command {
	return icmd.Command(&MergeCommand{}, cobra.Command{
		Short: "Merge community patches into behavior and animation templates",
	})
}

type MergeCommand struct {
	Config      string   `usage:"optional YAML run-config file; explicit flags override its values"`
	ResourceDir string   `name:"resource-dir" usage:"directory containing pristine behavior/animation templates" short:"r"`
	OutputDir   string   `name:"output-dir" usage:"directory merged output is written to" short:"o"`
	PatchRoots  []string `name:"patch-root" usage:"mod directory to discover patches under; may be repeated"`
	ModOrder    []string `name:"mod-order" usage:"mod codes in priority order, lowest first; a mod absent here is disabled"`
	ModRoot     string   `name:"mod-root-marker" usage:"path component marking a mod root, defaults to Nemesis_Engine/mod"`
	Target      string   `usage:"output byte layout: skyrim_se or skyrim_le" default:"skyrim_se"`
	HackEvent   bool     `name:"hack-event-to-contact-event" usage:"rewrite a patched field named event to contactEvent"`
	Concurrency int      `usage:"maximum concurrent units of work per stage" default:"4"`

	DebugPatchJSON  bool `name:"debug-patch-json" usage:"dump each template's pre-merge patch/sequence set to output-dir/.debug"`
	DebugMergedJSON bool `name:"debug-merged-json" usage:"dump each template's post-apply tree to output-dir/.debug"`
	DebugMergedXML  bool `name:"debug-merged-xml" usage:"dump each template's post-apply tree as Havok-style XML to output-dir/.debug"`
}

func (m *MergeCommand) Run(cmd *cobra.Command, args []string) error {
	var hacks uint32
	if m.HackEvent {
		hacks |= 1
	}

	cfg := pipeline.Config{
		ResourceDir:    m.ResourceDir,
		OutputDir:      m.OutputDir,
		HackOptions:    hacks,
		PatchRoots:     m.PatchRoots,
		ModRootMarker:  m.ModRoot,
		ModOrder:       m.ModOrder,
		MaxConcurrency: int64(m.Concurrency),
		Debug: pipeline.DebugOptions{
			OutputPatchJSON:  m.DebugPatchJSON,
			OutputMergedJSON: m.DebugMergedJSON,
			OutputMergedXML:  m.DebugMergedXML,
		},
		StatusReport: func(s pipeline.Status) {
			logrus.WithFields(logrus.Fields{
				"stage": s.Stage,
				"index": s.Index,
				"total": s.Total,
			}).Debug("dmerge: stage progress")
		},
	}

	targetStr := m.Target
	if m.Config != "" {
		rc, err := pipeline.LoadRunConfig(m.Config)
		if err != nil {
			return err
		}
		cfg.ApplyRunConfig(rc)
		if !cmd.Flags().Changed("target") && rc.Target != "" {
			targetStr = rc.Target
		}
	}

	target, err := parseTarget(targetStr)
	if err != nil {
		return err
	}
	cfg.OutputTarget = target

	summary, err := pipeline.NewDriver(cfg).Run(cmd.Context())
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"parse_errors": summary.ParseErrors,
		"apply_errors": summary.ApplyErrors,
		"emit_errors":  summary.EmitErrors,
	}).Info("dmerge: merge complete")
	return nil
}

func parseTarget(s string) (codec.Target, error) {
	switch s {
	case "", "skyrim_se":
		return codec.TargetSkyrimSE, nil
	case "skyrim_le":
		return codec.TargetSkyrimLE, nil
	default:
		return 0, fmt.Errorf("dmerge: unknown target %q, want skyrim_se or skyrim_le", s)
	}
}
