package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"minic/internal/config"
	"minic/internal/passes"
	"minic/internal/snapshot"
	"minic/internal/ssa"
)

// loadConfig resolves --config, falling back to ./minic.toml when present
// and to defaults otherwise.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		if _, err := os.Stat("minic.toml"); err != nil {
			return config.Default(), nil
		}
		path = "minic.toml"
	}
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return config.Default(), fmt.Errorf("config %s does not exist", path)
	}
	return cfg, err
}

// optLevel prefers an explicit -O flag over the config file.
func optLevel(cmd *cobra.Command, cfg config.Config) int {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("opt-level") {
		level, _ := flags.GetInt("opt-level")
		return level
	}
	if cfg.Opt.Level != 0 {
		return cfg.Opt.Level
	}
	level, _ := flags.GetInt("opt-level")
	return level
}

func disabledSet(cfg config.Config) map[string]bool {
	if len(cfg.Opt.Disable) == 0 {
		return nil
	}
	out := make(map[string]bool, len(cfg.Opt.Disable))
	for _, name := range cfg.Opt.Disable {
		out[strings.TrimSpace(name)] = true
	}
	return out
}

// pipelineObserver narrates pass activity and, when a store is attached,
// snapshots the IR after every pass that changed it.
type pipelineObserver struct {
	mod     *ssa.Module
	store   *snapshot.Store
	verbose bool
}

func (o *pipelineObserver) AfterPass(sweep int, pass string, changed bool) {
	if o.verbose && changed {
		fmt.Printf("  sweep %d: %s %s\n", sweep, pass, color.GreenString("changed"))
	}
	if o.store == nil || !changed {
		return
	}
	var sb strings.Builder
	if err := o.mod.Dump(&sb); err != nil {
		return
	}
	_ = o.store.Put(&snapshot.Record{
		Pass:    pass,
		Sweep:   sweep,
		Changed: changed,
		IR:      sb.String(),
	})
}

func (o *pipelineObserver) AfterSweep(int, bool) {}

func (o *pipelineObserver) Bailout(sweeps int) {
	color.Red("pass pipeline did not converge after %d sweeps; keeping last IR", sweeps)
}

var _ passes.Observer = (*pipelineObserver)(nil)
