package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"transcriber/internal/config"
	"transcriber/internal/deps"
	"transcriber/internal/preflight"
	"transcriber/internal/whisperx"
	"transcriber/internal/workspace"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check dependencies, directories, and configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := buildStatusReport(cmd.Context(), cfg, ctx.configPath)
			_, err = io.WriteString(out, report.render(isTerminal(out)))
			return err
		},
	}
}

type checkState int

const (
	stateInfo checkState = iota
	stateOK
	stateWarn
	stateFail
)

func (s checkState) label() string {
	switch s {
	case stateOK:
		return "OK"
	case stateWarn:
		return "WARN"
	case stateFail:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (s checkState) colors() text.Colors {
	switch s {
	case stateOK:
		return text.Colors{text.FgGreen}
	case stateWarn:
		return text.Colors{text.FgYellow}
	case stateFail:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}

type statusLine struct {
	label  string
	state  checkState
	detail string
}

type statusSection struct {
	title string
	lines []statusLine
}

func (s *statusSection) add(label string, state checkState, detail string) {
	s.lines = append(s.lines, statusLine{label: label, state: state, detail: detail})
}

// statusReport groups readiness checks for the status command. A failing
// line means transcribe would refuse to run; warnings degrade a job but do
// not block it.
type statusReport struct {
	sections []*statusSection
}

func (r *statusReport) section(title string) *statusSection {
	s := &statusSection{title: title}
	r.sections = append(r.sections, s)
	return s
}

func (r *statusReport) counts() (failed, warned int) {
	for _, s := range r.sections {
		for _, line := range s.lines {
			switch line.state {
			case stateFail:
				failed++
			case stateWarn:
				warned++
			}
		}
	}
	return failed, warned
}

func buildStatusReport(ctx context.Context, cfg *config.Config, configPath string) *statusReport {
	report := &statusReport{}

	settings := report.section("Configuration")
	settings.add("Config file", stateInfo, valueOrDash(configPath))
	if err := whisperx.ValidateModel(cfg.WhisperX.Model); err != nil {
		settings.add("WhisperX model", stateFail, err.Error())
	} else {
		settings.add("WhisperX model", stateOK, cfg.WhisperX.Model)
	}
	settings.add("CUDA", stateInfo, yesNo(cfg.WhisperX.CUDAEnabled))
	settings.add("Formats", stateInfo, strings.Join(cfg.Output.Formats, ", "))

	tools := report.section("Dependencies")
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		tools.add(dep.Name, dependencyState(dep), dependencyDetail(dep))
	}

	services := report.section("Directories and services")
	for _, result := range preflight.RunAll(ctx, cfg) {
		state := stateOK
		if !result.Passed {
			state = stateFail
		}
		services.add(result.Name, state, result.Detail)
	}
	if !cfg.Translation.Enabled {
		services.add("Translation API", stateInfo, "disabled")
	}
	if !cfg.Storage.Enabled {
		services.add("Object storage", stateInfo, "disabled")
	}
	if dirs, err := workspace.ListDirectories(cfg.Paths.StagingDir); err == nil {
		services.add(workspaceLine(dirs))
	}
	return report
}

// dependencyState fails only for required programs. A missing ffprobe costs
// the audio stream check, not the job.
func dependencyState(dep deps.Status) checkState {
	switch {
	case dep.Available:
		return stateOK
	case dep.Optional:
		return stateWarn
	default:
		return stateFail
	}
}

func dependencyDetail(dep deps.Status) string {
	if dep.Available {
		return dep.Command
	}
	return dep.Detail
}

func workspaceLine(dirs []workspace.DirInfo) (string, checkState, string) {
	var jobs int
	var size int64
	for _, dir := range dirs {
		if dir.IsJob {
			jobs++
			size += dir.Size
		}
	}
	if jobs == 0 {
		return "Workspaces", stateInfo, "no job directories"
	}
	return "Workspaces", stateWarn,
		fmt.Sprintf("%d job dir(s), %s (transcriber clean removes stale ones)", jobs, formatBytes(size))
}

const statusLabelWidth = 20

func (r *statusReport) render(colorize bool) string {
	paint := func(colors text.Colors, s string) string {
		if !colorize {
			return s
		}
		return colors.Sprint(s)
	}

	var b strings.Builder
	for i, s := range r.sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		header := "== " + s.title + " =="
		b.WriteString(paint(text.Colors{text.FgBlue}, header) + "\n")
		b.WriteString(paint(text.Colors{text.FgBlue}, strings.Repeat("-", len(header))) + "\n")
		for _, line := range s.lines {
			entry := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, line.label+":", line.state.label())
			if line.detail != "" {
				entry += " " + line.detail
			}
			b.WriteString(paint(line.state.colors(), entry) + "\n")
		}
	}

	failed, warned := r.counts()
	b.WriteByte('\n')
	switch {
	case failed > 0:
		b.WriteString(paint(text.Colors{text.FgRed, text.Bold},
			fmt.Sprintf("Not ready: %d failing check(s), %d warning(s)", failed, warned)) + "\n")
	case warned > 0:
		b.WriteString(paint(text.Colors{text.FgYellow},
			fmt.Sprintf("Ready with %d warning(s)", warned)) + "\n")
	default:
		b.WriteString(paint(text.Colors{text.FgGreen}, "Ready") + "\n")
	}
	return b.String()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
