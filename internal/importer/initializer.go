package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/worldseed/internal/world"
)

// Run statuses written to the run log.
const (
	RunStatusComplete = "complete"
	RunStatusPartial  = "partial"
	RunStatusFailed   = "failed"
)

// Initializer drives the one-shot import gated by the persisted
// "initialized" setting.
type Initializer struct {
	pipeline *Pipeline
	settings world.Settings
	runLog   world.RunLog
	content  Content
	module   string
	logger   *zap.Logger
	now      func() time.Time
}

// NewInitializer constructs an Initializer. runLog may be nil.
//
// Precondition: pipeline, settings and logger must be non-nil.
func NewInitializer(pipeline *Pipeline, settings world.Settings, runLog world.RunLog, content Content, logger *zap.Logger) *Initializer {
	return &Initializer{
		pipeline: pipeline,
		settings: settings,
		runLog:   runLog,
		content:  content,
		module:   pipeline.opts.Module,
		logger:   logger,
		now:      time.Now,
	}
}

// Initialized reports the persisted flag.
func (in *Initializer) Initialized(ctx context.Context) (bool, error) {
	done, err := in.settings.Setting(ctx, in.module, SettingInitialized)
	if err != nil {
		return false, fmt.Errorf("reading %s.%s: %w", in.module, SettingInitialized, err)
	}
	return done, nil
}

// NeedsPrompt reports whether the import prompt should be shown: only to
// privileged users, and only while the world is not initialized.
func (in *Initializer) NeedsPrompt(ctx context.Context, privileged bool) (bool, error) {
	if !privileged {
		return false, nil
	}
	done, err := in.Initialized(ctx)
	if err != nil {
		return false, err
	}
	return !done, nil
}

// Initialize marks the world initialized and runs the import. The flag is
// set before the import starts and stays set whatever the outcome, so a
// failed run is never retried automatically.
//
// Postcondition: The flag is true; a run record is written when a run log is
// configured.
func (in *Initializer) Initialize(ctx context.Context) (*Report, error) {
	if err := in.settings.SetSetting(ctx, in.module, SettingInitialized, true); err != nil {
		return nil, fmt.Errorf("setting %s.%s: %w", in.module, SettingInitialized, err)
	}
	started := in.now()
	report, runErr := in.pipeline.Run(ctx, in.content)

	status := RunStatusComplete
	switch {
	case runErr != nil:
		status = RunStatusFailed
	case !report.OK():
		status = RunStatusPartial
	}
	if in.runLog != nil {
		run := world.Run{
			Module:     in.module,
			StartedAt:  started,
			FinishedAt: in.now(),
			Status:     status,
			Problems:   len(report.Problems),
			Records:    report.Records,
		}
		if err := in.runLog.RecordRun(ctx, run); err != nil {
			in.logger.Warn("recording import run", zap.Error(err))
		}
	}
	if runErr != nil {
		return report, runErr
	}
	in.logger.Info("Initialization Complete", zap.String("status", status))
	return report, nil
}

// Skip marks the world initialized without importing anything.
func (in *Initializer) Skip(ctx context.Context) error {
	if err := in.settings.SetSetting(ctx, in.module, SettingInitialized, true); err != nil {
		return fmt.Errorf("setting %s.%s: %w", in.module, SettingInitialized, err)
	}
	in.logger.Info("Skipped Initialization.")
	return nil
}

// Reset clears the flag so the prompt is shown again.
func (in *Initializer) Reset(ctx context.Context) error {
	if err := in.settings.SetSetting(ctx, in.module, SettingInitialized, false); err != nil {
		return fmt.Errorf("clearing %s.%s: %w", in.module, SettingInitialized, err)
	}
	return nil
}

// Summary counts what an Initialize would import.
type Summary struct {
	Folders  int
	Journals int
	Actors   int
	Items    int
	Scenes   int
}

// Summarize reads the manifest and every source and counts their contents.
//
// Postcondition: Returns counts or the first read error.
func (in *Initializer) Summarize(ctx context.Context) (Summary, error) {
	var s Summary
	folders, err := in.content.Manifest.Folders(ctx)
	if err != nil {
		return s, fmt.Errorf("loading manifest: %w", err)
	}
	s.Folders = len(folders)
	counts := []struct {
		src Source
		n   *int
	}{
		{in.content.Journals, &s.Journals},
		{in.content.Actors, &s.Actors},
		{in.content.Items, &s.Items},
		{in.content.Scenes, &s.Scenes},
	}
	for _, c := range counts {
		if c.src == nil {
			continue
		}
		docs, err := c.src.Documents(ctx)
		if err != nil {
			return s, fmt.Errorf("reading pack %s: %w", c.src.Name(), err)
		}
		*c.n = len(docs)
	}
	return s, nil
}

// Prompt renders the question shown before initializing.
func (s Summary) Prompt(title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Initialize %s?\n\n", title)
	b.WriteString("This will import all Actors, Items, Journals, and Scenes into your world, sort them into folders, and place map pins\n")
	fmt.Fprintf(&b, "  %d Actors\n", s.Actors)
	fmt.Fprintf(&b, "  %d Journal Entries\n", s.Journals)
	fmt.Fprintf(&b, "  %d Items\n", s.Items)
	fmt.Fprintf(&b, "  %d Scenes\n", s.Scenes)
	fmt.Fprintf(&b, "  %d Folders organizing the above\n", s.Folders)
	return b.String()
}
