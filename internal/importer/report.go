package importer

import (
	"github.com/cory-johannsen/worldseed/internal/world"
)

// Stage names used in problems and log fields.
const (
	StageFolders  = "folders"
	StageEntities = "entities"
	StageScenes   = "scenes"
	StageExport   = "export"
	StageMerge    = "merge"
)

// Report summarises one pipeline run. A run that returns a Report may still
// carry problems; only stage-ordering failures abort the run with an error.
type Report struct {
	// Folders is the number of folders created.
	Folders int
	// Created counts created documents per type.
	Created map[world.DocumentType]int
	// Records lists every created document with its source digest.
	Records []world.RunRecord
	// Problems lists every recorded failure in the order it occurred.
	Problems []Problem
}

// NewReport constructs an empty Report.
func NewReport() *Report {
	return &Report{Created: make(map[world.DocumentType]int)}
}

func (r *Report) problem(stage string, tier Tier, err error) {
	r.Problems = append(r.Problems, Problem{Stage: stage, Tier: tier, Err: err})
}

// ProblemsAt returns the problems recorded at tier.
func (r *Report) ProblemsAt(tier Tier) []Problem {
	var out []Problem
	for _, p := range r.Problems {
		if p.Tier == tier {
			out = append(out, p)
		}
	}
	return out
}

// OK reports whether the run recorded no problems.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}
