// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Stage names a pipeline step. Failures carry the stage they stopped in.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StageConvert Stage = "convert"
	StageExport  Stage = "export"
	StageDone    Stage = "done"
)

// RunStatus is the outcome of processing one paper.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord describes one paper processed by one invocation.
type RunRecord struct {
	ID      int64    `json:"id" yaml:"id"`
	Query   string   `json:"query" yaml:"query"`
	PaperID string   `json:"paper_id" yaml:"paper_id"`
	ShortID string   `json:"short_id" yaml:"short_id"`
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	Status RunStatus `json:"status" yaml:"status"`

	// Stage is the last stage reached: StageDone on success, otherwise the
	// stage that failed.
	Stage Stage  `json:"stage" yaml:"stage"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	EPUBPath string `json:"epub_path,omitempty" yaml:"epub_path,omitempty"`
	DestPath string `json:"dest_path,omitempty" yaml:"dest_path,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}
