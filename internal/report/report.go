// Package report records what a build produced: identity, version,
// flag sequence, and per-artifact digests. The JSON form is the
// machine record; the Markdown form is for humans and CI summaries.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/emberos/emberbuild/internal/hash"
)

type Artifact struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Digest string `json:"digest"`
}

type Report struct {
	BuildID     string     `json:"build_id"`
	GeneratedAt string     `json:"generated_at"`
	Version     string     `json:"version"`
	Platform    string     `json:"platform"`
	Target      string     `json:"target"`
	Variant     string     `json:"variant"`
	Flags       []string   `json:"flags"`
	Artifacts   []Artifact `json:"artifacts"`
	// Stamp is the canonical-JSON digest of the report with the stamp
	// itself blanked; equal content stamps equally however the JSON
	// was rendered.
	Stamp string `json:"stamp,omitempty"`
}

// New starts a report for one build variant.
func New(platform, target, variant, version string, flags []string) Report {
	return Report{
		BuildID:     uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version,
		Platform:    platform,
		Target:      target,
		Variant:     variant,
		Flags:       flags,
	}
}

// AddArtifact appends one produced artifact to the record.
func (r *Report) AddArtifact(path string, size int64, digest string) {
	r.Artifacts = append(r.Artifacts, Artifact{Path: path, Size: size, Digest: digest})
}

// Seal computes the content stamp. Call after the last artifact.
func (r *Report) Seal() error {
	unstamped := *r
	unstamped.Stamp = ""
	d, err := hash.DigestCanonical(unstamped)
	if err != nil {
		return fmt.Errorf("stamp report: %w", err)
	}
	r.Stamp = d
	return nil
}

func WriteJSON(path string, r Report) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func ReadJSON(path string) (Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return Report{}, fmt.Errorf("parse report %s: %w", path, err)
	}
	return r, nil
}
