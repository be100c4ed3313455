// Package history aggregates the read-only archive of past editions into
// records, medal tallies and survival curves.
package history

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrArchive is the kind of every archive loading failure.
var ErrArchive = errors.New("history archive")

// Entry is one participant's outcome in one past edition.
type Entry struct {
	Status string `yaml:"status" json:"status"`
	Result int    `yaml:"result" json:"result"`
	Rank   int    `yaml:"rank" json:"rank"`
}

// Paused reports whether the entry is excluded from numeric aggregates.
func (e Entry) Paused() bool {
	switch strings.ToLower(strings.TrimSpace(e.Status)) {
	case "paused", "pauza":
		return true
	}
	return false
}

// Archive is participant -> edition label -> entry, plus the edition order.
type Archive struct {
	Order        []string                    `yaml:"editions"`
	Participants map[string]map[string]Entry `yaml:"participants"`
}

// Load reads an archive document from path.
func Load(path string) (Archive, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Archive{}, fmt.Errorf("%w: read %s: %w", ErrArchive, path, err)
	}
	return Parse(b)
}

// Parse decodes an archive document.
func Parse(b []byte) (Archive, error) {
	var a Archive
	if err := yaml.Unmarshal(b, &a); err != nil {
		return Archive{}, fmt.Errorf("%w: decode: %w", ErrArchive, err)
	}
	if a.Participants == nil {
		a.Participants = map[string]map[string]Entry{}
	}
	return a, nil
}

// Editions returns the edition labels in archive order. Labels missing from
// the declared order follow it alphabetically.
func (a Archive) Editions() []string {
	seen := make(map[string]struct{}, len(a.Order))
	out := make([]string, 0, len(a.Order))
	for _, l := range a.Order {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	var extra []string
	for _, editions := range a.Participants {
		for l := range editions {
			if _, ok := seen[l]; !ok {
				seen[l] = struct{}{}
				extra = append(extra, l)
			}
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
