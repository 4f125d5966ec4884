package qc

import (
	"fmt"
	"sort"
)

// Action names.
const (
	ActionStats     = "stats"
	ActionAggregate = "aggregate"
	ActionChop      = "chop"
)

// Action describes one entry point for listings and audit records.
type Action struct {
	Name        string
	Title       string
	Description string
	Citation    string
}

// Registry maps action names to their descriptions. It is filled at
// startup before concurrent access, so no mutex is needed.
type Registry struct {
	actions map[string]Action
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds a, replacing any action with the same name.
func (r *Registry) Register(a Action) {
	r.actions[a.Name] = a
}

// Get returns the action with the given name.
func (r *Registry) Get(name string) (Action, error) {
	a, ok := r.actions[name]
	if !ok {
		return Action{}, fmt.Errorf("no action registered for name %q", name)
	}
	return a, nil
}

// List returns every action sorted by name.
func (r *Registry) List() []Action {
	out := make([]Action, 0, len(r.actions))
	for _, a := range r.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultRegistry returns the registry of the built-in actions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Action{
		Name:        ActionStats,
		Title:       "Visualize read statistics with NanoPlot",
		Description: "Runs NanoPlot over every *.fastq.gz file of a sequence directory and builds an HTML report.",
		Citation:    "De Coster W, et al. NanoPack: visualizing and processing long-read sequencing data. Bioinformatics 34(15), 2018.",
	})
	r.Register(Action{
		Name:        ActionAggregate,
		Title:       "Aggregate FastQC and Cutadapt results with MultiQC",
		Description: "Runs FastQC per file, adds optional Cutadapt logs and summarizes everything in a MultiQC report.",
		Citation:    "Ewels P, et al. MultiQC: summarize analysis results for multiple tools and samples in a single report. Bioinformatics 32(19), 2016.",
	})
	r.Register(Action{
		Name:        ActionChop,
		Title:       "Filter and trim long reads with Chopper",
		Description: "Streams each forward read file through gunzip, chopper and gzip and collects the results in a new sequence directory.",
		Citation:    "De Coster W, Rademakers R. NanoPack2: population-scale evaluation of long-read sequencing data. Bioinformatics 39(5), 2023.",
	})
	return r
}
