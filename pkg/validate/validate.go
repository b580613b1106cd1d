package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/ocrsynth/pkg/config"
	"github.com/dshills/ocrsynth/pkg/sampler"
)

// Report is the batched result of a pre-run validation pass. Passed is
// false whenever Errors is non-empty; Warnings never abort a run.
type Report struct {
	Passed   bool
	Errors   []string
	Warnings []string
}

func (r *Report) addError(format string, args ...any)   { r.Errors = append(r.Errors, fmt.Sprintf(format, args...)) }
func (r *Report) addWarning(format string, args ...any) { r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...)) }

// Run validates cfg's structure (bounds, distributions, proportions,
// curve/alignment consistency) plus every filesystem precondition named
// in the data model: font globs must resolve to at least one file and
// named corpus files must exist. Any error aborts startup; the caller
// should treat a non-Passed Report as exit code 2.
func Run(cfg *config.BatchConfig) *Report {
	report := &Report{Passed: true}

	if err := cfg.Validate(isKnownDistribution); err != nil {
		report.addError("%v", err)
	}

	for _, spec := range cfg.Specifications {
		validateFontGlob(spec, report)
		validateCorpus(spec, report)
	}

	report.Passed = len(report.Errors) == 0
	return report
}

func isKnownDistribution(name string) bool {
	return sampler.Distribution(name).Valid()
}

func validateFontGlob(spec *config.BatchSpecification, report *Report) {
	if spec.Font.Glob == "" {
		report.addError("%s: font.glob is required", spec.Name)
		return
	}
	matches, err := filepath.Glob(spec.Font.Glob)
	if err != nil {
		report.addError("%s: font glob %q: %v", spec.Name, spec.Font.Glob, err)
		return
	}
	if len(matches) == 0 {
		report.addError("%s: font glob %q matched no files", spec.Name, spec.Font.Glob)
	}
}

func validateCorpus(spec *config.BatchSpecification, report *Report) {
	sel := spec.Corpus
	switch {
	case sel.File != "":
		if _, err := os.Stat(sel.File); err != nil {
			report.addError("%s: corpus file %q: %v", spec.Name, sel.File, err)
		}
	case sel.Directory != "":
		info, err := os.Stat(sel.Directory)
		if err != nil {
			report.addError("%s: corpus directory %q: %v", spec.Name, sel.Directory, err)
			return
		}
		if !info.IsDir() {
			report.addError("%s: corpus directory %q is not a directory", spec.Name, sel.Directory)
			return
		}
		entries, err := os.ReadDir(sel.Directory)
		if err != nil {
			report.addError("%s: corpus directory %q: %v", spec.Name, sel.Directory, err)
			return
		}
		if len(entries) == 0 {
			report.addWarning("%s: corpus directory %q is empty", spec.Name, sel.Directory)
		}
	case sel.Glob != "":
		matches, err := filepath.Glob(sel.Glob)
		if err != nil {
			report.addError("%s: corpus glob %q: %v", spec.Name, sel.Glob, err)
			return
		}
		if len(matches) == 0 {
			report.addError("%s: corpus glob %q matched no files", spec.Name, sel.Glob)
		}
	default:
		report.addError("%s: corpus selector has no file, directory, or glob set", spec.Name)
	}
}
