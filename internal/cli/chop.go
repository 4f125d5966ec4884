package cli

import (
	"errors"
	"fmt"

	"github.com/me/seqqc/pkg/model"
	"github.com/spf13/cobra"
)

// ParamError reports a command line parameter outside its allowed range.
type ParamError struct {
	Name  string
	Value int
	Min   int
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid value %d for --%s: must be at least %d", e.Value, e.Name, e.Min)
}

// validateChopperParams checks every parameter against its lower bound.
func validateChopperParams(p model.ChopperParams) error {
	checks := []struct {
		name  string
		value int
		min   int
	}{
		{"threads", p.Threads, 1},
		{"quality", p.Quality, 0},
		{"maxqual", p.MaxQual, 0},
		{"minlength", p.MinLength, 1},
		{"maxlength", p.MaxLength, 1},
		{"headcrop", p.HeadCrop, 0},
		{"tailcrop", p.TailCrop, 0},
	}
	var errs []error
	for _, c := range checks {
		if c.value < c.min {
			errs = append(errs, &ParamError{Name: c.name, Value: c.value, Min: c.min})
		}
	}
	return errors.Join(errs...)
}

func newChopCmd(a *app) *cobra.Command {
	var seqDir, resultDir string
	p := model.DefaultChopperParams()

	cmd := &cobra.Command{
		Use:   "chop",
		Short: "Filter and trim long reads with Chopper",
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			if err := validateChopperParams(p); err != nil {
				return err
			}
			result, err := a.service().Chop(cmd.Context(), seqDir, p, resultDir)
			if err != nil {
				return fmt.Errorf("chop: %w", err)
			}
			fmt.Fprintf(out(cmd), "Filtered sequences written to %s (%d samples)\n", result.Path, len(result.Manifest))
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringVar(&seqDir, "query-reads", "", "Sequence directory to filter")
	f.StringVar(&resultDir, "output", "", "Directory receiving the filtered sequence directory")
	f.IntVar(&p.Threads, "threads", p.Threads, "Number of chopper threads")
	f.IntVar(&p.Quality, "quality", p.Quality, "Minimum average read quality")
	f.IntVar(&p.MaxQual, "maxqual", p.MaxQual, "Maximum average read quality")
	f.IntVar(&p.MinLength, "minlength", p.MinLength, "Minimum read length")
	f.IntVar(&p.MaxLength, "maxlength", p.MaxLength, "Maximum read length")
	f.IntVar(&p.HeadCrop, "headcrop", p.HeadCrop, "Bases trimmed from the start of each read")
	f.IntVar(&p.TailCrop, "tailcrop", p.TailCrop, "Bases trimmed from the end of each read")
	cmd.MarkFlagRequired("query-reads")
	cmd.MarkFlagRequired("output")
	return cmd
}
