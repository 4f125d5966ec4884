// Package cmdline builds argument vectors for the external QC tools.
//
// Every function here is pure: equal inputs always produce equal vectors.
// Parameter ranges are checked by callers before reaching this package.
package cmdline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/me/seqqc/pkg/model"
)

// Tool names as they are looked up on PATH.
const (
	Chopper  = "chopper"
	FastQC   = "fastqc"
	MultiQC  = "multiqc"
	NanoPlot = "NanoPlot"
	Gunzip   = "gunzip"
	Gzip     = "gzip"
)

// ChopperCommand builds the chopper filter stage. chopper reads FASTQ on
// stdin and writes the kept reads to stdout.
func ChopperCommand(p model.ChopperParams) []string {
	return append([]string{Chopper}, CommonParams([]Param{
		{"quality", p.Quality},
		{"maxqual", p.MaxQual},
		{"minlength", p.MinLength},
		{"maxlength", p.MaxLength},
		{"headcrop", p.HeadCrop},
		{"tailcrop", p.TailCrop},
		{"threads", p.Threads},
	})...)
}

// NanoPlotCommand builds `NanoPlot --fastq <files...> -o <outDir>`.
// Files keep the order they are given in.
func NanoPlotCommand(files []string, outDir string) []string {
	cmd := make([]string, 0, len(files)+4)
	cmd = append(cmd, NanoPlot, "--fastq")
	cmd = append(cmd, files...)
	return append(cmd, "-o", outDir)
}

// FastQCCommand builds `fastqc <file> -o <outDir>`.
func FastQCCommand(file, outDir string) []string {
	return []string{FastQC, file, "-o", outDir}
}

// MultiQCCommand builds `multiqc <dir> -o <outDir>`.
func MultiQCCommand(dir, outDir string) []string {
	return []string{MultiQC, dir, "-o", outDir}
}

// UnzipCommand decompresses file to stdout.
func UnzipCommand(file string) []string {
	return []string{Gunzip, "-c", file}
}

// ZipCommand compresses stdin to stdout.
func ZipCommand() []string {
	return []string{Gzip}
}

// FlagName turns a parameter name into a long option: "min_length" -> "--min-length".
func FlagName(name string) string {
	return "--" + strings.ReplaceAll(name, "_", "-")
}

// Param is one named tool parameter.
type Param struct {
	Name  string
	Value any
}

// CommonParams renders params in order. A true bool becomes a bare flag,
// false and nil values are dropped, anything else becomes "flag value".
func CommonParams(params []Param) []string {
	var args []string
	for _, p := range params {
		switch v := p.Value.(type) {
		case nil:
			continue
		case bool:
			if v {
				args = append(args, FlagName(p.Name))
			}
		case string:
			args = append(args, FlagName(p.Name), v)
		case int:
			args = append(args, FlagName(p.Name), strconv.Itoa(v))
		case float64:
			args = append(args, FlagName(p.Name), strconv.FormatFloat(v, 'g', -1, 64))
		default:
			args = append(args, FlagName(p.Name), fmt.Sprint(v))
		}
	}
	return args
}
