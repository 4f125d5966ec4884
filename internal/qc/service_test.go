package qc

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/me/seqqc/internal/discovery"
	"github.com/me/seqqc/internal/execution"
	"github.com/me/seqqc/internal/seqdir"
	"github.com/me/seqqc/pkg/model"
)

// fakeNanoPlot records its arguments and writes a report into the -o dir.
const fakeNanoPlot = `prev=""
out=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
mkdir -p "$out"
printf '%s\n' "$@" > "$out/args.txt"
echo "<html>nanoplot</html>" > "$out/NanoPlot-report.html"`

// fakeFastQC is called as: fastqc FILE -o DIR
const fakeFastQC = `name=$(basename "$1" .fastq.gz)
echo "fastqc $1" > "$3/${name}_fastqc.html"`

// fakeMultiQC is called as: multiqc DIR -o OUT
const fakeMultiQC = `list=$(LC_ALL=C ls "$1")
echo "$list" > "$3/inputs.txt"
echo '<html><body><a href="general.html">General</a></body></html>' > "$3/multiqc_report.html"`

var pairedEnd = []seqdir.ManifestEntry{
	{SampleID: "a", Filename: "a_R1.fastq.gz", Direction: seqdir.Forward},
	{SampleID: "a", Filename: "a_R2.fastq.gz", Direction: seqdir.Reverse},
	{SampleID: "b", Filename: "b_R1.fastq.gz", Direction: seqdir.Forward},
	{SampleID: "b", Filename: "b_R2.fastq.gz", Direction: seqdir.Reverse},
}

var singleEnd = []seqdir.ManifestEntry{
	{SampleID: "s1", Filename: "s1_R1.fastq.gz", Direction: seqdir.Forward},
	{SampleID: "s2", Filename: "s2_R1.fastq.gz", Direction: seqdir.Forward},
	{SampleID: "s3", Filename: "s3_R1.fastq.gz", Direction: seqdir.Forward},
}

func TestStats(t *testing.T) {
	for _, tc := range []struct {
		name    string
		entries []seqdir.ManifestEntry
	}{
		{"single-end", singleEnd},
		{"paired-end", pairedEnd},
	} {
		t.Run(tc.name, func(t *testing.T) {
			installTools(t, map[string]string{"NanoPlot": fakeNanoPlot})
			svc, root := newTestService(t)
			seqDir := makeSequences(t, tc.entries, 2)
			outputDir := filepath.Join(t.TempDir(), "viz")

			if err := svc.Stats(context.Background(), seqDir, outputDir); err != nil {
				t.Fatalf("Stats() error = %v", err)
			}

			for _, f := range []string{"index.html", "css/style.css", "nanoplot_data/NanoPlot-report.html"} {
				if _, err := os.Stat(filepath.Join(outputDir, f)); err != nil {
					t.Errorf("missing %s: %v", f, err)
				}
			}
			index := readFile(t, filepath.Join(outputDir, "index.html"))
			if !strings.Contains(index, `<a href="index.html">Nanoplot</a>`) {
				t.Errorf("index.html lacks Nanoplot tab:\n%s", index)
			}

			// Arguments: --fastq, every file in sorted order, -o, dir.
			args := lines(readFile(t, filepath.Join(outputDir, NanoPlotDataDir, "args.txt")))
			if len(args) != len(tc.entries)+3 {
				t.Fatalf("NanoPlot args = %v", args)
			}
			wantFiles, _ := discovery.FindFastq(seqDir)
			if !reflect.DeepEqual(args[1:len(args)-2], wantFiles) {
				t.Errorf("files = %v, want %v", args[1:len(args)-2], wantFiles)
			}
			assertEmptyDir(t, root)
		})
	}
}

func TestStats_NoInput(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Stats(context.Background(), t.TempDir(), t.TempDir())
	if !errors.Is(err, discovery.ErrInputNotFound) {
		t.Errorf("Stats() error = %v, want ErrInputNotFound", err)
	}
}

func TestStats_ToolFailure(t *testing.T) {
	installTools(t, map[string]string{"NanoPlot": "echo boom >&2; exit 3"})
	svc, root := newTestService(t)
	outputDir := filepath.Join(t.TempDir(), "viz")

	err := svc.Stats(context.Background(), makeSequences(t, singleEnd, 1), outputDir)

	var failure *execution.ExternalToolFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Stats() error = %v, want *ExternalToolFailure", err)
	}
	if failure.Tool != "NanoPlot" || failure.ExitCode != 3 {
		t.Errorf("failure = %+v", failure)
	}
	if _, err := os.Stat(outputDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("output dir created despite tool failure")
	}
	assertEmptyDir(t, root)
}

func TestStats_Rerun(t *testing.T) {
	installTools(t, map[string]string{"NanoPlot": fakeNanoPlot})
	svc, _ := newTestService(t)
	seqDir := makeSequences(t, singleEnd, 1)
	outputDir := t.TempDir()

	for i := 0; i < 2; i++ {
		if err := svc.Stats(context.Background(), seqDir, outputDir); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	entries, _ := os.ReadDir(filepath.Join(outputDir, NanoPlotDataDir))
	if len(entries) != 2 {
		t.Errorf("nanoplot_data holds %d entries after rerun, want 2", len(entries))
	}
}

func writeLogs(t *testing.T, logs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range logs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const validLog = "This is cutadapt 4.4 with Python 3.10\n\n=== Summary ===\n\nTotal reads processed: 10\n"

func TestAggregate(t *testing.T) {
	installTools(t, map[string]string{"fastqc": fakeFastQC, "multiqc": fakeMultiQC})
	svc, root := newTestService(t)
	seqDir := makeSequences(t, pairedEnd, 1)
	logsDir := writeLogs(t, map[string]string{
		"a.log":     validLog,
		"b.log":     "not a cutadapt log\n",
		"notes.txt": "ignored",
	})
	outputDir := filepath.Join(t.TempDir(), "viz")

	if err := svc.Aggregate(context.Background(), seqDir, logsDir, outputDir); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	data := filepath.Join(outputDir, MultiQCDataDir)
	inputs := lines(readFile(t, filepath.Join(data, "inputs.txt")))
	want := []string{"a.log", "a_R1_fastqc.html", "a_R2_fastqc.html", "b.log", "b_R1_fastqc.html", "b_R2_fastqc.html"}
	if !reflect.DeepEqual(inputs, want) {
		t.Errorf("multiqc inputs = %v, want %v", inputs, want)
	}

	report := readFile(t, filepath.Join(data, MultiQCReport))
	if !strings.Contains(report, `target="_blank"`) {
		t.Errorf("report links not rewritten:\n%s", report)
	}
	index := readFile(t, filepath.Join(outputDir, "index.html"))
	if !strings.Contains(index, `<a href="index.html">MultiQC</a>`) {
		t.Errorf("index.html lacks MultiQC tab:\n%s", index)
	}
	assertEmptyDir(t, root)
}

func TestAggregate_WithoutLogs(t *testing.T) {
	installTools(t, map[string]string{"fastqc": fakeFastQC, "multiqc": fakeMultiQC})
	svc, _ := newTestService(t)
	outputDir := t.TempDir()

	if err := svc.Aggregate(context.Background(), makeSequences(t, singleEnd, 1), "", outputDir); err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	inputs := lines(readFile(t, filepath.Join(outputDir, MultiQCDataDir, "inputs.txt")))
	if len(inputs) != len(singleEnd) {
		t.Errorf("multiqc inputs = %v", inputs)
	}
}

func TestAggregate_StrictLogs(t *testing.T) {
	installTools(t, map[string]string{"fastqc": fakeFastQC, "multiqc": fakeMultiQC})
	svc, root := newTestService(t)
	svc.LogMode = seqdir.Strict
	logsDir := writeLogs(t, map[string]string{"bad.log": "garbage\n"})

	err := svc.Aggregate(context.Background(), makeSequences(t, singleEnd, 1), logsDir, t.TempDir())
	if !errors.Is(err, seqdir.ErrInvalidLog) {
		t.Errorf("Aggregate() error = %v, want ErrInvalidLog", err)
	}
	assertEmptyDir(t, root)
}

func TestAggregate_FastQCFailure(t *testing.T) {
	installTools(t, map[string]string{"fastqc": "exit 1", "multiqc": fakeMultiQC})
	svc, _ := newTestService(t)

	err := svc.Aggregate(context.Background(), makeSequences(t, singleEnd, 1), "", t.TempDir())
	if !errors.Is(err, execution.ErrToolFailed) {
		t.Errorf("Aggregate() error = %v, want ErrToolFailed", err)
	}
}

func TestChop(t *testing.T) {
	requireTools(t, "gzip", "gunzip")
	// Keeps every other record: drops reads 1, 3, ...
	installTools(t, map[string]string{"chopper": `awk 'int((NR-1)/4) % 2 == 0'`})
	svc, root := newTestService(t)
	seqDir := makeSequences(t, singleEnd, 4)
	resultDir := filepath.Join(t.TempDir(), "result")

	result, err := svc.Chop(context.Background(), seqDir, model.DefaultChopperParams(), resultDir)
	if err != nil {
		t.Fatalf("Chop() error = %v", err)
	}

	reopened, err := seqdir.Open(resultDir)
	if err != nil {
		t.Fatalf("result directory invalid: %v", err)
	}
	if !reflect.DeepEqual(reopened.Manifest, singleEnd) {
		t.Errorf("manifest = %+v", reopened.Manifest)
	}
	if reopened.Metadata.PhredOffset != 33 {
		t.Errorf("PhredOffset = %d", reopened.Metadata.PhredOffset)
	}
	for _, path := range result.Paths() {
		n, err := seqdir.CountReads(path)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("%s has %d reads, want 2", filepath.Base(path), n)
		}
	}
	assertEmptyDir(t, root)
}

func TestChop_PairedKeepsForward(t *testing.T) {
	requireTools(t, "gzip", "gunzip")
	installTools(t, map[string]string{"chopper": "exec cat"})
	svc, _ := newTestService(t)
	var logs bytes.Buffer
	svc.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	result, err := svc.Chop(context.Background(), makeSequences(t, pairedEnd, 1), model.DefaultChopperParams(), t.TempDir())
	if err != nil {
		t.Fatalf("Chop() error = %v", err)
	}
	if len(result.Manifest) != 2 || result.PairedEnd() {
		t.Errorf("manifest = %+v, want two forward entries", result.Manifest)
	}
	if !strings.Contains(logs.String(), "paired-end input") {
		t.Errorf("paired-end input not logged:\n%s", logs.String())
	}
}

func TestChop_ShortSuffix(t *testing.T) {
	requireTools(t, "gzip", "gunzip")
	installTools(t, map[string]string{"chopper": "exec cat"})
	svc, _ := newTestService(t)
	entries := []seqdir.ManifestEntry{{SampleID: "s1", Filename: "s1.fq.gz", Direction: seqdir.Forward}}
	resultDir := filepath.Join(t.TempDir(), "result")

	result, err := svc.Chop(context.Background(), makeSequences(t, entries, 3), model.DefaultChopperParams(), resultDir)
	if err != nil {
		t.Fatalf("Chop() error = %v", err)
	}
	if !reflect.DeepEqual(result.Manifest, entries) {
		t.Errorf("manifest = %+v, want %+v", result.Manifest, entries)
	}
	if n, err := seqdir.CountReads(filepath.Join(resultDir, "s1.fq.gz")); err != nil || n != 3 {
		t.Errorf("CountReads() = %d, %v; want 3", n, err)
	}
}

func TestChop_PassesParams(t *testing.T) {
	requireTools(t, "gzip", "gunzip")
	argsFile := filepath.Join(t.TempDir(), "args")
	installTools(t, map[string]string{"chopper": `printf '%s\n' "$@" > ` + argsFile + `; exec cat`})
	svc, _ := newTestService(t)

	params := model.DefaultChopperParams()
	params.Quality = 10
	params.Threads = 2
	seqDir := makeSequences(t, singleEnd[:1], 1)
	if _, err := svc.Chop(context.Background(), seqDir, params, t.TempDir()); err != nil {
		t.Fatalf("Chop() error = %v", err)
	}

	got := lines(readFile(t, argsFile))
	want := []string{"--quality", "10", "--maxqual", "1000", "--minlength", "1",
		"--maxlength", "2147483647", "--headcrop", "0", "--tailcrop", "0", "--threads", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chopper args = %v, want %v", got, want)
	}
}

func TestChop_ToolFailure(t *testing.T) {
	requireTools(t, "gzip", "gunzip")
	installTools(t, map[string]string{"chopper": "cat >/dev/null; exit 2"})
	svc, root := newTestService(t)
	resultDir := filepath.Join(t.TempDir(), "result")

	_, err := svc.Chop(context.Background(), makeSequences(t, singleEnd, 2), model.DefaultChopperParams(), resultDir)

	var failure *execution.ExternalToolFailure
	if !errors.As(err, &failure) {
		t.Fatalf("Chop() error = %v, want *ExternalToolFailure", err)
	}
	if failure.Tool != "chopper" || failure.ExitCode != 2 {
		t.Errorf("failure = %+v", failure)
	}
	if !strings.Contains(err.Error(), "sample s1") {
		t.Errorf("error %q does not name the sample", err)
	}
	if _, err := os.Stat(resultDir); !errors.Is(err, os.ErrNotExist) {
		t.Error("result dir created despite failure")
	}
	assertEmptyDir(t, root)
}

func TestChop_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Chop(context.Background(), t.TempDir(), model.DefaultChopperParams(), t.TempDir())
	if err == nil {
		t.Error("expected error for directory without a manifest")
	}
}
