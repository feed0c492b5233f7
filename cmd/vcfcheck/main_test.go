package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vcfcheck/internal/output"
	"github.com/inodb/vcfcheck/internal/validate"
)

const validVCF = "##fileformat=VCFv4.2\n" +
	"##contig=<ID=1>\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\tS2\n" +
	"1\t1\tGAIN1\tA\t<CNV>\t30\tPASS\tSVTYPE=CNV\tCN:GT\t0/1\t1/1\n"

type testEnv struct {
	app    *app
	fs     afero.Fs
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.fs = afero.NewMemMapFs()
	a.home = t.TempDir()
	return &testEnv{app: a, fs: a.fs, stdout: &stdout, stderr: &stderr}
}

func (e *testEnv) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(e.fs, path, []byte(content), 0644))
}

// run executes args against a fresh app sharing the env's filesystem and home.
func (e *testEnv) run(args ...string) int {
	e.stdout.Reset()
	e.stderr.Reset()
	a := newApp(e.stdout, e.stderr)
	a.fs = e.fs
	a.home = e.app.home
	return run(args, a)
}

func TestValidateSuccessIsSilent(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	code := env.run("validate", "/data/ok.vcf")
	assert.Equal(t, ExitSuccess, code)
	assert.Empty(t, env.stdout.String())
	assert.Empty(t, env.stderr.String())
}

func TestValidateReport(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	code := env.run("validate", "--report", "/data/ok.vcf")
	require.Equal(t, ExitSuccess, code)
	out := env.stdout.String()
	assert.True(t, strings.HasPrefix(out, output.CompletedMessage+"\n"))
	assert.Contains(t, out, "Records:")
	assert.Contains(t, out, "/data/ok.vcf")
}

func TestValidateReportYAML(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	code := env.run("validate", "--report", "--report-format", "yaml", "/data/ok.vcf")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, env.stdout.String(), "status: ok")
	assert.Contains(t, env.stdout.String(), "- S2")
}

func TestValidateBadReportFormat(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	code := env.run("validate", "--report-format", "xml", "/data/ok.vcf")
	assert.Equal(t, ExitUsage, code)
}

func TestValidateAltFailure(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/bad.vcf", strings.Replace(validVCF, "<CNV>", "A", 1))

	code := env.run("validate", "/data/bad.vcf")
	assert.Equal(t, ExitError, code)

	lines := strings.Split(strings.TrimRight(env.stderr.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Error: Invalid alternate allele on line 4: 1\t1\tGAIN1\tA\tA\t30\tPASS\tSVTYPE=CNV\tCN:GT\t0/1\t1/1", lines[0])
	assert.Equal(t, validate.AltHint, lines[1])
	assert.Empty(t, env.stdout.String())
}

func TestValidateStructuralFailure(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/nofmt.vcf", strings.Replace(validVCF, "##fileformat=VCFv4.2\n", "", 1))

	code := env.run("validate", "--strict", "/data/nofmt.vcf")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "Error: Missing ##fileformat header\n", env.stderr.String())
}

func TestValidateUnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/calls.txt", validVCF)

	code := env.run("validate", "/data/calls.txt")
	assert.Equal(t, ExitError, code)
	assert.Equal(t, "File type not recognised.\n"+output.UsageLine+"\n", env.stderr.String())
}

func TestValidateMissingFile(t *testing.T) {
	env := newTestEnv(t)

	code := env.run("validate", "/data/missing.vcf")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, env.stderr.String(), "open vcf file")
}

func TestValidateStopsAtFirstFailingFile(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)
	env.write(t, "/data/bad1.vcf", strings.Replace(validVCF, "GAIN1", "DUP1", 1))
	env.write(t, "/data/bad2.vcf", strings.Replace(validVCF, "<CNV>", "A", 1))

	code := env.run("validate", "--report", "/data/ok.vcf", "/data/bad1.vcf", "/data/bad2.vcf")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, env.stdout.String(), output.CompletedMessage)
	assert.Contains(t, env.stderr.String(), "LOSS' or 'GAIN'")
	assert.NotContains(t, env.stderr.String(), "alternate allele")
}

func TestValidateReportFromEnv(t *testing.T) {
	t.Setenv("VCFCHECK_VALIDATE_REPORT", "true")
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	code := env.run("validate", "/data/ok.vcf")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, env.stdout.String(), output.CompletedMessage)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"frobnicate"}},
		{"validate without file", []string{"validate"}},
		{"unknown flag", []string{"validate", "--nope", "a.vcf"}},
		{"history without file", []string{"history"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			assert.Equal(t, ExitUsage, env.run(tt.args...))
		})
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, ExitSuccess, env.run("version"))
	assert.Contains(t, env.stdout.String(), "vcfcheck version dev")
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)
	env.write(t, "/data/bad.vcf", strings.Replace(validVCF, "<CNV>", "A", 1))
	dbPath := filepath.Join(env.app.home, "history", "runs.duckdb")

	require.Equal(t, ExitSuccess, env.run("validate", "--history", dbPath, "/data/ok.vcf"))
	require.Equal(t, ExitError, env.run("validate", "--history", dbPath, "/data/bad.vcf"))

	require.Equal(t, ExitSuccess, env.run("history", "--history", dbPath))
	out := env.stdout.String()
	assert.Contains(t, out, "STARTED")
	assert.Contains(t, out, "/data/ok.vcf")
	assert.Contains(t, out, "fail:domain")
	assert.Contains(t, out, "Invalid alternate allele")

	require.Equal(t, ExitSuccess, env.run("history", "--history", dbPath, "--file", "/data/ok.vcf"))
	assert.NotContains(t, env.stdout.String(), "/data/bad.vcf")

	require.Equal(t, ExitSuccess, env.run("history", "--history", dbPath, "--clear"))
	require.Equal(t, ExitSuccess, env.run("history", "--history", dbPath))
	assert.Contains(t, env.stdout.String(), "No runs recorded.")
}

func TestConfigSetGet(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, ExitSuccess, env.run("config", "set", "validate.report", "yes"))
	assert.FileExists(t, filepath.Join(env.app.home, configName))

	require.Equal(t, ExitSuccess, env.run("config", "get", "validate.report"))
	assert.Equal(t, "true\n", env.stdout.String())

	// The stored setting is picked up by validate.
	env.write(t, "/data/ok.vcf", validVCF)
	require.Equal(t, ExitSuccess, env.run("validate", "/data/ok.vcf"))
	assert.Contains(t, env.stdout.String(), output.CompletedMessage)

	require.Equal(t, ExitSuccess, env.run("config"))
	assert.Contains(t, env.stdout.String(), "report: true")

	assert.Equal(t, ExitError, env.run("config", "get", "no.such.key"))
}

func TestVerboseLogging(t *testing.T) {
	env := newTestEnv(t)
	env.write(t, "/data/ok.vcf", validVCF)

	require.Equal(t, ExitSuccess, env.run("validate", "-v", "/data/ok.vcf"))
	assert.Contains(t, env.stderr.String(), "validating")
	assert.Contains(t, env.stderr.String(), "validation passed")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Invalid quality on line 5", firstLine("Invalid quality on line 5: 1\t2\t3"))
	assert.Equal(t, "Missing ##fileformat header", firstLine("Missing ##fileformat header"))
	assert.Equal(t, "open vcf file: x: no such file", firstLine("open vcf file: x: no such file"))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u", "h.duckdb"), expandHome("~/h.duckdb", "/home/u"))
	assert.Equal(t, "/abs/h.duckdb", expandHome("/abs/h.duckdb", "/home/u"))
	assert.Equal(t, "~/h.duckdb", expandHome("~/h.duckdb", ""))
}
