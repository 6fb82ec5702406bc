package downloader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/listensync/internal/shared"
)

// CompletedMarker precedes the output path on the stdout line deemix prints for every finished file.
const CompletedMarker = "Completed download of "

// CommandRunner runs an external program and returns its captured output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with [exec.CommandContext].
type ExecRunner struct{}

// Run starts name with args and waits for it to exit.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DeemixOpts configures a [Deemix] invocation.
type DeemixOpts struct {
	Command  string // executable, defaults to "deemix"
	ARL      string // Deezer session cookie
	ARLPath  string // file deemix reads the ARL from
	Bitrate  string
	Portable bool
	BasePath string // download directory
	Runner   CommandRunner
	Logger   *log.Logger
}

// Deemix downloads single tracks with the deemix CLI.
type Deemix struct {
	opts   DeemixOpts
	runner CommandRunner
	logger *log.Logger
}

// NewDeemix validates the credential and download settings. A blank ARL yields [shared.ErrMissingCredentials].
func NewDeemix(opts DeemixOpts) (*Deemix, error) {
	if strings.TrimSpace(opts.ARL) == "" {
		return nil, fmt.Errorf("%w: deemix ARL is not set", shared.ErrMissingCredentials)
	}
	if opts.BasePath == "" {
		return nil, fmt.Errorf("%w: download base path is empty", shared.ErrInvalidConfig)
	}
	if opts.Command == "" {
		opts.Command = "deemix"
	}
	if opts.Bitrate == "" {
		opts.Bitrate = "128"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Deemix{
		opts:   opts,
		runner: opts.Runner,
		logger: shared.WithLogger(opts.Logger, "component", "deemix"),
	}, nil
}

// WriteCredential stores the ARL where deemix looks for it. Without an ARL path this is a no-op.
func (d *Deemix) WriteCredential() error {
	if d.opts.ARLPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.opts.ARLPath), 0700); err != nil {
		return fmt.Errorf("failed to create ARL directory: %w", err)
	}
	if err := shared.WriteFileAtomic(d.opts.ARLPath, []byte(d.opts.ARL), 0600); err != nil {
		return fmt.Errorf("failed to write ARL: %w", err)
	}
	d.logger.Debug("wrote ARL", "path", d.opts.ARLPath)
	return nil
}

// Args returns the command-line arguments for downloading url.
func (d *Deemix) Args(url string) []string {
	args := make([]string, 0, 6)
	if d.opts.Portable {
		args = append(args, "--portable")
	}
	return append(args, "-b", d.opts.Bitrate, "-p", d.opts.BasePath, url)
}

// Download runs deemix for url and returns the files it reported as completed.
//
// A non-zero exit or a failure to start the program is wrapped in [shared.ErrDownloadFailed].
func (d *Deemix) Download(ctx context.Context, url string) ([]string, error) {
	stdout, stderr, err := d.runner.Run(ctx, d.opts.Command, d.Args(url)...)
	d.logger.Debug("download result", "url", url, "stdout", string(stdout))
	if err != nil {
		if len(stderr) > 0 {
			d.logger.Debug("download stderr", "url", url, "stderr", string(stderr))
		}
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrDownloadFailed, url, err)
	}
	return ParseCompleted(stdout), nil
}

// ParseCompleted extracts the path following [CompletedMarker] on every matching line.
func ParseCompleted(stdout []byte) []string {
	var files []string
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		_, path, found := strings.Cut(scanner.Text(), CompletedMarker)
		if !found {
			continue
		}
		if path = strings.TrimSpace(path); path != "" {
			files = append(files, path)
		}
	}
	return files
}
