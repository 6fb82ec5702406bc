package downloader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/listensync/internal/shared"
)

type mockRunner struct {
	stdout []byte
	stderr []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.name = name
	m.args = args
	return m.stdout, m.stderr, m.err
}

func TestNewDeemix(t *testing.T) {
	tests := []struct {
		name    string
		opts    DeemixOpts
		wantErr error
	}{
		{name: "missing ARL", opts: DeemixOpts{BasePath: "/music"}, wantErr: shared.ErrMissingCredentials},
		{name: "blank ARL", opts: DeemixOpts{ARL: "   ", BasePath: "/music"}, wantErr: shared.ErrMissingCredentials},
		{name: "missing base path", opts: DeemixOpts{ARL: "secret"}, wantErr: shared.ErrInvalidConfig},
		{name: "valid", opts: DeemixOpts{ARL: "secret", BasePath: "/music"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDeemix(tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if d.opts.Command != "deemix" || d.opts.Bitrate != "128" {
				t.Errorf("expected defaults to be applied, got %+v", d.opts)
			}
		})
	}
}

func TestDeemix(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("Args", func(t *testing.T) {
		d, _ := NewDeemix(DeemixOpts{ARL: "secret", BasePath: "/app/music/", Portable: true, Logger: logger})
		want := []string{"--portable", "-b", "128", "-p", "/app/music/", "https://www.deezer.com/track/1"}
		if got := d.Args("https://www.deezer.com/track/1"); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}

		d, _ = NewDeemix(DeemixOpts{ARL: "secret", BasePath: "/music", Bitrate: "flac", Logger: logger})
		want = []string{"-b", "flac", "-p", "/music", "u"}
		if got := d.Args("u"); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("WriteCredential", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config", ".arl")
		d, _ := NewDeemix(DeemixOpts{ARL: "secret", ARLPath: path, BasePath: "/music", Logger: logger})

		if err := d.WriteCredential(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected ARL file, got %v", err)
		}
		if string(data) != "secret" {
			t.Errorf("expected ARL contents 'secret', got %q", data)
		}
	})

	t.Run("Download", func(t *testing.T) {
		t.Run("returns completed files", func(t *testing.T) {
			runner := &mockRunner{stdout: []byte("[Alice - Song X] Downloading\nCompleted download of /music/Alice - Song X.mp3\n")}
			d, _ := NewDeemix(DeemixOpts{ARL: "secret", BasePath: "/music", Command: "/usr/bin/deemix", Runner: runner, Logger: logger})

			files, err := d.Download(context.Background(), "https://www.deezer.com/track/1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(files) != 1 || files[0] != "/music/Alice - Song X.mp3" {
				t.Errorf("unexpected files %v", files)
			}
			if runner.name != "/usr/bin/deemix" {
				t.Errorf("expected configured command, got %s", runner.name)
			}
			if runner.args[len(runner.args)-1] != "https://www.deezer.com/track/1" {
				t.Errorf("expected URL as last argument, got %v", runner.args)
			}
		})

		t.Run("wraps failures", func(t *testing.T) {
			runner := &mockRunner{err: errors.New("exit status 1"), stderr: []byte("invalid ARL")}
			d, _ := NewDeemix(DeemixOpts{ARL: "secret", BasePath: "/music", Runner: runner, Logger: logger})

			if _, err := d.Download(context.Background(), "u"); !errors.Is(err, shared.ErrDownloadFailed) {
				t.Errorf("expected ErrDownloadFailed, got %v", err)
			}
		})
	})
}

func TestParseCompleted(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{name: "empty", stdout: "", want: nil},
		{name: "no marker", stdout: "Logging in\nTrack not available\n", want: nil},
		{
			name:   "single",
			stdout: "Completed download of /music/A - B.mp3\n",
			want:   []string{"/music/A - B.mp3"},
		},
		{
			name:   "prefixed and padded",
			stdout: "[2024-01-05] Completed download of   /music/A - B.mp3  \r\nother\nINFO Completed download of C.mp3",
			want:   []string{"/music/A - B.mp3", "C.mp3"},
		},
		{name: "marker without path", stdout: "Completed download of \n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCompleted([]byte(tt.stdout)); !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
