package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wslkit/wsl-image-manager/lib/guest"
	"github.com/wslkit/wsl-image-manager/lib/manifest"
)

// localExecutor runs argv directly on the host. Combined with an overridden
// manifest path under t.TempDir() it exercises the exact command sequences
// the store would send into a guest, through a real sh.
type localExecutor struct{}

func (localExecutor) Execute(ctx context.Context, distro string, argv []string) (*guest.Result, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	res := &guest.Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, err
	}
	return res, nil
}

// unreachableExecutor simulates a guest that cannot be reached at all.
type unreachableExecutor struct{}

func (unreachableExecutor) Execute(ctx context.Context, distro string, argv []string) (*guest.Result, error) {
	return nil, errors.New("distribution not registered")
}

// failingExecutor fails any sh script containing the marker, delegating
// everything else to the wrapped executor.
type failingExecutor struct {
	wrapped guest.Executor
	marker  string
}

func (f *failingExecutor) Execute(ctx context.Context, distro string, argv []string) (*guest.Result, error) {
	if len(argv) == 3 && argv[0] == "sh" && strings.Contains(argv[2], f.marker) {
		return &guest.Result{ExitCode: 1, Stderr: "simulated failure"}, nil
	}
	return f.wrapped.Execute(ctx, distro, argv)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T, exec guest.Executor) (*Store, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive a real sh")
	}
	path := filepath.Join(t.TempDir(), "etc", "wsl-image-manifest.json")
	return New(exec, testLogger(), WithManifestPath(path)), path
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, _ := testStore(t, localExecutor{})
	ctx := context.Background()

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	m.AddLayer(manifest.Layer{Type: manifest.LayerApplication, Name: "golang", Commands: []string{"apt-get install -y golang"}})
	m.EnvironmentVariables["EDITOR"] = "vim"
	m.Notes = "build host for the api service"
	m.AppendHistory("layer", "Installed golang", nil)

	require.NoError(t, s.Write(ctx, "dev-image", m, WriteOptions{}))

	got, err := s.Read(ctx, "dev-image")
	require.NoError(t, err)
	require.NotNil(t, got)

	want, err := json.Marshal(m)
	require.NoError(t, err)
	have, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(have))

	require.Equal(t, m.Metadata.ID, got.Metadata.ID)
	require.Equal(t, []string{"ubuntu-22.04"}, got.Metadata.Lineage)
	require.Equal(t, m.Layers[1].Commands, got.Layers[1].Commands)
}

func TestWriteEscapesHostileContent(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	ctx := context.Background()
	dir := filepath.Dir(path)

	hostile := "double \" single ' backtick `touch " + dir + "/pwned-bt` dollar $(touch " + dir +
		"/pwned-sub) var $HOME back\\slash\nsecond line\nthird line"

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	m.Notes = hostile
	m.Layers[0].Description = hostile

	require.NoError(t, s.Write(ctx, "dev-image", m, WriteOptions{}))

	got, err := s.Read(ctx, "dev-image")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, hostile, got.Notes)
	require.Equal(t, hostile, got.Layers[0].Description)

	// Nothing inside the payload may have executed.
	_, err = os.Stat(filepath.Join(dir, "pwned-bt"))
	require.True(t, os.IsNotExist(err), "backtick substitution executed")
	_, err = os.Stat(filepath.Join(dir, "pwned-sub"))
	require.True(t, os.IsNotExist(err), "dollar substitution executed")
}

func TestWriteFallbackPath(t *testing.T) {
	// Primary printf writes fail; the temp-file fallback must take over.
	failing := &failingExecutor{wrapped: localExecutor{}, marker: "printf"}
	s, path := testStore(t, failing)
	ctx := context.Background()

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	m.Notes = "written through the fallback"
	require.NoError(t, s.Write(ctx, "dev-image", m, WriteOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got manifest.Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "written through the fallback", got.Notes)
}

func TestWriteAllStrategiesExhausted(t *testing.T) {
	// cat is the fallback's copy command; failing both printf and cat
	// scripts exhausts the write cascade.
	failing := &failingExecutor{
		wrapped: &failingExecutor{wrapped: localExecutor{}, marker: "printf"},
		marker:  "cat",
	}
	s, _ := testStore(t, failing)

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	err := s.Write(context.Background(), "dev-image", m, WriteOptions{})
	require.ErrorIs(t, err, ErrWriteFailed)
}

func TestWriteVerificationFailure(t *testing.T) {
	failing := &failingExecutor{wrapped: localExecutor{}, marker: verifySentinel}
	s, _ := testStore(t, failing)

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	err := s.Write(context.Background(), "dev-image", m, WriteOptions{})
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestWriteUnreachableGuest(t *testing.T) {
	s := New(unreachableExecutor{}, testLogger())
	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	err := s.Write(context.Background(), "dev-image", m, WriteOptions{})
	require.ErrorIs(t, err, ErrGuestUnavailable)
}

func TestWriteBackup(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	ctx := context.Background()

	first := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	require.NoError(t, s.Write(ctx, "dev-image", first, WriteOptions{}))

	second := manifest.NewCloneManifest(first, "dev-image", "proj-image")
	require.NoError(t, s.Write(ctx, "dev-image", second, WriteOptions{Backup: true}))

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	var got manifest.Manifest
	require.NoError(t, json.Unmarshal(backup, &got))
	require.Equal(t, first.Metadata.ID, got.Metadata.ID)
}

func TestWriteBackupWithoutOriginal(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	require.NoError(t, s.Write(context.Background(), "dev-image", m, WriteOptions{Backup: true}))
	_, err := os.Stat(path + ".backup")
	require.True(t, os.IsNotExist(err))
}

func TestReadNoManifest(t *testing.T) {
	s, _ := testStore(t, localExecutor{})
	m, err := s.Read(context.Background(), "dev-image")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestReadUnreachableGuest(t *testing.T) {
	s := New(unreachableExecutor{}, testLogger())
	m, err := s.Read(context.Background(), "dev-image")
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestReadCorruptManifest(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	m, err := s.Read(context.Background(), "dev-image")
	require.NoError(t, err, "corrupt manifests must never block the guest")
	require.Nil(t, m)
}

func TestReadToleratesSchemaInvalid(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"0.9","layers":[]}`), 0o644))

	// Default read path accepts schema drift so tooling can inspect it.
	m, err := s.Read(context.Background(), "dev-image")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "0.9", m.Version)

	// The validated path rejects the same content.
	_, err = s.ReadValidated(context.Background(), "dev-image")
	require.ErrorIs(t, err, ErrValidationFailed)
}

func TestReadValidatedAcceptsGoodManifest(t *testing.T) {
	s, _ := testStore(t, localExecutor{})
	ctx := context.Background()

	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	require.NoError(t, s.Write(ctx, "dev-image", m, WriteOptions{}))

	got, err := s.ReadValidated(ctx, "dev-image")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, m.Metadata.ID, got.Metadata.ID)
}

func TestWritePermissions(t *testing.T) {
	s, path := testStore(t, localExecutor{})
	m := manifest.NewDistroManifest("ubuntu-22.04", "dev-image", "22.04.3")
	require.NoError(t, s.Write(context.Background(), "dev-image", m, WriteOptions{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
