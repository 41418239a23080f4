package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/wslkit/wsl-image-manager/lib/guest"
	"github.com/wslkit/wsl-image-manager/lib/manifest"
)

// DefaultManifestPath is the well-known manifest location inside a guest.
const DefaultManifestPath = "/etc/wsl-image-manifest.json"

// verifySentinel is echoed by the post-write existence check. The write is
// not trusted until this value comes back.
const verifySentinel = "WSLIMG_MANIFEST_OK"

// Store persists manifests inside guest filesystems the host cannot mount.
// All I/O goes through the injected Executor as argv invocations. Store has
// no shared mutable state: operations on different guests may run
// concurrently, and callers needing one-writer-per-guest semantics must
// serialize externally.
type Store struct {
	exec guest.Executor
	log  *slog.Logger
	path string
}

// Option configures a Store.
type Option func(*Store)

// WithManifestPath overrides the in-guest manifest path.
func WithManifestPath(p string) Option {
	return func(s *Store) { s.path = p }
}

// New builds a Store over the given executor.
func New(exec guest.Executor, log *slog.Logger, opts ...Option) *Store {
	s := &Store{exec: exec, log: log, path: DefaultManifestPath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteOptions configures a single Write.
type WriteOptions struct {
	// Backup copies an existing manifest to a sibling .backup file before
	// overwriting. Backup failure is logged but never fails the write.
	Backup bool
}

// Write persists m into the named guest. The sequence is probe, ensure
// directory, optional backup, primary in-place write, fallback copy-in
// write, permission normalization, and an independent verification. Returns
// ErrGuestUnavailable, ErrWriteFailed or ErrVerificationFailed.
func (s *Store) Write(ctx context.Context, distro string, m *manifest.Manifest, opts WriteOptions) error {
	if err := s.probe(ctx, distro); err != nil {
		return err
	}

	dir := path.Dir(s.path)
	if res, err := s.run(ctx, distro, "mkdir", "-p", dir); err != nil || res.ExitCode != 0 {
		return fmt.Errorf("%w: create %s: %s", ErrWriteFailed, dir, describe(res, err))
	}

	if opts.Backup {
		s.backup(ctx, distro)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal manifest: %v", ErrWriteFailed, err)
	}

	if err := s.writeContent(ctx, distro, data); err != nil {
		return err
	}

	if res, err := s.run(ctx, distro, "chmod", "644", s.path); err != nil || res.ExitCode != 0 {
		s.log.Warn("manifest permission normalization failed", "distro", distro, "detail", describe(res, err))
	}

	return s.verify(ctx, distro)
}

// Read fetches the manifest from the named guest. Absence in every form --
// unreachable guest, missing file, unreadable file, malformed JSON -- yields
// (nil, nil): an image without a manifest is an expected state, and a
// corrupt manifest must never block the guest from being used.
func (s *Store) Read(ctx context.Context, distro string) (*manifest.Manifest, error) {
	raw, ok := s.readRaw(ctx, distro)
	if !ok {
		return nil, nil
	}
	var m manifest.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		s.log.Debug("manifest content is not valid JSON", "distro", distro, "error", err)
		return nil, nil
	}
	return &m, nil
}

// ReadValidated is Read with schema validation enforced. A parseable but
// schema-invalid manifest yields ErrValidationFailed instead of being
// silently accepted.
func (s *Store) ReadValidated(ctx context.Context, distro string) (*manifest.Manifest, error) {
	raw, ok := s.readRaw(ctx, distro)
	if !ok {
		return nil, nil
	}
	var untyped any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		s.log.Debug("manifest content is not valid JSON", "distro", distro, "error", err)
		return nil, nil
	}
	if res := manifest.ValidateRaw(untyped); !res.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(res.Errors, "; "))
	}
	var m manifest.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil
	}
	return &m, nil
}

// readRaw runs the read-side state machine up to content fetch. ok is false
// for every absence condition.
func (s *Store) readRaw(ctx context.Context, distro string) ([]byte, bool) {
	if err := s.probe(ctx, distro); err != nil {
		s.log.Debug("guest unreachable, treating manifest as absent", "distro", distro)
		return nil, false
	}
	if res, err := s.run(ctx, distro, "test", "-f", s.path); err != nil || res.ExitCode != 0 {
		return nil, false
	}
	res, err := s.run(ctx, distro, "cat", s.path)
	if err != nil || res.ExitCode != 0 {
		s.log.Debug("manifest fetch failed", "distro", distro, "detail", describe(res, err))
		return nil, false
	}
	return []byte(res.Stdout), true
}

func (s *Store) probe(ctx context.Context, distro string) error {
	res, err := s.run(ctx, distro, "echo", "probe")
	if err != nil || res.ExitCode != 0 {
		return fmt.Errorf("%w: %s: %s", ErrGuestUnavailable, distro, describe(res, err))
	}
	return nil
}

// backup copies an existing manifest aside. A missing original is a no-op.
func (s *Store) backup(ctx context.Context, distro string) {
	script := fmt.Sprintf("[ ! -f %s ] || cp %s %s.backup", s.path, s.path, s.path)
	if res, err := s.run(ctx, distro, "sh", "-c", script); err != nil || res.ExitCode != 0 {
		s.log.Warn("manifest backup failed", "distro", distro, "detail", describe(res, err))
	}
}

type writeStrategy struct {
	name string
	fn   func(ctx context.Context, distro string, data []byte) error
}

// writeContent tries each write strategy in order. First success wins;
// failures accumulate into the final error when all are exhausted.
func (s *Store) writeContent(ctx context.Context, distro string, data []byte) error {
	strategies := []writeStrategy{
		{"printf", s.writePrimary},
		{"copy-in", s.writeFallback},
	}
	var failures []string
	for _, strat := range strategies {
		err := strat.fn(ctx, distro, data)
		if err == nil {
			return nil
		}
		s.log.Debug("write strategy failed", "distro", distro, "strategy", strat.name, "error", err)
		failures = append(failures, fmt.Sprintf("%s: %v", strat.name, err))
	}
	return fmt.Errorf("%w: %s", ErrWriteFailed, strings.Join(failures, "; "))
}

// writePrimary emits the manifest as an escaped literal through printf. Any
// nonzero exit or stderr output fails the attempt, not the operation.
func (s *Store) writePrimary(ctx context.Context, distro string, data []byte) error {
	script := fmt.Sprintf(`printf '%%s' "%s" > %s`, escapeShellArg(string(data)), s.path)
	res, err := s.run(ctx, distro, "sh", "-c", script)
	if err != nil || res.ExitCode != 0 || res.Stderr != "" {
		return fmt.Errorf("in-place write: %s", describe(res, err))
	}
	return nil
}

// writeFallback stages the manifest in a host temp file and copies it in
// through the guest's view of the host filesystem.
func (s *Store) writeFallback(ctx context.Context, distro string, data []byte) error {
	tmp, err := os.CreateTemp("", "wslimg-manifest-*.json")
	if err != nil {
		return fmt.Errorf("stage temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("stage temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stage temp file: %w", err)
	}

	guestPath := guest.TranslateHostPath(tmp.Name())
	script := fmt.Sprintf(`cat "%s" > %s`, escapeShellArg(guestPath), s.path)
	if res, err := s.run(ctx, distro, "sh", "-c", script); err != nil || res.ExitCode != 0 {
		return fmt.Errorf("copy from %s: %s", guestPath, describe(res, err))
	}
	return nil
}

// verify independently confirms the manifest exists before trusting the
// write.
func (s *Store) verify(ctx context.Context, distro string) error {
	script := fmt.Sprintf("test -f %s && echo %s", s.path, verifySentinel)
	res, err := s.run(ctx, distro, "sh", "-c", script)
	if err != nil || res.ExitCode != 0 || strings.TrimSpace(res.Stdout) != verifySentinel {
		return fmt.Errorf("%w: %s: %s", ErrVerificationFailed, s.path, describe(res, err))
	}
	return nil
}

func (s *Store) run(ctx context.Context, distro string, argv ...string) (*guest.Result, error) {
	return s.exec.Execute(ctx, distro, argv)
}

func describe(res *guest.Result, err error) string {
	if err != nil {
		return err.Error()
	}
	if res == nil {
		return "no result"
	}
	detail := fmt.Sprintf("exit %d", res.ExitCode)
	if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
		detail += ": " + stderr
	}
	return detail
}
