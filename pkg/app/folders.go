package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/identity"
	"tableflip.dev/syncpanel/pkg/logging"
)

var (
	// ErrNotDirectory is returned when a folder to add is not an existing
	// directory.
	ErrNotDirectory = errors.New("app: not an existing directory")
	// ErrInvalidSecret is returned for secrets that are not base32 strings
	// of at least 20 characters.
	ErrInvalidSecret = errors.New("app: invalid secret")
	// ErrUnknownFolder is returned when a folder key matches nothing.
	ErrUnknownFolder = errors.New("app: unknown folder")
)

var secretPattern = regexp.MustCompile(`^[A-Z2-7]{20,}$`)

// ValidateSecret checks the shape of a folder secret.
func ValidateSecret(secret string) error {
	if !secretPattern.MatchString(secret) {
		return fmt.Errorf("%w: %q", ErrInvalidSecret, secret)
	}
	return nil
}

// AddFolder starts syncing dir. An empty secret asks the daemon for a fresh
// read-write secret. The secret used is returned.
func (s *Service) AddFolder(ctx context.Context, dir, secret string) (string, error) {
	dir = strings.TrimSpace(dir)
	secret = strings.TrimSpace(secret)
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotDirectory)
	}
	if ok, err := afero.DirExists(s.Fs, dir); err != nil || !ok {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil && s.isOsFs() {
		dir = abs
	}

	err := s.mutate(ctx, "add_folder", func(ctx context.Context) error {
		if secret == "" {
			generated, err := s.Client.Secrets(ctx, "")
			if err != nil {
				return fmt.Errorf("app: generate secret: %w", err)
			}
			secret = generated.ReadWrite
		}
		if err := ValidateSecret(secret); err != nil {
			return err
		}
		if err := s.Client.AddFolder(ctx, dir, secret); err != nil {
			return fmt.Errorf("app: add folder %s: %w", dir, err)
		}
		logging.Info("folder added", zap.String("dir", dir))
		s.resync(ctx)
		return nil
	})
	if err != nil {
		return "", err
	}
	return secret, nil
}

// RemoveFolder stops syncing the folder matching key (secret, path or tag).
// On success the row and its devices are dropped at once.
func (s *Service) RemoveFolder(ctx context.Context, key string) error {
	return s.mutate(ctx, "remove_folder", func(ctx context.Context) error {
		secret, err := s.resolveSecret(ctx, key)
		if err != nil {
			return err
		}
		if err := s.Client.RemoveFolder(ctx, secret); err != nil {
			return fmt.Errorf("app: remove folder: %w", err)
		}
		s.Engine.ForgetFolder(secret)
		logging.Info("folder removed", zap.String("key", key))
		s.resync(ctx)
		return nil
	})
}

// Secrets returns the secrets of the folder matching key.
func (s *Service) Secrets(ctx context.Context, key string) (api.Secrets, error) {
	if s.Client == nil {
		return api.Secrets{}, errors.New("app: no daemon client configured")
	}
	secret, err := s.resolveSecret(ctx, key)
	if err != nil {
		return api.Secrets{}, err
	}
	return s.Client.Secrets(ctx, secret)
}

// FolderPrefs returns the preferences of the folder matching key.
func (s *Service) FolderPrefs(ctx context.Context, key string) (api.Prefs, error) {
	if s.Client == nil {
		return nil, errors.New("app: no daemon client configured")
	}
	secret, err := s.resolveSecret(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Client.FolderPrefs(ctx, secret)
}

// SetFolderPref updates one preference of the folder matching key.
func (s *Service) SetFolderPref(ctx context.Context, key, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("app: empty preference name")
	}
	return s.mutate(ctx, "set_folder_pref", func(ctx context.Context) error {
		secret, err := s.resolveSecret(ctx, key)
		if err != nil {
			return err
		}
		return s.Client.SetFolderPrefs(ctx, secret, map[string]string{name: strings.TrimSpace(value)})
	})
}

// resolveSecret maps a folder key to its secret, first from the local
// tables and then from a fresh folder listing.
func (s *Service) resolveSecret(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrUnknownFolder)
	}
	if f, ok := s.Engine.Snapshot().Folder(key); ok {
		return f.Secret, nil
	}
	folders, err := s.Client.Folders(ctx)
	if err != nil {
		return "", fmt.Errorf("app: list folders: %w", err)
	}
	for _, f := range folders {
		if f.Secret == key || f.Dir == key || identity.FixDecode(f.Dir) == key || identity.Tag(f.Dir) == key {
			return f.Secret, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFolder, key)
}

func (s *Service) isOsFs() bool {
	_, ok := s.Fs.(*afero.OsFs)
	return ok
}
