package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modernsales/pawnshop/pkg/config"
)

const (
	AppName       = "ModernSalesApp"
	DBFileName    = "sales.sqlite"
	LogsDirName   = "logs"
	LogFileName   = "app.log"
	probeFileName = ".write_test"
)

// Layout is the resolved set of on-disk locations.
type Layout struct {
	DataDir string
	LogsDir string
	LogFile string
	DBPath  string
}

// Resolver finds the database and log locations. ExeDir and UserDataDir are
// fields so tests can point them at temp directories.
type Resolver struct {
	ExeDir      string
	UserDataDir string
}

// NewResolver uses the running executable's directory and the per-user
// cache directory (LocalAppData on Windows).
func NewResolver() (*Resolver, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	userDir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate user data dir: %w", err)
	}
	return &Resolver{ExeDir: filepath.Dir(exe), UserDataDir: userDir}, nil
}

// AppDataDir is the per-user application directory.
func (r *Resolver) AppDataDir() string {
	return filepath.Join(r.UserDataDir, AppName)
}

// Resolve applies config overrides and then the discovery rules: a portable
// sales.sqlite next to the executable, an existing per-user file, the
// executable directory when writable, else the per-user path.
func (r *Resolver) Resolve(cfg config.PathsConfig) (Layout, error) {
	dataDir := strings.TrimSpace(cfg.DataDir)
	if dataDir == "" {
		dataDir = r.AppDataDir()
	}
	layout := Layout{
		DataDir: dataDir,
		LogsDir: filepath.Join(dataDir, LogsDirName),
	}
	layout.LogFile = filepath.Join(layout.LogsDir, LogFileName)

	if dbPath := strings.TrimSpace(cfg.DBPath); dbPath != "" {
		layout.DBPath = dbPath
		return layout, nil
	}
	layout.DBPath = r.effectiveDBPath(dataDir)
	return layout, nil
}

func (r *Resolver) effectiveDBPath(dataDir string) string {
	portable := filepath.Join(r.ExeDir, DBFileName)
	if fileExists(portable) {
		return portable
	}
	appData := filepath.Join(dataDir, DBFileName)
	if fileExists(appData) {
		return appData
	}
	if dirWritable(r.ExeDir) {
		return portable
	}
	return appData
}

// EnsureDirectories creates the data and logs directories.
func (l Layout) EnsureDirectories() error {
	for _, dir := range []string{l.DataDir, l.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// OpenLogFile opens the log file for appending, creating it when absent.
func (l Layout) OpenLogFile() (*os.File, error) {
	return os.OpenFile(l.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirWritable(dir string) bool {
	if dir == "" {
		return false
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false
	}
	probe := filepath.Join(dir, probeFileName)
	if err := os.WriteFile(probe, []byte("x"), 0o644); err != nil {
		return false
	}
	if err := os.Remove(probe); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false
	}
	return true
}
