package params

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/litkg/kgctl/internal/application"
)

var (
	once       sync.Once
	AppdataDir string
)

func init() {
	once.Do(getAppDataDir)
}

func getAppDataDir() {
	dir, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	AppdataDir = filepath.Join(dir, application.AppName)

	if err := os.MkdirAll(AppdataDir, os.ModePerm); err != nil {
		panic(err)
	}
}

// StatePath returns the path of the bbolt state database.
func StatePath() string {
	return filepath.Join(AppdataDir, application.AppName+".bolt")
}

// CatalogPath returns the path of the article catalog database.
func CatalogPath() string {
	return filepath.Join(AppdataDir, "catalog.db")
}

// ConfigPath returns the path of the ini configuration file.
func ConfigPath() string {
	return filepath.Join(AppdataDir, "app_config.ini")
}

// DownloadDir returns the directory used for fetched installers.
func DownloadDir() string {
	return filepath.Join(AppdataDir, "downloads")
}
