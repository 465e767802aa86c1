package catalog

import (
	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/config"
)

// Common directory keys accepted in general.common-directories.
const (
	DirUploads   = "uploads"
	DirThemes    = "themes"
	DirPlugins   = "plugins"
	DirMuPlugins = "mu-plugins"
)

// Environment answers the questions the catalog needs from the hosting install.
type Environment interface {
	// CommonDirectory resolves a common directory key to a path, or "" when unknown.
	CommonDirectory(key string) string
	// InstallRoot is the path a leading "~/" in custom entries expands to.
	InstallRoot() string
	// DatabaseName is the schema shown as the database row's path.
	DatabaseName() string
}

// SiteEnvironment resolves directories from static site configuration.
type SiteEnvironment struct {
	site config.SiteConfig
}

// NewSiteEnvironment creates an Environment from the site section of the config.
func NewSiteEnvironment(site config.SiteConfig) *SiteEnvironment {
	return &SiteEnvironment{site: site}
}

func (e *SiteEnvironment) CommonDirectory(key string) string {
	switch key {
	case DirUploads:
		return e.site.UploadsDir
	case DirThemes:
		return e.site.ThemesDir
	case DirPlugins:
		return e.site.PluginsDir
	case DirMuPlugins:
		return e.site.MuPluginsDir
	default:
		return ""
	}
}

func (e *SiteEnvironment) InstallRoot() string {
	return e.site.InstallRoot
}

func (e *SiteEnvironment) DatabaseName() string {
	return e.site.Database.Name
}
