package assets

import "embed"

//go:embed all:web/*.html all:web/*.webmanifest
//go:embed all:web/dist
var WebFS embed.FS

//go:embed all:migrations
var MigrationsFS embed.FS

//go:embed all:cache_migrations
var CacheMigrationsFS embed.FS

// ShellManifest lists the URLs of the application shell that the
// interception layer caches on install, so the app boots with no network.
var ShellManifest = []string{
	"/",
	"/manifest.webmanifest",
	"/static/css/app.css",
	"/static/js/app.js",
	"/static/images/icon.svg",
}
