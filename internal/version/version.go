// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// UserAgent is sent with every outbound HTTP request.
const UserAgent = "ls-skymap/" + Version + " (Star Map)"

// Milestones:
// 0.3.0 - Query console, NASA SkyView panel, window front end
// 0.2.0 - Constellation focus, zoom camera, Wikipedia metadata with cache
// 0.1.0 - Initial release: braille sky map, hover hit-testing, headless modes
