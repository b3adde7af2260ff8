// Package nav builds and parses the routes of the application screens.
package nav

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// Screen names a top-level screen.
type Screen string

const (
	Library Screen = "library"
	Player  Screen = "player"
)

// Route addresses a screen. Player routes carry the media URI.
type Route struct {
	Screen Screen
	URI    mo.Option[string]
}

// LibraryRoute returns the route of the library screen.
func LibraryRoute() string {
	return string(Library)
}

// PlayerRoute returns the route of the player screen for uri.
func PlayerRoute(uri string) string {
	return string(Player) + "/" + url.PathEscape(uri)
}

// Parse decodes a route built by LibraryRoute or PlayerRoute.
func Parse(route string) (Route, error) {
	screen, arg, hasArg := strings.Cut(route, "/")

	switch Screen(screen) {
	case Library:
		if hasArg {
			return Route{}, fmt.Errorf("route %q: library takes no argument", route)
		}
		return Route{Screen: Library, URI: mo.None[string]()}, nil
	case Player:
		if !hasArg || arg == "" {
			return Route{}, fmt.Errorf("route %q: missing media uri", route)
		}
		uri, err := url.PathUnescape(arg)
		if err != nil {
			return Route{}, fmt.Errorf("route %q: %w", route, err)
		}
		return Route{Screen: Player, URI: mo.Some(uri)}, nil
	default:
		return Route{}, fmt.Errorf("unknown screen %q", screen)
	}
}

// IsPlayer reports whether the route addresses the player screen.
func (r Route) IsPlayer() bool {
	return r.Screen == Player
}

// String rebuilds the route.
func (r Route) String() string {
	if uri, ok := r.URI.Get(); ok && r.IsPlayer() {
		return PlayerRoute(uri)
	}
	return string(r.Screen)
}
