package auth

import "strings"

// RouteClass is the closed set of categories the guard decides over.
type RouteClass int

const (
	// RouteClassLogin is the admin login page; always passes through.
	RouteClassLogin RouteClass = iota
	// RouteClassAPI covers /api/ paths; API endpoints do their own auth.
	RouteClassAPI
	// RouteClassAdmin covers admin pages other than login; session required.
	RouteClassAdmin
	// RouteClassPublic is everything else.
	RouteClassPublic
)

func (rc RouteClass) String() string {
	switch rc {
	case RouteClassLogin:
		return "login"
	case RouteClassAPI:
		return "api"
	case RouteClassAdmin:
		return "admin"
	default:
		return "public"
	}
}

// ClassifyPath maps a request path to its route class. Order matters: the
// login page is carved out of the admin section before the prefix check.
func ClassifyPath(path string) RouteClass {
	switch {
	case strings.HasPrefix(path, "/api/"):
		return RouteClassAPI
	case path == "/admin/login" || strings.HasPrefix(path, "/admin/login/"):
		return RouteClassLogin
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return RouteClassAdmin
	default:
		return RouteClassPublic
	}
}
