package http

import "strings"

// Candidate chains. The backend's routing has drifted across deployments, so
// each logical operation is an ordered list of path templates instead of a
// single URL; the probe exhausts the list before declaring failure. New
// deployments extend these lists, they do not edit call sites.
var (
	sessionStatusPaths = []string{
		"/api/sessions/%s/status",
		"/api/sessions/%s",
		"/api/session/%s",
		"/api/sessions/%s/detail",
		"/sessions/%s",
	}
	quizDetailPaths = []string{
		"/api/quizzes/%s",
		"/api/quiz/%s",
		"/quizzes/%s",
	}
)

// expand builds the full candidate URL list for one operation: every path
// template against the primary base URL, then the alternates in order.
func expand(bases []string, paths []string, id string) []string {
	candidates := make([]string, 0, len(bases)*len(paths))
	for _, base := range bases {
		base = strings.TrimRight(base, "/")
		for _, path := range paths {
			candidates = append(candidates, base+strings.Replace(path, "%s", id, 1))
		}
	}
	return candidates
}
