package web

import (
	"path/filepath"
	"strings"
)

const assetCacheControl = "public, max-age=3600"

// assetCandidates validates an asset request and returns the files that may
// satisfy it: the name as given, then with each extension appended.
// URL shape: <prefix><name>, resolved under <AssetsDir>/<subdir>/.
func (s *Server) assetCandidates(prefix, urlPath, subdir string, extensions []string) ([]string, bool) {
	if !strings.HasPrefix(urlPath, prefix) {
		return nil, false
	}
	name := strings.Trim(strings.TrimPrefix(urlPath, prefix), "/")
	if name == "" {
		return nil, false
	}

	safeName := filepath.Clean(name)
	if safeName == "." || strings.Contains(safeName, "..") ||
		filepath.IsAbs(safeName) || strings.ContainsAny(safeName, `/\`) {
		return nil, false
	}

	baseDir := filepath.Join(s.assetsBase(), subdir)
	resolved := filepath.Join(baseDir, safeName)
	rel, err := filepath.Rel(baseDir, resolved)
	if err != nil || strings.Contains(rel, "..") {
		return nil, false
	}

	candidates := []string{resolved}
	for _, ext := range extensions {
		candidates = append(candidates, resolved+ext)
	}
	return candidates, true
}

func (s *Server) assetsBase() string {
	if s.AssetsDir == "" {
		return "static"
	}
	return s.AssetsDir
}
