package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions are tried in order when the hint has no extension.
var audioExtensions = []string{".mp3", ".ogg", ".wav", ".m4a"}

const (
	contentTypeMP3 = "audio/mpeg"
	contentTypeOGG = "audio/ogg"
	contentTypeWAV = "audio/wav"
	contentTypeM4A = "audio/mp4"
)

// handleAudio serves the track for a bgm hint from <AssetsDir>/audio/.
// URL shape: /audio/<hint>[.ext]. Only hints some chapter names are served.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	candidates, ok := s.assetCandidates("/audio/", r.URL.Path, "audio", audioExtensions)
	if !ok || !s.knownTrack(filepath.Base(candidates[0])) {
		http.NotFound(w, r)
		return
	}
	for _, p := range candidates {
		if serveAsset(w, r, p, audioContentType(p)) {
			return
		}
	}
	http.NotFound(w, r)
}

// knownTrack reports whether name, with or without extension, is the bgm
// hint of a chapter in the story being played.
func (s *Server) knownTrack(name string) bool {
	hint := strings.TrimSuffix(name, filepath.Ext(name))
	for _, n := range s.Play.Story().Chapters {
		if n.Assets.BGM != "" && (n.Assets.BGM == hint || n.Assets.BGM == name) {
			return true
		}
	}
	return false
}

// serveAsset writes the regular file at p and reports whether it existed.
func serveAsset(w http.ResponseWriter, r *http.Request, p, contentType string) bool {
	f, err := os.Open(p) // #nosec G304 -- callers validate p against the assets dir
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", assetCacheControl)
	http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
	return true
}

func audioContentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".ogg":
		return contentTypeOGG
	case ".wav":
		return contentTypeWAV
	case ".m4a":
		return contentTypeM4A
	default:
		return contentTypeMP3
	}
}
