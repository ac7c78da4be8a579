package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// HostingServer is a fake source hosting service. It serves branch archives
// and arbitrary files from memory and counts requests per path.
type HostingServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	statuses map[string]int
	hits     map[string]int
}

// NewHostingServer starts a fake hosting server that is closed with the test.
func NewHostingServer(t *testing.T) *HostingServer {
	t.Helper()

	s := &HostingServer{
		files:    make(map[string][]byte),
		statuses: make(map[string]int),
		hits:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *HostingServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, forced := s.statuses[r.URL.Path]
	body, ok := s.files[r.URL.Path]
	s.mu.Unlock()

	if forced {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(body)
}

// ArchivePath returns the request path of a branch archive.
func ArchivePath(repo, branch string) string {
	return "/" + repo + "/archive/refs/heads/" + branch + ".zip"
}

// SetArchive serves data as the branch archive of repo.
func (s *HostingServer) SetArchive(repo, branch string, data []byte) {
	s.SetFile(ArchivePath(repo, branch), data)
}

// SetFile serves data at path.
func (s *HostingServer) SetFile(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}

// SetStatus makes path answer with status.
func (s *HostingServer) SetStatus(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Hits returns the number of requests made for path.
func (s *HostingServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests made for any path.
func (s *HostingServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.hits {
		n += c
	}
	return n
}
