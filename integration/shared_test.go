//go:build basic || database || integration

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedTrackstatPath holds the path to a shared trackstat binary built once for all tests.
	sharedTrackstatPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getTrackstatBinary returns the path to the trackstat binary, building it once if needed.
func getTrackstatBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "trackstat-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "trackstat")
		buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/trackstat")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build trackstat: %v\n%s", err, out))
		}

		sharedTrackstatPath = binPath
	})

	return sharedTrackstatPath
}

// fixtureCSV is a small export with a numerical and a duration feature.
const fixtureCSV = `FeatureName,Timestamp,Value,Note
Weight,2024-03-01T08:00:00Z,71.5,
Weight,2024-03-02T08:00:00Z,71.2,
Weight,2024-03-03T08:00:00Z,70.9,
Weight,2024-03-04T08:00:00Z,71.0,
Sleep,2024-03-01T07:00:00Z,7:30:00,
Sleep,2024-03-02T07:00:00Z,6:45:00,restless
Sleep,2024-03-03T07:00:00Z,8:05:00,
`

// fixtureGraph plots both fixture features over the fixture window.
const fixtureGraph = `name: Fixture
duration: 30 days
end: 2024-03-10T00:00:00Z
features:
  - feature: Weight
  - feature: Sleep
    plotting: daily
`

// writeFixtures writes the fixture CSV and graph into a fresh directory.
func writeFixtures(t *testing.T) (csvPath, graphPath string) {
	t.Helper()
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "export.csv")
	graphPath = filepath.Join(dir, "graph.yaml")
	if err := os.WriteFile(csvPath, []byte(fixtureCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(graphPath, []byte(fixtureGraph), 0o600); err != nil {
		t.Fatal(err)
	}
	return csvPath, graphPath
}

// runTrackstat runs the binary with extra environment and returns its combined output.
func runTrackstat(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getTrackstatBinary(), args...)
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}
