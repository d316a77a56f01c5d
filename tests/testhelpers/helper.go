// Package testhelpers provides helpers for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/nexus-automation/nexusprobe/core"
)

// eventTimeout is the maximum time to wait for a call to finish
const eventTimeout = 10 * time.Second

// GetContainerProvider returns the container provider type to use for the tests.
// If we detect podman is available, we use it, otherwise we use docker.
func GetContainerProvider() testcontainers.ProviderType {
	if _, err := exec.LookPath("podman"); err == nil {
		fmt.Println("Podman detected. Remember to set TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED=true;")
		return testcontainers.ProviderPodman
	}
	return testcontainers.ProviderDocker
}

// GetResult executes the query and waits for the call to finish. It returns
// all rows, the header and the observed states.
func GetResult(t *testing.T, d *core.Connection, query string) ([]core.Row, core.Header, []core.CallState, error) {
	t.Helper()

	var states []core.CallState
	call := d.Execute(query, func(state core.CallState, _ *core.Call) {
		states = append(states, state)
	})

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := call.Wait(ctx); err != nil {
		return nil, nil, states, err
	}

	result, err := call.GetResult()
	require.NoError(t, err)

	rows, err := result.Rows(0, -1)
	require.NoError(t, err)

	return rows, result.Header(), states, nil
}

// GetSchemas returns a list of schema names from the given structure.
func GetSchemas(t *testing.T, structure []*core.Structure) []string {
	t.Helper()

	var schemas []string
	for _, s := range structure {
		if s.Type == core.StructureTypeNone {
			schemas = append(schemas, s.Name)
		}
	}
	return schemas
}

// GetModels returns a list of model names (views, table, etc) from the given structure.
func GetModels(t *testing.T, structure []*core.Structure, modelType core.StructureType) []string {
	t.Helper()

	out := make([]string, 0)
	for _, s := range structure {
		for _, c := range s.Children {
			if c.Type == modelType {
				out = append(out, c.Name)
			}
		}
	}
	return out
}

// GetTestDataPath returns the path to the testdata directory.
func GetTestDataPath() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get current file path")
	}

	return filepath.Join(filepath.Dir(currentFile), "../testdata"), nil
}

// GetTestDataFile returns a file from the testdata directory.
func GetTestDataFile(filename string) (*os.File, error) {
	testDataPath, err := GetTestDataPath()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(testDataPath, filename)
	return os.Open(path)
}
