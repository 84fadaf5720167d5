package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 3, 9, 14, 5, 6, 789e6, time.UTC)

	path, err := saveSnapshot(dir, []byte{0xff, 0xd8}, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshot-20240309-140506.789.jpeg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)
}

func TestSaveSnapshotMissingDir(t *testing.T) {
	_, err := saveSnapshot(filepath.Join(t.TempDir(), "missing"), []byte{1}, time.Now())
	assert.Error(t, err)
}
