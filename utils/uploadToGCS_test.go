package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSPath(t *testing.T) {
	t.Setenv("GCS_BUCKET", "studio-exports")

	bucket, object, err := ParseGCSPath("gs://backups/exports/maker.json")
	require.NoError(t, err)
	assert.Equal(t, "backups", bucket)
	assert.Equal(t, "exports/maker.json", object)

	bucket, object, err = ParseGCSPath("gs://maker.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "studio-exports", bucket)
	assert.Equal(t, "maker.xlsx", object)

	_, _, err = ParseGCSPath("gs://backups/")
	assert.Error(t, err)

	t.Setenv("GCS_BUCKET", "")
	_, _, err = ParseGCSPath("gs://maker.json")
	assert.EqualError(t, err, "GCS_BUCKET is required")

	assert.True(t, IsGCSPath("gs://b/o"))
	assert.False(t, IsGCSPath("/tmp/gs://b"))
}
