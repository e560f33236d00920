package namespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"aws", "gh", "kube-ctl", "A1-b2", "123"}
	for _, s := range valid {
		assert.NoError(t, ValidateSlug(s), "expected %q to be valid", s)
	}

	invalid := map[string]string{
		"":        "",
		"aws__s3": "",
		"has space": "",
		"weird/slug": "",
		"under_score": "",
	}
	for s := range invalid {
		err := ValidateSlug(s)
		require.Error(t, err, "expected %q to be invalid", s)
		var target *InvalidSlugError
		assert.ErrorAs(t, err, &target)
	}
}

func TestNamespacedAndSplitRoundTrip(t *testing.T) {
	slugs := []string{"aws", "gh", "my-cli"}
	tools := []string{"get", "s3_ls", "list-buckets"}

	for _, s := range slugs {
		for _, tool := range tools {
			name := Namespaced(s, tool)
			gotSlug, gotTool, err := Split(name)
			require.NoError(t, err)
			assert.Equal(t, s, gotSlug)
			assert.Equal(t, tool, gotTool)
		}
	}
}

func TestSplitMalformed(t *testing.T) {
	_, _, err := Split("no-separator-here")
	require.Error(t, err)
	var target *MalformedNameError
	assert.ErrorAs(t, err, &target)
}

func TestSplitFirstSeparatorWins(t *testing.T) {
	// A tool name that itself contains the separator should still split at
	// the first occurrence, keeping the slug unambiguous.
	slug, tool, err := Split("aws__s3__ls")
	require.NoError(t, err)
	assert.Equal(t, "aws", slug)
	assert.Equal(t, "s3__ls", tool)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "[via aws] list buckets", Describe("aws", "list buckets"))
}
