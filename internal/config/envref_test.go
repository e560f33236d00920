package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvRefAcceptsOnlyBracedForm(t *testing.T) {
	cases := []struct {
		value string
		want  string
		ok    bool
	}{
		{"${FOO}", "FOO", true},
		{"${AWS_PROFILE}", "AWS_PROFILE", true},
		{"$FOO", "", false},
		{"literal", "", false},
		{"${", "", false},
		{"${}", "", true},
	}
	for _, tc := range cases {
		got, ok := parseEnvRef(tc.value)
		assert.Equal(t, tc.ok, ok, tc.value)
		assert.Equal(t, tc.want, got, tc.value)
	}
}

func TestResolveEnvSubstitutesFromProcessEnv(t *testing.T) {
	t.Setenv("PORTER_CONFIG_TEST_VAR", "secret-value")

	resolved := resolveEnv(map[string]string{"TOKEN": "${PORTER_CONFIG_TEST_VAR}"})
	assert.Equal(t, "secret-value", resolved["TOKEN"])
}

func TestResolveEnvUnsetVariableResolvesEmpty(t *testing.T) {
	resolved := resolveEnv(map[string]string{"TOKEN": "${PORTER_CONFIG_TEST_DEFINITELY_UNSET}"})
	assert.Equal(t, "", resolved["TOKEN"])
}

func TestResolveEnvNilForEmptyInput(t *testing.T) {
	assert.Nil(t, resolveEnv(nil))
}
