package clirunner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagDefinitionsBoolFlag(t *testing.T) {
	help := `Usage: tool [OPTIONS]

Options:
  -v, --verbose    Enable verbose output
  --dry-run        Do not make any changes
`
	schema, err := ParseFlagDefinitions("tool", help)
	require.NoError(t, err)

	verbose, ok := schema.Properties["verbose"]
	require.True(t, ok)
	assert.Equal(t, ArgBool, verbose.Type)
	assert.Equal(t, "-v", verbose.ShortFlag)
	assert.Equal(t, "Enable verbose output", verbose.Description)

	dryRun, ok := schema.Properties["dry_run"]
	require.True(t, ok)
	assert.Equal(t, ArgBool, dryRun.Type)
}

func TestParseFlagDefinitionsRequiredValueFlag(t *testing.T) {
	help := `Options:
  --region <REGION>   AWS region to use
  --name NAME         Resource name
`
	schema, err := ParseFlagDefinitions("tool", help)
	require.NoError(t, err)

	region, ok := schema.Properties["region"]
	require.True(t, ok)
	assert.Equal(t, ArgString, region.Type)
	assert.Equal(t, "AWS region to use", region.Description)

	name, ok := schema.Properties["name"]
	require.True(t, ok)
	assert.Equal(t, ArgString, name.Type)
}

func TestParseFlagDefinitionsOptionalValueFlag(t *testing.T) {
	help := `Options:
  --output [format]   Output format, defaults to text
`
	schema, err := ParseFlagDefinitions("tool", help)
	require.NoError(t, err)

	output, ok := schema.Properties["output"]
	require.True(t, ok)
	assert.Equal(t, ArgOptionalString, output.Type)
}

func TestParseFlagDefinitionsNoFlagsIsError(t *testing.T) {
	_, err := ParseFlagDefinitions("tool", "no flags here, just prose")
	require.Error(t, err)
	var target *HelpParseFailedError
	assert.ErrorAs(t, err, &target)
}

func TestArgumentSchemaToJSONSchemaMarksRequiredForStringFlags(t *testing.T) {
	schema := ArgumentSchema{
		Properties: map[string]ArgProperty{
			"region": {Type: ArgString, LongFlag: "--region"},
			"dry_run": {Type: ArgBool, LongFlag: "--dry-run"},
		},
	}
	raw := schema.ToJSONSchema()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	required, ok := decoded["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "region")
	assert.NotContains(t, required, "dry_run")
}

func TestExtractDescriptionStripsAngleBracketPlaceholder(t *testing.T) {
	assert.Equal(t, "AWS region to use", extractDescription(" <REGION>   AWS region to use"))
}

func TestExtractDescriptionStripsBracketPlaceholder(t *testing.T) {
	assert.Equal(t, "Output format", extractDescription(" [format]   Output format"))
}

func TestExtractDescriptionEmptyWhenNothingRemains(t *testing.T) {
	assert.Equal(t, "", extractDescription(" <REGION>"))
}
