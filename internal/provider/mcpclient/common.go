package mcpclient

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/porter-mcp/porter/internal/provider"
)

// mergeEnv returns the current process environment with overrides applied
// on top, in the `KEY=VALUE` form exec.Cmd.Env expects. A spawned MCP
// server inherits nothing else beyond this and its working directory.
func mergeEnv(overrides map[string]string) []string {
	base := os.Environ()
	out := make([]string, 0, len(base)+len(overrides))
	out = append(out, base...)
	for k, v := range overrides {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

// fallbackSchema is used whenever an SDK tool's input schema can't be
// marshaled, so a provider never refuses to surface a tool over a schema
// hiccup.
var fallbackSchema = json.RawMessage(`{"type":"object"}`)

// marshalSchema converts an SDK tool's input schema into the raw JSON the
// provider.Tool contract expects.
func marshalSchema(schema any) json.RawMessage {
	if schema == nil {
		return fallbackSchema
	}
	raw, err := json.Marshal(schema)
	if err != nil || len(raw) == 0 {
		return fallbackSchema
	}
	return raw
}

// convertTools turns a remote server's SDK tool list into un-namespaced
// provider.Tool values. The Registry, not the provider, applies the slug
// prefix and "[via slug]" description tag.
func convertTools(sdkTools []*mcp.Tool) []provider.Tool {
	out := make([]provider.Tool, 0, len(sdkTools))
	for _, t := range sdkTools {
		out = append(out, provider.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: marshalSchema(t.InputSchema),
		})
	}
	return out
}

// contentToJSON flattens an SDK CallToolResult's content blocks into a
// single JSON value for provider.CallResult.Content. Text blocks are the
// common case; anything else round-trips through its own JSON encoding so
// no content is silently dropped.
func contentToJSON(result *mcp.CallToolResult) json.RawMessage {
	if result == nil {
		return json.RawMessage(`null`)
	}
	if len(result.Content) == 1 {
		if text, ok := result.Content[0].(*mcp.TextContent); ok {
			if raw, err := json.Marshal(text.Text); err == nil {
				return raw
			}
		}
	}
	texts := make([]string, 0, len(result.Content))
	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			texts = append(texts, text.Text)
		}
	}
	if len(texts) > 0 {
		if raw, err := json.Marshal(texts); err == nil {
			return raw
		}
	}
	raw, err := json.Marshal(result.Content)
	if err != nil {
		return json.RawMessage(`null`)
	}
	return raw
}
