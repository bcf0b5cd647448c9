package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg reads a whole-number argument. JSON numbers arrive as float64;
// numeric strings are accepted too.
func intArg(req mcp.CallToolRequest, key string) (int, bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, true, fmt.Errorf("%s must be a whole number", key)
		}
		return int(n), true, nil
	case int:
		return n, true, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number", key)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}

func requireInt(req mcp.CallToolRequest, key string) (int, error) {
	n, ok, err := intArg(req, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return n, nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	s, _ := req.GetArguments()[key].(string)
	return s
}

// decodeArg converts a generic argument value into a typed one.
func decodeArg(input interface{}, out interface{}) error {
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
