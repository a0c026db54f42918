package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/flowdeck/internal/flowapi"
)

// Tool name constants.
const (
	ToolNameAggregate = "cfd_aggregate"
	ToolNameLeadTime  = "leadtime_summary"
)

// MaxOrders bounds the inline orders of one call.
const MaxOrders = 50_000

// ErrTooManyOrders indicates the inline orders exceed MaxOrders.
var ErrTooManyOrders = errors.New("too many orders")

// AggregateInput is the input schema for the cfd_aggregate tool.
type AggregateInput struct {
	Orders    [][]string `json:"orders,omitempty"     jsonschema:"orders as six RFC3339 timestamps each; omit to use the loaded dataset"`
	Start     string     `json:"start,omitempty"      jsonschema:"first bucket (e.g. 2025-05-16T19:00); default is the first timestamp floored to the hour"`
	End       string     `json:"end,omitempty"        jsonschema:"last bucket; default is the last timestamp"`
	Step      string     `json:"step,omitempty"       jsonschema:"bucket width as a Go duration (default 1m)"`
	SkipStart string     `json:"skip_start,omitempty" jsonschema:"start of a window left out of the axis"`
	SkipEnd   string     `json:"skip_end,omitempty"   jsonschema:"end of the skipped window"`
}

// LeadTimeInput is the input schema for the leadtime_summary tool.
type LeadTimeInput struct {
	Orders [][]string `json:"orders,omitempty" jsonschema:"orders as six RFC3339 timestamps each; omit to use the loaded dataset"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleAggregate(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input AggregateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Orders) > MaxOrders {
		return errorResult(fmt.Errorf("%w: %d (max %d)", ErrTooManyOrders, len(input.Orders), MaxOrders))
	}

	resp, err := s.service.Aggregate(ctx, flowapi.AggregateRequest(input))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(resp)
}

func (s *Server) handleLeadTime(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input LeadTimeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Orders) > MaxOrders {
		return errorResult(fmt.Errorf("%w: %d (max %d)", ErrTooManyOrders, len(input.Orders), MaxOrders))
	}

	resp, err := s.service.Stats(ctx, input.Orders)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(resp)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
