package todoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultMCPPath = "/mcp"

// MCPConfig controls the MCP server that exposes Todo operations as tools
type MCPConfig struct {
	Enabled    bool
	Path       string
	ServerOpts []server.ServerOption
	HTTPOpts   []server.StreamableHTTPOption
	Tools      []server.ServerTool
}

// EnableMCP mounts an MCP streamable HTTP endpoint at /mcp with tools to list, get, create and delete Todos
func (a *API) EnableMCP() *API {
	a.mcpConfig.Enabled = true
	if a.mcpConfig.Path == "" {
		a.mcpConfig.Path = defaultMCPPath
	}
	return a
}

// SetMCPPath overrides the default /mcp path
func (a *API) SetMCPPath(path string) *API {
	a.mcpConfig.Path = path
	return a
}

// AddMCPServerOptions adds options used when creating the MCP server
func (a *API) AddMCPServerOptions(opts ...server.ServerOption) *API {
	a.mcpConfig.ServerOpts = append(a.mcpConfig.ServerOpts, opts...)
	return a
}

// AddMCPHTTPOptions adds options used when creating the streamable HTTP handler
func (a *API) AddMCPHTTPOptions(opts ...server.StreamableHTTPOption) *API {
	a.mcpConfig.HTTPOpts = append(a.mcpConfig.HTTPOpts, opts...)
	return a
}

// AddMCPTools adds custom tools next to the default Todo tools
func (a *API) AddMCPTools(tools ...server.ServerTool) *API {
	a.mcpConfig.Tools = append(a.mcpConfig.Tools, tools...)
	return a
}

// MCPHandler creates the streamable HTTP handler for the MCP server
func (a *API) MCPHandler() (http.Handler, error) {
	tools, err := a.mcpTools()
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer("todoapi", "", a.mcpConfig.ServerOpts...)
	s.AddTools(append(tools, a.mcpConfig.Tools...)...)

	return server.NewStreamableHTTPServer(s, a.mcpConfig.HTTPOpts...), nil
}

// createTodoInput is only used to generate the input schema for the create tool
type createTodoInput struct {
	Title     string  `json:"title" jsonschema:"description=Title of the todo,minLength=1"`
	Completed *bool   `json:"completed,omitempty" jsonschema:"description=Whether the todo is done. Default is false"`
	URL       *string `json:"url,omitempty" jsonschema:"description=Optional reference URL or link"`
}

func createTodoSchema() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&createTodoInput{})
	schema.Version = ""

	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("error encoding schema: %w", err)
	}
	return data, nil
}

type mcpServer struct {
	storage Storage
}

func (a *API) mcpTools() ([]server.ServerTool, error) {
	m := mcpServer{a.storage}

	createSchema, err := createTodoSchema()
	if err != nil {
		return nil, err
	}

	return []server.ServerTool{
		{
			Tool: mcp.NewTool(
				"list_todos",
				mcp.WithDescription("list all todos"),
			),
			Handler: m.list,
		},
		{
			Tool: mcp.NewTool(
				"get_todo",
				mcp.WithDescription("get a todo by ID"),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Numeric identifier of the todo")),
			),
			Handler: m.get,
		},
		{
			Tool:    mcp.NewToolWithRawSchema("create_todo", "create a new todo", createSchema),
			Handler: m.create,
		},
		{
			Tool: mcp.NewTool(
				"delete_todos",
				mcp.WithDescription("delete all todos"),
			),
			Handler: m.deleteAll,
		},
	}, nil
}

func (m mcpServer) list(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	todos, err := m.storage.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, todo := range todos {
		todo.applyDefaults()
	}

	return newToolResultJSON(todos)
}

func (m mcpServer) get(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return nil, err
	}

	todo, err := m.storage.Get(ctx, int64(id))
	if err != nil {
		return nil, err
	}

	return newToolResultJSON(todo.WithDefaults())
}

func (m mcpServer) create(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := json.Marshal(request.GetArguments())
	if err != nil {
		return nil, fmt.Errorf("error encoding arguments: %w", err)
	}

	var input createTodoInput
	err = json.Unmarshal(args, &input)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	todo := &Todo{Title: input.Title, Completed: input.Completed, URL: input.URL}
	err = todo.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid todo: %w", err)
	}

	created, err := m.storage.Create(ctx, todo)
	if err != nil {
		return nil, err
	}

	return newToolResultJSON(created.WithDefaults())
}

func (m mcpServer) deleteAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := m.storage.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText("deleted"), nil
}

func newToolResultJSON(out any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
