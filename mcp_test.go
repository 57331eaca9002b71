package todoapi_test

import (
	"encoding/json"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/calvinmclean/todoapi"
	todotest "github.com/calvinmclean/todoapi/test"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestMCP(t *testing.T) {
	api := todoapi.NewAPI().EnableMCP()

	serverURL, stop := todotest.TestServe(t, api)
	defer stop()

	mcpClient, err := client.NewStreamableHttpClient(serverURL + "/mcp")
	require.NoError(t, err)

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	_, err = mcpClient.Initialize(t.Context(), initReq)
	require.NoError(t, err)

	toolsResp, err := mcpClient.ListTools(t.Context(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	tools := map[string]mcp.Tool{}
	for _, tool := range toolsResp.Tools {
		tools[tool.Name] = tool
	}

	callTool := func(t *testing.T, name string, args map[string]any) (string, error) {
		resp, err := mcpClient.CallTool(t.Context(), mcp.CallToolRequest{
			Request: mcp.Request{},
			Params: mcp.CallToolParams{
				Name:      name,
				Arguments: args,
			},
		})
		if err != nil {
			return "", err
		}

		textContent, ok := resp.Content[0].(mcp.TextContent)
		require.True(t, ok)
		return textContent.Text, nil
	}

	t.Run("AllToolsExist", func(t *testing.T) {
		expectedToolNames := []string{
			"list_todos",
			"get_todo",
			"create_todo",
			"delete_todos",
		}
		require.ElementsMatch(t, expectedToolNames, slices.Collect(maps.Keys(tools)))
	})

	t.Run("CreateSchemaRequiresTitle", func(t *testing.T) {
		schema := tools["create_todo"].InputSchema

		require.ElementsMatch(t, []string{"title", "completed", "url"}, slices.Collect(maps.Keys(schema.Properties)))
		require.Equal(t, []string{"title"}, schema.Required)
	})

	t.Run("CreateTodo", func(t *testing.T) {
		text, err := callTool(t, "create_todo", map[string]any{"title": "from mcp"})
		require.NoError(t, err)
		require.Equal(t, `{"id":1,"title":"from mcp","completed":false,"url":""}`, text)
	})

	t.Run("CreateTodoInvalid", func(t *testing.T) {
		_, err := callTool(t, "create_todo", map[string]any{"title": ""})
		require.Error(t, err)
		require.Contains(t, err.Error(), "title: cannot be blank.")
	})

	t.Run("GetTodo", func(t *testing.T) {
		text, err := callTool(t, "get_todo", map[string]any{"id": 1})
		require.NoError(t, err)

		var todo todoapi.Todo
		require.NoError(t, json.Unmarshal([]byte(text), &todo))
		require.Equal(t, int64(1), todo.ID)
		require.Equal(t, "from mcp", todo.Title)
		require.False(t, todo.IsCompleted())
	})

	t.Run("GetTodoNotFound", func(t *testing.T) {
		_, err := callTool(t, "get_todo", map[string]any{"id": 99})
		require.Error(t, err)
		require.Equal(t, "resource not found", err.Error())
	})

	t.Run("ListTodos", func(t *testing.T) {
		text, err := callTool(t, "list_todos", nil)
		require.NoError(t, err)

		var todos []todoapi.Todo
		require.NoError(t, json.Unmarshal([]byte(text), &todos))
		require.Len(t, todos, 1)
		require.Equal(t, "from mcp", todos[0].Title)
	})

	t.Run("CreatedTodoIsServedByREST", func(t *testing.T) {
		resp, err := api.Client(serverURL).Get(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, "from mcp", resp.Data.Title)
	})

	t.Run("DeleteTodos", func(t *testing.T) {
		text, err := callTool(t, "delete_todos", nil)
		require.NoError(t, err)
		require.Equal(t, "deleted", text)

		text, err = callTool(t, "list_todos", nil)
		require.NoError(t, err)
		require.Equal(t, "[]", text)
	})
}

func TestMCPDisabledByDefault(t *testing.T) {
	w := todotest.TestRequest(t, todoapi.NewAPI(), httptest.NewRequest(http.MethodPost, "/mcp", http.NoBody))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMCPCustomPath(t *testing.T) {
	api := todoapi.NewAPI().EnableMCP().SetMCPPath("/tools")

	serverURL, stop := todotest.TestServe(t, api)
	defer stop()

	mcpClient, err := client.NewStreamableHttpClient(serverURL + "/tools")
	require.NoError(t, err)

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	_, err = mcpClient.Initialize(t.Context(), initReq)
	require.NoError(t, err)
}
