package todoapi_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvinmclean/todoapi"
	todotest "github.com/calvinmclean/todoapi/test"
	"github.com/stretchr/testify/require"
)

func TestCLI(t *testing.T) {
	serverURL, stop := todotest.TestServe(t, todoapi.NewAPI())
	defer stop()

	tests := []struct {
		name           string
		args           []string
		expectedRegexp string
		expectedErr    bool
	}{
		{
			"ListEmpty",
			[]string{"list"},
			`^\[\]$`,
			false,
		},
		{
			"Post",
			[]string{"post", "-d", `{"title": "from cli"}`},
			`^\{"id":1,"title":"from cli","completed":false,"url":""\}$`,
			false,
		},
		{
			"PostMissingData",
			[]string{"post"},
			`required flag\(s\) "data" not set`,
			true,
		},
		{
			"PostError",
			[]string{"post", "-d", `{"url": "https://example.com"}`},
			"error running client from CLI: error creating todo: unexpected response with text: Invalid request.",
			true,
		},
		{
			"GetByID",
			[]string{"get", "1"},
			`^\{"id":1,"title":"from cli","completed":false,"url":""\}$`,
			false,
		},
		{
			"GetInvalidID",
			[]string{"get", "abc"},
			`error running client from CLI: invalid id "abc": must be an integer`,
			true,
		},
		{
			"GetMissingID",
			[]string{"get"},
			`accepts 1 arg\(s\), received 0`,
			true,
		},
		{
			"List",
			[]string{"list"},
			`^\[\{"id":1,"title":"from cli","completed":false,"url":""\}\]$`,
			false,
		},
		{
			"DeleteAll",
			[]string{"delete"},
			`^$`,
			false,
		},
		{
			"GetNotFound",
			[]string{"get", "1"},
			"error running client from CLI: error getting todo: unexpected response with text: Resource not found.",
			true,
		},
		{
			"HeadersAreSent",
			[]string{"list", "--headers", "X-Request-Id: abc"},
			`^\[\]$`,
			false,
		},
		{
			"InvalidHeader",
			[]string{"list", "--headers", "invalid"},
			`invalid header provided: "invalid"`,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := todoapi.NewAPI().Command()

			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(append(append([]string{"client"}, tt.args...), "--address", serverURL, "--pretty=false"))

			err := cmd.Execute()
			if tt.expectedErr {
				require.Error(t, err)
				require.Regexp(t, tt.expectedRegexp, err.Error())
				return
			}

			require.NoError(t, err)
			require.Regexp(t, tt.expectedRegexp, strings.TrimSpace(out.String()))
		})
	}
}

func TestCLIInvalidLogLevel(t *testing.T) {
	cmd := todoapi.NewAPI().Command()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"client", "--log-level", "loud", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid log level "loud"`)
}
