package todoapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	defaultServeAddress  = ":8080"
	defaultClientAddress = "http://localhost:8080"
)

func init() {
	cobra.EnableCaseInsensitive = true
}

// RunCLI is an alternative entrypoint to running the API beyond just Serve. It allows running a server or client based on the provided
// CLI arguments. Use this in your main() function
func (a *API) RunCLI() {
	err := a.Command().Execute()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

type cliArgs struct {
	address  string
	pretty   bool
	headers  []string
	logLevel string
	mcp      bool
}

// Command creates the root command. Running it without a subcommand is the same as "serve"
func (a *API) Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "todoapi",
		Short:             "todo list REST API server and client",
		PersistentPreRunE: a.setupLogging,
		RunE:              a.serveCmd,
		SilenceUsage:      true,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the API server",
		RunE:  a.serveCmd,
	}
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "HTTP client for interacting with Todos",
	}

	rootCmd.PersistentFlags().StringVar(&a.cliArgs.address, "address", os.Getenv("ADDRESS"), "bind address for server or target host address for client")
	rootCmd.PersistentFlags().StringVar(&a.cliArgs.logLevel, "log-level", envOrDefault("LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&a.cliArgs.mcp, "mcp", false, "enable the MCP endpoint")
	serveCmd.Flags().BoolVar(&a.cliArgs.mcp, "mcp", false, "enable the MCP endpoint")

	clientCmd.PersistentFlags().BoolVar(&a.cliArgs.pretty, "pretty", true, "pretty print JSON if enabled")
	clientCmd.PersistentFlags().StringSliceVar(&a.cliArgs.headers, "headers", []string{}, "add headers to request")

	clientCmd.AddCommand(a.clientCommands()...)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clientCmd)

	return rootCmd
}

func (a *API) setupLogging(*cobra.Command, []string) error {
	var level slog.Level
	err := level.UnmarshalText([]byte(a.cliArgs.logLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.cliArgs.logLevel, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (a *API) serveCmd(_ *cobra.Command, _ []string) error {
	if a.cliArgs.mcp {
		a.EnableMCP()
	}

	address := a.cliArgs.address
	if address == "" {
		address = defaultServeAddress
	}

	return a.Serve(address)
}

func (a *API) clientCommands() []*cobra.Command {
	var body string

	runE := func(cmd *cobra.Command, args []string) error {
		address := a.cliArgs.address
		if address == "" {
			address = defaultClientAddress
		}

		client := a.Client(address)
		client.SetRequestEditor(headersRequestEditor(a.cliArgs.headers))

		result, err := client.RunFromCLI(cmd.Context(), append([]string{cmd.Name()}, args...), body)
		if err != nil {
			return fmt.Errorf("error running client from CLI: %w", err)
		}

		return result.Fprint(cmd.OutOrStdout(), a.cliArgs.pretty)
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "make a GET request to get a Todo by ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runE,
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "make a GET request to list Todos",
		Args:  cobra.NoArgs,
		RunE:  runE,
	}
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "make a DELETE request to delete all Todos",
		Args:  cobra.NoArgs,
		RunE:  runE,
	}
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "make a POST request to create a new Todo",
		Args:  cobra.NoArgs,
		RunE:  runE,
	}

	postCmd.Flags().StringVarP(&body, "data", "d", "", "data for request body")
	_ = postCmd.MarkFlagRequired("data")

	return []*cobra.Command{getCmd, listCmd, deleteCmd, postCmd}
}

func headersRequestEditor(headers []string) RequestEditor {
	return func(r *http.Request) error {
		for _, header := range headers {
			headerSplit := strings.SplitN(header, ":", 2)
			if len(headerSplit) != 2 {
				return fmt.Errorf("invalid header provided: %q", header)
			}

			header, val := strings.TrimSpace(headerSplit[0]), strings.TrimSpace(headerSplit[1])

			r.Header.Add(header, val)
		}
		return nil
	}
}

// PrintableResponse allows CLI method to generically return a type that can be written to out
type PrintableResponse interface {
	Fprint(out io.Writer, pretty bool) error
}

// RunFromCLI executes the request named by the first argument: get, list, post or delete
func (c *Client) RunFromCLI(ctx context.Context, args []string, body string) (PrintableResponse, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("at least one argument required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch args[0] {
	case "get":
		if len(args) < 2 {
			return nil, fmt.Errorf("missing id argument")
		}
		id, err := ParseID(args[1])
		if err != nil {
			return nil, err
		}
		return c.Get(ctx, id)
	case "list":
		return c.List(ctx)
	case "post":
		return c.CreateRaw(ctx, body)
	case "delete":
		return c.DeleteAll(ctx)
	default:
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
}

func envOrDefault(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}
