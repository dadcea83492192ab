package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"mcpnode/internal/api"
	"mcpnode/internal/config"
	"mcpnode/internal/formatting"
	"mcpnode/internal/mcpclient"
	"mcpnode/internal/node"
	"mcpnode/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

type runOptions struct {
	operation       string
	connectionType  string
	credentialsPath string
	uriOverride     string
	headers         []string
	toolName        string
	toolParameters  string
	resourceURI     string
	promptName      string
	promptArguments string
	itemsPath       string
	batchSize       int
	batchIntervalMs int
	continueOnFail  bool
	functionCalling bool
	output          string
	quiet           bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one operation against an MCP server",
		Long: `Run connects to an MCP server, performs one operation for every input
item and prints the results.

Operations:
  listTools, executeTool, listPrompts, getPrompt,
  listResources, listResourceTemplates, readResource

Connection settings are read from the credentials file, keyed by
connection type (stdio, sse, http).`,
		Example: `  # List the tools of a stdio server
  mcpnode run --operation listTools

  # Call a tool over streamable HTTP
  mcpnode run -o executeTool -c http --tool echo --params '{"msg":"hi"}'

  # One call per entry of an items file, two at a time
  mcpnode run -o executeTool --tool echo --items items.yaml --batch-size 2 --continue-on-fail`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts)
		},
	}

	defaultCreds, _ := config.DefaultCredentialsPath()

	f := cmd.Flags()
	f.StringVarP(&opts.operation, "operation", "o", "", "Operation to run (required)")
	f.StringVarP(&opts.connectionType, "connection-type", "c", string(api.ConnectionKindStdio), "Connection type: stdio, sse or http")
	f.StringVar(&opts.credentialsPath, "credentials", defaultCreds, "Credentials file with connection settings")
	f.StringVar(&opts.uriOverride, "uri-override", "", "Endpoint URL replacing the stored one (sse and http)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Extra request header as NAME=VALUE (repeatable)")
	f.StringVar(&opts.toolName, "tool", "", "Tool name for executeTool")
	f.StringVar(&opts.toolParameters, "params", "", "Tool arguments as a JSON object")
	f.StringVar(&opts.resourceURI, "resource-uri", "", "Resource URI for readResource")
	f.StringVar(&opts.promptName, "prompt", "", "Prompt name for getPrompt")
	f.StringVar(&opts.promptArguments, "prompt-args", "", "Prompt arguments as a JSON object")
	f.StringVar(&opts.itemsPath, "items", "", "JSON or YAML file with the input items")
	f.IntVar(&opts.batchSize, "batch-size", config.DefaultItemsPerBatch, "Items processed concurrently per batch")
	f.IntVar(&opts.batchIntervalMs, "batch-interval", config.DefaultBatchIntervalMs, "Delay between batches in milliseconds")
	f.BoolVar(&opts.continueOnFail, "continue-on-fail", false, "Record item failures in the output instead of aborting")
	f.BoolVar(&opts.functionCalling, "function-calling", false, "Expose tools as validated function definitions")
	f.StringVarP(&opts.output, "output", "O", string(formatting.FormatJSON), "Output format: json, yaml or table")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Compact output and no progress indicator")

	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

func runOperation(cmd *cobra.Command, opts *runOptions) error {
	format, err := formatting.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	params := node.Parameters{Node: opts.nodeParameters()}
	var items []api.Item
	if opts.itemsPath != "" {
		items, params.Items, err = loadItems(opts.itemsPath)
		if err != nil {
			return err
		}
	}

	creds, err := config.LoadCredentials(opts.credentialsPath)
	if err != nil {
		return api.NewConfigurationError("credentials", "%v", err)
	}

	deps := node.Deps{
		Params:      params,
		Credentials: creds,
		Logger:      logging.For("Run"),
		Tolerance:   api.ContinueOnFail(opts.continueOnFail),
		Environ:     os.Environ(),
		Identity:    mcpclient.Identity{Name: "mcpnode", Version: GetVersion()},
		Batch: config.BatchOptions{
			Configured: cmd.Flags().Changed("batch-size") || cmd.Flags().Changed("batch-interval"),
			Size:       opts.batchSize,
			IntervalMs: opts.batchIntervalMs,
		},
	}

	var s *spinner.Spinner
	if !opts.quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = fmt.Sprintf(" Running %s...", opts.operation)
		s.Start()
	}
	results, err := node.Execute(cmd.Context(), deps, items)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	printer := formatting.NewPrinter(cmd.OutOrStdout(), formatting.Options{Format: format, Quiet: opts.quiet})
	if err := printer.Print(api.Operation(opts.operation), results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 && !opts.quiet {
		errorf(cmd, "%d of %d items failed", failed, len(results))
	}
	return nil
}

// nodeParameters holds only the parameters that were actually given, so
// that per-item values and defaults apply to the rest.
func (o *runOptions) nodeParameters() map[string]any {
	p := map[string]any{
		node.ParamOperation:      o.operation,
		node.ParamConnectionType: o.connectionType,
	}
	set := func(name, value string) {
		if value != "" {
			p[name] = value
		}
	}
	set(node.ParamURIOverride, o.uriOverride)
	set(node.ParamHeaders, strings.Join(o.headers, "\n"))
	set(node.ParamToolName, o.toolName)
	set(node.ParamToolParameters, o.toolParameters)
	set(node.ParamResourceURI, o.resourceURI)
	set(node.ParamPromptName, o.promptName)
	set(node.ParamPromptArguments, o.promptArguments)
	if o.functionCalling {
		p[node.ParamFunctionCalling] = true
	}
	return p
}
