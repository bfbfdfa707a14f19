// Command tools_literal shows tool parameters restricted to a fixed set of
// values, in a toolkit and in a standalone tool. The allowed values reach
// the model as a JSON schema enum.
package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
	"github.com/agentcookbook/gemini-agents/console"
	"github.com/agentcookbook/gemini-agents/samples/gemini/cookbook"
)

var (
	operations = []string{"create", "read", "update", "delete"}
	priorities = []string{"low", "medium", "high"}
	actions    = map[string]string{"start": "started", "stop": "stopped", "restart": "restarted"}
)

type manageFileArgs struct {
	Filename  string `json:"filename" jsonschema:"description=The name of the file to operate on,required"`
	Operation string `json:"operation" jsonschema:"description=The operation to perform on the file,enum=create|read|update|delete,default=read"`
	Priority  string `json:"priority" jsonschema:"description=The priority level for this operation,enum=low|medium|high,default=medium"`
}

func manageFile(_ context.Context, a manageFileArgs) (any, error) {
	if a.Operation == "" {
		a.Operation = "read"
	}
	if a.Priority == "" {
		a.Priority = "medium"
	}
	if !slices.Contains(operations, a.Operation) {
		return nil, fmt.Errorf("operation must be one of %s", strings.Join(operations, ", "))
	}
	if !slices.Contains(priorities, a.Priority) {
		return nil, fmt.Errorf("priority must be one of %s", strings.Join(priorities, ", "))
	}
	return fmt.Sprintf("Performed '%s' on '%s' with %s priority", a.Operation, a.Filename, a.Priority), nil
}

type controlServiceArgs struct {
	Action      string `json:"action" jsonschema:"description=The action to perform on the service,enum=start|stop|restart,required"`
	ServiceName string `json:"service_name" jsonschema:"description=The name of the service to control,required"`
}

func controlService(_ context.Context, a controlServiceArgs) (any, error) {
	done, ok := actions[a.Action]
	if !ok {
		return nil, fmt.Errorf("unknown action %q", a.Action)
	}
	return fmt.Sprintf("Service '%s' has been %s", a.ServiceName, done), nil
}

// FileOperations is a toolkit with a single enum-constrained tool.
func FileOperations() *af.Toolkit {
	return af.NewToolkit("file_operations",
		af.NewTypedTool("manage_file", "Manage a file with the specified operation.", manageFile),
	)
}

// ControlService is a standalone tool.
func ControlService() af.Tool {
	return af.NewTypedTool("control_service", "Control a service with the specified action.", controlService)
}

func main() {
	s, err := cookbook.Setup()
	if err != nil {
		cookbook.Exit(err)
	}
	ctx := context.Background()
	agent := af.NewAgent(cookbook.Gemini(s, cookbook.FlashModel),
		af.WithName("Operations Assistant"),
		af.WithInstructions("You are a helpful assistant that can manage files and services."),
		af.WithToolkits(FileOperations()),
		af.WithTools(ControlService()),
		af.WithMarkdown(),
	)

	fmt.Println("Testing file operations with enum parameters:")
	if _, err := console.PrintResponse(ctx, os.Stdout, agent, "Create a new file called 'report.txt' with high priority",
		console.WithStream(), console.WithToolCalls()); err != nil {
		cookbook.Exit(err)
	}
	fmt.Printf("\n%s\n\n", strings.Repeat("=", 50))
	fmt.Println("Testing service control with enum parameters:")
	if _, err := console.PrintResponse(ctx, os.Stdout, agent, "Restart the web server service",
		console.WithStream(), console.WithToolCalls()); err != nil {
		cookbook.Exit(err)
	}
}
