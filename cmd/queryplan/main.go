package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"google.golang.org/grpc"

	"github.com/thunderql/queryplanner"
	"github.com/thunderql/queryplanner/exec"
	"github.com/thunderql/queryplanner/logger"
	"github.com/thunderql/queryplanner/schemaconfig"
)

var log = logger.New()

var (
	schemaPath    string
	operationName string
	debug         bool
	serviceAddrs  []string
	execMethod    string
	variablesJSON string
)

var rootCmd = &cobra.Command{
	Use:   "queryplan",
	Short: "Plan a federated GraphQL operation against a composed schema",
}

var planCmd = &cobra.Command{
	Use:   "plan <query.graphql>",
	Short: "Print the serialized query plan for an operation",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

var execCmd = &cobra.Command{
	Use:   "exec <query.graphql>",
	Short: "Plan an operation and dispatch it to live subgraphs over gRPC",
	Args:  cobra.ExactArgs(1),
	RunE:  runExec,
}

func init() {
	planCmd.Flags().StringVar(&schemaPath, "schema", "", "path to a composed-schema JSON fixture (required)")
	planCmd.Flags().StringVar(&operationName, "operation", "", "operation name, required when the document has more than one")
	planCmd.Flags().BoolVar(&debug, "debug", false, "dump the schema and operation document before planning")
	planCmd.MarkFlagRequired("schema")

	execCmd.Flags().StringVar(&schemaPath, "schema", "", "path to a composed-schema JSON fixture (required)")
	execCmd.Flags().StringVar(&operationName, "operation", "", "operation name, required when the document has more than one")
	execCmd.Flags().StringArrayVar(&serviceAddrs, "service", nil, "service=host:port pair, repeatable, one per subgraph the plan dispatches to")
	execCmd.Flags().StringVar(&execMethod, "method", "/federation.Executor/Execute", "gRPC method path every subgraph exposes")
	execCmd.Flags().StringVar(&variablesJSON, "variables", "{}", "JSON object of operation variables")
	execCmd.MarkFlagRequired("schema")
	execCmd.MarkFlagRequired("service")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(execCmd)
}

func loadSchemaAndDoc(queryPath string) (*queryplanner.Schema, *ast.QueryDocument, error) {
	schemaFile, err := os.Open(schemaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening schema fixture: %w", err)
	}
	defer schemaFile.Close()

	schema, err := schemaconfig.Load(schemaFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading composed schema: %w", err)
	}

	queryBytes, err := os.ReadFile(queryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading operation file: %w", err)
	}

	doc, gqlErr := parser.ParseQuery(&ast.Source{Name: queryPath, Input: string(queryBytes)})
	if gqlErr != nil {
		return nil, nil, fmt.Errorf("parsing operation: %w", gqlErr)
	}

	return schema, doc, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	schema, doc, err := loadSchemaAndDoc(args[0])
	if err != nil {
		return err
	}

	planID := uuid.New().String()

	if debug {
		fmt.Fprintf(os.Stderr, "plan id: %s\n", planID)
		spew.Fdump(os.Stderr, schema)
		spew.Fdump(os.Stderr, doc)
	}

	plan, err := queryplanner.Plan(schema, doc, operationName)
	if err != nil {
		log.Error("planning failed", "plan", planID, "error", err)
		return fmt.Errorf("planning %s: %w", planID, err)
	}

	log.Info("planned operation", "plan", planID)
	fmt.Println(queryplanner.Serialize(plan))
	return nil
}

func runExec(cmd *cobra.Command, args []string) error {
	schema, doc, err := loadSchemaAndDoc(args[0])
	if err != nil {
		return err
	}

	plan, err := queryplanner.Plan(schema, doc, operationName)
	if err != nil {
		log.Error("planning failed", "error", err)
		return fmt.Errorf("planning: %w", err)
	}

	var variables map[string]interface{}
	if err := json.Unmarshal([]byte(variablesJSON), &variables); err != nil {
		return fmt.Errorf("parsing --variables: %w", err)
	}

	ctx := context.Background()
	clients := make(map[string]exec.ServiceClient, len(serviceAddrs))
	for _, pair := range serviceAddrs {
		name, addr, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("--service %q: expected service=host:port", pair)
		}
		conn, err := grpc.DialContext(ctx, addr, grpc.WithInsecure())
		if err != nil {
			return fmt.Errorf("dialing service %s at %s: %w", name, addr, err)
		}
		defer conn.Close()
		clients[name] = &exec.GRPCServiceClient{Conn: conn, Method: execMethod}
	}

	executor := &exec.Executor{Services: clients, Logger: log}

	result, err := executor.Run(ctx, plan, variables)
	if err != nil {
		return fmt.Errorf("executing plan: %w", err)
	}

	out, err := json.Marshal(map[string]interface{}{"data": result})
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
