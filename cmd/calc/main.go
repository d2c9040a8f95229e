package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GGmuzem/stackcalc/internal/agent"
	"github.com/GGmuzem/stackcalc/internal/calculate"
	"github.com/GGmuzem/stackcalc/internal/config"
	"github.com/GGmuzem/stackcalc/pkg/calculator"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const prompt = "Enter expression: "

var errEvaluationFailed = errors.New("evaluation failed")

var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "Evaluate arithmetic expressions",
	Long: `Evaluate infix arithmetic expressions with + - * / ^, unary minus,
brackets and the constants pi and e.

Without a subcommand calc reads one expression from stdin.

Examples:
  calc
  calc eval "2*(3+4)" "-2^2"
  calc repl
  calc remote "2*(3+4)"`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		runOnce(cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <expression>...",
	Short: "Evaluate expressions given as arguments",
	Args:  cobra.MinimumNArgs(1),
	// Выражения вида "-2^2" не должны разбираться как флаги
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !evalAll(cmd.OutOrStdout(), args) {
			return errEvaluationFailed
		}
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate expressions line by line until EOF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var remoteCmd = &cobra.Command{
	Use:   "remote <expression>...",
	Short: "Evaluate expressions on the orchestrator over gRPC",
	Long: `Evaluate expressions with the orchestrator's synchronous Evaluate call.
The address is taken from GRPC_SERVER (default localhost:$GRPC_PORT).`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, closeConn, err := dialRemote(config.Load().GRPCServer)
		if err != nil {
			return err
		}
		defer closeConn()

		ok, err := evalRemote(cmd.Context(), cmd.OutOrStdout(), client, args)
		if err != nil {
			return err
		}
		if !ok {
			return errEvaluationFailed
		}
		return nil
	},
}

// remoteEvaluator вычисляет выражение на стороне оркестратора
type remoteEvaluator interface {
	Evaluate(ctx context.Context, expression string) (*calculator.EvaluateResponse, error)
}

// dialRemote подменяется в тестах
var dialRemote = func(addr string) (remoteEvaluator, func(), error) {
	conn, err := agent.Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	return agent.NewGRPCClient(conn, 0), func() { conn.Close() }, nil
}

func init() {
	rootCmd.AddCommand(evalCmd, replCmd, remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errEvaluationFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// runOnce спрашивает одно выражение и печатает результат или ошибку
func runOnce(in io.Reader, out io.Writer) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	printResult(out, strings.TrimRight(line, "\r\n"))
}

func evalAll(out io.Writer, expressions []string) bool {
	ok := true
	for _, expression := range expressions {
		if !printResult(out, expression) {
			ok = false
		}
	}
	return ok
}

// evalRemote печатает результаты так же, как eval. Ошибка транспорта
// прерывает обработку, ошибки вычисления только отмечаются.
func evalRemote(ctx context.Context, out io.Writer, client remoteEvaluator, expressions []string) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ok := true
	for _, expression := range expressions {
		resp, err := client.Evaluate(ctx, expression)
		if err != nil {
			return false, fmt.Errorf("оркестратор недоступен: %w", err)
		}
		if resp.Error != "" {
			color.New(color.FgRed).Fprintln(out, resp.Error)
			ok = false
			continue
		}
		fmt.Fprintf(out, "Result: %s\n", resp.Result)
	}
	return ok, nil
}

func repl(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		printResult(out, line)
	}
}

func printResult(out io.Writer, expression string) bool {
	result, err := calculate.Calculate(expression)
	if err != nil {
		color.New(color.FgRed).Fprintln(out, err.Error())
		return false
	}
	fmt.Fprintf(out, "Result: %s\n", result)
	return true
}
