package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdbml/internal/cli/output"
	"github.com/leapstack-labs/leapdbml/pkg/parser"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// TokensOptions holds options for the tokens command.
type TokensOptions struct {
	Whitespace bool
}

// TokenInfo is the JSON form of a token.
type TokenInfo struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	opts := &TokensOptions{}

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the lexer tokens of a schema file",
		Long: `Run the lexer over a schema file and print every token with its type,
value and starting position. Spaces and line breaks are hidden unless
--whitespace is given. Keywords are reported as the lexer sees them, before
the parser reclassifies them by context.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Whitespace, "whitespace", false, "Include space and line break tokens")

	return cmd
}

func runTokens(cmd *cobra.Command, path string, opts *TokensOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	tokens := []TokenInfo{}
	lexer := parser.NewLexer(f)
	for {
		tok, ok := lexer.NextToken()
		if !ok {
			break
		}
		if !opts.Whitespace && token.IsWhitespace(tok.Type) {
			continue
		}
		tokens = append(tokens, TokenInfo{
			Type:   tok.Type.String(),
			Value:  tok.Literal,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		})
	}
	if err := lexer.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	cc.Logger.Debug("tokenized file", "path", path, "tokens", len(tokens))

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(tokens)
	}

	rows := make([][]string, len(tokens))
	for i, t := range tokens {
		rows[i] = []string{fmt.Sprintf("%d:%d", t.Line, t.Column), t.Type, visible(t.Value)}
	}
	r.Table([]string{"position", "type", "value"}, rows)
	return nil
}

// visible escapes control characters so every token fits on one row.
func visible(s string) string {
	return strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
}
