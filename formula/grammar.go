package formula

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava12/llx/langdef"
	"github.com/ava12/llx/parser"
)

var ErrSyntax = errors.New("formula can not be parsed")

// The grammar table is compiled once per process and shared by every
// engine instance. Parsing a single formula is O(n) in its length.
const grammarText = `
$space = /[ \t\r\n]+/;
$error = /#[A-Za-z0-9\/]+[!?]/;
$number = /[0-9]+(?:\.[0-9]*)?|\.[0-9]+/;
$string = /"[^"]*"/;
$qsheet = /'[^']*'/;
$ident = /\$?[A-Za-z_][A-Za-z0-9_]*(?:\$[0-9]+)?/;
$op = /<=|>=|<>|==|!=|[-+*\/&<>=(),:!]/;

!aside $space;

formula = cmp;
cmp = cat, {('=' | '==' | '<>' | '!=' | '<=' | '>=' | '<' | '>'), cat};
cat = sum, {'&', sum};
sum = mul, {('+' | '-'), mul};
mul = una, {('*' | '/'), una};
una = {'+' | '-'}, prim;
prim = $number | $string | $error | group | term;
group = '(', cmp, ')';
term = $qsheet, '!', $ident, [span] | $ident, [qual | args | span];
qual = '!', $ident, [span];
args = '(', [cmp, {',', cmp}], ')';
span = ':', endref;
endref = $qsheet, '!', $ident | $ident;
`

var (
	compileOnce   sync.Once
	compileErr    error
	formulaParser *parser.Parser
)

func compileGrammar() {
	g, err := langdef.ParseString("formula", grammarText)
	if err != nil {
		compileErr = fmt.Errorf("formula grammar: %w", err)
		return
	}
	formulaParser, compileErr = parser.New(g)
}

// Parse turns the expression part of a formula (everything after the
// leading equal sign) into its syntax tree.
func Parse(src string) (Expr, error) {
	compileOnce.Do(compileGrammar)
	if compileErr != nil {
		return nil, compileErr
	}
	hooks := parser.Hooks{
		Nodes: parser.NodeHooks{
			parser.AnyNode: newNode,
		},
	}
	result, err := formulaParser.ParseString(context.Background(), "formula", src, hooks)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	expr, ok := result.(Expr)
	if !ok {
		return nil, ErrSyntax
	}
	return expr, nil
}
