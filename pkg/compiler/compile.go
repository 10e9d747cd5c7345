package compiler

// Result carries the output of every pipeline stage.
type Result struct {
	Tokens   []Token
	Stmts    []Expr
	Assembly string
}

// Compile runs the whole pipeline over src. On error no assembly is
// returned; the error is a *Error naming the failing stage.
func Compile(src string, opts Options) (*Result, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	stmts, err := Parse(tokens, src)
	if err != nil {
		return nil, err
	}

	assembly, err := Generate(stmts, opts)
	if err != nil {
		return nil, err
	}

	return &Result{Tokens: tokens, Stmts: stmts, Assembly: assembly}, nil
}
