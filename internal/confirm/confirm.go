// Package confirm pede confirmação do operador antes de ações irreversíveis.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDeclined indica que o operador recusou a ação; nada foi enviado ao backend.
var ErrDeclined = errors.New("operação cancelada pelo usuário")

// Confirmer responde a uma pergunta sim/não.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Func adapta uma função comum a Confirmer.
type Func func(prompt string) bool

func (f Func) Confirm(prompt string) bool { return f(prompt) }

// Always responde sempre o mesmo valor; usado com --sim e nos testes.
type Always bool

func (a Always) Confirm(string) bool { return bool(a) }

// Require devolve ErrDeclined quando c recusa o prompt.
func Require(c Confirmer, prompt string) error {
	if c == nil || !c.Confirm(prompt) {
		return ErrDeclined
	}
	return nil
}

// Prompter pergunta no terminal e aceita "s" ou "sim".
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [s/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
