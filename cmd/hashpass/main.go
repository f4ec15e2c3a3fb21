package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/util"
)

// hashpass gera o hash argon2id de uma senha, para semear usuários direto no banco.
// Sem argumento, lê a senha do terminal sem eco (ou de stdin quando redirecionado).
func main() {
	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "leitura da senha: %v\n", err)
		os.Exit(1)
	}
	if err := util.ValidatePassword(password); err != nil {
		fmt.Fprintf(os.Stderr, "senha inválida: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

func readPassword() (string, error) {
	if len(os.Args) >= 2 {
		return os.Args[1], nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Senha: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
