package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

// keyringService/keyringUser name the OS keychain entry storing the OpenAI
// API key the optional embedder/summarizer collaborators read from
// OPENAI_API_KEY, grounded on internal/config/keyring.go's service/user
// naming convention.
const (
	keyringService = "coderag"
	keyringUser    = "openai-api-key"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an OpenAI API key in the OS keychain for the embed/summarize collaborators",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	key, err := readAPIKey()
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "no key entered")
		os.Exit(ExitInvalidArg)
	}
	if err := keyring.Set(keyringService, keyringUser, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save to OS keychain: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OpenAI API key saved to the OS keychain.")
	return nil
}

// readAPIKey prompts without echoing when stdin is a TTY, per
// internal/config/credentials.go's term.IsTerminal/term.ReadPassword guard;
// otherwise it reads one line from stdin so the command stays scriptable.
func readAPIKey() (string, error) {
	fmt.Fprint(os.Stderr, "OpenAI API key: ")
	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// resolveOpenAIKey implements the env-var → keychain priority chain
// internal/config/credentials.go uses, so the OpenAI embedder and
// summarizer pick up a key saved via `coderag login` without the
// caller exporting OPENAI_API_KEY every session.
func resolveOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	if key, err := keyring.Get(keyringService, keyringUser); err == nil {
		return key
	}
	return ""
}
