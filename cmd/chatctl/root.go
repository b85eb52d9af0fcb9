package main

import (
	"errors"
	"os"
	"time"

	"github.com/hugohenrick/talonai-chat/pkg/chat"
	"github.com/hugohenrick/talonai-chat/pkg/logger"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:3001/api"

type globalFlags struct {
	apiURL  string
	userID  string
	token   string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Cliente de terminal para o chat TalonAI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api", envOr("TALONAI_API_URL", defaultAPIURL), "URL base da API (inclui o prefixo /api)")
	rootCmd.PersistentFlags().StringVarP(&flags.userID, "user", "u", os.Getenv("TALONAI_USER_ID"), "ID do usuário")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("TALONAI_TOKEN"), "token JWT, se a API exigir")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "registra detalhes em stderr")

	rootCmd.AddCommand(newSessionsCmd(flags))
	rootCmd.AddCommand(newShowCmd(flags))
	rootCmd.AddCommand(newDeleteCmd(flags))
	rootCmd.AddCommand(newChatCmd(flags))
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}

// client cria o cliente da API a partir das flags globais
func (f *globalFlags) client() (*chat.Client, error) {
	if f.userID == "" {
		return nil, errors.New("--user (ou TALONAI_USER_ID) é obrigatório")
	}

	log := logger.Discard()
	if f.verbose {
		log = logger.NewWithWriter(os.Stderr)
		log.SetLevel("debug")
	}

	return chat.NewClient(f.apiURL, chat.Options{Token: f.token, Logger: log})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
