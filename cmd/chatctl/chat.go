package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/hugohenrick/talonai-chat/pkg/chatsession"
	"github.com/spf13/cobra"
)

const chatHelp = `Comandos: /new, /sessions, /switch <id>, /delete <id>, /quit`

func newChatCmd(flags *globalFlags) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Conversa interativa com o assistente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			ctrl := chatsession.NewController(client, flags.userID)
			if sessionID != "" {
				if err := ctrl.Switch(ctx, sessionID); err != nil {
					return err
				}
			}
			return runChat(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "retoma uma sessão existente")
	return cmd
}

// runChat lê linhas de in até EOF ou /quit
func runChat(ctx context.Context, ctrl *chatsession.Controller, in io.Reader, w io.Writer) error {
	// avisos chegam de outra goroutine
	out := &syncWriter{w: w}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case w := <-ctrl.Warnings():
				fmt.Fprintf(out, "! %v\n", w)
			case <-done:
				return
			}
		}
	}()
	defer ctrl.Wait()

	fmt.Fprintln(out, chatHelp)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := runCommand(ctx, ctrl, line, out)
			if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		if err := send(ctx, ctrl, line, out); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	}
}

func send(ctx context.Context, ctrl *chatsession.Controller, text string, out io.Writer) error {
	res, err := ctrl.Send(ctx, text)
	if err != nil {
		return err
	}
	if res.SessionCreated {
		fmt.Fprintf(out, "(nova sessão %s)\n", res.SessionID)
		if res, err = ctrl.Send(ctx, text); err != nil {
			return err
		}
	}
	if res.Reply != nil {
		fmt.Fprintf(out, "agent: %s\n", res.Reply.Text)
	}
	return nil
}

func runCommand(ctx context.Context, ctrl *chatsession.Controller, line string, out io.Writer) (bool, error) {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/new":
		ctrl.NewChat()
		fmt.Fprintln(out, "(nova conversa)")
	case "/sessions":
		sessions, err := ctrl.Refresh(ctx)
		if err != nil {
			return false, err
		}
		for _, s := range sessions {
			marker := " "
			if s.SessionID == ctrl.SessionID() {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s  %s\n", marker, s.SessionID, s.Title)
		}
	case "/switch":
		if arg == "" {
			return false, fmt.Errorf("uso: /switch <id>")
		}
		if err := ctrl.Switch(ctx, arg); err != nil {
			return false, err
		}
		for _, m := range ctrl.Messages() {
			fmt.Fprintf(out, "%s: %s\n", m.Sender, m.Text)
		}
	case "/delete":
		if arg == "" {
			return false, fmt.Errorf("uso: /delete <id>")
		}
		if err := ctrl.Delete(ctx, arg); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "(sessão %s removida)\n", arg)
	default:
		fmt.Fprintln(out, chatHelp)
	}
	return false, nil
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
