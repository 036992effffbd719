package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tinyland-inc/telebridge/cmd/telebridge/internal"
	"github.com/tinyland-inc/telebridge/pkg/channels/telegram"
	"github.com/tinyland-inc/telebridge/pkg/event"
	"github.com/tinyland-inc/telebridge/pkg/logger"
	"github.com/tinyland-inc/telebridge/pkg/message"
)

// bot is the part of the adapter the console drives.
type bot interface {
	SendMessage(ctx context.Context, segs message.Segments, chatScope string) (telegram.SendResult, error)
	EditMessage(ctx context.Context, id string, segs message.Segments) ([]telegram.Warning, error)
	DeleteMessage(ctx context.Context, id string) error
	SetMessageReaction(ctx context.Context, id, emoji string) error
	GetBotProfile(ctx context.Context) (event.User, error)
	GetGroupMemberList(ctx context.Context, groupID string) ([]telegram.Member, error)
}

var errQuit = errors.New("quit")

const usage = `Commands:
  send <chat> <text>       send a text message
  reply <message> <text>   reply to a message id (chat_message)
  edit <message> <text>    replace the text of a message
  delete <message>         delete a message
  react <message> [emoji]  set or clear the bot's reaction
  members <chat>           list chat administrators
  me                       show the bot identity
  exit                     leave the console`

func consoleCmd(ctx context.Context, configPath string, debug bool) error {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tg, err := internal.NewBot(cfg.Telegram)
	if err != nil {
		return fmt.Errorf("error creating telegram bot: %w", err)
	}
	adapter := internal.NewAdapter(tg, cfg.Telegram)

	me, err := adapter.GetBotProfile(ctx)
	if err != nil {
		return fmt.Errorf("error reaching telegram: %w", err)
	}
	fmt.Printf("%s Connected as %s (%s). Type help for commands.\n\n", internal.Logo, me.Nickname, me.ID)

	interactiveMode(ctx, adapter)
	return nil
}

func interactiveMode(ctx context.Context, b bot) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          internal.Logo + " > ",
		HistoryFile:     filepath.Join(os.TempDir(), ".telebridge_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(ctx, b, os.Stdin, os.Stdout)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !runLine(ctx, b, line, rl.Stdout()) {
			return
		}
	}
}

func simpleInteractiveMode(ctx context.Context, b bot, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, internal.Logo+" > ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}
		if !runLine(ctx, b, scanner.Text(), out) {
			return
		}
	}
}

// runLine executes one console line and reports whether to keep going.
func runLine(ctx context.Context, b bot, line string, out io.Writer) bool {
	reply, err := execute(ctx, b, line)
	if errors.Is(err, errQuit) {
		fmt.Fprintln(out, "Goodbye!")
		return false
	}
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return true
	}
	if reply != "" {
		fmt.Fprintln(out, reply)
	}
	return true
}

func execute(ctx context.Context, b bot, line string) (string, error) {
	cmd, rest := splitWord(strings.TrimSpace(line))
	switch cmd {
	case "":
		return "", nil
	case "exit", "quit":
		return "", errQuit
	case "help", "?":
		return usage, nil

	case "send":
		chat, text := splitWord(rest)
		if chat == "" || text == "" {
			return "", errors.New("usage: send <chat> <text>")
		}
		res, err := b.SendMessage(ctx, message.Segments{message.Text{Content: text}}, chat)
		return formatSend(res), err

	case "reply":
		id, text := splitWord(rest)
		if id == "" || text == "" {
			return "", errors.New("usage: reply <message> <text>")
		}
		chat, _, err := message.DecodeID(id)
		if err != nil {
			return "", err
		}
		res, err := b.SendMessage(ctx, message.Segments{
			message.Reply{MessageID: id},
			message.Text{Content: text},
		}, chat)
		return formatSend(res), err

	case "edit":
		id, text := splitWord(rest)
		if id == "" || text == "" {
			return "", errors.New("usage: edit <message> <text>")
		}
		warnings, err := b.EditMessage(ctx, id, message.Segments{message.Text{Content: text}})
		if err != nil {
			return "", err
		}
		return "edited" + formatWarnings(warnings), nil

	case "delete":
		if rest == "" {
			return "", errors.New("usage: delete <message>")
		}
		if err := b.DeleteMessage(ctx, rest); err != nil {
			return "", err
		}
		return "deleted", nil

	case "react":
		id, emoji := splitWord(rest)
		if id == "" {
			return "", errors.New("usage: react <message> [emoji]")
		}
		if err := b.SetMessageReaction(ctx, id, emoji); err != nil {
			return "", err
		}
		if emoji == "" {
			return "reaction cleared", nil
		}
		return "reacted " + emoji, nil

	case "members":
		if rest == "" {
			return "", errors.New("usage: members <chat>")
		}
		members, err := b.GetGroupMemberList(ctx, rest)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(members))
		for _, m := range members {
			lines = append(lines, fmt.Sprintf("%s\t%s\t%s", m.User.ID, m.Role, m.User.Nickname))
		}
		return strings.Join(lines, "\n"), nil

	case "me":
		me, err := b.GetBotProfile(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s (%s)", me.Nickname, me.ID), nil
	}
	return "", fmt.Errorf("unknown command %q, type help", cmd)
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	head, tail, _ := strings.Cut(s, " ")
	return head, strings.TrimSpace(tail)
}

func formatSend(res telegram.SendResult) string {
	if len(res.IDs) == 0 {
		return ""
	}
	return "sent " + strings.Join(res.IDs, ", ") + formatWarnings(res.Warnings)
}

func formatWarnings(ws []telegram.Warning) string {
	var sb strings.Builder
	for _, w := range ws {
		sb.WriteString("\n  warning: ")
		sb.WriteString(w.String())
	}
	return sb.String()
}
