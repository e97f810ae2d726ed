// Package console runs a single chat on the terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/core/styles"
)

// ChatID is the id of the only chat served by the console.
const ChatID = "console"

// Handler receives the lines typed by the user.
type Handler interface {
	HandleMessage(ctx context.Context, msg bot.Message)
	EndChat(ctx context.Context, chatID string)
}

// Options configures a Console.
type Options struct {
	User  string
	Color bool
	Theme string
}

// Console reads user lines from in and prints bot replies to out. Replies
// and notifications may arrive from other goroutines; writes are serialized.
type Console struct {
	in     io.Reader
	out    io.Writer
	user   string
	styles styles.Styles

	mu sync.Mutex
}

var _ bot.Sender = (*Console)(nil)

// New creates a console chat.
func New(in io.Reader, out io.Writer, opts Options) *Console {
	c := &Console{in: in, out: out, user: opts.User}
	if c.user == "" {
		c.user = "you"
	}

	if opts.Color {
		p, ok := styles.GetPalette(opts.Theme)
		if !ok {
			p, _ = styles.GetPalette(styles.DefaultTheme)
		}
		c.styles = styles.New(lipgloss.NewRenderer(out), p)
	}
	return c
}

// ColorEnabled resolves the color setting: an explicit value wins, otherwise
// color is used when f is a terminal.
func ColorEnabled(setting *bool, f *os.File) bool {
	if setting != nil {
		return *setting
	}
	return term.IsTerminal(int(f.Fd()))
}

// Send prints a reply. Multi-line replies are indented under the first line
// and keyboards are shown as a row of buttons.
func (c *Console) Send(_ context.Context, r bot.Reply) error {
	var sb strings.Builder

	label := c.styles.Render(c.styles.Bot, "bot>")
	for i, line := range strings.Split(r.Text, "\n") {
		if i == 0 {
			sb.WriteString(label + " " + line + "\n")
			continue
		}
		sb.WriteString("     " + line + "\n")
	}

	for _, row := range r.Keyboard {
		buttons := make([]string, 0, len(row))
		for _, b := range row {
			if c.styles.Enabled() {
				buttons = append(buttons, c.styles.Render(c.styles.Button, b))
			} else {
				buttons = append(buttons, "["+b+"]")
			}
		}
		sb.WriteString("     " + strings.Join(buttons, " ") + "\n")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, sb.String())
	return err
}

// Run reads lines until in is exhausted or ctx is cancelled, then ends the
// chat so pending reminders are cancelled.
func (c *Console) Run(ctx context.Context, h Handler) error {
	ctx = logging.WithTransport(ctx, "console")
	ctx = logging.WithChatID(ctx, ChatID)
	ctx = logging.WithUser(ctx, c.user)
	defer h.EndChat(context.WithoutCancel(ctx), ChatID)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	c.greet()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			h.HandleMessage(ctx, bot.Message{ChatID: ChatID, User: c.user, Text: line})
		}
	}
}

func (c *Console) greet() {
	c.mu.Lock()
	defer c.mu.Unlock()
	hint := c.styles.Render(c.styles.Muted, "Chatting as "+c.user+". Type /start to begin, Ctrl-D to quit.")
	_, _ = fmt.Fprintln(c.out, hint)
}
