package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/shared/cmdutils"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

// CLIChannel wires the terminal into the bot as if it were a group chat.
// Every line typed is a message from the console user, who administers the
// simulated group; replies and deletions are printed.
type CLIChannel struct {
	Base
	groupID string
	userID  int64
	in      io.Reader
	out     io.Writer

	mu     sync.Mutex
	nextID int
	done   chan struct{}
}

// NewCLIChannel creates a CLIChannel posting as userID into group groupID.
func NewCLIChannel(b bus.Bus, groupID, userID int64, in io.Reader, out io.Writer) *CLIChannel {
	return &CLIChannel{
		Base:    NewBase(bus.ChannelCLI, b, nil),
		groupID: strconv.FormatInt(groupID, 10),
		userID:  userID,
		in:      in,
		out:     out,
		done:    make(chan struct{}),
	}
}

func (c *CLIChannel) Name() string { return string(bus.ChannelCLI) }

// Start runs the REPL until ctx is cancelled or input ends.
func (c *CLIChannel) Start(ctx context.Context) error {
	defer close(c.done)
	fmt.Fprintf(c.out, "Console attached to group %s as user %d. Type 'exit' or press Ctrl+C to quit.\n\n", c.groupID, c.userID)

	scanner := bufio.NewScanner(c.in)
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if cliExitCommands[strings.ToLower(line)] {
				fmt.Fprintln(c.out, "Goodbye!")
				return nil
			}
			c.Post(line)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Done is closed once Start has returned.
func (c *CLIChannel) Done() <-chan struct{} { return c.done }

// Post publishes text as a group message and returns its message id.
func (c *CLIChannel) Post(text string) int {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	c.HandleMessage(strconv.FormatInt(c.userID, 10), c.groupID, text, map[string]any{
		bus.MetaMessageID: id,
		bus.MetaUserID:    c.userID,
		bus.MetaChatTitle: "console",
		bus.MetaIsGroup:   true,
	})
	return id
}

// Send prints a bot message; its TTL is shown instead of enforced.
func (c *CLIChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	text := msg.Content()
	if ttl := msg.TTL(); ttl > 0 {
		text += fmt.Sprintf("\n(expires in %s)", ttl.Round(time.Second))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cmdutils.PrintResponse(c.out, "noflood", text)
	return nil
}

// Delete prints the removal of a message.
func (c *CLIChannel) Delete(_ context.Context, chatID, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "  ↳ message %s deleted from %s\n", messageID, chatID)
	return nil
}

// IsAdmin is always true: the console user owns the simulated group.
func (c *CLIChannel) IsAdmin(context.Context, string, string) (bool, error) {
	return true, nil
}
