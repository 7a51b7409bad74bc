package connection

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"
)

// DefaultSocketPath is where tokgate-server listens by default.
const DefaultSocketPath = "/var/run/tokgate-server/tokgate-server.sock"

// SocketClient provides Unix socket communication for local management.
type SocketClient struct {
	path    string
	timeout time.Duration
	conn    net.Conn
	reader  *bufio.Reader
}

// NewSocketClient creates a new socket client.
func NewSocketClient(socketPath string) *SocketClient {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &SocketClient{path: socketPath, timeout: time.Minute}
}

// Connect connects to the local socket.
func (c *SocketClient) Connect() error {
	conn, err := net.DialTimeout("unix", c.path, 5*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the socket connection.
func (c *SocketClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Execute sends a command and returns the reply lines before the final
// "ok". An "error: ..." reply becomes the returned error.
func (c *SocketClient) Execute(cmd string) ([]string, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}
	// Drain can take a while with many connections.
	c.conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return nil, err
	}

	var lines []string
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return lines, err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "ok":
			return lines, nil
		case strings.HasPrefix(line, "error: "):
			return lines, errors.New(strings.TrimPrefix(line, "error: "))
		}
		lines = append(lines, line)
	}
}
