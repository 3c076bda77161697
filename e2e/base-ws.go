package e2e

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/ws"
)

const readTimeout = 10 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests.
// Without a relay address there is nothing to run against.
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping e2e scenarios")
	}
}

// Client is one websocket participant in a scenario.
type Client struct {
	suite *BaseWsSuite
	label string
	conn  *websocket.Conn
}

// Dial opens a labeled connection to the relay with logging and colors.
func (s *BaseWsSuite) Dial(label string) *Client {
	header := fmt.Sprintf("  ====== %s connects ======", label)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	url := fmt.Sprintf("ws://%s/ws", s.Config.RelayAddr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to connect to relay at "+url)

	c := &Client{suite: s, label: label, conn: conn}
	s.T().Cleanup(func() { _ = conn.Close() })
	return c
}

// Close tears the connection down mid-scenario.
func (c *Client) Close() {
	c.suite.Require().NoError(c.conn.Close())
}

// Send pushes one envelope to the relay.
func (c *Client) Send(eventName string, data any) {
	raw, err := json.Marshal(data)
	c.suite.Require().NoError(err)
	payload, err := json.Marshal(ws.Envelope{Event: eventName, Data: raw})
	c.suite.Require().NoError(err)

	c.log("SEND", payload)
	c.suite.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, payload))
}

// Expect reads frames until the wanted event arrives and decodes its payload.
func (c *Client) Expect(eventName string, out any) {
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		_, raw, err := c.conn.ReadMessage()
		c.suite.Require().NoError(err, c.label+" waiting for "+eventName)
		c.log("RECV", raw)

		var env ws.Envelope
		c.suite.Require().NoError(json.Unmarshal(raw, &env))
		if env.Event != eventName {
			continue
		}
		if out != nil {
			c.suite.Require().NoError(json.Unmarshal(env.Data, out))
		}
		return
	}
}

func (c *Client) log(direction string, frame []byte) {
	if !c.suite.Config.DebugJSON {
		return
	}
	line := fmt.Sprintf("%s %s %s", c.label, direction, frame)
	if c.suite.Config.Colours && direction == "SEND" {
		line = color.FgCyan.Render(line)
	}
	c.suite.T().Log(line)
}
