package server

import (
	"fmt"
	"strings"

	"github.com/tidwall/redcon"

	"github.com/nullcache/nullcache/internal/log"
	"github.com/nullcache/nullcache/message"
)

// Server is the RESP2 accept loop: a thin redcon.Server wrapper that
// decodes each incoming command into a message.Request, hands it to a
// MessageHandler, and re-encodes the message.Response onto the wire.
type Server struct {
	host           string
	port           int
	server         *redcon.Server
	messageHandler MessageHandler
	stopChan       chan struct{}
}

// MessageHandler processes a Request message and returns a Response.
// Dispatcher satisfies this.
type MessageHandler interface {
	HandleMessage(request *message.Request) message.Response
}

// New constructs a Server listening on host:port and dispatching through
// messageHandler.
func New(host string, port int, messageHandler MessageHandler) *Server {
	return &Server{
		host:           host,
		port:           port,
		messageHandler: messageHandler,
		stopChan:       make(chan struct{}),
	}
}

// ListenAndServe starts accepting connections; blocks until Shutdown.
func (s *Server) ListenAndServe() error {
	s.server = redcon.NewServerNetwork(
		"tcp",
		fmt.Sprintf("%s:%d", s.host, s.port),
		s.handle,
		nil,
		nil,
	)

	if err := s.server.ListenAndServe(); err != nil {
		return err
	}
	<-s.stopChan
	return nil
}

// Stop closes the listener without waiting for in-flight connections.
func (s *Server) Stop() error {
	return s.server.Close()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown() error {
	defer close(s.stopChan)
	return s.Stop()
}

func (s *Server) handle(conn redcon.Conn, command redcon.Command) {
	if len(command.Args) == 0 {
		// redcon shouldn't pass an empty command, but be defensive.
		return
	}

	cmd := strings.ToUpper(string(command.Args[0]))
	switch cmd {
	case "PING":
		conn.WriteString("PONG")
		return
	case "QUIT":
		conn.WriteString("OK")
		conn.Close()
		return
	}

	request := message.NewRequest(cmd, command.Args[1:])
	log.Debugf("handling request: %s", request)

	response := s.messageHandler.HandleMessage(request)
	log.Debugf("sending response: %s", response)

	if err := writeResponse(response, conn); err != nil {
		log.Errorf("writing response failed: %s", err)
	}
}

// writeResponse renders a message.Response onto the RESP2 wire, covering
// the full Status/type surface this store's commands produce.
func writeResponse(response message.Response, conn redcon.Conn) error {
	switch r := response.(type) {
	case *message.ResponseStatus:
		switch r.Status() {
		case message.StatusOk:
			conn.WriteString(r.Payload())
		case message.StatusNotFound:
			conn.WriteNull()
		default:
			conn.WriteError(r.Payload())
		}
	case *message.ResponseString:
		conn.WriteBulk(r.Payload())
	case *message.ResponseStringSlice:
		payload := r.Payload()
		conn.WriteArray(len(payload))
		for _, v := range payload {
			conn.WriteBulk(v)
		}
	case *message.ResponseInt:
		conn.WriteInt(r.Payload())
	case *message.ResponseIntSlice:
		payload := r.Payload()
		conn.WriteArray(len(payload))
		for _, v := range payload {
			conn.WriteInt(v)
		}
	default:
		return fmt.Errorf("unknown response type: %T", response)
	}
	return nil
}
