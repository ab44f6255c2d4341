package server

import (
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/casebook/pkg/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const eventWriteTimeout = 10 * time.Second

// handleEvents upgrades the connection and streams change events for
// every table as JSON frames. An optional ?table= query narrows the
// stream to one table.
func (s *Server) handleEvents(c echo.Context) error {
	tables := types.StandardTableNames
	if t := c.QueryParam("table"); t != "" {
		tables = []string{t}
	}

	var subs []types.Subscription
	merged := make(chan types.Event, len(tables))
	for _, table := range tables {
		sub, err := s.store.Subscribe(table, nil)
		if err != nil {
			for _, prev := range subs {
				prev.Unsubscribe()
			}
			return writeErr(c, err)
		}
		subs = append(subs, sub)
		go func() {
			for ev := range sub.Events() {
				select {
				case merged <- ev:
				default:
				}
			}
		}()
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// The read pump only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case ev := <-merged:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				glog.V(1).Infof("events: write: %v", err)
				return nil
			}
		}
	}
}
