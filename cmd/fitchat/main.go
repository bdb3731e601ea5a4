package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AtikTF/fitchat/pkg/client"
	"github.com/AtikTF/fitchat/pkg/protocol"
)

func main() {
	configPath := flag.String("config", "~/.fitchat/config.toml", "Path to config file")
	userID := flag.String("user-id", "", "User id to act as")
	username := flag.String("username", "", "Username to act as")
	roomID := flag.String("room", "", "Room id to select on startup (default: last active room)")
	flag.Parse()

	logger := log.New(os.Stderr, "[fitchat] ", log.LstdFlags)

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	state, err := client.OpenState(expandPath(cfg.State.DatabasePath))
	if err != nil {
		logger.Fatalf("open state: %v", err)
	}
	defer state.Close()

	token := cfg.Server.Token
	if token == "" {
		token = state.GetAuthToken()
	}

	metrics := client.NewMetrics()
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		metrics.MustRegister(registry)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	api := client.NewAPIClient(cfg.Server.APIURL, token)
	api.SetLogger(logger)
	api.SetMetrics(metrics)

	transport := client.NewWSTransport(cfg.Server.SocketURL, token)
	transport.SetLogger(logger)
	transport.SetReconnectDelay(
		time.Duration(cfg.Reconnect.InitialDelaySeconds)*time.Second,
		time.Duration(cfg.Reconnect.MaxDelaySeconds)*time.Second,
	)

	if err := transport.Connect(); err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer transport.Close()

	self := protocol.User{ID: *userID, Username: *username}
	session := client.NewSession(self, api, transport, logger)
	session.SetMetrics(metrics)
	session.SetStateStore(state)
	session.OnMessage(func(msg protocol.Message) {
		ts := time.UnixMilli(msg.CreatedAt).Format("15:04")
		fmt.Printf("[%s] %s: %s\n", ts, msg.SenderUsername, msg.Content)
	})
	session.Start()
	defer session.Stop()

	ctx := context.Background()

	rooms, err := session.Rooms().List(ctx)
	if err != nil {
		logger.Printf("room list unavailable: %v", err)
	}

	if room, ok := pickRoom(rooms, *roomID, state.LastRoomID()); ok {
		if err := session.SelectRoom(ctx, room); err != nil {
			logger.Printf("select room %s: %v", room.ID, err)
		} else {
			logger.Printf("joined room %s (%s)", room.Name, room.ID)
		}
	} else {
		logger.Printf("no room selected; waiting")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := state.UpdateLastSeenTimestamp(); err != nil {
		logger.Printf("record last seen: %v", err)
	}
	logger.Println("shutting down")
}

// pickRoom chooses the startup room: the --room flag if given, then the room
// active on the previous run, then the first listed room.
func pickRoom(rooms []protocol.Room, flagID, lastID string) (protocol.Room, bool) {
	for _, want := range []string{flagID, lastID} {
		if want == "" {
			continue
		}
		for _, r := range rooms {
			if r.ID == want {
				return r, true
			}
		}
	}
	if len(rooms) > 0 {
		return rooms[0], true
	}
	return protocol.Room{}, false
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
