// Terminal client for the score-table coordinator: connect, create or join
// a room, transfer points, and watch the shared ledger live. Intended for
// manual testing against a running server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"score-table/domain"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"SCORE_SERVER_URL,default=ws://localhost:3001/ws"`
	PlayerID  string `env:"SCORE_PLAYER_ID"`
}

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type snapshot struct {
	RoomID  string `json:"roomId"`
	Players []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Score  int    `json:"score"`
		IsHost bool   `json:"isHost"`
		Avatar struct {
			Emoji string `json:"emoji"`
		} `json:"avatar"`
	} `json:"players"`
	IsEnded bool `json:"isEnded"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if config.PlayerID == "" {
		config.PlayerID = "p_" + uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	color.Green.Printf("Connected to %s as %s\n", config.ServerURL, config.PlayerID)
	fmt.Println("Commands: create | join CODE | transfer AMOUNT TARGET | avatar EMOJI | leave | end | ping | quit")

	go listen(conn)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return exitOK, nil
		default:
		}
		if done, err := execute(conn, config.PlayerID, scanner.Text()); done {
			return exitOK, err
		}
	}
	return exitOK, scanner.Err()
}

func execute(conn *websocket.Conn, playerID, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	msg := map[string]any{"playerId": playerID}
	switch fields[0] {
	case "quit":
		return true, nil
	case "create":
		msg["type"] = "CREATE_ROOM"
	case "join":
		if len(fields) != 2 {
			color.Yellow.Println("usage: join CODE")
			return false, nil
		}
		msg["type"] = "JOIN_ROOM"
		msg["roomId"] = fields[1]
	case "transfer":
		if len(fields) != 3 {
			color.Yellow.Println("usage: transfer AMOUNT TARGET")
			return false, nil
		}
		amount, err := strconv.Atoi(fields[1])
		if err != nil {
			color.Yellow.Println("amount must be a number")
			return false, nil
		}
		msg["type"] = "TRANSFER"
		msg["amount"] = amount
		msg["targetPlayerId"] = fields[2]
	case "avatar":
		if len(fields) != 2 {
			color.Yellow.Println("usage: avatar EMOJI")
			return false, nil
		}
		profile, ok := lookupAvatar(fields[1])
		if !ok {
			color.Yellow.Printf("unknown avatar %q, pick one of: %s\n", fields[1], avatarChoices())
			return false, nil
		}
		msg["type"] = "CHANGE_AVATAR"
		msg["avatar"] = profile
	case "leave":
		msg["type"] = "LEAVE_ROOM"
	case "end":
		msg["type"] = "END_GAME"
	case "ping":
		msg["type"] = "PING"
	default:
		color.Yellow.Printf("unknown command %q\n", fields[0])
		return false, nil
	}

	if err := conn.WriteJSON(msg); err != nil {
		return true, fmt.Errorf("send failed: %w", err)
	}
	return false, nil
}

// lookupAvatar resolves an emoji typed at the prompt to its catalog profile.
func lookupAvatar(emoji string) (domain.AvatarProfile, bool) {
	for _, profile := range domain.Catalog {
		if profile.Emoji == emoji {
			return profile, true
		}
	}
	return domain.AvatarProfile{}, false
}

func avatarChoices() string {
	emojis := make([]string, len(domain.Catalog))
	for i, profile := range domain.Catalog {
		emojis[i] = profile.Emoji
	}
	return strings.Join(emojis, " ")
}

func listen(conn *websocket.Conn) {
	for {
		var evt event
		if err := conn.ReadJSON(&evt); err != nil {
			color.Red.Printf("connection closed: %v\n", err)
			return
		}
		render(evt)
	}
}

func render(evt event) {
	switch evt.Type {
	case "ROOM_CREATED", "ROOM_JOINED", "ROOM_STATE":
		var snap snapshot
		if err := json.Unmarshal(evt.Data, &snap); err != nil {
			color.Red.Printf("bad snapshot: %v\n", err)
			return
		}
		renderSnapshot(evt.Type, snap)
	case "ERROR":
		var data struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(evt.Data, &data)
		color.Red.Printf("ERROR [%s] %s\n", data.Code, data.Message)
	case "TRANSFER_ANIMATION":
		var data struct {
			FromID string `json:"fromId"`
			ToID   string `json:"toId"`
			Amount int    `json:"amount"`
		}
		_ = json.Unmarshal(evt.Data, &data)
		color.Cyan.Printf("%s -> %s : %d points\n", data.FromID, data.ToID, data.Amount)
	case "PONG":
		color.Gray.Println("pong")
	default:
		color.Gray.Printf("%s %s\n", evt.Type, string(evt.Data))
	}
}

func renderSnapshot(eventType string, snap snapshot) {
	header := fmt.Sprintf("====== %s room %s ======", eventType, snap.RoomID)
	if snap.IsEnded {
		header = fmt.Sprintf("====== FINAL RANKING room %s ======", snap.RoomID)
	}
	color.New(color.BgBlack, color.FgGreen).Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Avatar", "Name", "ID", "Score", "Host"})
	for _, p := range snap.Players {
		host := ""
		if p.IsHost {
			host = "*"
		}
		table.Append([]string{p.Avatar.Emoji, p.Name, p.ID, strconv.Itoa(p.Score), host})
	}
	table.Render()
}
