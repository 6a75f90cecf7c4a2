package socket

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/database"
	"github.com/DedS3t/monopoly-engine/platform/engine"
	"github.com/gomodule/redigo/redis"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var palette = []string{"red", "yellow", "blue", "green", "purple"}

// CreateSocketIOServer runs the realtime gateway: it maps socket events to
// engine operations and fans engine events back out to the room. All game
// rules live in the engine; this layer only parses, delegates and relays.
func CreateSocketIOServer(mgr *engine.Manager) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		panic(err)
	}

	pool := cache.CreateRedisPool()
	defer pool.Close()

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		gameID, userID := result["game_id"], result["user_id"]
		if gameID == "" || userID == "" {
			s.Emit("error-message", "game_id and user_id are required")
			return
		}

		db := database.PostgreSQLConnection()
		defer db.Close()

		game := &models.Game{Id: gameID}
		if err := db.Model(game).WherePK().Select(); err != nil || game.Status != "false" {
			s.Emit("error-message", "Invalid game")
			s.Emit("failed")
			return
		}

		user := new(models.User)
		if err := db.Model(user).Where("id = ?", userID).Select(); err != nil {
			s.Emit("error-message", "User not authenticated")
			s.Emit("failed")
			return
		}

		if _, err := db.Model(&models.Player{
			Game_id:  gameID,
			User_id:  userID,
			Username: user.Email,
			Active:   "true",
		}).Insert(); err != nil {
			s.Emit("error-message", "Failed creating player")
			s.Emit("failed")
			return
		}

		conn := pool.Get()
		defer conn.Close()
		cache.RPUSH(gameID+".order", userID, &conn)

		s.Join(gameID)
		server.BroadcastToRoom("/", gameID, "player-join", userID)
		s.Emit("joined-game", strconv.Itoa(server.RoomLen("/", gameID)))
	})

	server.OnEvent("/", "leave-game", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		gameID, userID := result["game_id"], result["user_id"]

		db := database.PostgreSQLConnection()
		defer db.Close()
		db.Model(new(models.Player)).
			Where("user_id = ? and game_id = ?", userID, gameID).Delete()

		conn := pool.Get()
		defer conn.Close()
		cache.LREM(gameID+".order", userID, &conn)

		s.Leave(gameID)
		server.BroadcastToRoom("/", gameID, "player-left", userID)
	})

	server.OnEvent("/", "start-game", func(s socketio.Conn, gameID string) {
		db := database.PostgreSQLConnection()
		defer db.Close()

		conn := pool.Get()
		defer conn.Close()

		order, err := cache.LGET(gameID+".order", &conn)
		if err != nil || len(order) < 2 {
			s.Emit("error-message", "Unable to start game")
			return
		}

		var infos []engine.PlayerInfo
		for i, userID := range order {
			player := new(models.Player)
			if err := db.Model(player).
				Where("user_id = ? and game_id = ?", userID, gameID).Select(); err != nil {
				s.Emit("error-message", "Unable to start game")
				return
			}
			infos = append(infos, engine.PlayerInfo{
				ID:    userID,
				Name:  player.Username,
				Color: palette[i%len(palette)],
			})
		}

		room, err := mgr.CreateRoom(gameID, infos)
		if err != nil {
			emitErr(s, err)
			return
		}
		db.Model(&models.Game{Id: gameID}).WherePK().Set("status = ?", "in progress").Update()

		go relay(mgr, server, pool, room)

		snap, _ := json.Marshal(room.Snapshot())
		server.BroadcastToRoom("/", gameID, "game-start", string(snap))
	})

	server.OnEvent("/", "roll-dice", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if _, _, err := mgr.Roll(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "request-buy", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.Buy(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "decline-buy", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.DeclineAndStartAuction(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "bid", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		amount, err := strconv.Atoi(result["amount"])
		if err != nil {
			s.Emit("error-message", "Invalid bid amount")
			return
		}
		if err := mgr.Bid(result["game_id"], result["user_id"], amount); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "pass-auction", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.PassAuction(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "buy-house", func(s socketio.Conn, jsonStr string) {
		onTile(s, jsonStr, mgr.Build)
	})

	server.OnEvent("/", "sell-house", func(s socketio.Conn, jsonStr string) {
		onTile(s, jsonStr, mgr.Sell)
	})

	server.OnEvent("/", "mortgage", func(s socketio.Conn, jsonStr string) {
		onTile(s, jsonStr, mgr.Mortgage)
	})

	server.OnEvent("/", "unmortgage", func(s socketio.Conn, jsonStr string) {
		onTile(s, jsonStr, mgr.Unmortgage)
	})

	server.OnEvent("/", "propose-trade", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		giveMoney := atoiOr(result["give_money"], 0)
		wantMoney := atoiOr(result["want_money"], 0)
		giveTile := atoiOr(result["give_tile"], -1)
		wantTile := atoiOr(result["want_tile"], -1)
		err := mgr.ProposeTrade(result["game_id"], result["user_id"], result["target"],
			giveMoney, wantMoney, giveTile, wantTile)
		if err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "accept-trade", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.AcceptTrade(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "reject-trade", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.RejectTrade(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "pay-out-jail", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.PayJail(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "end-turn", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		if err := mgr.EndTurn(result["game_id"], result["user_id"]); err != nil {
			emitErr(s, err)
		}
	})

	server.OnEvent("/", "get-state", func(s socketio.Conn, jsonStr string) {
		result := parse(jsonStr)
		snap, err := mgr.Snapshot(result["game_id"])
		if err != nil {
			emitErr(s, err)
			return
		}
		data, _ := json.Marshal(snap)
		s.Emit("state", string(data))
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logrus.WithError(e).Warn("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		for _, room := range s.Rooms() {
			server.BroadcastToRoom("/", room, "player-left")
		}
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	http.ListenAndServe(":8000", c.Handler(mux))
}

// relay pumps engine events into the socket room and keeps the redis
// snapshot mirror fresh. One goroutine per live room; it exits when the
// room closes or the subscription is dropped.
func relay(mgr *engine.Manager, server *socketio.Server, pool *redis.Pool, room *engine.Room) {
	ch, cancel := room.Subscribe()
	defer cancel()

	for ev := range ch {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		server.BroadcastToRoom("/", room.ID, "game-event", string(data))
		mirrorSnapshot(pool, room)

		if ev.Kind == engine.EvGameOver {
			finishGame(mgr, pool, room.ID)
			return
		}
	}
}

func mirrorSnapshot(pool *redis.Pool, room *engine.Room) {
	data, err := json.Marshal(room.Snapshot())
	if err != nil {
		return
	}
	conn := pool.Get()
	defer conn.Close()
	if err := cache.Set(room.ID+".state", string(data), &conn); err != nil {
		logrus.WithError(err).WithField("room", room.ID).Warn("snapshot mirror write failed")
	}
}

func finishGame(mgr *engine.Manager, pool *redis.Pool, gameID string) {
	db := database.PostgreSQLConnection()
	defer db.Close()
	db.Model(&models.Game{Id: gameID}).WherePK().Set("status = ?", "finished").Update()

	conn := pool.Get()
	defer conn.Close()
	cache.Del(gameID+".order", &conn)

	mgr.CloseRoom(gameID)
}

func parse(jsonStr string) map[string]string {
	var result map[string]string
	json.Unmarshal([]byte(jsonStr), &result)
	return result
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func onTile(s socketio.Conn, jsonStr string, op func(room, player string, tile int) error) {
	result := parse(jsonStr)
	pos, err := strconv.Atoi(result["card_pos"])
	if err != nil {
		s.Emit("error-message", "Invalid tile")
		return
	}
	if err := op(result["game_id"], result["user_id"], pos); err != nil {
		emitErr(s, err)
	}
}

func emitErr(s socketio.Conn, err error) {
	var e *engine.Error
	if errors.As(err, &e) {
		s.Emit("error-message", e.Msg)
		return
	}
	s.Emit("error-message", err.Error())
}
