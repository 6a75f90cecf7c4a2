package cache

import (
	"os"
	"time"

	"github.com/gomodule/redigo/redis"
	_ "github.com/joho/godotenv/autoload"
)

// CreateRedisPool backs the snapshot mirror and the room presence lists.
func CreateRedisPool() *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 60 * time.Second,
		Dial:        func() (redis.Conn, error) { return redis.Dial("tcp", os.Getenv("REDIS_URL")) },
	}
}

func CreateRedisConnection() (redis.Conn, error) {
	return redis.Dial("tcp", os.Getenv("REDIS_URL"))
}
