package main

import "time"

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=3001"`
	DebugPort       int           `env:"DEBUG_PORT,default=6060"`
	RoomTTL         time.Duration `env:"ROOM_TTL,default=2h"`
	SendBufferSize  int           `env:"SEND_BUFFER_SIZE,default=32"`
	ReaperInterval  time.Duration `env:"REAPER_INTERVAL,default=5m"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	// AUTH_MODE selects the identity verifier: "self-asserted" (default,
	// trusts the declared identity) or "signed-token" (HS256 tokens,
	// requires AUTH_JWT_SECRET).
	AuthMode      string `env:"AUTH_MODE,default=self-asserted"`
	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`
}
