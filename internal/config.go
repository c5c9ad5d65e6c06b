package internal

import "time"

type Config struct {
	SpotifyClientID     string        `env:"SPOTIFY_CLIENT_ID,required=true"`
	SpotifyClientSecret string        `env:"SPOTIFY_CLIENT_SECRET,required=true"`
	SpotifyAuthURL      string        `env:"SPOTIFY_AUTH_URL"`
	SpotifyAPIURL       string        `env:"SPOTIFY_API_URL"`
	HTTPTimeout         time.Duration `env:"HTTP_TIMEOUT,required=true"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath       string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel            string        `env:"LOG_LEVEL,required=true"`
}
