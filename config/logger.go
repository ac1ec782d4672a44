package config

import (
	"os"

	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// InitLogger wires the process-wide structured logger. Development
// gets the human-readable encoder, production JSON.
func InitLogger() {
	var (
		l   *zap.Logger
		err error
	)
	if os.Getenv("APP_ENV") == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	Log = l.Sugar()
}
