package logger

import (
	"go.uber.org/zap"
)

var Log = zap.NewNop().Sugar()

func Init(env string) {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = l.Sugar()
}

func Sync() {
	_ = Log.Sync()
}
